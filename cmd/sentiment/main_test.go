package main

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const toyJSONL = `{"text": "good great fine", "label": 1}
{"text": "great good", "label": 1}
{"text": "fine good film", "label": 1}
{"text": "good", "label": 1}
{"text": "bad awful dull", "label": 0}
{"text": "awful bad", "label": 0}
{"text": "dull bad film", "label": 0}
{"text": "bad", "label": 0}
`

func writeFixtures(t *testing.T) (cfgPath, modelPath string) {
	t.Helper()
	dir := t.TempDir()
	trainPath := filepath.Join(dir, "train.jsonl")
	modelPath = filepath.Join(dir, "model.born")
	require.NoError(t, os.WriteFile(trainPath, []byte(toyJSONL), 0o600))

	cfg := `model:
  embedding_dim: 8
  hidden_size: 8
  use_lstm: true
training:
  epochs: 3
  batch_size: 4
  learning_rate: 0.05
  output_path: ` + modelPath + `
data:
  train_path: ` + trainPath + `
  val_ratio: 0.25
  min_freq: 1
log:
  level: error
`
	cfgPath = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	return cfgPath, modelPath
}

func run(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	err := cmd.Execute()
	return out.String(), err
}

func TestTrainPredictInspect(t *testing.T) {
	cfgPath, modelPath := writeFixtures(t)

	out, err := run(t, nil, "--config", cfgPath, "train")
	require.NoError(t, err)
	assert.Contains(t, out, "best checkpoint at "+modelPath)
	assert.FileExists(t, modelPath)

	out, err = run(t, nil, "--config", cfgPath, "predict", "--json", "--model", modelPath, "good film", "bad")
	require.NoError(t, err)

	var lines []predictionLine
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var line predictionLine
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "good film", lines[0].Text)
	for _, line := range lines {
		assert.Greater(t, line.Probability, float32(0))
		assert.Less(t, line.Probability, float32(1))
	}

	out, err = run(t, strings.NewReader("good\n\nbad dull\n"), "--config", cfgPath, "predict", "--file", "-")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n"))
	assert.Contains(t, out, "bad dull")

	out, err = run(t, nil, "inspect", modelPath)
	require.NoError(t, err)
	assert.Contains(t, out, "RNNClassifier")
	assert.Contains(t, out, "embedding.weight")
	assert.Contains(t, out, "rnn.weight_hh_l0")
	assert.Contains(t, out, "word (")
	assert.Contains(t, out, "checkpoint")
}

func TestTrain_Overrides(t *testing.T) {
	cfgPath, _ := writeFixtures(t)
	other := filepath.Join(t.TempDir(), "other.born")

	_, err := run(t, nil, "--config", cfgPath, "train", "--epochs", "1", "--output", other)
	require.NoError(t, err)
	assert.FileExists(t, other)
}

func TestTrain_Errors(t *testing.T) {
	_, err := run(t, nil, "train")
	assert.ErrorContains(t, err, "no training data")

	_, err = run(t, nil, "train", "--train", filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)

	_, err = run(t, nil, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "train")
	assert.Error(t, err)
}

func TestPredict_Errors(t *testing.T) {
	_, err := run(t, nil, "predict")
	assert.ErrorContains(t, err, "nothing to classify")

	_, err = run(t, nil, "predict", "--model", filepath.Join(t.TempDir(), "missing.born"), "text")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}
