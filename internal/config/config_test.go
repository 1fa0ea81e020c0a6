package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	loaded, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
model:
  embedding_dim: 16
  hidden_size: 32
  use_lstm: false
  num_layers: 2
training:
  optimizer: sgd
  learning_rate: 0.05
  momentum: 0.9
data:
  train_path: reviews.jsonl
  tokenizer: tiktoken
server:
  request_timeout: 3s
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Model.EmbeddingDim)
	assert.False(t, cfg.Model.UseLSTM)
	assert.Equal(t, 2, cfg.Model.NumLayers)
	assert.Equal(t, "sgd", cfg.Training.Optimizer)
	assert.InDelta(t, 0.9, cfg.Training.Momentum, 1e-6)
	assert.Equal(t, "tiktoken", cfg.Data.Tokenizer)
	assert.Equal(t, 3*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Untouched fields keep their defaults.
	assert.Equal(t, 32, cfg.Training.BatchSize)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadModelPathFollowsTrainingOutput(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
training:
  output_path: runs/best.born
`))
	require.NoError(t, err)
	assert.Equal(t, "runs/best.born", cfg.Server.ModelPath)

	cfg, err = Load(writeConfig(t, `
training:
  output_path: runs/best.born
server:
  model_path: deployed.born
`))
	require.NoError(t, err)
	assert.Equal(t, "deployed.born", cfg.Server.ModelPath)

	cfg, err = Load(writeConfig(t, "log:\n  level: warn\n"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.ModelPath, cfg.Server.ModelPath)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, `
training:
  optimizer: rmsprop
  epochs: 0
server:
  threshold: 1.5
`)

	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalid)
	assert.ErrorContains(t, err, "training.optimizer")
	assert.ErrorContains(t, err, "training.epochs")
	assert.ErrorContains(t, err, "server.threshold")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "model: [unterminated"))
	assert.ErrorContains(t, err, "failed to parse")
}

func TestExampleConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "sentiment.yaml"))
	require.NoError(t, err)

	want := Default()
	want.Data.TrainPath = "data/train.jsonl"
	assert.Equal(t, want, cfg)
}
