// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package classifier_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sentiment/backend/cpu"
	"github.com/born-ml/sentiment/classifier"
	"github.com/born-ml/sentiment/tensor"
	"github.com/born-ml/sentiment/tokenizer"
)

func TestForwardScenario(t *testing.T) {
	backend := cpu.New()
	model, err := classifier.New(classifier.Config{
		NumEmbeddings: 10,
		EmbeddingDim:  4,
		HiddenSize:    8,
		UseLSTM:       true,
	}, backend)
	require.NoError(t, err)

	ids, err := tensor.FromSlice([]int32{1, 2, 3, 4, 5, 6, 7, 0, 9, 0}, tensor.Shape{5, 2}, backend)
	require.NoError(t, err)

	probs, err := model.Forward(ids, []int{5, 3})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2}, probs.Shape())
	for _, p := range probs.Data() {
		assert.Greater(t, p, float32(0))
		assert.Less(t, p, float32(1))
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := classifier.New(classifier.DefaultConfig(), cpu.New())
	assert.ErrorIs(t, err, classifier.ErrInvalidConfig)
}

func TestLoadPredictor(t *testing.T) {
	vocab := tokenizer.NewWordVocab([]string{"lovely", "dull"})
	cfg := classifier.DefaultConfig()
	cfg.NumEmbeddings = vocab.VocabSize()
	cfg.EmbeddingDim, cfg.HiddenSize = 4, 4

	model, err := classifier.New(cfg, cpu.New())
	require.NoError(t, err)
	spec, err := tokenizer.Marshal(vocab)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.born")
	require.NoError(t, model.Save(path, map[string]string{tokenizer.MetadataKey: spec}))

	p, err := classifier.LoadPredictor(path, classifier.PredictOptions{})
	require.NoError(t, err)
	preds, err := p.Predict([]string{"a lovely film", "dull"})
	require.NoError(t, err)
	require.Len(t, preds, 2)
	assert.Equal(t, 3, preds[0].Tokens)

	loaded, header, err := classifier.Load(path, cpu.New())
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded.Config())
	assert.Equal(t, classifier.ModelType, header.ModelType)
}
