package train

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sentiment/internal/backend/cpu"
	"github.com/born-ml/sentiment/internal/classifier"
	"github.com/born-ml/sentiment/internal/data"
	"github.com/born-ml/sentiment/internal/nn"
	"github.com/born-ml/sentiment/internal/tokenizer"
)

func toyData() []data.Example {
	return []data.Example{
		{Text: "good great fine", Label: 1},
		{Text: "great good", Label: 1},
		{Text: "fine good film", Label: 1},
		{Text: "good", Label: 1},
		{Text: "bad awful dull", Label: 0},
		{Text: "awful bad", Label: 0},
		{Text: "dull bad film", Label: 0},
		{Text: "bad", Label: 0},
	}
}

func setup(t *testing.T, lstm bool) (*Model, *data.Batcher, []data.Encoded) {
	t.Helper()
	examples := toyData()
	texts := make([]string, len(examples))
	for i, ex := range examples {
		texts[i] = ex.Text
	}
	vocab := tokenizer.BuildWordVocab(texts, 1, 0)

	nn.Seed(11)
	model, err := classifier.New(classifier.Config{
		NumEmbeddings: vocab.VocabSize(),
		EmbeddingDim:  8,
		HiddenSize:    8,
		UseLSTM:       lstm,
	}, NewBackend())
	require.NoError(t, err)

	batcher := &data.Batcher{Tokenizer: vocab, BatchSize: 4}
	encoded, err := batcher.Encode(examples)
	require.NoError(t, err)
	return model, batcher, encoded
}

func TestFit_ReducesLoss(t *testing.T) {
	for _, lstm := range []bool{true, false} {
		model, batcher, encoded := setup(t, lstm)
		val, err := batcher.Batches(encoded, nil)
		require.NoError(t, err)

		before, err := Evaluate(model, val)
		require.NoError(t, err)
		assert.Equal(t, 8, before.Count)

		trainer, err := New(model, Options{Epochs: 30, LearningRate: 0.05, ClipNorm: 5, Seed: 1}, nil)
		require.NoError(t, err)

		results, err := trainer.Fit(context.Background(), batcher, encoded, val)
		require.NoError(t, err)
		require.Len(t, results, 30)

		after := results[len(results)-1].Val
		assert.Less(t, after.Loss, before.Loss, "lstm=%v", lstm)
		assert.GreaterOrEqual(t, after.Accuracy, 0.75, "lstm=%v", lstm)
	}
}

func TestFit_SavesBestCheckpoint(t *testing.T) {
	model, batcher, encoded := setup(t, true)
	path := filepath.Join(t.TempDir(), "best.born")

	trainer, err := New(model, Options{
		Epochs:       3,
		Optimizer:    "sgd",
		LearningRate: 0.1,
		Momentum:     0.9,
		OutputPath:   path,
		Metadata:     map[string]string{"dataset": "toy"},
	}, nil)
	require.NoError(t, err)

	results, err := trainer.Fit(context.Background(), batcher, encoded, nil)
	require.NoError(t, err)
	assert.True(t, results[0].Saved)

	loaded, header, err := classifier.Load(path, cpu.New())
	require.NoError(t, err)
	assert.Equal(t, model.Config(), loaded.Config())
	assert.Equal(t, "toy", header.Metadata["dataset"])
	require.NotNil(t, header.CheckpointMeta)
	assert.Equal(t, trainer.RunID(), header.CheckpointMeta.RunID)
	assert.Equal(t, "sgd", header.CheckpointMeta.OptimizerType)

	assert.Positive(t, header.CheckpointMeta.Step)
}

func TestFit_Cancelled(t *testing.T) {
	model, batcher, encoded := setup(t, false)
	trainer, err := New(model, Options{Epochs: 5}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := trainer.Fit(ctx, batcher, encoded, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestFit_Errors(t *testing.T) {
	model, batcher, _ := setup(t, false)

	_, err := New(model, Options{Optimizer: "lbfgs"}, nil)
	assert.Error(t, err)

	trainer, err := New(model, Options{}, nil)
	require.NoError(t, err)
	_, err = trainer.Fit(context.Background(), batcher, nil, nil)
	assert.ErrorIs(t, err, ErrNoTrainingData)

	_, _, err = trainer.Step(&data.Batch{Tokens: []int32{2}, Steps: 1, Size: 1, Lengths: []int{1}})
	assert.Error(t, err)
}

func TestStep_LeavesTapeEmpty(t *testing.T) {
	model, batcher, encoded := setup(t, true)
	batches, err := batcher.Batches(encoded, nil)
	require.NoError(t, err)

	trainer, err := New(model, Options{}, nil)
	require.NoError(t, err)

	loss, norm, err := trainer.Step(batches[0])
	require.NoError(t, err)
	assert.Positive(t, loss)
	assert.Positive(t, norm)
	assert.Zero(t, model.Backend().Tape().NumOps())
	assert.False(t, model.Backend().Tape().IsRecording())
}
