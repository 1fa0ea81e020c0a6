package data

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sentiment/internal/backend/cpu"
	"github.com/born-ml/sentiment/internal/tensor"
	"github.com/born-ml/sentiment/internal/tokenizer"
)

func TestLoadJSONL(t *testing.T) {
	input := `{"text": "loved it", "label": 1}

{"text": "dull", "label": 0}
`
	examples, err := LoadJSONL(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []Example{{Text: "loved it", Label: 1}, {Text: "dull", Label: 0}}, examples)
}

func TestLoadJSONL_Errors(t *testing.T) {
	_, err := LoadJSONL(strings.NewReader(`{"text": "x", "label": 2}`))
	assert.ErrorIs(t, err, ErrInvalidLabel)

	_, err = LoadJSONL(strings.NewReader("{\"text\": \"ok\", \"label\": 1}\n{broken"))
	assert.ErrorContains(t, err, "line 2")
}

func TestSplit(t *testing.T) {
	examples := make([]Example, 10)
	for i := range examples {
		examples[i] = Example{Text: strings.Repeat("a", i+1), Label: float32(i % 2)}
	}

	train, val := Split(examples, 0.8, 1)
	assert.Len(t, train, 8)
	assert.Len(t, val, 2)
	assert.ElementsMatch(t, examples, append(append([]Example{}, train...), val...))

	train2, _ := Split(examples, 0.8, 1)
	assert.Equal(t, train, train2)

	all, none := Split(examples, 1.5, 1)
	assert.Len(t, all, 10)
	assert.Empty(t, none)
}

func TestNewBatch(t *testing.T) {
	b, err := NewBatch([][]int32{{5, 6, 7}, {8}, {}}, []float32{1, 0, 1})
	require.NoError(t, err)

	assert.Equal(t, 3, b.Steps)
	assert.Equal(t, 3, b.Size)
	assert.Equal(t, []int{3, 1, 1}, b.Lengths)
	assert.Equal(t, []int32{
		5, 8, 0,
		6, 0, 0,
		7, 0, 0,
	}, b.Tokens)

	_, err = NewBatch(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = NewBatch([][]int32{{1}}, []float32{1, 0})
	assert.Error(t, err)
}

func TestTensors(t *testing.T) {
	b, err := NewBatch([][]int32{{2, 3}, {4}}, []float32{1, 0})
	require.NoError(t, err)

	tokens, labels, err := Tensors(b, cpu.New())
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2}, tokens.Shape())
	assert.Equal(t, int32(4), tokens.At(0, 1))
	assert.Equal(t, []float32{1, 0}, labels.Data())

	b.Labels = nil
	_, labels, err = Tensors(b, cpu.New())
	require.NoError(t, err)
	assert.Nil(t, labels)
}

func TestBatcher(t *testing.T) {
	vocab := tokenizer.NewWordVocab([]string{"a", "b", "c", "d"})
	bt := &Batcher{Tokenizer: vocab, BatchSize: 2, MaxLen: 3}

	encoded, err := bt.Encode([]Example{
		{Text: "a", Label: 0},
		{Text: "a b c d", Label: 1},
		{Text: "b c", Label: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 3, 4}, encoded[1].IDs)

	batches, err := bt.Batches(encoded, nil)
	require.NoError(t, err)
	require.Len(t, batches, 2)

	// Longest sequence first within the batch.
	assert.Equal(t, []int{3, 1}, batches[0].Lengths)
	assert.Equal(t, []float32{1, 0}, batches[0].Labels)
	assert.Equal(t, []int{2}, batches[1].Lengths)

	shuffled, err := bt.Batches(encoded, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	total := 0
	for _, b := range shuffled {
		total += b.Size
	}
	assert.Equal(t, 3, total)
}
