package data

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"github.com/born-ml/sentiment/internal/tensor"
	"github.com/born-ml/sentiment/internal/tokenizer"
)

// ErrEmptyBatch is returned when a batch would hold no sequences.
var ErrEmptyBatch = errors.New("empty batch")

// Batch is a padded, time-major batch.
//
// Tokens holds Steps rows of Size ids each: Tokens[t*Size+b] is step t of
// sequence b, and positions at or past Lengths[b] hold the padding id.
type Batch struct {
	Tokens  []int32
	Steps   int
	Size    int
	Lengths []int
	Labels  []float32 // nil for unlabelled batches
}

// NewBatch pads seqs into a Batch in the given order. Empty sequences
// become a single padding token so every length is at least one.
func NewBatch(seqs [][]int32, labels []float32) (*Batch, error) {
	if len(seqs) == 0 {
		return nil, ErrEmptyBatch
	}
	if labels != nil && len(labels) != len(seqs) {
		return nil, fmt.Errorf("got %d labels for %d sequences", len(labels), len(seqs))
	}

	steps := 1
	for _, s := range seqs {
		steps = max(steps, len(s))
	}

	b := &Batch{
		Tokens:  make([]int32, steps*len(seqs)),
		Steps:   steps,
		Size:    len(seqs),
		Lengths: make([]int, len(seqs)),
		Labels:  labels,
	}
	for j, s := range seqs {
		b.Lengths[j] = max(1, len(s))
		for t, id := range s {
			b.Tokens[t*b.Size+j] = id
		}
	}
	return b, nil
}

// Tensors returns the token ids as a [Steps, Size] tensor and, for a
// labelled batch, the labels as a [Size] tensor.
func Tensors[B tensor.Backend](b *Batch, backend B) (*tensor.Tensor[int32, B], *tensor.Tensor[float32, B], error) {
	tokens, err := tensor.FromSlice(b.Tokens, tensor.Shape{b.Steps, b.Size}, backend)
	if err != nil {
		return nil, nil, fmt.Errorf("batch tokens: %w", err)
	}
	if b.Labels == nil {
		return tokens, nil, nil
	}
	labels, err := tensor.FromSlice(b.Labels, tensor.Shape{b.Size}, backend)
	if err != nil {
		return nil, nil, fmt.Errorf("batch labels: %w", err)
	}
	return tokens, labels, nil
}

// Encoded is an Example after tokenization and truncation.
type Encoded struct {
	IDs   []int32
	Label float32
}

// Batcher tokenizes examples and groups them into batches.
type Batcher struct {
	Tokenizer tokenizer.Tokenizer
	BatchSize int // Sequences per batch (default: 32)
	MaxLen    int // Keep at most this many leading tokens; 0 keeps all
}

// Encode tokenizes and truncates every example.
func (bt *Batcher) Encode(examples []Example) ([]Encoded, error) {
	out := make([]Encoded, len(examples))
	for i, ex := range examples {
		ids, err := bt.EncodeText(ex.Text)
		if err != nil {
			return nil, fmt.Errorf("example %d: %w", i, err)
		}
		out[i] = Encoded{IDs: ids, Label: ex.Label}
	}
	return out, nil
}

// EncodeText tokenizes and truncates a single text.
func (bt *Batcher) EncodeText(text string) ([]int32, error) {
	ids, err := bt.Tokenizer.Encode(text)
	if err != nil {
		return nil, err
	}
	if bt.MaxLen > 0 && len(ids) > bt.MaxLen {
		ids = ids[:bt.MaxLen]
	}
	return ids, nil
}

// Batches groups encoded examples into batches of BatchSize. With a
// non-nil rng the examples are shuffled first. Within a batch sequences
// are ordered by descending length.
func (bt *Batcher) Batches(encoded []Encoded, rng *rand.Rand) ([]*Batch, error) {
	size := bt.BatchSize
	if size <= 0 {
		size = 32
	}

	order := make([]int, len(encoded))
	for i := range order {
		order[i] = i
	}
	if rng != nil {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	batches := make([]*Batch, 0, (len(order)+size-1)/size)
	for start := 0; start < len(order); start += size {
		chunk := slices.Clone(order[start:min(start+size, len(order))])
		slices.SortStableFunc(chunk, func(a, b int) int {
			return cmp.Compare(len(encoded[b].IDs), len(encoded[a].IDs))
		})

		seqs := make([][]int32, len(chunk))
		labels := make([]float32, len(chunk))
		for j, idx := range chunk {
			seqs[j] = encoded[idx].IDs
			labels[j] = encoded[idx].Label
		}
		batch, err := NewBatch(seqs, labels)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, nil
}
