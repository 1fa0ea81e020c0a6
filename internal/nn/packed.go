package nn

import (
	"errors"
	"fmt"
	"slices"

	"github.com/born-ml/sentiment/internal/tensor"
)

// Packing errors.
var (
	// ErrUnsortedLengths is returned when EnforceSorted packing receives
	// lengths that are not in non-increasing order.
	ErrUnsortedLengths = errors.New("lengths must be sorted in non-increasing order")

	// ErrInvalidLength is returned for a sequence length outside [1, T] or a
	// lengths vector that does not match the batch size.
	ErrInvalidLength = errors.New("invalid sequence length")
)

// PackedSequence is a padded batch with the padding removed.
//
// Sequences are ordered by descending length. Data holds, time step by time
// step, the rows of every sequence still active at that step, so step t
// occupies BatchSizes[t] consecutive rows.
//
//	lengths [3, 1] over T=3, rows of Data:
//	  t=0: seq0, seq1
//	  t=1: seq0
//	  t=2: seq0
//	BatchSizes = [2, 1, 1]
type PackedSequence[B tensor.Backend] struct {
	Data       *tensor.Tensor[float32, B] // [sum(lengths), features]
	BatchSizes []int                      // active sequences per time step, non-increasing

	// SortedIndices maps a sorted position to the caller's batch index and
	// UnsortedIndices is its inverse. Both are nil when the caller's order
	// was already sorted.
	SortedIndices   []int
	UnsortedIndices []int
}

// BatchSize returns the number of sequences.
func (p *PackedSequence[B]) BatchSize() int {
	return p.BatchSizes[0]
}

// Lengths returns the sequence lengths in the caller's batch order.
func (p *PackedSequence[B]) Lengths() []int {
	sorted := make([]int, p.BatchSize())
	for _, bt := range p.BatchSizes {
		for j := 0; j < bt; j++ {
			sorted[j]++
		}
	}
	if p.UnsortedIndices == nil {
		return sorted
	}
	lengths := make([]int, len(sorted))
	for b, pos := range p.UnsortedIndices {
		lengths[b] = sorted[pos]
	}
	return lengths
}

// sortedPosition returns where the caller's sequence b sits in packed order.
func (p *PackedSequence[B]) sortedPosition(b int) int {
	if p.UnsortedIndices == nil {
		return b
	}
	return p.UnsortedIndices[b]
}

// PackPaddedSequence packs a padded time-major batch.
//
// input has shape [T, B, F] and lengths holds one entry in [1, T] per batch
// element. With enforceSorted the lengths must already be non-increasing;
// otherwise the batch is stably sorted and the permutation is recorded so
// results can be restored to the caller's order.
func PackPaddedSequence[B tensor.Backend](
	input *tensor.Tensor[float32, B],
	lengths []int,
	enforceSorted bool,
) (*PackedSequence[B], error) {
	shape := input.Shape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("pack: expected input [T, B, F], got shape %v", shape)
	}
	steps, batch, features := shape[0], shape[1], shape[2]

	if len(lengths) != batch {
		return nil, fmt.Errorf("pack: %w: got %d lengths for batch size %d", ErrInvalidLength, len(lengths), batch)
	}
	for b, l := range lengths {
		if l < 1 || l > steps {
			return nil, fmt.Errorf("pack: %w: lengths[%d] = %d, want 1..%d", ErrInvalidLength, b, l, steps)
		}
	}

	packed := &PackedSequence[B]{}
	order := make([]int, batch)
	for i := range order {
		order[i] = i
	}

	if !slices.IsSortedFunc(lengths, func(a, b int) int { return b - a }) {
		if enforceSorted {
			return nil, fmt.Errorf("pack: %w: %v", ErrUnsortedLengths, lengths)
		}
		slices.SortStableFunc(order, func(a, b int) int { return lengths[b] - lengths[a] })
		packed.SortedIndices = order
		packed.UnsortedIndices = make([]int, batch)
		for pos, b := range order {
			packed.UnsortedIndices[b] = pos
		}
	}

	maxLen := lengths[order[0]]
	packed.BatchSizes = make([]int, maxLen)
	rows := make([]int, 0, batch*maxLen)
	for t := 0; t < maxLen; t++ {
		for _, b := range order {
			if lengths[b] <= t {
				break
			}
			rows = append(rows, t*batch+b)
			packed.BatchSizes[t]++
		}
	}

	packed.Data = input.Reshape(steps*batch, features).SelectRows(rows)
	return packed, nil
}

// PadPackedSequence is the inverse of PackPaddedSequence.
//
// It returns a [T, B, F] tensor in the caller's batch order, with positions
// past each sequence's end set to paddingValue, and the lengths. T is the
// longest length, or totalLength if that is larger.
func PadPackedSequence[B tensor.Backend](
	packed *PackedSequence[B],
	paddingValue float32,
	totalLength int,
) (*tensor.Tensor[float32, B], []int) {
	batch := packed.BatchSize()
	steps := max(len(packed.BatchSizes), totalLength)
	features := packed.Data.Shape()[1]
	numRows := packed.Data.Shape()[0]

	pad := tensor.Full[float32](tensor.Shape{1, features}, paddingValue, packed.Data.Backend())
	source := tensor.Cat([]*tensor.Tensor[float32, B]{packed.Data, pad}, 0)

	offsets := make([]int, len(packed.BatchSizes))
	for t := 1; t < len(offsets); t++ {
		offsets[t] = offsets[t-1] + packed.BatchSizes[t-1]
	}

	rows := make([]int, 0, steps*batch)
	for t := 0; t < steps; t++ {
		for b := 0; b < batch; b++ {
			pos := packed.sortedPosition(b)
			if t < len(packed.BatchSizes) && pos < packed.BatchSizes[t] {
				rows = append(rows, offsets[t]+pos)
			} else {
				rows = append(rows, numRows)
			}
		}
	}

	padded := source.SelectRows(rows).Reshape(steps, batch, features)
	return padded, packed.Lengths()
}
