package ops

import (
	"fmt"

	"github.com/born-ml/sentiment/internal/tensor"
)

// EmbeddingOp represents an embedding lookup operation.
//
// Forward: output[i] = weight[indices[i]]
//
// Backward is a scatter-add: gradients for the same index are summed, and the
// padding row (if any) receives none.
//
//	indices = [0, 1, 0]  // index 0 appears twice
//	grad_output = [[1,2], [3,4], [5,6]]
//	grad_weight[0] = [1,2] + [5,6] = [6,8]
//	grad_weight[1] = [3,4]
type EmbeddingOp struct {
	weight     *tensor.RawTensor
	indices    *tensor.RawTensor
	output     *tensor.RawTensor
	paddingIdx int
}

// NewEmbeddingOp creates a new embedding operation.
func NewEmbeddingOp(weight, indices, output *tensor.RawTensor, paddingIdx int) *EmbeddingOp {
	return &EmbeddingOp{
		weight:     weight,
		indices:    indices,
		output:     output,
		paddingIdx: paddingIdx,
	}
}

// Inputs returns the weight. Indices are integers and never need a gradient.
func (op *EmbeddingOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.weight}
}

// Output returns the output tensor.
func (op *EmbeddingOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward computes the gradient for the embedding weights.
func (op *EmbeddingOp) Backward(gradOutput *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	gradWeight := zerosLike(op.weight)
	dim := op.weight.Shape()[1]

	switch gradWeight.DType() {
	case tensor.Float32:
		scatterAdd(gradWeight.AsFloat32(), gradOutput.AsFloat32(), op.indices.AsInt32(), dim, op.paddingIdx)
	case tensor.Float64:
		scatterAdd(gradWeight.AsFloat64(), gradOutput.AsFloat64(), op.indices.AsInt32(), dim, op.paddingIdx)
	default:
		panic(fmt.Sprintf("embedding backward: unsupported dtype %s", gradWeight.DType()))
	}

	return []*tensor.RawTensor{gradWeight}
}

func scatterAdd[T float32 | float64](dst, grad []T, indices []int32, dim, paddingIdx int) {
	for i, idx := range indices {
		row := int(idx)
		if row == paddingIdx {
			continue
		}
		out := dst[row*dim : (row+1)*dim]
		for j, g := range grad[i*dim : (i+1)*dim] {
			out[j] += g
		}
	}
}
