package ops

import (
	"fmt"

	"github.com/born-ml/sentiment/internal/tensor"
)

// ReshapeOp represents a reshape. The gradient is reshaped back.
type ReshapeOp struct{ unary }

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(input, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{unary{input: input, output: output}}
}

// Backward reshapes outputGrad to the input shape.
func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.input.Shape())}
}

// TransposeOp represents a permutation of dimensions.
type TransposeOp struct {
	unary
	axes []int
}

// NewTransposeOp creates a new TransposeOp. axes must be the full permutation
// that was applied.
func NewTransposeOp(input, output *tensor.RawTensor, axes []int) *TransposeOp {
	return &TransposeOp{unary: unary{input: input, output: output}, axes: axes}
}

// Backward applies the inverse permutation to outputGrad.
func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Transpose(outputGrad, inversePermutation(op.axes)...)}
}

// NarrowOp represents a slice [start, start+length) along dim.
//
// Backward pass scatters outputGrad into a zero tensor of the input shape.
type NarrowOp struct {
	unary
	dim, start int
}

// NewNarrowOp creates a new NarrowOp. dim must be non-negative.
func NewNarrowOp(input, output *tensor.RawTensor, dim, start int) *NarrowOp {
	return &NarrowOp{unary: unary{input: input, output: output}, dim: dim, start: start}
}

// Backward computes the input gradient for a narrow.
func (op *NarrowOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := zerosLike(op.input)

	inShape := op.input.Shape()
	length := outputGrad.Shape()[op.dim]
	elem := grad.DType().Size()

	outer, inner := 1, 1
	for i := 0; i < op.dim; i++ {
		outer *= inShape[i]
	}
	for i := op.dim + 1; i < len(inShape); i++ {
		inner *= inShape[i]
	}
	rowBytes := inner * elem

	dst := grad.Data()
	src := outputGrad.Data()
	for o := 0; o < outer; o++ {
		dstStart := (o*inShape[op.dim] + op.start) * rowBytes
		srcStart := o * length * rowBytes
		copy(dst[dstStart:dstStart+length*rowBytes], src[srcStart:srcStart+length*rowBytes])
	}

	return []*tensor.RawTensor{grad}
}

// CatOp represents concatenation of several tensors along dim.
//
// Backward pass narrows outputGrad back into one piece per input.
type CatOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
	dim    int
}

// NewCatOp creates a new CatOp. dim must be non-negative.
func NewCatOp(inputs []*tensor.RawTensor, output *tensor.RawTensor, dim int) *CatOp {
	if dim < 0 {
		panic(fmt.Sprintf("cat op: dimension must be normalized, got %d", dim))
	}
	return &CatOp{inputs: inputs, output: output, dim: dim}
}

// Inputs returns the concatenated tensors.
func (op *CatOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the concatenation result.
func (op *CatOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward splits outputGrad along dim.
func (op *CatOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grads := make([]*tensor.RawTensor, len(op.inputs))
	offset := 0
	for i, in := range op.inputs {
		size := in.Shape()[op.dim]
		grads[i] = backend.Narrow(outputGrad, op.dim, offset, size)
		offset += size
	}
	return grads
}
