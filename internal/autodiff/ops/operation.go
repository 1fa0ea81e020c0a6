// Package ops defines operation interfaces and implementations for automatic differentiation.
//
// Each operation implements the Operation interface, which provides:
//   - Forward pass: computed by the backend
//   - Backward pass: computes gradients for inputs given output gradient
//
// Supported operations:
//   - AddOp, SubOp, MulOp: element-wise arithmetic with broadcasting
//   - MulScalarOp: scaling by a constant
//   - MatMulOp: matrix multiplication (d(A@B)/dA = grad@B^T, d(A@B)/dB = A^T@grad)
//   - ReshapeOp, TransposeOp, NarrowOp, CatOp: shape manipulation
//   - EmbeddingOp: row lookup with scatter-add backward
//   - SigmoidOp, TanhOp: activations
//   - BCEOp: mean binary cross-entropy
package ops

import "github.com/born-ml/sentiment/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor;
	// a nil entry means no gradient flows to that input.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// unary holds the bookkeeping shared by single-input operations.
type unary struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// Inputs returns the single input tensor.
func (u *unary) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{u.input}
}

// Output returns the output tensor.
func (u *unary) Output() *tensor.RawTensor {
	return u.output
}

// binary holds the bookkeeping shared by two-input operations.
type binary struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// Inputs returns the input tensors [a, b].
func (b *binary) Inputs() []*tensor.RawTensor {
	return b.inputs
}

// Output returns the output tensor.
func (b *binary) Output() *tensor.RawTensor {
	return b.output
}
