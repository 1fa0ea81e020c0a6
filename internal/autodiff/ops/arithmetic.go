package ops

import "github.com/born-ml/sentiment/internal/tensor"

// AddOp represents an element-wise addition operation: output = a + b.
//
// Backward pass:
//   - d(a+b)/da = 1, so grad_a = outputGrad
//   - d(a+b)/db = 1, so grad_b = outputGrad
//
// If broadcasting was used in the forward pass, gradients are summed along
// the broadcast dimensions to match input shapes.
type AddOp struct{ binary }

// NewAddOp creates a new AddOp.
func NewAddOp(a, b, output *tensor.RawTensor) *AddOp {
	return &AddOp{binary{inputs: []*tensor.RawTensor{a, b}, output: output}}
}

// Backward computes input gradients for addition.
func (op *AddOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		reduceBroadcast(outputGrad, a.Shape()),
		reduceBroadcast(outputGrad, b.Shape()),
	}
}

// SubOp represents an element-wise subtraction operation: output = a - b.
type SubOp struct{ binary }

// NewSubOp creates a new SubOp.
func NewSubOp(a, b, output *tensor.RawTensor) *SubOp {
	return &SubOp{binary{inputs: []*tensor.RawTensor{a, b}, output: output}}
}

// Backward computes grad_a = outputGrad and grad_b = -outputGrad.
func (op *SubOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	negGrad := backend.MulScalar(outputGrad, -1)
	return []*tensor.RawTensor{
		reduceBroadcast(outputGrad, a.Shape()),
		reduceBroadcast(negGrad, b.Shape()),
	}
}

// MulOp represents an element-wise multiplication operation: output = a * b.
//
// Backward pass:
//   - d(a*b)/da = b, so grad_a = outputGrad * b
//   - d(a*b)/db = a, so grad_b = outputGrad * a
type MulOp struct{ binary }

// NewMulOp creates a new MulOp.
func NewMulOp(a, b, output *tensor.RawTensor) *MulOp {
	return &MulOp{binary{inputs: []*tensor.RawTensor{a, b}, output: output}}
}

// Backward computes input gradients for multiplication.
func (op *MulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		reduceBroadcast(backend.Mul(outputGrad, b), a.Shape()),
		reduceBroadcast(backend.Mul(outputGrad, a), b.Shape()),
	}
}

// MulScalarOp represents output = x * s for a constant s.
type MulScalarOp struct {
	unary
	scalar float64
}

// NewMulScalarOp creates a new MulScalarOp.
func NewMulScalarOp(x, output *tensor.RawTensor, s float64) *MulScalarOp {
	return &MulScalarOp{unary: unary{input: x, output: output}, scalar: s}
}

// Backward computes grad_x = outputGrad * s.
func (op *MulScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.MulScalar(outputGrad, op.scalar)}
}

// MatMulOp represents matrix multiplication: output = a @ b.
//
// Backward pass:
//   - grad_a = outputGrad @ b^T
//   - grad_b = a^T @ outputGrad
type MatMulOp struct{ binary }

// NewMatMulOp creates a new MatMulOp.
func NewMatMulOp(a, b, output *tensor.RawTensor) *MatMulOp {
	return &MatMulOp{binary{inputs: []*tensor.RawTensor{a, b}, output: output}}
}

// Backward computes input gradients for matrix multiplication.
func (op *MatMulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	gradA := backend.MatMul(outputGrad, backend.Transpose(b, 1, 0))
	gradB := backend.MatMul(backend.Transpose(a, 1, 0), outputGrad)
	return []*tensor.RawTensor{gradA, gradB}
}
