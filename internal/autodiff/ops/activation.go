package ops

import (
	"math"

	"github.com/born-ml/sentiment/internal/tensor"
)

// SigmoidOp represents the sigmoid activation operation: σ(x) = 1 / (1 + exp(-x)).
type SigmoidOp struct{ unary }

// NewSigmoidOp creates a new sigmoid operation.
func NewSigmoidOp(input, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{unary{input: input, output: output}}
}

// Backward computes grad_input = grad_output * σ(x) * (1 - σ(x)), using the
// stored output.
func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := mapFloat(outputGrad, op.output, func(g, y float64) float64 {
		return g * y * (1 - y)
	})
	return []*tensor.RawTensor{grad}
}

// TanhOp represents the hyperbolic tangent activation.
type TanhOp struct{ unary }

// NewTanhOp creates a new tanh operation.
func NewTanhOp(input, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{unary{input: input, output: output}}
}

// Backward computes grad_input = grad_output * (1 - tanh²(x)).
func (op *TanhOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := mapFloat(outputGrad, op.output, func(g, y float64) float64 {
		return g * (1 - y*y)
	})
	return []*tensor.RawTensor{grad}
}

// BCEOp represents mean binary cross-entropy between probabilities and targets.
//
// Backward pass (targets get no gradient):
//
//	d/dp = (p - t) / (p * (1 - p)) / N
type BCEOp struct{ binary }

// NewBCEOp creates a new BCEOp.
func NewBCEOp(pred, target, output *tensor.RawTensor) *BCEOp {
	return &BCEOp{binary{inputs: []*tensor.RawTensor{pred, target}, output: output}}
}

// bceEps keeps the gradient finite when a probability saturates at 0 or 1.
const bceEps = 1e-12

// Backward computes the prediction gradient.
func (op *BCEOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	pred, target := op.inputs[0], op.inputs[1]

	var upstream float64
	switch outputGrad.DType() {
	case tensor.Float32:
		upstream = float64(outputGrad.AsFloat32()[0])
	default:
		upstream = outputGrad.AsFloat64()[0]
	}
	n := float64(pred.NumElements())

	grad := mapFloat(pred, target, func(p, t float64) float64 {
		return upstream * (p - t) / math.Max(p*(1-p), bceEps) / n
	})
	return []*tensor.RawTensor{grad, nil}
}
