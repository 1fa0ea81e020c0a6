// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//   - ClipGradNorm: global gradient norm clipping
//
// Example usage:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.001})
//
//	backend.Tape().StartRecording()
//	loss := criterion.Forward(model.Forward(input), targets)
//	grads := autodiff.Backward(loss, backend)
//	optim.ClipGradNorm(model.Parameters(), grads, 5)
//	optimizer.Step(grads)
//	optimizer.ZeroGrad()
//	backend.Tape().Clear()
//
// Updates write parameter storage directly and are never recorded on a tape.
package optim

import (
	"math"

	"github.com/born-ml/sentiment/internal/nn"
	"github.com/born-ml/sentiment/internal/tensor"
)

// Optimizer updates parameters from a gradient map produced by
// autodiff.Backward. Parameters without an entry in the map are left alone.
type Optimizer interface {
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)
	ZeroGrad()
	LR() float32
	SetLR(lr float32)
}

// slots holds one lazily allocated float32 buffer per parameter, shaped
// like the parameter's data. Momentum and moment estimates live here.
type slots[B tensor.Backend] map[*nn.Parameter[B]][]float32

func (s slots[B]) get(p *nn.Parameter[B], n int) []float32 {
	buf, ok := s[p]
	if !ok {
		buf = make([]float32, n)
		s[p] = buf
	}
	return buf
}

func zeroGrads[B tensor.Backend](params []*nn.Parameter[B]) {
	for _, p := range params {
		p.ZeroGrad()
	}
}

// getGradient returns the float32 gradient of param, or nil when the
// parameter took no part in the recorded computation.
func getGradient[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) []float32 {
	grad, ok := grads[param.Tensor().Raw()]
	if !ok || grad == nil {
		return nil
	}
	return grad.AsFloat32()
}

// ClipGradNorm rescales the gradients of params in place so that their
// global L2 norm is at most maxNorm. It returns the norm before clipping.
// A non-positive maxNorm only measures.
func ClipGradNorm[B tensor.Backend](
	params []*nn.Parameter[B],
	grads map[*tensor.RawTensor]*tensor.RawTensor,
	maxNorm float64,
) float64 {
	var sumSq float64
	for _, p := range params {
		for _, g := range getGradient(p, grads) {
			sumSq += float64(g) * float64(g)
		}
	}
	norm := math.Sqrt(sumSq)

	if maxNorm <= 0 || norm <= maxNorm {
		return norm
	}

	scale := float32(maxNorm / (norm + 1e-6))
	for _, p := range params {
		g := getGradient(p, grads)
		for i := range g {
			g[i] *= scale
		}
	}
	return norm
}
