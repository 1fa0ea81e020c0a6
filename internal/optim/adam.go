package optim

import (
	"math"

	"github.com/born-ml/sentiment/internal/nn"
	"github.com/born-ml/sentiment/internal/tensor"
)

// Adam keeps running first and second moment estimates per parameter and
// applies bias-corrected updates:
//
//	m = β1·m + (1-β1)·g
//	v = β2·v + (1-β2)·g²
//	p = p - lr·(m/(1-β1ᵗ)) / (√(v/(1-β2ᵗ)) + ε)
type Adam[B tensor.Backend] struct {
	params       []*nn.Parameter[B]
	lr           float32
	beta1, beta2 float32
	eps          float32
	step         int
	m, v         slots[B]
}

// AdamConfig configures NewAdam. Zero fields take the usual defaults:
// LR 0.001, Betas {0.9, 0.999}, Eps 1e-8.
type AdamConfig struct {
	LR    float32
	Betas [2]float32
	Eps   float32
}

// NewAdam returns an Adam optimizer over params.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], cfg AdamConfig) *Adam[B] {
	if cfg.LR == 0 {
		cfg.LR = 0.001
	}
	if cfg.Betas == [2]float32{} {
		cfg.Betas = [2]float32{0.9, 0.999}
	}
	if cfg.Eps == 0 {
		cfg.Eps = 1e-8
	}
	return &Adam[B]{
		params: params,
		lr:     cfg.LR,
		beta1:  cfg.Betas[0],
		beta2:  cfg.Betas[1],
		eps:    cfg.Eps,
		m:      make(slots[B]),
		v:      make(slots[B]),
	}
}

// Step applies one update and advances the bias-correction timestep.
func (a *Adam[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	a.step++
	c1 := 1 - float32(math.Pow(float64(a.beta1), float64(a.step)))
	c2 := 1 - float32(math.Pow(float64(a.beta2), float64(a.step)))

	for _, p := range a.params {
		g := getGradient(p, grads)
		if g == nil {
			continue
		}
		w := p.Tensor().Data()
		m := a.m.get(p, len(w))
		v := a.v.get(p, len(w))
		for i, gi := range g {
			m[i] = a.beta1*m[i] + (1-a.beta1)*gi
			v[i] = a.beta2*v[i] + (1-a.beta2)*gi*gi
			denom := float32(math.Sqrt(float64(v[i]/c2))) + a.eps
			w[i] -= a.lr * (m[i] / c1) / denom
		}
	}
}

// ZeroGrad clears the gradient attached to every parameter.
func (a *Adam[B]) ZeroGrad() { zeroGrads(a.params) }

// LR returns the learning rate.
func (a *Adam[B]) LR() float32 { return a.lr }

// SetLR replaces the learning rate for subsequent steps.
func (a *Adam[B]) SetLR(lr float32) { a.lr = lr }
