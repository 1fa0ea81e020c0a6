package optim

import (
	"github.com/born-ml/sentiment/internal/nn"
	"github.com/born-ml/sentiment/internal/tensor"
)

// SGD is stochastic gradient descent with optional heavy-ball momentum:
//
//	v = momentum*v + g
//	p = p - lr*v
//
// With zero momentum this reduces to p = p - lr*g and keeps no state.
type SGD[B tensor.Backend] struct {
	params   []*nn.Parameter[B]
	lr       float32
	momentum float32
	velocity slots[B]
}

// SGDConfig configures NewSGD. A zero LR means 0.01.
type SGDConfig struct {
	LR       float32
	Momentum float32 // in [0, 1)
}

// NewSGD returns an SGD optimizer over params.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], cfg SGDConfig) *SGD[B] {
	if cfg.LR == 0 {
		cfg.LR = 0.01
	}
	return &SGD[B]{
		params:   params,
		lr:       cfg.LR,
		momentum: cfg.Momentum,
		velocity: make(slots[B]),
	}
}

// Step applies one update.
func (s *SGD[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, p := range s.params {
		g := getGradient(p, grads)
		if g == nil {
			continue
		}
		w := p.Tensor().Data()
		if s.momentum == 0 {
			for i := range g {
				w[i] -= s.lr * g[i]
			}
			continue
		}
		v := s.velocity.get(p, len(w))
		for i := range g {
			v[i] = s.momentum*v[i] + g[i]
			w[i] -= s.lr * v[i]
		}
	}
}

// ZeroGrad clears the gradient attached to every parameter.
func (s *SGD[B]) ZeroGrad() { zeroGrads(s.params) }

// LR returns the learning rate.
func (s *SGD[B]) LR() float32 { return s.lr }

// SetLR replaces the learning rate for subsequent steps.
func (s *SGD[B]) SetLR(lr float32) { s.lr = lr }
