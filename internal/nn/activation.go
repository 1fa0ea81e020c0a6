package nn

import "github.com/born-ml/sentiment/internal/tensor"

// Sigmoid maps x to 1/(1+e^-x). The classifier ends with it and the LSTM
// gates use the same kernel.
type Sigmoid[B tensor.Backend] struct{ stateless[B] }

// NewSigmoid returns a Sigmoid module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] { return &Sigmoid[B]{} }

// Forward applies the sigmoid element-wise.
func (*Sigmoid[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x.Sigmoid()
}

// Tanh is the element-wise hyperbolic tangent.
type Tanh[B tensor.Backend] struct{ stateless[B] }

// NewTanh returns a Tanh module.
func NewTanh[B tensor.Backend]() *Tanh[B] { return &Tanh[B]{} }

// Forward applies tanh element-wise.
func (*Tanh[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x.Tanh()
}

// stateless supplies Parameters for modules without weights.
type stateless[B tensor.Backend] struct{}

func (stateless[B]) Parameters() []*Parameter[B] { return nil }
