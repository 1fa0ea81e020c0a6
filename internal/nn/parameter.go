package nn

import (
	"fmt"

	"github.com/born-ml/sentiment/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters are tensors that require gradient computation during training.
// They typically represent weights and biases of layers.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
//	grad := weight.Grad()
type Parameter[B tensor.Backend] struct {
	name   string                     // Parameter name (e.g., "weight", "bias")
	tensor *tensor.Tensor[float32, B] // The parameter tensor
	grad   *tensor.Tensor[float32, B] // Gradient tensor (computed during backward pass)
}

// NewParameter creates a new trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Grad returns the gradient tensor.
//
// Returns nil if no gradient has been computed yet (before backward pass).
func (p *Parameter[B]) Grad() *tensor.Tensor[float32, B] {
	return p.grad
}

// SetGrad sets the gradient tensor.
func (p *Parameter[B]) SetGrad(grad *tensor.Tensor[float32, B]) {
	p.grad = grad
}

// ZeroGrad clears the gradient tensor.
func (p *Parameter[B]) ZeroGrad() {
	p.grad = nil
}

// Load copies raw into the parameter after checking shape and dtype.
// The parameter keeps its own storage.
func (p *Parameter[B]) Load(raw *tensor.RawTensor) error {
	if !raw.Shape().Equal(p.tensor.Shape()) {
		return fmt.Errorf("%s: shape mismatch: expected %v, got %v", p.name, p.tensor.Shape(), raw.Shape())
	}
	if raw.DType() != tensor.Float32 {
		return fmt.Errorf("%s: dtype mismatch: expected float32, got %v", p.name, raw.DType())
	}
	copy(p.tensor.Data(), raw.AsFloat32())
	return nil
}

// stateDictOf maps parameter names to their raw tensors.
func stateDictOf[B tensor.Backend](params []*Parameter[B]) map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor, len(params))
	for _, p := range params {
		stateDict[p.name] = p.tensor.Raw()
	}
	return stateDict
}

// loadParams loads every parameter from stateDict by name.
func loadParams[B tensor.Backend](params []*Parameter[B], stateDict map[string]*tensor.RawTensor) error {
	for _, p := range params {
		raw, ok := stateDict[p.name]
		if !ok {
			return fmt.Errorf("missing %s in state dict", p.name)
		}
		if err := p.Load(raw); err != nil {
			return err
		}
	}
	return nil
}
