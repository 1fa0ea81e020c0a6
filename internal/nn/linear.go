package nn

import (
	"fmt"

	"github.com/born-ml/sentiment/internal/tensor"
)

// Linear is a dense layer computing y = x·Wᵀ + b.
//
// The weight has shape [out, in] and starts Xavier-uniform; the bias has
// shape [out] and starts at zero. The classifier head is a Linear with
// out = 1 applied to the last hidden state.
type Linear[B tensor.Backend] struct {
	in, out int
	weight  *Parameter[B]
	bias    *Parameter[B]
}

// NewLinear creates a Linear layer mapping in features to out features.
func NewLinear[B tensor.Backend](in, out int, backend B) *Linear[B] {
	return &Linear[B]{
		in:     in,
		out:    out,
		weight: NewParameter("weight", Xavier(in, out, tensor.Shape{out, in}, backend)),
		bias:   NewParameter("bias", Zeros(tensor.Shape{out}, backend)),
	}
}

// Forward maps [..., in] to [..., out]. Leading dimensions are flattened
// into one batch dimension for the product and restored afterwards, so a
// [T, B, in] sequence and a [B, in] batch both work.
func (l *Linear[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) < 2 || shape[len(shape)-1] != l.in {
		panic(fmt.Sprintf("nn.Linear: want input [..., %d], got %v", l.in, shape))
	}

	rows := shape.NumElements() / l.in
	flat := x
	if len(shape) > 2 {
		flat = x.Reshape(rows, l.in)
	}
	y := flat.MatMul(l.weight.Tensor().T()).Add(l.bias.Tensor())
	if len(shape) == 2 {
		return y
	}
	outShape := append(shape[:len(shape)-1:len(shape)-1], l.out)
	return y.Reshape(outShape...)
}

// Parameters returns the weight followed by the bias.
func (l *Linear[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.weight, l.bias}
}

// Weight is the [out, in] matrix.
func (l *Linear[B]) Weight() *Parameter[B] { return l.weight }

// Bias is the [out] vector.
func (l *Linear[B]) Bias() *Parameter[B] { return l.bias }

// InFeatures is the size of the last input dimension.
func (l *Linear[B]) InFeatures() int { return l.in }

// OutFeatures is the size of the last output dimension.
func (l *Linear[B]) OutFeatures() int { return l.out }

// StateDict returns {"weight", "bias"}.
func (l *Linear[B]) StateDict() map[string]*tensor.RawTensor {
	return stateDictOf(l.Parameters())
}

// LoadStateDict copies "weight" and "bias" into the layer.
func (l *Linear[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return loadParams(l.Parameters(), stateDict)
}
