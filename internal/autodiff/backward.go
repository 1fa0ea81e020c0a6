package autodiff

import (
	"fmt"

	"github.com/born-ml/sentiment/internal/tensor"
)

// BackwardCapable is a backend that owns a gradient tape.
type BackwardCapable interface {
	tensor.Backend
	Tape() *GradientTape
}

// Backward seeds the gradient of t with ones and replays the tape in
// reverse. The result maps every tensor that contributed to t onto its
// gradient; parameters are looked up by their Raw() pointer.
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	x, _ := tensor.FromSlice([]float32{3}, tensor.Shape{1}, backend)
//	grads := autodiff.Backward(x.Mul(x), backend)
//	_ = grads[x.Raw()] // [6]
//
// Backward panics when the tape is empty or t is not a float tensor.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	tape := backend.Tape()
	if tape.NumOps() == 0 {
		panic("autodiff: empty tape, call Tape().StartRecording() before the forward pass")
	}
	if !t.DType().IsFloat() {
		panic(fmt.Sprintf("autodiff: cannot differentiate %s tensor", t.DType()))
	}

	seed := tensor.Ones[T](t.Shape(), backend)
	return tape.Backward(t.Raw(), seed.Raw(), backend)
}
