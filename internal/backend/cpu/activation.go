package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/sentiment/internal/tensor"
)

// Sigmoid applies σ(x) = 1 / (1 + exp(-x)) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryFloat("sigmoid", x, sigmoid)
}

// Tanh applies the hyperbolic tangent element-wise.
func (cpu *CPUBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryFloat("tanh", x, math.Tanh)
}

// sigmoid never evaluates exp of a positive argument, so it cannot overflow.
func sigmoid(v float64) float64 {
	if v >= 0 {
		return 1 / (1 + math.Exp(-v))
	}
	e := math.Exp(v)
	return e / (1 + e)
}

func (cpu *CPUBackend) unaryFloat(op string, x *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	result := cpu.alloc(op, x.Shape(), x.DType())

	switch x.DType() {
	case tensor.Float32:
		dst := result.AsFloat32()
		for i, v := range x.AsFloat32() {
			dst[i] = float32(f(float64(v)))
		}
	case tensor.Float64:
		dst := result.AsFloat64()
		for i, v := range x.AsFloat64() {
			dst[i] = f(v)
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32/float64 supported)", op, x.DType()))
	}

	return result
}
