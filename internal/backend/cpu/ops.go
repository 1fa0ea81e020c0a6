package cpu

import (
	"fmt"

	"github.com/born-ml/sentiment/internal/tensor"
)

type binaryKind int

const (
	opAdd binaryKind = iota
	opSub
	opMul
)

func (k binaryKind) String() string {
	switch k {
	case opAdd:
		return "add"
	case opSub:
		return "sub"
	default:
		return "mul"
	}
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(opAdd, a, b)
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(opSub, a, b)
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(opMul, a, b)
}

func (cpu *CPUBackend) binary(kind binaryKind, a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", kind, a.DType(), b.DType()))
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", kind, err))
	}

	result := cpu.alloc(kind.String(), outShape, a.DType())

	var aStrides, bStrides []int
	if needsBroadcast {
		aStrides = tensor.BroadcastStrides(a.Shape(), outShape)
		bStrides = tensor.BroadcastStrides(b.Shape(), outShape)
	}

	switch a.DType() {
	case tensor.Float32:
		binaryTyped(kind, result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), outShape, aStrides, bStrides)
	case tensor.Float64:
		binaryTyped(kind, result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), outShape, aStrides, bStrides)
	case tensor.Int32:
		binaryTyped(kind, result.AsInt32(), a.AsInt32(), b.AsInt32(), outShape, aStrides, bStrides)
	case tensor.Int64:
		binaryTyped(kind, result.AsInt64(), a.AsInt64(), b.AsInt64(), outShape, aStrides, bStrides)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", kind, a.DType()))
	}

	return result
}

// binaryTyped applies kind element-wise. Nil strides mean both inputs
// already have the output shape.
func binaryTyped[T number](kind binaryKind, dst, a, b []T, outShape tensor.Shape, aStrides, bStrides []int) {
	f := binaryFunc[T](kind)

	if aStrides == nil {
		for i := range dst {
			dst[i] = f(a[i], b[i])
		}
		return
	}

	ndim := len(outShape)
	idx := make([]int, ndim)
	aOff, bOff := 0, 0
	for i := range dst {
		dst[i] = f(a[aOff], b[bOff])

		// Advance the multi-index like an odometer, keeping both offsets in sync.
		for d := ndim - 1; d >= 0; d-- {
			idx[d]++
			aOff += aStrides[d]
			bOff += bStrides[d]
			if idx[d] < outShape[d] {
				break
			}
			aOff -= aStrides[d] * outShape[d]
			bOff -= bStrides[d] * outShape[d]
			idx[d] = 0
		}
	}
}

func binaryFunc[T number](kind binaryKind) func(x, y T) T {
	switch kind {
	case opAdd:
		return func(x, y T) T { return x + y }
	case opSub:
		return func(x, y T) T { return x - y }
	default:
		return func(x, y T) T { return x * y }
	}
}

// MulScalar multiplies every element by s.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	result := cpu.alloc("mul_scalar", x.Shape(), x.DType())

	switch x.DType() {
	case tensor.Float32:
		scale(result.AsFloat32(), x.AsFloat32(), float32(s))
	case tensor.Float64:
		scale(result.AsFloat64(), x.AsFloat64(), s)
	case tensor.Int32:
		scale(result.AsInt32(), x.AsInt32(), int32(s))
	case tensor.Int64:
		scale(result.AsInt64(), x.AsInt64(), int64(s))
	default:
		panic(fmt.Sprintf("mul_scalar: unsupported dtype %s", x.DType()))
	}

	return result
}

func scale[T number](dst, src []T, s T) {
	for i, v := range src {
		dst[i] = v * s
	}
}
