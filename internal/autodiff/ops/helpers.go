package ops

import (
	"fmt"

	"github.com/born-ml/sentiment/internal/tensor"
)

// reduceBroadcast reduces a gradient tensor to match the target shape.
// This is necessary when broadcasting was used in the forward pass.
//
// Example:
//
//	Forward: a[3,1] + b[3,4] -> c[3,4]  (a was broadcast along dim 1)
//	Backward: grad_c[3,4] -> grad_a[3,1] (sum along dim 1)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape) *tensor.RawTensor {
	gradShape := grad.Shape()
	if gradShape.Equal(targetShape) {
		return grad
	}

	// Sum leading dimensions the target does not have.
	result := grad
	for len(result.Shape()) > len(targetShape) {
		result = sumAlongDimension(result, 0, false)
	}

	shape := result.Shape()
	for i := range targetShape {
		if targetShape[i] == 1 && shape[i] > 1 {
			result = sumAlongDimension(result, i, true)
		}
	}

	if !result.Shape().Equal(targetShape) {
		panic(fmt.Sprintf("reduceBroadcast: cannot reduce %v to %v", gradShape, targetShape))
	}
	return result
}

// sumAlongDimension sums t along dim. With keepDim the dimension stays with
// size 1, otherwise it is removed.
func sumAlongDimension(t *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := t.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("sumAlongDimension: invalid dimension %d for shape %v", dim, shape))
	}

	var outShape tensor.Shape
	if keepDim {
		outShape = shape.Clone()
		outShape[dim] = 1
	} else {
		outShape = append(shape[:dim:dim], shape[dim+1:]...)
	}

	result := tensor.MustNewRaw(outShape, t.DType(), t.Device())

	outer, inner := 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}

	switch t.DType() {
	case tensor.Float32:
		sumDim(result.AsFloat32(), t.AsFloat32(), outer, shape[dim], inner)
	case tensor.Float64:
		sumDim(result.AsFloat64(), t.AsFloat64(), outer, shape[dim], inner)
	default:
		panic(fmt.Sprintf("sumAlongDimension: unsupported dtype %s", t.DType()))
	}

	return result
}

func sumDim[T float32 | float64](dst, src []T, outer, size, inner int) {
	for o := 0; o < outer; o++ {
		out := dst[o*inner : (o+1)*inner]
		for s := 0; s < size; s++ {
			base := (o*size + s) * inner
			for i := range out {
				out[i] += src[base+i]
			}
		}
	}
}

// zerosLike allocates a zero tensor with x's shape and dtype.
func zerosLike(x *tensor.RawTensor) *tensor.RawTensor {
	return tensor.MustNewRaw(x.Shape(), x.DType(), x.Device())
}

// mapFloat writes f(a[i], b[i]) for two same-shaped float tensors into a new tensor.
func mapFloat(a, b *tensor.RawTensor, f func(x, y float64) float64) *tensor.RawTensor {
	result := zerosLike(a)

	switch a.DType() {
	case tensor.Float32:
		dst, x, y := result.AsFloat32(), a.AsFloat32(), b.AsFloat32()
		for i := range dst {
			dst[i] = float32(f(float64(x[i]), float64(y[i])))
		}
	case tensor.Float64:
		dst, x, y := result.AsFloat64(), a.AsFloat64(), b.AsFloat64()
		for i := range dst {
			dst[i] = f(x[i], y[i])
		}
	default:
		panic(fmt.Sprintf("mapFloat: unsupported dtype %s", a.DType()))
	}

	return result
}

// inversePermutation returns the permutation that undoes axes.
func inversePermutation(axes []int) []int {
	inv := make([]int, len(axes))
	for i, ax := range axes {
		inv[ax] = i
	}
	return inv
}
