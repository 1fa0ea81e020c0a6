package cpu

import (
	"fmt"

	"github.com/born-ml/sentiment/internal/tensor"
)

// Reshape returns a copy of t with a new shape. One dimension may be -1 and
// is inferred from the element count.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	shape := inferShape(t.NumElements(), newShape)
	if shape.NumElements() != t.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) into %v", t.Shape(), t.NumElements(), newShape))
	}

	result := cpu.alloc("reshape", shape, t.DType())
	copy(result.Data(), t.Data())
	return result
}

func inferShape(numElements int, shape tensor.Shape) tensor.Shape {
	out := shape.Clone()
	infer := -1
	known := 1
	for i, d := range out {
		if d == -1 {
			if infer >= 0 {
				panic("reshape: only one dimension can be -1")
			}
			infer = i
			continue
		}
		known *= d
	}
	if infer >= 0 && known > 0 {
		out[infer] = numElements / known
	}
	return out
}

// Transpose permutes dimensions. With no axes it reverses them.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: expected %d axes, got %d", ndim, len(axes)))
	}

	seen := make([]bool, ndim)
	outShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		if ax < 0 || ax >= ndim || seen[ax] {
			panic(fmt.Sprintf("transpose: invalid permutation %v", axes))
		}
		seen[ax] = true
		outShape[i] = shape[ax]
	}

	result := cpu.alloc("transpose", outShape, t.DType())

	elem := t.DType().Size()
	src := t.Data()
	dst := result.Data()
	inStrides := t.Strides()

	// Source stride for each output dimension.
	strides := make([]int, ndim)
	for i, ax := range axes {
		strides[i] = inStrides[ax]
	}

	idx := make([]int, ndim)
	srcOff := 0
	n := result.NumElements()
	for i := 0; i < n; i++ {
		copy(dst[i*elem:(i+1)*elem], src[srcOff*elem:(srcOff+1)*elem])

		for d := ndim - 1; d >= 0; d-- {
			idx[d]++
			srcOff += strides[d]
			if idx[d] < outShape[d] {
				break
			}
			srcOff -= strides[d] * outShape[d]
			idx[d] = 0
		}
	}

	return result
}

// splitAt returns the number of outer slices before dim and the element
// count of one slice after it.
func splitAt(shape tensor.Shape, dim int) (outer, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, inner
}

func normalizeDim(op string, dim, ndim int) int {
	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("%s: dimension %d out of range for tensor of rank %d", op, dim, ndim))
	}
	return dim
}

// Narrow returns the slice [start, start+length) along dim.
func (cpu *CPUBackend) Narrow(x *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	shape := x.Shape()
	dim = normalizeDim("narrow", dim, len(shape))

	if start < 0 || length <= 0 || start+length > shape[dim] {
		panic(fmt.Sprintf("narrow: range [%d, %d) out of bounds for dimension %d (size %d)",
			start, start+length, dim, shape[dim]))
	}

	outShape := shape.Clone()
	outShape[dim] = length
	result := cpu.alloc("narrow", outShape, x.DType())

	elem := x.DType().Size()
	outer, inner := splitAt(shape, dim)
	rowBytes := inner * elem
	src := x.Data()
	dst := result.Data()

	for o := 0; o < outer; o++ {
		srcStart := (o*shape[dim] + start) * rowBytes
		dstStart := o * length * rowBytes
		copy(dst[dstStart:dstStart+length*rowBytes], src[srcStart:srcStart+length*rowBytes])
	}

	return result
}

// Cat concatenates tensors along dim. All other dimensions must match.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: no tensors")
	}

	first := tensors[0]
	shape := first.Shape()
	dim = normalizeDim("cat", dim, len(shape))

	outShape := shape.Clone()
	outShape[dim] = 0
	for _, t := range tensors {
		ts := t.Shape()
		if len(ts) != len(shape) || t.DType() != first.DType() {
			panic(fmt.Sprintf("cat: incompatible tensor %v (%s) vs %v (%s)", ts, t.DType(), shape, first.DType()))
		}
		for d := range ts {
			if d != dim && ts[d] != shape[d] {
				panic(fmt.Sprintf("cat: shape mismatch at dimension %d: %v vs %v", d, ts, shape))
			}
		}
		outShape[dim] += ts[dim]
	}

	result := cpu.alloc("cat", outShape, first.DType())

	elem := first.DType().Size()
	outer, inner := splitAt(outShape, dim)
	rowBytes := inner * elem
	dst := result.Data()

	offset := 0
	for _, t := range tensors {
		size := t.Shape()[dim]
		src := t.Data()
		for o := 0; o < outer; o++ {
			dstStart := (o*outShape[dim] + offset) * rowBytes
			srcStart := o * size * rowBytes
			copy(dst[dstStart:dstStart+size*rowBytes], src[srcStart:srcStart+size*rowBytes])
		}
		offset += size
	}

	return result
}
