package tensor

import "fmt"

// Add performs element-wise addition with broadcasting.
//
//	a := tensor.Ones[float32](Shape{3, 1}, backend)
//	b := tensor.Ones[float32](Shape{3, 5}, backend)
//	c := a.Add(b) // Shape: [3, 5]
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Add(t.raw, other.raw), t.backend)
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor[T, B]) Sub(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Sub(t.raw, other.raw), t.backend)
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Mul(t.raw, other.raw), t.backend)
}

// MulScalar multiplies every element by s.
func (t *Tensor[T, B]) MulScalar(s float64) *Tensor[T, B] {
	return New[T, B](t.backend.MulScalar(t.raw, s), t.backend)
}

// MatMul performs matrix multiplication: (M, K) @ (K, N) → (M, N).
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.MatMul(t.raw, other.raw), t.backend)
}

// Reshape returns a tensor with the same data but a different shape.
func (t *Tensor[T, B]) Reshape(newShape ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Reshape(t.raw, Shape(newShape)), t.backend)
}

// Transpose permutes dimensions. With no axes it reverses them.
//
//	t := tensor.Randn[float32](Shape{2, 3, 4}, backend)
//	p := t.Transpose(2, 0, 1) // Shape: [4, 2, 3]
func (t *Tensor[T, B]) Transpose(axes ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Transpose(t.raw, axes...), t.backend)
}

// T is a shortcut for 2-D transpose.
func (t *Tensor[T, B]) T() *Tensor[T, B] {
	if len(t.Shape()) != 2 {
		panic("T() only works for 2D tensors")
	}
	return t.Transpose(1, 0)
}

// Narrow returns the slice [start, start+length) along dim.
//
//	gates := tensor.Zeros[float32](Shape{2, 8}, backend)
//	first := gates.Narrow(1, 0, 2) // Shape: [2, 2]
func (t *Tensor[T, B]) Narrow(dim, start, length int) *Tensor[T, B] {
	return New[T, B](t.backend.Narrow(t.raw, dim, start, length), t.backend)
}

// Embedding gathers rows of a 2-D tensor by index. paddingIdx < 0 disables
// the padding row.
func (t *Tensor[T, B]) Embedding(indices *Tensor[int32, B], paddingIdx int) *Tensor[T, B] {
	return New[T, B](t.backend.Embedding(t.raw, indices.raw, paddingIdx), t.backend)
}

// SelectRows gathers rows of a 2-D tensor in the given order.
func (t *Tensor[T, B]) SelectRows(rows []int) *Tensor[T, B] {
	return t.Embedding(Indices(rows, t.backend), -1)
}

// Sigmoid applies σ(x) = 1 / (1 + exp(-x)) element-wise.
func (t *Tensor[T, B]) Sigmoid() *Tensor[T, B] {
	return New[T, B](t.backend.Sigmoid(t.raw), t.backend)
}

// Tanh applies the hyperbolic tangent element-wise.
func (t *Tensor[T, B]) Tanh() *Tensor[T, B] {
	return New[T, B](t.backend.Tanh(t.raw), t.backend)
}

// BinaryCrossEntropy returns the mean BCE between probabilities t and target.
func (t *Tensor[T, B]) BinaryCrossEntropy(target *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.BinaryCrossEntropy(t.raw, target.raw), t.backend)
}

// Cat concatenates tensors along dim.
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic("Cat: no tensors")
	}
	if len(tensors) == 1 {
		return tensors[0]
	}
	raws := make([]*RawTensor, len(tensors))
	for i, t := range tensors {
		raws[i] = t.raw
	}
	b := tensors[0].backend
	return New[T, B](b.Cat(raws, dim), b)
}

// Stack adds a new leading dimension and concatenates along it.
func Stack[T DType, B Backend](tensors []*Tensor[T, B]) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic("Stack: no tensors")
	}
	expanded := make([]*Tensor[T, B], len(tensors))
	for i, t := range tensors {
		if !t.Shape().Equal(tensors[0].Shape()) {
			panic(fmt.Sprintf("Stack: shape %v differs from %v", t.Shape(), tensors[0].Shape()))
		}
		expanded[i] = t.Reshape(append([]int{1}, t.Shape()...)...)
	}
	return Cat(expanded, 0)
}
