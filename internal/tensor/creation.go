package tensor

import "math/rand"

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	raw, err := NewRaw(shape, DataTypeOf[T](), b.Device())
	if err != nil {
		panic(err)
	}
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, T(1), b)
}

// Full creates a tensor filled with value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn creates a float tensor with values drawn from N(0, 1).
// Uses math/rand: fine for ML initialization, not for anything security related.
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	if !DataTypeOf[T]().IsFloat() {
		panic("Randn only supports float32 and float64 types")
	}
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = T(rand.NormFloat64()) //nolint:gosec // G404: weight init
	}
	return t
}

// Rand creates a float tensor with values uniformly distributed in [0, 1).
func Rand[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	if !DataTypeOf[T]().IsFloat() {
		panic("Rand only supports float32 and float64 types")
	}
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = T(rand.Float64()) //nolint:gosec // G404: weight init
	}
	return t
}

// Indices builds a 1-D int32 tensor from Go ints.
// Used for row gathers (packing, reordering a batch).
func Indices[B Backend](idx []int, b B) *Tensor[int32, B] {
	t := Zeros[int32, B](Shape{len(idx)}, b)
	data := t.Data()
	for i, v := range idx {
		data[i] = int32(v) //nolint:gosec // G115: indices are bounded by tensor sizes
	}
	return t
}
