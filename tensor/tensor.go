// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/sentiment/internal/tensor"
)

// DType is a constraint for tensor element types: float32, float64, int32, int64.
type DType = tensor.DType

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// CPU is the only device the sentiment stack computes on.
const CPU Device = tensor.CPU

// Shape represents the dimensions of a tensor.
// Example: Shape{5, 2} is a time-major batch of two sequences of five steps.
type Shape = tensor.Shape

// Backend is the contract compute backends implement.
//
// Implementations:
//   - backend/cpu: pure Go kernels
//   - autodiff: decorator that records operations for backpropagation
type Backend = tensor.Backend

// Tensor is a generic type-safe tensor.
//
// Example:
//
//	backend := cpu.New()
//	ids, _ := tensor.FromSlice([]int32{3, 5, 0, 2}, tensor.Shape{2, 2}, backend)
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// RawTensor is the low-level, type-erased tensor representation.
//
// Most users should use the high-level Tensor[T, B] type instead.
type RawTensor = tensor.RawTensor

// NewRaw allocates a zero-filled RawTensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromSlice creates a tensor holding a copy of data.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice(data, shape, b)
}

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T](shape, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Ones[T](shape, b)
}

// Full creates a tensor filled with value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full(shape, value, b)
}

// Randn creates a tensor of standard normal samples.
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Randn[T](shape, b)
}

// Rand creates a tensor of uniform samples in [0, 1).
func Rand[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Rand[T](shape, b)
}

// Cat concatenates tensors along dim.
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	return tensor.Cat(tensors, dim)
}
