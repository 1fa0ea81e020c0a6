// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor API used by the sentiment classifier.
//
// # Overview
//
// Tensors are generic over their element type and their compute backend:
//   - Tensor[T, B] wraps a type-erased RawTensor with static typing
//   - NumPy-style broadcasting for Add, Sub and Mul
//   - Every operation allocates its result, so autodiff can key gradients
//     by RawTensor identity
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/sentiment/backend/cpu"
//	    "github.com/born-ml/sentiment/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	    z := x.Add(y).MatMul(y.T())
//	}
//
// # Supported Data Types
//
// float32 and float64 carry activations and parameters. int32 and int64
// carry token indices; the classifier takes its input as int32.
package tensor
