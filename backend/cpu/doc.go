// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Row-parallel matrix multiplication for large operands
//   - NumPy-compatible broadcasting
//   - The gather, slice and activation kernels recurrent layers need
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/sentiment/backend/cpu"
//	    "github.com/born-ml/sentiment/classifier"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    model, err := classifier.New(classifier.Config{NumEmbeddings: 10, EmbeddingDim: 4, HiddenSize: 8, UseLSTM: true}, backend)
//	}
//
// # Thread Safety
//
// The CPU backend holds no mutable state between operations. Each
// operation allocates its result.
package cpu
