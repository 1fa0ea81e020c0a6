// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/sentiment/internal/backend/cpu"
	"github.com/born-ml/sentiment/internal/parallel"
	"github.com/born-ml/sentiment/tensor"
)

// Backend is the pure Go CPU backend.
type Backend = internalcpu.CPUBackend

var _ tensor.Backend = (*Backend)(nil)

// ParallelConfig controls how the matrix kernels split rows across
// goroutines.
type ParallelConfig = parallel.Config

// New returns a backend that splits large products across all CPUs.
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
func New() *Backend {
	return internalcpu.New()
}

// NewWithParallel returns a backend using cfg for its row-parallel kernels.
func NewWithParallel(cfg ParallelConfig) *Backend {
	return internalcpu.New().WithParallel(cfg)
}

// DefaultParallelConfig is the configuration New uses.
func DefaultParallelConfig() ParallelConfig { return parallel.DefaultConfig() }

// SequentialConfig keeps every kernel on the calling goroutine. Results
// are identical to the parallel kernels.
func SequentialConfig() ParallelConfig { return parallel.Sequential() }
