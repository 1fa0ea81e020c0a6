// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sentiment/backend/cpu"
	"github.com/born-ml/sentiment/tensor"
)

func TestParallelMatchesSequential(t *testing.T) {
	seq := cpu.NewWithParallel(cpu.SequentialConfig())
	par := cpu.NewWithParallel(cpu.ParallelConfig{Enabled: true, NumWorkers: 4, MinChunkSize: 2})

	a := make([]float32, 64*8)
	b := make([]float32, 8*5)
	for i := range a {
		a[i] = float32(i%7) - 3
	}
	for i := range b {
		b[i] = float32(i%5) * 0.5
	}

	product := func(backend *cpu.Backend) []float32 {
		x, err := tensor.FromSlice(a, tensor.Shape{64, 8}, backend)
		require.NoError(t, err)
		y, err := tensor.FromSlice(b, tensor.Shape{8, 5}, backend)
		require.NoError(t, err)
		return x.MatMul(y).Data()
	}
	assert.Equal(t, product(seq), product(par))
	assert.Equal(t, 1, cpu.SequentialConfig().NumWorkers)
	assert.Positive(t, cpu.DefaultParallelConfig().NumWorkers)
}
