// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sentiment/backend/cpu"
	"github.com/born-ml/sentiment/tensor"
)

// TestBackendInterface verifies that the CPU backend implements tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = cpu.New()
}

func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	assert.True(t, raw.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, tensor.Float32, raw.DType())
	assert.Equal(t, tensor.CPU, raw.Device())
	assert.Equal(t, 6, raw.NumElements())
	assert.Equal(t, make([]float32, 6), raw.AsFloat32())
}

func TestTensorOps(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	assert.Equal(t, []float32{2, 3, 4, 5}, x.Add(tensor.Ones[float32](tensor.Shape{2, 2}, backend)).Data())
	assert.Equal(t, []float32{5, 11, 11, 25}, x.MatMul(x.T()).Data())
	assert.Equal(t, tensor.Shape{4, 2}, tensor.Cat([]*tensor.Tensor[float32, *cpu.Backend]{x, x}, 0).Shape())
	assert.Equal(t, float32(7), tensor.Full(tensor.Shape{1}, float32(7), backend).Item())
}

func TestFromSlice_ShapeMismatch(t *testing.T) {
	_, err := tensor.FromSlice([]int32{1, 2, 3}, tensor.Shape{2, 2}, cpu.New())
	assert.Error(t, err)
}
