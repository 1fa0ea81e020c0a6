package cpu

import (
	"math"
	"testing"

	"github.com/born-ml/sentiment/internal/parallel"
	"github.com/born-ml/sentiment/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawF32(t *testing.T, shape tensor.Shape, data ...float32) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), data)
	return r
}

func rawI32(t *testing.T, shape tensor.Shape, data ...int32) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Int32, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsInt32(), data)
	return r
}

func TestCPUBackend_New(t *testing.T) {
	backend := New()
	require.NotNil(t, backend)
	assert.Equal(t, "CPU", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
}

func TestCPUBackend_Binary(t *testing.T) {
	backend := New()

	t.Run("SameShape", func(t *testing.T) {
		a := rawF32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
		b := rawF32(t, tensor.Shape{2, 3}, 10, 11, 12, 13, 14, 15)

		assert.Equal(t, []float32{11, 13, 15, 17, 19, 21}, backend.Add(a, b).AsFloat32())
		assert.Equal(t, []float32{-9, -9, -9, -9, -9, -9}, backend.Sub(a, b).AsFloat32())
		assert.Equal(t, []float32{10, 22, 36, 52, 70, 90}, backend.Mul(a, b).AsFloat32())

		// Inputs are never written.
		assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, a.AsFloat32())
	})

	t.Run("BiasBroadcast", func(t *testing.T) {
		x := rawF32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
		bias := rawF32(t, tensor.Shape{3}, 10, 20, 30)

		result := backend.Add(x, bias)
		assert.Equal(t, tensor.Shape{2, 3}, result.Shape())
		assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, result.AsFloat32())
	})

	t.Run("ColumnBroadcast", func(t *testing.T) {
		x := rawF32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
		col := rawF32(t, tensor.Shape{2, 1}, 1, 2)

		assert.Equal(t, []float32{1, 2, 3, 8, 10, 12}, backend.Mul(x, col).AsFloat32())
		assert.Equal(t, []float32{0, -1, -2, -2, -3, -4}, backend.Sub(col, x).AsFloat32())
	})

	t.Run("Incompatible", func(t *testing.T) {
		a := rawF32(t, tensor.Shape{2, 3})
		b := rawF32(t, tensor.Shape{2, 4})
		assert.Panics(t, func() { backend.Add(a, b) })
	})

	t.Run("Int32", func(t *testing.T) {
		a := rawI32(t, tensor.Shape{3}, 1, 2, 3)
		assert.Equal(t, []int32{2, 4, 6}, backend.Add(a, a).AsInt32())
	})
}

func TestCPUBackend_MulScalar(t *testing.T) {
	backend := New()
	x := rawF32(t, tensor.Shape{3}, 1, -2, 3)
	assert.Equal(t, []float32{-1, 2, -3}, backend.MulScalar(x, -1).AsFloat32())
}

func TestCPUBackend_MatMul(t *testing.T) {
	a := rawF32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	b := rawF32(t, tensor.Shape{3, 2}, 7, 8, 9, 10, 11, 12)

	for name, backend := range map[string]*CPUBackend{
		"Default":    New(),
		"Sequential": New().WithParallel(parallel.Sequential()),
		"Parallel":   New().WithParallel(parallel.Config{Enabled: true, NumWorkers: 2, MinChunkSize: 1}),
	} {
		t.Run(name, func(t *testing.T) {
			result := backend.MatMul(a, b)
			assert.Equal(t, tensor.Shape{2, 2}, result.Shape())
			assert.Equal(t, []float32{58, 64, 139, 154}, result.AsFloat32())
		})
	}

	assert.Panics(t, func() { New().MatMul(a, a) })
}

func TestCPUBackend_Reshape(t *testing.T) {
	backend := New()
	x := rawF32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)

	r := backend.Reshape(x, tensor.Shape{3, -1})
	assert.Equal(t, tensor.Shape{3, 2}, r.Shape())
	assert.Equal(t, x.AsFloat32(), r.AsFloat32())

	assert.Panics(t, func() { backend.Reshape(x, tensor.Shape{4, 2}) })
}

func TestCPUBackend_Transpose(t *testing.T) {
	backend := New()

	x := rawF32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	tr := backend.Transpose(x)
	assert.Equal(t, tensor.Shape{3, 2}, tr.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, tr.AsFloat32())

	// [2,2,2] with axes (1,0,2) swaps the outer dims.
	y := rawF32(t, tensor.Shape{2, 2, 2}, 0, 1, 2, 3, 4, 5, 6, 7)
	p := backend.Transpose(y, 1, 0, 2)
	assert.Equal(t, []float32{0, 1, 4, 5, 2, 3, 6, 7}, p.AsFloat32())

	assert.Panics(t, func() { backend.Transpose(y, 0, 0, 1) })
}

func TestCPUBackend_NarrowCat(t *testing.T) {
	backend := New()
	x := rawF32(t, tensor.Shape{2, 4}, 0, 1, 2, 3, 4, 5, 6, 7)

	cols := backend.Narrow(x, 1, 1, 2)
	assert.Equal(t, tensor.Shape{2, 2}, cols.Shape())
	assert.Equal(t, []float32{1, 2, 5, 6}, cols.AsFloat32())

	rows := backend.Narrow(x, 0, 1, 1)
	assert.Equal(t, []float32{4, 5, 6, 7}, rows.AsFloat32())

	left := backend.Narrow(x, 1, 0, 1)
	right := backend.Narrow(x, 1, 1, 3)
	joined := backend.Cat([]*tensor.RawTensor{left, right}, 1)
	assert.Equal(t, x.Shape(), joined.Shape())
	assert.Equal(t, x.AsFloat32(), joined.AsFloat32())

	stacked := backend.Cat([]*tensor.RawTensor{x, rows}, 0)
	assert.Equal(t, tensor.Shape{3, 4}, stacked.Shape())
	assert.Equal(t, []float32{4, 5, 6, 7}, stacked.AsFloat32()[8:])

	assert.Panics(t, func() { backend.Narrow(x, 1, 3, 2) })
	assert.Panics(t, func() { backend.Cat([]*tensor.RawTensor{x, cols}, 0) })
}

func TestCPUBackend_Embedding(t *testing.T) {
	backend := New()
	weight := rawF32(t, tensor.Shape{3, 2}, 0, 0, 1, 2, 3, 4)
	indices := rawI32(t, tensor.Shape{2, 2}, 2, 1, 0, 2)

	result := backend.Embedding(weight, indices, 0)
	assert.Equal(t, tensor.Shape{2, 2, 2}, result.Shape())
	assert.Equal(t, []float32{3, 4, 1, 2, 0, 0, 3, 4}, result.AsFloat32())

	bad := rawI32(t, tensor.Shape{1}, 3)
	assert.Panics(t, func() { backend.Embedding(weight, bad, -1) })
}

func TestCPUBackend_Activations(t *testing.T) {
	backend := New()
	x := rawF32(t, tensor.Shape{4}, 0, 1, -1, -200)

	sig := backend.Sigmoid(x).AsFloat32()
	assert.InDelta(t, 0.5, sig[0], 1e-6)
	assert.InDelta(t, 1/(1+math.Exp(-1)), sig[1], 1e-6)
	assert.InDelta(t, 1-sig[1], sig[2], 1e-6)
	assert.False(t, math.IsNaN(float64(sig[3])))

	th := backend.Tanh(x).AsFloat32()
	assert.InDelta(t, 0, th[0], 1e-6)
	assert.InDelta(t, math.Tanh(1), th[1], 1e-6)
	assert.InDelta(t, -1, th[3], 1e-6)

	assert.Panics(t, func() { backend.Sigmoid(rawI32(t, tensor.Shape{1}, 1)) })
}
