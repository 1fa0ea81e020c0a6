package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
	}{
		{Float32, 4},
		{Float64, 8},
		{Int32, 4},
		{Int64, 8},
	}

	for _, tt := range tests {
		if got := tt.dtype.Size(); got != tt.size {
			t.Errorf("%s.Size() = %d, want %d", tt.dtype, got, tt.size)
		}
	}
}

func TestParseDataType(t *testing.T) {
	for _, dt := range []DataType{Float32, Float64, Int32, Int64} {
		parsed, ok := ParseDataType(dt.String())
		require.True(t, ok, dt.String())
		assert.Equal(t, dt, parsed)
	}

	_, ok := ParseDataType("bfloat16")
	assert.False(t, ok)
}

func TestDataTypeOf(t *testing.T) {
	assert.Equal(t, Float32, DataTypeOf[float32]())
	assert.Equal(t, Float64, DataTypeOf[float64]())
	assert.Equal(t, Int32, DataTypeOf[int32]())
	assert.Equal(t, Int64, DataTypeOf[int64]())
	assert.True(t, Float32.IsFloat())
	assert.False(t, Int32.IsFloat())
}

func TestShape(t *testing.T) {
	s := Shape{2, 3, 4}
	assert.Equal(t, 24, s.NumElements())
	assert.Equal(t, []int{12, 4, 1}, s.ComputeStrides())
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.NoError(t, s.Validate())
	assert.Error(t, Shape{2, 0}.Validate())

	clone := s.Clone()
	clone[0] = 9
	assert.Equal(t, 2, s[0])
	assert.False(t, s.Equal(clone))
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Shape
		want      Shape
		broadcast bool
		wantErr   bool
	}{
		{"same", Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false, false},
		{"column", Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"row", Shape{1, 5}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"bias", Shape{4, 8}, Shape{8}, Shape{4, 8}, true, false},
		{"incompatible", Shape{3, 4}, Shape{3, 5}, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, broadcast, err := BroadcastShapes(tt.a, tt.b)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.broadcast, broadcast)
		})
	}
}

func TestBroadcastStrides(t *testing.T) {
	assert.Equal(t, []int{0, 1}, BroadcastStrides(Shape{8}, Shape{4, 8}))
	assert.Equal(t, []int{1, 0}, BroadcastStrides(Shape{3, 1}, Shape{3, 5}))
	assert.Equal(t, []int{5, 1}, BroadcastStrides(Shape{3, 5}, Shape{3, 5}))
}

func TestRawTensor(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32, CPU)
	require.NoError(t, err)
	assert.Equal(t, 24, raw.ByteSize())
	assert.Equal(t, CPU, raw.Device())

	data := raw.AsFloat32()
	for i := range data {
		data[i] = float32(i)
	}

	clone := raw.Clone()
	data[0] = 42
	assert.Equal(t, float32(0), clone.AsFloat32()[0])
	assert.Equal(t, float32(42), RawView[float32](raw)[0])

	assert.Panics(t, func() { raw.AsInt32() })

	_, err = NewRaw(Shape{0, 3}, Float32, CPU)
	assert.Error(t, err)
}
