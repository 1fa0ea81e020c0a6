package nn

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/born-ml/sentiment/internal/tensor"
)

var (
	rngMu sync.Mutex
	//nolint:gosec // math/rand is appropriate for ML weight initialization
	rng = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Seed resets the generator used by every initializer in this package, making
// freshly constructed modules reproducible.
func Seed(seed int64) {
	rngMu.Lock()
	defer rngMu.Unlock()
	//nolint:gosec // math/rand is appropriate for ML weight initialization
	rng = rand.New(rand.NewSource(seed))
}

func fill(n int, sample func(r *rand.Rand) float64) []float32 {
	rngMu.Lock()
	defer rngMu.Unlock()

	data := make([]float32, n)
	for i := range data {
		data[i] = float32(sample(rng))
	}
	return data
}

func fromData[B tensor.Backend](data []float32, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	t, err := tensor.FromSlice(data, shape, backend)
	if err != nil {
		panic(err)
	}
	return t
}

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return Uniform(-bound, bound, shape, backend)
}

// Uniform draws every element from U(low, high).
func Uniform[B tensor.Backend](low, high float64, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	data := fill(shape.NumElements(), func(r *rand.Rand) float64 {
		return low + r.Float64()*(high-low)
	})
	return fromData(data, shape, backend)
}

// Normal draws every element from N(0, 1).
func Normal[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	data := fill(shape.NumElements(), func(r *rand.Rand) float64 {
		return r.NormFloat64()
	})
	return fromData(data, shape, backend)
}

// Zeros creates a tensor filled with zeros.
//
// This is commonly used for bias initialization.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}
