package autodiff_test

import (
	"math"
	"testing"

	"github.com/born-ml/sentiment/internal/autodiff"
	"github.com/born-ml/sentiment/internal/backend/cpu"
	"github.com/born-ml/sentiment/internal/tensor"
	"github.com/stretchr/testify/require"
)

type f64Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

// checkGradient compares the autodiff gradient of a scalar function f with
// central finite differences at every element of x.
func checkGradient(
	t *testing.T,
	x []float64,
	shape tensor.Shape,
	f func(x *tensor.Tensor[float64, f64Backend]) *tensor.Tensor[float64, f64Backend],
) {
	t.Helper()
	const eps = 1e-6
	const tol = 1e-5

	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	xt, err := tensor.FromSlice(x, shape, backend)
	require.NoError(t, err)
	grads := autodiff.Backward(f(xt), backend)
	analytic := grads[xt.Raw()].AsFloat64()

	backend.Tape().StopRecording()
	eval := func(v []float64) float64 {
		vt, err := tensor.FromSlice(v, shape, backend)
		require.NoError(t, err)
		return f(vt).Item()
	}

	for i := range x {
		plus := append([]float64(nil), x...)
		minus := append([]float64(nil), x...)
		plus[i] += eps
		minus[i] -= eps
		numeric := (eval(plus) - eval(minus)) / (2 * eps)

		if math.Abs(numeric-analytic[i]) > tol*math.Max(1, math.Abs(numeric)) {
			t.Errorf("grad[%d]: autodiff %g, numerical %g", i, analytic[i], numeric)
		}
	}
}

func TestGradientCheck_SigmoidTanhChain(t *testing.T) {
	checkGradient(t, []float64{-1.5, 0.2, 0.7, 2.0}, tensor.Shape{4},
		func(x *tensor.Tensor[float64, f64Backend]) *tensor.Tensor[float64, f64Backend] {
			target := tensor.Full[float64](tensor.Shape{4}, 0.25, x.Backend())
			return x.Tanh().Mul(x).Sigmoid().BinaryCrossEntropy(target)
		})
}

func TestGradientCheck_LinearLayer(t *testing.T) {
	weights := []float64{0.1, -0.2, 0.3, 0.4, 0.5, -0.6}
	checkGradient(t, weights, tensor.Shape{2, 3},
		func(w *tensor.Tensor[float64, f64Backend]) *tensor.Tensor[float64, f64Backend] {
			b := w.Backend()
			x, _ := tensor.FromSlice([]float64{1, 2, 3, -1, 0, 1}, tensor.Shape{2, 3}, b)
			target, _ := tensor.FromSlice([]float64{1, 0, 1, 0}, tensor.Shape{2, 2}, b)
			return x.MatMul(w.T()).Sigmoid().BinaryCrossEntropy(target)
		})
}

func TestGradientCheck_GatherAndCat(t *testing.T) {
	checkGradient(t, []float64{0.5, -0.5, 1, 2, -1, 0.3}, tensor.Shape{3, 2},
		func(w *tensor.Tensor[float64, f64Backend]) *tensor.Tensor[float64, f64Backend] {
			b := w.Backend()
			rows := w.SelectRows([]int{2, 0, 2})
			joined := tensor.Cat([]*tensor.Tensor[float64, f64Backend]{rows.Narrow(0, 0, 1), rows.Narrow(0, 1, 2)}, 0)
			target := tensor.Full[float64](tensor.Shape{6}, 1, b)
			return joined.Reshape(6).Sigmoid().BinaryCrossEntropy(target)
		})
}
