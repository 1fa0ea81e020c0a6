package optim_test

import (
	"math"
	"testing"

	"github.com/born-ml/sentiment/internal/autodiff"
	"github.com/born-ml/sentiment/internal/backend/cpu"
	"github.com/born-ml/sentiment/internal/nn"
	"github.com/born-ml/sentiment/internal/optim"
	"github.com/born-ml/sentiment/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backendT = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func singleParam(t *testing.T, value float32) (*nn.Parameter[backendT], map[*tensor.RawTensor]*tensor.RawTensor, *tensor.RawTensor) {
	t.Helper()
	backend := autodiff.New(cpu.New())
	x, err := tensor.FromSlice([]float32{value}, tensor.Shape{1}, backend)
	require.NoError(t, err)
	param := nn.NewParameter("x", x)

	grad := tensor.MustNewRaw(tensor.Shape{1}, tensor.Float32, tensor.CPU)
	return param, map[*tensor.RawTensor]*tensor.RawTensor{x.Raw(): grad}, grad
}

func TestSGD_SimpleUpdate(t *testing.T) {
	param, grads, grad := singleParam(t, 2.0)
	grad.AsFloat32()[0] = 1.0

	optimizer := optim.NewSGD([]*nn.Parameter[backendT]{param}, optim.SGDConfig{LR: 0.1})
	optimizer.Step(grads)

	assert.InDelta(t, 1.9, param.Tensor().Item(), 1e-6)
	assert.InDelta(t, 0.1, optimizer.LR(), 1e-6)
}

func TestSGD_WithMomentum(t *testing.T) {
	param, grads, grad := singleParam(t, 1.0)
	grad.AsFloat32()[0] = 1.0

	optimizer := optim.NewSGD([]*nn.Parameter[backendT]{param}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	optimizer.Step(grads) // v = 1, x = 0.9
	optimizer.Step(grads) // v = 1.9, x = 0.71
	assert.InDelta(t, 0.71, param.Tensor().Item(), 1e-6)
}

func TestSGD_SkipsParametersWithoutGradient(t *testing.T) {
	param, _, _ := singleParam(t, 3.0)
	optimizer := optim.NewSGD([]*nn.Parameter[backendT]{param}, optim.SGDConfig{})
	optimizer.Step(map[*tensor.RawTensor]*tensor.RawTensor{})
	assert.Equal(t, float32(3), param.Tensor().Item())
}

func TestAdam_FirstStep(t *testing.T) {
	param, grads, grad := singleParam(t, 1.0)
	grad.AsFloat32()[0] = 0.5

	optimizer := optim.NewAdam([]*nn.Parameter[backendT]{param}, optim.AdamConfig{LR: 0.01})
	optimizer.Step(grads)

	// After bias correction the first step moves by lr * sign(g).
	assert.InDelta(t, 0.99, param.Tensor().Item(), 1e-5)
}

func TestAdam_MinimizesQuadratic(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x, _ := tensor.FromSlice([]float32{5}, tensor.Shape{1}, backend)
	param := nn.NewParameter("x", x)
	optimizer := optim.NewAdam([]*nn.Parameter[backendT]{param}, optim.AdamConfig{LR: 0.1})

	for i := 0; i < 300; i++ {
		backend.Tape().Clear()
		backend.Tape().StartRecording()
		loss := x.Mul(x)
		grads := autodiff.Backward(loss, backend)
		backend.Tape().StopRecording()
		optimizer.Step(grads)
		optimizer.ZeroGrad()
	}

	assert.Less(t, math.Abs(float64(x.Item())), 0.1)
}

func TestClipGradNorm(t *testing.T) {
	backend := cpu.New()
	a, _ := tensor.FromSlice([]float32{0, 0}, tensor.Shape{2}, backend)
	b, _ := tensor.FromSlice([]float32{0}, tensor.Shape{1}, backend)
	params := []*nn.Parameter[*cpu.CPUBackend]{nn.NewParameter("a", a), nn.NewParameter("b", b)}

	ga, _ := tensor.FromSlice([]float32{3, 0}, tensor.Shape{2}, backend)
	gb, _ := tensor.FromSlice([]float32{4}, tensor.Shape{1}, backend)
	grads := map[*tensor.RawTensor]*tensor.RawTensor{a.Raw(): ga.Raw(), b.Raw(): gb.Raw()}

	norm := optim.ClipGradNorm(params, grads, 10)
	assert.InDelta(t, 5.0, norm, 1e-9)
	assert.Equal(t, []float32{3, 0}, ga.Data())

	norm = optim.ClipGradNorm(params, grads, 1)
	assert.InDelta(t, 5.0, norm, 1e-9)
	assert.InDelta(t, 0.6, ga.Data()[0], 1e-5)
	assert.InDelta(t, 0.8, gb.Data()[0], 1e-5)
}

func TestOptimizer_SetLR(t *testing.T) {
	param, grads, grad := singleParam(t, 1.0)
	grad.AsFloat32()[0] = 1.0

	var opt optim.Optimizer = optim.NewSGD([]*nn.Parameter[backendT]{param}, optim.SGDConfig{LR: 0.1})
	opt.SetLR(0.5)
	opt.Step(grads)
	assert.InDelta(t, 0.5, param.Tensor().Item(), 1e-6)
	assert.InDelta(t, 0.5, opt.LR(), 1e-6)
}
