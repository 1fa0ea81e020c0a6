package tensor

// Backend defines the interface that compute backends implement.
//
// Implementations:
//   - cpu.CPUBackend: pure Go kernels
//   - autodiff.AutodiffBackend: decorator that records operations for backprop
//
// Every method returns a newly allocated RawTensor. Shape misuse panics; the
// layers above validate user input before it reaches a backend.
type Backend interface {
	// Element-wise binary operations with NumPy broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// MulScalar multiplies every element by s.
	MulScalar(x *RawTensor, s float64) *RawTensor

	// MatMul performs 2-D matrix multiplication: (M, K) @ (K, N) -> (M, N).
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Narrow returns the slice [start, start+length) along dim.
	Narrow(x *RawTensor, dim, start, length int) *RawTensor

	// Cat concatenates tensors along dim.
	Cat(tensors []*RawTensor, dim int) *RawTensor

	// Embedding gathers rows of a 2-D weight by int32 indices of any shape.
	// The result has shape indices.Shape() + [weight.Shape()[1]].
	// paddingIdx names a row that receives no gradient; -1 disables it.
	Embedding(weight, indices *RawTensor, paddingIdx int) *RawTensor

	// Activations.
	Sigmoid(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor

	// BinaryCrossEntropy returns the mean binary cross-entropy of
	// probabilities pred against targets of the same shape, as a scalar.
	// Each log term is clamped to be >= -100.
	BinaryCrossEntropy(pred, target *RawTensor) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
