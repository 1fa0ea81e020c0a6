// Package autodiff implements automatic differentiation using the decorator pattern.
//
// AutodiffBackend wraps any Backend implementation and adds gradient tracking
// through a GradientTape.
//
// Architecture:
//   - Decorator pattern: AutodiffBackend[B] wraps any Backend implementation
//   - GradientTape: Records operations during forward pass
//   - Operation interface: Each op implements its backward pass
//   - Reverse-mode AD: Computes gradients efficiently using chain rule
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	loss := model.Forward(x).BinaryCrossEntropy(y)
//	grads := autodiff.Backward(loss, backend)
package autodiff

import (
	"github.com/born-ml/sentiment/internal/autodiff/ops"
	"github.com/born-ml/sentiment/internal/tensor"
)

// AutodiffBackend wraps a Backend and adds automatic differentiation.
// It implements the tensor.Backend interface and records operations in a GradientTape.
//
// AutodiffBackend is not safe for concurrent use: the tape is shared state.
type AutodiffBackend[B tensor.Backend] struct {
	inner B             // Wrapped backend
	tape  *GradientTape // Records operations for backpropagation
}

// New creates a new AutodiffBackend wrapping the given backend.
func New[B tensor.Backend](backend B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{
		inner: backend,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for manual control.
// Useful for:
//   - Starting/stopping recording
//   - Clearing tape between iterations
func (b *AutodiffBackend[B]) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend for direct access.
func (b *AutodiffBackend[B]) Inner() B {
	return b.inner
}

// Name returns the backend name.
func (b *AutodiffBackend[B]) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Device returns the compute device.
func (b *AutodiffBackend[B]) Device() tensor.Device {
	return b.inner.Device()
}

// Add performs element-wise addition and records the operation.
func (b *AutodiffBackend[B]) Add(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Add(a, c)
	b.tape.Record(ops.NewAddOp(a, c, result))
	return result
}

// Sub performs element-wise subtraction and records the operation.
func (b *AutodiffBackend[B]) Sub(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sub(a, c)
	b.tape.Record(ops.NewSubOp(a, c, result))
	return result
}

// Mul performs element-wise multiplication and records the operation.
func (b *AutodiffBackend[B]) Mul(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Mul(a, c)
	b.tape.Record(ops.NewMulOp(a, c, result))
	return result
}

// MulScalar scales x and records the operation.
func (b *AutodiffBackend[B]) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	result := b.inner.MulScalar(x, s)
	b.tape.Record(ops.NewMulScalarOp(x, result, s))
	return result
}

// MatMul performs matrix multiplication and records the operation.
func (b *AutodiffBackend[B]) MatMul(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.MatMul(a, c)
	b.tape.Record(ops.NewMatMulOp(a, c, result))
	return result
}

// Reshape changes the shape and records the operation.
func (b *AutodiffBackend[B]) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result := b.inner.Reshape(t, newShape)
	b.tape.Record(ops.NewReshapeOp(t, result))
	return result
}

// Transpose permutes dimensions and records the operation.
func (b *AutodiffBackend[B]) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	ndim := len(t.Shape())
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}

	result := b.inner.Transpose(t, axes...)
	b.tape.Record(ops.NewTransposeOp(t, result, axes))
	return result
}

// Narrow slices along dim and records the operation.
func (b *AutodiffBackend[B]) Narrow(x *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	if dim < 0 {
		dim += len(x.Shape())
	}
	result := b.inner.Narrow(x, dim, start, length)
	b.tape.Record(ops.NewNarrowOp(x, result, dim, start))
	return result
}

// Cat concatenates along dim and records the operation.
func (b *AutodiffBackend[B]) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if dim < 0 && len(tensors) > 0 {
		dim += len(tensors[0].Shape())
	}
	result := b.inner.Cat(tensors, dim)
	b.tape.Record(ops.NewCatOp(tensors, result, dim))
	return result
}

// Embedding looks up rows and records the operation.
func (b *AutodiffBackend[B]) Embedding(weight, indices *tensor.RawTensor, paddingIdx int) *tensor.RawTensor {
	result := b.inner.Embedding(weight, indices, paddingIdx)
	b.tape.Record(ops.NewEmbeddingOp(weight, indices, result, paddingIdx))
	return result
}

// Sigmoid applies the logistic function and records the operation.
func (b *AutodiffBackend[B]) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sigmoid(x)
	b.tape.Record(ops.NewSigmoidOp(x, result))
	return result
}

// Tanh applies tanh and records the operation.
func (b *AutodiffBackend[B]) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Tanh(x)
	b.tape.Record(ops.NewTanhOp(x, result))
	return result
}

// BinaryCrossEntropy computes the mean BCE and records the operation.
func (b *AutodiffBackend[B]) BinaryCrossEntropy(pred, target *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.BinaryCrossEntropy(pred, target)
	b.tape.Record(ops.NewBCEOp(pred, target, result))
	return result
}
