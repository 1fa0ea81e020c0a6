// Package nn implements the neural network modules used by the sentiment classifier.
//
// This package provides building blocks for constructing recurrent classifiers:
//   - Module interface: Base interface for components mapping one float tensor to another
//   - Parameter: Trainable parameters with gradient tracking
//   - Linear, Embedding: Dense projection and lookup table
//   - Activations: Sigmoid, Tanh
//   - PackedSequence: Padding compaction for variable-length batches
//   - RNNCell, LSTMCell, RNN: Recurrent cells and the stacked recurrent network
//   - BCELoss: Binary cross-entropy for training
//   - Sequential: Container for stacking layers
package nn

import (
	"github.com/born-ml/sentiment/internal/tensor"
)

// Module is the base interface for neural network components that map one
// float tensor to another.
//
//	head := nn.NewSequential[B](
//	    nn.NewLinear(hidden, 1, backend),
//	    nn.NewSigmoid[B](),
//	)
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module.
	// Returns an empty slice for modules without trainable parameters.
	Parameters() []*Parameter[B]
}

// Stateful is implemented by modules whose parameters can be exported and
// restored by name.
type Stateful interface {
	// StateDict returns a map of parameter names to raw tensors.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict copies matching tensors into the module's parameters.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}
