package nn

import (
	"fmt"

	"github.com/born-ml/sentiment/internal/tensor"
)

// BCELoss computes mean binary cross-entropy between probabilities and
// {0, 1} targets.
//
// Loss = mean(-(t * log(p) + (1 - t) * log(1 - p)))
//
// Each log term is clamped at -100, so saturated predictions give a large but
// finite loss.
//
// Example:
//
//	criterion := nn.NewBCELoss[B]()
//	probs, _ := model.Forward(tokens, lengths)
//	loss := criterion.Forward(probs, labels)
type BCELoss[B tensor.Backend] struct{}

// NewBCELoss creates a new BCE loss function.
func NewBCELoss[B tensor.Backend]() *BCELoss[B] {
	return &BCELoss[B]{}
}

// Forward computes the scalar loss.
// Panics if predictions and targets differ in shape.
func (l *BCELoss[B]) Forward(predictions, targets *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !predictions.Shape().Equal(targets.Shape()) {
		panic(fmt.Sprintf("BCELoss: predictions %v and targets %v must have the same shape",
			predictions.Shape(), targets.Shape()))
	}
	return predictions.BinaryCrossEntropy(targets)
}
