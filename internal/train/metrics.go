package train

import (
	"fmt"

	"github.com/born-ml/sentiment/internal/classifier"
	"github.com/born-ml/sentiment/internal/data"
	"github.com/born-ml/sentiment/internal/nn"
	"github.com/born-ml/sentiment/internal/tensor"
)

// Metrics summarizes a pass over labelled batches.
type Metrics struct {
	Loss     float64 // Mean BCE per example
	Accuracy float64 // Fraction correct at the 0.5 threshold
	Count    int     // Examples seen
}

// String implements fmt.Stringer.
func (m Metrics) String() string {
	return fmt.Sprintf("loss=%.4f acc=%.4f n=%d", m.Loss, m.Accuracy, m.Count)
}

// Evaluate runs model over labelled batches without recording gradients.
func Evaluate[B tensor.Backend](model *classifier.RNNClassifier[B], batches []*data.Batch) (Metrics, error) {
	criterion := nn.NewBCELoss[B]()

	var m Metrics
	var lossSum float64
	correct := 0
	for i, b := range batches {
		if b.Labels == nil {
			return Metrics{}, fmt.Errorf("evaluate: batch %d has no labels", i)
		}
		tokens, labels, err := data.Tensors(b, model.Backend())
		if err != nil {
			return Metrics{}, fmt.Errorf("evaluate: batch %d: %w", i, err)
		}
		probs, err := model.Forward(tokens, b.Lengths)
		if err != nil {
			return Metrics{}, fmt.Errorf("evaluate: batch %d: %w", i, err)
		}

		lossSum += float64(criterion.Forward(probs, labels).Item()) * float64(b.Size)
		for j, p := range probs.Data() {
			if (p >= 0.5) == (b.Labels[j] >= 0.5) {
				correct++
			}
		}
		m.Count += b.Size
	}

	if m.Count > 0 {
		m.Loss = lossSum / float64(m.Count)
		m.Accuracy = float64(correct) / float64(m.Count)
	}
	return m, nil
}
