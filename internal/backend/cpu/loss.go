package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/sentiment/internal/tensor"
)

// minLog bounds each log term so saturated probabilities give a finite loss.
const minLog = -100.0

// BinaryCrossEntropy computes mean(-(t*log(p) + (1-t)*log(1-p))) as a scalar.
func (cpu *CPUBackend) BinaryCrossEntropy(pred, target *tensor.RawTensor) *tensor.RawTensor {
	if !pred.Shape().Equal(target.Shape()) {
		panic(fmt.Sprintf("bce: shape mismatch %v vs %v", pred.Shape(), target.Shape()))
	}
	if pred.DType() != target.DType() {
		panic(fmt.Sprintf("bce: dtype mismatch %s vs %s", pred.DType(), target.DType()))
	}

	result := cpu.alloc("bce", tensor.Shape{}, pred.DType())

	switch pred.DType() {
	case tensor.Float32:
		result.AsFloat32()[0] = float32(bce(pred.AsFloat32(), target.AsFloat32()))
	case tensor.Float64:
		result.AsFloat64()[0] = bce(pred.AsFloat64(), target.AsFloat64())
	default:
		panic(fmt.Sprintf("bce: unsupported dtype %s (only float32/float64 supported)", pred.DType()))
	}

	return result
}

func bce[T float32 | float64](p, t []T) float64 {
	var sum float64
	for i := range p {
		pv, tv := float64(p[i]), float64(t[i])
		logP := math.Max(math.Log(pv), minLog)
		log1mP := math.Max(math.Log(1-pv), minLog)
		sum -= tv*logP + (1-tv)*log1mP
	}
	return sum / float64(len(p))
}
