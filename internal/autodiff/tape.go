package autodiff

import (
	"github.com/born-ml/sentiment/internal/autodiff/ops"
	"github.com/born-ml/sentiment/internal/tensor"
)

// GradientTape is an append-only log of the operations run while
// recording is on. Backward replays it from the end.
//
// A tape belongs to one goroutine. The trainer clears it after every
// batch so the log never outgrows a single forward pass.
type GradientTape struct {
	ops       []ops.Operation
	recording bool
}

// NewGradientTape returns an idle tape.
func NewGradientTape() *GradientTape {
	return &GradientTape{ops: make([]ops.Operation, 0, 256)}
}

// StartRecording turns recording on.
func (t *GradientTape) StartRecording() { t.recording = true }

// StopRecording turns recording off. Recorded ops are kept.
func (t *GradientTape) StopRecording() { t.recording = false }

// IsRecording reports whether Record currently appends.
func (t *GradientTape) IsRecording() bool { return t.recording }

// Record appends op while recording and drops it otherwise.
func (t *GradientTape) Record(op ops.Operation) {
	if t.recording {
		t.ops = append(t.ops, op)
	}
}

// Clear forgets every recorded op but keeps the recording flag.
func (t *GradientTape) Clear() {
	clear(t.ops)
	t.ops = t.ops[:0]
}

// NumOps is the number of recorded ops.
func (t *GradientTape) NumOps() int { return len(t.ops) }

// Backward walks the tape newest-first starting from output with gradient
// seed. An op contributes only once its output has a gradient, so ops that
// do not feed output are skipped. When a tensor feeds several ops its
// gradients are summed with backend.Add. Recording is paused for the walk
// so gradient arithmetic never lands on the tape.
func (t *GradientTape) Backward(output, seed *tensor.RawTensor, backend tensor.Backend) map[*tensor.RawTensor]*tensor.RawTensor {
	grads := map[*tensor.RawTensor]*tensor.RawTensor{output: seed}

	defer func(was bool) { t.recording = was }(t.recording)
	t.recording = false

	for i := len(t.ops) - 1; i >= 0; i-- {
		op := t.ops[i]
		g, ok := grads[op.Output()]
		if !ok {
			continue
		}
		inputGrads := op.Backward(g, backend)
		for j, in := range op.Inputs() {
			if j >= len(inputGrads) || inputGrads[j] == nil {
				continue
			}
			if prev, ok := grads[in]; ok {
				grads[in] = backend.Add(prev, inputGrads[j])
				continue
			}
			grads[in] = inputGrads[j]
		}
	}
	return grads
}
