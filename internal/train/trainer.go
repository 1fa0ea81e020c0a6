// Package train fits an RNNClassifier with tape-based backpropagation.
package train

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/born-ml/sentiment/internal/autodiff"
	"github.com/born-ml/sentiment/internal/backend/cpu"
	"github.com/born-ml/sentiment/internal/classifier"
	"github.com/born-ml/sentiment/internal/data"
	"github.com/born-ml/sentiment/internal/logger"
	"github.com/born-ml/sentiment/internal/nn"
	"github.com/born-ml/sentiment/internal/optim"
	"github.com/born-ml/sentiment/internal/serialization"
)

// Backend is the differentiable CPU backend training runs on.
type Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

// Model is a classifier whose parameters can be trained.
type Model = classifier.RNNClassifier[Backend]

// NewBackend returns a fresh training backend.
func NewBackend() Backend {
	return autodiff.New(cpu.New())
}

// ErrNoTrainingData is returned by Fit when there is nothing to train on.
var ErrNoTrainingData = errors.New("no training data")

// Options configures a Trainer.
type Options struct {
	Epochs       int
	Optimizer    string  // "adam" (default) or "sgd"
	LearningRate float32 // 0 uses the optimizer default
	Momentum     float32 // sgd only
	ClipNorm     float64 // 0 disables clipping
	Seed         int64   // shuffling seed
	OutputPath   string  // best checkpoint; empty disables saving
	LogEvery     int     // batches between progress lines; 0 disables

	// Metadata is stored in every checkpoint (tokenizer spec, dataset name).
	Metadata map[string]string
}

// EpochResult records one epoch.
type EpochResult struct {
	Epoch     int
	TrainLoss float64
	GradNorm  float64 // mean pre-clipping gradient norm
	Val       Metrics
	Duration  time.Duration
	Saved     bool // a new best checkpoint was written
}

// Trainer owns the optimizer state for one model.
type Trainer struct {
	model     *Model
	backend   Backend
	opts      Options
	optimizer optim.Optimizer
	criterion *nn.BCELoss[Backend]
	log       logrus.FieldLogger
	runID     string
	step      int64
}

// New creates a trainer for model. log may be nil.
func New(model *Model, opts Options, log logrus.FieldLogger) (*Trainer, error) {
	if opts.Epochs <= 0 {
		opts.Epochs = 1
	}

	params := model.Parameters()
	var optimizer optim.Optimizer
	switch opts.Optimizer {
	case "", "adam":
		opts.Optimizer = "adam"
		optimizer = optim.NewAdam(params, optim.AdamConfig{LR: opts.LearningRate})
	case "sgd":
		optimizer = optim.NewSGD(params, optim.SGDConfig{LR: opts.LearningRate, Momentum: opts.Momentum})
	default:
		return nil, fmt.Errorf("train: unknown optimizer %q", opts.Optimizer)
	}

	if log == nil {
		log = logger.Discard()
	}

	runID := uuid.NewString()
	return &Trainer{
		model:     model,
		backend:   model.Backend(),
		opts:      opts,
		optimizer: optimizer,
		criterion: nn.NewBCELoss[Backend](),
		log:       log.WithField("run", runID[:8]),
		runID:     runID,
	}, nil
}

// RunID identifies this training run in logs and checkpoints.
func (t *Trainer) RunID() string {
	return t.runID
}

// Step performs one optimization step on a labelled batch and returns the
// batch loss and the gradient norm before clipping.
func (t *Trainer) Step(b *data.Batch) (loss, gradNorm float64, err error) {
	if b.Labels == nil {
		return 0, 0, errors.New("train: batch has no labels")
	}

	tape := t.backend.Tape()
	tape.Clear()
	tape.StartRecording()
	defer func() {
		tape.StopRecording()
		tape.Clear()
	}()

	tokens, labels, err := data.Tensors(b, t.backend)
	if err != nil {
		return 0, 0, err
	}
	probs, err := t.model.Forward(tokens, b.Lengths)
	if err != nil {
		return 0, 0, err
	}
	lossT := t.criterion.Forward(probs, labels)
	grads := autodiff.Backward(lossT, t.backend)

	gradNorm = optim.ClipGradNorm(t.model.Parameters(), grads, t.opts.ClipNorm)
	t.optimizer.Step(grads)
	t.optimizer.ZeroGrad()
	t.step++

	return float64(lossT.Item()), gradNorm, nil
}

// Fit trains for Options.Epochs over train, evaluating on val after every
// epoch. The checkpoint with the lowest validation loss (training loss when
// val is empty) is written to Options.OutputPath.
//
// Cancellation is checked between batches; on cancellation Fit returns the
// completed epochs and ctx.Err().
func (t *Trainer) Fit(ctx context.Context, batcher *data.Batcher, train []data.Encoded, val []*data.Batch) ([]EpochResult, error) {
	if len(train) == 0 {
		return nil, ErrNoTrainingData
	}

	rng := rand.New(rand.NewSource(t.opts.Seed)) //nolint:gosec // G404: reproducible shuffling
	best := math.Inf(1)
	results := make([]EpochResult, 0, t.opts.Epochs)

	t.log.WithFields(logrus.Fields{
		"examples":   len(train),
		"epochs":     t.opts.Epochs,
		"optimizer":  t.opts.Optimizer,
		"lr":         t.optimizer.LR(),
		"parameters": t.model.NumParameters(),
	}).Info("training started")

	for epoch := 1; epoch <= t.opts.Epochs; epoch++ {
		start := time.Now()
		batches, err := batcher.Batches(train, rng)
		if err != nil {
			return results, err
		}

		var lossSum, normSum float64
		seen := 0
		for i, b := range batches {
			if err := ctx.Err(); err != nil {
				t.log.WithField("epoch", epoch).Warn("training cancelled")
				return results, err
			}

			loss, norm, err := t.Step(b)
			if err != nil {
				return results, fmt.Errorf("epoch %d batch %d: %w", epoch, i, err)
			}
			lossSum += loss * float64(b.Size)
			normSum += norm
			seen += b.Size

			if t.opts.LogEvery > 0 && (i+1)%t.opts.LogEvery == 0 {
				t.log.WithFields(logrus.Fields{
					"epoch": epoch,
					"batch": fmt.Sprintf("%d/%d", i+1, len(batches)),
					"loss":  fmt.Sprintf("%.4f", loss),
				}).Debug("progress")
			}
		}

		res := EpochResult{
			Epoch:     epoch,
			TrainLoss: lossSum / float64(seen),
			GradNorm:  normSum / float64(len(batches)),
		}
		if len(val) > 0 {
			res.Val, err = Evaluate(t.model, val)
			if err != nil {
				return results, err
			}
		}
		res.Duration = time.Since(start)

		score := res.TrainLoss
		if res.Val.Count > 0 {
			score = res.Val.Loss
		}
		if score < best {
			best = score
			if t.opts.OutputPath != "" {
				if err := t.checkpoint(res); err != nil {
					return results, err
				}
				res.Saved = true
			}
		}

		t.log.WithFields(logrus.Fields{
			"epoch":      epoch,
			"train_loss": fmt.Sprintf("%.4f", res.TrainLoss),
			"val_loss":   fmt.Sprintf("%.4f", res.Val.Loss),
			"val_acc":    fmt.Sprintf("%.4f", res.Val.Accuracy),
			"saved":      res.Saved,
			"took":       res.Duration.Round(time.Millisecond),
		}).Info("epoch finished")

		results = append(results, res)
	}

	return results, nil
}

func (t *Trainer) checkpoint(res EpochResult) error {
	loss := res.TrainLoss
	if res.Val.Count > 0 {
		loss = res.Val.Loss
	}
	return t.model.SaveWithHeader(t.opts.OutputPath, serialization.Header{
		Metadata: t.opts.Metadata,
		CheckpointMeta: &serialization.CheckpointMeta{
			RunID:         t.runID,
			Epoch:         res.Epoch,
			Step:          t.step,
			Loss:          loss,
			Accuracy:      res.Val.Accuracy,
			OptimizerType: t.opts.Optimizer,
		},
	})
}
