package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/born-ml/sentiment/internal/classifier"
	"github.com/born-ml/sentiment/internal/config"
	"github.com/born-ml/sentiment/internal/data"
	"github.com/born-ml/sentiment/internal/nn"
	"github.com/born-ml/sentiment/internal/tokenizer"
	"github.com/born-ml/sentiment/internal/train"
)

type trainFlags struct {
	trainPath string
	valPath   string
	output    string
	epochs    int
}

func trainCmd(g *globalFlags) *cobra.Command {
	f := &trainFlags{}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a classifier on a JSONL dataset",
		Long: `Train a classifier on a JSONL dataset with one {"text": ..., "label": 0|1} object per line.
The checkpoint with the best validation loss is written to training.output_path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := g.load(cmd)
			if err != nil {
				return err
			}
			f.apply(cmd, &cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runTrain(ctx, cfg, log, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&f.trainPath, "train", "", "training JSONL file (overrides data.train_path)")
	cmd.Flags().StringVar(&f.valPath, "val", "", "validation JSONL file (overrides data.val_path)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "checkpoint path (overrides training.output_path)")
	cmd.Flags().IntVar(&f.epochs, "epochs", 0, "number of epochs (overrides training.epochs)")
	return cmd
}

func (f *trainFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("train") {
		cfg.Data.TrainPath = f.trainPath
	}
	if cmd.Flags().Changed("val") {
		cfg.Data.ValPath = f.valPath
	}
	if cmd.Flags().Changed("output") {
		cfg.Training.OutputPath = f.output
	}
	if cmd.Flags().Changed("epochs") && f.epochs > 0 {
		cfg.Training.Epochs = f.epochs
	}
}

func runTrain(ctx context.Context, cfg config.Config, log *logrus.Logger, out io.Writer) error {
	if cfg.Data.TrainPath == "" {
		return errors.New("no training data: set data.train_path or --train")
	}

	trainSet, valSet, err := loadDatasets(cfg.Data, cfg.Training.Seed)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"train": len(trainSet),
		"val":   len(valSet),
	}).Info("datasets loaded")

	tok, err := buildTokenizer(cfg.Data, trainSet)
	if err != nil {
		return err
	}
	spec, err := tokenizer.Marshal(tok)
	if err != nil {
		return err
	}

	modelCfg := cfg.Model
	modelCfg.NumEmbeddings = tok.VocabSize()
	nn.Seed(cfg.Training.Seed)
	model, err := classifier.New(modelCfg, train.NewBackend())
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"tokenizer":  tok.Name(),
		"vocab":      tok.VocabSize(),
		"cell":       modelCfg.CellType(),
		"parameters": model.NumParameters(),
	}).Info("model built")

	batcher := &data.Batcher{Tokenizer: tok, BatchSize: cfg.Training.BatchSize, MaxLen: cfg.Data.MaxLen}
	trainEnc, err := batcher.Encode(trainSet)
	if err != nil {
		return fmt.Errorf("encode training data: %w", err)
	}
	var valBatches []*data.Batch
	if len(valSet) > 0 {
		valEnc, err := batcher.Encode(valSet)
		if err != nil {
			return fmt.Errorf("encode validation data: %w", err)
		}
		if valBatches, err = batcher.Batches(valEnc, nil); err != nil {
			return err
		}
	}

	trainer, err := train.New(model, train.Options{
		Epochs:       cfg.Training.Epochs,
		Optimizer:    cfg.Training.Optimizer,
		LearningRate: cfg.Training.LearningRate,
		Momentum:     cfg.Training.Momentum,
		ClipNorm:     cfg.Training.ClipNorm,
		Seed:         cfg.Training.Seed,
		OutputPath:   cfg.Training.OutputPath,
		LogEvery:     cfg.Training.LogEvery,
		Metadata: map[string]string{
			tokenizer.MetadataKey: spec,
			"train_path":          cfg.Data.TrainPath,
		},
	}, log)
	if err != nil {
		return err
	}

	results, err := trainer.Fit(ctx, batcher, trainEnc, valBatches)
	printResults(out, results)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(out, "run %s finished, best checkpoint at %s\n", trainer.RunID(), cfg.Training.OutputPath)
	return nil
}

func loadDatasets(cfg config.Data, seed int64) (trainSet, valSet []data.Example, err error) {
	all, err := data.LoadFile(cfg.TrainPath)
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", cfg.TrainPath, train.ErrNoTrainingData)
	}

	if cfg.ValPath != "" {
		valSet, err = data.LoadFile(cfg.ValPath)
		if err != nil {
			return nil, nil, err
		}
		return all, valSet, nil
	}
	trainSet, valSet = data.Split(all, 1-cfg.ValRatio, seed)
	if len(trainSet) == 0 {
		return nil, nil, fmt.Errorf("%s: %w after holding out %.0f%% for validation",
			cfg.TrainPath, train.ErrNoTrainingData, cfg.ValRatio*100)
	}
	return trainSet, valSet, nil
}

func buildTokenizer(cfg config.Data, examples []data.Example) (tokenizer.Tokenizer, error) {
	switch cfg.Tokenizer {
	case tokenizer.KindTikToken:
		return tokenizer.NewTikToken(cfg.Encoding)
	case tokenizer.KindWord:
		texts := make([]string, len(examples))
		for i, ex := range examples {
			texts[i] = ex.Text
		}
		return tokenizer.BuildWordVocab(texts, cfg.MinFreq, cfg.VocabSize), nil
	default:
		return nil, fmt.Errorf("%w: %q", tokenizer.ErrUnknownKind, cfg.Tokenizer)
	}
}

func printResults(out io.Writer, results []train.EpochResult) {
	if len(results) == 0 {
		return
	}
	bold := color.New(color.Bold)
	saved := color.New(color.FgGreen)

	bold.Fprintf(out, "%-6s %-11s %-9s %-9s %-8s\n", "epoch", "train_loss", "val_loss", "val_acc", "took")
	for _, r := range results {
		line := fmt.Sprintf("%-6d %-11.4f %-9.4f %-9.4f %-8s",
			r.Epoch, r.TrainLoss, r.Val.Loss, r.Val.Accuracy, r.Duration.Round(time.Millisecond))
		if r.Saved {
			saved.Fprintf(out, "%s *\n", line)
			continue
		}
		fmt.Fprintln(out, line)
	}
}
