package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/born-ml/sentiment/internal/server"
)

type predictFlags struct {
	modelPath string
	inputFile string
	threshold float32
	jsonOut   bool
}

func predictCmd(g *globalFlags) *cobra.Command {
	f := &predictFlags{}
	cmd := &cobra.Command{
		Use:   "predict [text...]",
		Short: "Classify texts with a trained model",
		Long:  "Classify the texts given as arguments, or one text per line from --file (\"-\" reads stdin).",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("model") {
				cfg.Server.ModelPath = f.modelPath
			}
			if cmd.Flags().Changed("threshold") {
				cfg.Server.Threshold = f.threshold
			}

			texts := args
			if f.inputFile != "" {
				lines, err := readLines(cmd.InOrStdin(), f.inputFile)
				if err != nil {
					return err
				}
				texts = append(texts, lines...)
			}
			if len(texts) == 0 {
				return errors.New("nothing to classify: pass texts as arguments or use --file")
			}

			model, tok, header, err := server.LoadModel(cfg.Server.ModelPath)
			if err != nil {
				return err
			}
			srv := server.New(model, tok, header, server.Options{
				Threshold: cfg.Server.Threshold,
				MaxBatch:  len(texts),
				MaxLen:    cfg.Data.MaxLen,
			}, log)

			preds, err := srv.Predict(texts)
			if err != nil {
				return err
			}
			return printPredictions(cmd.OutOrStdout(), texts, preds, f.jsonOut)
		},
	}

	cmd.Flags().StringVarP(&f.modelPath, "model", "m", "", "model file (overrides server.model_path)")
	cmd.Flags().StringVarP(&f.inputFile, "file", "f", "", "read one text per line from this file")
	cmd.Flags().Float32Var(&f.threshold, "threshold", 0.5, "probability at or above which a text is positive")
	cmd.Flags().BoolVarP(&f.jsonOut, "json", "j", false, "write one JSON object per line")
	return cmd
}

func readLines(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		//nolint:gosec // G304: input path comes from the command line
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer file.Close()
		r = file
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return lines, nil
}

type predictionLine struct {
	Text        string  `json:"text"`
	Probability float32 `json:"probability"`
	Label       string  `json:"label"`
}

func printPredictions(out io.Writer, texts []string, preds []server.Prediction, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(out)
		for i, p := range preds {
			if err := enc.Encode(predictionLine{Text: texts[i], Probability: p.Probability, Label: p.Label}); err != nil {
				return err
			}
		}
		return nil
	}

	pos := color.New(color.FgGreen, color.Bold)
	neg := color.New(color.FgRed, color.Bold)
	for i, p := range preds {
		c := neg
		if p.Label == server.LabelPositive {
			c = pos
		}
		c.Fprintf(out, "%-8s", p.Label)
		fmt.Fprintf(out, " %.4f  %s\n", p.Probability, texts[i])
	}
	return nil
}
