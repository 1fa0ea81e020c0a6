package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/born-ml/sentiment/internal/serialization"
	"github.com/born-ml/sentiment/internal/tokenizer"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <model.born>",
		Short: "Print the header and tensors of a model file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := serialization.NewBornReader(args[0])
			if err != nil {
				return err
			}
			defer r.Close()
			return printModelFile(cmd.OutOrStdout(), args[0], r)
		},
	}
}

func printModelFile(out io.Writer, path string, r *serialization.BornReader) error {
	header := r.Header()
	title := color.New(color.Bold, color.FgCyan)
	key := color.New(color.FgHiBlack)
	checksum := r.Checksum()

	title.Fprintf(out, "%s\n", path)
	key.Fprint(out, "  format:   ")
	fmt.Fprintf(out, "v%d (flags %#x)\n", header.FormatVersion, r.Flags())
	key.Fprint(out, "  model:    ")
	fmt.Fprintln(out, header.ModelType)
	key.Fprint(out, "  created:  ")
	fmt.Fprintln(out, header.CreatedAt.Format(time.RFC3339))
	key.Fprint(out, "  sha256:   ")
	fmt.Fprintln(out, hex.EncodeToString(checksum[:]))

	if cp := header.CheckpointMeta; cp != nil {
		title.Fprintln(out, "checkpoint")
		fmt.Fprintf(out, "  run %s epoch %d step %d loss %.4f acc %.4f (%s)\n",
			cp.RunID, cp.Epoch, cp.Step, cp.Loss, cp.Accuracy, cp.OptimizerType)
	}

	title.Fprintln(out, "metadata")
	keys := make([]string, 0, len(header.Metadata))
	for k := range header.Metadata {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		v := header.Metadata[k]
		if k == tokenizer.MetadataKey {
			if tok, err := tokenizer.Unmarshal(v); err == nil {
				v = fmt.Sprintf("%s (%d ids)", tok.Name(), tok.VocabSize())
			}
		}
		key.Fprintf(out, "  %s: ", k)
		fmt.Fprintln(out, v)
	}

	title.Fprintln(out, "tensors")
	total := 0
	for _, name := range r.TensorNames() {
		info, err := r.TensorInfo(name)
		if err != nil {
			return err
		}
		n := 1
		dims := make([]string, len(info.Shape))
		for i, d := range info.Shape {
			dims[i] = fmt.Sprint(d)
			n *= d
		}
		total += n
		fmt.Fprintf(out, "  %-28s %-8s [%s]\n", name, info.DType, strings.Join(dims, ", "))
	}
	key.Fprint(out, "  parameters: ")
	fmt.Fprintln(out, total)
	return nil
}
