package main

import (
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const version = "v0.1.0"

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			color.New(color.FgGreen).Fprintf(out, "sentiment %s\n", version)
			color.New(color.FgHiBlack).Fprintf(out, "%s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
