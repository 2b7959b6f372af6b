package cliapp

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jrpcrate/jrpcrate/internal/render/table"
	"github.com/jrpcrate/jrpcrate/internal/report"
)

func newShowCmd() *cobra.Command {
	var baselines []string

	cmd := &cobra.Command{
		Use:   "show <REPORT_PATH>",
		Short: "Print a report, optionally diffed against one or more baselines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(args[0], baselines)
		},
	}

	cmd.Flags().StringSliceVar(&baselines, "baseline", nil, "prior report(s) to diff against (repeatable)")
	return cmd
}

func runShow(path string, baselines []string) error {
	doc, err := report.Read(path)
	if err != nil {
		return exitErr(ExitBaselineIO, err)
	}

	if len(baselines) == 0 {
		table.RenderSummary(doc)
		return nil
	}

	for _, bp := range baselines {
		baseline, err := report.Read(bp)
		if err != nil {
			return exitErr(ExitBaselineIO, err)
		}
		withDelta := report.WithBaseline(doc, baseline)
		fmt.Printf("\n=== vs %s ===\n", bp)
		table.RenderSummary(withDelta)
	}
	return nil
}
