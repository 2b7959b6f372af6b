package cliapp

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jrpcrate/jrpcrate/internal/render/plot"
	"github.com/jrpcrate/jrpcrate/internal/report"
)

func newPlotCmd() *cobra.Command {
	var (
		baselines   []string
		throughput  bool
		percentile  float64
		successRate bool
		output      string
	)

	cmd := &cobra.Command{
		Use:   "plot <REPORT_PATH>",
		Short: "Render a report's time series as an SVG chart, optionally overlaid against one or more baselines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(args[0], baselines, throughput, percentile, successRate, output)
		},
	}

	cmd.Flags().StringSliceVar(&baselines, "baseline", nil, "report path(s) to overlay on the same chart for comparison")
	cmd.Flags().BoolVar(&throughput, "throughput", false, "plot throughput (req/s) over time")
	cmd.Flags().Float64Var(&percentile, "percentile", 0, "plot latency over time: p50 for values below 99, p99 for 99 and above (other percentiles are not plotted)")
	cmd.Flags().BoolVar(&successRate, "success-rate", false, "plot success rate over time")
	cmd.Flags().StringVar(&output, "output", "", "SVG output path (default: <report>.svg)")

	return cmd
}

func runPlot(path string, baselines []string, throughput bool, percentile float64, successRate bool, output string) error {
	doc, err := report.Read(path)
	if err != nil {
		return exitErr(ExitBaselineIO, err)
	}

	series := selectSeries(throughput, percentile, successRate)
	if len(series) == 0 {
		return exitErr(ExitArgError, fmt.Errorf("plot requires one of --throughput, --percentile, or --success-rate"))
	}

	overlays := []plot.Overlay{{Label: filepath.Base(path), Points: doc.TimeSeries}}
	for _, bp := range baselines {
		baseDoc, err := report.Read(bp)
		if err != nil {
			return exitErr(ExitBaselineIO, fmt.Errorf("read baseline %s: %w", bp, err))
		}
		overlays = append(overlays, plot.Overlay{Label: filepath.Base(bp), Points: baseDoc.TimeSeries})
	}

	out := output
	if out == "" {
		out = path + ".svg"
	}
	if err := plot.WriteSVGOverlay(out, overlays, series); err != nil {
		return exitErr(ExitArgError, err)
	}

	fmt.Printf("plot written to %s\n", out)
	return nil
}

// selectSeries builds the overlay series list from the chosen flags.
// --success-rate and --throughput may combine into one dual-line chart per
// spec.md §6; --percentile selects p50 below 99, p99 at or above.
func selectSeries(throughput bool, percentile float64, successRate bool) []plot.Series {
	var series []plot.Series
	if throughput {
		series = append(series, plot.SeriesThroughput)
	}
	if successRate {
		series = append(series, plot.SeriesSuccessRate)
	}
	if percentile > 0 {
		if percentile >= 99 {
			series = append(series, plot.SeriesP99)
		} else {
			series = append(series, plot.SeriesP50)
		}
	}
	return series
}
