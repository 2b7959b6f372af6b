// Package table renders run reports and baseline comparisons as aligned,
// colored terminal tables for the `show` subcommand. Grounded on the
// teacher's internal/output/terminal.go, which already pairs
// github.com/fatih/color with github.com/rodaine/table for this exact
// job — reused directly rather than reinvented.
package table

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/jrpcrate/jrpcrate/internal/report"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// DisableColors turns off color output, for non-TTY or redirected output.
func DisableColors() {
	color.NoColor = true
}

// RenderSummary prints a report's run metadata and aggregate/per-method
// statistics as a header followed by tables, in the teacher's
// header-then-table-then-table layout: aggregate, errors by kind (only when
// there are errors), per method (only when present), and change vs
// baseline (only when a baseline delta is attached).
func RenderSummary(doc report.Document) {
	renderHeader(doc)
	renderAggregate(doc)
	renderPerMethod(doc.PerMethod)
	if doc.BaselineDelta != nil {
		renderDelta(*doc.BaselineDelta)
	}
}

func renderHeader(doc report.Document) {
	fmt.Println()
	fmt.Println(cyan("╭─────────────────────────────────────────────────────────────────╮"))
	fmt.Printf("%s %s\n", cyan("│"), bold("jrpcrate run report"))
	fmt.Printf("%s   started %-30s target rate %.0f/s\n", cyan("│"),
		doc.RunMeta.StartedAt.Format("2006-01-02 15:04:05 MST"), doc.RunMeta.TargetRate)
	fmt.Printf("%s   cycles %-12d duration %.1fs%s\n", cyan("│"),
		doc.RunMeta.CycleCount, doc.RunMeta.Duration, abortedSuffix(doc.RunMeta.Aborted))
	fmt.Println(cyan("╰─────────────────────────────────────────────────────────────────╯"))
	fmt.Println()
}

func abortedSuffix(aborted bool) string {
	if aborted {
		return "  " + red("ABORTED: sustained failure")
	}
	return ""
}

func renderAggregate(doc report.Document) {
	fmt.Println(bold("Aggregate"))

	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New("Count", "Ok", "Success", "p50", "p95", "p99", "Max", "RPS")
	tbl.WithHeaderFormatter(headerFmt)

	a := doc.Aggregate
	tbl.AddRow(
		a.Count,
		a.Ok,
		formatSuccessRate(successRate(a.Count, a.Ok)),
		formatMicros(a.LatencyMicros["p50"]),
		formatMicros(a.LatencyMicros["p95"]),
		formatMicros(a.LatencyMicros["p99"]),
		formatMicros(a.LatencyMicros["max"]),
		fmt.Sprintf("%.1f", a.ThroughputRPS),
	)
	tbl.Print()
	fmt.Println()

	if len(a.ErrorsByKind) > 0 {
		renderErrorBreakdown(a.ErrorsByKind)
	}
}

func renderErrorBreakdown(errByKind map[string]int64) {
	fmt.Println(bold("Errors by kind"))

	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New("Kind", "Count")
	tbl.WithHeaderFormatter(headerFmt)

	kinds := make([]string, 0, len(errByKind))
	for k := range errByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		tbl.AddRow(k, red(fmt.Sprintf("%d", errByKind[k])))
	}
	tbl.Print()
	fmt.Println()
}

func renderPerMethod(perMethod map[string]report.StatBlock) {
	if len(perMethod) == 0 {
		return
	}
	fmt.Println(bold("Per method"))

	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New("Method", "Count", "Success", "p50", "p99", "RPS")
	tbl.WithHeaderFormatter(headerFmt)

	methods := make([]string, 0, len(perMethod))
	for m := range perMethod {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	for _, m := range methods {
		s := perMethod[m]
		tbl.AddRow(
			m,
			s.Count,
			formatSuccessRate(successRate(s.Count, s.Ok)),
			formatMicros(s.LatencyMicros["p50"]),
			formatMicros(s.LatencyMicros["p99"]),
			fmt.Sprintf("%.1f", s.ThroughputRPS),
		)
	}
	tbl.Print()
	fmt.Println()
}

func renderDelta(d report.Delta) {
	fmt.Println(bold("Change vs baseline"))

	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New("Metric", "Δ")
	tbl.WithHeaderFormatter(headerFmt)

	tbl.AddRow("throughput_rps", formatPctThroughput(d.Aggregate.ThroughputRPS))
	tbl.AddRow("p50 latency", formatPctLatency(d.Aggregate.LatencyMicros["p50"]))
	tbl.AddRow("p99 latency", formatPctLatency(d.Aggregate.LatencyMicros["p99"]))
	tbl.AddRow("success count", formatPctThroughput(d.Aggregate.Ok))
	tbl.Print()
	fmt.Println()
}

// formatPctThroughput colors positive as better (green), negative as worse (red).
func formatPctThroughput(pct float64) string {
	str := fmt.Sprintf("%+.1f%%", pct)
	if pct >= 0 {
		return green(str)
	}
	return red(str)
}

// formatPctLatency colors positive (slower) as worse (red), negative as better (green).
func formatPctLatency(pct float64) string {
	str := fmt.Sprintf("%+.1f%%", pct)
	if pct <= 0 {
		return green(str)
	}
	return red(str)
}

func successRate(count, ok int64) float64 {
	if count == 0 {
		return 0
	}
	return float64(ok) / float64(count) * 100
}

func formatSuccessRate(rate float64) string {
	str := fmt.Sprintf("%.1f%%", rate)
	if rate >= 99.0 {
		return green(str)
	}
	if rate >= 90.0 {
		return yellow(str)
	}
	return red(str)
}

func formatMicros(us int64) string {
	if us == 0 {
		return "—"
	}
	if us < 1000 {
		return fmt.Sprintf("%dµs", us)
	}
	if us < 1_000_000 {
		return fmt.Sprintf("%.1fms", float64(us)/1000)
	}
	return fmt.Sprintf("%.2fs", float64(us)/1_000_000)
}
