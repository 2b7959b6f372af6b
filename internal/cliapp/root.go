// Package cliapp wires the run/show/plot command tree with
// github.com/spf13/cobra, the teacher's CLI dependency (exercised in its
// cmd/monitor subcommand files, e.g. blocks.go's Use/Short/Long/Args
// shape), generalized into the complete command surface spec.md §6 lists.
package cliapp

import (
	"github.com/spf13/cobra"

	"github.com/jrpcrate/jrpcrate/internal/render/table"
	"github.com/jrpcrate/jrpcrate/internal/telemetry"
)

// ExitError carries the CLI exit code spec.md §6 assigns to a given
// failure class, so main.go can map it to os.Exit without each command
// needing to know about process exit directly.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// Exit codes per spec.md §6.
const (
	ExitOK         = 0
	ExitArgError   = 2
	ExitBaselineIO = 3
	ExitAllAborted = 4
)

func exitErr(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

// NewRoot builds the root "jrpcrate" command with run/show/plot wired in.
func NewRoot() *cobra.Command {
	var (
		logLevel  string
		logFormat string
		noColor   bool
	)

	root := &cobra.Command{
		Use:   "jrpcrate",
		Short: "Open-loop JSON-RPC load generator and latency/throughput profiler",
		Long: `jrpcrate drives a JSON-RPC endpoint at a fixed target rate using an
open-loop scheduler (coordinated-omission-free), records per-call service
and response latency, and writes a JSON report you can compare against a
prior baseline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				table.DisableColors()
			}
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format: console|json")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored table output")
	root.PersistentFlags().String("config", "", "path to an engine defaults YAML file")

	root.AddCommand(newRunCmd(&logLevel, &logFormat))
	root.AddCommand(newShowCmd())
	root.AddCommand(newPlotCmd())

	return root
}

func loggerFrom(levelFlag, formatFlag string) *telemetry.Logger {
	level := telemetry.LevelInfo
	switch levelFlag {
	case "debug":
		level = telemetry.LevelDebug
	case "warn":
		level = telemetry.LevelWarn
	case "error":
		level = telemetry.LevelError
	}
	format := telemetry.FormatConsole
	if formatFlag == "json" {
		format = telemetry.FormatJSON
	}
	return telemetry.New(telemetry.Config{Level: level, Format: format})
}
