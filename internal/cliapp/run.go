package cliapp

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jrpcrate/jrpcrate/internal/config"
	"github.com/jrpcrate/jrpcrate/internal/engine/rpcclient"
	"github.com/jrpcrate/jrpcrate/internal/engine/runner"
	"github.com/jrpcrate/jrpcrate/internal/engine/stats"
	"github.com/jrpcrate/jrpcrate/internal/engine/workload"
	"github.com/jrpcrate/jrpcrate/internal/render/table"
	"github.com/jrpcrate/jrpcrate/internal/report"
	"github.com/jrpcrate/jrpcrate/internal/runid"
	"github.com/jrpcrate/jrpcrate/internal/workloadfile"
)

type runFlags struct {
	rates       []float64
	rpcURLs     []string
	random      bool
	choose      bool
	expRamp     bool
	baseline    string
	input       string
	duration    float64
	cycles      uint64
	seed        uint64
	seedSet     bool
	maxInflight int64
	cooldown    time.Duration
	callTimeout time.Duration
	outputPath  string
}

func newRunCmd(logLevel, logFormat *string) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <METHOD> [<PARAMS>]",
		Short: "Drive a JSON-RPC endpoint at one or more target rates",
		Long: `run schedules calls to a JSON-RPC endpoint at a fixed open-loop rate
(or a sweep of rates), recording per-call latency and throughput, and
writes a JSON report for each rate.

Examples:
  jrpcrate run eth_getBlockByNumber "0x1b4 true" --rpc-url http://localhost:8545 --rate 100 --duration 10
  jrpcrate run --input workload.json --rpc-url http://localhost:8545 --rate 10,100,1000
  jrpcrate run eth_blockNumber --rpc-url http://localhost:8545 --exp-ramp --rate 5000`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			return runRun(cmd, args, f, cfgPath, *logLevel, *logFormat)
		},
	}

	cmd.Flags().Float64SliceVar(&f.rates, "rate", nil, "one or more target rates in calls/sec (omit for as-fast-as-possible)")
	cmd.Flags().StringSliceVar(&f.rpcURLs, "rpc-url", nil, "JSON-RPC endpoint URL (repeatable; round-robin across all given)")
	cmd.Flags().BoolVar(&f.random, "random", false, "shuffle call order each cycle")
	cmd.Flags().BoolVar(&f.choose, "choose", false, "pick exactly one call per cycle")
	cmd.Flags().BoolVar(&f.expRamp, "exp-ramp", false, "ramp through powers of ten up to the target rate")
	cmd.Flags().StringVar(&f.baseline, "baseline", "", "prior report to diff the new report against")
	cmd.Flags().StringVar(&f.input, "input", "", "load the workload from a JSON file instead of positional args")
	cmd.Flags().Float64Var(&f.duration, "duration", 0, "run duration in seconds (0 = unbounded, use --cycles instead)")
	cmd.Flags().Uint64Var(&f.cycles, "cycles", 0, "number of cycles to run (0 = unbounded, use --duration instead)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "deterministic RNG seed (random if unset)")
	cmd.Flags().Int64Var(&f.maxInflight, "max-inflight", 0, "max concurrent in-flight calls (0 = engine default)")
	cmd.Flags().DurationVar(&f.cooldown, "cooldown", 0, "settle time between rate points (0 = engine default)")
	cmd.Flags().DurationVar(&f.callTimeout, "call-timeout", 0, "per-call timeout (0 = engine default)")
	cmd.Flags().StringVar(&f.outputPath, "output", "", "report output path (default: reports/<method>@<rate>-<timestamp>.json)")

	return cmd
}

func runRun(cmd *cobra.Command, args []string, f *runFlags, cfgPath, logLevel, logFormat string) error {
	f.seedSet = cmd.Flags().Changed("seed")
	logger := loggerFrom(logLevel, logFormat)

	if f.random && f.choose {
		return exitErr(ExitArgError, fmt.Errorf("--random and --choose are mutually exclusive"))
	}
	if f.input != "" && len(args) > 0 {
		return exitErr(ExitArgError, fmt.Errorf("--input and positional METHOD/PARAMS are mutually exclusive"))
	}
	if f.input == "" && len(args) == 0 {
		return exitErr(ExitArgError, fmt.Errorf("either a METHOD argument or --input PATH is required"))
	}
	if len(f.rpcURLs) == 0 {
		return exitErr(ExitArgError, fmt.Errorf("--rpc-url is required (repeatable for multiple endpoints)"))
	}

	defaults, err := config.Load(cfgPath)
	if err != nil {
		return exitErr(ExitArgError, err)
	}

	wl, methodLabel, err := buildWorkload(args, f)
	if err != nil {
		return exitErr(ExitArgError, err)
	}

	var baselineDoc *report.Document
	if f.baseline != "" {
		doc, err := report.Read(f.baseline)
		if err != nil {
			return exitErr(ExitBaselineIO, err)
		}
		baselineDoc = &doc
	}

	rpc := rpcclient.NewClient(f.rpcURLs)
	cooldown := f.cooldown
	if cooldown <= 0 {
		cooldown = defaults.Cooldown
	}
	ctrl := runner.New(wl, rpc, cooldown)
	ctrl.WithProgress(func(rate float64, snap stats.Snapshot) {
		printProgressLine(rate, snap)
	})

	maxInflight := f.maxInflight
	if maxInflight <= 0 {
		maxInflight = defaults.MaxInflight
	}
	callTimeout := f.callTimeout
	if callTimeout <= 0 {
		callTimeout = defaults.CallTimeout
	}

	planCfg := runner.PlanConfig{
		Rates:         f.rates,
		ExpRamp:       f.expRamp,
		Duration:      time.Duration(f.duration * float64(time.Second)),
		CycleCount:    f.cycles,
		Cooldown:      cooldown,
		Seed:          f.seed,
		HasSeed:       f.seedSet,
		MaxInflight:   maxInflight,
		CallTimeout:   callTimeout,
		DrainDeadline: defaults.DrainDeadline,
		BucketWidth:   defaults.BucketWidth,
	}

	logger.WithFields(map[string]any{"rates": f.rates, "endpoints": f.rpcURLs}).Info("starting run")
	results := ctrl.RunAll(cmd.Context(), planCfg)

	allAborted := true
	for _, result := range results {
		if !result.Aborted {
			allAborted = false
		}

		doc := report.FromRunResult(result, f.rpcURLs)
		doc.RunMeta.RunID = runid.New()
		if baselineDoc != nil {
			doc = report.WithBaseline(doc, *baselineDoc)
		}

		outPath := f.outputPath
		if outPath == "" {
			outPath = report.DefaultPath(fmt.Sprintf("%s@%d", methodLabel, int64(result.Rate)), result.Report.StartedAt)
		}
		if err := report.Write(outPath, doc); err != nil {
			logger.Error("failed to write report", err)
			return exitErr(ExitArgError, err)
		}

		fmt.Println()
		table.RenderSummary(doc)
		fmt.Printf("report written to %s\n", outPath)
	}

	if allAborted && len(results) > 0 {
		return exitErr(ExitAllAborted, fmt.Errorf("all %d run(s) aborted on sustained failure", len(results)))
	}
	return nil
}

// buildWorkload builds the Workload either from the workload file named by
// --input or from the positional METHOD/PARAMS arguments, applying
// --random/--choose only in the positional-args case (a workload file
// carries its own policy). It also returns a short label for the report
// filename: the method name, or "workload" for a multi-call file.
func buildWorkload(args []string, f *runFlags) (*workload.Workload, string, error) {
	if f.input != "" {
		wl, err := workloadfile.Load(f.input)
		if err != nil {
			return nil, "", err
		}
		return wl, "workload", nil
	}

	method := args[0]
	params := ""
	if len(args) > 1 {
		params = args[1]
	}

	tmpl, err := workload.ParseTemplateString(method, params)
	if err != nil {
		return nil, "", err
	}
	calls, err := workload.Expand(tmpl)
	if err != nil {
		return nil, "", err
	}

	policy := workload.Serial
	switch {
	case f.random:
		policy = workload.Shuffle
	case f.choose:
		policy = workload.Choose
	}

	wl, err := workload.New(calls, policy)
	if err != nil {
		return nil, "", err
	}
	return wl, method, nil
}

func printProgressLine(rate float64, snap stats.Snapshot) {
	errRate := 0.0
	if snap.Count > 0 {
		errRate = float64(snap.Count-snap.OkCount) / float64(snap.Count) * 100
	}
	fmt.Printf("\rrate=%.0f/s  count=%d  err=%.1f%%  p50=%s  p99=%s   ",
		rate, snap.Count, errRate, snap.ServiceTime.P50, snap.ServiceTime.P99)
}
