// Package report serializes a run's statistics into the JSON document
// spec.md §6 defines (schema_version, run_meta, aggregate, per_method,
// time_series, optional baseline_delta) and reads a prior report back in as
// a baseline for comparison.
//
// Grounded on the teacher's internal/report.WriteJSON and
// internal/reports.WriteJSON — two near-identical timestamped-JSON-file
// writers — merged into the one schema this tool actually needs, keeping
// the teacher's os.MkdirAll + json.Encoder.SetIndent("", "  ") shape.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jrpcrate/jrpcrate/internal/engine/runner"
	"github.com/jrpcrate/jrpcrate/internal/engine/stats"
)

// SchemaVersion is the current report schema version.
const SchemaVersion = 1

// Document is the full on-disk report shape.
type Document struct {
	SchemaVersion int                  `json:"schema_version"`
	RunMeta       RunMeta              `json:"run_meta"`
	Aggregate     StatBlock            `json:"aggregate"`
	PerMethod     map[string]StatBlock `json:"per_method"`
	TimeSeries    []TimeSeriesPoint    `json:"time_series"`
	BaselineDelta *Delta               `json:"baseline_delta,omitempty"`
}

// RunMeta captures what the run was, not what it measured.
type RunMeta struct {
	RunID      string    `json:"run_id"`
	Endpoints  []string  `json:"endpoints"`
	TargetRate float64   `json:"target_rate"`
	Duration   float64   `json:"duration_seconds"`
	CycleCount uint64    `json:"cycle_count"`
	Seed       uint64    `json:"seed"`
	StartedAt  time.Time `json:"started_at"`
	Aborted    bool      `json:"aborted"`
}

// StatBlock is the shape shared by "aggregate" and every "per_method" entry.
type StatBlock struct {
	Count          int64            `json:"count"`
	Ok             int64            `json:"ok"`
	ErrorsByKind   map[string]int64 `json:"errors_by_kind"`
	LatencyMicros  map[string]int64 `json:"latency_us"`
	ResponseMicros map[string]int64 `json:"response_latency_us"`
	ThroughputRPS  float64          `json:"throughput_rps"`
}

// TimeSeriesPoint is one finalized throughput bucket.
type TimeSeriesPoint struct {
	BucketStart   time.Time        `json:"bucket_start"`
	BucketEnd     time.Time        `json:"bucket_end"`
	OkCalls       int              `json:"ok_calls"`
	ErrCalls      int              `json:"err_calls"`
	LatencyMicros map[string]int64 `json:"latency_us"`
	ThroughputRPS float64          `json:"throughput_rps"`
	SuccessRate   float64          `json:"success_rate"`
}

// FromRunResult builds the Document for one completed run.
func FromRunResult(result runner.RunResult, endpoints []string) Document {
	r := result.Report
	return Document{
		SchemaVersion: SchemaVersion,
		RunMeta: RunMeta{
			Endpoints:  endpoints,
			TargetRate: r.Rate,
			Duration:   r.Duration.Seconds(),
			CycleCount: r.CycleCount,
			Seed:       r.Seed,
			StartedAt:  r.StartedAt,
			Aborted:    r.Aborted,
		},
		Aggregate:  statBlockOf(r.Aggregate),
		PerMethod:  perMethodOf(r.PerMethod),
		TimeSeries: timeSeriesOf(r.TimeSeries),
	}
}

func statBlockOf(s stats.Snapshot) StatBlock {
	errByKind := make(map[string]int64, len(s.ErrByKind))
	for k, v := range s.ErrByKind {
		errByKind[k.String()] = v
	}
	return StatBlock{
		Count:          s.Count,
		Ok:             s.OkCount,
		ErrorsByKind:   errByKind,
		LatencyMicros:  quantileMicros(s.ServiceTime),
		ResponseMicros: quantileMicros(s.ResponseTime),
		ThroughputRPS:  s.ThroughputRPS,
	}
}

func perMethodOf(m map[string]stats.Snapshot) map[string]StatBlock {
	out := make(map[string]StatBlock, len(m))
	for method, s := range m {
		out[method] = statBlockOf(s)
	}
	return out
}

func timeSeriesOf(buckets []stats.Bucket) []TimeSeriesPoint {
	out := make([]TimeSeriesPoint, len(buckets))
	for i, b := range buckets {
		out[i] = TimeSeriesPoint{
			BucketStart:   b.Start,
			BucketEnd:     b.End,
			OkCalls:       b.OkCalls,
			ErrCalls:      b.ErrCalls,
			LatencyMicros: quantileMicros(b.Latency),
			ThroughputRPS: b.ThroughputRPS,
			SuccessRate:   b.SuccessRate,
		}
	}
	return out
}

func quantileMicros(q stats.Quantiles) map[string]int64 {
	us := func(d time.Duration) int64 { return d.Microseconds() }
	return map[string]int64{
		"min":    us(q.Min),
		"p25":    us(q.P25),
		"p50":    us(q.P50),
		"p75":    us(q.P75),
		"p90":    us(q.P90),
		"p95":    us(q.P95),
		"p99":    us(q.P99),
		"p99.9":  us(q.P999),
		"p99.99": us(q.P9999),
		"max":    us(q.Max),
	}
}

// Write writes doc as indented JSON to path, creating parent directories as
// needed — the teacher's WriteJSON shape (os.MkdirAll + 2-space indent),
// generalized to an explicit caller-chosen path instead of a fixed
// "reports/" directory with a generated filename.
func Write(path string, doc Document) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// DefaultPath generates a teacher-style timestamped filename under
// "reports/", e.g. "reports/run-20260730-153000.json".
func DefaultPath(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = "run"
	}
	return filepath.Join("reports", fmt.Sprintf("%s-%s.json", prefix, now.UTC().Format("20060102-150405")))
}

// Read loads a previously written Document, for use as a baseline.
func Read(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read baseline report %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode baseline report %s: %w", path, err)
	}
	return doc, nil
}
