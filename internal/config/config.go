// Package config loads the engine's tunable defaults (concurrency cap,
// drain deadline, cooldown, bucket width, timeouts) from a YAML file, the
// same way the teacher's internal/config.Load loads provider settings:
// read the file, expand ${VAR} references against the environment, then
// unmarshal.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults holds the engine-level settings a run falls back to when a CLI
// flag wasn't supplied.
type Defaults struct {
	MaxInflight   int64         `yaml:"max_inflight"`
	QueueDepth    int           `yaml:"queue_depth"`
	CallTimeout   time.Duration `yaml:"call_timeout"`
	DrainDeadline time.Duration `yaml:"drain_deadline"`
	Cooldown      time.Duration `yaml:"cooldown"`
	BucketWidth   time.Duration `yaml:"bucket_width"`
}

// defaultDefaults mirrors the zero-value fallbacks already baked into
// internal/engine/executor, internal/engine/runner and internal/engine/stats,
// so a missing or absent config file still produces a fully usable run.
// CallTimeout is the exception: the engine treats a zero call timeout as no
// per-call timeout, so the 10s here is the only place that bound comes from.
func defaultDefaults() Defaults {
	return Defaults{
		MaxInflight:   1024,
		QueueDepth:    4096,
		CallTimeout:   10 * time.Second,
		DrainDeadline: 30 * time.Second,
		Cooldown:      5 * time.Second,
		BucketWidth:   time.Second,
	}
}

// Load reads path, expands environment variables, and unmarshals the YAML
// defaults. A missing file is not an error — it returns defaultDefaults()
// unchanged, since a defaults file is optional.
func Load(path string) (Defaults, error) {
	cfg := defaultDefaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Defaults{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return Defaults{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
