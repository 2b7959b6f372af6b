// Package workloadfile parses the JSON workload-file format spec.md §6
// defines: {"calls": [{"method": "...", "params": [<tokens>]} ...], "policy":
// "serial|shuffle|choose"}. It exists so `--input PATH` and positional
// CLI args produce the identical internal representation
// (internal/engine/workload.Workload) regardless of source.
package workloadfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jrpcrate/jrpcrate/internal/engine/workload"
)

// fileCall is the on-disk shape of one workload-file call entry.
type fileCall struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// file is the on-disk shape of a whole workload file.
type file struct {
	Calls  []fileCall `json:"calls"`
	Policy string     `json:"policy"`
}

// Load reads and parses a workload file from path, returning the expanded
// workload ready for a run.
func Load(path string) (*workload.Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workload file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes workload-file JSON into a workload.Workload, range-expanding
// every call template it contains.
func Parse(data []byte) (*workload.Workload, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode workload file: %w", err)
	}

	pol, err := workload.ParsePolicy(f.Policy)
	if err != nil {
		return nil, fmt.Errorf("workload file: %w", err)
	}

	var calls []workload.ConcreteCall
	for _, fc := range f.Calls {
		tmpl, err := templateFromFile(fc)
		if err != nil {
			return nil, fmt.Errorf("workload file: %w", err)
		}
		expanded, err := workload.Expand(tmpl)
		if err != nil {
			return nil, fmt.Errorf("workload file: %w", err)
		}
		calls = append(calls, expanded...)
	}

	return workload.New(calls, pol)
}

func templateFromFile(fc fileCall) (workload.CallTemplate, error) {
	if fc.Method == "" {
		return workload.CallTemplate{}, &workload.EmptyMethodError{}
	}
	tmpl := workload.CallTemplate{Method: fc.Method}
	rangeCount := 0
	for _, raw := range fc.Params {
		tok, err := workload.TokenFromJSON(raw)
		if err != nil {
			return workload.CallTemplate{}, err
		}
		if tok.IsRange {
			rangeCount++
		}
		tmpl.Tokens = append(tmpl.Tokens, tok)
	}
	if rangeCount > 1 {
		return workload.CallTemplate{}, &workload.MultipleRangesError{Method: fc.Method}
	}
	return tmpl, nil
}
