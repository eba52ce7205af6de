package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads an artifact index document from disk. Documents with a
// .json extension are decoded as JSON, everything else as YAML.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading artifact index: %w", err)
	}

	var idx Index
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &idx); err != nil {
			return nil, fmt.Errorf("parsing artifact index %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &idx); err != nil {
			return nil, fmt.Errorf("parsing artifact index %s: %w", path, err)
		}
	}

	if idx.Source == "" {
		idx.Source = path
	}
	if err := idx.validate(); err != nil {
		return nil, fmt.Errorf("invalid artifact index %s: %w", path, err)
	}
	return &idx, nil
}

// validate rejects structurally unusable documents. Per-method trace
// problems are not errors here; the engine degrades those to diagnostics.
func (idx *Index) validate() error {
	for i, t := range idx.Types {
		if t.Name == "" {
			return fmt.Errorf("type %d has no name", i)
		}
		for j, m := range t.Methods {
			if m.Name == "" {
				return fmt.Errorf("type %s: method %d has no name", t.Name, j)
			}
			switch m.TraceStatus {
			case "", TraceOK, TraceUnavailable, TraceMalformed:
			default:
				return fmt.Errorf("type %s: method %s: unknown trace_status %q", t.Name, m.Name, m.TraceStatus)
			}
		}
	}
	return nil
}
