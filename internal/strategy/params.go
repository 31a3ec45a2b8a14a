package strategy

import (
	"fmt"
	"sort"
)

// paramSchema declares the parameters a strategy type accepts. Construction
// fails fast on unknown keys so configuration typos surface before any run.
type paramSchema map[string]paramSpec

type paramSpec struct {
	kind     string // "int" or "float"
	required bool
}

// checkUnknown rejects parameters the schema does not declare
func (s paramSchema) checkUnknown(params map[string]any) error {
	var unknown []string
	for key := range params {
		if _, ok := s[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown parameters %v (accepted: %v)", unknown, s.keys())
	}
	for key, spec := range s {
		if spec.required {
			if _, ok := params[key]; !ok {
				return fmt.Errorf("missing required parameter %q", key)
			}
		}
	}
	return nil
}

func (s paramSchema) keys() []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// intParam extracts an integer parameter, tolerating the float64 and int
// representations produced by YAML and JSON decoders
func intParam(params map[string]any, key string, fallback int) (int, error) {
	raw, ok := params[key]
	if !ok {
		return fallback, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("parameter %q must be an integer, got %v", key, v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("parameter %q must be an integer, got %T", key, raw)
	}
}

// floatParam extracts a floating-point parameter
func floatParam(params map[string]any, key string, fallback float64) (float64, error) {
	raw, ok := params[key]
	if !ok {
		return fallback, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("parameter %q must be a number, got %T", key, raw)
	}
}
