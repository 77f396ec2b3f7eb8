// Package verdict derives deterministic pass/warn/fail decisions from
// per-run sidecar telemetry. It is an independent path from the record store:
// verdicts are computed from the sidecar document alone and written once per
// artifact.
package verdict

import "strings"

// Sidecar is the externally produced telemetry document. It is free-form
// nested JSON; checks read narrow sub-fields through path lookups so that
// missing sections mean "not applicable", never "failed".
type Sidecar map[string]any

// Field retrieves a value by dot-path, e.g. "quality.validation.success".
func (s Sidecar) Field(path string) (any, bool) {
	parts := strings.Split(path, ".")
	current := map[string]any(s)

	for i, part := range parts {
		if i == len(parts)-1 {
			val, ok := current[part]
			return val, ok
		}
		next, ok := current[part]
		if !ok {
			return nil, false
		}
		nextMap, ok := next.(map[string]any)
		if !ok {
			return nil, false
		}
		current = nextMap
	}
	return nil, false
}

// Section returns a nested mapping by dot-path, or nil when the section is
// absent or null.
func (s Sidecar) Section(path string) map[string]any {
	val, ok := s.Field(path)
	if !ok {
		return nil
	}
	m, _ := val.(map[string]any)
	return m
}

// Number returns a numeric field coerced to float64, with a fallback.
func (s Sidecar) Number(path string, fallback float64) float64 {
	val, ok := s.Field(path)
	if !ok {
		return fallback
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return fallback
	}
}

// String returns a string field, with a fallback.
func (s Sidecar) String(path string, fallback string) string {
	val, ok := s.Field(path)
	if !ok {
		return fallback
	}
	if str, ok := val.(string); ok {
		return str
	}
	return fallback
}

// Bool returns a boolean field, with a fallback.
func (s Sidecar) Bool(path string, fallback bool) bool {
	val, ok := s.Field(path)
	if !ok {
		return fallback
	}
	if b, ok := val.(bool); ok {
		return b
	}
	return fallback
}

// Strings returns a list field coerced to []string; non-string elements are
// dropped.
func (s Sidecar) Strings(path string) []string {
	val, ok := s.Field(path)
	if !ok {
		return nil
	}
	list, ok := val.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if str, ok := item.(string); ok {
			out = append(out, str)
		}
	}
	return out
}

// StepCompleted reports whether the named pipeline step appears in
// execution_context.steps_completed.
func (s Sidecar) StepCompleted(step string) bool {
	for _, done := range s.Strings("execution_context.steps_completed") {
		if done == step {
			return true
		}
	}
	return false
}
