package ipc

import (
	"encoding/json"
	"fmt"
)

// Args are the positional arguments of a request, as decoded from JSON
type Args []any

// Value returns argument i, or nil when absent
func (a Args) Value(i int) any {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

// String returns argument i as a string. It fails when the argument is missing or not a string.
func (a Args) String(i int) (string, error) {
	v, ok := a.Value(i).(string)
	if !ok {
		return "", fmt.Errorf("argument %d: expected a string, got %T", i, a.Value(i))
	}
	return v, nil
}

// OptionalString returns argument i as a string, or "" when missing or of another type
func (a Args) OptionalString(i int) string {
	v, _ := a.Value(i).(string)
	return v
}

// Bool returns argument i as a bool; anything that is not true is false
func (a Args) Bool(i int) bool {
	v, _ := a.Value(i).(bool)
	return v
}

// Strings collects string arguments from i onwards. A single list argument at i is flattened.
func (a Args) Strings(i int) []string {
	rest := []any(a)
	if i < len(rest) {
		rest = rest[i:]
	} else {
		rest = nil
	}
	if len(rest) == 1 {
		if list, ok := rest[0].([]any); ok {
			rest = list
		}
	}
	out := make([]string, 0, len(rest))
	for _, v := range rest {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Decode converts argument i into v by way of JSON
func (a Args) Decode(i int, v any) error {
	raw, err := json.Marshal(a.Value(i))
	if err != nil {
		return fmt.Errorf("argument %d: %w", i, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("argument %d: %w", i, err)
	}
	return nil
}
