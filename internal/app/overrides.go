package app

import (
	"fmt"
	"strconv"
	"strings"
)

// parseOverrides turns raw "name=value" pairs into typed parameter values.
// Values that parse as numbers become float64; everything else stays a
// string.
func parseOverrides(raw []string) (map[string]any, error) {
	out := make(map[string]any, len(raw))
	for _, pair := range raw {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed override %q, expected name=value", pair)
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			out[name] = f
			continue
		}
		out[name] = value
	}
	return out, nil
}
