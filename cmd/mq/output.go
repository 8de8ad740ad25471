package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/iota-uz/iota-mq/pkg/transport"
)

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseValues turns repeated key=value flags into Values.
func parseValues(flag string, pairs []string) (transport.Values, error) {
	out := transport.Values{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, withCode(exitUsage, fmt.Errorf("invalid --%s %q (expected key=value)", flag, p))
		}
		out[k] = v
	}
	return out, nil
}
