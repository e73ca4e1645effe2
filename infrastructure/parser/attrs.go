package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// attrs splits the "key:value" words that follow a name on a dsd line.
// Words without a colon are flags and map to "".
func attrs(words []string) map[string]string {
	m := make(map[string]string, len(words))
	for _, w := range words {
		k, v, _ := strings.Cut(w, ":")
		m[k] = v
	}
	return m
}

// parseUint32 accepts decimal or 0x-prefixed hexadecimal.
func parseUint32(key, s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return uint32(v), nil
}

func requireAttr(m map[string]string, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == "" {
		return "", fmt.Errorf("missing %s", key)
	}
	return v, nil
}
