package util

import (
	"strconv"
	"strings"
)

// ParseInt parses a string to an integer, returning defaultValue if parsing fails
func ParseInt(s string, defaultValue int) int {
	if val, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return val
	}
	return defaultValue
}

// ParseLimit clamps a limit query value into [1, max], using def when absent or invalid
func ParseLimit(s string, def, max int) int {
	n := ParseInt(s, def)
	if n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// ParseList splits a comma-separated list, dropping empty items
func ParseList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
