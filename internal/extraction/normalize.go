package extraction

import "strings"

// NormalizeLines trims every recognized line and drops the empty ones,
// keeping recognition order.
func NormalizeLines(raw []string) []string {
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
