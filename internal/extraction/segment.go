package extraction

import (
	"regexp"
	"strings"
)

var itemStartPattern = regexp.MustCompile(`^\d{1,2}[.)]?[\s\p{Z}]`)

// IsItemStart reports whether a line opens a new item, e.g. "3. Widget" or "12) Bolt"
func IsItemStart(line string) bool {
	return itemStartPattern.MatchString(line)
}

// SegmentItems joins wrapped OCR lines back into one block per item.
//
// A line starting with an item index begins a new block; any other line is
// appended to the current block with a single space. Lines seen before the
// first item start belong to no block and are dropped.
func SegmentItems(lines []string) []string {
	blocks := make([]string, 0)
	var current strings.Builder
	started := false

	flush := func() {
		if block := strings.TrimSpace(current.String()); block != "" {
			blocks = append(blocks, block)
		}
		current.Reset()
	}

	for _, line := range lines {
		if IsItemStart(line) {
			flush()
			current.WriteString(line)
			started = true
			continue
		}
		if !started {
			continue
		}
		current.WriteString(" ")
		current.WriteString(line)
	}
	flush()

	return blocks
}
