package core

// convert.go cleans up raw CSV cells and headers.
//
// Spreadsheet tools leave artifacts behind when users round-trip an export:
// Excel formula prefixes (="Tackle"), stray quotes and padding. These helpers
// strip them before values reach the resolver.

import "strings"

// HeaderIndex maps column names (case-folded) to their position in the CSV row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// The first occurrence of a repeated header wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := foldName(CleanCell(h))
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

// Lookup returns the position of a column by name.
func (h HeaderIndex) Lookup(name string) (int, bool) {
	pos, ok := h[foldName(name)]
	return pos, ok
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	// Remove leading '='
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	// Remove any surrounding double quotes
	s = strings.Trim(s, `"`)

	return strings.TrimSpace(s)
}

// isEmptyRow reports whether every cell of a CSV record is blank.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
