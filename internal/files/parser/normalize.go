package parser

import (
	"strconv"
	"strings"
	"unicode"
)

// NormalizeColumnName trims name, lower-cases it and collapses interior
// whitespace runs to a single underscore: "  Customer ID " -> "customer_id".
func NormalizeColumnName(name string) string {
	var b strings.Builder
	pendingSpace := false
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsSpace(r) {
			pendingSpace = true
			continue
		}
		if pendingSpace {
			b.WriteByte('_')
			pendingSpace = false
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// NormalizeColumnNames normalizes a header row. Empty names become
// column_<n> (1-based position); duplicates get _2, _3, ... suffixes in
// order of appearance.
func NormalizeColumnNames(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))

	for i, raw := range header {
		name := NormalizeColumnName(raw)
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		if used[name] {
			base := name
			for n := 2; used[name]; n++ {
				name = base + "_" + strconv.Itoa(n)
			}
		}
		used[name] = true
		out[i] = name
	}

	return out
}
