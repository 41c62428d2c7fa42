package helpers

import (
	"strings"
	"unicode"
)

// Slugify lowercases s and collapses every run of non-alphanumerics into a single hyphen.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// ContainsFold reports whether substr is within any of fields, ignoring case.
// An empty substr matches everything.
func ContainsFold(substr string, fields ...string) bool {
	needle := strings.ToLower(strings.TrimSpace(substr))
	if needle == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
