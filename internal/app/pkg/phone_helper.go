package pkg

import "strings"

// NormalizePhone keeps digits and a leading plus so that lookups match
// regardless of spacing or dashes in the stored value.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
