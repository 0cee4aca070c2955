package pkg

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
)

// CodePattern matches well-formed voucher codes at the API boundary.
var CodePattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{12}$`)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const (
	codePrefixLen = 4
	codeRandomLen = 12
)

// GenerateCode builds a voucher code of the form PPPP-XXXXXXXXXXXX.
// The prefix is derived from the tenant slug so merchant staff can tell
// their own codes apart; the 12-char tail comes from crypto/rand, giving
// a 36^12 keyspace per tenant.
func GenerateCode(tenantSlug string) (string, error) {
	suffix, err := randomCode(codeRandomLen)
	if err != nil {
		return "", fmt.Errorf("generate voucher code: %w", err)
	}
	return CodePrefix(tenantSlug) + "-" + suffix, nil
}

// CodePrefix uppercases the slug, strips everything outside [A-Z0-9] and
// pads with X up to 4 characters. Deterministic for a given slug.
func CodePrefix(tenantSlug string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(tenantSlug) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == codePrefixLen {
				break
			}
		}
	}
	prefix := b.String()
	for len(prefix) < codePrefixLen {
		prefix += "X"
	}
	return prefix
}

func randomCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeCharset[int(b)%len(codeCharset)]
	}
	return string(buf), nil
}
