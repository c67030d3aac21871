package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims surrounding whitespace and applies NFC normalization,
// so a name typed with combining marks matches its precomposed form.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
