package memindex

import (
	"strings"
	"unicode"
)

// tokenize splits text into lower-cased runs of letters and digits. The
// corpus mixes Cyrillic and Latin text, so classification is Unicode-aware
// rather than ASCII-only.
func tokenize(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 24)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
