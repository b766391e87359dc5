package validation

import (
	"strings"
	"unicode"
)

// ContainsToken reports whether needle occurs in text as a standalone token:
// the characters adjacent to a match must not be ASCII alphanumerics, so
// "one" is not found inside "none". Needles containing any character that is
// not a letter or digit fall back to plain substring search, and an empty
// needle always matches.
func ContainsToken(text, needle string) bool {
	if needle == "" {
		return true
	}
	for _, r := range needle {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return strings.Contains(text, needle)
		}
	}

	for i := 0; ; {
		pos := strings.Index(text[i:], needle)
		if pos < 0 {
			return false
		}
		start := i + pos
		end := start + len(needle)

		leftOK := start == 0 || !isASCIIAlphanumeric(text[start-1])
		rightOK := end >= len(text) || !isASCIIAlphanumeric(text[end])
		if leftOK && rightOK {
			return true
		}
		// Overlapping candidates still count: restart just past this match's
		// first byte, not past its end.
		i = start + 1
	}
}

func isASCIIAlphanumeric(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
