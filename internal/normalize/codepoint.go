package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseCodepoint decodes a "U+XXXX" reference (4 to 6 hex digits) into the
// Unicode scalar it names. Surrogates and values above U+10FFFF are rejected.
func ParseCodepoint(s string) (rune, error) {
	hex, ok := strings.CutPrefix(s, "U+")
	if !ok {
		return 0, &CodepointError{Codepoint: s, Message: "missing U+ prefix"}
	}
	if len(hex) < 4 || len(hex) > 6 {
		return 0, &CodepointError{Codepoint: s, Message: "expected 4 to 6 hex digits"}
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, &CodepointError{Codepoint: s, Message: "invalid hex digits", Cause: err}
	}
	r := rune(n)
	if !utf8.ValidRune(r) {
		return 0, &CodepointError{Codepoint: s, Message: "not a Unicode scalar value"}
	}
	return r, nil
}

// FormatCodepoint is the inverse of ParseCodepoint: U+ followed by at least
// four upper-case hex digits.
func FormatCodepoint(r rune) string {
	return fmt.Sprintf("U+%04X", r)
}

// ResolveCharacter accepts either a U+XXXX reference or a single character
// and returns the canonical codepoint string.
func ResolveCharacter(s string) (string, error) {
	if r, err := ParseCodepoint(s); err == nil {
		return FormatCodepoint(r), nil
	}
	if utf8.RuneCountInString(s) == 1 {
		if r, _ := utf8.DecodeRuneInString(s); r != utf8.RuneError {
			return FormatCodepoint(r), nil
		}
	}
	return "", &CodepointError{Codepoint: s, Message: "expected a single character or a U+XXXX codepoint"}
}
