package grammar

import (
	"fmt"
	"strconv"
	"strings"
)

// splitEntries splits a multi-entry value on sep. Entries are not trimmed;
// UNIHAN separates entries with exactly one delimiter.
func splitEntries(raw, sep string) []string {
	return strings.Split(raw, sep)
}

// decodeEntries splits raw on sep and decodes every entry in order.
func decodeEntries[T any](raw, sep string, entry func(string) (T, error)) ([]T, error) {
	parts := splitEntries(raw, sep)
	out := make([]T, 0, len(parts))
	for i, p := range parts {
		v, err := entry(p)
		if err != nil {
			return nil, &EntryError{Index: i, Entry: p, Cause: err}
		}
		out = append(out, v)
	}
	return out, nil
}

// splitExact splits s on sep and requires exactly n parts
func splitExact(s, sep string, n int) ([]string, error) {
	parts := strings.Split(s, sep)
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d %q-separated parts, got %d", n, sep, len(parts))
	}
	return parts, nil
}

// number parses a non-empty run of ASCII digits. Signs and spaces are rejected.
func number(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("expected digits, got empty string")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("expected digits, got %q", s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return n, nil
}

// fixedInt parses the digits at s[start:end]. s must be long enough.
func fixedInt(s string, start, end int) (int, error) {
	if len(s) < end {
		return 0, fmt.Errorf("expected at least %d characters, got %d", end, len(s))
	}
	return number(s[start:end])
}

// splitNumbers splits s on sep into exactly n integers
func splitNumbers(s, sep string, n int) ([]int, error) {
	parts, err := splitExact(s, sep, n)
	if err != nil {
		return nil, err
	}
	out := make([]int, n)
	for i, p := range parts {
		if out[i], err = number(p); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// nonEmpty rejects empty strings
func nonEmpty(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("empty value")
	}
	return s, nil
}
