package grammar

import (
	"fmt"
	"strings"
)

// MalformedFieldValueError reports a raw value that does not match its
// field's grammar. Codepoint and Char are filled in by the caller that knows
// which character the value belongs to.
type MalformedFieldValueError struct {
	Codepoint string
	Char      string
	Field     string
	Value     string
	Cause     error
}

func (e *MalformedFieldValueError) Error() string {
	var sb strings.Builder
	sb.WriteString("malformed ")
	sb.WriteString(e.Field)
	sb.WriteString(" value")
	if e.Codepoint != "" {
		sb.WriteString(fmt.Sprintf(" for %s (%s)", e.Codepoint, e.Char))
	}
	sb.WriteString(fmt.Sprintf(" %q", e.Value))
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *MalformedFieldValueError) Unwrap() error {
	return e.Cause
}

// UnknownFieldError is returned for field names without a registered grammar
type UnknownFieldError struct {
	Fields []string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("no grammar registered for field %s", strings.Join(e.Fields, ", "))
}

// EntryError locates a failure inside a multi-entry value
type EntryError struct {
	Index int
	Entry string
	Cause error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %d %q: %v", e.Index+1, e.Entry, e.Cause)
}

func (e *EntryError) Unwrap() error {
	return e.Cause
}
