package export

import "fmt"

// UnsupportedFormatError is returned for a format without a writer
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported export format %q (supported: csv, json, yaml)", e.Format)
}

// WriteError represents a failure writing an export
type WriteError struct {
	Format  string
	Path    string
	Message string
	Cause   error
}

func (e *WriteError) Error() string {
	target := e.Path
	if target == "" {
		target = "stream"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s export to %s: %s: %v", e.Format, target, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s export to %s: %s", e.Format, target, e.Message)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}
