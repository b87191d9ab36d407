package normalize

import "fmt"

// MalformedLineError reports a source line that does not split into
// exactly three TAB-separated parts, or whose codepoint cannot be decoded.
// Such lines are skipped.
type MalformedLineError struct {
	Source string
	Line   int
	Text   string
	Parts  int
	Cause  error
}

func (e *MalformedLineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Cause)
	}
	return fmt.Sprintf("%s:%d: expected 3 tab-separated parts, got %d: %q", e.Source, e.Line, e.Parts, e.Text)
}

func (e *MalformedLineError) Unwrap() error {
	return e.Cause
}

// CodepointError reports a codepoint reference that is not valid U+XXXX notation
type CodepointError struct {
	Codepoint string
	Message   string
	Cause     error
}

func (e *CodepointError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid codepoint %q: %s: %v", e.Codepoint, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid codepoint %q: %s", e.Codepoint, e.Message)
}

func (e *CodepointError) Unwrap() error {
	return e.Cause
}

// ReadError wraps a failure reading one of the named sources
type ReadError struct {
	Source string
	Cause  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Source, e.Cause)
}

func (e *ReadError) Unwrap() error {
	return e.Cause
}
