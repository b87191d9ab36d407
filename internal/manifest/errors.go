package manifest

import (
	"fmt"
	"strings"
)

// UnknownFieldError is returned when requested fields are not carried by the
// manifest, or not by the selected files.
type UnknownFieldError struct {
	Fields []string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("field %s not found in file list", strings.Join(e.Fields, ", "))
}

// UnknownFileError is returned when requested source files are not in the manifest
type UnknownFileError struct {
	Files []string
}

func (e *UnknownFileError) Error() string {
	return fmt.Sprintf("file %s not found in file list", strings.Join(e.Files, ", "))
}
