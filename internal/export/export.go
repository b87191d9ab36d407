// Package export writes character records as CSV, JSON or YAML.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/unihan-tabular/internal/types"
)

// Supported export formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Write encodes records to w in the given format. fields is the column set
// for CSV and is ignored by the structured formats, which emit each
// record's own keys.
func Write(w io.Writer, format string, fields []string, records []types.Record) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, fields, records)
	case FormatJSON:
		return WriteJSON(w, records)
	case FormatYAML:
		return WriteYAML(w, records)
	default:
		return &UnsupportedFormatError{Format: format}
	}
}

// WriteFile writes records to path, creating parent directories as needed.
// The records are encoded to a temporary file in the same directory which
// then replaces path, so readers never see a partial export.
func WriteFile(path, format string, fields []string, records []types.Record) error {
	if format != FormatCSV && format != FormatJSON && format != FormatYAML {
		return &UnsupportedFormatError{Format: format}
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Format: format, Path: path, Message: "failed to create directory", Cause: err}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return &WriteError{Format: format, Path: path, Message: "failed to create file", Cause: err}
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return &WriteError{Format: format, Path: path, Message: "failed to create file", Cause: err}
	}
	if err := Write(tmp, format, fields, records); err != nil {
		_ = tmp.Close()
		return &WriteError{Format: format, Path: path, Message: "failed to encode records", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Format: format, Path: path, Message: "failed to close file", Cause: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &WriteError{Format: format, Path: path, Message: "failed to replace file", Cause: err}
	}
	return nil
}

// WriteCSV writes a header of the index fields followed by fields, then one
// row per record. Missing and nil values are empty cells; raw strings are
// written as they are and anything else is written as JSON.
func WriteCSV(w io.Writer, fields []string, records []types.Record) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(types.IndexFields)+len(fields))
	header = append(header, types.IndexFields...)
	header = append(header, fields...)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, rec := range records {
		row[0], row[1] = rec.Codepoint, rec.Char
		for i, field := range fields {
			cell, err := csvCell(rec, field)
			if err != nil {
				return err
			}
			row[i+2] = cell
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvCell(rec types.Record, field string) (string, error) {
	v, ok := rec.Get(field)
	if !ok || v == nil {
		return "", nil
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s of %s: %w", field, rec.Codepoint, err)
	}
	return string(b), nil
}

// WriteJSON writes records as an indented JSON array. Non-ASCII text and
// HTML characters are written unescaped.
func WriteJSON(w io.Writer, records []types.Record) error {
	if records == nil {
		records = []types.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteYAML writes records as a block-style YAML sequence.
func WriteYAML(w io.Writer, records []types.Record) error {
	if records == nil {
		records = []types.Record{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return err
	}
	return enc.Close()
}
