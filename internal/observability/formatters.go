// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/unihan-tabular/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// BuildSummary holds the figures shown after a build
type BuildSummary struct {
	RunID        string
	Source       string
	FromCache    bool
	Files        []string
	Lines        int
	Malformed    int
	Records      int
	Fields       int
	Expanded     bool
	Pruned       int
	DecodeErrors int
	Output       string
	Format       string
	Stored       int64
	Validated    bool
	Duration     time.Duration
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintBuildSummary outputs what a build read, decoded and wrote.
func (p *Printer) PrintBuildSummary(s *BuildSummary) {
	if s == nil {
		return
	}

	var sb strings.Builder
	if s.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run:       %s\n", s.RunID))
	}
	source := s.Source
	if s.FromCache {
		source += " (cached)"
	}
	sb.WriteString(fmt.Sprintf("Source:    %s\n", source))
	if len(s.Files) > 0 {
		sb.WriteString(fmt.Sprintf("Files:     %s\n", strings.Join(s.Files, ", ")))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Lines:     %d", s.Lines))
	if s.Malformed > 0 {
		sb.WriteString(fmt.Sprintf(" (%d malformed, skipped)", s.Malformed))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Records:   %d\n", s.Records))
	sb.WriteString(fmt.Sprintf("Fields:    %d\n", s.Fields))

	mode := "raw"
	if s.Expanded {
		mode = "expanded"
	}
	sb.WriteString(fmt.Sprintf("Values:    %s\n", mode))
	if s.Pruned > 0 {
		sb.WriteString(fmt.Sprintf("Pruned:    %d empty values\n", s.Pruned))
	}
	if s.DecodeErrors > 0 {
		sb.WriteString(fmt.Sprintf("Skipped:   %d undecodable values\n", s.DecodeErrors))
	}
	sb.WriteString("\n")

	if s.Output != "" {
		sb.WriteString(fmt.Sprintf("Output:    %s (%s)\n", s.Output, s.Format))
	}
	if s.Validated {
		sb.WriteString("Schema:    ✓valid\n")
	}
	if s.Stored > 0 {
		sb.WriteString(fmt.Sprintf("Stored:    %d rows\n", s.Stored))
	}
	if s.Duration > 0 {
		sb.WriteString(fmt.Sprintf("Took:      %s\n", s.Duration.Round(time.Millisecond)))
	}

	p.printBox("BUILD SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecord outputs every emitted field of a single record.
func (p *Printer) PrintRecord(rec *types.Record) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Codepoint: %s\n", rec.Codepoint))
	sb.WriteString(fmt.Sprintf("Char:      %s\n", rec.Char))

	keys := rec.Keys()[len(types.IndexFields):]
	if len(keys) > 0 {
		sb.WriteString("\n")
	}
	for _, key := range keys {
		v, _ := rec.Get(key)
		sb.WriteString(fmt.Sprintf("%s: %s\n", key, formatValue(v)))
	}

	p.printBox("CHARACTER "+rec.Codepoint, strings.TrimSuffix(sb.String(), "\n"))
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "(none)"
	case string:
		return val
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// PrintFields outputs the fields available in each source file.
func (p *Printer) PrintFields(files map[string][]string) {
	if len(files) == 0 {
		return
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for i, name := range names {
		sb.WriteString(fmt.Sprintf("%s (%d)\n", name, len(files[name])))
		line := "  "
		for _, field := range files[name] {
			if len([]rune(line))+len(field)+1 > boxWidth-4 {
				sb.WriteString(strings.TrimRight(line, " ") + "\n")
				line = "  "
			}
			line += field + " "
		}
		sb.WriteString(strings.TrimRight(line, " ") + "\n")
		if i < len(names)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("UNIHAN FIELDS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDecodeErrors outputs the field values that could not be decoded.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintDecodeErrors(errs []error) {
	if len(errs) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ ALL VALUES DECODED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Skipped %d values:\n\n", len(errs)))

	count := min(len(errs), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", errs[i]))
	}
	if len(errs) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(errs)-maxItemsToShow))
	}

	p.printBox("DECODE ERRORS", strings.TrimSuffix(sb.String(), "\n"))
}
