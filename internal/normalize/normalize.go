// Package normalize folds raw UNIHAN lines into one record per character.
package normalize

import (
	"bufio"
	"context"
	"io"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jonathan/unihan-tabular/internal/logging"
	"github.com/jonathan/unihan-tabular/internal/types"
)

const maxLineSize = 1 << 20

// Builder accumulates raw triples into per-character records. A Builder
// owns its accumulation state until Records is called; it is not safe for
// concurrent use.
type Builder struct {
	// NFC stores values in Unicode normalization form C. Off, values are
	// stored byte for byte as read.
	NFC bool

	fields  []string
	accept  map[string]struct{}
	index   map[rune]int
	records []types.RawRecord
}

// NewBuilder returns a builder for the given field set. The field set is
// fixed for the builder's lifetime.
func NewBuilder(fields []string) *Builder {
	fields = slices.Clone(fields)
	accept := make(map[string]struct{}, len(fields)+len(types.IndexFields))
	for _, f := range fields {
		accept[f] = struct{}{}
	}
	for _, f := range types.IndexFields {
		accept[f] = struct{}{}
	}
	return &Builder{
		fields: fields,
		accept: accept,
		index:  make(map[rune]int),
	}
}

// AddLine parses one source line. Blank and "#" lines are ignored. Lines
// that are not three TAB-separated parts, or whose codepoint is invalid,
// return a *MalformedLineError and leave the builder unchanged. Only the
// line terminator is stripped, so an empty trailing value is kept.
func (b *Builder) AddLine(source string, lineNo int, line string) error {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	parts := strings.Split(line, "\t")
	if len(parts) != 3 {
		return &MalformedLineError{Source: source, Line: lineNo, Text: line, Parts: len(parts)}
	}
	if err := b.Add(parts[0], parts[1], parts[2]); err != nil {
		return &MalformedLineError{Source: source, Line: lineNo, Text: line, Parts: len(parts), Cause: err}
	}
	return nil
}

// Add folds one (codepoint, field, value) triple into its character's
// record. Triples for fields outside the field set are dropped. A later
// value for the same character and field replaces the earlier one.
func (b *Builder) Add(codepoint, field, value string) error {
	if _, ok := b.accept[field]; !ok {
		return nil
	}
	r, err := ParseCodepoint(codepoint)
	if err != nil {
		return err
	}
	i, seen := b.index[r]
	if !seen {
		i = len(b.records)
		b.index[r] = i
		b.records = append(b.records, types.NewRawRecord(FormatCodepoint(r), string(r), b.fields))
	}
	if slices.Contains(types.IndexFields, field) {
		return nil
	}
	if b.NFC {
		value = norm.NFC.String(value)
	}
	b.records[i].Set(field, value)
	return nil
}

// Len returns the number of distinct characters seen so far
func (b *Builder) Len() int {
	return len(b.records)
}

// Records returns the records in first-seen order and resets the builder.
func (b *Builder) Records() []types.RawRecord {
	out := b.records
	b.records = nil
	b.index = make(map[rune]int)
	return out
}

// Source is one named input stream, typically a file from Unihan.zip
type Source struct {
	Name   string
	Reader io.Reader
}

// Result is the outcome of Normalize
type Result struct {
	Records   []types.RawRecord
	Lines     int
	Malformed []*MalformedLineError
}

// Options controls how Normalize stores values
type Options struct {
	NFC bool
}

// Normalize reads every source in order and folds their lines into records
// for fields. Values are kept exactly as read. Malformed lines are skipped
// and reported in the result.
func Normalize(ctx context.Context, fields []string, sources ...Source) (*Result, error) {
	return Options{}.Normalize(ctx, fields, sources...)
}

// Normalize is the package Normalize with o applied
func (o Options) Normalize(ctx context.Context, fields []string, sources ...Source) (*Result, error) {
	logger := logging.FromContext(ctx)
	b := NewBuilder(fields)
	b.NFC = o.NFC
	res := &Result{}

	for _, src := range sources {
		scanner := bufio.NewScanner(src.Reader)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			res.Lines++
			if lineNo%4096 == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			if err := b.AddLine(src.Name, lineNo, scanner.Text()); err != nil {
				malformed := err.(*MalformedLineError)
				logger.Debug("skipping malformed line", "source", src.Name, "line", lineNo, "error", err)
				res.Malformed = append(res.Malformed, malformed)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, &ReadError{Source: src.Name, Cause: err}
		}
		logger.Debug("source read", "source", src.Name, "lines", lineNo, "characters", b.Len())
	}

	res.Records = b.Records()
	return res, nil
}
