// Package expansion turns raw character records into records of decoded
// field values using the grammar registry.
package expansion

import (
	"errors"
	"reflect"

	"github.com/jonathan/unihan-tabular/internal/grammar"
	"github.com/jonathan/unihan-tabular/internal/types"
)

// Expand decodes every present field of rec. Absent and empty raw values
// are never passed to a grammar and produce no key in the result. A field
// whose value fails to decode is left out and its error returned; the other
// fields are unaffected.
func Expand(rec types.RawRecord) (types.Record, []error) {
	out := types.NewRecord(rec.Codepoint, rec.Char, rec.Fields())
	var errs []error
	for _, field := range rec.Fields() {
		raw, ok := rec.Get(field)
		if !ok || raw == "" {
			continue
		}
		g, ok := grammar.Lookup(field)
		if !ok {
			errs = append(errs, &grammar.UnknownFieldError{Fields: []string{field}})
			continue
		}
		v, err := g.Decode(raw)
		if err != nil {
			var malformed *grammar.MalformedFieldValueError
			if errors.As(err, &malformed) {
				malformed.Codepoint = rec.Codepoint
				malformed.Char = rec.Char
			}
			errs = append(errs, err)
			continue
		}
		out.Set(field, v)
	}
	return out, errs
}

// FromRaw converts rec without decoding anything. Every field of the field
// set gets a key: the raw string when observed, nil otherwise.
func FromRaw(rec types.RawRecord) types.Record {
	out := types.NewRecord(rec.Codepoint, rec.Char, rec.Fields())
	for _, field := range rec.Fields() {
		if raw, ok := rec.Get(field); ok {
			out.Set(field, raw)
		} else {
			out.Set(field, nil)
		}
	}
	return out
}

// FromRawAll applies FromRaw to every record, keeping order
func FromRawAll(records []types.RawRecord) []types.Record {
	out := make([]types.Record, len(records))
	for i, rec := range records {
		out[i] = FromRaw(rec)
	}
	return out
}

// Prune removes fields whose value is empty (nil, "", or an empty slice or
// map) from every record and returns the number of fields removed.
func Prune(records []types.Record) int {
	removed := 0
	for i := range records {
		for _, field := range records[i].Fields() {
			v, ok := records[i].Get(field)
			if ok && isEmpty(v) {
				records[i].Delete(field)
				removed++
			}
		}
	}
	return removed
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
