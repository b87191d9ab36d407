package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Index fields carried by every record regardless of the requested field set.
const (
	FieldCodepoint = "codepoint"
	FieldChar      = "char"
)

// IndexFields lists the index fields in output order
var IndexFields = []string{FieldCodepoint, FieldChar}

// RawRecord is one character's raw field values as read from the source
// files. The field set is fixed when the record is created; fields never
// observed for the character report absent from Get.
type RawRecord struct {
	Codepoint string
	Char      string
	fields    []string
	values    map[string]string
}

// NewRawRecord creates a record with every field in fields absent.
// fields is shared read-only between records of one run.
func NewRawRecord(codepoint, char string, fields []string) RawRecord {
	return RawRecord{
		Codepoint: codepoint,
		Char:      char,
		fields:    fields,
		values:    make(map[string]string),
	}
}

// Fields returns the record's field set in order
func (r RawRecord) Fields() []string {
	return r.fields
}

// Get returns the raw value of field and whether it was observed
func (r RawRecord) Get(field string) (string, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Set stores a raw value, replacing any earlier value for the same field
func (r *RawRecord) Set(field, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	r.values[field] = value
}

// Record is a character record ready for export. Values may be raw strings
// (no-expand mode) or decoded structures. A field without an entry in the
// value map is not emitted at all.
type Record struct {
	Codepoint string
	Char      string
	fields    []string
	values    map[string]any
}

// NewRecord creates an empty record for the given field set
func NewRecord(codepoint, char string, fields []string) Record {
	return Record{
		Codepoint: codepoint,
		Char:      char,
		fields:    fields,
		values:    make(map[string]any, len(fields)),
	}
}

// Fields returns the record's field set in order
func (r Record) Fields() []string {
	return r.fields
}

// Get returns the value stored for field
func (r Record) Get(field string) (any, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Set stores the value for field
func (r *Record) Set(field string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	r.values[field] = value
}

// Delete removes field from the record
func (r *Record) Delete(field string) {
	delete(r.values, field)
}

// Len returns the number of fields with an entry, index fields excluded
func (r Record) Len() int {
	return len(r.values)
}

// Keys returns the emitted keys in output order, index fields first.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(IndexFields)+len(r.values))
	keys = append(keys, IndexFields...)
	for _, f := range r.fields {
		if _, ok := r.values[f]; ok {
			keys = append(keys, f)
		}
	}
	return keys
}

func (r Record) value(key string) any {
	switch key {
	case FieldCodepoint:
		return r.Codepoint
	case FieldChar:
		return r.Char
	}
	return r.values[key]
}

// MarshalJSON writes the record as an object with keys in output order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	var out bytes.Buffer
	out.WriteByte('{')
	for i, key := range r.Keys() {
		if i > 0 {
			out.WriteByte(',')
		}
		buf.Reset()
		if err := enc.Encode(key); err != nil {
			return nil, err
		}
		out.Write(bytes.TrimRight(buf.Bytes(), "\n"))
		out.WriteByte(':')

		buf.Reset()
		if err := enc.Encode(r.value(key)); err != nil {
			return nil, fmt.Errorf("failed to marshal %s of %s: %w", key, r.Codepoint, err)
		}
		out.Write(bytes.TrimRight(buf.Bytes(), "\n"))
	}
	out.WriteByte('}')
	return out.Bytes(), nil
}

// MarshalYAML returns the record as an ordered mapping node.
func (r Record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range r.Keys() {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(r.value(key)); err != nil {
			return nil, fmt.Errorf("failed to marshal %s of %s: %w", key, r.Codepoint, err)
		}
		node.Content = append(node.Content, keyNode, valueNode)
	}
	return node, nil
}
