// Package grammar holds the closed registry of UNIHAN field grammars: how
// each field's raw value is split and how every entry is decoded into a
// structured value. Decoders are pure functions of the raw string.
package grammar

import (
	"fmt"
	"sort"

	"github.com/jonathan/unihan-tabular/internal/types"
)

// Grammar describes one field's raw value format
type Grammar struct {
	Field     string
	Kind      Kind
	Delimiter string
	decode    func(raw string) (any, error)
}

// Decode parses raw into the field's structured value. Failures are
// returned as *MalformedFieldValueError with Field and Value set; no partial
// value is ever returned alongside an error.
func (g Grammar) Decode(raw string) (any, error) {
	v, err := g.decode(raw)
	if err != nil {
		return nil, &MalformedFieldValueError{Field: g.Field, Value: raw, Cause: err}
	}
	return v, nil
}

func scalar(field string) Grammar {
	return Grammar{
		Field: field,
		Kind:  KindScalar,
		decode: func(raw string) (any, error) {
			return raw, nil
		},
	}
}

func list(field string) Grammar {
	return Grammar{
		Field:     field,
		Kind:      KindList,
		Delimiter: " ",
		decode: func(raw string) (any, error) {
			return splitEntries(raw, " "), nil
		},
	}
}

func listOf[T any](field string, entry func(string) (T, error)) Grammar {
	return Grammar{
		Field:     field,
		Kind:      KindList,
		Delimiter: " ",
		decode: func(raw string) (any, error) {
			return decodeEntries(raw, " ", entry)
		},
	}
}

func preferencePair[T any](field string, parse func(string) (T, error)) Grammar {
	return Grammar{
		Field:     field,
		Kind:      KindPreferencePair,
		Delimiter: " ",
		decode: func(raw string) (any, error) {
			values, err := decodeEntries(raw, " ", parse)
			if err != nil {
				return nil, err
			}
			switch len(values) {
			case 1:
				return types.Preference[T]{Hans: values[0], Hant: values[0]}, nil
			case 2:
				return types.Preference[T]{Hans: values[0], Hant: values[1]}, nil
			default:
				return nil, fmt.Errorf("expected 1 or 2 values, got %d", len(values))
			}
		},
	}
}

func composite[T any](field, sep string, decode func(string) (T, error)) Grammar {
	return Grammar{
		Field:     field,
		Kind:      KindComposite,
		Delimiter: sep,
		decode: func(raw string) (any, error) {
			return decode(raw)
		},
	}
}

func custom[T any](field string, decode func(string) (T, error)) Grammar {
	return Grammar{
		Field: field,
		Kind:  KindCustom,
		decode: func(raw string) (any, error) {
			return decode(raw)
		},
	}
}

var registry = map[string]Grammar{}

func register(grammars ...Grammar) {
	for _, g := range grammars {
		if _, dup := registry[g.Field]; dup {
			panic("grammar: duplicate registration for " + g.Field)
		}
		registry[g.Field] = g
	}
}

func init() {
	register(
		composite("kDefinition", ";", decodeDefinition),
		preferencePair("kMandarin", nonEmpty),
		preferencePair("kTotalStrokes", number),

		listOf("kRSJapanese", decodeRadicalStrokes),
		listOf("kRSKangXi", decodeRadicalStrokes),
		listOf("kRSKanWa", decodeRadicalStrokes),
		listOf("kRSKorean", decodeRadicalStrokes),
		listOf("kRSUnicode", decodeUnicodeRadicalStrokes),
		listOf("kRSAdobe_Japan1_6", decodeAdobeJapan),
		listOf("kHanYu", decodeHanYuLocation),
		listOf("kIRGHanyuDaZidian", decodeHanYuLocation),
		listOf("kHanyuPinyin", decodeHanyuPinyin),
		listOf("kXHC1983", decodeXHC1983),
		listOf("kCheungBauer", decodeCheungBauer),
		listOf("kCihaiT", decodeCihaiT),
		listOf("kFenn", decodeFenn),
		listOf("kHanyuPinlu", decodeHanyuPinlu),
		listOf("kSBGY", decodeSBGY),

		custom("kDaeJaweon", decodeDaeJaweon),
		custom("kHDZRadBreak", decodeHDZRadBreak),
	)

	for _, f := range []string{
		"kAccountingNumeric",
		"kCantonese",
		"kCCCII",
		"kCheungBauerIndex",
		"kCowles",
		"kFennIndex",
		"kFourCornerCode",
		"kGSR",
		"kHangul",
		"kHKGlyph",
		"kIBMJapan",
		"kIICore",
		"kIRGDaeJaweon",
		"kIRGDaiKanwaZiten",
		"kIRGKangXi",
		"kJa",
		"kJapaneseKun",
		"kJapaneseOn",
		"kJis0",
		"kJIS0213",
		"kJis1",
		"kKangXi",
		"kKarlgren",
		"kKorean",
		"kKPS0",
		"kKPS1",
		"kKSC0",
		"kKSC1",
		"kLau",
		"kMainlandTelegraph",
		"kMatthews",
		"kMeyerWempe",
		"kMorohashi",
		"kNelson",
		"kOtherNumeric",
		"kPhonetic",
		"kPrimaryNumeric",
		"kSemanticVariant",
		"kSimplifiedVariant",
		"kSpecializedSemanticVariant",
		"kTaiwanTelegraph",
		"kTang",
		"kTraditionalVariant",
		"kVietnamese",
		"kXerox",
		"kZVariant",
	} {
		register(list(f))
	}

	for _, f := range []string{
		"kBigFive",
		"kCangjie",
		"kCNS1986",
		"kCNS1992",
		"kCompatibilityVariant",
		"kEACC",
		"kFrequency",
		"kGB0",
		"kGB1",
		"kGB3",
		"kGB5",
		"kGB7",
		"kGB8",
		"kGradeLevel",
		"kHKSCS",
		"kIRG_GSource",
		"kIRG_HSource",
		"kIRG_JSource",
		"kIRG_KPSource",
		"kIRG_KSource",
		"kIRG_MSource",
		"kIRG_TSource",
		"kIRG_USource",
		"kIRG_VSource",
		"kPseudoGB1",
	} {
		register(scalar(f))
	}
}

// Lookup returns the grammar registered for field
func Lookup(field string) (Grammar, bool) {
	g, ok := registry[field]
	return g, ok
}

// Fields returns every field with a registered grammar, sorted
func Fields() []string {
	fields := make([]string, 0, len(registry))
	for f := range registry {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Validate checks that every field has a grammar. It is meant to run once
// on the requested field set, before any line is read.
func Validate(fields []string) error {
	var unknown []string
	for _, f := range fields {
		if _, ok := registry[f]; !ok {
			unknown = append(unknown, f)
		}
	}
	if len(unknown) > 0 {
		return &UnknownFieldError{Fields: unknown}
	}
	return nil
}

// Decode decodes raw with field's grammar
func Decode(field, raw string) (any, error) {
	g, ok := Lookup(field)
	if !ok {
		return nil, &UnknownFieldError{Fields: []string{field}}
	}
	return g.Decode(raw)
}
