// Package manifest describes which UNIHAN source files carry which fields
// and resolves a requested field/file selection against it.
package manifest

import (
	"slices"
	"sort"

	"github.com/jonathan/unihan-tabular/internal/types"
)

// Manifest maps a source file name inside Unihan.zip to the fields it contributes
type Manifest map[string][]string

// Default is the manifest of the Unihan.zip distribution
var Default = Manifest{
	"Unihan_DictionaryIndices.txt": {
		"kCheungBauerIndex",
		"kCowles",
		"kDaeJaweon",
		"kFennIndex",
		"kGSR",
		"kHanYu",
		"kIRGDaeJaweon",
		"kIRGDaiKanwaZiten",
		"kIRGHanyuDaZidian",
		"kIRGKangXi",
		"kKangXi",
		"kKarlgren",
		"kLau",
		"kMatthews",
		"kMeyerWempe",
		"kMorohashi",
		"kNelson",
		"kSBGY",
	},
	"Unihan_DictionaryLikeData.txt": {
		"kCangjie",
		"kCheungBauer",
		"kCihaiT",
		"kFenn",
		"kFourCornerCode",
		"kFrequency",
		"kGradeLevel",
		"kHDZRadBreak",
		"kHKGlyph",
		"kPhonetic",
		"kTotalStrokes",
	},
	"Unihan_IRGSources.txt": {
		"kCompatibilityVariant",
		"kIICore",
		"kIRG_GSource",
		"kIRG_HSource",
		"kIRG_JSource",
		"kIRG_KPSource",
		"kIRG_KSource",
		"kIRG_MSource",
		"kIRG_TSource",
		"kIRG_USource",
		"kIRG_VSource",
	},
	"Unihan_NumericValues.txt": {
		"kAccountingNumeric",
		"kOtherNumeric",
		"kPrimaryNumeric",
	},
	"Unihan_OtherMappings.txt": {
		"kBigFive",
		"kCCCII",
		"kCNS1986",
		"kCNS1992",
		"kEACC",
		"kGB0",
		"kGB1",
		"kGB3",
		"kGB5",
		"kGB7",
		"kGB8",
		"kHKSCS",
		"kIBMJapan",
		"kJa",
		"kJis0",
		"kJis1",
		"kJIS0213",
		"kKPS0",
		"kKPS1",
		"kKSC0",
		"kKSC1",
		"kMainlandTelegraph",
		"kPseudoGB1",
		"kTaiwanTelegraph",
		"kXerox",
	},
	"Unihan_RadicalStrokeCounts.txt": {
		"kRSAdobe_Japan1_6",
		"kRSJapanese",
		"kRSKangXi",
		"kRSKanWa",
		"kRSKorean",
		"kRSUnicode",
	},
	"Unihan_Readings.txt": {
		"kCantonese",
		"kDefinition",
		"kHangul",
		"kHanyuPinlu",
		"kHanyuPinyin",
		"kJapaneseKun",
		"kJapaneseOn",
		"kKorean",
		"kMandarin",
		"kTang",
		"kVietnamese",
		"kXHC1983",
	},
	"Unihan_Variants.txt": {
		"kSemanticVariant",
		"kSimplifiedVariant",
		"kSpecializedSemanticVariant",
		"kTraditionalVariant",
		"kZVariant",
	},
}

// Files returns the manifest's file names, sorted
func (m Manifest) Files() []string {
	files := make([]string, 0, len(m))
	for f := range m {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Fields returns every field of the manifest, sorted and deduplicated
func (m Manifest) Fields() []string {
	seen := make(map[string]struct{})
	for _, fields := range m {
		for _, f := range fields {
			seen[f] = struct{}{}
		}
	}
	fields := make([]string, 0, len(seen))
	for f := range seen {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// HasField reports whether any file of the manifest carries field
func (m Manifest) HasField(field string) bool {
	for _, fields := range m {
		if slices.Contains(fields, field) {
			return true
		}
	}
	return false
}

// Filter returns the sub-manifest for files. Unknown files yield an
// *UnknownFileError listing all of them.
func (m Manifest) Filter(files []string) (Manifest, error) {
	out := make(Manifest, len(files))
	var unknown []string
	for _, f := range files {
		fields, ok := m[f]
		if !ok {
			unknown = append(unknown, f)
			continue
		}
		out[f] = fields
	}
	if len(unknown) > 0 {
		return nil, &UnknownFileError{Files: unknown}
	}
	return out, nil
}

// FilesFor returns the files carrying at least one of fields, sorted.
// Unknown fields yield an *UnknownFieldError.
func (m Manifest) FilesFor(fields []string) ([]string, error) {
	var unknown []string
	for _, f := range fields {
		if !m.HasField(f) {
			unknown = append(unknown, f)
		}
	}
	if len(unknown) > 0 {
		return nil, &UnknownFieldError{Fields: unknown}
	}

	var files []string
	for _, file := range m.Files() {
		for _, f := range fields {
			if slices.Contains(m[file], f) {
				files = append(files, file)
				break
			}
		}
	}
	return files, nil
}

// Selection is a validated pair of source files and fields to read from them
type Selection struct {
	Files  []string
	Fields []string
}

// Resolve validates a requested selection and fills in whichever side was
// left empty:
//
//   - files only: every field of those files
//   - fields only: the files carrying those fields
//   - both: every field must be carried by one of the files
//   - neither: the whole manifest
//
// Requested fields keep their order; index fields are accepted but are not
// part of the selection.
func (m Manifest) Resolve(fields, files []string) (Selection, error) {
	fields = slices.DeleteFunc(slices.Clone(fields), func(f string) bool {
		return slices.Contains(types.IndexFields, f)
	})

	switch {
	case len(fields) == 0 && len(files) == 0:
		return Selection{Files: m.Files(), Fields: m.Fields()}, nil

	case len(fields) == 0:
		sub, err := m.Filter(files)
		if err != nil {
			return Selection{}, err
		}
		return Selection{Files: slices.Clone(files), Fields: sub.Fields()}, nil

	case len(files) == 0:
		found, err := m.FilesFor(fields)
		if err != nil {
			return Selection{}, err
		}
		return Selection{Files: found, Fields: dedupe(fields)}, nil

	default:
		sub, err := m.Filter(files)
		if err != nil {
			return Selection{}, err
		}
		var missing []string
		for _, f := range fields {
			if !sub.HasField(f) {
				missing = append(missing, f)
			}
		}
		if len(missing) > 0 {
			return Selection{}, &UnknownFieldError{Fields: missing}
		}
		return Selection{Files: slices.Clone(files), Fields: dedupe(fields)}, nil
	}
}

func dedupe(fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
