package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/unihan-tabular/internal/types"
)

func strPtr(s string) *string { return &s }

func TestDecode_Fields(t *testing.T) {
	tests := []struct {
		name  string
		field string
		raw   string
		want  any
	}{
		{
			name:  "kDefinition splits on semicolon and trims",
			field: "kDefinition",
			raw:   "variant of 出 U+51FA, to go out, send out; to stand; to produce",
			want:  []string{"variant of 出 U+51FA, to go out, send out", "to stand", "to produce"},
		},
		{
			name:  "kMandarin single reading covers both variants",
			field: "kMandarin",
			raw:   "hún",
			want:  types.Preference[string]{Hans: "hún", Hant: "hún"},
		},
		{
			name:  "kMandarin two readings",
			field: "kMandarin",
			raw:   "bǐ bì",
			want:  types.Preference[string]{Hans: "bǐ", Hant: "bì"},
		},
		{
			name:  "kTotalStrokes two counts",
			field: "kTotalStrokes",
			raw:   "8 9",
			want:  types.Preference[int]{Hans: 8, Hant: 9},
		},
		{
			name:  "kTotalStrokes single count",
			field: "kTotalStrokes",
			raw:   "13",
			want:  types.Preference[int]{Hans: 13, Hant: 13},
		},
		{
			name:  "generic list",
			field: "kCantonese",
			raw:   "gun3 hung1 zung1",
			want:  []string{"gun3", "hung1", "zung1"},
		},
		{
			name:  "kJapaneseKun",
			field: "kJapaneseKun",
			raw:   "DERU DASU",
			want:  []string{"DERU", "DASU"},
		},
		{
			name:  "kLau is a list",
			field: "kLau",
			raw:   "1466 1467",
			want:  []string{"1466", "1467"},
		},
		{
			name:  "kAccountingNumeric is a list",
			field: "kAccountingNumeric",
			raw:   "1000",
			want:  []string{"1000"},
		},
		{
			name:  "scalar field is unchanged",
			field: "kIRG_GSource",
			raw:   "G1-4E00",
			want:  "G1-4E00",
		},
		{
			name:  "kHanYu",
			field: "kHanYu",
			raw:   "10254.060 10254.100",
			want: []types.HanYuLocation{
				{Volume: 1, Page: 254, Character: 6, Virtual: 0},
				{Volume: 1, Page: 254, Character: 10, Virtual: 0},
			},
		},
		{
			name:  "kHanYu virtual position",
			field: "kHanYu",
			raw:   "53024.062",
			want:  []types.HanYuLocation{{Volume: 5, Page: 3024, Character: 6, Virtual: 2}},
		},
		{
			name:  "kIRGHanyuDaZidian shares the location code",
			field: "kIRGHanyuDaZidian",
			raw:   "10273.120",
			want:  []types.HanYuLocation{{Volume: 1, Page: 273, Character: 12, Virtual: 0}},
		},
		{
			name:  "kHanyuPinyin keeps reading order per location group",
			field: "kHanyuPinyin",
			raw:   "10093.130:xī,lǔ 74609.020:lǔ,xī",
			want: []types.HanyuPinyin{
				{
					Locations: []types.HanYuLocation{{Volume: 1, Page: 93, Character: 13}},
					Readings:  []string{"xī", "lǔ"},
				},
				{
					Locations: []types.HanYuLocation{{Volume: 7, Page: 4609, Character: 2}},
					Readings:  []string{"lǔ", "xī"},
				},
			},
		},
		{
			name:  "kHanyuPinyin several locations",
			field: "kHanyuPinyin",
			raw:   "10513.110,10514.010,10514.020:gǒng",
			want: []types.HanyuPinyin{{
				Locations: []types.HanYuLocation{
					{Volume: 1, Page: 513, Character: 11},
					{Volume: 1, Page: 514, Character: 1},
					{Volume: 1, Page: 514, Character: 2},
				},
				Readings: []string{"gǒng"},
			}},
		},
		{
			name:  "kXHC1983 with substitution marker",
			field: "kXHC1983",
			raw:   "0295.011:jī 0296.011*:jǐ",
			want: []types.XHC1983{
				{Locations: []types.XHCLocation{{Page: 295, Position: 1, Entry: 1}}, Reading: "jī"},
				{Locations: []types.XHCLocation{{Page: 296, Position: 1, Entry: 1, Substituted: true}}, Reading: "jǐ"},
			},
		},
		{
			name:  "kXHC1983 several locations",
			field: "kXHC1983",
			raw:   "1129.070,1129.080:sàn",
			want: []types.XHC1983{{
				Locations: []types.XHCLocation{
					{Page: 1129, Position: 7, Entry: 0},
					{Page: 1129, Position: 8, Entry: 0},
				},
				Reading: "sàn",
			}},
		},
		{
			name:  "kCheungBauer with cangjie",
			field: "kCheungBauer",
			raw:   "055/08;TLBO;mang4",
			want: []types.CheungBauer{
				{Radical: 55, Strokes: 8, Cangjie: strPtr("TLBO"), Readings: []string{"mang4"}},
			},
		},
		{
			name:  "kCheungBauer empty cangjie is null",
			field: "kCheungBauer",
			raw:   "030/04;;gung1",
			want: []types.CheungBauer{
				{Radical: 30, Strokes: 4, Cangjie: nil, Readings: []string{"gung1"}},
			},
		},
		{
			name:  "kCheungBauer several readings",
			field: "kCheungBauer",
			raw:   "030/07;RMMV;san2,seon2",
			want: []types.CheungBauer{
				{Radical: 30, Strokes: 7, Cangjie: strPtr("RMMV"), Readings: []string{"san2", "seon2"}},
			},
		},
		{
			name:  "kRSAdobe_Japan1_6 mixed types",
			field: "kRSAdobe_Japan1_6",
			raw:   "C+14301+2.1.3 V+15386+2.1.3",
			want: []types.AdobeJapan{
				{Type: "C", CID: 14301, Radical: 2, Strokes: 1, StrokesResidue: 3},
				{Type: "V", CID: 15386, Radical: 2, Strokes: 1, StrokesResidue: 3},
			},
		},
		{
			name:  "kRSAdobe_Japan1_6 different radicals",
			field: "kRSAdobe_Japan1_6",
			raw:   "C+17245+7.2.6 C+17245+28.2.6",
			want: []types.AdobeJapan{
				{Type: "C", CID: 17245, Radical: 7, Strokes: 2, StrokesResidue: 6},
				{Type: "C", CID: 17245, Radical: 28, Strokes: 2, StrokesResidue: 6},
			},
		},
		{
			name:  "kRSJapanese",
			field: "kRSJapanese",
			raw:   "4.6",
			want:  []types.RadicalStrokes{{Radical: 4, Strokes: 6}},
		},
		{
			name:  "kRSKangXi",
			field: "kRSKangXi",
			raw:   "7.4",
			want:  []types.RadicalStrokes{{Radical: 7, Strokes: 4}},
		},
		{
			name:  "kRSKanWa",
			field: "kRSKanWa",
			raw:   "37.3",
			want:  []types.RadicalStrokes{{Radical: 37, Strokes: 3}},
		},
		{
			name:  "kRSKorean",
			field: "kRSKorean",
			raw:   "26.7",
			want:  []types.RadicalStrokes{{Radical: 26, Strokes: 7}},
		},
		{
			name:  "kRSUnicode plain radical",
			field: "kRSUnicode",
			raw:   "9.13",
			want:  []types.UnicodeRadicalStrokes{{Radical: 9, Strokes: 13, Simplified: false}},
		},
		{
			name:  "kRSUnicode simplified radical",
			field: "kRSUnicode",
			raw:   "120'.3",
			want:  []types.UnicodeRadicalStrokes{{Radical: 120, Strokes: 3, Simplified: true}},
		},
		{
			name:  "kCihaiT",
			field: "kCihaiT",
			raw:   "170.105",
			want:  []types.CihaiT{{Page: 170, Row: 1, Position: 5}},
		},
		{
			name:  "kDaeJaweon real entry",
			field: "kDaeJaweon",
			raw:   "2075.100",
			want:  types.DaeJaweon{Page: 2075, Position: 10, Virtual: 0},
		},
		{
			name:  "kDaeJaweon virtual entry",
			field: "kDaeJaweon",
			raw:   "0162.211",
			want:  types.DaeJaweon{Page: 162, Position: 21, Virtual: 1},
		},
		{
			name:  "kFenn",
			field: "kFenn",
			raw:   "871P 31A",
			want:  []types.Fenn{{Phonetic: 871, Frequency: "P"}, {Phonetic: 31, Frequency: "A"}},
		},
		{
			name:  "kHanyuPinlu",
			field: "kHanyuPinlu",
			raw:   "xià(6430) xia(249)",
			want: []types.HanyuPinlu{
				{Phonetic: "xià", Frequency: 6430},
				{Phonetic: "xia", Frequency: 249},
			},
		},
		{
			name:  "kHDZRadBreak",
			field: "kHDZRadBreak",
			raw:   "⼀[U+2F00]:10001.010",
			want:  types.HDZRadBreak{Radical: "⼀", UCN: "U+2F00", Location: "10001.010"},
		},
		{
			name:  "kSBGY",
			field: "kSBGY",
			raw:   "032.44 148.21",
			want:  []types.SBGY{{Page: 32, Character: 44}, {Page: 148, Character: 21}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.field, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Deterministic(t *testing.T) {
	samples := map[string]string{
		"kHanyuPinyin":      "10093.130:xī,lǔ 74609.020:lǔ,xī",
		"kCheungBauer":      "030/04;;gung1",
		"kRSAdobe_Japan1_6": "C+14301+2.1.3 V+15386+2.1.3",
		"kDefinition":       "to lick; to taste, a mat, bamboo bark",
		"kTotalStrokes":     "8 9",
	}
	for field, raw := range samples {
		t.Run(field, func(t *testing.T) {
			first, err := Decode(field, raw)
			require.NoError(t, err)
			second, err := Decode(field, raw)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestDecode_PreferencePairSingleTokenIsSymmetric(t *testing.T) {
	for _, raw := range []string{"hún", "qiū", "tiàn"} {
		got, err := Decode("kMandarin", raw)
		require.NoError(t, err)
		p := got.(types.Preference[string])
		assert.Equal(t, p.Hans, p.Hant)
	}
	for _, raw := range []string{"1", "13", "22"} {
		got, err := Decode("kTotalStrokes", raw)
		require.NoError(t, err)
		p := got.(types.Preference[int])
		assert.Equal(t, p.Hans, p.Hant)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		field string
		raw   string
	}{
		{"kTotalStrokes", "8 9 10"},
		{"kTotalStrokes", "eight"},
		{"kMandarin", "a  b"},
		{"kHanYu", "10254.06"},
		{"kHanYu", "10254-060"},
		{"kHanYu", "90254.060"},
		{"kHanYu", "00254.060"},
		{"kHanyuPinyin", "10093.130"},
		{"kHanyuPinyin", "10093.130:"},
		{"kXHC1983", "0295.01:jī"},
		{"kXHC1983", "0295.011"},
		{"kCheungBauer", "030/04;gung1"},
		{"kCheungBauer", "030-04;;gung1"},
		{"kRSAdobe_Japan1_6", "X+14301+2.1.3"},
		{"kRSAdobe_Japan1_6", "C+14301+2.1"},
		{"kRSKangXi", "7"},
		{"kRSKangXi", "7.x"},
		{"kRSUnicode", "'120.3"},
		{"kCihaiT", "170.15"},
		{"kDaeJaweon", "2075.10"},
		{"kDaeJaweon", "2075.100 0162.211"},
		{"kFenn", "P871"},
		{"kHanyuPinlu", "xià6430"},
		{"kHDZRadBreak", "⼀:10001.010"},
		{"kSBGY", "032"},
	}

	for _, tt := range tests {
		t.Run(tt.field+" "+tt.raw, func(t *testing.T) {
			got, err := Decode(tt.field, tt.raw)
			require.Error(t, err)
			assert.Nil(t, got)

			var malformed *MalformedFieldValueError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.field, malformed.Field)
			assert.Equal(t, tt.raw, malformed.Value)
		})
	}
}

func TestDecode_EntryErrorLocatesFailure(t *testing.T) {
	_, err := Decode("kRSKangXi", "7.4 7.x")
	var entryErr *EntryError
	require.ErrorAs(t, err, &entryErr)
	assert.Equal(t, 1, entryErr.Index)
	assert.Equal(t, "7.x", entryErr.Entry)
	assert.Contains(t, err.Error(), `malformed kRSKangXi value "7.4 7.x": entry 2 "7.x"`)
}

func TestDecode_UnknownField(t *testing.T) {
	_, err := Decode("kHello", "x")
	var unknown *UnknownFieldError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"kHello"}, unknown.Fields)
}

func TestHelpers(t *testing.T) {
	t.Run("number rejects signs and blanks", func(t *testing.T) {
		for _, s := range []string{"", "-1", "+1", " 1", "1a"} {
			_, err := number(s)
			assert.Error(t, err, s)
		}
		n, err := number("0042")
		require.NoError(t, err)
		assert.Equal(t, 42, n)
	})

	t.Run("fixedInt bounds", func(t *testing.T) {
		n, err := fixedInt("10254.060", 6, 8)
		require.NoError(t, err)
		assert.Equal(t, 6, n)

		_, err = fixedInt("123", 1, 5)
		assert.Error(t, err)
	})

	t.Run("splitNumbers requires exact count", func(t *testing.T) {
		got, err := splitNumbers("2.1.3", ".", 3)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 1, 3}, got)

		_, err = splitNumbers("2.1", ".", 3)
		assert.Error(t, err)
	})
}
