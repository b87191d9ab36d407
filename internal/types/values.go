// Package types provides the record and structured value types produced by the UNIHAN decoding pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Preference holds a value that may differ between the simplified (zh-Hans)
// and traditional (zh-Hant) variants. When UNIHAN carries a single value it
// applies to both.
type Preference[T any] struct {
	Hans T `json:"zh-Hans" yaml:"zh-Hans"`
	Hant T `json:"zh-Hant" yaml:"zh-Hant"`
}

// RadicalStrokes is a "radical.strokes" index entry (kRSJapanese, kRSKangXi, kRSKanWa, kRSKorean)
type RadicalStrokes struct {
	Radical int `json:"radical" yaml:"radical"`
	Strokes int `json:"strokes" yaml:"strokes"`
}

// UnicodeRadicalStrokes is a kRSUnicode entry. Simplified is set when the
// radical number carries an apostrophe.
type UnicodeRadicalStrokes struct {
	Radical    int  `json:"radical" yaml:"radical"`
	Strokes    int  `json:"strokes" yaml:"strokes"`
	Simplified bool `json:"simplified" yaml:"simplified"`
}

// HanYuLocation is a Hanyu Da Zidian position ("ABCDE.XYZ").
// Virtual is 0 for a character printed in the dictionary and 1, 2, ... for
// successive characters assigned the same virtual position.
type HanYuLocation struct {
	Volume    int `json:"volume" yaml:"volume"`
	Page      int `json:"page" yaml:"page"`
	Character int `json:"character" yaml:"character"`
	Virtual   int `json:"virtual" yaml:"virtual"`
}

// HanyuPinyin is one kHanyuPinyin location group. Readings keep the HDZ order.
type HanyuPinyin struct {
	Locations []HanYuLocation `json:"locations" yaml:"locations"`
	Readings  []string        `json:"readings" yaml:"readings"`
}

// XHCLocation is a Xiandai Hanyu Cidian position
type XHCLocation struct {
	Page        int  `json:"page" yaml:"page"`
	Position    int  `json:"position" yaml:"position"`
	Entry       int  `json:"entry" yaml:"entry"`
	Substituted bool `json:"substituted" yaml:"substituted"`
}

// XHC1983 is one kXHC1983 entry: the positions sharing a reading.
type XHC1983 struct {
	Locations []XHCLocation `json:"locations" yaml:"locations"`
	Reading   string        `json:"reading" yaml:"reading"`
}

// CheungBauer is a kCheungBauer composite. Cangjie is nil when the source
// leaves the input code empty.
type CheungBauer struct {
	Radical  int      `json:"radical" yaml:"radical"`
	Strokes  int      `json:"strokes" yaml:"strokes"`
	Cangjie  *string  `json:"cangjie" yaml:"cangjie"`
	Readings []string `json:"readings" yaml:"readings"`
}

// AdobeJapan is a kRSAdobe_Japan1_6 entry.
// Type is "C" for a CID encoded directly and "V" for a variant form.
type AdobeJapan struct {
	Type           string `json:"type" yaml:"type"`
	CID            int    `json:"cid" yaml:"cid"`
	Radical        int    `json:"radical" yaml:"radical"`
	Strokes        int    `json:"strokes" yaml:"strokes"`
	StrokesResidue int    `json:"strokes-residue" yaml:"strokes-residue"`
}

// CihaiT is a position in the Cihai dictionary
type CihaiT struct {
	Page     int `json:"page" yaml:"page"`
	Row      int `json:"row" yaml:"row"`
	Position int `json:"position" yaml:"position"`
}

// DaeJaweon is a position in the Dae Jaweon dictionary
type DaeJaweon struct {
	Page     int `json:"page" yaml:"page"`
	Position int `json:"position" yaml:"position"`
	Virtual  int `json:"virtual" yaml:"virtual"`
}

// Fenn is a kFenn entry: phonetic series number and frequency class
type Fenn struct {
	Phonetic  int    `json:"phonetic" yaml:"phonetic"`
	Frequency string `json:"frequency" yaml:"frequency"`
}

// HanyuPinlu is a kHanyuPinlu entry: reading and its frequency count
type HanyuPinlu struct {
	Phonetic  string `json:"phonetic" yaml:"phonetic"`
	Frequency int    `json:"frequency" yaml:"frequency"`
}

// HDZRadBreak marks a Hanyu Da Zidian radical break. Location is kept as
// the raw HDZ position string.
type HDZRadBreak struct {
	Radical  string `json:"radical" yaml:"radical"`
	UCN      string `json:"ucn" yaml:"ucn"`
	Location string `json:"location" yaml:"location"`
}

// SBGY is a position in the Song Ben Guang Yun
type SBGY struct {
	Page      int `json:"page" yaml:"page"`
	Character int `json:"character" yaml:"character"`
}
