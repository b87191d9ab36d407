package grammar

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/unihan-tabular/internal/types"
)

var (
	fennPattern        = regexp.MustCompile(`^([0-9]+)([A-Za-z*]+)$`)
	hanyuPinluPattern  = regexp.MustCompile(`^(\S+)\(([0-9]+)\)$`)
	hdzRadBreakPattern = regexp.MustCompile(`^([^\[\]]+)\[(U\+[0-9A-F]{4,6})\]:(\S+)$`)
)

// decodeDefinition splits kDefinition on ";" and trims each definition
func decodeDefinition(raw string) ([]string, error) {
	parts := splitEntries(raw, ";")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out, nil
}

// decodeHanYuLocation decodes an HDZ position "ABCDE.XYZ":
//
//	A    volume [1..8]
//	BCDE zero-padded page
//	XY   zero-padded character index on the page
//	Z    0 for a real entry, n > 0 for the nth virtual assignment
func decodeHanYuLocation(s string) (types.HanYuLocation, error) {
	if len(s) != 9 || s[5] != '.' {
		return types.HanYuLocation{}, fmt.Errorf("expected ABCDE.XYZ, got %q", s)
	}
	var loc types.HanYuLocation
	var err error
	if loc.Volume, err = fixedInt(s, 0, 1); err != nil {
		return types.HanYuLocation{}, err
	}
	if loc.Volume < 1 || loc.Volume > 8 {
		return types.HanYuLocation{}, fmt.Errorf("volume %d out of range 1-8", loc.Volume)
	}
	if loc.Page, err = fixedInt(s, 1, 5); err != nil {
		return types.HanYuLocation{}, err
	}
	if loc.Character, err = fixedInt(s, 6, 8); err != nil {
		return types.HanYuLocation{}, err
	}
	if loc.Virtual, err = fixedInt(s, 8, 9); err != nil {
		return types.HanYuLocation{}, err
	}
	return loc, nil
}

// decodeHanyuPinyin decodes "locations:readings", both comma-separated.
// Reading order is significant and kept as given.
func decodeHanyuPinyin(s string) (types.HanyuPinyin, error) {
	parts, err := splitExact(s, ":", 2)
	if err != nil {
		return types.HanyuPinyin{}, err
	}
	locations, err := decodeEntries(strings.TrimSpace(parts[0]), ",", decodeHanYuLocation)
	if err != nil {
		return types.HanyuPinyin{}, err
	}
	readings, err := decodeEntries(strings.TrimSpace(parts[1]), ",", nonEmpty)
	if err != nil {
		return types.HanyuPinyin{}, err
	}
	return types.HanyuPinyin{Locations: locations, Readings: readings}, nil
}

// decodeXHCLocation decodes "page.PPE" with an optional trailing "*":
// PP is the position on the page, E the entry number, "*" marks a
// substituted reading.
func decodeXHCLocation(s string) (types.XHCLocation, error) {
	parts, err := splitExact(s, ".", 2)
	if err != nil {
		return types.XHCLocation{}, err
	}
	var loc types.XHCLocation
	if loc.Page, err = number(parts[0]); err != nil {
		return types.XHCLocation{}, err
	}
	pos := parts[1]
	if strings.HasSuffix(pos, "*") {
		loc.Substituted = true
		pos = strings.TrimSuffix(pos, "*")
	}
	if len(pos) != 3 {
		return types.XHCLocation{}, fmt.Errorf("expected 3-digit position, got %q", parts[1])
	}
	if loc.Position, err = fixedInt(pos, 0, 2); err != nil {
		return types.XHCLocation{}, err
	}
	if loc.Entry, err = fixedInt(pos, 2, 3); err != nil {
		return types.XHCLocation{}, err
	}
	return loc, nil
}

// decodeXHC1983 decodes "locations:reading"
func decodeXHC1983(s string) (types.XHC1983, error) {
	parts, err := splitExact(s, ":", 2)
	if err != nil {
		return types.XHC1983{}, err
	}
	locations, err := decodeEntries(parts[0], ",", decodeXHCLocation)
	if err != nil {
		return types.XHC1983{}, err
	}
	reading, err := nonEmpty(parts[1])
	if err != nil {
		return types.XHC1983{}, err
	}
	return types.XHC1983{Locations: locations, Reading: reading}, nil
}

// decodeCheungBauer decodes "RRR/SS;cangjie;readings"
func decodeCheungBauer(s string) (types.CheungBauer, error) {
	parts, err := splitExact(s, ";", 3)
	if err != nil {
		return types.CheungBauer{}, err
	}
	rs, err := splitNumbers(strings.TrimSpace(parts[0]), "/", 2)
	if err != nil {
		return types.CheungBauer{}, err
	}
	cb := types.CheungBauer{Radical: rs[0], Strokes: rs[1]}
	if cangjie := strings.TrimSpace(parts[1]); cangjie != "" {
		cb.Cangjie = &cangjie
	}
	if cb.Readings, err = decodeEntries(strings.TrimSpace(parts[2]), ",", nonEmpty); err != nil {
		return types.CheungBauer{}, err
	}
	return cb, nil
}

// decodeAdobeJapan decodes "T+CID+radical.strokes.residue"
func decodeAdobeJapan(s string) (types.AdobeJapan, error) {
	parts, err := splitExact(s, "+", 3)
	if err != nil {
		return types.AdobeJapan{}, err
	}
	if parts[0] != "C" && parts[0] != "V" {
		return types.AdobeJapan{}, fmt.Errorf("expected type C or V, got %q", parts[0])
	}
	cid, err := number(parts[1])
	if err != nil {
		return types.AdobeJapan{}, err
	}
	rs, err := splitNumbers(parts[2], ".", 3)
	if err != nil {
		return types.AdobeJapan{}, err
	}
	return types.AdobeJapan{
		Type:           parts[0],
		CID:            cid,
		Radical:        rs[0],
		Strokes:        rs[1],
		StrokesResidue: rs[2],
	}, nil
}

// decodeRadicalStrokes decodes "radical.strokes"
func decodeRadicalStrokes(s string) (types.RadicalStrokes, error) {
	rs, err := splitNumbers(s, ".", 2)
	if err != nil {
		return types.RadicalStrokes{}, err
	}
	return types.RadicalStrokes{Radical: rs[0], Strokes: rs[1]}, nil
}

// decodeUnicodeRadicalStrokes decodes "radical['].strokes". An apostrophe
// directly after the radical marks its simplified form.
func decodeUnicodeRadicalStrokes(s string) (types.UnicodeRadicalStrokes, error) {
	parts, err := splitExact(s, ".", 2)
	if err != nil {
		return types.UnicodeRadicalStrokes{}, err
	}
	radical := strings.TrimRight(parts[0], "'")
	var rs types.UnicodeRadicalStrokes
	rs.Simplified = radical != parts[0]
	if rs.Radical, err = number(radical); err != nil {
		return types.UnicodeRadicalStrokes{}, err
	}
	if rs.Strokes, err = number(parts[1]); err != nil {
		return types.UnicodeRadicalStrokes{}, err
	}
	return rs, nil
}

// decodeCihaiT decodes "page.RPP": R is the row, PP the position on the row
func decodeCihaiT(s string) (types.CihaiT, error) {
	parts, err := splitExact(s, ".", 2)
	if err != nil {
		return types.CihaiT{}, err
	}
	if len(parts[1]) != 3 {
		return types.CihaiT{}, fmt.Errorf("expected 3 digits after the period, got %q", parts[1])
	}
	var c types.CihaiT
	if c.Page, err = number(parts[0]); err != nil {
		return types.CihaiT{}, err
	}
	if c.Row, err = fixedInt(parts[1], 0, 1); err != nil {
		return types.CihaiT{}, err
	}
	if c.Position, err = fixedInt(parts[1], 1, 3); err != nil {
		return types.CihaiT{}, err
	}
	return c, nil
}

// decodeDaeJaweon decodes "page.PPV": PP is the position, V is 0 for a real
// entry and 1 for a virtual position
func decodeDaeJaweon(s string) (types.DaeJaweon, error) {
	parts, err := splitExact(s, ".", 2)
	if err != nil {
		return types.DaeJaweon{}, err
	}
	if len(parts[1]) != 3 {
		return types.DaeJaweon{}, fmt.Errorf("expected 3 digits after the period, got %q", parts[1])
	}
	var d types.DaeJaweon
	if d.Page, err = number(parts[0]); err != nil {
		return types.DaeJaweon{}, err
	}
	if d.Position, err = fixedInt(parts[1], 0, 2); err != nil {
		return types.DaeJaweon{}, err
	}
	if d.Virtual, err = fixedInt(parts[1], 2, 3); err != nil {
		return types.DaeJaweon{}, err
	}
	return d, nil
}

// decodeFenn decodes a phonetic number immediately followed by its frequency class
func decodeFenn(s string) (types.Fenn, error) {
	m := fennPattern.FindStringSubmatch(s)
	if m == nil {
		return types.Fenn{}, fmt.Errorf("expected <digits><letter>, got %q", s)
	}
	phonetic, err := number(m[1])
	if err != nil {
		return types.Fenn{}, err
	}
	return types.Fenn{Phonetic: phonetic, Frequency: m[2]}, nil
}

// decodeHanyuPinlu decodes "reading(frequency)"
func decodeHanyuPinlu(s string) (types.HanyuPinlu, error) {
	m := hanyuPinluPattern.FindStringSubmatch(s)
	if m == nil {
		return types.HanyuPinlu{}, fmt.Errorf("expected reading(frequency), got %q", s)
	}
	freq, err := number(m[2])
	if err != nil {
		return types.HanyuPinlu{}, err
	}
	return types.HanyuPinlu{Phonetic: m[1], Frequency: freq}, nil
}

// decodeHDZRadBreak decodes "radical[U+XXXX]:location"
func decodeHDZRadBreak(s string) (types.HDZRadBreak, error) {
	m := hdzRadBreakPattern.FindStringSubmatch(s)
	if m == nil {
		return types.HDZRadBreak{}, fmt.Errorf("expected radical[U+XXXX]:location, got %q", s)
	}
	return types.HDZRadBreak{Radical: m[1], UCN: m[2], Location: m[3]}, nil
}

// decodeSBGY decodes "page.character"
func decodeSBGY(s string) (types.SBGY, error) {
	pc, err := splitNumbers(s, ".", 2)
	if err != nil {
		return types.SBGY{}, err
	}
	return types.SBGY{Page: pc[0], Character: pc[1]}, nil
}
