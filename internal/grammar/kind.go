package grammar

// Kind classifies how a field's raw value is split before its entries are decoded
type Kind int

const (
	// KindScalar keeps the raw string unchanged
	KindScalar Kind = iota
	// KindList splits on single spaces; entries may be decoded further
	KindList
	// KindPreferencePair splits on a space into one or two values, the
	// first for zh-Hans and the second for zh-Hant
	KindPreferencePair
	// KindComposite splits on a custom delimiter into positional parts
	KindComposite
	// KindCustom decodes the whole string with a field-specific grammar
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindPreferencePair:
		return "preference-pair"
	case KindComposite:
		return "composite"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// MultiEntry reports whether values of this kind are split into entries
func (k Kind) MultiEntry() bool {
	return k == KindList || k == KindPreferencePair || k == KindComposite
}
