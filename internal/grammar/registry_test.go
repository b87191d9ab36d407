package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/unihan-tabular/internal/manifest"
)

func TestRegistry_MatchesManifest(t *testing.T) {
	assert.Equal(t, manifest.Default.Fields(), Fields())
}

func TestRegistry_Kinds(t *testing.T) {
	tests := []struct {
		field string
		kind  Kind
	}{
		{"kDefinition", KindComposite},
		{"kMandarin", KindPreferencePair},
		{"kTotalStrokes", KindPreferencePair},
		{"kCantonese", KindList},
		{"kRSUnicode", KindList},
		{"kHanyuPinyin", KindList},
		{"kDaeJaweon", KindCustom},
		{"kHDZRadBreak", KindCustom},
		{"kBigFive", KindScalar},
		{"kIRG_GSource", KindScalar},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			g, ok := Lookup(tt.field)
			require.True(t, ok)
			assert.Equal(t, tt.kind, g.Kind)
			assert.Equal(t, tt.field, g.Field)
		})
	}
}

func TestRegistry_Delimiters(t *testing.T) {
	for _, field := range Fields() {
		g, _ := Lookup(field)
		switch g.Kind {
		case KindScalar, KindCustom:
			assert.Empty(t, g.Delimiter, field)
			assert.False(t, g.Kind.MultiEntry(), field)
		default:
			assert.NotEmpty(t, g.Delimiter, field)
			assert.True(t, g.Kind.MultiEntry(), field)
		}
	}
}

func TestRegistry_MisspelledFieldsAreUnknown(t *testing.T) {
	for _, f := range []string{"kAccountingNumberic", "kLua"} {
		_, ok := Lookup(f)
		assert.False(t, ok, f)
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate([]string{"kDefinition", "kMandarin"}))
	require.NoError(t, Validate(nil))

	err := Validate([]string{"kDefinition", "kHello", "kWorld"})
	var unknown *UnknownFieldError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"kHello", "kWorld"}, unknown.Fields)
	assert.Equal(t, "no grammar registered for field kHello, kWorld", err.Error())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "scalar", KindScalar.String())
	assert.Equal(t, "preference-pair", KindPreferencePair.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
