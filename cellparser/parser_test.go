package cellparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func kinds(diags []*ParseError) []ErrorKind {
	out := make([]ErrorKind, len(diags))
	for i, d := range diags {
		out[i] = d.Kind
	}
	return out
}

func TestParseForm_FullForm(t *testing.T) {
	p := newTestParser(t)

	form, diags := p.ParseForm(" /a/ [a.'ʔa] (cabello){4} /aʔa/", "language", "D4")
	require.NotNil(t, form)

	assert.Equal(t, "a", form.Fields[FieldPhonemic])
	assert.Equal(t, "a.'ʔa", form.Fields[FieldPhonetic])
	assert.Equal(t, "cabello", form.Fields[FieldComment])
	assert.Equal(t, []Reference{{ID: "language_s4"}}, form.Sources)
	assert.Equal(t, []string{"/aʔa/"}, form.Variants)
	assert.Equal(t, "language", form.Language)
	assert.Equal(t, " /a/ [a.'ʔa] (cabello){4} /aʔa/", form.Value)

	// the repeated phonemic value carried no ~ or %
	assert.Equal(t, []ErrorKind{KindUnexpectedVariant}, kinds(diags))
}

func TestParseForm_MarkedVariantWithRepeatedSource(t *testing.T) {
	p := newTestParser(t)

	form, diags := p.ParseForm("[dʒi'tɨka] {2} ~ [ʒi'tɨka] {2}", "language", "E9")
	require.NotNil(t, form)

	assert.Equal(t, "dʒi'tɨka", form.Fields[FieldPhonetic])
	assert.Equal(t, []Reference{{ID: "language_s2"}}, form.Sources)
	assert.Equal(t, []string{"~[ʒi'tɨka]"}, form.Variants)
	assert.Empty(t, diags)
}

func TestParseForm_Blank(t *testing.T) {
	p := newTestParser(t)

	for _, in := range []string{"", "   ", "\t\n"} {
		form, diags := p.ParseForm(in, "language", "A1")
		assert.Nil(t, form, "input %q", in)
		assert.Nil(t, diags, "input %q", in)
	}
}

func TestParseForm_Fields(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name     string
		desc     string
		fields   map[string]string
		variants []string
		kinds    []ErrorKind
	}{
		{
			name:   "comments are tab joined",
			desc:   "/a/ (one) (two)",
			fields: map[string]string{FieldPhonemic: "a", FieldComment: "one\ttwo"},
		},
		{
			name:   "trailing text goes to the comment",
			desc:   "/a/ (note) big",
			fields: map[string]string{FieldPhonemic: "a", FieldComment: "note\tbig"},
			kinds:  []ErrorKind{KindUnrecognizedToken},
		},
		{
			name:   "leading text is dropped",
			desc:   "big /a/",
			fields: map[string]string{FieldPhonemic: "a"},
			kinds:  []ErrorKind{KindUnrecognizedToken},
		},
		{
			name:   "marker without earlier field",
			desc:   "~ /a/",
			fields: map[string]string{FieldPhonemic: "a"},
			kinds:  []ErrorKind{KindUnexpectedVariant},
		},
		{
			name:   "dangling marker",
			desc:   "/a/ ~",
			fields: map[string]string{FieldPhonemic: "a"},
			kinds:  []ErrorKind{KindUnexpectedVariant},
		},
		{
			name:     "percent marker",
			desc:     "<ka> % <kaa>",
			fields:   map[string]string{FieldOrthographic: "ka"},
			variants: []string{"%<kaa>"},
		},
		{
			name:   "unclosed comment kept",
			desc:   "/a/ (note",
			fields: map[string]string{FieldPhonemic: "a", FieldComment: "note"},
			kinds:  []ErrorKind{KindMismatchedDelimiter},
		},
		{
			name:     "variant inside transcription",
			desc:     "/lexedata~lexidata/",
			fields:   map[string]string{FieldPhonemic: "lexedata"},
			variants: []string{"~lexidata"},
		},
		{
			name:   "markers in comments are not split",
			desc:   "/a/ (about 5~6 speakers)",
			fields: map[string]string{FieldPhonemic: "a", FieldComment: "about 5~6 speakers"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form, diags := p.ParseForm(tt.desc, "lang", "B2")
			require.NotNil(t, form)
			assert.Equal(t, tt.fields, form.Fields)
			assert.Equal(t, tt.variants, form.Variants)
			if tt.kinds == nil {
				assert.Empty(t, diags)
			} else {
				assert.Equal(t, tt.kinds, kinds(diags))
			}
		})
	}
}

func TestParseForm_Sources(t *testing.T) {
	p := newTestParser(t)

	form, diags := p.ParseForm("/a/ {3} {2: p. 4}", "lang", "B2")
	require.NotNil(t, form)
	assert.Empty(t, diags)
	require.Len(t, form.Sources, 2)
	assert.Equal(t, "lang_s2", form.Sources[0].ID)
	assert.Equal(t, "p. 4", form.Sources[0].ContextString())
	assert.Equal(t, "lang_s3", form.Sources[1].ID)
	assert.Nil(t, form.Sources[1].Context)
}

func TestParseForm_DefaultSourceDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultSource = ""
	p, err := NewParser(cfg, nil)
	require.NoError(t, err)

	form, _ := p.ParseForm("/a/", "lang", "B2")
	require.NotNil(t, form)
	assert.Empty(t, form.Sources)

	form, _ = newTestParser(t).ParseForm("/a/", "lang", "B2")
	require.NotNil(t, form)
	assert.Equal(t, []Reference{{ID: "lang_s1"}}, form.Sources)
}

func TestParseForm_CustomScheme(t *testing.T) {
	cfg := Config{
		Fields: []FieldSpec{
			{Name: "ipa", Open: "[[", Close: "]]", Transcription: true},
			{Name: "gloss", Open: "[", Close: "]"},
			{Name: "src", Open: "{", Close: "}"},
		},
		Separator:      `;`,
		VariantMarkers: []string{"|"},
		CommentField:   "gloss",
		SourceField:    "src",
	}
	p, err := NewParser(cfg, nil)
	require.NoError(t, err)

	form, diags := p.ParseForm("[[ta|da]] [hand] {Key 2001}", "x", "A1")
	require.NotNil(t, form)
	assert.Empty(t, diags)
	assert.Equal(t, map[string]string{"ipa": "ta", "gloss": "hand"}, form.Fields)
	assert.Equal(t, []string{"|da"}, form.Variants)
	assert.Equal(t, []Reference{{ID: "x_skey_2001"}}, form.Sources)
}

func TestParseForm_Idempotent(t *testing.T) {
	p := newTestParser(t)

	inputs := []string{
		" /a/ [a.'ʔa] (cabello){4} /aʔa/",
		"[dʒi'tɨka] {2} ~ [ʒi'tɨka] {2}",
		"/lexedata~lexidata/ (one) (two) {3: p. 1}",
	}
	for _, in := range inputs {
		first, _ := p.ParseForm(in, "lang", "A1")
		require.NotNil(t, first)
		again, _ := p.ParseForm(first.Value, "lang", "A1")
		require.NotNil(t, again)
		assert.Equal(t, first.Fields, again.Fields, in)
		assert.ElementsMatch(t, first.Sources, again.Sources, in)
		assert.ElementsMatch(t, first.Variants, again.Variants, in)
	}
}

func TestParseForm_LogsWithCoordinate(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	p, err := NewParser(DefaultConfig(), zap.New(core).Sugar())
	require.NoError(t, err)

	_, diags := p.ParseForm("hello /a/", "tupi", "H5")
	require.Len(t, diags, 1)

	warnings := logs.FilterLevelExact(zap.WarnLevel).All()
	require.Len(t, warnings, 1)
	fields := warnings[0].ContextMap()
	assert.Equal(t, "H5", fields["cell"])
	assert.Equal(t, "tupi", fields["language"])
	assert.Equal(t, string(KindUnrecognizedToken), fields["kind"])
	assert.Equal(t, "hello /a/", fields["form"])
}

func TestNewParser_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Separator = "["
	_, err := NewParser(cfg, nil)
	require.Error(t, err)
}

func TestParseForm_DefaultSourceAfterUnusableCitation(t *testing.T) {
	p := newTestParser(t)

	form, diags := p.ParseForm("/a/ {: p. 4}", "lang", "B2")
	require.NotNil(t, form)
	assert.Equal(t, []ErrorKind{KindMalformedSource}, kinds(diags))
	assert.Equal(t, []Reference{{ID: "lang_s1"}}, form.Sources)

	form, _ = p.ParseForm("/a/ {: p. 4} {2}", "lang", "B2")
	require.NotNil(t, form)
	assert.Equal(t, []Reference{{ID: "lang_s2"}}, form.Sources)
}

func TestNewParser_ConfigIsCopied(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Escapes = []string{"!("}
	p, err := NewParser(cfg, nil)
	require.NoError(t, err)

	cfg.Fields[0].Name = "hijacked"
	cfg.Escapes[0] = "/"
	cfg.VariantMarkers[0] = "/"

	got := p.Config()
	got.Fields[1].Transcription = false

	form, _ := p.ParseForm("/a/ ~/b/", "lang", "B2")
	require.NotNil(t, form)
	assert.Equal(t, "a", form.Fields[FieldPhonemic])
	assert.NotContains(t, form.Fields, "hijacked")
	assert.Equal(t, []string{"~/b/"}, form.Variants)

	res := p.ParseCell("[b]", "lang", "B3")
	assert.Equal(t, OutcomeOK, res.Outcome())
	assert.Equal(t, FieldPhonemic, p.Config().Fields[0].Name)
	assert.True(t, p.Config().Fields[1].Transcription)
}
