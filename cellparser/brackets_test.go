package cellparser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBalanced(t *testing.T) {
	pairs := DefaultConfig().Pairs()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", true},
		{"plain text", "lexedata", true},
		{"all field kinds", "/a/ [a.'ʔa] <a> (cabello) {4}", true},
		{"nested", "(a comment with {a source} inside)", true},
		{"symmetric pair", "/aʔa/", true},
		{"unclosed opener", "(unclosed", false},
		{"unclosed symmetric", "a / b", false},
		{"stray closer", "closed)", false},
		{"out of order closer", "(a [b)]", false},
		{"closer after balanced span", "[a] b]", false},
		{"multibyte content", "[tɨ̃nɨ̃mpɨ̃ã]", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBalanced(tt.text, pairs))
		})
	}
}

func TestIsBalanced_Escapes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Escapes = []string{"!(", "!)"}
	pairs := cfg.Pairs()

	assert.True(t, IsBalanced("a !( b", pairs), "escaped opener must not open")
	assert.True(t, IsBalanced("(a !) b)", pairs), "escaped closer must not close")
	assert.False(t, IsBalanced("a ( b", pairs))
}

func TestIsBalanced_MultiCharacterMarkers(t *testing.T) {
	pairs := []Pair{{Open: "<<", Close: ">>"}, {Open: "<", Close: ">"}}

	assert.True(t, IsBalanced("<<a <b> c>>", pairs))
	assert.False(t, IsBalanced("<<a>", pairs))
}

func TestSplitSpans(t *testing.T) {
	pairs := DefaultConfig().Pairs()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "no brackets",
			text: "abc",
			want: []string{"abc"},
		},
		{
			name: "full form",
			text: " /a/ [a.'ʔa] (cabello){4} /aʔa/",
			want: []string{" ", "/a/", " ", "[a.'ʔa]", " ", "(cabello)", "", "{4}", " ", "/aʔa/", ""},
		},
		{
			name: "nested span stays whole",
			text: "(a (b) c)",
			want: []string{"", "(a (b) c)", ""},
		},
		{
			name: "dangling opener collapses into last span",
			text: "a (b [c]",
			want: []string{"a ", "(b [c]"},
		},
		{
			name: "stray closer kept in gap",
			text: "a) b",
			want: []string{"a) b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSpans(tt.text, pairs)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, strings.Join(got, ""))
			if IsBalanced(tt.text, pairs) {
				assert.Equal(t, 1, len(got)%2, "spans alternate gap/bracket")
			}
		})
	}
}

func TestSplitSpans_Lossless(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Escapes = []string{"!("}
	pairs := cfg.Pairs()

	inputs := []string{
		"",
		"/",
		")(",
		"}{",
		"[a}",
		"{(}",
		"/a/ /b",
		"!( (x) !(",
		"<tɨ̈nɨmpɨ̈'ä>[tɨ̃nɨ̃mpɨ̃ã; hɨnampɨʔa]",
		"[dʒi'tɨka] {2} ~ [ʒi'tɨka] {2}",
		"((((",
		"))))",
	}
	for _, in := range inputs {
		assert.Equal(t, in, strings.Join(SplitSpans(in, pairs), ""), "input %q", in)
	}
}

func TestParser_SplitSpansReportsStrayCloser(t *testing.T) {
	p, err := NewParser(DefaultConfig(), nil)
	require.NoError(t, err)

	spans, diags := p.SplitSpans("/a/ b) (c)", "C7")
	assert.Equal(t, []string{"", "/a/", " b) ", "(c)", ""}, spans)

	require.Len(t, diags, 1)
	assert.Equal(t, KindMismatchedDelimiter, diags[0].Kind)
	assert.Equal(t, "C7", diags[0].Coordinate)
	assert.Equal(t, 5, diags[0].Offset)
	assert.True(t, diags[0].IsWarning())
}
