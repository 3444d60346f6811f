package cellparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser(DefaultConfig(), nil)
	require.NoError(t, err)
	return p
}

func TestSeparate(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name string
		cell string
		want []string
	}{
		{"simple list", "hic, haec, hoc", []string{"hic", "haec", "hoc"}},
		{"separator inside comment", "hic (this, also: here); hoc", []string{"hic (this, also: here)", "hoc"}},
		{"unbalanced tail preserved whole", "hic (this, also: here", []string{"hic (this, also: here"}},
		{"trailing separator", "illic,", []string{"illic"}},
		{"newline separates", "/a/\n/b/", []string{"/a/", "/b/"}},
		{"empty", "", nil},
		{"only separators", " ; , ", nil},
		{"source with page", "/a/ {2: p. 3, 4}; /b/", []string{"/a/ {2: p. 3, 4}", "/b/"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.SeparateAll(tt.cell))
		})
	}
}

func TestSeparate_Restartable(t *testing.T) {
	p := newTestParser(t)
	seq := p.Separate("hic (this, also: here); hoc, haec")

	var first, second []string
	for s := range seq {
		first = append(first, s)
	}
	for s := range seq {
		second = append(second, s)
	}
	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}

func TestSeparate_StopsEarly(t *testing.T) {
	p := newTestParser(t)

	var got []string
	for s := range p.Separate("a, b, c") {
		got = append(got, s)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestSeparate_CustomSeparator(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Separator = `\s*\|\s*`
	p, err := NewParser(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"/a/, /b/", "/c/"}, p.SeparateAll("/a/, /b/ | /c/"))
}
