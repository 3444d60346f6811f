package cellparser

import (
	"iter"
	"strings"
)

// Separate yields the form-descriptions of a cell. A separator splits the
// cell only when the text before it is balanced; otherwise it is taken to sit
// inside a bracket and the pieces are joined again. Blank pieces are skipped.
// The sequence can be ranged over any number of times.
func (p *Parser) Separate(cell string) iter.Seq[string] {
	return func(yield func(string) bool) {
		tokens := p.tokenize(cell)
		for len(tokens) > 1 {
			if IsBalanced(tokens[0], p.pairs) {
				if s := strings.TrimSpace(tokens[0]); s != "" {
					if !yield(s) {
						return
					}
				}
				tokens = tokens[2:]
				continue
			}
			tokens[2] = tokens[0] + tokens[1] + tokens[2]
			tokens = tokens[2:]
		}
		if s := strings.TrimSpace(tokens[0]); s != "" {
			yield(s)
		}
	}
}

// SeparateAll collects Separate into a slice.
func (p *Parser) SeparateAll(cell string) []string {
	var out []string
	for s := range p.Separate(cell) {
		out = append(out, s)
	}
	return out
}

// tokenize splits cell into content, separator, content, … tokens. The result
// always has odd length.
func (p *Parser) tokenize(cell string) []string {
	locs := p.sep.FindAllStringIndex(cell, -1)
	tokens := make([]string, 0, 2*len(locs)+1)
	prev := 0
	for _, loc := range locs {
		if loc[1] == loc[0] {
			continue
		}
		tokens = append(tokens, cell[prev:loc[0]], cell[loc[0]:loc[1]])
		prev = loc[1]
	}
	return append(tokens, cell[prev:])
}
