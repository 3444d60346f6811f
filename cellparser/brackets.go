package cellparser

import (
	"strings"
	"unicode/utf8"
)

type markKind int

const (
	markNone   markKind = iota
	markOpen            // opening marker of a real pair
	markEscape          // opening marker whose closer is empty
	markStray           // closing marker that nobody is waiting for
)

// classify looks for a configured marker at the start of rest. Pairs are tried
// in order, and for each pair the opener is tested before the closer, so that
// symmetric pairs such as /…/ open when nothing is pending.
func classify(rest string, pairs []Pair) (markKind, Pair) {
	for _, p := range pairs {
		if strings.HasPrefix(rest, p.Open) {
			if p.Close == "" {
				return markEscape, p
			}
			return markOpen, p
		}
		if p.Close != "" && strings.HasPrefix(rest, p.Close) {
			return markStray, p
		}
	}
	return markNone, Pair{}
}

// IsBalanced reports whether every delimiter in text is closed in the right
// order. An unexpected closing marker fails immediately.
func IsBalanced(text string, pairs []Pair) bool {
	var expecting []string
	for i := 0; i < len(text); {
		rest := text[i:]
		if n := len(expecting); n > 0 && strings.HasPrefix(rest, expecting[n-1]) {
			i += len(expecting[n-1])
			expecting = expecting[:n-1]
			continue
		}
		kind, p := classify(rest, pairs)
		switch kind {
		case markOpen:
			expecting = append(expecting, p.Close)
			i += len(p.Open)
		case markEscape:
			i += len(p.Open)
		case markStray:
			return false
		default:
			_, w := utf8.DecodeRuneInString(rest)
			i += w
		}
	}
	return len(expecting) == 0
}

// SplitSpans cuts text into alternating unbracketed and bracketed spans. The
// first, third, … entries are gaps (possibly empty), the second, fourth, … are
// complete bracketed regions including their delimiters. If the text ends
// inside an unclosed bracket, everything from that opener on becomes the last
// span. Joining the result always gives back text.
func SplitSpans(text string, pairs []Pair) []string {
	return splitSpans(text, pairs, nil)
}

// splitSpans is SplitSpans with a callback for closing markers that arrive
// when they are not expected. Those markers stay inside the current span.
func splitSpans(text string, pairs []Pair, stray func(offset int, marker string)) []string {
	var (
		spans     []string
		expecting []string
		start     int
	)
	for i := 0; i < len(text); {
		rest := text[i:]
		if n := len(expecting); n > 0 && strings.HasPrefix(rest, expecting[n-1]) {
			i += len(expecting[n-1])
			expecting = expecting[:n-1]
			if len(expecting) == 0 {
				spans = append(spans, text[start:i])
				start = i
			}
			continue
		}
		kind, p := classify(rest, pairs)
		switch kind {
		case markOpen:
			if len(expecting) == 0 {
				spans = append(spans, text[start:i])
				start = i
			}
			expecting = append(expecting, p.Close)
			i += len(p.Open)
		case markEscape:
			i += len(p.Open)
		case markStray:
			if stray != nil {
				stray(i, p.Close)
			}
			i += len(p.Close)
		default:
			_, w := utf8.DecodeRuneInString(rest)
			i += w
		}
	}
	return append(spans, text[start:])
}
