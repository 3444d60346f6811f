package cellparser

import (
	"strings"

	"github.com/teranos/lexcell/logger"
)

// splitVariants breaks transcription values such as "lexedata~lexidata" into
// the primary value and marker-tagged variants ("~lexidata"). Fields without
// the transcription flag are left alone.
func (p *Parser) splitVariants(f *Form, desc string) []*ParseError {
	if len(p.markers) == 0 {
		return nil
	}
	var diags []*ParseError
	for _, spec := range p.cfg.Fields {
		if !spec.Transcription {
			continue
		}
		value, ok := f.Fields[spec.Name]
		if !ok {
			continue
		}
		segments := splitOnMarkers(value, p.markers)
		if len(segments) == 1 {
			continue
		}

		primary := strings.TrimSpace(segments[0].text)
		for _, seg := range segments[1:] {
			text := strings.TrimSpace(seg.text)
			if text == "" {
				diags = append(diags, NewParseError(KindUnexpectedVariant, "empty variant after "+seg.marker+" in "+spec.Name+" dropped").
					WithCell(f.Cell, desc).
					WithContext(logger.FieldField, spec.Name).
					WithContext(logger.FieldMarker, seg.marker))
				continue
			}
			if primary == "" {
				primary = text
				continue
			}
			f.addVariant(seg.marker + text)
		}
		f.Fields[spec.Name] = primary
	}
	return diags
}

type segment struct {
	marker string // marker that introduced the segment, "" for the first
	text   string
}

// splitOnMarkers cuts s at every occurrence of any marker. At each position
// markers are tried in configuration order.
func splitOnMarkers(s string, markers []string) []segment {
	var (
		out    []segment
		marker string
		start  int
	)
	for i := 0; i < len(s); {
		m := markerAt(s[i:], markers)
		if m == "" {
			i++
			continue
		}
		out = append(out, segment{marker: marker, text: s[start:i]})
		marker = m
		i += len(m)
		start = i
	}
	return append(out, segment{marker: marker, text: s[start:]})
}

func markerAt(s string, markers []string) string {
	for _, m := range markers {
		if strings.HasPrefix(s, m) {
			return m
		}
	}
	return ""
}
