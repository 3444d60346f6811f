package cellparser

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/lexcell/errors"
	"github.com/teranos/lexcell/logger"
)

// Parser turns cells into forms under one Config. It holds no per-cell state
// and is safe for concurrent use by any number of goroutines.
type Parser struct {
	cfg     Config
	pairs   []Pair
	sep     *regexp.Regexp
	markers []string
	log     *zap.SugaredLogger
}

// NewParser validates cfg and compiles its separator. A nil logger discards
// diagnostics; they are still returned to the caller.
func NewParser(cfg Config, log *zap.SugaredLogger) (*Parser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sep, err := regexp.Compile(cfg.Separator)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "separator pattern %q: %v", cfg.Separator, err)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	cfg = cfg.clone()
	return &Parser{
		cfg:     cfg,
		pairs:   cfg.Pairs(),
		sep:     sep,
		markers: append([]string(nil), cfg.VariantMarkers...),
		log:     log,
	}, nil
}

// Config returns a copy of the configuration the parser was built with.
func (p *Parser) Config() Config {
	return p.cfg.clone()
}

// SplitSpans is the package-level SplitSpans with closing markers that arrive
// out of turn reported as mismatched_delimiter warnings.
func (p *Parser) SplitSpans(text, coordinate string) ([]string, []*ParseError) {
	var warnings []*ParseError
	spans := splitSpans(text, p.pairs, func(offset int, marker string) {
		warnings = append(warnings, NewParseError(KindMismatchedDelimiter,
			fmt.Sprintf("closing %q does not match any open delimiter", marker)).
			WithCell(coordinate, text).
			WithOffset(offset).
			WithContext(logger.FieldMarker, marker))
	})
	return spans, warnings
}

// fieldFor returns the first configured field whose opener starts span.
func (p *Parser) fieldFor(span string) (FieldSpec, bool) {
	for _, f := range p.cfg.Fields {
		if strings.HasPrefix(span, f.Open) {
			return f, true
		}
	}
	return FieldSpec{}, false
}

func (p *Parser) isMarker(s string) bool {
	for _, m := range p.markers {
		if s == m {
			return true
		}
	}
	return false
}

// ParseForm assembles one form-description into a Form. Empty or blank input
// gives a nil Form and no diagnostics. The returned diagnostics are all
// recoverable; the checks that reject a form live in ParseCell.
func (p *Parser) ParseForm(desc, language, coordinate string) (*Form, []*ParseError) {
	if strings.TrimSpace(desc) == "" {
		return nil, nil
	}

	form := newForm(language, desc, coordinate)
	spans, diags := p.SplitSpans(desc, coordinate)
	warn := func(kind ErrorKind, offset int, format string, args ...interface{}) *ParseError {
		pe := NewParseError(kind, fmt.Sprintf(format, args...)).
			WithCell(coordinate, desc).
			WithOffset(offset)
		diags = append(diags, pe)
		return pe
	}

	commentField := p.cfg.commentField()
	sourceField := p.cfg.sourceField()

	// index of the last span with content; unrecognized text there goes to the comment
	last := -1
	for i, s := range spans {
		if strings.TrimSpace(s) != "" {
			last = i
		}
	}

	var (
		pending    string
		hasPending bool
		recognized bool
		citations  []string
		offset     int
	)
	for i, span := range spans {
		at := offset + (len(span) - len(strings.TrimLeft(span, " \t\r\n")))
		offset += len(span)

		s := strings.TrimSpace(span)
		if s == "" {
			continue
		}

		spec, ok := p.fieldFor(s)
		if !ok {
			if p.isMarker(s) {
				if hasPending {
					warn(KindUnexpectedVariant, at, "variant marker %q follows %q with nothing in between", s, pending)
				}
				pending, hasPending = s, true
				continue
			}
			if recognized && i == last {
				warn(KindUnrecognizedToken, at, "trailing text %q moved to %s", s, commentField).
					WithContext(logger.FieldField, commentField)
				appendComment(form, commentField, s)
				continue
			}
			warn(KindUnrecognizedToken, at, "unrecognized text %q dropped", s).
				WithSuggestion("wrap it in one of the configured delimiters")
			continue
		}

		recognized = true
		value, closed := strip(s, spec)
		if !closed {
			warn(KindMismatchedDelimiter, at, "%s opened with %q is never closed", spec.Name, spec.Open).
				WithContext(logger.FieldField, spec.Name)
		}

		marker := pending
		consumed := hasPending
		pending, hasPending = "", false

		switch {
		case spec.Name == sourceField:
			if consumed {
				warn(KindUnexpectedVariant, at, "variant marker %q before a source citation ignored", marker)
			}
			citations = append(citations, s)

		case spec.Name == commentField:
			if consumed {
				warn(KindUnexpectedVariant, at, "variant marker %q before a comment ignored", marker)
			}
			appendComment(form, commentField, value)

		default:
			if _, seen := form.Fields[spec.Name]; !seen {
				if consumed {
					warn(KindUnexpectedVariant, at, "%s is marked as a variant with %q but there is no earlier %s", s, marker, spec.Name).
						WithContext(logger.FieldField, spec.Name)
				}
				form.Fields[spec.Name] = value
				continue
			}
			if !consumed {
				warn(KindUnexpectedVariant, at, "%s repeats %s without a variant marker", s, spec.Name).
					WithContext(logger.FieldField, spec.Name).
					WithSuggestion(fmt.Sprintf("prefix it with one of %s", strings.Join(p.markers, " ")))
			}
			form.addVariant(marker + s)
		}
	}
	if hasPending {
		warn(KindUnexpectedVariant, len(desc), "variant marker %q is not followed by anything", pending)
	}

	diags = append(diags, p.splitVariants(form, desc)...)

	for _, c := range citations {
		ref, sourceDiags := ResolveSource(c, language, "")
		for _, d := range sourceDiags {
			diags = append(diags, d.WithCell(coordinate, desc))
		}
		if ref.ID != "" {
			form.addSource(ref)
		}
	}
	// also when every citation lacked a usable key
	if len(form.Sources) == 0 && p.cfg.DefaultSource != "" {
		if ref, _ := ResolveSource(p.cfg.DefaultSource, language, ""); ref.ID != "" {
			form.addSource(ref)
		}
	}

	for _, d := range diags {
		p.report(d, language)
	}
	return form, diags
}

// strip removes the delimiters of spec from s. closed is false when s starts
// with the opener but does not end with the closer.
func strip(s string, spec FieldSpec) (value string, closed bool) {
	inner := s[len(spec.Open):]
	if strings.HasSuffix(inner, spec.Close) {
		return strings.TrimSpace(inner[:len(inner)-len(spec.Close)]), true
	}
	return strings.TrimSpace(inner), false
}

func appendComment(f *Form, field, value string) {
	if value == "" {
		return
	}
	if prev, ok := f.Fields[field]; ok && prev != "" {
		f.Fields[field] = prev + "\t" + value
		return
	}
	f.Fields[field] = value
}

// report logs a diagnostic once, at the level its severity implies.
func (p *Parser) report(pe *ParseError, language string) {
	fields := append(pe.logFields(), logger.FieldLanguage, language)
	if pe.IsWarning() {
		p.log.Warnw(pe.Message, fields...)
		return
	}
	p.log.Errorw(pe.Message, fields...)
}
