package cellparser

import (
	"fmt"
	"strings"

	"github.com/teranos/lexcell/logger"
)

// Outcome summarizes what happened to one cell.
type Outcome string

const (
	OutcomeEmpty   Outcome = "empty"   // nothing to import, not an error
	OutcomeOK      Outcome = "ok"      // forms produced cleanly
	OutcomeWarning Outcome = "warning" // forms produced, with recoverable diagnostics
	OutcomeFailed  Outcome = "failed"  // every form-description was rejected
	OutcomePartial Outcome = "partial" // some forms produced, some rejected
)

// CellResult is the tagged result of parsing one cell.
type CellResult struct {
	Coordinate string        `json:"cell" yaml:"cell"`
	Language   string        `json:"language" yaml:"language"`
	Raw        string        `json:"raw" yaml:"raw"`
	Forms      []*Form       `json:"forms,omitempty" yaml:"forms,omitempty"`
	Rejected   []*Form       `json:"rejected,omitempty" yaml:"rejected,omitempty"`
	Warnings   []*ParseError `json:"-" yaml:"-"`
	Errors     []*ParseError `json:"-" yaml:"-"`
}

// Outcome classifies the result.
func (r *CellResult) Outcome() Outcome {
	switch {
	case len(r.Errors) > 0 && len(r.Forms) > 0:
		return OutcomePartial
	case len(r.Errors) > 0:
		return OutcomeFailed
	case len(r.Forms) == 0:
		return OutcomeEmpty
	case len(r.Warnings) > 0:
		return OutcomeWarning
	default:
		return OutcomeOK
	}
}

// Err returns a *CellError holding every hard failure, or nil.
func (r *CellResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return &CellError{
		Coordinate: r.Coordinate,
		Language:   r.Language,
		Errors:     r.Errors,
	}
}

// ParseCell separates cell into form-descriptions and parses each one. A
// form-description that fails a hard check lands in Rejected with its
// diagnostic in Errors; its siblings are still parsed.
func (p *Parser) ParseCell(cell, language, coordinate string) *CellResult {
	res := &CellResult{
		Coordinate: coordinate,
		Language:   language,
		Raw:        cell,
	}
	for desc := range p.Separate(cell) {
		form, warnings := p.ParseForm(desc, language, coordinate)
		res.Warnings = append(res.Warnings, warnings...)
		if form == nil {
			continue
		}
		if errs := p.check(form, desc); len(errs) > 0 {
			for _, e := range errs {
				p.report(e, language)
			}
			res.Errors = append(res.Errors, errs...)
			res.Rejected = append(res.Rejected, form)
			continue
		}
		res.Forms = append(res.Forms, form)
	}
	p.log.Debugw("Parsed cell",
		logger.FieldCell, coordinate,
		logger.FieldLanguage, language,
		logger.FieldCount, len(res.Forms),
		"outcome", res.Outcome())
	return res
}

// check applies the checks that reject a form outright.
func (p *Parser) check(f *Form, desc string) []*ParseError {
	names := p.cfg.TranscriptionFields()
	transcriptions := f.Transcriptions(p.cfg)
	if len(transcriptions) == 0 {
		pe := NewParseError(KindNoTranscription, "form has no transcription").
			WithSeverity(SeverityError).
			WithCell(f.Cell, desc)
		for _, spec := range p.cfg.Fields {
			if spec.Transcription {
				pe.WithSuggestion(fmt.Sprintf("%s as %s…%s", spec.Name, spec.Open, spec.Close))
			}
		}
		return []*ParseError{pe}
	}

	var errs []*ParseError
	for _, name := range names {
		value, ok := transcriptions[name]
		if !ok {
			continue
		}
		loc := p.sep.FindStringIndex(value)
		if loc == nil {
			continue
		}
		offset := -1
		if i := strings.Index(desc, value); i >= 0 {
			offset = i + loc[0]
		}
		errs = append(errs, NewParseError(KindSeparatorInTranscription,
			fmt.Sprintf("%s %q contains separator %q", name, value, value[loc[0]:loc[1]])).
			WithSeverity(SeverityError).
			WithCell(f.Cell, desc).
			WithOffset(offset).
			WithContext(logger.FieldField, name).
			WithSuggestion("close the bracket before the separator or split the form"))
	}
	return errs
}
