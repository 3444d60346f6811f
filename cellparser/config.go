package cellparser

import (
	"regexp"
	"strings"

	"github.com/teranos/lexcell/errors"
)

// Well-known field names used by DefaultConfig and by the import pipeline.
const (
	FieldPhonemic     = "phonemic"
	FieldPhonetic     = "phonetic"
	FieldOrthographic = "orthographic"
	FieldComment      = "comment"
	FieldSource       = "source"
)

// DefaultSeparator splits a cell on commas, semicolons and line breaks.
const DefaultSeparator = `[,;\n]`

// DefaultSourceLiteral is attached to forms that carry no citation of their own.
const DefaultSourceLiteral = "{1}"

// Pair is an opening/closing delimiter pair. Close may equal Open (as in /…/)
// and is empty for escape markers.
type Pair struct {
	Open  string `json:"open" mapstructure:"open" toml:"open" yaml:"open"`
	Close string `json:"close" mapstructure:"close" toml:"close" yaml:"close"`
}

// FieldSpec maps a delimiter pair to the field it fills.
type FieldSpec struct {
	Name          string `json:"name" mapstructure:"name" toml:"name" yaml:"name"`
	Open          string `json:"open" mapstructure:"open" toml:"open" yaml:"open"`
	Close         string `json:"close" mapstructure:"close" toml:"close" yaml:"close"`
	Transcription bool   `json:"transcription" mapstructure:"transcription" toml:"transcription" yaml:"transcription"`
}

// Config describes one dataset's cell conventions. Fields are tried in order,
// so a longer opener that shares a prefix with a shorter one must come first.
type Config struct {
	Fields         []FieldSpec `json:"fields" mapstructure:"fields" toml:"fields" yaml:"fields"`
	Escapes        []string    `json:"escapes,omitempty" mapstructure:"escapes" toml:"escapes" yaml:"escapes"`
	Separator      string      `json:"separator" mapstructure:"separator" toml:"separator" yaml:"separator"`
	VariantMarkers []string    `json:"variant_markers" mapstructure:"variant_markers" toml:"variant_markers" yaml:"variant_markers"`
	// DefaultSource is used when no citation of a form resolves. Empty disables it.
	DefaultSource string `json:"default_source" mapstructure:"default_source" toml:"default_source" yaml:"default_source"`
	CommentField  string `json:"comment_field,omitempty" mapstructure:"comment_field" toml:"comment_field" yaml:"comment_field"`
	SourceField   string `json:"source_field,omitempty" mapstructure:"source_field" toml:"source_field" yaml:"source_field"`
}

// DefaultConfig returns the bracket conventions of the Maweti-Guarani
// comparative wordlist: /phonemic/ [phonetic] <orthographic> (comment) {source}.
func DefaultConfig() Config {
	return Config{
		Fields: []FieldSpec{
			{Name: FieldPhonemic, Open: "/", Close: "/", Transcription: true},
			{Name: FieldPhonetic, Open: "[", Close: "]", Transcription: true},
			{Name: FieldOrthographic, Open: "<", Close: ">", Transcription: true},
			{Name: FieldComment, Open: "(", Close: ")"},
			{Name: FieldSource, Open: "{", Close: "}"},
		},
		Separator:      DefaultSeparator,
		VariantMarkers: []string{"~", "%"},
		DefaultSource:  DefaultSourceLiteral,
		CommentField:   FieldComment,
		SourceField:    FieldSource,
	}
}

// clone returns a copy of c that shares no slices with it.
func (c Config) clone() Config {
	c.Fields = append([]FieldSpec(nil), c.Fields...)
	c.Escapes = append([]string(nil), c.Escapes...)
	c.VariantMarkers = append([]string(nil), c.VariantMarkers...)
	return c
}

// Pairs returns the delimiter pairs in matching order: escapes first, then the
// field delimiters in configuration order.
func (c Config) Pairs() []Pair {
	pairs := make([]Pair, 0, len(c.Escapes)+len(c.Fields))
	for _, e := range c.Escapes {
		pairs = append(pairs, Pair{Open: e})
	}
	for _, f := range c.Fields {
		pairs = append(pairs, Pair{Open: f.Open, Close: f.Close})
	}
	return pairs
}

// Validate checks that the configuration can drive a parser.
func (c Config) Validate() error {
	if len(c.Fields) == 0 {
		return errors.Wrap(errors.ErrInvalidConfig, "no fields configured")
	}
	seen := make(map[string]string)
	names := make(map[string]bool)
	for _, e := range c.Escapes {
		if e == "" {
			return errors.Wrap(errors.ErrInvalidConfig, "escape marker cannot be empty")
		}
		if prev, ok := seen[e]; ok {
			return errors.Wrapf(errors.ErrInvalidConfig, "opening marker %q used by both %s and an escape", e, prev)
		}
		seen[e] = "escape"
	}
	for _, f := range c.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return errors.Wrapf(errors.ErrInvalidConfig, "field with opener %q has no name", f.Open)
		}
		if f.Open == "" || f.Close == "" {
			return errors.Wrapf(errors.ErrInvalidConfig, "field %s needs both an opening and a closing marker", f.Name)
		}
		if prev, ok := seen[f.Open]; ok {
			return errors.Wrapf(errors.ErrInvalidConfig, "opening marker %q used by both %s and %s", f.Open, prev, f.Name)
		}
		if names[f.Name] {
			return errors.Wrapf(errors.ErrInvalidConfig, "field %s configured twice", f.Name)
		}
		seen[f.Open] = f.Name
		names[f.Name] = true
	}
	if c.Separator == "" {
		return errors.Wrap(errors.ErrInvalidConfig, "separator pattern cannot be empty")
	}
	if _, err := regexp.Compile(c.Separator); err != nil {
		return errors.WithHint(
			errors.Wrapf(errors.ErrInvalidConfig, "separator pattern %q: %v", c.Separator, err),
			"use a character class such as [,;]")
	}
	for _, m := range c.VariantMarkers {
		if m == "" {
			return errors.Wrap(errors.ErrInvalidConfig, "variant marker cannot be empty")
		}
	}
	return nil
}

// commentField and sourceField fall back to the conventional names.
func (c Config) commentField() string {
	if c.CommentField == "" {
		return FieldComment
	}
	return c.CommentField
}

func (c Config) sourceField() string {
	if c.SourceField == "" {
		return FieldSource
	}
	return c.SourceField
}

// TranscriptionFields lists the names of fields eligible for variant splitting.
func (c Config) TranscriptionFields() []string {
	var out []string
	for _, f := range c.Fields {
		if f.Transcription {
			out = append(out, f.Name)
		}
	}
	return out
}
