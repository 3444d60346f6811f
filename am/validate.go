package am

import (
	"github.com/teranos/lexcell/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// The parser section has its own rules
	pc := c.ParserConfig()
	if err := pc.Validate(); err != nil {
		return errors.Wrap(err, "parser")
	}

	if c.Parser.AddDefaultSource && c.Parser.DefaultSource == "" {
		return errors.NewInvalidConfigError("parser.default_source cannot be empty when parser.add_default_source is set")
	}

	// Workers: 0 = one per CPU, negative = invalid
	if c.Import.Workers < 0 {
		return errors.NewInvalidConfigError("import.workers must be >= 0, got %d", c.Import.Workers)
	}

	// Header rows and concept columns: 0 = default, negative = invalid
	if c.Import.HeaderRows < 0 {
		return errors.NewInvalidConfigError("import.header_rows must be >= 0, got %d", c.Import.HeaderRows)
	}
	if c.Import.ConceptColumns < 0 {
		return errors.NewInvalidConfigError("import.concept_columns must be >= 0, got %d", c.Import.ConceptColumns)
	}

	// Match fields must name configured fields
	known := make(map[string]bool, len(c.Parser.Fields))
	for _, f := range c.Parser.Fields {
		known[f.Name] = true
	}
	for _, name := range c.Import.MatchFields {
		if !known[name] {
			return errors.WithHint(
				errors.NewInvalidConfigError("import.match_fields names unknown field %q", name),
				"match_fields must be names from [[parser.fields]]")
		}
	}

	return nil
}
