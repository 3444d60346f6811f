package am

import (
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/teranos/lexcell/errors"
)

// Profile is a dataset profile: the [parser] and [import] sections of one
// wordlist, kept next to the workbook and passed with --profile. Unlike the
// layered lexcell.toml it is decoded strictly, so a typo in a key is an error
// instead of a silently ignored setting.
type Profile struct {
	Parser ParserConfig `toml:"parser"`
	Import ImportConfig `toml:"import"`

	path string
	meta toml.MetaData
}

// LoadProfile decodes a dataset profile, rejecting unknown keys.
func LoadProfile(path string) (*Profile, error) {
	var p Profile
	meta, err := toml.DecodeFile(path, &p)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read profile %s", path)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.WithHint(
			errors.NewInvalidConfigError("profile %s has unknown keys: %s", path, strings.Join(keys, ", ")),
			"profiles accept only [parser] and [import] settings")
	}

	p.path = path
	p.meta = meta
	return &p, nil
}

// Path returns the file the profile was read from
func (p *Profile) Path() string {
	return p.path
}

// Apply overlays every key the profile defines onto c and records the profile
// as their source. Keys the profile leaves out keep their layered value.
func (p *Profile) Apply(c *Config) {
	set := func(key string, section string, name string, apply func()) {
		if p.meta.IsDefined(section, name) {
			apply()
			loadMu.Lock()
			ConfigSources[key] = SourceInfo{Source: SourceProfile, Path: p.path}
			loadMu.Unlock()
		}
	}

	set("parser.fields", "parser", "fields", func() { c.Parser.Fields = p.Parser.Fields })
	set("parser.escapes", "parser", "escapes", func() { c.Parser.Escapes = p.Parser.Escapes })
	set("parser.separator", "parser", "separator", func() { c.Parser.Separator = p.Parser.Separator })
	set("parser.variant_markers", "parser", "variant_markers", func() { c.Parser.VariantMarkers = p.Parser.VariantMarkers })
	set("parser.default_source", "parser", "default_source", func() { c.Parser.DefaultSource = p.Parser.DefaultSource })
	set("parser.add_default_source", "parser", "add_default_source", func() { c.Parser.AddDefaultSource = p.Parser.AddDefaultSource })
	set("parser.comment_field", "parser", "comment_field", func() { c.Parser.CommentField = p.Parser.CommentField })
	set("parser.source_field", "parser", "source_field", func() { c.Parser.SourceField = p.Parser.SourceField })

	set("import.sheet", "import", "sheet", func() { c.Import.Sheet = p.Import.Sheet })
	set("import.workers", "import", "workers", func() { c.Import.Workers = p.Import.Workers })
	set("import.header_rows", "import", "header_rows", func() { c.Import.HeaderRows = p.Import.HeaderRows })
	set("import.concept_columns", "import", "concept_columns", func() { c.Import.ConceptColumns = p.Import.ConceptColumns })
	set("import.match_fields", "import", "match_fields", func() { c.Import.MatchFields = p.Import.MatchFields })
	set("import.ignore_values", "import", "ignore_values", func() { c.Import.IgnoreValues = p.Import.IgnoreValues })
	set("import.cell_comments", "import", "cell_comments", func() { c.Import.CellComments = p.Import.CellComments })
}
