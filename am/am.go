package am

import (
	"github.com/teranos/lexcell/cellparser"
)

// Config represents the lexcell configuration
type Config struct {
	Parser   ParserConfig   `mapstructure:"parser" toml:"parser" json:"parser" yaml:"parser"`
	Database DatabaseConfig `mapstructure:"database" toml:"database" json:"database" yaml:"database"`
	Import   ImportConfig   `mapstructure:"import" toml:"import" json:"import" yaml:"import"`
	Log      LogConfig      `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
}

// ParserConfig describes the bracket conventions of a dataset.
// Fields are written as an array of tables:
//
//	[[parser.fields]]
//	name = "phonemic"
//	open = "/"
//	close = "/"
//	transcription = true
type ParserConfig struct {
	Fields           []cellparser.FieldSpec `mapstructure:"fields" toml:"fields" json:"fields" yaml:"fields"`
	Escapes          []string               `mapstructure:"escapes" toml:"escapes" json:"escapes" yaml:"escapes"`
	Separator        string                 `mapstructure:"separator" toml:"separator" json:"separator" yaml:"separator"`
	VariantMarkers   []string               `mapstructure:"variant_markers" toml:"variant_markers" json:"variant_markers" yaml:"variant_markers"`
	DefaultSource    string                 `mapstructure:"default_source" toml:"default_source" json:"default_source" yaml:"default_source"`
	AddDefaultSource bool                   `mapstructure:"add_default_source" toml:"add_default_source" json:"add_default_source" yaml:"add_default_source"`
	CommentField     string                 `mapstructure:"comment_field" toml:"comment_field" json:"comment_field" yaml:"comment_field"`
	SourceField      string                 `mapstructure:"source_field" toml:"source_field" json:"source_field" yaml:"source_field"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path" json:"path" yaml:"path"`
}

// ImportConfig configures how a workbook is walked
type ImportConfig struct {
	// Worksheet name, empty = first sheet
	Sheet string `mapstructure:"sheet" toml:"sheet" json:"sheet" yaml:"sheet"`
	// Parse workers, 0 = one per CPU
	Workers int `mapstructure:"workers" toml:"workers" json:"workers" yaml:"workers"`
	// Rows above the first concept row; row 1 holds language names
	HeaderRows int `mapstructure:"header_rows" toml:"header_rows" json:"header_rows" yaml:"header_rows"`
	// Leftmost columns describing the concept
	ConceptColumns int `mapstructure:"concept_columns" toml:"concept_columns" json:"concept_columns" yaml:"concept_columns"`
	// Fields that identify an existing form of the same language
	MatchFields []string `mapstructure:"match_fields" toml:"match_fields" json:"match_fields" yaml:"match_fields"`
	// Cell contents treated as empty
	IgnoreValues []string `mapstructure:"ignore_values" toml:"ignore_values" json:"ignore_values" yaml:"ignore_values"`
	// Append spreadsheet notes to form comments
	CellComments bool `mapstructure:"cell_comments" toml:"cell_comments" json:"cell_comments" yaml:"cell_comments"`
}

// LogConfig configures logging output
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
}

// ParserConfig converts the [parser] section into a cellparser.Config.
func (c *Config) ParserConfig() cellparser.Config {
	pc := cellparser.Config{
		Fields:         append([]cellparser.FieldSpec(nil), c.Parser.Fields...),
		Escapes:        append([]string(nil), c.Parser.Escapes...),
		Separator:      c.Parser.Separator,
		VariantMarkers: append([]string(nil), c.Parser.VariantMarkers...),
		CommentField:   c.Parser.CommentField,
		SourceField:    c.Parser.SourceField,
	}
	if c.Parser.AddDefaultSource {
		pc.DefaultSource = c.Parser.DefaultSource
	}
	return pc
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)

// Config file names
const (
	ConfigFileName   = "lexcell.toml"
	SystemConfigPath = "/etc/lexcell/lexcell.toml"
	UserConfigDir    = ".lexcell"
	EnvPrefix        = "LEXCELL"
)
