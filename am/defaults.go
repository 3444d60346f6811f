package am

import (
	"fmt"
	"runtime"

	"github.com/spf13/viper"

	"github.com/teranos/lexcell/cellparser"
)

// DefaultDatabasePath is used when database.path is not configured
const DefaultDatabasePath = "lexcell.db"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Parser defaults: the Maweti-Guarani bracket conventions
	def := cellparser.DefaultConfig()
	fields := make([]map[string]interface{}, 0, len(def.Fields))
	for _, f := range def.Fields {
		fields = append(fields, map[string]interface{}{
			"name":          f.Name,
			"open":          f.Open,
			"close":         f.Close,
			"transcription": f.Transcription,
		})
	}
	v.SetDefault("parser.fields", fields)
	v.SetDefault("parser.escapes", []string{})
	v.SetDefault("parser.separator", def.Separator)
	v.SetDefault("parser.variant_markers", def.VariantMarkers)
	v.SetDefault("parser.default_source", def.DefaultSource)
	v.SetDefault("parser.add_default_source", true)
	v.SetDefault("parser.comment_field", def.CommentField)
	v.SetDefault("parser.source_field", def.SourceField)

	// Database defaults
	v.SetDefault("database.path", DefaultDatabasePath)

	// Import defaults
	v.SetDefault("import.sheet", "")
	v.SetDefault("import.workers", 0)         // one per CPU
	v.SetDefault("import.header_rows", 1)     // language names only
	v.SetDefault("import.concept_columns", 1) // concept gloss only
	v.SetDefault("import.match_fields", def.TranscriptionFields())
	v.SetDefault("import.ignore_values", []string{"...", "?"})
	v.SetDefault("import.cell_comments", true)

	// Log defaults
	v.SetDefault("log.json", false)
}

// BindEnvVars explicitly binds settings that are commonly overridden per shell
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("database.path", EnvPrefix+"_DATABASE_PATH")
	v.BindEnv("import.workers", EnvPrefix+"_IMPORT_WORKERS")
	v.BindEnv("log.json", EnvPrefix+"_LOG_JSON")
}

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return DefaultDatabasePath
	}
	return c.Database.Path
}

// GetWorkers returns the number of parse workers, resolving 0 to the CPU count
func (c *Config) GetWorkers() int {
	if c.Import.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Import.Workers
}

// GetHeaderRows returns the number of header rows (default: 1)
func (c *Config) GetHeaderRows() int {
	if c.Import.HeaderRows <= 0 {
		return 1
	}
	return c.Import.HeaderRows
}

// GetConceptColumns returns the number of concept columns (default: 1)
func (c *Config) GetConceptColumns() int {
	if c.Import.ConceptColumns <= 0 {
		return 1
	}
	return c.Import.ConceptColumns
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Database: %s, Parser: {Fields: %d, Separator: %q}, Import: {Workers: %d}}",
		c.Database.Path, len(c.Parser.Fields), c.Parser.Separator, c.Import.Workers)
}
