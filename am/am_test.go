package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/lexcell/cellparser"
	"github.com/teranos/lexcell/errors"
)

func TestLoad_Defaults(t *testing.T) {
	// Isolated viper instance without user/system config
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, cellparser.DefaultSeparator, cfg.Parser.Separator)
	assert.Equal(t, []string{"~", "%"}, cfg.Parser.VariantMarkers)
	assert.True(t, cfg.Parser.AddDefaultSource)
	assert.Equal(t, 1, cfg.Import.HeaderRows)
	assert.Equal(t, []string{"...", "?"}, cfg.Import.IgnoreValues)
	require.NoError(t, cfg.Validate())

	// The defaults describe exactly the parser's built-in scheme
	assert.Equal(t, cellparser.DefaultConfig(), cfg.ParserConfig())
}

func TestParserConfig_DefaultSourceToggle(t *testing.T) {
	cfg, err := Defaults()
	require.NoError(t, err)

	cfg.Parser.AddDefaultSource = false
	assert.Empty(t, cfg.ParserConfig().DefaultSource)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero workers means one per CPU", func(c *Config) { c.Import.Workers = 0 }, false},
		{"negative workers", func(c *Config) { c.Import.Workers = -1 }, true},
		{"negative header rows", func(c *Config) { c.Import.HeaderRows = -1 }, true},
		{"negative concept columns", func(c *Config) { c.Import.ConceptColumns = -2 }, true},
		{"unknown match field", func(c *Config) { c.Import.MatchFields = []string{"gloss"} }, true},
		{"broken separator", func(c *Config) { c.Parser.Separator = "(" }, true},
		{"default source enabled but empty", func(c *Config) { c.Parser.DefaultSource = "" }, true},
		{"default source disabled and empty", func(c *Config) {
			c.Parser.DefaultSource = ""
			c.Parser.AddDefaultSource = false
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Defaults()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`
[parser]
separator = ";"
variant_markers = ["|"]

[[parser.fields]]
name = "ipa"
open = "["
close = "]"
transcription = true

[[parser.fields]]
name = "comment"
open = "("
close = ")"

[[parser.fields]]
name = "source"
open = "{"
close = "}"

[import]
workers = 3
match_fields = ["ipa"]
`), DefaultFilePermissions))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3, cfg.Import.Workers)
	assert.Equal(t, 3, cfg.GetWorkers())
	// untouched keys keep their defaults
	assert.Equal(t, 1, cfg.GetHeaderRows())
	assert.Equal(t, DefaultDatabasePath, cfg.GetDatabasePath())

	pc := cfg.ParserConfig()
	assert.Equal(t, []string{"ipa"}, pc.TranscriptionFields())
	assert.Equal(t, ";", pc.Separator)
	assert.Equal(t, []string{"|"}, pc.VariantMarkers)
}

// isolate points HOME and the working directory at fresh temp dirs
func isolate(t *testing.T) (home, project string) {
	t.Helper()
	Reset()
	t.Cleanup(Reset)

	home = t.TempDir()
	project = t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(project)
	return home, project
}

func TestLoad_Precedence(t *testing.T) {
	home, project := isolate(t)

	userDir := filepath.Join(home, UserConfigDir)
	require.NoError(t, os.MkdirAll(userDir, DefaultDirPermissions))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, ConfigFileName), []byte(`
[database]
path = "user.db"

[import]
workers = 2
header_rows = 2
`), DefaultFilePermissions))

	require.NoError(t, os.WriteFile(filepath.Join(project, ConfigFileName), []byte(`
[database]
path = "project.db"
`), DefaultFilePermissions))

	t.Setenv("LEXCELL_IMPORT_WORKERS", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "project.db", cfg.Database.Path, "project file wins over user file")
	assert.Equal(t, 2, cfg.Import.HeaderRows, "user file wins over defaults")
	assert.Equal(t, 7, cfg.Import.Workers, "env wins over files")
	assert.Equal(t, 1, cfg.Import.ConceptColumns, "sibling defaults survive a partial section")

	assert.Equal(t, SourceProject, ConfigSources["database.path"].Source)
	assert.Equal(t, SourceUser, ConfigSources["import.header_rows"].Source)
}

func TestGetConfigIntrospection(t *testing.T) {
	_, project := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(project, ConfigFileName), []byte(`
[log]
json = true
`), DefaultFilePermissions))
	t.Setenv("LEXCELL_DATABASE_PATH", "env.db")

	info, err := GetConfigIntrospection()
	require.NoError(t, err)
	require.NotEmpty(t, info.ConfigFiles)

	byKey := make(map[string]SettingInfo)
	for _, s := range info.Settings {
		byKey[s.Key] = s
	}
	assert.Equal(t, SourceProject, byKey["log.json"].Source)
	assert.Equal(t, SourceEnvironment, byKey["database.path"].Source)
	assert.Equal(t, "LEXCELL_DATABASE_PATH", byKey["database.path"].SourcePath)
	assert.Equal(t, SourceDefault, byKey["import.sheet"].Source)
}
