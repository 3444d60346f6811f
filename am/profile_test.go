package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/lexcell/errors"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cells.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), DefaultFilePermissions))
	return path
}

func TestLoadProfile_Apply(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	path := writeProfile(t, `
[parser]
separator = "[;\n]"
add_default_source = false

[import]
concept_columns = 2
ignore_values = ["-"]
`)
	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, path, p.Path())

	cfg, err := Defaults()
	require.NoError(t, err)
	p.Apply(cfg)

	assert.Equal(t, "[;\n]", cfg.Parser.Separator)
	assert.False(t, cfg.Parser.AddDefaultSource)
	assert.Equal(t, 2, cfg.Import.ConceptColumns)
	assert.Equal(t, []string{"-"}, cfg.Import.IgnoreValues)

	// keys absent from the profile are left alone
	assert.Len(t, cfg.Parser.Fields, 5)
	assert.Equal(t, []string{"~", "%"}, cfg.Parser.VariantMarkers)
	assert.Equal(t, 1, cfg.Import.HeaderRows)

	assert.Equal(t, SourceProfile, ConfigSources["import.concept_columns"].Source)
	_, tracked := ConfigSources["import.header_rows"]
	assert.False(t, tracked)
}

func TestLoadProfile_RejectsUnknownKeys(t *testing.T) {
	path := writeProfile(t, `
[parser]
seperator = ";"

[database]
path = "x.db"
`)
	_, err := LoadProfile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
	assert.Contains(t, err.Error(), "parser.seperator")
	assert.Contains(t, err.Error(), "database")
}

func TestLoadProfile_Malformed(t *testing.T) {
	_, err := LoadProfile(writeProfile(t, "[parser\n"))
	require.Error(t, err)

	_, err = LoadProfile(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
