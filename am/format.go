package am

import (
	"encoding/json"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/teranos/lexcell/errors"
)

// Output formats accepted by Marshal
const (
	FormatTOML = "toml"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Marshal renders v (usually a *Config or *ConfigIntrospection) in the given format
func Marshal(v interface{}, format string) ([]byte, error) {
	switch format {
	case FormatTOML, "":
		return toml.Marshal(v)
	case FormatJSON:
		return json.MarshalIndent(v, "", "  ")
	case FormatYAML:
		return yaml.Marshal(v)
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedFormat, "config format %q (want toml, json or yaml)", format)
	}
}
