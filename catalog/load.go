package catalog

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed vulkan.yaml
var vulkanYAML []byte

// Format is a catalog file encoding.
type Format int

const (
	YAML Format = iota
	TOML
)

func (f Format) String() string {
	switch f {
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	default:
		return "unknown"
	}
}

// FormatFromPath picks a Format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	default:
		return 0, errors.WithHint(
			errors.Newf("unrecognized catalog file extension %q", filepath.Ext(path)),
			"catalog files must end in .yaml, .yml or .toml")
	}
}

// Default returns the built-in Vulkan catalog.
func Default() (Catalog, error) {
	c, err := Decode(vulkanYAML, YAML)
	if err != nil {
		return Catalog{}, errors.Wrap(err, "embedded catalog")
	}
	return c, nil
}

// Load reads and decodes a catalog file.
func Load(path string) (Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Catalog{}, err
	}
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return Catalog{}, errors.Wrapf(err, "reading catalog %s", path)
	}
	c, err := Decode(data, format)
	if err != nil {
		return Catalog{}, errors.Wrapf(err, "%s", path)
	}
	return c, nil
}

// Decode parses catalog data in the given format. Unknown keys are rejected so
// that a misspelled field does not silently drop entry points.
func Decode(data []byte, format Format) (Catalog, error) {
	var c Catalog
	switch format {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil {
			return Catalog{}, errors.Wrap(err, "decoding yaml catalog")
		}
	case TOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&c); err != nil {
			return Catalog{}, errors.Wrap(err, "decoding toml catalog")
		}
	default:
		return Catalog{}, errors.Newf("unsupported catalog format %s", format)
	}
	return c, nil
}
