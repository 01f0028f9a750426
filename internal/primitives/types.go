package primitives

import (
	"encoding/hex"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Def is the YAML definition of the placeholder model (e.g. assets/primitives/box.yaml).
// It is drawn for each slot when the glTF asset is missing or fails to load.
type Def struct {
	Type  string     `yaml:"type"`
	Size  [3]float32 `yaml:"size,omitempty"`
	Color string     `yaml:"color,omitempty"`
	Wires bool       `yaml:"wires,omitempty"`
}

// Default is a unit box, centered on its origin, in a translucent orange so the photo stays visible.
func Default() Def {
	return Def{
		Type:  "cube",
		Size:  [3]float32{1, 1, 1},
		Color: "#ff8c1ab4",
		Wires: true,
	}
}

// LoadDef reads a definition from path. Missing fields keep their Default values; a missing file returns Default.
func LoadDef(path string) (Def, error) {
	def := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return def, nil
	}
	if err != nil {
		return def, errors.Wrap(err, "primitives: read")
	}
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Default(), errors.Wrapf(err, "primitives: parse %s", path)
	}
	if def.Type != "cube" {
		return Default(), errors.Errorf("primitives: unsupported type %q", def.Type)
	}
	for i, v := range def.Size {
		if v <= 0 {
			def.Size[i] = 1
		}
	}
	return def, nil
}

// RGBA parses Color as #RRGGBB or #RRGGBBAA. Invalid colors fall back to the default color.
func (d Def) RGBA() [4]uint8 {
	if c, ok := parseHex(d.Color); ok {
		return c
	}
	c, _ := parseHex(Default().Color)
	return c
}

func parseHex(s string) ([4]uint8, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return [4]uint8{}, false
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return [4]uint8{}, false
	}
	out := [4]uint8{b[0], b[1], b[2], 255}
	if len(b) == 4 {
		out[3] = b[3]
	}
	return out, true
}
