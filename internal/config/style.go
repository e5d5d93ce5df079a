package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// RGB is an 8-bit color. In YAML it is written either as [r, g, b] or as
// a "#rrggbb" string.
type RGB struct {
	R, G, B uint8
}

var (
	Black = RGB{0, 0, 0}
	White = RGB{255, 255, 255}
	Green = RGB{0, 255, 0}
)

func (c RGB) MarshalYAML() (interface{}, error) {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B), nil
}

func (c *RGB) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var parts []int
		if err := node.Decode(&parts); err != nil {
			return err
		}
		if len(parts) != 3 {
			return fmt.Errorf("line %d: color needs 3 components, got %d", node.Line, len(parts))
		}
		for _, p := range parts {
			if p < 0 || p > 255 {
				return fmt.Errorf("line %d: color component %d out of range", node.Line, p)
			}
		}
		*c = RGB{uint8(parts[0]), uint8(parts[1]), uint8(parts[2])}
		return nil
	case yaml.ScalarNode:
		parsed, err := ParseHexRGB(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*c = parsed
		return nil
	}
	return fmt.Errorf("line %d: unsupported color value", node.Line)
}

func ParseHexRGB(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("bad color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("bad color %q: %w", s, err)
	}
	return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

type TextStyle struct {
	ScaleFactor float64 `yaml:"scale_factor"`
	Color       RGB     `yaml:"color"`
	Thickness   int     `yaml:"thickness"`
}

// Style holds everything a card needs besides data: assets, fonts and
// the look of each caption. Values are copied into instructions, a Style
// is never mutated after loading.
type Style struct {
	FontPath        string    `yaml:"font_path"`
	IconDir         string    `yaml:"icon_dir"`
	TemplatePath    string    `yaml:"template_path"`
	DefaultHeadshot string    `yaml:"default_headshot"`
	QRCode          bool      `yaml:"qr_code"`
	Year            TextStyle `yaml:"year"`
	BoxOffice       TextStyle `yaml:"box_office"`
	Score           TextStyle `yaml:"score"`
	Birthdate       TextStyle `yaml:"birthdate"`
	Age             TextStyle `yaml:"age"`
	Awards          TextStyle `yaml:"awards"`
	ActorBoxOffice  TextStyle `yaml:"actor_box_office"`
}

func DefaultStyle() Style {
	return Style{
		FontPath:        "fonts/RozhaOne-Regular.ttf",
		IconDir:         "icons",
		TemplatePath:    "icons/film_strip.png",
		DefaultHeadshot: "icons/default_headshot.jpg",
		Year:            TextStyle{ScaleFactor: 1, Color: Black, Thickness: 6},
		BoxOffice:       TextStyle{ScaleFactor: 1, Color: Green, Thickness: 6},
		Score:           TextStyle{ScaleFactor: 1, Color: White, Thickness: 15},
		Birthdate:       TextStyle{ScaleFactor: 1, Color: Black, Thickness: 4},
		Age:             TextStyle{ScaleFactor: 1, Color: Black, Thickness: 6},
		Awards:          TextStyle{ScaleFactor: 1, Color: White, Thickness: 3},
		ActorBoxOffice:  TextStyle{ScaleFactor: 1, Color: Green, Thickness: 6},
	}
}

// LoadStyle reads a YAML style file on top of DefaultStyle. An empty path
// returns the defaults.
func LoadStyle(path string) (Style, error) {
	style := DefaultStyle()
	if path == "" {
		return style, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return style, err
	}
	if err := yaml.Unmarshal(data, &style); err != nil {
		return style, fmt.Errorf("style %s: %w", path, err)
	}
	if err := style.Validate(); err != nil {
		return style, fmt.Errorf("style %s: %w", path, err)
	}
	return style, nil
}

func (s Style) Validate() error {
	texts := map[string]TextStyle{
		"year":             s.Year,
		"box_office":       s.BoxOffice,
		"score":            s.Score,
		"birthdate":        s.Birthdate,
		"age":              s.Age,
		"awards":           s.Awards,
		"actor_box_office": s.ActorBoxOffice,
	}
	for name, ts := range texts {
		if ts.ScaleFactor <= 0 {
			return fmt.Errorf("%s: scale_factor must be positive", name)
		}
		if ts.Thickness <= 0 {
			return fmt.Errorf("%s: thickness must be positive", name)
		}
	}
	return nil
}

func WriteStyle(s Style, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
