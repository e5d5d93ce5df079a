package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadStyleOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.yaml")
	data := `
font_path: fonts/Other.ttf
qr_code: true
year:
  scale_factor: 1.5
  color: [10, 20, 30]
  thickness: 3
score:
  scale_factor: 1
  color: "#ff8000"
  thickness: 9
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	style, err := LoadStyle(path)
	if err != nil {
		t.Fatalf("LoadStyle failed: %v", err)
	}

	if style.FontPath != "fonts/Other.ttf" || !style.QRCode {
		t.Errorf("top-level fields not loaded: %+v", style)
	}
	if style.Year.Color != (RGB{10, 20, 30}) || style.Year.ScaleFactor != 1.5 || style.Year.Thickness != 3 {
		t.Errorf("year style: got %+v", style.Year)
	}
	if style.Score.Color != (RGB{255, 128, 0}) {
		t.Errorf("hex color: got %+v", style.Score.Color)
	}
	// Untouched sections keep defaults.
	if style.BoxOffice != DefaultStyle().BoxOffice {
		t.Errorf("box office should keep defaults, got %+v", style.BoxOffice)
	}
	if style.TemplatePath != "icons/film_strip.png" {
		t.Errorf("template path default lost: %q", style.TemplatePath)
	}
}

func TestLoadStyleRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"short color": "year:\n  color: [1, 2]\n",
		"range":       "year:\n  color: [1, 2, 300]\n",
		"hex":         "year:\n  color: \"#zzzzzz\"\n",
		"thickness":   "score:\n  thickness: 0\n",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "style.yaml")
			os.WriteFile(path, []byte(body), 0644)
			if _, err := LoadStyle(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestStyleRoundTripThroughFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.yaml")
	want := DefaultStyle()
	want.Awards.Color = RGB{1, 2, 3}

	if err := WriteStyle(want, path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadStyle(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("style changed after write/load:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestApplyPreset(t *testing.T) {
	cfg := Default()
	cfg.ApplyPreset("16:9")
	if cfg.Width != 1920 || cfg.Height != 1080 {
		t.Errorf("16:9: got %dx%d", cfg.Width, cfg.Height)
	}
	cfg.ApplyPreset("unknown")
	if cfg.Width != 1920 {
		t.Error("unknown preset must not change size")
	}
	if Default().TotalFrames() != 900 {
		t.Errorf("15s at 60fps should be 900 frames, got %d", Default().TotalFrames())
	}
}
