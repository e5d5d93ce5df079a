package compositor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/actorreel/internal/config"
	"github.com/ivlev/actorreel/internal/geometry"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func rgbAt(img *image.RGBA, x, y int) [3]uint8 {
	c := img.RGBAAt(x, y)
	return [3]uint8{c.R, c.G, c.B}
}

var (
	red   = color.RGBA{255, 0, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
	white = color.RGBA{255, 255, 255, 255}
)

func TestOverlayLaterImagesWin(t *testing.T) {
	bg := solid(40, 40, white)
	c := New(nil, nil)

	c.Overlay(context.Background(), bg, []ImageInstruction{
		{Image: solid(8, 8, red), Rect: geometry.Rect{X: 0, Y: 0, W: 20, H: 20}},
		{Image: solid(8, 8, blue), Rect: geometry.Rect{X: 10, Y: 10, W: 20, H: 20}},
	}, nil)

	tests := []struct {
		x, y int
		want [3]uint8
	}{
		{5, 5, [3]uint8{255, 0, 0}},
		{15, 15, [3]uint8{0, 0, 255}},
		{25, 25, [3]uint8{0, 0, 255}},
		{35, 35, [3]uint8{255, 255, 255}},
	}
	for _, tt := range tests {
		if got := rgbAt(bg, tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d): expected %v, got %v", tt.x, tt.y, tt.want, got)
		}
	}
}

func TestOverlayClipsAndKeepsTopLeftOfSource(t *testing.T) {
	// Left half red, right half blue.
	src := solid(20, 20, blue)
	for y := 0; y < 20; y++ {
		for x := 0; x < 10; x++ {
			src.Set(x, y, red)
		}
	}
	bg := solid(30, 30, white)

	New(nil, nil).Overlay(context.Background(), bg, []ImageInstruction{
		{Image: src, Rect: geometry.Rect{X: -10, Y: 20, W: 20, H: 20}},
	}, nil)

	// Visible 10x10 region comes from the source's top-left, which is red.
	if got := rgbAt(bg, 3, 25); got != [3]uint8{255, 0, 0} {
		t.Errorf("expected red from source top-left, got %v", got)
	}
	if got := rgbAt(bg, 15, 25); got != [3]uint8{255, 255, 255} {
		t.Errorf("pixel outside clipped rect changed: %v", got)
	}
	if got := rgbAt(bg, 3, 15); got != [3]uint8{255, 255, 255} {
		t.Errorf("pixel above rect changed: %v", got)
	}
}

func TestOverlaySkipsBadInstructions(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	bg := solid(20, 20, white)
	New(srv.Client(), nil).Overlay(context.Background(), bg, []ImageInstruction{
		{Ref: filepath.Join(t.TempDir(), "missing.png"), Rect: geometry.Rect{W: 10, H: 10}},
		{Ref: srv.URL + "/poster.jpg", Rect: geometry.Rect{W: 10, H: 10}},
		{Image: solid(4, 4, red), Rect: geometry.Rect{W: 0, H: 10}},
		{Image: solid(4, 4, red), Rect: geometry.Rect{X: 50, Y: 50, W: 10, H: 10}},
		{Image: solid(4, 4, blue), Rect: geometry.Rect{X: 10, Y: 10, W: 10, H: 10}},
	}, []TextInstruction{{Content: "", X: 1, Y: 1, Scale: 1, Thickness: 1}})

	if got := rgbAt(bg, 5, 5); got != [3]uint8{255, 255, 255} {
		t.Errorf("failed instructions must not touch the background, got %v", got)
	}
	if got := rgbAt(bg, 15, 15); got != [3]uint8{0, 0, 255} {
		t.Errorf("valid instruction after failures was not applied, got %v", got)
	}
}

func TestOverlayLoadsFileAndURL(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(6, 6, red)); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "icon.png")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	bg := solid(40, 20, white)
	New(srv.Client(), nil).Overlay(context.Background(), bg, []ImageInstruction{
		{Ref: path, Rect: geometry.Rect{X: 0, Y: 0, W: 20, H: 20}},
		{Ref: srv.URL + "/icon.png", Rect: geometry.Rect{X: 20, Y: 0, W: 20, H: 20}},
	}, nil)

	for _, x := range []int{10, 30} {
		if got := rgbAt(bg, x, 10); got != [3]uint8{255, 0, 0} {
			t.Errorf("pixel (%d,10): expected red, got %v", x, got)
		}
	}
}

func TestOverlayRespectsSourceAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	bg := solid(10, 10, white)

	New(nil, nil).Overlay(context.Background(), bg, []ImageInstruction{
		{Image: src, Rect: geometry.Rect{W: 10, H: 10}},
	}, nil)

	if got := rgbAt(bg, 5, 5); got != [3]uint8{255, 255, 255} {
		t.Errorf("transparent source changed background: %v", got)
	}
}

func TestSoftMaskIsOpaque(t *testing.T) {
	mask := softMask(9, 5)
	for i := 3; i < len(mask.Pix); i += 4 {
		if mask.Pix[i] != 255 {
			t.Fatalf("mask alpha %d at byte %d, expected 255", mask.Pix[i], i)
		}
	}
}

func TestRedrawingTextOnlyTouchesGlyphArea(t *testing.T) {
	fonts := NewFontCache()
	defer fonts.Close()
	c := New(nil, fonts)

	text := TextInstruction{
		Content:   "85%",
		X:         100,
		Y:         120,
		Scale:     2,
		Color:     config.RGB{R: 0, G: 0, B: 0},
		Thickness: 6,
		Align:     geometry.AlignCenter,
	}

	bg := solid(200, 200, white)
	c.Overlay(context.Background(), bg, nil, []TextInstruction{text})
	once := image.NewRGBA(bg.Rect)
	copy(once.Pix, bg.Pix)

	c.Overlay(context.Background(), bg, nil, []TextInstruction{text})

	area, err := fonts.Bounds(text)
	if err != nil {
		t.Fatal(err)
	}
	changed := 0
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			if rgbAt(bg, x, y) != rgbAt(once, x, y) {
				if !image.Pt(x, y).In(area) {
					t.Fatalf("pixel (%d,%d) outside glyph area %v changed", x, y, area)
				}
				changed++
			}
		}
	}

	inked := 0
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if rgbAt(once, x, y) == [3]uint8{0, 0, 0} {
				inked++
			}
		}
	}
	if inked == 0 {
		t.Error("first draw left no solid glyph pixels")
	}
	t.Logf("second draw changed %d anti-aliased pixels", changed)
}

func TestTextAlignment(t *testing.T) {
	fonts := NewFontCache()
	defer fonts.Close()

	base := TextInstruction{Content: "$1.2B", X: 500, Y: 100, Scale: 1.5, Thickness: 3}

	left := base
	right := base
	right.Align = geometry.AlignRight
	center := base
	center.Align = geometry.AlignCenter

	lb, _ := fonts.Bounds(left)
	rb, _ := fonts.Bounds(right)
	cb, _ := fonts.Bounds(center)

	if lb.Min.X < 500-strokeRadius(3)-2 {
		t.Errorf("left aligned text starts before anchor: %v", lb)
	}
	if rb.Max.X > 500+strokeRadius(3)+2 {
		t.Errorf("right aligned text ends after anchor: %v", rb)
	}
	if cb.Min.X >= 500 || cb.Max.X <= 500 {
		t.Errorf("centered text does not straddle anchor: %v", cb)
	}
}

func TestFontCacheFallbackAndClose(t *testing.T) {
	fonts := NewFontCache()
	bg := solid(120, 60, white)

	text := TextInstruction{Content: "Hi", X: 10, Y: 40, Scale: 1, Thickness: 1, Font: "fonts/does-not-exist.ttf"}
	if err := fonts.Draw(bg, text); err != nil {
		t.Fatalf("fallback font should draw: %v", err)
	}

	dark := false
	for i := 0; i < len(bg.Pix); i += 4 {
		if bg.Pix[i] < 128 {
			dark = true
			break
		}
	}
	if !dark {
		t.Error("no glyph pixels drawn with fallback font")
	}

	if err := fonts.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := fonts.Draw(bg, text); err == nil {
		t.Error("expected error after Close")
	}
}

func TestTextBuilderAppliesStyle(t *testing.T) {
	a := geometry.Anchor{X: 3, Y: 4, Scale: 2, Align: geometry.AlignRight}
	ts := config.TextStyle{ScaleFactor: 1.5, Color: config.Green, Thickness: 6}

	got := Text("$2.5M", a, ts, "f.ttf")
	want := TextInstruction{Content: "$2.5M", X: 3, Y: 4, Scale: 3, Color: config.Green, Font: "f.ttf", Thickness: 6, Align: geometry.AlignRight}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestOverlayWarnsAboutClippedText(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	fonts := NewFontCache()
	defer fonts.Close()
	c := New(nil, fonts)

	inside := TextInstruction{Content: "1999", X: 100, Y: 100, Scale: 1, Align: geometry.AlignCenter}
	c.Overlay(context.Background(), solid(200, 200, color.White), nil, []TextInstruction{inside})
	if buf.Len() != 0 {
		t.Errorf("unexpected warning for text inside the card: %q", buf.String())
	}

	edge := TextInstruction{Content: "$1,234,567,890", X: 190, Y: 100, Scale: 2, Align: geometry.AlignLeft}
	c.Overlay(context.Background(), solid(200, 200, color.White), nil, []TextInstruction{edge})
	if !strings.Contains(buf.String(), "$1,234,567,890") {
		t.Errorf("expected clipping warning, got %q", buf.String())
	}
}
