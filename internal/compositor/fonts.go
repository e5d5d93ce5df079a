package compositor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/actorreel/internal/geometry"
)

// PixelsPerScale converts a caption scale into a font size in pixels.
const PixelsPerScale = 30.0

var errCacheClosed = errors.New("font cache closed")

type faceKey struct {
	path string
	size float64
}

// lockedFace serializes access: opentype faces keep scratch buffers.
type lockedFace struct {
	mu   sync.Mutex
	face font.Face
}

// FontCache parses each font file once and keeps one face per size for
// the life of a render session. A missing or broken font file falls back
// to Go Regular. Close releases every face.
type FontCache struct {
	mu     sync.Mutex
	fonts  map[string]*opentype.Font
	faces  map[faceKey]*lockedFace
	closed bool
}

func NewFontCache() *FontCache {
	return &FontCache{
		fonts: make(map[string]*opentype.Font),
		faces: make(map[faceKey]*lockedFace),
	}
}

func (c *FontCache) face(path string, size float64) (*lockedFace, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errCacheClosed
	}
	key := faceKey{path, size}
	if lf, ok := c.faces[key]; ok {
		return lf, nil
	}

	f, ok := c.fonts[path]
	if !ok {
		var err error
		f, err = loadFont(path)
		if err != nil {
			return nil, err
		}
		c.fonts[path] = f
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("face %s@%.1f: %w", path, size, err)
	}
	lf := &lockedFace{face: face}
	c.faces[key] = lf
	return lf, nil
}

func loadFont(path string) (*opentype.Font, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			f, perr := opentype.Parse(data)
			if perr == nil {
				return f, nil
			}
			err = perr
		}
		log.Printf("[!] Шрифт %s недоступен (%v), используется Go Regular", path, err)
	}
	return opentype.Parse(goregular.TTF)
}

func (c *FontCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for k, lf := range c.faces {
		lf.mu.Lock()
		if err := lf.face.Close(); err != nil {
			errs = append(errs, err)
		}
		lf.mu.Unlock()
		delete(c.faces, k)
	}
	c.fonts = make(map[string]*opentype.Font)
	c.closed = true
	return errors.Join(errs...)
}

// Bounds returns the pixels a caption may touch, stroke included.
func (c *FontCache) Bounds(t TextInstruction) (image.Rectangle, error) {
	lf, err := c.face(t.Font, t.Scale*PixelsPerScale)
	if err != nil {
		return image.Rectangle{}, err
	}
	lf.mu.Lock()
	defer lf.mu.Unlock()

	dot := dotFor(lf.face, t)
	return glyphRect(lf.face, t.Content, dot).Inset(-strokeRadius(t.Thickness)), nil
}

// Draw paints an anti-aliased caption over dst.
func (c *FontCache) Draw(dst draw.Image, t TextInstruction) error {
	if t.Scale <= 0 {
		return fmt.Errorf("scale %.2f", t.Scale)
	}
	lf, err := c.face(t.Font, t.Scale*PixelsPerScale)
	if err != nil {
		return err
	}
	lf.mu.Lock()
	dot := dotFor(lf.face, t)
	glyphs := image.NewAlpha(glyphRect(lf.face, t.Content, dot))
	d := font.Drawer{
		Dst:  glyphs,
		Src:  image.Opaque,
		Face: lf.face,
		Dot:  fixed.P(dot.X, dot.Y),
	}
	d.DrawString(t.Content)
	lf.mu.Unlock()

	mask := dilate(glyphs, strokeRadius(t.Thickness))
	src := image.NewUniform(color.RGBA{R: t.Color.R, G: t.Color.G, B: t.Color.B, A: 255})
	draw.DrawMask(dst, mask.Rect, src, image.Point{}, mask, mask.Rect.Min, draw.Over)
	return nil
}

// dotFor returns the baseline origin for the caption's alignment.
func dotFor(face font.Face, t TextInstruction) image.Point {
	adv := font.MeasureString(face, t.Content).Round()
	switch t.Align {
	case geometry.AlignCenter:
		return image.Pt(t.X-adv/2, t.Y)
	case geometry.AlignRight:
		return image.Pt(t.X-adv, t.Y)
	}
	return image.Pt(t.X, t.Y)
}

func glyphRect(face font.Face, s string, dot image.Point) image.Rectangle {
	b, _ := font.BoundString(face, s)
	return image.Rect(b.Min.X.Floor(), b.Min.Y.Floor(), b.Max.X.Ceil(), b.Max.Y.Ceil()).Add(dot)
}

func strokeRadius(thickness int) int {
	return thickness / 3
}

// dilate grows the glyph coverage by a disc of radius r.
func dilate(src *image.Alpha, r int) *image.Alpha {
	if r <= 0 {
		return src
	}
	b := src.Rect
	dst := image.NewAlpha(b.Inset(-r))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			for y := b.Min.Y; y < b.Max.Y; y++ {
				si := src.PixOffset(b.Min.X, y)
				di := dst.PixOffset(b.Min.X+dx, y+dy)
				for x := 0; x < b.Dx(); x++ {
					if a := src.Pix[si+x]; a > dst.Pix[di+x] {
						dst.Pix[di+x] = a
					}
				}
			}
		}
	}
	return dst
}
