// Package compositor draws posters, icons and captions onto a template.
package compositor

import (
	"context"
	"image"
	"image/color"
	"log"
	"net/http"

	"github.com/disintegration/imaging"

	"github.com/ivlev/actorreel/internal/config"
	"github.com/ivlev/actorreel/internal/geometry"
)

// maskSigma matches a 7x7 Gaussian kernel.
const maskSigma = 1.4

// ImageInstruction places an image into Rect. Image, when set, wins over
// Ref; Ref is a local path or an http(s) URL.
type ImageInstruction struct {
	Ref   string
	Image image.Image
	Rect  geometry.Rect
}

func (i ImageInstruction) name() string {
	if i.Ref != "" {
		return i.Ref
	}
	return "<memory>"
}

type TextInstruction struct {
	Content   string
	X, Y      int
	Scale     float64
	Color     config.RGB
	Font      string
	Thickness int
	Align     geometry.Align
}

// Text builds a caption from a computed anchor and a configured style.
func Text(content string, a geometry.Anchor, ts config.TextStyle, font string) TextInstruction {
	return TextInstruction{
		Content:   content,
		X:         a.X,
		Y:         a.Y,
		Scale:     a.Scale * ts.ScaleFactor,
		Color:     ts.Color,
		Font:      font,
		Thickness: ts.Thickness,
		Align:     a.Align,
	}
}

type Compositor struct {
	client *http.Client
	fonts  *FontCache
}

func New(client *http.Client, fonts *FontCache) *Compositor {
	if client == nil {
		client = http.DefaultClient
	}
	if fonts == nil {
		fonts = NewFontCache()
	}
	return &Compositor{client: client, fonts: fonts}
}

// Overlay draws images, then texts, onto bg in list order and returns bg.
// A failing instruction is logged and skipped.
func (c *Compositor) Overlay(ctx context.Context, bg *image.RGBA, images []ImageInstruction, texts []TextInstruction) *image.RGBA {
	for _, inst := range images {
		if err := ctx.Err(); err != nil {
			log.Printf("[!] Наложение прервано: %v", err)
			return bg
		}
		if inst.Rect.W <= 0 || inst.Rect.H <= 0 {
			log.Printf("[!] Пропуск %s: пустой прямоугольник %dx%d", inst.name(), inst.Rect.W, inst.Rect.H)
			continue
		}
		src, err := c.resolve(ctx, inst)
		if err != nil {
			log.Printf("[!] Пропуск %s: %v", inst.name(), err)
			continue
		}
		placeImage(bg, src, inst.Rect)
	}

	for _, t := range texts {
		if t.Content == "" {
			continue
		}
		if area, err := c.fonts.Bounds(t); err == nil && !area.In(bg.Bounds()) {
			log.Printf("[!] Текст %q выходит за край карточки и будет обрезан", t.Content)
		}
		if err := c.fonts.Draw(bg, t); err != nil {
			log.Printf("[!] Текст %q не нарисован: %v", t.Content, err)
		}
	}
	return bg
}

// placeImage resizes src to r, clips it to bg and blends it in. The
// visible part is taken from the top-left of the resized image.
func placeImage(bg *image.RGBA, src image.Image, r geometry.Rect) {
	b := bg.Bounds()
	x1, y1 := max(b.Min.X, r.X), max(b.Min.Y, r.Y)
	x2, y2 := min(b.Max.X, r.X+r.W), min(b.Max.Y, r.Y+r.H)
	if x2 <= x1 || y2 <= y1 {
		return
	}
	cw, ch := x2-x1, y2-y1

	resized := imaging.Resize(src, r.W, r.H, imaging.Linear)
	cropped := imaging.Crop(resized, image.Rect(0, 0, cw, ch))
	mask := softMask(cw, ch)

	blend(bg, image.Pt(x1, y1), cropped, mask)
}

// softMask blurs a uniform white mask. The blur renormalizes at the
// borders, so the result stays fully opaque.
func softMask(w, h int) *image.NRGBA {
	return imaging.Blur(imaging.New(w, h, color.White), maskSigma)
}

// blend computes bg = bg*(1-m) + img*m per channel, where m is the mask
// times the source alpha. Results are truncated to 8 bits.
func blend(bg *image.RGBA, at image.Point, img, mask *image.NRGBA) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		bgRow := bg.PixOffset(at.X, at.Y+y)
		srcRow := y * img.Stride
		maskRow := y * mask.Stride
		for x := 0; x < w; x++ {
			bi := bgRow + x*4
			si := srcRow + x*4
			m := float64(mask.Pix[maskRow+x*4+3]) / 255 * float64(img.Pix[si+3]) / 255
			if m == 0 {
				continue
			}
			for ch := 0; ch < 3; ch++ {
				bg.Pix[bi+ch] = uint8(float64(bg.Pix[bi+ch])*(1-m) + float64(img.Pix[si+ch])*m)
			}
			bg.Pix[bi+3] = uint8(float64(bg.Pix[bi+3])*(1-m) + 255*m)
		}
	}
}
