// Package source loads the card template every infographic panel is drawn on.
package source

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
)

var ErrNoPages = errors.New("pdf has no pages")

// Template keeps the decoded template and hands out independent copies.
type Template struct {
	Path string
	base *image.RGBA
}

// OpenTemplate decodes path. PDFs are rendered from their first page at dpi;
// everything else goes through the image decoders.
func OpenTemplate(path string, dpi int) (*Template, error) {
	var img image.Image
	var err error
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		img, err = renderFirstPage(path, dpi)
	} else {
		img, err = imaging.Open(path, imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	return &Template{Path: path, base: toRGBA(img)}, nil
}

func renderFirstPage(path string, dpi int) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, ErrNoPages
	}
	if dpi <= 0 {
		dpi = 150
	}
	return doc.ImageDPI(0, float64(dpi))
}

func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Fresh returns a copy of the template that the caller may draw on.
func (t *Template) Fresh() *image.RGBA {
	dst := image.NewRGBA(t.base.Rect)
	copy(dst.Pix, t.base.Pix)
	return dst
}

func (t *Template) Size() image.Point {
	return t.base.Rect.Size()
}
