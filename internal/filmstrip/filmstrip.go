// Package filmstrip stacks equally sized cards into one tall image.
package filmstrip

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

var (
	ErrNoStrips     = errors.New("no strips to stitch")
	ErrSizeMismatch = errors.New("strip size mismatch")
)

// Stitch places leading (if not nil) on top, then strips in order, each
// in its own band with no overlap.
func Stitch(strips []*image.RGBA, leading *image.RGBA) (*image.RGBA, error) {
	all := make([]*image.RGBA, 0, len(strips)+1)
	if leading != nil {
		all = append(all, leading)
	}
	all = append(all, strips...)
	if len(all) == 0 {
		return nil, ErrNoStrips
	}

	w, h := all[0].Bounds().Dx(), all[0].Bounds().Dy()
	for i, s := range all {
		if s == nil {
			return nil, fmt.Errorf("strip %d is nil", i)
		}
		if s.Bounds().Dx() != w || s.Bounds().Dy() != h {
			return nil, fmt.Errorf("%w: strip %d is %dx%d, expected %dx%d",
				ErrSizeMismatch, i, s.Bounds().Dx(), s.Bounds().Dy(), w, h)
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h*len(all)))
	for i, s := range all {
		band := image.Rect(0, i*h, w, (i+1)*h)
		draw.Draw(out, band, s, s.Bounds().Min, draw.Src)
	}
	return out, nil
}
