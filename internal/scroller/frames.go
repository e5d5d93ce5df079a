package scroller

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/actorreel/internal/system"
)

// ScaleToWidth resizes src to width w keeping its aspect ratio.
func ScaleToWidth(src image.Image, w int) *image.RGBA {
	b := src.Bounds()
	h := int(float64(b.Dy()) * float64(w) / float64(b.Dx()))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// Extend appends the top frameHeight rows of src to its bottom so the
// last window flows back into the first.
func Extend(src *image.RGBA, frameHeight int) *image.RGBA {
	b := src.Bounds()
	lead := min(frameHeight, b.Dy())
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()+lead))
	draw.Draw(out, image.Rect(0, 0, b.Dx(), b.Dy()), src, b.Min, draw.Src)
	draw.Draw(out, image.Rect(0, b.Dy(), b.Dx(), b.Dy()+lead), src, b.Min, draw.Src)
	return out
}

// Window copies rows [int(pos), int(pos)+dst height) of ext into dst.
// Rows past the end of ext are black.
func Window(ext *image.RGBA, pos float64, dst *image.RGBA) {
	top := int(pos)
	w := min(ext.Rect.Dx(), dst.Rect.Dx()) * 4
	for y := 0; y < dst.Rect.Dy(); y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+dst.Rect.Dx()*4]
		sy := top + y
		if sy < 0 || sy >= ext.Rect.Dy() {
			clear(row)
			continue
		}
		src := ext.Pix[sy*ext.Stride : sy*ext.Stride+w]
		copy(row, src)
		clear(row[w:])
	}
}

// FrameSink consumes frames in order.
type FrameSink interface {
	WriteFrame(frame *image.RGBA) error
}

// Render cuts one frame per position and hands them to sink in order.
// Frames are cut in parallel batches; buffers come from the shared image
// pool and go back once written.
func Render(ctx context.Context, ext *image.RGBA, positions []float64, frameHeight, workers int, sink FrameSink) error {
	if workers < 1 {
		workers = 1
	}
	rect := image.Rect(0, 0, ext.Rect.Dx(), frameHeight)
	batch := workers * 4

	for start := 0; start < len(positions); start += batch {
		end := min(start+batch, len(positions))
		frames := make([]*image.RGBA, end-start)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i := start; i < end; i++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				f := system.GetImage(rect)
				Window(ext, positions[i], f)
				frames[i-start] = f
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			release(frames)
			return err
		}

		for i, f := range frames {
			if err := sink.WriteFrame(f); err != nil {
				release(frames)
				return fmt.Errorf("frame %d: %w", start+i, err)
			}
		}
		release(frames)
	}
	return nil
}

func release(frames []*image.RGBA) {
	for _, f := range frames {
		if f != nil {
			system.PutImage(f)
		}
	}
}
