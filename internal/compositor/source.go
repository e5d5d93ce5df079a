package compositor

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/ivlev/actorreel/internal/fetch"
)

func (c *Compositor) resolve(ctx context.Context, inst ImageInstruction) (image.Image, error) {
	if inst.Image != nil {
		return inst.Image, nil
	}
	return Load(ctx, c.client, inst.Ref)
}

// Load decodes ref from disk when it names an existing file, otherwise
// downloads it when it is an http(s) URL.
func Load(ctx context.Context, client *http.Client, ref string) (image.Image, error) {
	if ref == "" {
		return nil, fmt.Errorf("пустой источник")
	}
	if fi, err := os.Stat(ref); err == nil && !fi.IsDir() {
		img, err := imaging.Open(ref, imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", ref, err)
		}
		return img, nil
	}
	if !IsURL(ref) {
		return nil, fmt.Errorf("файл не найден: %s", ref)
	}

	resp, err := fetch.Get(ctx, client, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", ref, resp.StatusCode)
	}
	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref, err)
	}
	return img, nil
}

func IsURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
