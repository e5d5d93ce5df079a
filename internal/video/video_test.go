package video

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildStreamArgsQuality(t *testing.T) {
	tests := []struct {
		encoder string
		quality int
		want    string
	}{
		{"h264_videotoolbox", 75, "-b:v 7500k"},
		{"h264_nvenc", 28, "-cq 28"},
		{"libx264", 23, "-crf 23 -preset medium"},
	}
	for _, tt := range tests {
		args := strings.Join(buildStreamArgs("out.mp4", StreamParams{
			Width: 1080, Height: 1920, FPS: 60, Encoder: tt.encoder, Quality: tt.quality,
		}), " ")
		if !strings.Contains(args, tt.want) {
			t.Errorf("%s: expected %q in %q", tt.encoder, tt.want, args)
		}
		if !strings.Contains(args, "-video_size 1080x1920 -framerate 60 -i -") {
			t.Errorf("%s: raw input not configured: %q", tt.encoder, args)
		}
		if !strings.HasSuffix(args, "out.mp4") {
			t.Errorf("%s: output must be last: %q", tt.encoder, args)
		}
		if strings.Contains(args, "pad=") {
			t.Errorf("%s: even size must not be padded", tt.encoder)
		}
	}
}

func TestBuildStreamArgsPadsOddSize(t *testing.T) {
	args := strings.Join(buildStreamArgs("o.mp4", StreamParams{Width: 1081, Height: 1920, FPS: 30, Encoder: "libx264", Quality: 23}), " ")
	if !strings.Contains(args, "-vf pad=ceil(iw/2)*2:ceil(ih/2)*2") {
		t.Errorf("odd width should be padded: %q", args)
	}
}

func TestWriteRawRGBAPacksSubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)

	var buf bytes.Buffer
	if err := writeRawRGBA(&buf, sub); err != nil {
		t.Fatal(err)
	}
	got := buf.Bytes()
	if len(got) != 2*2*4 {
		t.Fatalf("expected 16 bytes, got %d", len(got))
	}
	if got[0] != img.Pix[img.PixOffset(1, 1)] || got[8] != img.Pix[img.PixOffset(1, 2)] {
		t.Errorf("rows not packed: %v", got)
	}
}

func TestMuxStreamAudioTracks(t *testing.T) {
	dir := t.TempDir()
	bg := filepath.Join(dir, "background.mp3")
	os.WriteFile(bg, []byte("x"), 0644)

	tests := []struct {
		name       string
		bg         string
		commentary string
		want       []string
		absent     []string
	}{
		{"both", bg, "c.wav", []string{"amix", "stream_loop", "volume", "aac"}, nil},
		{"background only", bg, "", []string{"atrim", "aac"}, []string{"amix", "volume"}},
		{"commentary only", "", "c.wav", []string{"volume", "aac"}, []string{"amix", "stream_loop"}},
		{"missing background", filepath.Join(dir, "nope.mp3"), "", nil, []string{"aac", "stream_loop"}},
	}
	for _, tt := range tests {
		args := strings.Join(muxStream(MuxParams{
			VideoPath:       "v.mp4",
			BackgroundAudio: tt.bg,
			Commentary:      tt.commentary,
			Duration:        15,
			Output:          "final.mp4",
		}).Compile().Args, " ")
		for _, w := range tt.want {
			if !strings.Contains(args, w) {
				t.Errorf("%s: expected %q in %q", tt.name, w, args)
			}
		}
		for _, a := range tt.absent {
			if strings.Contains(args, a) {
				t.Errorf("%s: unexpected %q in %q", tt.name, a, args)
			}
		}
		if !strings.Contains(args, "final.mp4") || !strings.Contains(args, "copy") {
			t.Errorf("%s: video must be copied into output: %q", tt.name, args)
		}
	}
}

func TestStartStreamRejectsBadSize(t *testing.T) {
	if _, err := StartStream(t.Context(), "x.mp4", StreamParams{Width: 0, Height: 10, FPS: 30}); err == nil {
		t.Error("expected error for zero width")
	}
}
