// Package audio builds the commentary track: timed clips laid over
// silence, written as 16-bit PCM WAV.
package audio

import (
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	SampleRate = 44100
	Channels   = 2
	BitDepth   = 16
)

// Track is interleaved 16-bit PCM at SampleRate and Channels.
type Track struct {
	Samples []int
}

// Silent returns ms milliseconds of silence.
func Silent(ms int) *Track {
	if ms < 0 {
		ms = 0
	}
	return &Track{Samples: make([]int, frameCount(ms)*Channels)}
}

func frameCount(ms int) int {
	return int(int64(ms) * SampleRate / 1000)
}

func (t *Track) DurationMs() int {
	return int(int64(len(t.Samples)/Channels) * 1000 / SampleRate)
}

// Overlay mixes clip into t starting at atMs. The part of the clip past
// the end of t is dropped; t keeps its length. Sums are clipped to the
// 16-bit range.
func (t *Track) Overlay(clip *Track, atMs int) {
	if atMs < 0 {
		atMs = 0
	}
	start := frameCount(atMs) * Channels
	for i, s := range clip.Samples {
		j := start + i
		if j >= len(t.Samples) {
			return
		}
		t.Samples[j] = clamp16(t.Samples[j] + s)
	}
}

func clamp16(v int) int {
	return max(math.MinInt16, min(math.MaxInt16, v))
}

func ReadWAV(path string) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%s: not a valid wav file", path)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if buf.Format.SampleRate != SampleRate || buf.Format.NumChannels != Channels || int(d.BitDepth) != BitDepth {
		return nil, fmt.Errorf("%s: %d Hz, %d ch, %d bit; need %d Hz, %d ch, %d bit",
			path, buf.Format.SampleRate, buf.Format.NumChannels, d.BitDepth, SampleRate, Channels, BitDepth)
	}
	return &Track{Samples: buf.Data}, nil
}

func (t *Track) WriteWAV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(f, SampleRate, BitDepth, Channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: Channels, SampleRate: SampleRate},
		Data:           t.Samples,
		SourceBitDepth: BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
