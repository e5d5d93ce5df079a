package audio

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/ivlev/actorreel/internal/scroller"
	"github.com/ivlev/actorreel/internal/system"
)

// DefaultSections is the number of cards in a full reel: the actor card
// and five summary movies.
const DefaultSections = 6

type Cue struct {
	Clip string
	AtMs int
}

// Delays returns the lead-in before the first section and the per-clip
// offset for a motion profile. Pausing profiles start later.
func Delays(m scroller.Motion) (initial, perClip int) {
	if m == scroller.Continuous || m == scroller.LerpOnly {
		return 500, -300
	}
	return 1500, 100
}

// CommentaryCues schedules clip i at initial + i*total/sections + offset.
func CommentaryCues(totalMs int, m scroller.Motion, clips []string, sections int) []Cue {
	if sections <= 0 {
		sections = DefaultSections
	}
	initial, perClip := Delays(m)
	section := float64(totalMs) / float64(sections)

	cues := make([]Cue, 0, len(clips))
	for i, clip := range clips {
		at := int(float64(initial) + float64(i)*section + float64(perClip))
		cues = append(cues, Cue{Clip: clip, AtMs: max(0, at)})
	}
	return cues
}

// BuildCommentary lays every cue's clip from dir over totalMs of silence
// and writes the result to out. Missing or unreadable clips are skipped.
// It returns false when no clip could be placed.
func BuildCommentary(ctx context.Context, dir string, cues []Cue, totalMs int, tmpDir, out string) (bool, error) {
	track := Silent(totalMs)
	placed := 0

	for i, cue := range cues {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		path, err := system.FindAudio(dir, cue.Clip)
		if err != nil {
			log.Printf("[!] Комментарий %s пропущен: %v", cue.Clip, err)
			continue
		}
		clip, err := loadClip(path, filepath.Join(tmpDir, fmt.Sprintf("clip_%d.wav", i)))
		if err != nil {
			log.Printf("[!] Комментарий %s пропущен: %v", cue.Clip, err)
			continue
		}
		track.Overlay(clip, cue.AtMs)
		placed++
	}

	if placed == 0 {
		return false, nil
	}
	if err := track.WriteWAV(out); err != nil {
		return false, err
	}
	return true, nil
}

// loadClip reads WAV files in the track format directly and converts
// anything else with ffmpeg first.
func loadClip(path, tmp string) (*Track, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		if t, err := ReadWAV(path); err == nil {
			return t, nil
		}
	}
	if err := Transcode(path, tmp); err != nil {
		return nil, err
	}
	return ReadWAV(tmp)
}

// Transcode converts any audio file ffmpeg can read into track-format WAV.
func Transcode(src, dst string) error {
	err := ffmpeg.Input(src).
		Output(dst, ffmpeg.KwArgs{
			"ar":     SampleRate,
			"ac":     Channels,
			"acodec": "pcm_s16le",
		}).
		OverWriteOutput().
		Silent(true).
		Run()
	if err != nil {
		return fmt.Errorf("transcode %s: %w", src, err)
	}
	return nil
}
