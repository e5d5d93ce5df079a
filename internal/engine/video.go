package engine

import (
	"context"
	"fmt"
	"image"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/ivlev/actorreel/internal/audio"
	"github.com/ivlev/actorreel/internal/config"
	"github.com/ivlev/actorreel/internal/scroller"
	"github.com/ivlev/actorreel/internal/system"
	"github.com/ivlev/actorreel/internal/video"
)

// ScrollParams builds the scroll plan parameters from the configuration.
func (p *Project) ScrollParams(m scroller.Motion) scroller.Params {
	return scroller.Params{
		FrameHeight:     p.Config.Height,
		TotalFrames:     p.Config.TotalFrames(),
		Motion:          m,
		PauseFrames:     p.Config.PauseFrames,
		FullPauseFrames: p.Config.FullPauseFrames,
		SlowZone:        p.Config.SlowZone,
	}
}

// RenderVideo scrolls img through a Width x Height window, adds the
// commentary and background music and writes out. It returns the number
// of frames encoded.
func (p *Project) RenderVideo(ctx context.Context, img image.Image, out string, m scroller.Motion, clips []string, rep *Report) (int, error) {
	cfg := p.Config

	scaled := scroller.ScaleToWidth(img, cfg.Width)
	ext := scroller.Extend(scaled, cfg.Height)
	params := p.ScrollParams(m)
	positions, err := scroller.Plan(ext.Bounds().Dy(), params)
	if err != nil {
		return 0, err
	}

	if cfg.PlanOutput != "" {
		p.writePlan(out, ext.Bounds().Dy(), params, positions)
	}

	tmpDir := filepath.Join(os.TempDir(), "actorreel_"+uuid.NewString())
	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		return 0, err
	}
	defer os.RemoveAll(tmpDir)

	rawVideo := filepath.Join(tmpDir, "scroll.mp4")
	stream, err := video.StartStream(ctx, rawVideo, video.StreamParams{
		Width:   cfg.Width,
		Height:  cfg.Height,
		FPS:     cfg.FPS,
		Encoder: cfg.VideoEncoder,
		Quality: cfg.Quality,
	})
	if err != nil {
		return 0, err
	}

	workers := system.RecommendedWorkers(cfg.Workers, system.TakeSnapshot())
	fmt.Printf("[*] Рендер %d кадров (%s, потоков: %d)...\n", len(positions), m, workers)
	if err := scroller.Render(ctx, ext, positions, cfg.Height, workers, stream); err != nil {
		stream.Close()
		return 0, fmt.Errorf("рендер кадров: %w", err)
	}
	if err := stream.Close(); err != nil {
		return 0, err
	}
	if n := stream.Frames(); n != len(positions) {
		return 0, fmt.Errorf("закодировано %d кадров из %d", n, len(positions))
	}
	if rep != nil {
		rep.mark(&rep.Render)
	}

	totalMs := len(positions) * 1000 / cfg.FPS
	commentary := filepath.Join(tmpDir, "commentary.wav")
	cues := audio.CommentaryCues(totalMs, m, clips, len(clips)+1)
	ok, err := audio.BuildCommentary(ctx, cfg.SoundDir, cues, totalMs, tmpDir, commentary)
	if err != nil {
		return 0, fmt.Errorf("комментарий: %w", err)
	}
	if !ok {
		log.Printf("[!] Комментарии не найдены в %s, видео без комментария", cfg.SoundDir)
		commentary = ""
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return 0, err
	}
	err = video.Mux(video.MuxParams{
		VideoPath:       rawVideo,
		BackgroundAudio: p.backgroundAudio(),
		Commentary:      commentary,
		Duration:        float64(totalMs) / 1000,
		Output:          out,
	})
	if err != nil {
		return 0, fmt.Errorf("сборка видео: %w", err)
	}
	if d, err := system.MediaDuration(out); err != nil {
		log.Printf("[!] Длительность %s не проверена: %v", out, err)
	} else if math.Abs(d-float64(totalMs)/1000) > 0.5 {
		log.Printf("[!] %s: длительность %.2fs вместо %.2fs", out, d, float64(totalMs)/1000)
	}
	if rep != nil {
		rep.mark(&rep.Mux)
	}
	return len(positions), nil
}

// VideoFromImage renders a video from an infographic saved earlier. The
// commentary assumes a full five-movie reel.
func VideoFromImage(ctx context.Context, cfg *config.Config, imagePath, actor string) (string, error) {
	m, err := scroller.ParseMotion(cfg.Motion)
	if err != nil {
		return "", err
	}
	img, err := imaging.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("инфографика %s: %w", imagePath, err)
	}

	if actor == "" {
		actor = strings.TrimSuffix(strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath)), " infographic")
	}
	p := &Project{Config: cfg}
	out := p.videoPath(actor, m)

	rep := newReport(Job{Name: actor, Motion: m})
	frames, err := p.RenderVideo(ctx, img, out, m, DefaultClips(), rep)
	if err != nil {
		return "", err
	}
	rep.Frames = frames
	if cfg.ShowStats {
		rep.Print(cfg.BuildVersion, system.TakeSnapshot())
	}
	return out, nil
}

func (p *Project) backgroundAudio() string {
	if p.Config.BackgroundAudio != "" {
		return p.Config.BackgroundAudio
	}
	path, err := system.FindAudio(p.Config.SoundDir, "background")
	if err != nil {
		return ""
	}
	return path
}

// writePlan stores the plan next to the other plans as "<video name>.yaml".
func (p *Project) writePlan(videoPath string, extHeight int, params scroller.Params, positions []float64) {
	name := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath)) + ".yaml"
	path := filepath.Join(p.Config.PlanOutput, name)

	plan := &scroller.PlanFile{
		Version:        "1.0",
		Motion:         params.Motion,
		FPS:            p.Config.FPS,
		FrameHeight:    params.FrameHeight,
		ExtendedHeight: extHeight,
		ScrollSpeed:    scroller.ScrollSpeed(extHeight, params.FrameHeight, params.TotalFrames),
		Pauses:         scroller.PausePositions(extHeight, params.FrameHeight),
		Positions:      positions,
	}
	if err := os.MkdirAll(p.Config.PlanOutput, 0755); err != nil {
		log.Printf("[!] План не сохранён: %v", err)
		return
	}
	if err := scroller.WritePlan(plan, path); err != nil {
		log.Printf("[!] План не сохранён: %v", err)
		return
	}
	fmt.Printf("[*] План прокрутки: %s\n", path)
}
