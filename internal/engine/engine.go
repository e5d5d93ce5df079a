package engine

import (
	"context"
	"fmt"
	"image"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/actorreel/internal/compositor"
	"github.com/ivlev/actorreel/internal/config"
	"github.com/ivlev/actorreel/internal/fetch"
	"github.com/ivlev/actorreel/internal/film"
	"github.com/ivlev/actorreel/internal/filmstrip"
	"github.com/ivlev/actorreel/internal/omdb"
	"github.com/ivlev/actorreel/internal/scraper"
	"github.com/ivlev/actorreel/internal/scroller"
	"github.com/ivlev/actorreel/internal/source"
	"github.com/ivlev/actorreel/internal/system"
)

// Job is one actor to render, identified by name or by a saved data file.
type Job struct {
	Name     string
	DataFile string
	Motion   scroller.Motion
}

func (j Job) String() string {
	if j.Name != "" {
		return j.Name
	}
	return filepath.Base(j.DataFile)
}

// Project builds infographics and videos for a list of actors.
type Project struct {
	Config     *config.Config
	Style      config.Style
	Template   *source.Template
	Compositor *compositor.Compositor
	Fonts      *compositor.FontCache

	// Network sources; nil in offline mode.
	Movies    *omdb.Client
	Celebrity *scraper.RottenTomatoes
	Awards    *scraper.Wikipedia

	Now func() time.Time
}

func NewProject(cfg *config.Config, style config.Style) (*Project, error) {
	tpl, err := source.OpenTemplate(style.TemplatePath, cfg.DPI)
	if err != nil {
		return nil, fmt.Errorf("шаблон не загружен: %w", err)
	}

	opts := fetch.DefaultOptions()
	if cfg.HTTPTimeout > 0 {
		opts.Timeout = cfg.HTTPTimeout
	}
	client := fetch.NewClient(opts)
	fonts := compositor.NewFontCache()

	p := &Project{
		Config:     cfg,
		Style:      style,
		Template:   tpl,
		Compositor: compositor.New(client, fonts),
		Fonts:      fonts,
		Now:        time.Now,
	}
	if !cfg.Offline {
		p.attachNetwork(client)
	}
	return p, nil
}

func (p *Project) attachNetwork(client *http.Client) {
	p.Celebrity = scraper.NewRottenTomatoes(client)
	p.Awards = scraper.NewWikipedia(client)
	if p.Config.OMDbAPIKey != "" {
		p.Movies = omdb.New(p.Config.OMDbAPIKey, nil)
	} else {
		log.Printf("[!] OMDB_API_KEY не задан: кассовые сборы и постеры не уточняются")
	}
}

func (p *Project) Close() error {
	return p.Fonts.Close()
}

// Jobs lists the configured actors: data files first, then names. A
// motion of "cycle" rotates continuous, lerp_pause and lerp_only.
func (p *Project) Jobs() ([]Job, error) {
	var jobs []Job
	for _, f := range p.Config.DataFiles {
		jobs = append(jobs, Job{DataFile: f})
	}
	for _, n := range p.Config.Actors {
		if n = strings.TrimSpace(n); n != "" {
			jobs = append(jobs, Job{Name: n})
		}
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("не указано ни одного актёра")
	}

	for i := range jobs {
		m, err := motionFor(p.Config.Motion, i)
		if err != nil {
			return nil, err
		}
		jobs[i].Motion = m
	}
	return jobs, nil
}

var motionCycle = scroller.Motions[:3]

func motionFor(name string, i int) (scroller.Motion, error) {
	if name == "cycle" {
		return motionCycle[i%len(motionCycle)], nil
	}
	return scroller.ParseMotion(name)
}

// Run processes every job. A failing actor is logged and the batch moves
// on; the error lists the actors that failed.
func (p *Project) Run(ctx context.Context) error {
	jobs, err := p.Jobs()
	if err != nil {
		return err
	}

	fmt.Println("--- [PROJECT: ACTOR REEL] ---")
	fmt.Printf("[*] Актёров: %d | Шаблон: %s (%dx%d)\n", len(jobs), p.Template.Path, p.Template.Size().X, p.Template.Size().Y)
	if !p.Config.SkipVideo {
		fmt.Printf("[*] Видео: %dx%d @ %d FPS, %.0fs | Энкодер: %s\n",
			p.Config.Width, p.Config.Height, p.Config.FPS, p.Config.Duration, p.Config.VideoEncoder)
	}
	fmt.Println("-----------------------------")

	var failed []string
	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Printf("[>] %d/%d: %s\n", i+1, len(jobs), job)
		if err := p.Process(ctx, job); err != nil {
			log.Printf("[!] %s: %v", job, err)
			failed = append(failed, job.String())
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("не обработаны: %s", strings.Join(failed, ", "))
	}
	return nil
}

// Process builds one actor's infographic and, unless disabled, the video.
func (p *Project) Process(ctx context.Context, job Job) error {
	rep := newReport(job)

	actor, err := p.LoadActor(ctx, job)
	if err != nil {
		return err
	}
	rep.Actor = actor.Name
	rep.mark(&rep.Load)

	picks := actor.SummaryMovies(p.summaryFilter(ctx, actor))
	if len(picks) == 0 {
		log.Printf("[!] %s: нет фильмов для сводки, будет только карточка актёра", actor.Name)
	}
	p.resolvePosters(ctx, picks)

	img, err := p.Infographic(ctx, actor, picks)
	if err != nil {
		return err
	}
	imgPath := ImagePath(p.Config.OutputImageDir, actor.Name)
	if err := saveJPEG(img, imgPath); err != nil {
		return err
	}
	fmt.Printf("[+] Инфографика: %s\n", imgPath)
	rep.mark(&rep.Composite)

	if !p.Config.SkipVideo {
		out := p.videoPath(actor.Name, job.Motion)
		frames, err := p.RenderVideo(ctx, img, out, job.Motion, SlotClips(picks), rep)
		if err != nil {
			return err
		}
		rep.Frames = frames
		fmt.Printf("[+++] Успех! Видео: %s\n", out)
	}

	if p.Config.ShowStats {
		rep.Print(p.Config.BuildVersion, system.TakeSnapshot())
	}
	return nil
}

// Infographic composites the actor card and one card per pick, then
// stitches them top to bottom with the actor card first.
func (p *Project) Infographic(ctx context.Context, actor *film.Actor, picks []film.Pick) (*image.RGBA, error) {
	size := p.Template.Size()
	strips := make([]*image.RGBA, len(picks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(system.RecommendedWorkers(p.Config.Workers, system.TakeSnapshot()))
	for i, pick := range picks {
		g.Go(func() error {
			images, texts := pick.Movie.Card(p.Style, size.X, size.Y)
			strips[i] = p.Compositor.Overlay(gctx, p.Template.Fresh(), images, texts)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	images, texts := actor.Card(p.Style, size.X, size.Y, p.Now())
	card := p.Compositor.Overlay(ctx, p.Template.Fresh(), images, texts)

	return filmstrip.Stitch(strips, card)
}

// SlotClips names the commentary clip for each pick, in order.
func SlotClips(picks []film.Pick) []string {
	clips := make([]string, len(picks))
	for i, pk := range picks {
		clips[i] = pk.Slot.String()
	}
	return clips
}

// DefaultClips is the clip list for a full five-movie reel.
func DefaultClips() []string {
	var clips []string
	for _, s := range film.Slots() {
		clips = append(clips, s.String())
	}
	return clips
}

func ImagePath(dir, actor string) string {
	return filepath.Join(dir, actor+" infographic.jpg")
}

func VideoPath(dir, actor string, m scroller.Motion) string {
	return filepath.Join(dir, fmt.Sprintf("%s infographic_%s.mp4", actor, m))
}

// videoPath honours an explicit output only for single-actor runs.
func (p *Project) videoPath(actor string, m scroller.Motion) string {
	if p.Config.OutputVideo != "" && len(p.Config.Actors)+len(p.Config.DataFiles) <= 1 {
		return p.Config.OutputVideo
	}
	return VideoPath(p.Config.OutputVideoDir, actor, m)
}

func saveJPEG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(95)); err != nil {
		return fmt.Errorf("не удалось сохранить %s: %w", path, err)
	}
	return nil
}
