package engine

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/actorreel/internal/film"
	"github.com/ivlev/actorreel/internal/omdb"
)

// boxOfficeFloor: scraped grosses below this are treated as broken and
// looked up in the metadata API instead.
const boxOfficeFloor = 1000

// LoadActor reads the actor from a data file or scrapes it, fills in the
// headshot and optionally saves the result for offline reuse.
func (p *Project) LoadActor(ctx context.Context, job Job) (*film.Actor, error) {
	var actor *film.Actor
	var err error
	switch {
	case job.DataFile != "":
		actor, err = film.LoadActorFile(job.DataFile)
	case p.Celebrity == nil:
		err = fmt.Errorf("%s: нет файла данных, а сеть отключена", job.Name)
	default:
		actor, err = p.scrapeActor(ctx, job.Name)
	}
	if err != nil {
		return nil, err
	}

	actor.Headshot = p.headshot(actor)

	if p.Config.SaveData != "" {
		path := filepath.Join(p.Config.SaveData, actor.Name+".yaml")
		if err := os.MkdirAll(p.Config.SaveData, 0755); err != nil {
			log.Printf("[!] Данные %s не сохранены: %v", actor.Name, err)
		} else if err := film.WriteActorFile(actor, path); err != nil {
			log.Printf("[!] Данные %s не сохранены: %v", actor.Name, err)
		} else {
			fmt.Printf("[*] Данные сохранены: %s\n", path)
		}
	}
	return actor, nil
}

func (p *Project) scrapeActor(ctx context.Context, name string) (*film.Actor, error) {
	page, err := p.Celebrity.Page(ctx, name)
	if err != nil {
		return nil, err
	}

	movies := page.Filmography()
	if len(movies) == 0 {
		return nil, errors.Wrapf(film.ErrNoMovies, "%s", name)
	}
	fmt.Printf("[*] %s: найдено фильмов: %d\n", name, len(movies))

	actor := &film.Actor{
		Name:       name,
		ProfileURL: page.URL,
		Headshot:   page.PortraitURL(),
		Movies:     movies,
	}
	if bd, err := page.Birthdate(); err == nil {
		actor.Birthdate = bd
	} else {
		log.Printf("[!] %s: дата рождения не найдена: %v", name, err)
	}

	aw := p.Awards.Awards(ctx, name)
	actor.OscarWins, actor.OscarNominations = aw.Wins, aw.Nominations

	if err := p.enrichBoxOffice(ctx, actor.Movies); err != nil {
		return nil, err
	}
	return actor, nil
}

// enrichBoxOffice replaces implausibly small grosses with the metadata
// API's figure.
func (p *Project) enrichBoxOffice(ctx context.Context, movies film.Movies) error {
	if p.Movies == nil {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range movies {
		v, ok := movies[i].BoxOfficeValue()
		if !ok || v >= boxOfficeFloor {
			continue
		}
		g.Go(func() error {
			m, err := p.Movies.Get(gctx, movies[i].Title, movies[i].Year)
			if err != nil {
				log.Printf("[!] Сборы %q не уточнены: %v", movies[i].Title, err)
				return gctx.Err()
			}
			if _, ok := m.BoxOfficeValue(); ok {
				movies[i].BoxOffice = m.BoxOffice
			}
			return nil
		})
	}
	return g.Wait()
}

// summaryFilter keeps leading roles when the metadata API is available.
func (p *Project) summaryFilter(ctx context.Context, actor *film.Actor) *film.SummaryFilter {
	f := &film.SummaryFilter{Now: p.Now()}
	if p.Movies == nil {
		return f
	}
	f.Starring = func(m film.Movie) bool {
		info, err := p.Movies.Get(ctx, m.Title, m.Year)
		if err != nil {
			if errors.Cause(err) != omdb.ErrNotFound {
				log.Printf("[!] Состав %q не проверен: %v", m.Title, err)
				return true
			}
			return false
		}
		return info.HasActor(actor.Name)
	}
	return f
}

// resolvePosters fills missing poster references from the metadata API.
func (p *Project) resolvePosters(ctx context.Context, picks []film.Pick) {
	for i := range picks {
		m := &picks[i].Movie
		if m.Poster != "" || p.Movies == nil {
			continue
		}
		info, err := p.Movies.Get(ctx, m.Title, m.Year)
		if err != nil {
			log.Printf("[!] Постер %q не найден: %v", m.Title, err)
			continue
		}
		m.Poster = info.PosterURL()
	}
}

// headshot prefers a local headshots/<name>.jpg (the name as given, then
// lower-cased), then the scraped or saved reference, then the default image.
func (p *Project) headshot(a *film.Actor) string {
	for _, base := range []string{a.Name, strings.ToLower(a.Name)} {
		for _, ext := range []string{".jpg", ".jpeg", ".png"} {
			path := filepath.Join(p.Config.HeadshotDir, base+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	if a.Headshot != "" {
		return a.Headshot
	}
	return p.Style.DefaultHeadshot
}
