// Package scraper reads actor filmographies and awards from public web pages.
package scraper

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/ivlev/actorreel/internal/fetch"
	"github.com/ivlev/actorreel/internal/film"
	"github.com/ivlev/actorreel/internal/meter"
)

const (
	RottenTomatoesURL = "https://www.rottentomatoes.com/celebrity/"
	BirthdateLayout   = "Jan 2, 2006"
)

// Slug turns an actor name into the celebrity page path segment.
func Slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.NewReplacer(" ", "_", "-", "_", ".", "", "'", "").Replace(s)
	return s
}

type RottenTomatoes struct {
	BaseURL string
	http    *http.Client
}

func NewRottenTomatoes(client *http.Client) *RottenTomatoes {
	if client == nil {
		client = fetch.NewClient(fetch.DefaultOptions())
	}
	return &RottenTomatoes{BaseURL: RottenTomatoesURL, http: client}
}

// CelebrityPage is one fetched celebrity page. Parse it once and read
// every field from it.
type CelebrityPage struct {
	Actor string
	URL   string
	doc   *goquery.Document
}

func (rt *RottenTomatoes) Page(ctx context.Context, actor string) (*CelebrityPage, error) {
	url := rt.BaseURL + Slug(actor)
	doc, err := fetchDocument(ctx, rt.http, url)
	if err != nil {
		return nil, errors.Wrapf(err, "celebrity page for %s", actor)
	}
	return &CelebrityPage{Actor: actor, URL: url, doc: doc}, nil
}

func (rt *RottenTomatoes) Filmography(ctx context.Context, actor string) ([]film.Movie, error) {
	p, err := rt.Page(ctx, actor)
	if err != nil {
		return nil, err
	}
	return p.Filmography(), nil
}

func (rt *RottenTomatoes) Birthdate(ctx context.Context, actor string) (time.Time, error) {
	p, err := rt.Page(ctx, actor)
	if err != nil {
		return time.Time{}, err
	}
	return p.Birthdate()
}

func (rt *RottenTomatoes) PortraitURL(ctx context.Context, actor string) (string, error) {
	p, err := rt.Page(ctx, actor)
	if err != nil {
		return "", err
	}
	return p.PortraitURL(), nil
}

// Filmography returns the movie rows that precede the TV section.
func (p *CelebrityPage) Filmography() []film.Movie {
	var movies []film.Movie
	// Document order: stop at the first "TV" heading.
	p.doc.Find("rt-text, tr[data-title]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if goquery.NodeName(s) == "rt-text" {
			return strings.TrimSpace(s.Text()) != "TV"
		}
		movies = append(movies, parseRow(s))
		return true
	})
	return movies
}

func parseRow(row *goquery.Selection) film.Movie {
	m := film.Movie{
		Title:     strings.TrimSpace(row.Find(".celebrity-filmography__title a").First().Text()),
		BoxOffice: strings.TrimSpace(row.Find(".celebrity-filmography__box-office").First().Text()),
		Credit:    strings.TrimSpace(row.Find(".celebrity-filmography__credits").First().Text()),
	}
	if m.Title == "" {
		m.Title, _ = row.Attr("data-title")
	}
	if y, err := strconv.Atoi(strings.TrimSpace(row.Find(".celebrity-filmography__year").First().Text())); err == nil {
		m.Year = y
	}
	if v, ok := row.Find("[data-tomatometer]").First().Attr("data-tomatometer"); ok {
		m.Tomatometer = meter.ParseScore(v)
	}
	if v, ok := row.Find("[data-audiencescore]").First().Attr("data-audiencescore"); ok {
		m.Popcornmeter = meter.ParseScore(v)
	}
	return m
}

func (p *CelebrityPage) Birthdate() (time.Time, error) {
	item := p.doc.Find(`p.celebrity-bio__item[data-qa="celebrity-bio-bday"]`).First()
	if item.Length() == 0 {
		return time.Time{}, errors.Errorf("no birthdate on %s", p.URL)
	}
	text := item.Text()
	if i := strings.LastIndex(text, ":"); i >= 0 {
		text = text[i+1:]
	}
	text = strings.Join(strings.Fields(text), " ")
	t, err := time.Parse(BirthdateLayout, text)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "birthdate %q", text)
	}
	return t, nil
}

// PortraitURL returns the src of the actor's portrait image, or "".
func (p *CelebrityPage) PortraitURL() string {
	name := strings.ToLower(p.Actor)
	var src string
	p.doc.Find("img[alt]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		alt := strings.ToLower(s.AttrOr("alt", ""))
		if strings.Contains(alt, "portrait photo of") && strings.Contains(alt, name) {
			src = s.AttrOr("src", "")
			return false
		}
		return true
	})
	return src
}

func fetchDocument(ctx context.Context, client *http.Client, url string) (*goquery.Document, error) {
	resp, err := fetch.Get(ctx, client, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}
