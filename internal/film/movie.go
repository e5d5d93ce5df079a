// Package film holds movie and actor records, the statistics derived from
// them and the placement instructions for their infographic cards.
package film

import (
	"errors"
	"math"
	"strconv"

	"github.com/ivlev/actorreel/internal/compositor"
	"github.com/ivlev/actorreel/internal/config"
	"github.com/ivlev/actorreel/internal/geometry"
	"github.com/ivlev/actorreel/internal/meter"
)

var ErrNoMovies = errors.New("no movies")

type Movie struct {
	Title        string      `yaml:"title"`
	Year         int         `yaml:"year"`
	BoxOffice    string      `yaml:"box_office"`
	Poster       string      `yaml:"poster,omitempty"`
	Tomatometer  meter.Score `yaml:"tomatometer"`
	Popcornmeter meter.Score `yaml:"popcornmeter"`
	Credit       string      `yaml:"credit,omitempty"`
}

func (m Movie) BoxOfficeValue() (float64, bool) {
	return ParseBoxOffice(m.BoxOffice)
}

func (m Movie) ReadableBoxOffice() string {
	return ReadableBoxOffice(m.BoxOffice)
}

func (m Movie) YearText() string {
	if m.Year <= 0 {
		return ""
	}
	return strconv.Itoa(m.Year)
}

func (m Movie) TomatoMeter() meter.Meter {
	return meter.New(meter.Tomato, m.Tomatometer)
}

func (m Movie) PopcornMeter() meter.Meter {
	return meter.New(meter.Popcorn, m.Popcornmeter)
}

// Card returns the poster, tomato and popcorn icons followed by year, box
// office and both scores, laid out for a w x h template.
func (m Movie) Card(style config.Style, w, h int) ([]compositor.ImageInstruction, []compositor.TextInstruction) {
	ip := geometry.ComputeImagePlacements(w, h)
	tp := geometry.ComputeTextPlacements(w, h, ip)
	icons := meter.DefaultIcons(style.IconDir)

	images := []compositor.ImageInstruction{
		{Ref: m.Poster, Rect: ip.Poster},
		m.TomatoMeter().Image(icons, ip.MeterLeft),
		m.PopcornMeter().Image(icons, ip.MeterRight),
	}
	texts := []compositor.TextInstruction{
		compositor.Text(m.YearText(), tp.Year, style.Year, style.FontPath),
		compositor.Text(m.ReadableBoxOffice(), tp.BoxOffice, style.BoxOffice, style.FontPath),
		m.TomatoMeter().Caption(tp.ScoreLeft, style),
		m.PopcornMeter().Caption(tp.ScoreRight, style),
	}
	return images, texts
}

// Movies is a collection with the aggregate accessors used on actor cards
// and for summary selection. Accessors that pick a movie report false
// when nothing qualifies.
type Movies []Movie

// AverageTomatometer averages valid critic scores, rounded to one decimal.
// Invalid scores are left out of the denominator.
func (ms Movies) AverageTomatometer() (float64, bool) {
	return average(ms, func(m Movie) meter.Score { return m.Tomatometer })
}

func (ms Movies) AveragePopcornmeter() (float64, bool) {
	return average(ms, func(m Movie) meter.Score { return m.Popcornmeter })
}

func average(ms Movies, score func(Movie) meter.Score) (float64, bool) {
	sum, n := 0.0, 0
	for _, m := range ms {
		if s := score(m); s.Valid {
			sum += s.Value
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return math.Round(sum/float64(n)*10) / 10, true
}

// TotalBoxOffice sums every movie's gross. Unparseable values count as 0
// rather than being skipped.
func (ms Movies) TotalBoxOffice() float64 {
	total := 0.0
	for _, m := range ms {
		v, _ := m.BoxOfficeValue()
		total += v
	}
	return total
}

func (ms Movies) HighestTomatometer() (Movie, bool) {
	return pick(ms, tomato, greater)
}

func (ms Movies) LowestTomatometer() (Movie, bool) {
	return pick(ms, tomato, less)
}

func (ms Movies) HighestPopcornmeter() (Movie, bool) {
	return pick(ms, popcorn, greater)
}

func (ms Movies) LowestPopcornmeter() (Movie, bool) {
	return pick(ms, popcorn, less)
}

// HighestGrossing considers only movies with a positive parsed gross.
func (ms Movies) HighestGrossing() (Movie, bool) {
	return pick(ms, gross, greater)
}

func tomato(m Movie) (float64, bool)  { return m.Tomatometer.Value, m.Tomatometer.Valid }
func popcorn(m Movie) (float64, bool) { return m.Popcornmeter.Value, m.Popcornmeter.Valid }

func gross(m Movie) (float64, bool) {
	v, ok := m.BoxOfficeValue()
	return v, ok && v > 0
}

func greater(a, b float64) bool { return a > b }
func less(a, b float64) bool    { return a < b }

// pick returns the first movie whose key beats every other under better.
func pick(ms Movies, key func(Movie) (float64, bool), better func(a, b float64) bool) (Movie, bool) {
	var best Movie
	var bestKey float64
	found := false
	for _, m := range ms {
		k, ok := key(m)
		if !ok {
			continue
		}
		if !found || better(k, bestKey) {
			best, bestKey, found = m, k, true
		}
	}
	return best, found
}
