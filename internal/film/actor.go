package film

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/ivlev/actorreel/internal/compositor"
	"github.com/ivlev/actorreel/internal/config"
	"github.com/ivlev/actorreel/internal/geometry"
	"github.com/ivlev/actorreel/internal/meter"
)

const DateLayout = "2006-01-02"

type Actor struct {
	Name             string    `yaml:"name"`
	Birthdate        time.Time `yaml:"birthdate,omitempty"`
	OscarWins        int       `yaml:"oscar_wins"`
	OscarNominations int       `yaml:"oscar_nominations"`
	Headshot         string    `yaml:"headshot,omitempty"`
	ProfileURL       string    `yaml:"profile_url,omitempty"`
	Movies           Movies    `yaml:"movies"`
}

// Age returns the actor's age at now, or false when the birthdate is
// unknown.
func (a *Actor) Age(now time.Time) (int, bool) {
	if a.Birthdate.IsZero() {
		return 0, false
	}
	return AgeOn(a.Birthdate, now), true
}

func (a *Actor) BirthdateText() string {
	if a.Birthdate.IsZero() {
		return ""
	}
	return "(" + a.Birthdate.Format(DateLayout) + ")"
}

func (a *Actor) AwardsText() string {
	if a.OscarNominations <= 0 {
		return ""
	}
	return fmt.Sprintf("Oscars: %d wins / %d nominations", a.OscarWins, a.OscarNominations)
}

// TomatoMeter shows the average critic score; with no valid scores the
// meter reads 0 and is rotten.
func (a *Actor) TomatoMeter() meter.Meter {
	avg, ok := a.Movies.AverageTomatometer()
	return meter.New(meter.Tomato, meter.Score{Value: avg, Valid: ok})
}

func (a *Actor) PopcornMeter() meter.Meter {
	avg, ok := a.Movies.AveragePopcornmeter()
	return meter.New(meter.Popcorn, meter.Score{Value: avg, Valid: ok})
}

// Card lays out the summary card: headshot, averaged meters and an
// optional profile QR code, then birthdate, total box office, age,
// awards and both scores.
func (a *Actor) Card(style config.Style, w, h int, now time.Time) ([]compositor.ImageInstruction, []compositor.TextInstruction) {
	ip := geometry.ComputeImagePlacements(w, h)
	tp := geometry.ComputeActorTextPlacements(w, h, ip)
	icons := meter.DefaultIcons(style.IconDir)

	images := []compositor.ImageInstruction{
		{Ref: a.Headshot, Rect: ip.Poster},
		a.TomatoMeter().Image(icons, ip.MeterLeft),
		a.PopcornMeter().Image(icons, ip.MeterRight),
	}
	if style.QRCode && a.ProfileURL != "" {
		if qr, err := qrImage(a.ProfileURL, geometry.ComputeQRPlacement(w, h)); err != nil {
			log.Printf("[!] QR для %s не создан: %v", a.Name, err)
		} else {
			images = append(images, qr)
		}
	}

	age := ""
	if n, ok := a.Age(now); ok {
		age = strconv.Itoa(n)
	}
	texts := []compositor.TextInstruction{
		compositor.Text(a.BirthdateText(), tp.Birthdate, style.Birthdate, style.FontPath),
		compositor.Text(FormatBoxOffice(a.Movies.TotalBoxOffice()), tp.BoxOffice, style.ActorBoxOffice, style.FontPath),
		compositor.Text(age, tp.Age, style.Age, style.FontPath),
		compositor.Text(a.AwardsText(), tp.Awards, style.Awards, style.FontPath),
		a.TomatoMeter().Caption(tp.ScoreLeft, style),
		a.PopcornMeter().Caption(tp.ScoreRight, style),
	}
	return images, texts
}

func qrImage(url string, r geometry.Rect) (compositor.ImageInstruction, error) {
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return compositor.ImageInstruction{}, err
	}
	return compositor.ImageInstruction{Ref: url, Image: q.Image(r.W), Rect: r}, nil
}
