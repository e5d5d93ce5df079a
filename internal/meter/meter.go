// Package meter models the critic and audience scores shown under each
// poster: the numeric score, its fresh/rotten variant and the icon that
// goes with it.
package meter

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ivlev/actorreel/internal/compositor"
	"github.com/ivlev/actorreel/internal/config"
	"github.com/ivlev/actorreel/internal/geometry"
)

// FreshThreshold is the lowest score shown with the fresh icon.
const FreshThreshold = 60.0

type Kind int

const (
	Tomato Kind = iota
	Popcorn
)

func (k Kind) String() string {
	if k == Popcorn {
		return "Popcorn"
	}
	return "Tomato"
}

type Freshness int

const (
	Fresh Freshness = iota
	Rotten
)

func (f Freshness) String() string {
	if f == Rotten {
		return "Rotten"
	}
	return "Fresh"
}

// Score is a 0..100 rating. Valid is false for missing or non-numeric
// values; such scores count as 0 on display and are left out of averages.
type Score struct {
	Value float64
	Valid bool
}

func NewScore(v float64) Score {
	return Score{Value: v, Valid: true}
}

// ParseScore accepts "85", "85%" or "72.5". Anything else, including
// negative numbers, yields an invalid score.
func ParseScore(s string) Score {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return Score{}
	}
	return NewScore(v)
}

func (s Score) OrZero() float64 {
	if !s.Valid {
		return 0
	}
	return s.Value
}

func (s Score) String() string {
	if !s.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(s.Value, 'f', -1, 64)
}

func (s Score) MarshalYAML() (interface{}, error) {
	if !s.Valid {
		return nil, nil
	}
	return s.Value, nil
}

func (s *Score) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	if raw == nil {
		*s = Score{}
		return nil
	}
	*s = ParseScore(fmt.Sprint(raw))
	return nil
}

type Variant struct {
	Kind      Kind
	Freshness Freshness
}

// IconSet maps every meter variant to an asset path.
type IconSet map[Variant]string

// DefaultIcons lays out icons as <dir>/FreshTomato.png and so on.
func DefaultIcons(dir string) IconSet {
	set := make(IconSet, 4)
	for _, k := range []Kind{Tomato, Popcorn} {
		for _, f := range []Freshness{Fresh, Rotten} {
			set[Variant{k, f}] = filepath.Join(dir, f.String()+k.String()+".png")
		}
	}
	return set
}

type Meter struct {
	Kind  Kind
	Score Score
}

func New(kind Kind, score Score) Meter {
	return Meter{Kind: kind, Score: score}
}

func (m Meter) Freshness() Freshness {
	if m.Score.OrZero() >= FreshThreshold {
		return Fresh
	}
	return Rotten
}

func (m Meter) Variant() Variant {
	return Variant{Kind: m.Kind, Freshness: m.Freshness()}
}

// Text is the caption under the icon, e.g. "85%" or "72.5%".
func (m Meter) Text() string {
	return strconv.FormatFloat(m.Score.OrZero(), 'f', -1, 64) + "%"
}

func (m Meter) Image(icons IconSet, r geometry.Rect) compositor.ImageInstruction {
	return compositor.ImageInstruction{Ref: icons[m.Variant()], Rect: r}
}

func (m Meter) Caption(a geometry.Anchor, style config.Style) compositor.TextInstruction {
	return compositor.Text(m.Text(), a, style.Score, style.FontPath)
}
