package film

import (
	"strings"
	"time"
)

// Slot names a position in the summary reel. The order of the constants
// is the order movies appear in and the order commentary clips play.
type Slot int

const (
	CriticsFavorite Slot = iota
	AudienceFavorite
	MostSuccessful
	CriticsLeastFavorite
	AudienceLeastFavorite
)

var slotNames = [...]string{
	"CriticsFavorite",
	"AudienceFavorite",
	"MostSuccessful",
	"CriticsLeastFavorite",
	"AudienceLeastFavorite",
}

func (s Slot) String() string {
	if s < 0 || int(s) >= len(slotNames) {
		return "Unknown"
	}
	return slotNames[s]
}

// Slots lists every slot in reel order.
func Slots() []Slot {
	return []Slot{CriticsFavorite, AudienceFavorite, MostSuccessful, CriticsLeastFavorite, AudienceLeastFavorite}
}

type Pick struct {
	Slot  Slot
	Movie Movie
}

// SummaryFilter narrows the candidates before picking. A nil filter
// keeps every movie.
type SummaryFilter struct {
	Now time.Time
	// Starring reports whether the actor has a leading credit. Nil skips
	// the check.
	Starring func(Movie) bool
}

var missingBoxOffice = map[string]bool{"N/A": true, "": true, "-1": true, "-": true}

func (f *SummaryFilter) keep(m Movie) bool {
	if missingBoxOffice[strings.TrimSpace(m.BoxOffice)] {
		return false
	}
	if m.Credit != "" && !strings.Contains(strings.ToLower(m.Credit), "character") {
		return false
	}
	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}
	if m.Year <= 0 || m.Year > now.Year() {
		return false
	}
	if f.Starring != nil && !f.Starring(m) {
		return false
	}
	return true
}

func (f *SummaryFilter) Apply(ms Movies) Movies {
	if f == nil {
		return ms
	}
	var out Movies
	for _, m := range ms {
		if f.keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// SummaryMovies picks the critics' and audience favorites, the biggest
// earner and the two least favorites. Slots without a candidate are left
// out; the same movie may fill several slots.
func (a *Actor) SummaryMovies(f *SummaryFilter) []Pick {
	candidates := f.Apply(a.Movies)

	getters := map[Slot]func() (Movie, bool){
		CriticsFavorite:       candidates.HighestTomatometer,
		AudienceFavorite:      candidates.HighestPopcornmeter,
		MostSuccessful:        candidates.HighestGrossing,
		CriticsLeastFavorite:  candidates.LowestTomatometer,
		AudienceLeastFavorite: candidates.LowestPopcornmeter,
	}

	var picks []Pick
	for _, slot := range Slots() {
		if m, ok := getters[slot](); ok {
			picks = append(picks, Pick{Slot: slot, Movie: m})
		}
	}
	return picks
}
