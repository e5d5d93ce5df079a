// Package geometry computes where posters, meters and captions go on a
// background of a given size. Every function here is pure: the same
// dimensions always produce the same placements.
package geometry

import (
	"image"
	"math"

	"golang.org/x/exp/constraints"
)

const (
	posterHeightRatio = 0.6
	posterAspect      = 0.56 // width / height
	posterTopRatio    = 0.1
	meterSizeRatio    = 0.15
	meterGapRatio     = 0.05
	leftMeterCenter   = 0.25
	rightMeterCenter  = 0.75
	headerYRatio      = 0.05
	yearXRatio        = 0.1
	boxOfficeXRatio   = 0.9
	scoreGapRatio     = 0.02
	qrSizeRatio       = 0.12
	qrMarginRatio     = 0.02
)

// Align selects which point of a caption the anchor refers to.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

type Rect struct {
	X, Y, W, H int
}

func (r Rect) Rectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

func (r Rect) CenterX() int {
	return r.X + r.W/2
}

func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Anchor is a caption's baseline point, scale factor and alignment.
type Anchor struct {
	X, Y  int
	Scale float64
	Align Align
}

type ImagePlacements struct {
	Poster     Rect
	MeterLeft  Rect
	MeterRight Rect
}

type TextPlacements struct {
	Year       Anchor
	BoxOffice  Anchor
	ScoreLeft  Anchor
	ScoreRight Anchor
}

// ActorTextPlacements covers the captions of an actor summary card. The
// birthdate takes the year's slot and the age sits centered between them.
type ActorTextPlacements struct {
	Birthdate  Anchor
	BoxOffice  Anchor
	Age        Anchor
	Awards     Anchor
	ScoreLeft  Anchor
	ScoreRight Anchor
}

// Clamp limits v to [lo, hi]. When hi < lo the result is lo.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// BaseScale is the caption scale unit for a background.
func BaseScale(w, h int) float64 {
	return float64(min(w, h)) / 1000.0
}

func ComputeImagePlacements(w, h int) ImagePlacements {
	if w <= 0 || h <= 0 {
		return ImagePlacements{}
	}

	posterH := int(float64(h) * posterHeightRatio)
	posterW := int(float64(posterH) * posterAspect)
	if posterW > w {
		posterW = w
		posterH = int(float64(w) / posterAspect)
	}
	poster := Rect{
		X: (w - posterW) / 2,
		Y: int(float64(h) * posterTopRatio),
		W: posterW,
		H: posterH,
	}
	poster.Y = Clamp(poster.Y, 0, h-poster.H)

	size := int(float64(w) * meterSizeRatio)
	size = Clamp(size, 0, h)
	meterY := poster.Bottom() + int(float64(h)*meterGapRatio)
	meterY = Clamp(meterY, 0, h-size)

	left := Rect{X: int(float64(w)*leftMeterCenter) - size/2, Y: meterY, W: size, H: size}
	right := Rect{X: int(float64(w)*rightMeterCenter) - size/2, Y: meterY, W: size, H: size}

	return ImagePlacements{Poster: poster, MeterLeft: left, MeterRight: right}
}

func ComputeTextPlacements(w, h int, ip ImagePlacements) TextPlacements {
	base := BaseScale(w, h)
	headerY := int(float64(h) * headerYRatio)
	scoreY := ip.MeterLeft.Bottom() + int(float64(h)*scoreGapRatio)

	return TextPlacements{
		Year:       Anchor{X: int(float64(w) * yearXRatio), Y: headerY, Scale: base * 2, Align: AlignLeft},
		BoxOffice:  Anchor{X: int(float64(w) * boxOfficeXRatio), Y: headerY, Scale: base * 1.5, Align: AlignRight},
		ScoreLeft:  Anchor{X: ip.MeterLeft.CenterX(), Y: scoreY, Scale: base * 3, Align: AlignCenter},
		ScoreRight: Anchor{X: ip.MeterRight.CenterX(), Y: scoreY, Scale: base * 3, Align: AlignCenter},
	}
}

func ComputeActorTextPlacements(w, h int, ip ImagePlacements) ActorTextPlacements {
	tp := ComputeTextPlacements(w, h, ip)
	base := BaseScale(w, h)

	birth := tp.Year
	birth.Scale = base * 1.2

	// Awards line three quarters of the way from the headshot to the meters.
	awardsY := ip.Poster.Bottom() + (ip.MeterLeft.Y-ip.Poster.Bottom())*3/4

	return ActorTextPlacements{
		Birthdate:  birth,
		BoxOffice:  tp.BoxOffice,
		Age:        Anchor{X: w / 2, Y: tp.Year.Y, Scale: base * 2, Align: AlignCenter},
		Awards:     Anchor{X: w / 2, Y: awardsY, Scale: base, Align: AlignCenter},
		ScoreLeft:  tp.ScoreLeft,
		ScoreRight: tp.ScoreRight,
	}
}

// ComputeQRPlacement returns a square in the bottom-right corner.
func ComputeQRPlacement(w, h int) Rect {
	size := int(math.Round(float64(w) * qrSizeRatio))
	size = Clamp(size, 0, min(w, h))
	margin := int(float64(w) * qrMarginRatio)
	return Rect{
		X: Clamp(w-size-margin, 0, w-size),
		Y: Clamp(h-size-margin, 0, h-size),
		W: size,
		H: size,
	}
}
