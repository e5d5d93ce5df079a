// Package scroller turns a tall infographic into the frame sequence of a
// looping vertical scroll.
package scroller

import (
	"fmt"
	"math"
)

type Motion string

const (
	Continuous Motion = "continuous"
	LerpPause  Motion = "lerp_pause"
	LerpOnly   Motion = "lerp_only"
	FullPause  Motion = "full_pause"
)

// Motions lists every profile; batch renders cycle through the first three.
var Motions = []Motion{Continuous, LerpPause, LerpOnly, FullPause}

func ParseMotion(s string) (Motion, error) {
	for _, m := range Motions {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown motion %q (continuous, lerp_pause, lerp_only, full_pause)", s)
}

// Slows reports whether the profile eases speed near each card center.
func (m Motion) Slows() bool {
	return m == LerpPause || m == LerpOnly
}

// Holds reports whether the profile repeats frames at card centers.
func (m Motion) Holds() bool {
	return m == LerpPause || m == FullPause
}

const (
	minSlowdown      = 0.3
	defaultTolerance = 5.0
)

type Params struct {
	FrameHeight int
	TotalFrames int
	Motion      Motion
	// PauseFrames is the hold length for lerp_pause, FullPauseFrames for
	// full_pause.
	PauseFrames     int
	FullPauseFrames int
	// SlowZone is the distance in pixels from a card center where easing
	// starts.
	SlowZone  float64
	Tolerance float64
}

func (p Params) holdFrames() int {
	if p.Motion == FullPause {
		return p.FullPauseFrames
	}
	return p.PauseFrames
}

func (p Params) tolerance() float64 {
	if p.Tolerance > 0 {
		return p.Tolerance
	}
	return defaultTolerance
}

// ScrollSpeed is the base speed in pixels per frame.
func ScrollSpeed(extendedHeight, frameHeight, totalFrames int) float64 {
	if totalFrames <= 0 || extendedHeight <= frameHeight {
		return 0
	}
	return float64(extendedHeight-frameHeight) / float64(totalFrames)
}

// PausePositions returns the center line of every card band, leaving out
// the band appended for the loop.
func PausePositions(extendedHeight, frameHeight int) []int {
	if frameHeight <= 0 {
		return nil
	}
	n := extendedHeight / frameHeight
	var out []int
	for i := 0; i < n-1; i++ {
		out = append(out, i*frameHeight+frameHeight/2)
	}
	return out
}

// Plan returns the window top for each of exactly TotalFrames frames.
// Positions never decrease. Each card center is held at most once.
func Plan(extendedHeight int, p Params) ([]float64, error) {
	if p.TotalFrames <= 0 {
		return nil, fmt.Errorf("total frames must be positive, got %d", p.TotalFrames)
	}
	if p.FrameHeight <= 0 {
		return nil, fmt.Errorf("frame height must be positive, got %d", p.FrameHeight)
	}
	if _, err := ParseMotion(string(p.Motion)); err != nil {
		return nil, err
	}
	if p.Motion.Slows() && p.SlowZone <= 0 {
		return nil, fmt.Errorf("%s needs a positive slow zone", p.Motion)
	}

	speed := ScrollSpeed(extendedHeight, p.FrameHeight, p.TotalFrames)
	pauses := PausePositions(extendedHeight, p.FrameHeight)
	half := float64(p.FrameHeight / 2)
	tol := p.tolerance()

	positions := make([]float64, 0, p.TotalFrames)
	emit := func(v float64, n int) {
		for i := 0; i < n && len(positions) < p.TotalFrames; i++ {
			positions = append(positions, v)
		}
	}

	pos := 0.0
	held := -1
	for len(positions) < p.TotalFrames {
		if p.Motion == Continuous {
			pos += speed
			emit(pos, 1)
			continue
		}

		center := pos + half
		idx, dist := closest(pauses, center)

		step := speed
		if p.Motion.Slows() && idx >= 0 && dist < p.SlowZone {
			step = speed * (minSlowdown + (1-minSlowdown)*dist/p.SlowZone)
		}

		if p.Motion.Holds() && idx >= 0 && idx != held {
			target := float64(pauses[idx])
			crossing := center < target && center+step >= target
			if dist < tol || crossing {
				pos = math.Max(pos, target-half)
				emit(pos, p.holdFrames())
				held = idx
				if p.Motion.Slows() {
					step = speed * minSlowdown
				}
			}
		}

		pos += step
		emit(pos, 1)
	}
	return positions, nil
}

func closest(pauses []int, center float64) (int, float64) {
	idx, best := -1, math.Inf(1)
	for i, p := range pauses {
		if d := math.Abs(float64(p) - center); d < best {
			idx, best = i, d
		}
	}
	return idx, best
}
