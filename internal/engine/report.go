package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/actorreel/internal/system"
)

const benchmarkLog = "benchmark.log"

// Report collects stage timings for one actor.
type Report struct {
	Actor  string
	Motion string
	Frames int

	Load      time.Duration
	Composite time.Duration
	Render    time.Duration
	Mux       time.Duration

	start time.Time
	last  time.Time
}

func newReport(job Job) *Report {
	now := time.Now()
	return &Report{Actor: job.String(), Motion: string(job.Motion), start: now, last: now}
}

// mark stores the time since the previous mark in stage.
func (r *Report) mark(stage *time.Duration) {
	now := time.Now()
	*stage = now.Sub(r.last)
	r.last = now
}

func (r *Report) Total() time.Duration {
	return r.last.Sub(r.start)
}

// FPS is the effective render rate over the whole run.
func (r *Report) FPS() float64 {
	if r.Frames == 0 || r.Total() <= 0 {
		return 0
	}
	return float64(r.Frames) / r.Total().Seconds()
}

func (r *Report) String(build string) string {
	return fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Actor: %s (%s)\n"+
			"Total Time: %.2fs\n"+
			"Data: %.2fs\n"+
			"Compositing: %.2fs\n"+
			"Rendering + Encoding: %.2fs\n"+
			"Audio + Mux: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		build, r.Actor, r.Motion, r.Total().Seconds(), r.Load.Seconds(), r.Composite.Seconds(),
		r.Render.Seconds(), r.Mux.Seconds(), r.FPS(),
	)
}

func (r *Report) LogLine(build string, snap system.Snapshot, at time.Time) string {
	return fmt.Sprintf("[%s] Build: %s | Actor: %s | Motion: %s | Frames: %d | Total: %.2fs | Composite: %.2fs | Render: %.2fs | FPS: %.2f | %s\n",
		at.Format("2006-01-02 15:04:05"),
		build, r.Actor, r.Motion, r.Frames,
		r.Total().Seconds(), r.Composite.Seconds(), r.Render.Seconds(), r.FPS(),
		snap,
	)
}

// Print writes the report to stdout and appends a line to benchmark.log.
func (r *Report) Print(build string, snap system.Snapshot) {
	fmt.Print(r.String(build))
	fmt.Printf("[*] %s\n", snap)
	if err := appendLine(benchmarkLog, r.LogLine(build, snap, time.Now())); err != nil {
		fmt.Printf("[!] Не удалось записать %s: %v\n", benchmarkLog, err)
	}
}

func appendLine(path, line string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
