package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadActorList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actors.txt")
	os.WriteFile(path, []byte("# leads\nBrad Pitt\n\n  Meryl Streep  \n#Tom Hanks\n"), 0644)

	names, err := readActorList(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "Brad Pitt" || names[1] != "Meryl Streep" {
		t.Errorf("unexpected names %q", names)
	}
}

func TestConfigFromFlags(t *testing.T) {
	if err := buildCmd.ParseFlags([]string{"--preset", "16:9", "--motion", "cycle", "--duration", "20", "--height", "1000"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := configFromFlags(buildCmd, []string{"Brad Pitt"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 1920 || cfg.Height != 1000 {
		t.Errorf("expected preset width with explicit height, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Motion != "cycle" || cfg.Duration != 20 || cfg.TotalFrames() != 1200 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if len(cfg.Actors) != 1 || cfg.BuildVersion != version {
		t.Errorf("unexpected actors or build: %v %q", cfg.Actors, cfg.BuildVersion)
	}
}

func TestConfigFromFlagsRejectsUnknownMotion(t *testing.T) {
	if err := imageCmd.ParseFlags([]string{"--motion", "wobble"}); err != nil {
		t.Fatal(err)
	}
	if _, err := configFromFlags(imageCmd, nil); err == nil {
		t.Error("expected error for unknown motion")
	}
}
