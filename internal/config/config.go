package config

import "time"

type Config struct {
	Actors          []string
	DataFiles       []string
	SaveData        string
	OutputImageDir  string
	OutputVideoDir  string
	OutputVideo     string
	PlanOutput      string
	HeadshotDir     string
	SoundDir        string
	BackgroundAudio string
	Width           int
	Height          int
	FPS             int
	Duration        float64
	Motion          string
	PauseFrames     int
	FullPauseFrames int
	SlowZone        float64
	Workers         int
	DPI             int
	Preset          string
	VideoEncoder    string
	Quality         int
	ShowStats       bool
	SkipVideo       bool
	Offline         bool
	OMDbAPIKey      string
	HTTPTimeout     time.Duration
	BuildVersion    string
}

// Default returns the settings used for 9:16 shorts.
func Default() *Config {
	return &Config{
		OutputImageDir:  "infographic images",
		OutputVideoDir:  "infographic videos",
		HeadshotDir:     "headshots",
		SoundDir:        "soundclips",
		Width:           1080,
		Height:          1920,
		FPS:             60,
		Duration:        15,
		Motion:          "lerp_pause",
		PauseFrames:     25,
		FullPauseFrames: 12,
		SlowZone:        50,
		Workers:         4,
		DPI:             150,
		Quality:         23,
		HTTPTimeout:     15 * time.Second,
		BuildVersion:    "dev",
	}
}

// ApplyPreset overrides the frame size for a named aspect preset.
func (c *Config) ApplyPreset(preset string) {
	switch preset {
	case "16:9":
		c.Width, c.Height = 1920, 1080
	case "9:16":
		c.Width, c.Height = 1080, 1920
	case "4:5":
		c.Width, c.Height = 1080, 1350
	}
	c.Preset = preset
}

// TotalFrames is the number of frames a render of Duration seconds produces.
func (c *Config) TotalFrames() int {
	return int(c.Duration * float64(c.FPS))
}
