package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultURL is used when no target URL is given on the command line.
const DefaultURL = "http://localhost:3000"

// Config is the immutable settings bundle for one capture run.
// Built once in main, passed by pointer, never mutated afterwards.
type Config struct {
	URL         string `env:"PAGECAST_URL"`
	OutputVideo string

	// Frame geometry and encoding, passed through to the recorder.
	Width       int
	Height      int
	FPS         int
	Quality     int // x264: CRF; VideoToolbox: bitrate = Q*100 kbit/s
	Codec       string
	Preset      string
	Bitrate     int // target bitrate ceiling, kbit/s
	AspectRatio string

	// JPEG quality of the raw screencast frames, before encoding.
	CaptureQuality int

	Workers int

	Headless   bool   `env:"PAGECAST_HEADLESS"`
	BrowserBin string `env:"PAGECAST_BROWSER"`

	SettleDelay   time.Duration
	SectionScroll time.Duration
	ReturnScroll  time.Duration
	FinalHold     time.Duration
}

// New returns the default configuration for the given URL.
// An empty url selects DefaultURL verbatim.
func New(url string) *Config {
	if url == "" {
		url = DefaultURL
	}
	return &Config{
		URL:            url,
		OutputVideo:    "output/demo.mp4",
		Width:          1280,
		Height:         720,
		FPS:            30,
		Quality:        18,
		Codec:          "libx264",
		Preset:         "ultrafast",
		Bitrate:        3000,
		AspectRatio:    "16:9",
		CaptureQuality: 80,
		Workers:        runtime.NumCPU(),
		Headless:       true,
		SettleDelay:    4 * time.Second,
		SectionScroll:  1500 * time.Millisecond,
		ReturnScroll:   2 * time.Second,
		FinalHold:      2 * time.Second,
	}
}

// ApplyEnv overlays PAGECAST_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
