// Package config handles playback configuration loading and management.
package config

import (
	"github.com/pkg/errors"
)

// Config errors.
var (
	ErrInvalidFPS   = errors.New("fps must be positive")
	ErrInvalidSpeed = errors.New("speed must be finite")
)

// Config holds all playback settings.
type Config struct {
	Playback PlaybackConfig `yaml:"playback"`
	Data     DataConfig     `yaml:"data"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PlaybackConfig controls how clips are driven.
type PlaybackConfig struct {
	FPS         float32 `yaml:"fps"`          // frames advanced per second of wall time
	Speed       float32 `yaml:"speed"`        // clip speed multiplier
	MorphFrames float32 `yaml:"morph_frames"` // cross-fade length on clip switch
	Loop        string  `yaml:"loop"`         // loop mode name, empty inherits the clip's
	Frames      int     `yaml:"frames"`       // frames to simulate, 0 runs until stopped
	Realtime    bool    `yaml:"realtime"`     // pace frames to FPS instead of running flat out
}

// DataConfig holds asset locations.
type DataConfig struct {
	BundlePaths []string `yaml:"bundle_paths"`
	GLTFFPS     float32  `yaml:"gltf_fps"` // frames per second used to convert glTF key times
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Playback: PlaybackConfig{
			FPS:         30,
			Speed:       1,
			MorphFrames: 5,
			Loop:        "",
			Frames:      60,
			Realtime:    false,
		},
		Data: DataConfig{
			BundlePaths: []string{"bundle.yaml"},
			GLTFFPS:     30,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values the playback driver cannot work with.
func (c *Config) Validate() error {
	if c.Playback.FPS <= 0 {
		return errors.Wrapf(ErrInvalidFPS, "playback.fps=%v", c.Playback.FPS)
	}
	if c.Data.GLTFFPS <= 0 {
		return errors.Wrapf(ErrInvalidFPS, "data.gltf_fps=%v", c.Data.GLTFFPS)
	}
	if s := c.Playback.Speed; s != s || s > 1e6 || s < -1e6 {
		return errors.Wrapf(ErrInvalidSpeed, "playback.speed=%v", s)
	}
	return nil
}
