package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Playback.FPS != 30 {
		t.Errorf("expected fps 30, got %v", cfg.Playback.FPS)
	}
	if cfg.Playback.Speed != 1 {
		t.Errorf("expected speed 1, got %v", cfg.Playback.Speed)
	}
	if cfg.Playback.MorphFrames != 5 {
		t.Errorf("expected morph frames 5, got %v", cfg.Playback.MorphFrames)
	}
	if cfg.Playback.Loop != "" {
		t.Errorf("expected loop to inherit by default, got %q", cfg.Playback.Loop)
	}
	if cfg.Playback.Realtime {
		t.Error("expected realtime to be false by default")
	}
	if len(cfg.Data.BundlePaths) != 1 || cfg.Data.BundlePaths[0] != "bundle.yaml" {
		t.Errorf("unexpected bundle paths %v", cfg.Data.BundlePaths)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
playback:
  fps: 60
  speed: -0.5
  morph_frames: 12
  loop: mirrored_repeat
  frames: 240
  realtime: true

data:
  bundle_paths: ["hero.yaml", "hero.glb"]
  gltf_fps: 24

logging:
  level: "debug"
  log_file: "playback.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Playback.FPS != 60 {
		t.Errorf("expected fps 60, got %v", cfg.Playback.FPS)
	}
	if cfg.Playback.Speed != -0.5 {
		t.Errorf("expected speed -0.5, got %v", cfg.Playback.Speed)
	}
	if cfg.Playback.MorphFrames != 12 {
		t.Errorf("expected morph frames 12, got %v", cfg.Playback.MorphFrames)
	}
	if cfg.Playback.Loop != "mirrored_repeat" {
		t.Errorf("expected loop mirrored_repeat, got %q", cfg.Playback.Loop)
	}
	if cfg.Playback.Frames != 240 || !cfg.Playback.Realtime {
		t.Errorf("unexpected playback config %+v", cfg.Playback)
	}
	if len(cfg.Data.BundlePaths) != 2 || cfg.Data.BundlePaths[1] != "hero.glb" {
		t.Errorf("unexpected bundle paths %v", cfg.Data.BundlePaths)
	}
	if cfg.Data.GLTFFPS != 24 {
		t.Errorf("expected gltf fps 24, got %v", cfg.Data.GLTFFPS)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "playback.log" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
playback:
  fps: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"zero fps", func(c *Config) { c.Playback.FPS = 0 }, ErrInvalidFPS},
		{"negative gltf fps", func(c *Config) { c.Data.GLTFFPS = -1 }, ErrInvalidFPS},
		{"huge speed", func(c *Config) { c.Playback.Speed = 1e9 }, ErrInvalidSpeed},
		{"reverse speed", func(c *Config) { c.Playback.Speed = -2 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "jointmorph.yaml")
	if err := os.WriteFile(configPath, []byte("playback:\n  fps: 24\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find jointmorph.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		set      map[string]bool
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			set:   map[string]bool{"debug": true},
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "fps and speed flags",
			set:   map[string]bool{"fps": true, "speed": true},
			setup: func() { *flagFPS = 24; *flagSpeed = -1 },
			verify: func(cfg *Config) {
				if cfg.Playback.FPS != 24 {
					t.Errorf("expected fps 24, got %v", cfg.Playback.FPS)
				}
				if cfg.Playback.Speed != -1 {
					t.Errorf("expected speed -1, got %v", cfg.Playback.Speed)
				}
			},
			teardown: func() { *flagFPS = 30; *flagSpeed = 1 },
		},
		{
			name:  "zero speed flag",
			set:   map[string]bool{"speed": true},
			setup: func() { *flagSpeed = 0 },
			verify: func(cfg *Config) {
				if cfg.Playback.Speed != 0 {
					t.Errorf("expected speed 0, got %v", cfg.Playback.Speed)
				}
			},
			teardown: func() { *flagSpeed = 1 },
		},
		{
			name:  "zero morph flag",
			set:   map[string]bool{"morph": true},
			setup: func() { *flagMorph = 0 },
			verify: func(cfg *Config) {
				if cfg.Playback.MorphFrames != 0 {
					t.Errorf("expected morph frames 0, got %v", cfg.Playback.MorphFrames)
				}
			},
			teardown: func() { *flagMorph = 5 },
		},
		{
			name:  "unset flags keep config values",
			setup: func() { *flagSpeed = 3; *flagMorph = 9 },
			verify: func(cfg *Config) {
				if cfg.Playback.MorphFrames != 5 || cfg.Playback.Speed != 1 {
					t.Errorf("expected default playback values, got %+v", cfg.Playback)
				}
			},
			teardown: func() { *flagSpeed = 1; *flagMorph = 5 },
		},
		{
			name:  "frames and loop flags",
			set:   map[string]bool{"frames": true, "loop": true},
			setup: func() { *flagFrames = 0; *flagLoop = "once" },
			verify: func(cfg *Config) {
				if cfg.Playback.Frames != 0 || cfg.Playback.Loop != "once" {
					t.Errorf("unexpected playback config %+v", cfg.Playback)
				}
			},
			teardown: func() { *flagFrames = 60; *flagLoop = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg, tt.set)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
playback:
  fps: 50
  frames: 10
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagFPS = 120
	visitFlags = func(fn func(*flag.Flag)) { fn(flag.Lookup("fps")) }
	defer func() {
		*flagConfig = ""
		*flagFPS = 30
		visitFlags = flag.Visit
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Playback.FPS != 120 {
		t.Errorf("expected fps 120 from flag, got %v", cfg.Playback.FPS)
	}
	if cfg.Playback.Frames != 10 {
		t.Errorf("expected frames 10 from file, got %d", cfg.Playback.Frames)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("playback:\n  fps: -3\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, ErrInvalidFPS) {
		t.Errorf("expected ErrInvalidFPS, got %v", err)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Playback.MorphFrames = 8
	cfg.Playback.Loop = "repeat"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if loaded.Playback.MorphFrames != 8 || loaded.Playback.Loop != "repeat" {
		t.Errorf("saved values not restored, got %+v", loaded.Playback)
	}
}
