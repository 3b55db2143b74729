package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagFPS    = flag.Float64("fps", 30, "Playback frames per second")
	flagSpeed  = flag.Float64("speed", 1, "Clip speed multiplier")
	flagMorph  = flag.Float64("morph", 5, "Cross-fade length in frames")
	flagFrames = flag.Int("frames", 60, "Frames to simulate")
	flagLoop   = flag.String("loop", "", "Loop mode override (once, repeat, mirrored_repeat, ...)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// Args returns the non-flag arguments.
func Args() []string {
	return flag.Args()
}

// visitFlags walks the flags set on the command line.
var visitFlags = flag.Visit

// setFlags returns the names of flags given on the command line, so an
// explicit zero still overrides the config file.
func setFlags() map[string]bool {
	set := make(map[string]bool)
	visitFlags(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}

// applyFlags applies the CLI flags named in set to the config.
func applyFlags(cfg *Config, set map[string]bool) {
	if set["debug"] && *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if set["fps"] {
		cfg.Playback.FPS = float32(*flagFPS)
	}
	if set["speed"] {
		cfg.Playback.Speed = float32(*flagSpeed)
	}
	if set["morph"] {
		cfg.Playback.MorphFrames = float32(*flagMorph)
	}
	if set["frames"] {
		cfg.Playback.Frames = *flagFrames
	}
	if set["loop"] {
		cfg.Playback.Loop = *flagLoop
	}
}
