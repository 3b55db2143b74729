// animtool inspects animation bundles and simulates clip playback and
// cross-fades without a renderer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/jointmorph/internal/config"
	"github.com/Faultbox/jointmorph/internal/logger"
	"github.com/Faultbox/jointmorph/pkg/formats"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Debug("config loaded",
		zap.Float32("fps", cfg.Playback.FPS),
		zap.Float32("speed", cfg.Playback.Speed),
		zap.Int("frames", cfg.Playback.Frames))

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		err = cmdInfo(cfg, args)
	case "play":
		err = cmdPlay(cfg, args)
	case "morph":
		err = cmdMorph(cfg, args)
	case "dump":
		err = cmdDump(cfg, args)
	case "watch":
		err = cmdWatch(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`animtool - joint animation playback and morph utility

Usage:
  animtool [flags] <command> [options]

Commands:
  info  [bundle]                        Show model joints, materials and clips
  play  [-joint name] <bundle> <clip>   Play a clip and print the pose each frame
  morph [-at N] <bundle> <clipA> <clipB> Cross-fade from clipA to clipB at frame N
  dump  [-t frame] <bundle> [clip]      Dump the model, a clip, or a pose at a frame
  watch [bundle...]                     Reload bundles when they change

Flags:
  -config path   Config file (default ./jointmorph.yaml or the user config dir)
  -fps N         Playback frames per second
  -speed S       Clip speed multiplier
  -morph N       Cross-fade length in frames
  -frames N      Frames to simulate (0 runs until the clip stops)
  -loop mode     Loop mode override (once, once_and_reset, repeat, mirrored_once, mirrored_repeat)
  -debug         Enable debug logging

Examples:
  animtool info hero.yaml
  animtool -frames 30 play hero.yaml wave
  animtool -morph 8 morph -at 10 hero.yaml idle wave
  animtool dump -t 12 rig.gltf animation0`)
}

// bundlePath returns the bundle named on the command line, or the first
// configured bundle.
func bundlePath(cfg *config.Config, args []string) (string, []string, error) {
	if len(args) > 0 {
		return args[0], args[1:], nil
	}
	if len(cfg.Data.BundlePaths) > 0 {
		return cfg.Data.BundlePaths[0], nil, nil
	}
	return "", nil, fmt.Errorf("no bundle given and none configured")
}

func loadBundle(cfg *config.Config, path string) (*formats.Bundle, error) {
	return formats.LoadBundle(path, cfg.Data.GLTFFPS)
}
