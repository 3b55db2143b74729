package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/jointmorph/internal/config"
	"github.com/Faultbox/jointmorph/internal/logger"
	"github.com/Faultbox/jointmorph/internal/playback"
	"github.com/Faultbox/jointmorph/pkg/anim"
	"github.com/Faultbox/jointmorph/pkg/formats"
	"github.com/Faultbox/jointmorph/pkg/model"
)

func playOptions(cfg *config.Config) (anim.PlayOptions, error) {
	loop, err := anim.ParseLoopMode(cfg.Playback.Loop)
	if err != nil {
		return anim.PlayOptions{}, err
	}
	opts := anim.DefaultPlayOptions()
	opts.Loop = loop
	opts.Speed = cfg.Playback.Speed
	return opts, nil
}

func cmdPlay(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	jointName := fs.String("joint", "", "Joint to report (default: the last joint)")
	fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: animtool play [-joint name] <bundle> <clip>")
	}
	b, err := loadBundle(cfg, fs.Arg(0))
	if err != nil {
		return err
	}
	clip := b.Clip(fs.Arg(1))
	if clip == nil {
		return fmt.Errorf("clip %q not found in %s", fs.Arg(1), fs.Arg(0))
	}

	joint := len(b.Model.Joints) - 1
	if *jointName != "" {
		if joint = b.Model.JointIndex(*jointName); joint < 0 {
			return fmt.Errorf("joint %q not found", *jointName)
		}
	}

	opts, err := playOptions(cfg)
	if err != nil {
		return err
	}
	player := anim.NewPlayer(clip, opts)
	if player == nil {
		return fmt.Errorf("clip %q has no player", fs.Arg(1))
	}

	inst := model.NewInstance(b.Model)
	d := playback.New(playback.OptionsFromConfig(cfg.Playback))
	d.Add(clip.Header().Name, player, inst)
	d.OnFrame = func(frame int) {
		printFrame(frame, player.Controller(), inst, clip, joint)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return ignoreCancel(d.Run(ctx))
}

func printFrame(frame int, ctrl *anim.FrameCtrl, inst *model.Instance, clip anim.Clip, joint int) {
	fmt.Printf("%5d t=%8.3f ", frame, ctrl.CurrentTime)

	switch clip.(type) {
	case *anim.JointClip:
		p := inst.JointPosition(joint)
		fmt.Printf("%s=(%.3f, %.3f, %.3f)", inst.Data.Joints[joint].Name, p[0], p[1], p[2])
	case *anim.VisibilityClip:
		for _, s := range inst.Shapes {
			if s.Visible {
				fmt.Print("1")
			} else {
				fmt.Print("0")
			}
		}
	default:
		for i, m := range inst.Materials {
			fmt.Printf("%s: texmtx=%v tev=%v konst=%v texno=%v ",
				inst.Data.Materials[i].Name, m.TexMtx, m.TevColors, m.KonstColors, m.TexNo)
		}
	}
	fmt.Println()
}

func cmdMorph(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("morph", flag.ExitOnError)
	at := fs.Int("at", -1, "Frame to switch clips (default: half of -frames)")
	fs.Parse(args)

	if fs.NArg() < 3 {
		return fmt.Errorf("usage: animtool morph [-at N] <bundle> <clipA> <clipB>")
	}
	b, err := loadBundle(cfg, fs.Arg(0))
	if err != nil {
		return err
	}
	from, err := jointClip(b, fs.Arg(1))
	if err != nil {
		return err
	}
	to, err := jointClip(b, fs.Arg(2))
	if err != nil {
		return err
	}

	loop, err := anim.ParseLoopMode(cfg.Playback.Loop)
	if err != nil {
		return err
	}
	switchAt := morphSwitchFrame(*at, cfg.Playback.Frames)
	blender := newMorphBlender(b.Model, from, loop, cfg.Playback.Speed)

	d := playback.New(playback.OptionsFromConfig(cfg.Playback))
	d.Add("morph", blender, blender.Model)
	d.OnFrame = func(frame int) {
		if frame == switchAt {
			logger.Info("switching clip",
				zap.String("from", from.Name),
				zap.String("to", to.Name),
				zap.Float32("morph_frames", cfg.Playback.MorphFrames))
			blender.SetClip(to, loop, cfg.Playback.MorphFrames, cfg.Playback.Speed, 0, -1)
		}
		root := blender.Model.JointPosition(0)
		fmt.Printf("%5d %-12s t=%8.3f morph=%.3f root=(%.3f, %.3f, %.3f)\n",
			frame, blender.Clip().Name, blender.Ctrl.CurrentTime, blender.MorphValue(), root[0], root[1], root[2])
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return ignoreCancel(d.Run(ctx))
}

// newMorphBlender returns a blender already showing from. Settling it here
// makes the later switch cross-fade instead of snapping.
func newMorphBlender(md *model.ModelData, from *anim.JointClip, loop anim.LoopMode, speed float32) *anim.MorphBlender {
	mo := anim.DefaultMorphOptions()
	mo.Loop = loop
	mo.Speed = speed
	blender := anim.NewMorphBlender(md, nil, mo)
	blender.SetClip(from, loop, 0, speed, 0, -1)
	return blender
}

// morphSwitchFrame resolves the -at flag. Driver frames count from 1.
func morphSwitchFrame(at, frames int) int {
	if at < 0 {
		at = frames / 2
	}
	if at < 1 {
		at = 1
	}
	return at
}

func jointClip(b *formats.Bundle, name string) (*anim.JointClip, error) {
	clip := b.Clip(name)
	if clip == nil {
		return nil, fmt.Errorf("clip %q not found", name)
	}
	jc, ok := clip.(*anim.JointClip)
	if !ok {
		return nil, fmt.Errorf("clip %q is a %s clip, morphing needs joint clips", name, formats.KindOf(clip))
	}
	return jc, nil
}

// ignoreCancel treats an interrupt as a normal exit.
func ignoreCancel(err error) error {
	if err == context.Canceled {
		return nil
	}
	return err
}
