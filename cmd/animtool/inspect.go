package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/Faultbox/jointmorph/internal/config"
	"github.com/Faultbox/jointmorph/pkg/anim"
	"github.com/Faultbox/jointmorph/pkg/formats"
	"github.com/Faultbox/jointmorph/pkg/math"
	"github.com/Faultbox/jointmorph/pkg/model"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
}

func cmdInfo(cfg *config.Config, args []string) error {
	path, _, err := bundlePath(cfg, args)
	if err != nil {
		return err
	}
	b, err := loadBundle(cfg, path)
	if err != nil {
		return err
	}

	md := b.Model
	fmt.Printf("Bundle:  %s\n", path)
	fmt.Printf("Model:   %s\n", md.Name)
	fmt.Printf("Scaling: %s\n", md.LoadFlags.ScalingRule())
	fmt.Printf("Shapes:  %d\n", md.ShapeCount)
	fmt.Println()

	fmt.Printf("Joints (%d):\n", len(md.Joints))
	depth := make([]int, len(md.Joints))
	for i, j := range md.Joints {
		if j.Parent >= 0 {
			depth[i] = depth[j.Parent] + 1
		}
		fmt.Printf("  %3d %s%s\n", i, strings.Repeat("  ", depth[i]), j.Name)
	}

	if len(md.Materials) > 0 {
		fmt.Println()
		fmt.Printf("Materials (%d):\n", len(md.Materials))
		for _, m := range md.Materials {
			fmt.Printf("  %-16s texmtx=%d texmaps=%d\n", m.Name, m.TexMtxCount, m.TexMapCount)
		}
	}

	fmt.Println()
	fmt.Printf("Clips (%d):\n", len(b.Clips))
	for _, c := range b.Clips {
		h := c.Header()
		fmt.Printf("  %-16s %-10s %8.2f frames  %s\n", h.Name, formats.KindOf(c), h.Duration, h.LoopMode)
	}
	return nil
}

func cmdDump(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	at := fs.Float64("t", -1, "Resolve the clip pose at this frame instead of dumping tracks")
	fs.Parse(args)

	path, rest, err := bundlePath(cfg, fs.Args())
	if err != nil {
		return err
	}
	b, err := loadBundle(cfg, path)
	if err != nil {
		return err
	}

	if len(rest) == 0 {
		fmt.Println(spewConfig.Sdump(b.Model))
		return nil
	}

	clip := b.Clip(rest[0])
	if clip == nil {
		return fmt.Errorf("clip %q not found in %s", rest[0], path)
	}
	if *at < 0 {
		fmt.Println(spewConfig.Sdump(clip))
		return nil
	}

	jc, ok := clip.(*anim.JointClip)
	if !ok {
		return fmt.Errorf("clip %q is a %s clip, poses need a joint clip", rest[0], formats.KindOf(clip))
	}
	fmt.Println(spewConfig.Sdump(resolvePose(b.Model, jc, float32(*at))))
	return nil
}

type jointPose struct {
	Name     string
	Local    math.Transform
	WorldPos [3]float32
}

// resolvePose samples clip at frame t and returns each joint's local
// transform and world position.
func resolvePose(md *model.ModelData, clip *anim.JointClip, t float32) []jointPose {
	inst := model.NewInstance(md)
	p := anim.NewJointPlayer(clip, anim.DefaultPlayOptions())
	p.EntryAt(inst, t)
	inst.CalcAnim()

	pose := make([]jointPose, len(md.Joints))
	for i := range md.Joints {
		var local math.Transform
		if i < len(clip.Joints) {
			anim.DefaultSampler.SampleJoint(&local, clip, i, t, t+1)
		} else {
			local = md.Joints[i].Transform
		}
		pose[i] = jointPose{
			Name:     md.Joints[i].Name,
			Local:    local,
			WorldPos: inst.JointPosition(i),
		}
	}
	return pose
}
