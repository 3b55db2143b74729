package playback

import (
	"context"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/jointmorph/internal/config"
	"github.com/Faultbox/jointmorph/pkg/anim"
	"github.com/Faultbox/jointmorph/pkg/math"
	"github.com/Faultbox/jointmorph/pkg/model"
)

func testModel() *model.ModelData {
	return &model.ModelData{
		Name: "rig",
		Joints: []model.Joint{
			{Name: "root", Parent: -1, Transform: math.IdentityTransform()},
			{Name: "arm", Parent: 0, Transform: math.Transform{Scale: math.One, Translation: mgl32.Vec3{0, 1, 0}}},
		},
	}
}

// slide moves the root along X by one unit per frame. Other joints keep their
// rest transform.
func slide(duration float32, loop anim.LoopMode) *anim.JointClip {
	return &anim.JointClip{
		ClipHeader: anim.ClipHeader{Name: "slide", Duration: duration, LoopMode: loop},
		Joints: []anim.JointTrack{
			{Translation: [3]anim.Track{{Keys: []anim.Key{{Frame: 0, Value: 0}, {Frame: duration, Value: duration}}}, {}, {}}},
		},
	}
}

func TestDriverRunsUntilFinished(t *testing.T) {
	inst := model.NewInstance(testModel())
	d := New(Options{FPS: 30})
	d.Add("slide", anim.NewJointPlayer(slide(4, anim.LoopOnce), anim.DefaultPlayOptions()), inst)

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if d.Frame() != 4 {
		t.Errorf("expected 4 frames, got %d", d.Frame())
	}
	if !d.Done("slide") || !d.Finished() {
		t.Error("expected slide to be finished")
	}

	// A finished once clock holds just inside its last frame.
	want := mgl32.Vec3{4 - 0.001, 1, 0}
	if got := inst.JointPosition(1); !math.ApproxEqualVec3(got, want, 0.0001) {
		t.Errorf("expected arm at %v, got %v", want, got)
	}
}

func TestDriverFrameBudget(t *testing.T) {
	inst := model.NewInstance(testModel())
	d := New(Options{FPS: 30, Frames: 5})
	d.Add("slide", anim.NewJointPlayer(slide(4, anim.LoopRepeat), anim.DefaultPlayOptions()), inst)

	var seen []int
	d.OnFrame = func(frame int) { seen = append(seen, frame) }

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(seen) != 5 || seen[0] != 1 || seen[4] != 5 {
		t.Errorf("expected frames 1..5, got %v", seen)
	}
	if d.Finished() {
		t.Error("repeating player should not finish")
	}
}

func TestDriverCancel(t *testing.T) {
	d := New(Options{FPS: 30})
	d.Add("slide", anim.NewJointPlayer(slide(4, anim.LoopRepeat), anim.DefaultPlayOptions()), model.NewInstance(testModel()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := d.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if d.Frame() != 0 {
		t.Errorf("expected no frames after cancel, got %d", d.Frame())
	}
}

func TestDriverCancelFromCallback(t *testing.T) {
	d := New(Options{FPS: 30})
	d.Add("slide", anim.NewJointPlayer(slide(4, anim.LoopRepeat), anim.DefaultPlayOptions()), model.NewInstance(testModel()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.OnFrame = func(frame int) {
		if frame == 3 {
			cancel()
		}
	}

	if err := d.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if d.Frame() != 3 {
		t.Errorf("expected to stop after frame 3, got %d", d.Frame())
	}
}

func TestDriverNoPlayers(t *testing.T) {
	d := New(Options{})
	if err := d.Run(context.Background()); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if d.Finished() {
		t.Error("empty driver should not report finished")
	}
}

func TestDriverRealtime(t *testing.T) {
	inst := model.NewInstance(testModel())
	p := anim.NewJointPlayer(slide(1000, anim.LoopOnce), anim.DefaultPlayOptions())
	d := New(Options{FPS: 1000, Frames: 3, Realtime: true})
	d.Add("slide", p, inst)

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if d.Frame() != 3 {
		t.Errorf("expected 3 frames, got %d", d.Frame())
	}
	if p.Ctrl.CurrentTime <= 0 {
		t.Errorf("expected clock to advance with wall time, got %v", p.Ctrl.CurrentTime)
	}
}

func TestDriverMorphBlender(t *testing.T) {
	a := slide(10, anim.LoopRepeat)
	b := anim.NewMorphBlender(testModel(), a, anim.DefaultMorphOptions())

	d := New(Options{FPS: 30, Frames: 2})
	d.Add("blend", b, b.Model)
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := b.Model.JointPosition(0)[0]; !near(got, 2) {
		t.Errorf("expected root x 2 after two frames, got %v", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default().Playback
	cfg.Realtime = true

	opts := OptionsFromConfig(cfg)
	if opts.FPS != cfg.FPS || opts.Frames != cfg.Frames || !opts.Realtime {
		t.Errorf("unexpected options %+v", opts)
	}
}

func near(a, b float32) bool {
	d := a - b
	return d < 0.0001 && d > -0.0001
}
