package anim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/jointmorph/pkg/math"
	"github.com/Faultbox/jointmorph/pkg/model"
)

// poseClip holds the root at x for the whole clip.
func poseClip(name string, x float32) *JointClip {
	return &JointClip{
		ClipHeader: ClipHeader{Name: name, Duration: 10, LoopMode: LoopRepeat},
		Joints: []JointTrack{
			{Translation: [3]Track{ConstTrack(x), {}, {}}},
			{Translation: [3]Track{{}, ConstTrack(1), {}}},
		},
	}
}

// settledBlender returns a blender that has already switched once and shows
// poseClip x, so the next SetClip can ramp.
func settledBlender(x float32) *MorphBlender {
	b := NewMorphBlender(makeModel(), nil, DefaultMorphOptions())
	b.SetClip(poseClip("a", x), LoopInherit, 0, 1, 0, -1)
	b.Calc()
	return b
}

func TestMorphNoClipIsRestPose(t *testing.T) {
	data := makeModel()
	data.Joints[0].Transform = math.Transform{
		Scale:       mgl32.Vec3{1, 2, 1},
		Rotation:    mgl32.Vec3{0.1, 0, 0},
		Translation: mgl32.Vec3{4, 5, 6},
	}
	b := NewMorphBlender(data, nil, DefaultMorphOptions())

	for step := 0; step < 3; step++ {
		b.Play(1)
		for i := range data.Joints {
			if got := b.ResolveJoint(i); got != data.Joints[i].Transform {
				t.Errorf("step %d joint %d: expected rest %+v, got %+v", step, i, data.Joints[i].Transform, got)
			}
		}
	}

	b.SetClip(poseClip("a", 3), LoopInherit, 0, 1, 0, -1)
	b.SetClip(nil, LoopRepeat, 5, 1, 0, -1)
	if got := b.ResolveJoint(0); got != data.Joints[0].Transform {
		t.Errorf("clearing the clip should restore rest, got %+v", got)
	}
}

func TestMorphFirstSwitchIsInstant(t *testing.T) {
	b := NewMorphBlender(makeModel(), nil, DefaultMorphOptions())
	if b.PrevMorphValue() != -1 {
		t.Fatalf("expected fresh blender, prev=%v", b.PrevMorphValue())
	}

	b.SetClip(poseClip("a", 3), LoopInherit, 8, 1, 0, -1)
	if b.MorphValue() != 1 || b.IsMorphing() {
		t.Errorf("first switch should be instant, morph=%v", b.MorphValue())
	}
	if got := b.ResolveJoint(0).Translation; got != (mgl32.Vec3{3, 0, 0}) {
		t.Errorf("expected clip pose, got %v", got)
	}
}

func TestSetMorphInstant(t *testing.T) {
	tests := []struct {
		name   string
		frames float32
	}{
		{"negative", -1},
		{"zero", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := settledBlender(1)
			b.SetMorph(4)
			if !b.IsMorphing() {
				t.Fatal("expected a ramp once the blender has switched before")
			}

			b.SetMorph(tt.frames)
			if b.MorphValue() != 1 || b.IsMorphing() {
				t.Errorf("expected instant switch, morph=%v", b.MorphValue())
			}
		})
	}
}

func TestMorphInstantSwitchAtoB(t *testing.T) {
	b := NewMorphBlender(makeModel(), poseClip("a", 2), DefaultMorphOptions())
	b.Calc()

	b.SetClip(poseClip("b", 7), LoopInherit, 0, 1, 0, -1)

	got := b.ResolveJoint(0)
	want := math.Transform{Scale: math.One, Translation: mgl32.Vec3{7, 0, 0}}
	if !got.ApproxEqual(want, eps) {
		t.Errorf("expected clip B pose %+v, got %+v", want, got)
	}
}

func TestMorphRamp(t *testing.T) {
	const n = 4
	b := settledBlender(1)

	b.SetClip(poseClip("b", 5), LoopInherit, n, 1, 0, -1)
	if !b.IsMorphing() || b.MorphValue() != 0 {
		t.Fatalf("expected ramp from 0, got %v", b.MorphValue())
	}

	// Before any tick the pose has not moved.
	b.Calc()
	if got := b.Model.JointPosition(0); !math.ApproxEqualVec3(got, mgl32.Vec3{1, 0, 0}, eps) {
		t.Errorf("expected unchanged pose before the first tick, got %v", got)
	}

	prev := b.MorphValue()
	wantX := []float32{2, 3, 4, 5}
	for i := 0; i < n; i++ {
		b.Play(1)
		cur := b.MorphValue()
		if !near(cur-prev, 1.0/n) {
			t.Errorf("tick %d: expected step %v, got %v", i, 1.0/n, cur-prev)
		}
		prev = cur

		b.Calc()
		x := b.Model.JointPosition(0)[0]
		if !near(x, wantX[i]) {
			t.Errorf("tick %d: expected x=%v, got %v", i, wantX[i], x)
		}
		if cur < 1 && !math.Between(x, 1, 5) {
			t.Errorf("tick %d: pose %v should lie strictly between the two clips", i, x)
		}
	}

	if b.IsMorphing() {
		t.Error("expected the ramp to settle after n ticks")
	}

	// Settled: further ticks keep the clip pose.
	b.Play(1)
	b.Calc()
	if x := b.Model.JointPosition(0)[0]; !near(x, 5) {
		t.Errorf("settled pose: expected 5, got %v", x)
	}
}

func TestMorphPlayReturnsStopped(t *testing.T) {
	clip := poseClip("a", 0)
	clip.LoopMode = LoopOnce
	b := NewMorphBlender(makeModel(), clip, DefaultMorphOptions())

	if b.Play(9) {
		t.Fatal("stopped early")
	}
	if !b.Play(1) {
		t.Error("expected stop at the end of a once clip")
	}
}

func TestMorphSetClipDuration(t *testing.T) {
	b := NewMorphBlender(makeModel(), poseClip("a", 0), DefaultMorphOptions())
	if b.Ctrl.EndFrame != 10 || b.Ctrl.LoopMode != LoopRepeat {
		t.Errorf("expected clip duration and loop, got %+v", b.Ctrl)
	}

	b.SetClip(poseClip("a", 0), LoopOnce, 0, 1, 2, 6)
	if b.Ctrl.EndFrame != 6 || b.Ctrl.LoopMode != LoopOnce || b.Ctrl.CurrentTime != 2 {
		t.Errorf("explicit duration and loop should win, got %+v", b.Ctrl)
	}

	b.SetClip(poseClip("a", 0), LoopInherit, 0, -1, 2, -1)
	if b.Ctrl.CurrentTime != 10 {
		t.Errorf("reverse playback should start at the end, got %v", b.Ctrl.CurrentTime)
	}

	b.SetClip(nil, LoopInherit, 0, 1, 0, -1)
	if b.Ctrl.EndFrame != 0 {
		t.Errorf("no clip should give a zero-length clock, got %v", b.Ctrl.EndFrame)
	}
}

func TestMorphHooks(t *testing.T) {
	b := NewMorphBlender(makeModel(), poseClip("a", 2), DefaultMorphOptions())

	var order []string
	b.SetSampleHook(func(joint int, xf *math.Transform) {
		order = append(order, "sample")
		xf.Translation[2] += 1
	})
	b.SetMatrixHook(func(joint int, xf *math.Transform) {
		order = append(order, "matrix")
	})

	got := b.ResolveJoint(0)
	if got.Translation != (mgl32.Vec3{2, 0, 1}) {
		t.Errorf("expected sample hook adjustment, got %v", got.Translation)
	}
	if len(order) != 2 || order[0] != "sample" || order[1] != "matrix" {
		t.Errorf("unexpected hook order %v", order)
	}
}

func TestMorphCalcAndUpdateInstallCalc(t *testing.T) {
	b := NewMorphBlender(makeModel(), poseClip("a", 2), DefaultMorphOptions())

	b.Update()
	if b.Model.JointCalc() != model.JointMatrixCalc(b) {
		t.Error("Update should install the blender as joint calc")
	}

	b.Model.SetJointCalc(nil)
	b.Calc()
	if got := b.Model.JointPosition(1); !math.ApproxEqualVec3(got, mgl32.Vec3{2, 1, 0}, eps) {
		t.Errorf("arm: expected (2,1,0), got %v", got)
	}
}

func TestMorphResolveJointPanics(t *testing.T) {
	b := NewMorphBlender(makeModel(), nil, DefaultMorphOptions())
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out of range joint")
		}
	}()
	b.ResolveJoint(2)
}

func TestMorphBlendersDoNotShareScratch(t *testing.T) {
	a := settledBlender(1)
	c := settledBlender(1)

	a.SetClip(poseClip("b", 9), LoopInherit, 2, 1, 0, -1)
	c.SetClip(poseClip("c", -9), LoopInherit, 2, 1, 0, -1)
	a.Play(1)
	c.Play(1)

	if x := a.ResolveJoint(0).Translation[0]; !near(x, 5) {
		t.Errorf("blender a: expected 5, got %v", x)
	}
	if x := c.ResolveJoint(0).Translation[0]; !near(x, -4) {
		t.Errorf("blender c: expected -4, got %v", x)
	}
}

func TestMorphMissingTracksUseRestPose(t *testing.T) {
	rootOnly := func(name string, x float32) *JointClip {
		return &JointClip{
			ClipHeader: ClipHeader{Name: name, Duration: 10, LoopMode: LoopRepeat},
			Joints:     []JointTrack{{Translation: [3]Track{ConstTrack(x), {}, {}}}},
		}
	}

	b := NewMorphBlender(makeModel(), nil, DefaultMorphOptions())
	b.SetClip(rootOnly("a", 5), LoopInherit, 0, 1, 0, -1)
	b.Calc()
	if got := b.Model.JointPosition(1); !math.ApproxEqualVec3(got, mgl32.Vec3{5, 1, 0}, eps) {
		t.Errorf("settled: expected arm at rest offset from root, got %v", got)
	}

	b.SetClip(rootOnly("b", 1), LoopInherit, 2, 1, 0, -1)
	b.Play(1)
	b.Calc()
	if got := b.Model.JointPosition(1); !math.ApproxEqualVec3(got, mgl32.Vec3{3, 1, 0}, eps) {
		t.Errorf("ramping: expected arm at rest offset from root, got %v", got)
	}
}
