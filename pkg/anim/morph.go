package anim

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/jointmorph/pkg/math"
	"github.com/Faultbox/jointmorph/pkg/model"
)

type morphPhase uint8

const (
	// morphFresh: no clip switch has happened since construction, so the
	// next switch is instantaneous.
	morphFresh morphPhase = iota
	// morphSettled: the active clip is fully blended in.
	morphSettled
	// morphRamping: blending from the working pose toward the active clip.
	morphRamping
)

type morphState struct {
	phase morphPhase
	prev  float32
	cur   float32
	step  float32
}

// JointHook adjusts a resolved joint transform in place.
type JointHook func(joint int, xf *math.Transform)

// MorphOptions configures the clip a MorphBlender starts with.
type MorphOptions struct {
	Loop       LoopMode // LoopInherit uses the clip's own mode
	Speed      float32
	StartFrame float32
	Duration   float32 // < 0 uses the clip's duration
	Sampler    JointSampler
}

// DefaultMorphOptions plays forward from frame zero with the clip's loop mode.
func DefaultMorphOptions() MorphOptions {
	return MorphOptions{Loop: LoopInherit, Speed: 1, Duration: -1}
}

// MorphBlender owns a model instance and cross-fades its pose from whatever
// it currently shows toward a newly set clip over a number of frames.
type MorphBlender struct {
	Model *model.Instance
	Ctrl  FrameCtrl

	clip    *JointClip
	sampler JointSampler
	morph   morphState
	working []math.Transform
	scratch math.Transform

	sampleHook JointHook
	matrixHook JointHook
}

// NewMorphBlender creates an instance of data and starts clip on it without
// blending. clip may be nil to hold the rest pose.
func NewMorphBlender(data *model.ModelData, clip *JointClip, opts MorphOptions) *MorphBlender {
	b := &MorphBlender{
		Model:   model.NewInstance(data),
		sampler: opts.Sampler,
	}
	if b.sampler == nil {
		b.sampler = DefaultSampler
	}

	b.SetClip(clip, opts.Loop, 0, opts.Speed, opts.StartFrame, opts.Duration)
	b.morph = morphState{phase: morphFresh, prev: -1, cur: 1}

	b.working = make([]math.Transform, len(data.Joints))
	for i := range data.Joints {
		b.working[i] = data.Joints[i].Transform
	}
	return b
}

// SetClip binds clip (nil holds the current pose) and restarts the clock.
// The clock length is duration when >= 0, else the clip's duration, else
// zero. The blend toward the new clip takes morphFrames frames.
func (b *MorphBlender) SetClip(clip *JointClip, loop LoopMode, morphFrames, speed, startFrame, duration float32) {
	b.clip = clip

	switch {
	case duration >= 0:
		b.Ctrl.Init(duration)
	case clip != nil:
		b.Ctrl.Init(clip.Duration)
	default:
		b.Ctrl.Init(0)
	}

	if clip != nil && loop < 0 {
		loop = clip.LoopMode
	}
	b.Ctrl.LoopMode = loop
	b.Ctrl.Speed = speed

	if speed >= 0 {
		b.Ctrl.CurrentTime = startFrame
	} else {
		b.Ctrl.CurrentTime = b.Ctrl.EndFrame
	}

	b.SetMorph(morphFrames)
}

// SetMorph starts a blend of the given length. The switch is instantaneous
// right after construction or when frames is not positive.
func (b *MorphBlender) SetMorph(frames float32) {
	if b.morph.phase == morphFresh || frames <= 0 {
		b.morph = morphState{phase: morphSettled, prev: 1, cur: 1, step: b.morph.step}
		return
	}
	b.morph = morphState{phase: morphRamping, prev: 0, cur: 0, step: 1 / frames}
}

// Play advances the blend and the clock by delta frames and reports whether
// the clock stopped on this update.
func (b *MorphBlender) Play(delta float32) bool {
	if b.morph.phase == morphRamping {
		b.morph.prev = b.morph.cur
		b.morph.cur += b.morph.step * delta
		if b.morph.cur >= 1 {
			b.morph.phase = morphSettled
		}
	}

	b.Ctrl.Update(delta)
	return b.Ctrl.HasStopped()
}

// ResolveJoint updates and returns the working transform of joint i for the
// current clock and blend. Each call advances the blend toward the clip, so
// it should run once per joint per frame.
func (b *MorphBlender) ResolveJoint(i int) math.Transform {
	if i < 0 || i >= len(b.working) {
		panic("anim: joint index out of range")
	}
	dst := &b.working[i]

	if b.clip == nil {
		*dst = b.Model.Data.Joints[i].Transform
		b.runHook(b.sampleHook, i, dst)
	} else {
		t0 := b.Ctrl.CurrentTime
		t1 := b.Ctrl.ApplyLoopMode(t0 + 1)

		if b.morph.phase != morphRamping {
			b.sampleJoint(dst, i, t0, t1)
			b.runHook(b.sampleHook, i, dst)
		} else {
			b.runHook(b.sampleHook, i, dst)
			amt := (b.morph.cur - b.morph.prev) / (1 - b.morph.prev)
			if amt > 0 {
				b.sampleJoint(&b.scratch, i, t0, t1)
				*dst = dst.Lerp(b.scratch, amt)
			}
		}
	}

	b.runHook(b.matrixHook, i, dst)
	return *dst
}

// sampleJoint samples joint i from the clip. Joints the clip has no track
// for hold their rest transform, matching the joint player.
func (b *MorphBlender) sampleJoint(dst *math.Transform, i int, t0, t1 float32) {
	if i >= len(b.clip.Joints) {
		*dst = b.Model.Data.Joints[i].Transform
		return
	}
	b.sampler.SampleJoint(dst, b.clip, i, t0, t1)
}

func (b *MorphBlender) runHook(hook JointHook, i int, xf *math.Transform) {
	if hook != nil {
		hook(i, xf)
	}
}

// CalcJointMatrix implements model.JointMatrixCalc.
func (b *MorphBlender) CalcJointMatrix(dst *mgl32.Mat4, data *model.ModelData, jointIndex int, state *model.JointState) {
	xf := b.ResolveJoint(jointIndex)
	model.CalcJointMatrixFromTransform(dst, &xf, data.LoadFlags, &data.Joints[jointIndex], state)
}

// Calc installs the blender as the instance's joint calc and recomputes the
// pose.
func (b *MorphBlender) Calc() {
	b.Model.SetJointCalc(b)
	b.Model.CalcAnim()
}

// Update installs the blender as the instance's joint calc without
// recomputing the pose.
func (b *MorphBlender) Update() {
	b.Model.SetJointCalc(b)
}

// EntryDL submits the blender's instance for drawing.
func (b *MorphBlender) EntryDL(mgr model.RenderInstManager, cam model.Camera, lists model.DrawListSet, hacks *model.RenderHacks, filler model.TextureFiller) {
	model.EntryDL(b.Model, mgr, cam, lists, hacks, filler)
}

// SetSampleHook sets the hook run on each joint right after it is resolved.
func (b *MorphBlender) SetSampleHook(hook JointHook) {
	b.sampleHook = hook
}

// SetMatrixHook sets the hook run on each joint just before it becomes a
// matrix.
func (b *MorphBlender) SetMatrixHook(hook JointHook) {
	b.matrixHook = hook
}

// Clip returns the active clip, or nil.
func (b *MorphBlender) Clip() *JointClip {
	return b.clip
}

// MorphValue returns the blend progress. Values >= 1 mean fully switched.
func (b *MorphBlender) MorphValue() float32 {
	return b.morph.cur
}

// PrevMorphValue returns the blend progress before the last Play, or -1
// before the first clip switch.
func (b *MorphBlender) PrevMorphValue() float32 {
	return b.morph.prev
}

// IsMorphing reports whether a blend is in progress.
func (b *MorphBlender) IsMorphing() bool {
	return b.morph.phase == morphRamping
}

// Controller returns the blender's clock.
func (b *MorphBlender) Controller() *FrameCtrl {
	return &b.Ctrl
}

// Entry installs the blender on inst. The blender only drives its own
// instance; any other inst is left untouched.
func (b *MorphBlender) Entry(inst *model.Instance) {
	if inst == b.Model {
		b.Update()
	}
}

var _ Player = (*MorphBlender)(nil)
