package anim

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/jointmorph/pkg/math"
	"github.com/Faultbox/jointmorph/pkg/model"
)

// JointPlayer plays a JointClip on an instance's skeleton.
type JointPlayer struct {
	BasePlayer[*JointClip]

	// Sampler evaluates the clip. nil uses DefaultSampler.
	Sampler JointSampler
}

// NewJointPlayer returns a player started on clip with opts.
func NewJointPlayer(clip *JointClip, opts PlayOptions) *JointPlayer {
	p := &JointPlayer{}
	p.Start(clip, opts)
	return p
}

// Entry installs the clip as inst's joint calc. The pose is computed from
// the clock at the next CalcAnim.
func (p *JointPlayer) Entry(inst *model.Instance) {
	p.EntryAt(inst, p.Ctrl.CurrentTime)
}

// EntryAt moves the clock to t and installs the clip as inst's joint calc.
func (p *JointPlayer) EntryAt(inst *model.Instance, t float32) {
	p.Ctrl.CurrentTime = t
	sampler := p.Sampler
	if sampler == nil {
		sampler = DefaultSampler
	}
	inst.SetJointCalc(&jointAnimator{clip: p.clip, ctrl: &p.Ctrl, sampler: sampler})
}

// jointAnimator reads the player's clock live, so a clock advanced after
// Entry still drives the next CalcAnim.
type jointAnimator struct {
	clip    *JointClip
	ctrl    *FrameCtrl
	sampler JointSampler
	xf      math.Transform
}

func (a *jointAnimator) CalcJointMatrix(dst *mgl32.Mat4, data *model.ModelData, jointIndex int, state *model.JointState) {
	joint := &data.Joints[jointIndex]
	if jointIndex >= len(a.clip.Joints) {
		model.CalcJointMatrixFromTransform(dst, &joint.Transform, data.LoadFlags, joint, state)
		return
	}

	t0 := a.ctrl.CurrentTime
	t1 := a.ctrl.ApplyLoopMode(t0 + 1)
	a.sampler.SampleJoint(&a.xf, a.clip, jointIndex, t0, t1)
	model.CalcJointMatrixFromTransform(dst, &a.xf, data.LoadFlags, joint, state)
}

// TexMtxPlayer plays a TexMtxClip on an instance's materials.
type TexMtxPlayer struct {
	BasePlayer[*TexMtxClip]
}

// NewTexMtxPlayer returns a player started on clip with opts.
func NewTexMtxPlayer(clip *TexMtxClip, opts PlayOptions) *TexMtxPlayer {
	p := &TexMtxPlayer{}
	p.Start(clip, opts)
	return p
}

// Entry writes the animated texture matrices at the current time.
func (p *TexMtxPlayer) Entry(inst *model.Instance) {
	p.EntryAt(inst, p.Ctrl.CurrentTime)
}

// EntryAt moves the clock to t and writes the animated texture matrices.
// Entries naming a material or matrix the model lacks are skipped.
func (p *TexMtxPlayer) EntryAt(inst *model.Instance, t float32) {
	p.Ctrl.CurrentTime = t
	for i := range p.clip.Entries {
		e := &p.clip.Entries[i]
		mi := inst.Data.MaterialIndex(e.Material)
		if mi < 0 || e.TexMtx < 0 || e.TexMtx >= len(inst.Materials[mi].TexMtx) {
			continue
		}
		s := &inst.Materials[mi].TexMtx[e.TexMtx]
		s.ScaleS = e.ScaleS.Sample(t, s.ScaleS)
		s.ScaleT = e.ScaleT.Sample(t, s.ScaleT)
		s.Rotation = e.Rotation.SampleAngle(t, s.Rotation)
		s.TranslationS = e.TranslationS.Sample(t, s.TranslationS)
		s.TranslationT = e.TranslationT.Sample(t, s.TranslationT)
	}
}

// TevRegPlayer plays a TevRegClip on an instance's material colors.
type TevRegPlayer struct {
	BasePlayer[*TevRegClip]
}

// NewTevRegPlayer returns a player started on clip with opts.
func NewTevRegPlayer(clip *TevRegClip, opts PlayOptions) *TevRegPlayer {
	p := &TevRegPlayer{}
	p.Start(clip, opts)
	return p
}

// Entry writes the animated color registers at the current time.
func (p *TevRegPlayer) Entry(inst *model.Instance) {
	p.EntryAt(inst, p.Ctrl.CurrentTime)
}

// EntryAt moves the clock to t and writes the animated color registers.
func (p *TevRegPlayer) EntryAt(inst *model.Instance, t float32) {
	p.Ctrl.CurrentTime = t
	for i := range p.clip.Entries {
		e := &p.clip.Entries[i]
		mi := inst.Data.MaterialIndex(e.Material)
		if mi < 0 || e.Index < 0 || e.Index > 3 {
			continue
		}
		mat := &inst.Materials[mi]
		c := &mat.TevColors[e.Index]
		if e.Register == ColorRegisterKonst {
			c = &mat.KonstColors[e.Index]
		}
		c[0] = e.R.Sample(t, c[0])
		c[1] = e.G.Sample(t, c[1])
		c[2] = e.B.Sample(t, c[2])
		c[3] = e.A.Sample(t, c[3])
	}
}

// TexNoPlayer plays a TexNoClip on an instance's texture bindings.
type TexNoPlayer struct {
	BasePlayer[*TexNoClip]
}

// NewTexNoPlayer returns a player started on clip with opts.
func NewTexNoPlayer(clip *TexNoClip, opts PlayOptions) *TexNoPlayer {
	p := &TexNoPlayer{}
	p.Start(clip, opts)
	return p
}

// Entry writes the animated texture indices at the current time.
func (p *TexNoPlayer) Entry(inst *model.Instance) {
	p.EntryAt(inst, p.Ctrl.CurrentTime)
}

// EntryAt moves the clock to t and writes the animated texture indices.
func (p *TexNoPlayer) EntryAt(inst *model.Instance, t float32) {
	p.Ctrl.CurrentTime = t
	for i := range p.clip.Entries {
		e := &p.clip.Entries[i]
		mi := inst.Data.MaterialIndex(e.Material)
		if mi < 0 || e.TexMap < 0 || e.TexMap >= len(inst.Materials[mi].TexNo) {
			continue
		}
		texNo := &inst.Materials[mi].TexNo[e.TexMap]
		keys := e.Keys
		keys.Interp = InterpStep
		*texNo = int(keys.Sample(t, float32(*texNo)))
	}
}

// VisibilityPlayer plays a VisibilityClip on an instance's shapes.
type VisibilityPlayer struct {
	BasePlayer[*VisibilityClip]
}

// NewVisibilityPlayer returns a player started on clip with opts.
func NewVisibilityPlayer(clip *VisibilityClip, opts PlayOptions) *VisibilityPlayer {
	p := &VisibilityPlayer{}
	p.Start(clip, opts)
	return p
}

// Entry sets every shape's visibility at the current time.
func (p *VisibilityPlayer) Entry(inst *model.Instance) {
	p.EntryAt(inst, p.Ctrl.CurrentTime)
}

// EntryAt moves the clock to t and sets every shape's visibility.
func (p *VisibilityPlayer) EntryAt(inst *model.Instance, t float32) {
	p.Ctrl.CurrentTime = t
	for i := range inst.Shapes {
		inst.Shapes[i].Visible = p.clip.Visibility(i, t)
	}
}

// NewPlayer returns the player matching clip's kind, or nil for clip types
// it does not know.
func NewPlayer(clip Clip, opts PlayOptions) Player {
	switch c := clip.(type) {
	case *JointClip:
		return NewJointPlayer(c, opts)
	case *TexMtxClip:
		return NewTexMtxPlayer(c, opts)
	case *TevRegClip:
		return NewTevRegPlayer(c, opts)
	case *TexNoClip:
		return NewTexNoPlayer(c, opts)
	case *VisibilityClip:
		return NewVisibilityPlayer(c, opts)
	default:
		return nil
	}
}

var (
	_ Player = (*JointPlayer)(nil)
	_ Player = (*TexMtxPlayer)(nil)
	_ Player = (*TevRegPlayer)(nil)
	_ Player = (*TexNoPlayer)(nil)
	_ Player = (*VisibilityPlayer)(nil)
)
