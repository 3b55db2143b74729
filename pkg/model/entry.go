package model

import "github.com/go-gl/mathgl/mgl32"

// Pass identifies which draw bucket geometry is submitted to.
type Pass int

const (
	PassOpaque Pass = iota
	PassTranslucent
)

// Camera supplies the view transform for render entry.
type Camera interface {
	ViewMatrix() mgl32.Mat4
}

// DrawList is an opaque handle to one ordered draw bucket.
type DrawList interface{}

// DrawListSet is an (opaque, translucent) pair of draw buckets.
type DrawListSet [2]DrawList

// RenderInstManager receives submitted geometry. The concrete renderer lives
// outside this module.
type RenderInstManager interface {
	SetCurrentList(list DrawList)
	Submit(inst *Instance, pass Pass, cam Camera)
}

// TextureFiller binds per-scene textures onto an instance before it draws.
type TextureFiller interface {
	FillExtraTextures(inst *Instance)
}

// RenderHacks are scene-wide render feature toggles.
type RenderHacks struct {
	Changed             bool
	VertexColorsEnabled bool
	TexturesEnabled     bool
}

// DrawOpa submits the opaque geometry of the instance.
func (inst *Instance) DrawOpa(mgr RenderInstManager, cam Camera) {
	mgr.Submit(inst, PassOpaque, cam)
}

// DrawXlu submits the translucent geometry of the instance.
func (inst *Instance) DrawXlu(mgr RenderInstManager, cam Camera) {
	mgr.Submit(inst, PassTranslucent, cam)
}

// EntryDL submits an already posed instance to lists: opaque geometry to
// lists[0], translucent to lists[1]. hacks and filler may be nil.
func EntryDL(inst *Instance, mgr RenderInstManager, cam Camera, lists DrawListSet, hacks *RenderHacks, filler TextureFiller) {
	if !inst.Visible {
		return
	}

	if filler != nil {
		filler.FillExtraTextures(inst)
	}

	if hacks != nil && hacks.Changed {
		inst.SetVertexColorsEnabled(hacks.VertexColorsEnabled)
		inst.SetTexturesEnabled(hacks.TexturesEnabled)
	}

	inst.CalcView(cam.ViewMatrix())

	mgr.SetCurrentList(lists[0])
	inst.DrawOpa(mgr, cam)
	mgr.SetCurrentList(lists[1])
	inst.DrawXlu(mgr, cam)
}

// UpdateDL recomputes the pose, then submits the instance.
func UpdateDL(inst *Instance, mgr RenderInstManager, cam Camera, lists DrawListSet, hacks *RenderHacks, filler TextureFiller) {
	if !inst.Visible {
		return
	}

	inst.CalcAnim()
	EntryDL(inst, mgr, cam, lists, hacks, filler)
}
