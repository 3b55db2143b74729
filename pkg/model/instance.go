package model

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/jointmorph/pkg/math"
)

// ShapeInstance is the per-instance state of one drawable sub-part.
type ShapeInstance struct {
	Visible bool
}

// TexMtxState is an animated texture matrix in S/T space.
type TexMtxState struct {
	ScaleS, ScaleT             float32
	Rotation                   float32 // radians
	TranslationS, TranslationT float32
}

// Matrix returns translate * rotate * scale as a 3x3 homogeneous 2D matrix.
func (s TexMtxState) Matrix() mgl32.Mat3 {
	return mgl32.Translate2D(s.TranslationS, s.TranslationT).
		Mul3(mgl32.HomogRotate2D(s.Rotation)).
		Mul3(mgl32.Scale2D(s.ScaleS, s.ScaleT))
}

// MaterialInstance is the animatable state of one material.
type MaterialInstance struct {
	TexMtx      []TexMtxState
	TevColors   [4]mgl32.Vec4
	KonstColors [4]mgl32.Vec4
	TexNo       []int
}

// Instance is a posed copy of a model. It is driven by exactly one player or
// blender at a time.
type Instance struct {
	Data *ModelData

	// Visible gates render entry.
	Visible bool

	// BaseMatrix positions the instance root in the world.
	BaseMatrix mgl32.Mat4

	Shapes    []ShapeInstance
	Materials []MaterialInstance

	VertexColorsEnabled bool
	TexturesEnabled     bool

	jointCalc     JointMatrixCalc
	jointMatrices []mgl32.Mat4
	worldMatrices []mgl32.Mat4
	viewMatrices  []mgl32.Mat4
	jointScales   []mgl32.Vec3
}

// NewInstance creates an instance in rest pose. data must satisfy Validate.
func NewInstance(data *ModelData) *Instance {
	n := len(data.Joints)
	inst := &Instance{
		Data:                data,
		Visible:             true,
		BaseMatrix:          mgl32.Ident4(),
		Shapes:              make([]ShapeInstance, data.ShapeCount),
		Materials:           make([]MaterialInstance, len(data.Materials)),
		VertexColorsEnabled: true,
		TexturesEnabled:     true,
		jointCalc:           RestPose,
		jointMatrices:       make([]mgl32.Mat4, n),
		worldMatrices:       make([]mgl32.Mat4, n),
		viewMatrices:        make([]mgl32.Mat4, n),
		jointScales:         make([]mgl32.Vec3, n),
	}
	for i := range inst.Shapes {
		inst.Shapes[i].Visible = true
	}
	for i, md := range data.Materials {
		mi := &inst.Materials[i]
		mi.TexMtx = make([]TexMtxState, md.TexMtxCount)
		for j := range mi.TexMtx {
			mi.TexMtx[j] = TexMtxState{ScaleS: 1, ScaleT: 1}
		}
		mi.TexNo = make([]int, md.TexMapCount)
		for j := range mi.TexNo {
			mi.TexNo[j] = j
		}
		for j := range mi.TevColors {
			mi.TevColors[j] = mgl32.Vec4{1, 1, 1, 1}
			mi.KonstColors[j] = mgl32.Vec4{1, 1, 1, 1}
		}
	}
	for i := 0; i < n; i++ {
		inst.jointMatrices[i] = mgl32.Ident4()
		inst.worldMatrices[i] = mgl32.Ident4()
		inst.viewMatrices[i] = mgl32.Ident4()
		inst.jointScales[i] = math.One
	}
	return inst
}

// JointCount returns the number of joints.
func (inst *Instance) JointCount() int {
	return len(inst.Data.Joints)
}

// SetJointCalc installs the resolver CalcAnim uses. nil restores the rest pose.
func (inst *Instance) SetJointCalc(calc JointMatrixCalc) {
	if calc == nil {
		calc = RestPose
	}
	inst.jointCalc = calc
}

// JointCalc returns the installed resolver.
func (inst *Instance) JointCalc() JointMatrixCalc {
	return inst.jointCalc
}

// CalcAnim recomputes every joint's local and world matrix.
func (inst *Instance) CalcAnim() {
	data := inst.Data
	for i := range data.Joints {
		parent := data.Joints[i].Parent

		state := JointState{ParentScale: math.One}
		if parent >= 0 {
			state.ParentScale = inst.jointScales[parent]
		}

		inst.jointCalc.CalcJointMatrix(&inst.jointMatrices[i], data, i, &state)
		inst.jointScales[i] = state.Scale

		if parent >= 0 {
			inst.worldMatrices[i] = inst.worldMatrices[parent].Mul4(inst.jointMatrices[i])
		} else {
			inst.worldMatrices[i] = inst.BaseMatrix.Mul4(inst.jointMatrices[i])
		}
	}
}

// JointMatrix returns the parent-relative matrix computed by the last CalcAnim.
func (inst *Instance) JointMatrix(i int) mgl32.Mat4 {
	inst.checkJoint(i)
	return inst.jointMatrices[i]
}

// WorldMatrix returns the world matrix computed by the last CalcAnim.
func (inst *Instance) WorldMatrix(i int) mgl32.Mat4 {
	inst.checkJoint(i)
	return inst.worldMatrices[i]
}

// ViewMatrix returns the view-space matrix computed by the last CalcView.
func (inst *Instance) ViewMatrix(i int) mgl32.Mat4 {
	inst.checkJoint(i)
	return inst.viewMatrices[i]
}

// JointPosition returns the world-space origin of joint i.
func (inst *Instance) JointPosition(i int) mgl32.Vec3 {
	return math.TransformPoint(inst.WorldMatrix(i), mgl32.Vec3{})
}

// CalcView computes view-space joint matrices for the given view matrix.
func (inst *Instance) CalcView(viewMatrix mgl32.Mat4) {
	for i := range inst.worldMatrices {
		inst.viewMatrices[i] = viewMatrix.Mul4(inst.worldMatrices[i])
	}
}

// SetVertexColorsEnabled toggles vertex colors for every material.
func (inst *Instance) SetVertexColorsEnabled(v bool) {
	inst.VertexColorsEnabled = v
}

// SetTexturesEnabled toggles texturing for every material.
func (inst *Instance) SetTexturesEnabled(v bool) {
	inst.TexturesEnabled = v
}

func (inst *Instance) checkJoint(i int) {
	if i < 0 || i >= len(inst.Data.Joints) {
		panic(fmt.Sprintf("model: joint index %d out of range [0,%d)", i, len(inst.Data.Joints)))
	}
}
