package model

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/jointmorph/pkg/math"
)

// JointState carries scale through the hierarchy while an instance computes
// its joint matrices.
type JointState struct {
	// ParentScale is the accumulated scale of the joint's parent chain.
	ParentScale mgl32.Vec3
	// Scale receives the accumulated scale children of this joint inherit.
	Scale mgl32.Vec3
}

// JointMatrixCalc computes a joint's parent-relative matrix. Instances call
// it once per joint, in joint order, from CalcAnim.
type JointMatrixCalc interface {
	CalcJointMatrix(dst *mgl32.Mat4, data *ModelData, jointIndex int, state *JointState)
}

// CalcJointMatrixFromTransform converts a local transform into the
// parent-relative joint matrix, honouring the model's scaling rule.
func CalcJointMatrixFromTransform(dst *mgl32.Mat4, xf *math.Transform, flags LoadFlags, joint *Joint, state *JointState) {
	compensate := flags.ScalingRule() == ScalingRuleMaya && joint.IgnoreParentScale

	if compensate {
		*dst = math.SRTCompensated(xf.Scale, xf.Rotation, xf.Translation, state.ParentScale)
		state.Scale = xf.Scale
		return
	}

	*dst = math.SRT(xf.Scale, xf.Rotation, xf.Translation)
	state.Scale = mgl32.Vec3{
		state.ParentScale[0] * xf.Scale[0],
		state.ParentScale[1] * xf.Scale[1],
		state.ParentScale[2] * xf.Scale[2],
	}
}

// restPoseCalc poses every joint at its rest transform.
type restPoseCalc struct{}

func (restPoseCalc) CalcJointMatrix(dst *mgl32.Mat4, data *ModelData, jointIndex int, state *JointState) {
	joint := &data.Joints[jointIndex]
	CalcJointMatrixFromTransform(dst, &joint.Transform, data.LoadFlags, joint, state)
}

// RestPose is the joint calc used when nothing drives an instance.
var RestPose JointMatrixCalc = restPoseCalc{}
