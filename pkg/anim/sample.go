package anim

import (
	"sort"

	"github.com/Faultbox/jointmorph/pkg/math"
)

// Interpolation selects how a Track fills the time between keys.
type Interpolation uint8

const (
	InterpLinear Interpolation = iota
	InterpStep
)

// Key is one keyframe.
type Key struct {
	Frame float32
	Value float32
}

// Track is a keyframed scalar curve. Keys are sorted by frame.
type Track struct {
	Keys   []Key
	Interp Interpolation
}

// ConstTrack returns a single-key track holding v.
func ConstTrack(v float32) Track {
	return Track{Keys: []Key{{Frame: 0, Value: v}}}
}

// segment finds the keys surrounding t. It returns the same index twice when
// t is outside the keyed range or lands exactly on the last key.
func (tr *Track) segment(t float32) (int, int) {
	n := len(tr.Keys)
	if t <= tr.Keys[0].Frame {
		return 0, 0
	}
	if t >= tr.Keys[n-1].Frame {
		return n - 1, n - 1
	}
	next := sort.Search(n, func(i int) bool { return tr.Keys[i].Frame > t })
	return next - 1, next
}

// Sample evaluates the track at t. Empty tracks return def.
func (tr *Track) Sample(t, def float32) float32 {
	if len(tr.Keys) == 0 {
		return def
	}
	prev, next := tr.segment(t)
	k0, k1 := tr.Keys[prev], tr.Keys[next]
	if prev == next || tr.Interp == InterpStep || k1.Frame == k0.Frame {
		return k0.Value
	}
	f := (t - k0.Frame) / (k1.Frame - k0.Frame)
	return math.Lerp(k0.Value, k1.Value, f)
}

// SampleAngle evaluates a rotation track in radians, taking the shortest way
// around between two keys.
func (tr *Track) SampleAngle(t, def float32) float32 {
	if len(tr.Keys) == 0 {
		return def
	}
	prev, next := tr.segment(t)
	k0, k1 := tr.Keys[prev], tr.Keys[next]
	if prev == next || tr.Interp == InterpStep || k1.Frame == k0.Frame {
		return k0.Value
	}
	f := (t - k0.Frame) / (k1.Frame - k0.Frame)
	return math.Lerp(k0.Value, math.UnwrapAngle(k1.Value, k0.Value), f)
}

// JointSampler turns a clip, a joint and a time into a local transform.
// t1 is the loop-mapped frame after t0 for curve kinds that need a
// bracketing sample.
type JointSampler interface {
	SampleJoint(dst *math.Transform, clip *JointClip, joint int, t0, t1 float32)
}

// LinearSampler samples linear and step tracks. It ignores t1.
type LinearSampler struct{}

// SampleJoint implements JointSampler. Joints beyond the clip's track list
// get the identity transform; players and blenders substitute the rest pose
// before reaching here.
func (LinearSampler) SampleJoint(dst *math.Transform, clip *JointClip, joint int, t0, t1 float32) {
	if joint >= len(clip.Joints) {
		*dst = math.IdentityTransform()
		return
	}
	jt := &clip.Joints[joint]
	for i := 0; i < 3; i++ {
		dst.Scale[i] = jt.Scale[i].Sample(t0, 1)
		dst.Rotation[i] = jt.Rotation[i].SampleAngle(t0, 0)
		dst.Translation[i] = jt.Translation[i].Sample(t0, 0)
	}
}

// DefaultSampler is used by players and blenders built without one.
var DefaultSampler JointSampler = LinearSampler{}
