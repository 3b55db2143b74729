// Package model provides the joint hierarchy a model is posed with, the
// per-instance working state that animation writes into, and the render
// entry points that hand a posed instance to the draw lists.
package model

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/Faultbox/jointmorph/pkg/math"
)

// Model data errors.
var (
	ErrNoJoints           = errors.New("model has no joints")
	ErrInvalidJointParent = errors.New("joint parent must precede the joint")
	ErrUnknownScalingRule = errors.New("unknown scaling rule")
)

// ScalingRule selects how a joint's matrix accounts for its parent's scale.
type ScalingRule uint32

const (
	ScalingRuleBasic ScalingRule = iota
	ScalingRuleSoftimage
	ScalingRuleMaya
)

// String returns the lowercase rule name.
func (r ScalingRule) String() string {
	switch r {
	case ScalingRuleBasic:
		return "basic"
	case ScalingRuleSoftimage:
		return "softimage"
	case ScalingRuleMaya:
		return "maya"
	default:
		return fmt.Sprintf("ScalingRule(%d)", uint32(r))
	}
}

// ParseScalingRule parses a rule name. The empty string is basic.
func ParseScalingRule(s string) (ScalingRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "basic":
		return ScalingRuleBasic, nil
	case "softimage", "xsi":
		return ScalingRuleSoftimage, nil
	case "maya":
		return ScalingRuleMaya, nil
	default:
		return 0, errors.Wrapf(ErrUnknownScalingRule, "%q", s)
	}
}

// LoadFlags holds model-wide flags. Bits 0-3 carry the scaling rule.
type LoadFlags uint32

const (
	scalingRuleMask  LoadFlags = 0x0F
	scalingRuleShift           = 0
)

// ScalingRule extracts the scaling rule from the flags.
func (f LoadFlags) ScalingRule() ScalingRule {
	return ScalingRule((f >> scalingRuleShift) & scalingRuleMask)
}

// WithScalingRule returns f with its scaling rule replaced.
func (f LoadFlags) WithScalingRule(r ScalingRule) LoadFlags {
	return (f &^ (scalingRuleMask << scalingRuleShift)) | LoadFlags(r)<<scalingRuleShift
}

// Joint is one node of the static skeleton.
type Joint struct {
	Name   string
	Parent int // -1 for roots

	// Transform is the rest pose, relative to the parent.
	Transform math.Transform

	// IgnoreParentScale enables segment scale compensation under the
	// Maya scaling rule.
	IgnoreParentScale bool
}

// MaterialData describes the animatable slots of one material.
type MaterialData struct {
	Name        string
	TexMtxCount int
	TexMapCount int
}

// ModelData is the static, shareable part of a model. Joints are ordered so
// every parent comes before its children.
type ModelData struct {
	Name       string
	LoadFlags  LoadFlags
	Joints     []Joint
	ShapeCount int
	Materials  []MaterialData
}

// Validate checks the joint ordering invariant.
func (d *ModelData) Validate() error {
	if len(d.Joints) == 0 {
		return ErrNoJoints
	}
	for i := range d.Joints {
		p := d.Joints[i].Parent
		if p >= i || p < -1 {
			return errors.Wrapf(ErrInvalidJointParent, "joint %d (%s) has parent %d", i, d.Joints[i].Name, p)
		}
	}
	return nil
}

// JointIndex returns the index of the named joint, or -1.
func (d *ModelData) JointIndex(name string) int {
	for i := range d.Joints {
		if d.Joints[i].Name == name {
			return i
		}
	}
	return -1
}

// MaterialIndex returns the index of the named material, or -1.
func (d *ModelData) MaterialIndex(name string) int {
	for i := range d.Materials {
		if d.Materials[i].Name == name {
			return i
		}
	}
	return -1
}
