// Package formats loads models and animation clips from bundle files: a
// YAML bundle document describing a model and its clips, and glTF files
// whose skin and animations are imported as joints and joint clips.
package formats

import (
	"github.com/pkg/errors"

	"github.com/Faultbox/jointmorph/pkg/anim"
	"github.com/Faultbox/jointmorph/pkg/math"
	"github.com/Faultbox/jointmorph/pkg/model"
)

// Bundle errors.
var (
	ErrUnknownClipKind = errors.New("unknown clip kind")
	ErrUnknownJoint    = errors.New("unknown joint")
	ErrUnknownFormat   = errors.New("unknown bundle format")
	ErrNoModel         = errors.New("bundle has no model")
	ErrDuplicateClip   = errors.New("duplicate clip name")
)

// ClipKind names the resource kind of a clip.
type ClipKind string

const (
	KindJoint      ClipKind = "joint"
	KindTexMtx     ClipKind = "texmtx"
	KindTevReg     ClipKind = "tevreg"
	KindTexNo      ClipKind = "texno"
	KindVisibility ClipKind = "visibility"
)

// KindOf reports the kind of clip, or "" for unknown types.
func KindOf(clip anim.Clip) ClipKind {
	switch clip.(type) {
	case *anim.JointClip:
		return KindJoint
	case *anim.TexMtxClip:
		return KindTexMtx
	case *anim.TevRegClip:
		return KindTevReg
	case *anim.TexNoClip:
		return KindTexNo
	case *anim.VisibilityClip:
		return KindVisibility
	default:
		return ""
	}
}

// Bundle is a model together with the clips authored for it.
type Bundle struct {
	Model *model.ModelData
	Clips []anim.Clip
}

// Clip returns the clip with the given name, or nil.
func (b *Bundle) Clip(name string) anim.Clip {
	for _, c := range b.Clips {
		if c.Header().Name == name {
			return c
		}
	}
	return nil
}

// JointClip returns the joint clip with the given name, or nil.
func (b *Bundle) JointClip(name string) *anim.JointClip {
	jc, _ := b.Clip(name).(*anim.JointClip)
	return jc
}

// JointClips returns every joint clip in bundle order.
func (b *Bundle) JointClips() []*anim.JointClip {
	var out []*anim.JointClip
	for _, c := range b.Clips {
		if jc, ok := c.(*anim.JointClip); ok {
			out = append(out, jc)
		}
	}
	return out
}

func (b *Bundle) addClip(c anim.Clip) error {
	name := c.Header().Name
	if b.Clip(name) != nil {
		return errors.Wrapf(ErrDuplicateClip, "%q", name)
	}
	b.Clips = append(b.Clips, c)
	return nil
}

// restTracks holds xf as constant tracks. Joint clips start from the rest
// pose so components a file leaves unanimated keep their rest value.
func restTracks(xf math.Transform) anim.JointTrack {
	var jt anim.JointTrack
	for c := 0; c < 3; c++ {
		jt.Scale[c] = anim.ConstTrack(xf.Scale[c])
		jt.Rotation[c] = anim.ConstTrack(xf.Rotation[c])
		jt.Translation[c] = anim.ConstTrack(xf.Translation[c])
	}
	return jt
}
