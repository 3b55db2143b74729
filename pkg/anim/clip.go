package anim

// ClipHeader is shared by every clip kind.
type ClipHeader struct {
	Name     string
	Duration float32 // frames
	LoopMode LoopMode
}

// Header returns the clip header.
func (h *ClipHeader) Header() *ClipHeader {
	return h
}

// Clip is implemented by every animation resource kind.
type Clip interface {
	Header() *ClipHeader
}

// JointTrack animates one joint. Each component is its own curve.
type JointTrack struct {
	Scale       [3]Track
	Rotation    [3]Track // radians
	Translation [3]Track
}

// JointClip is a skeletal pose animation with one track per joint.
type JointClip struct {
	ClipHeader
	Joints []JointTrack
}

// TexMtxTrack animates one texture matrix of one material.
type TexMtxTrack struct {
	Material     string
	TexMtx       int
	ScaleS       Track
	ScaleT       Track
	Rotation     Track // radians
	TranslationS Track
	TranslationT Track
}

// TexMtxClip animates texture matrices.
type TexMtxClip struct {
	ClipHeader
	Entries []TexMtxTrack
}

// ColorRegister selects which bank of material colors a TevRegTrack writes.
type ColorRegister int

const (
	ColorRegisterTev ColorRegister = iota
	ColorRegisterKonst
)

// TevRegTrack animates one color register of one material.
type TevRegTrack struct {
	Material   string
	Register   ColorRegister
	Index      int
	R, G, B, A Track
}

// TevRegClip animates material color registers.
type TevRegClip struct {
	ClipHeader
	Entries []TevRegTrack
}

// TexNoTrack switches the texture bound to one texture map slot. Keys hold
// texture indices and are always sampled stepwise.
type TexNoTrack struct {
	Material string
	TexMap   int
	Keys     Track
}

// TexNoClip animates texture indices.
type TexNoClip struct {
	ClipHeader
	Entries []TexNoTrack
}

// VisibilityClip holds one visibility value per frame for each shape.
type VisibilityClip struct {
	ClipHeader
	Shapes [][]bool
}

// Visibility returns whether shape is visible at frame t. The frame
// containing t is used; times past either end clamp to the first or last
// frame. Shapes without a track stay visible.
func (c *VisibilityClip) Visibility(shape int, t float32) bool {
	if shape < 0 || shape >= len(c.Shapes) {
		return true
	}
	frames := c.Shapes[shape]
	if len(frames) == 0 {
		return true
	}
	i := int(t)
	if t < 0 {
		i = 0
	}
	if i >= len(frames) {
		i = len(frames) - 1
	}
	return frames[i]
}
