package math

import "github.com/go-gl/mathgl/mgl32"

// Transform is a joint's local scale, rotation and translation. Rotation is
// stored as Euler angles in radians (X, Y, Z) and is interpolated
// component-wise, never spherically.
type Transform struct {
	Scale       mgl32.Vec3
	Rotation    mgl32.Vec3
	Translation mgl32.Vec3
}

// IdentityTransform returns unit scale, no rotation and no translation.
func IdentityTransform() Transform {
	return Transform{Scale: One}
}

// Lerp returns a + (b - a) * t on every component.
func (a Transform) Lerp(b Transform, t float32) Transform {
	return Transform{
		Scale:       LerpVec3(a.Scale, b.Scale, t),
		Rotation:    LerpVec3(a.Rotation, b.Rotation, t),
		Translation: LerpVec3(a.Translation, b.Translation, t),
	}
}

// Matrix returns the T * R * S matrix for the transform.
func (a Transform) Matrix() mgl32.Mat4 {
	return SRT(a.Scale, a.Rotation, a.Translation)
}

// ApproxEqual reports whether all components are within eps.
func (a Transform) ApproxEqual(b Transform, eps float32) bool {
	return ApproxEqualVec3(a.Scale, b.Scale, eps) &&
		ApproxEqualVec3(a.Rotation, b.Rotation, eps) &&
		ApproxEqualVec3(a.Translation, b.Translation, eps)
}
