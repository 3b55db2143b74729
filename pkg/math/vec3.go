// Package math provides the transform and interpolation helpers shared by the
// animation and model packages. Vector and matrix storage is mgl32.
package math

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the tolerance used by the approximate comparisons in this package.
const Epsilon = 1e-4

// One is the unit scale vector.
var One = mgl32.Vec3{1, 1, 1}

// LerpVec3 performs component-wise linear interpolation between a and b.
func LerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return mgl32.Vec3{
		a[0] + t*(b[0]-a[0]),
		a[1] + t*(b[1]-a[1]),
		a[2] + t*(b[2]-a[2]),
	}
}

// Lerp interpolates two scalars.
func Lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}

// ApproxEqualVec3 reports whether every component of a and b is within eps.
func ApproxEqualVec3(a, b mgl32.Vec3, eps float32) bool {
	for i := 0; i < 3; i++ {
		if abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

// Between reports whether v lies strictly between a and b on the given axis
// (in either direction).
func Between(v, a, b float32) bool {
	if a > b {
		a, b = b, a
	}
	return v > a && v < b
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func mod(x, y float32) float32 {
	return float32(gomath.Mod(float64(x), float64(y)))
}
