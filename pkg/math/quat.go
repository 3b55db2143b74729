package math

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// QuatFromEuler builds the quaternion for Euler angles in radians, applied
// X first, then Y, then Z (q = qz * qy * qx).
func QuatFromEuler(e mgl32.Vec3) mgl32.Quat {
	qx := mgl32.QuatRotate(e[0], mgl32.Vec3{1, 0, 0})
	qy := mgl32.QuatRotate(e[1], mgl32.Vec3{0, 1, 0})
	qz := mgl32.QuatRotate(e[2], mgl32.Vec3{0, 0, 1})
	return qz.Mul(qy).Mul(qx).Normalize()
}

// EulerFromQuat is the inverse of QuatFromEuler. Results are in radians.
func EulerFromQuat(q mgl32.Quat) (e mgl32.Vec3) {
	q = q.Normalize()
	x, y, z, w := float64(q.V[0]), float64(q.V[1]), float64(q.V[2]), float64(q.W)

	e[0] = float32(gomath.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y)))

	sinp := 2 * (w*y - z*x)
	if gomath.Abs(sinp) >= 1 {
		e[1] = float32(gomath.Copysign(gomath.Pi/2, sinp))
	} else {
		e[1] = float32(gomath.Asin(sinp))
	}

	e[2] = float32(gomath.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z)))
	return e
}

// UnwrapAngle returns the angle equivalent to a (mod 2π) closest to ref.
func UnwrapAngle(a, ref float32) float32 {
	const twoPi = 2 * gomath.Pi
	for a-ref > gomath.Pi {
		a -= twoPi
	}
	for a-ref < -gomath.Pi {
		a += twoPi
	}
	return a
}
