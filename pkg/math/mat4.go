package math

import "github.com/go-gl/mathgl/mgl32"

// RotationMat4 returns Rz * Ry * Rx for Euler angles in radians.
func RotationMat4(e mgl32.Vec3) mgl32.Mat4 {
	return mgl32.HomogRotate3DZ(e[2]).
		Mul4(mgl32.HomogRotate3DY(e[1])).
		Mul4(mgl32.HomogRotate3DX(e[0]))
}

// SRT composes translation * rotation * scale.
func SRT(scale, rotation, translation mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(translation[0], translation[1], translation[2]).
		Mul4(RotationMat4(rotation)).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}

// SRTCompensated composes T * inverse(parentScale) * R * S. A zero parent
// scale component is treated as one so the result stays finite.
func SRTCompensated(scale, rotation, translation, parentScale mgl32.Vec3) mgl32.Mat4 {
	inv := mgl32.Vec3{1, 1, 1}
	for i := 0; i < 3; i++ {
		if parentScale[i] != 0 {
			inv[i] = 1 / parentScale[i]
		}
	}
	return mgl32.Translate3D(translation[0], translation[1], translation[2]).
		Mul4(mgl32.Scale3D(inv[0], inv[1], inv[2])).
		Mul4(RotationMat4(rotation)).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}

// TransformPoint transforms p by m (w = 1).
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}
