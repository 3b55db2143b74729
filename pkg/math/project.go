package math

import "github.com/go-gl/mathgl/mgl32"

// Project transforms a world-space point by clipFromWorld and divides by w,
// returning normalized device coordinates.
func Project(v mgl32.Vec3, clipFromWorld mgl32.Mat4) mgl32.Vec3 {
	c := clipFromWorld.Mul4x1(v.Vec4(1))
	if c[3] != 0 {
		c = c.Mul(1 / c[3])
	}
	return c.Vec3()
}

// ProjectFB projects v into framebuffer space for a width x height
// backbuffer. Z is zeroed.
func ProjectFB(v mgl32.Vec3, clipFromWorld mgl32.Mat4, width, height float32) mgl32.Vec3 {
	p := Project(v, clipFromWorld)
	return mgl32.Vec3{
		(p[0]*0.5 + 0.5) * width,
		(p[1]*0.5 + 0.5) * height,
		0,
	}
}
