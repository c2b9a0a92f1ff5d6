package scene

import (
	"math"

	"github.com/borealis-render/borealis/types"
)

type CameraDirection uint8

const (
	Forward CameraDirection = iota
	Backward
	Left
	Right
)

// A thin-lens camera. The basis vectors derived by Update are the only state
// the kernels read; hosts mutate Position/LookAt/Pitch/Yaw between frames and
// call Update before re-binding the camera.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3
	Pitch    float32
	Yaw      float32

	// Vertical field of view in degrees.
	FOV float32

	// Thin lens parameters. A zero aperture collapses to a pinhole.
	FocalDist float32
	Aperture  float32

	// Adjust the basis so that Y is inverted.
	InvertY bool

	// Derived orthonormal basis, updated via Update.
	forward types.Vec3
	right   types.Vec3
	up      types.Vec3
}

func NewCamera(fov float32) *Camera {
	c := &Camera{
		Position:  types.Vec3{0, 0, 0},
		LookAt:    types.Vec3{0, 0, -1},
		Up:        types.Vec3{0, 1, 0},
		FOV:       fov,
		FocalDist: 1.0,
	}
	c.Update()
	return c
}

// Move the camera towards a direction.
func (c *Camera) Move(dir CameraDirection, speed float32) {
	var delta types.Vec3
	switch dir {
	case Forward:
		delta = c.forward.Mul(speed)
	case Backward:
		delta = c.forward.Mul(-speed)
	case Left:
		delta = c.right.Mul(-speed)
	case Right:
		delta = c.right.Mul(speed)
	}

	c.Position = c.Position.Add(delta)
	c.LookAt = c.LookAt.Add(delta)
	c.Update()
}

// Update camera. Applies any pending pitch/yaw rotation to the view direction
// and rebuilds the lens basis.
func (c *Camera) Update() {
	dir := c.LookAt.Sub(c.Position).Normalize()

	if c.Pitch != 0 || c.Yaw != 0 {
		pitchAxis := dir.Cross(c.Up)
		pitchQuat := types.QuatFromAxisAngle(pitchAxis, c.Pitch)
		yawQuat := types.QuatFromAxisAngle(c.Up, c.Yaw)
		dir = pitchQuat.Mul(yawQuat).Normalize().Rotate(dir).Normalize()
		c.LookAt = c.Position.Add(dir)
		c.Pitch = 0
		c.Yaw = 0
	}

	c.forward = dir
	c.right = dir.Cross(c.Up).Normalize()
	c.up = c.right.Cross(dir).Normalize()
	if c.InvertY {
		c.up = c.up.Mul(-1)
	}
}

// Generate the primary ray for a pixel. The four variates jitter the sample
// position inside the pixel footprint and pick a point on the lens disk; a
// fixed 0.5/0.5/0/0 draw yields the deterministic center ray.
func (c *Camera) PrimaryRay(x, y, frameW, frameH uint32, u1, u2, u3, u4 float32) (types.Vec3, types.Vec3) {
	aspect := float32(frameW) / float32(frameH)
	halfH := float32(math.Tan(float64(c.FOV) * math.Pi / 360.0))
	halfW := halfH * aspect

	px := (float32(x)+u1)/float32(frameW)*2.0 - 1.0
	py := 1.0 - (float32(y)+u2)/float32(frameH)*2.0

	dir := c.forward.
		Add(c.right.Mul(px * halfW)).
		Add(c.up.Mul(py * halfH)).
		Normalize()

	origin := c.Position
	if c.Aperture > 0 {
		focal := origin.Add(dir.Mul(c.FocalDist))
		lx, ly := diskSample(u3, u4)
		origin = origin.
			Add(c.right.Mul(lx * c.Aperture)).
			Add(c.up.Mul(ly * c.Aperture))
		dir = focal.Sub(origin).Normalize()
	}

	return origin, dir
}

// Concentric mapping of the unit square onto the unit disk.
func diskSample(u1, u2 float32) (float32, float32) {
	ox := 2.0*u1 - 1.0
	oy := 2.0*u2 - 1.0
	if ox == 0 && oy == 0 {
		return 0, 0
	}

	var r, theta float32
	if ox*ox > oy*oy {
		r = ox
		theta = (math.Pi / 4.0) * (oy / ox)
	} else {
		r = oy
		theta = (math.Pi / 2.0) - (math.Pi/4.0)*(ox/oy)
	}
	return r * float32(math.Cos(float64(theta))), r * float32(math.Sin(float64(theta)))
}
