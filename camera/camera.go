// Package camera provides an orbit camera for viewing a network in 3D.
package camera

import "math"

// Camera orbits a target point. Yaw turns around the vertical axis and
// pitch tilts toward the poles, both in radians.
type Camera struct {
	// Target is the point looked at, in view coordinates
	TargetX, TargetY, TargetZ float32

	Yaw, Pitch float32

	// Distance from the target
	Distance float32

	// Distance constraints
	MinDistance, MaxDistance float32

	// Auto-orbit speed in radians per second, 0 to stop
	Spin float32

	defaultDistance float32
}

// maxPitch keeps the camera off the poles where the up vector degenerates.
const maxPitch = math.Pi/2 - 0.05

// New creates a camera looking at the origin from distance.
func New(distance float32) *Camera {
	return &Camera{
		Yaw:             math.Pi / 4,
		Pitch:           0.5,
		Distance:        distance,
		MinDistance:     distance / 10,
		MaxDistance:     distance * 10,
		Spin:            0.3,
		defaultDistance: distance,
	}
}

// Position returns the camera eye position.
func (c *Camera) Position() (x, y, z float32) {
	cp := float32(math.Cos(float64(c.Pitch)))
	x = c.TargetX + c.Distance*cp*float32(math.Cos(float64(c.Yaw)))
	y = c.TargetY + c.Distance*float32(math.Sin(float64(c.Pitch)))
	z = c.TargetZ + c.Distance*cp*float32(math.Sin(float64(c.Yaw)))
	return x, y, z
}

// Update advances the auto-orbit by dt seconds.
func (c *Camera) Update(dt float32) {
	c.Yaw = wrapAngle(c.Yaw + c.Spin*dt)
}

// Rotate turns the camera by the given mouse delta in pixels.
// sensitivity is radians per pixel.
func (c *Camera) Rotate(dx, dy, sensitivity float32) {
	c.Yaw = wrapAngle(c.Yaw + dx*sensitivity)
	c.Pitch = clamp(c.Pitch+dy*sensitivity, -maxPitch, maxPitch)
}

// SetDistance sets the distance, clamped to min/max.
func (c *Camera) SetDistance(d float32) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy divides the current distance by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	if factor <= 0 {
		return
	}
	c.SetDistance(c.Distance / factor)
}

// Reset returns the camera to the default orientation and distance.
func (c *Camera) Reset() {
	c.TargetX, c.TargetY, c.TargetZ = 0, 0, 0
	c.Yaw = math.Pi / 4
	c.Pitch = 0.5
	c.Distance = c.defaultDistance
}

func wrapAngle(a float32) float32 {
	const twoPi = 2 * math.Pi
	r := float32(math.Mod(float64(a), twoPi))
	if r < 0 {
		r += twoPi
	}
	return r
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
