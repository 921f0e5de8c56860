// internal/motion/pose.go
package motion

import (
	"fmt"
	"math/rand"
	"strings"
)

// Pose is a TCP position (mm) and orientation (degrees).
// Poses are values: every transformation returns a new Pose.
type Pose struct {
	X, Y, Z          float64
	Roll, Pitch, Yaw float64
}

// Axis names one component of a Pose.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
	AxisRoll
	AxisPitch
	AxisYaw
)

// NumAxes is the number of pose components.
const NumAxes = 6

var axisNames = [NumAxes]string{"x", "y", "z", "roll", "pitch", "yaw"}

func (a Axis) String() string {
	if a < 0 || int(a) >= NumAxes {
		return fmt.Sprintf("axis(%d)", int(a))
	}
	return axisNames[a]
}

// ParseAxis accepts x, y, z, roll, pitch, yaw (also rx, ry, rz).
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	case "roll", "rx":
		return AxisRoll, nil
	case "pitch", "ry":
		return AxisPitch, nil
	case "yaw", "rz":
		return AxisYaw, nil
	}
	return 0, fmt.Errorf("motion: unknown axis %q", s)
}

// PoseFromSlice builds a Pose from x, y, z, roll, pitch, yaw.
func PoseFromSlice(v []float64) (Pose, error) {
	if len(v) != NumAxes {
		return Pose{}, fmt.Errorf("motion: pose needs %d components, got %d", NumAxes, len(v))
	}
	return Pose{X: v[0], Y: v[1], Z: v[2], Roll: v[3], Pitch: v[4], Yaw: v[5]}, nil
}

// Array returns the components in x, y, z, roll, pitch, yaw order.
func (p Pose) Array() [NumAxes]float64 {
	return [NumAxes]float64{p.X, p.Y, p.Z, p.Roll, p.Pitch, p.Yaw}
}

// Get returns one component.
func (p Pose) Get(a Axis) float64 {
	arr := p.Array()
	return arr[a]
}

// With returns p with one component replaced.
func (p Pose) With(a Axis, v float64) Pose {
	switch a {
	case AxisX:
		p.X = v
	case AxisY:
		p.Y = v
	case AxisZ:
		p.Z = v
	case AxisRoll:
		p.Roll = v
	case AxisPitch:
		p.Pitch = v
	case AxisYaw:
		p.Yaw = v
	}
	return p
}

// Offset returns p with delta added to one component.
func (p Pose) Offset(a Axis, delta float64) Pose {
	return p.With(a, p.Get(a)+delta)
}

// Add returns the component-wise sum.
func (p Pose) Add(o Pose) Pose {
	return Pose{
		X:     p.X + o.X,
		Y:     p.Y + o.Y,
		Z:     p.Z + o.Z,
		Roll:  p.Roll + o.Roll,
		Pitch: p.Pitch + o.Pitch,
		Yaw:   p.Yaw + o.Yaw,
	}
}

func (p Pose) String() string {
	return fmt.Sprintf("[%.3f %.3f %.3f %.3f %.3f %.3f]", p.X, p.Y, p.Z, p.Roll, p.Pitch, p.Yaw)
}

// RandomOffset draws every component independently from [-bound, +bound].
func RandomOffset(rng *rand.Rand, bound float64) Pose {
	var v [NumAxes]float64
	for i := range v {
		v[i] = (rng.Float64()*2 - 1) * bound
	}
	return Pose{X: v[0], Y: v[1], Z: v[2], Roll: v[3], Pitch: v[4], Yaw: v[5]}
}

// Perturb returns p plus a RandomOffset.
func Perturb(p Pose, rng *rand.Rand, bound float64) Pose {
	return p.Add(RandomOffset(rng, bound))
}
