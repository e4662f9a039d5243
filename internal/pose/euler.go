// Package pose converts tracking transforms into the tracker's output frame.
// Everything here is pure math: no hardware access and no locking.
package pose

import "math"

// Scale converts the runtime's translation units into the output frame's
// units. Together with the sign flip on TX in Translation it fixes the
// output convention consumers expect.
const Scale = 10

const radToDeg = 180 / math.Pi

// Sample is the tracker's per-frame output: scaled translation plus Euler
// angles in degrees. Stateless and recomputed every frame.
type Sample struct {
	TX    float64 `json:"tx"`
	TY    float64 `json:"ty"`
	TZ    float64 `json:"tz"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

// ToEuler extracts yaw, pitch and roll in radians from the rotation part of a
// 3x4 transform.
//
// Near pitch = ±90° the extraction degenerates; there is deliberately no
// gimbal-lock handling here. Whatever these atan2 forms produce in that
// region is the documented behaviour, and downstream consumers depend on the
// exact mapping.
func ToEuler(m [3][4]float64) (yaw, pitch, roll float64) {
	yaw = math.Atan2(-m[2][0], math.Sqrt(m[2][1]*m[2][1]+m[2][2]*m[2][2]))
	pitch = math.Atan2(m[2][1], m[2][2])
	roll = math.Atan2(m[1][0], m[0][0])
	return
}

// Translation returns the scaled translation of a 3x4 transform. Only the X
// axis is sign-flipped.
func Translation(m [3][4]float64) (tx, ty, tz float64) {
	tx = -m[0][3] * Scale
	ty = m[1][3] * Scale
	tz = m[2][3] * Scale
	return
}

// FromMatrix derives a full output sample from a 3x4 transform, converting
// angles to degrees.
func FromMatrix(m [3][4]float64) Sample {
	yaw, pitch, roll := ToEuler(m)
	tx, ty, tz := Translation(m)
	return Sample{
		TX:    tx,
		TY:    ty,
		TZ:    tz,
		Yaw:   yaw * radToDeg,
		Pitch: pitch * radToDeg,
		Roll:  roll * radToDeg,
	}
}
