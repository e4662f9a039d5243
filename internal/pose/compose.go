package pose

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Compose builds the 3x4 transform for the given Euler angles (radians) and
// raw, unscaled translation. The rotation is Rz(roll)·Ry(yaw)·Rx(pitch),
// which is the composition ToEuler inverts, so away from the gimbal region
// Compose and ToEuler round-trip. Used by the simulated runtime's motion
// script and by tests that need matrices with known angles.
func Compose(yaw, pitch, roll, tx, ty, tz float64) [3][4]float64 {
	rx := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, math.Cos(pitch), -math.Sin(pitch),
		0, math.Sin(pitch), math.Cos(pitch),
	})
	ry := mat.NewDense(3, 3, []float64{
		math.Cos(yaw), 0, math.Sin(yaw),
		0, 1, 0,
		-math.Sin(yaw), 0, math.Cos(yaw),
	})
	rz := mat.NewDense(3, 3, []float64{
		math.Cos(roll), -math.Sin(roll), 0,
		math.Sin(roll), math.Cos(roll), 0,
		0, 0, 1,
	})

	var r mat.Dense
	r.Mul(rz, ry)
	r.Mul(&r, rx)

	var m [3][4]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = r.At(i, j)
		}
	}
	m[0][3], m[1][3], m[2][3] = tx, ty, tz
	return m
}
