package pose

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityMatrix() [3][4]float64 {
	return [3][4]float64{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
	}
}

func TestToEulerIdentity(t *testing.T) {
	t.Parallel()

	yaw, pitch, roll := ToEuler(identityMatrix())
	assert.Zero(t, yaw)
	assert.Zero(t, pitch)
	assert.Zero(t, roll)
}

func TestToEulerRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name             string
		yaw, pitch, roll float64
	}{
		{"small angles", 0.3, 0.2, 0.1},
		{"negative yaw", -0.7, 0.15, -0.25},
		{"yaw only", 1.2, 0, 0},
		{"pitch only", 0, 0.9, 0},
		{"roll only", 0, 0, -1.1},
		{"large combined", 1.4, -0.8, 2.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := Compose(tc.yaw, tc.pitch, tc.roll, 0, 0, 0)
			yaw, pitch, roll := ToEuler(m)
			assert.InDelta(t, tc.yaw, yaw, 1e-9)
			assert.InDelta(t, tc.pitch, pitch, 1e-9)
			assert.InDelta(t, tc.roll, roll, 1e-9)
		})
	}
}

func TestTranslationScaling(t *testing.T) {
	t.Parallel()

	m := identityMatrix()
	m[0][3], m[1][3], m[2][3] = 1, 2, 3

	tx, ty, tz := Translation(m)
	assert.Equal(t, -10.0, tx, "x axis is sign-flipped")
	assert.Equal(t, 20.0, ty)
	assert.Equal(t, 30.0, tz)
}

func TestFromMatrix(t *testing.T) {
	t.Parallel()

	m := Compose(0.5, -0.25, 0.75, 1, 2, 3)
	got := FromMatrix(m)

	want := Sample{
		TX:    -10,
		TY:    20,
		TZ:    30,
		Yaw:   0.5 * 180 / math.Pi,
		Pitch: -0.25 * 180 / math.Pi,
		Roll:  0.75 * 180 / math.Pi,
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("FromMatrix mismatch (-want +got):\n%s", diff)
	}
}

func TestComposeRotationIsOrthonormal(t *testing.T) {
	t.Parallel()

	m := Compose(0.4, 0.3, 0.2, 0, 0, 0)
	for i := 0; i < 3; i++ {
		norm := 0.0
		for j := 0; j < 3; j++ {
			norm += m[i][j] * m[i][j]
		}
		require.InDelta(t, 1.0, norm, 1e-12, "row %d should be unit length", i)
	}
}
