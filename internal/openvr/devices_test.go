package openvr

import (
	"errors"
	"fmt"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadence-vr/headtrack/internal/monitoring"
)

// captureLogs redirects the package logger for the duration of the test and
// returns the captured lines.
func captureLogs(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	monitoring.SetLogger(func(format string, v ...any) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	t.Cleanup(func() { monitoring.SetLogger(log.Printf) })
	return &lines
}

func newSessionWith(t *testing.T, devices map[int]SimDevice) (*Session, *SimRuntime) {
	t.Helper()
	sim := NewSimRuntime()
	for slot, d := range devices {
		sim.SetDevice(slot, d)
	}
	return NewSession(func() (Runtime, InitError) { return sim, InitErrorNone }), sim
}

func TestDevicesFiltersSlots(t *testing.T) {
	session, _ := newSessionWith(t, map[int]SimDevice{
		0: {Class: ClassHMD, Model: "Vive MV", Serial: "LHR-001", Connected: true, PoseValid: true},
		1: {Class: ClassTrackingReference, Model: "Base Station", Serial: "BS-1", Connected: true},
		2: {Class: ClassController, Model: "Wand", Serial: "CTL-002", Connected: false},
		4: {Class: ClassController, Model: "Wand", Serial: "CTL-004", Connected: true},
	})

	specs := session.Devices()
	require.Len(t, specs, 2)
	assert.Equal(t, 0, specs[0].Index, "ascending slot order")
	assert.Equal(t, 4, specs[1].Index)
	assert.Equal(t, ClassHMD, specs[0].Class)
	assert.Equal(t, ClassController, specs[1].Class)
}

func TestDevicesSkipsSlotOnPropertyFailure(t *testing.T) {
	lines := captureLogs(t)
	session, _ := newSessionWith(t, map[int]SimDevice{
		0: {Class: ClassHMD, Model: "Vive MV", Serial: "LHR-001", Connected: true,
			SerialErr: errors.New("property timeout")},
		1: {Class: ClassController, Model: "Wand", Serial: "CTL-001", Connected: true,
			ModelErr: errors.New("property timeout")},
		2: {Class: ClassController, Model: "Wand", Serial: "CTL-002", Connected: true},
	})

	specs := session.Devices()
	require.Len(t, specs, 1, "failed slots are skipped, enumeration continues")
	assert.Equal(t, 2, specs[0].Index)
	assert.Len(t, *lines, 2, "one log line per failed slot")
}

func TestDevicesEmptyWhenNothingConnected(t *testing.T) {
	session, _ := newSessionWith(t, nil)
	assert.Empty(t, session.Devices(), "no devices is an empty result, not an error")
}

func TestDevicesFreshPerCall(t *testing.T) {
	session, sim := newSessionWith(t, map[int]SimDevice{
		0: {Class: ClassHMD, Model: "Vive MV", Serial: "LHR-001", Connected: true},
	})

	require.Len(t, session.Devices(), 1)
	sim.Disconnect(0)
	assert.Empty(t, session.Devices(), "enumeration reflects current hardware state")
}

func TestDeviceSpecString(t *testing.T) {
	t.Parallel()

	spec := DeviceSpec{Index: 3, Class: ClassHMD, Model: "Vive MV", Serial: "LHR-12345"}
	assert.Equal(t, "<HMD> Vive MV [LHR-12345]", spec.String())
}

func TestDevicesUnknownClass(t *testing.T) {
	session, _ := newSessionWith(t, map[int]SimDevice{
		0: {Class: ClassUnknown, Model: "Tracker Puck", Serial: "PUCK-1", Connected: true},
	})

	specs := session.Devices()
	require.Len(t, specs, 1)
	assert.Equal(t, "<Unknown> Tracker Puck [PUCK-1]", specs[0].String())
}

func TestDeviceSpecsHelpers(t *testing.T) {
	t.Parallel()

	specs := DeviceSpecs{
		{Index: 0, Class: ClassHMD, Model: "Vive MV", Serial: "LHR-1"},
		{Index: 1, Class: ClassController, Model: "Wand", Serial: "CTL-1"},
		{Index: 2, Class: ClassController, Model: "Wand", Serial: "CTL-2"},
	}

	assert.Len(t, specs.HMDs(), 1)
	assert.Len(t, specs.Controllers(), 2)

	spec, ok := specs.ByIdentity("<Controller> Wand [CTL-2]")
	require.True(t, ok)
	assert.Equal(t, 2, spec.Index)

	_, ok = specs.ByIdentity("<HMD> Gone [NOPE]")
	assert.False(t, ok)
}
