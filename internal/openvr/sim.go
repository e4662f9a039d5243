package openvr

import (
	"math"
	"sync"
	"time"

	"github.com/cadence-vr/headtrack/internal/pose"
)

// SimDevice scripts one slot of the simulated runtime. Property errors can be
// injected per field to exercise the enumerator's skip-and-continue path.
type SimDevice struct {
	Class     DeviceClass
	Model     string
	Serial    string
	Connected bool
	PoseValid bool
	Transform [3][4]float64

	SerialErr error
	ModelErr  error
}

// SimRuntime implements Runtime without hardware. It backs dev mode and the
// package tests: devices are scripted per slot, string-property failures are
// injectable, and call counts are recorded so tests can assert how often the
// hardware surface was touched.
type SimRuntime struct {
	mu      sync.Mutex
	devices map[int]*SimDevice

	poseCalls     int
	recenters     int
	shutdownCalls int

	// animate, when set, rewrites the HMD transform on every pose query.
	animate func(elapsed time.Duration) [3][4]float64
	started time.Time
}

// NewSimRuntime returns an empty simulated runtime. Slots are added with
// SetDevice.
func NewSimRuntime() *SimRuntime {
	return &SimRuntime{devices: make(map[int]*SimDevice)}
}

// SetDevice installs or replaces the device in the given slot.
func (s *SimRuntime) SetDevice(slot int, d SimDevice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dev := d
	s.devices[slot] = &dev
}

// Disconnect flips the connectivity flag of the given slot, simulating a
// device dropping out between enumeration and sampling.
func (s *SimRuntime) Disconnect(slot int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.devices[slot]; ok {
		d.Connected = false
	}
}

// Invalidate marks the slot's pose stale while keeping the device connected.
func (s *SimRuntime) Invalidate(slot int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.devices[slot]; ok {
		d.PoseValid = false
	}
}

// Animate installs a motion script applied to every HMD slot on each pose
// query, with elapsed time measured from now.
func (s *SimRuntime) Animate(fn func(elapsed time.Duration) [3][4]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animate = fn
	s.started = time.Now()
}

// OrbitMotion is the default dev-mode script: a slow yaw sweep with a gentle
// bob, enough to see live numbers move on the debug surfaces.
func OrbitMotion(elapsed time.Duration) [3][4]float64 {
	t := elapsed.Seconds()
	yaw := 0.5 * math.Sin(t/3)
	pitch := 0.1 * math.Sin(t/5)
	return pose.Compose(yaw, pitch, 0, 0.02*math.Sin(t), 0.01*math.Cos(t), 0)
}

// PoseCalls reports how many batched pose queries have been made.
func (s *SimRuntime) PoseCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poseCalls
}

// Recenters reports how many reset-seated-origin commands were issued.
func (s *SimRuntime) Recenters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recenters
}

// ShutdownCalls reports how many times Shutdown was invoked.
func (s *SimRuntime) ShutdownCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdownCalls
}

func (s *SimRuntime) DeviceClass(slot int) DeviceClass {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.devices[slot]; ok {
		return d.Class
	}
	return ClassInvalid
}

func (s *SimRuntime) DevicePoses(origin TrackingOrigin, out []Pose) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poseCalls++
	for i := range out {
		out[i] = Pose{}
	}
	for slot, d := range s.devices {
		if slot < 0 || slot >= len(out) {
			continue
		}
		if s.animate != nil && d.Class == ClassHMD && d.Connected && d.PoseValid {
			d.Transform = s.animate(time.Since(s.started))
		}
		out[slot] = Pose{
			Valid:     d.PoseValid,
			Connected: d.Connected,
			Transform: d.Transform,
		}
	}
}

func (s *SimRuntime) StringProperty(slot int, prop Property) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[slot]
	if !ok {
		return "", nil
	}
	switch prop {
	case PropSerialNumber:
		if d.SerialErr != nil {
			return "", d.SerialErr
		}
		return d.Serial, nil
	case PropModelNumber:
		if d.ModelErr != nil {
			return "", d.ModelErr
		}
		return d.Model, nil
	}
	return "", nil
}

func (s *SimRuntime) ResetSeatedZeroPose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recenters++
}

func (s *SimRuntime) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdownCalls++
}
