// Package tracker binds a user-selected tracked device to a hardware slot at
// session start and streams per-frame output samples for it.
package tracker

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cadence-vr/headtrack/internal/openvr"
	"github.com/cadence-vr/headtrack/internal/pose"
)

// State is the binding's lifecycle state. Failed and Bound are terminal:
// there is no path back to Unbound, a new Binding is constructed to retry.
type State string

const (
	StateUnbound  State = "unbound"
	StateStarting State = "starting"
	StateBound    State = "bound"
	StateFailed   State = "failed"
)

// Bind-time failure reasons, surfaced to the user by the caller. Per-frame
// conditions (invalid pose, disconnect) are not errors here; they show up as
// skipped frames and throttled diagnostics only.
var (
	ErrRuntimeUnavailable = errors.New("tracking runtime unavailable")
	ErrNoDeviceConnected  = errors.New("no tracked device connected")
	ErrSerialNotFound     = errors.New("no tracked device with the requested serial")
	ErrNotBound           = errors.New("tracker is not bound to a device")
)

// Binding resolves a requested device to a slot index once, at Start, and
// then samples that slot for the rest of its life. It owns only the integer
// index; the hardware resource stays with the session.
type Binding struct {
	session *openvr.Session

	mu    sync.Mutex
	state State
	index int
	err   error // failure reason, set when state == StateFailed
	last  pose.Sample
}

// New creates an unbound tracker over the given session.
func New(session *openvr.Session) *Binding {
	return &Binding{session: session, state: StateUnbound, index: -1}
}

// Start resolves the requested device and transitions to Bound or Failed.
// An empty serial means "first available"; otherwise serial must equal the
// formatted identity string of a currently listed device. Start is valid only
// once, from Unbound.
func (b *Binding) Start(serial string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateUnbound {
		return fmt.Errorf("tracker already started (state %s)", b.state)
	}
	b.state = StateStarting

	var startErr error
	index := -1
	b.session.With(func(c *openvr.Conn) {
		if !c.OK() {
			startErr = fmt.Errorf("%w: %s", ErrRuntimeUnavailable, c.InitErr().Symbol())
			return
		}
		specs := c.Devices()
		if len(specs) == 0 {
			startErr = ErrNoDeviceConnected
			return
		}
		if serial == "" {
			index = specs[0].Index
			return
		}
		if spec, ok := specs.ByIdentity(serial); ok {
			index = spec.Index
			return
		}
		startErr = fmt.Errorf("%w: %q", ErrSerialNotFound, serial)
	})

	if startErr != nil {
		b.state = StateFailed
		b.err = startErr
		return startErr
	}
	b.index = index
	b.state = StateBound
	return nil
}

// SampleFrame samples the bound device once and returns the current output.
// On an invalid or disconnected pose the frame is skipped: the previously
// returned sample comes back unchanged, with no partial overwrite. Outside
// the Bound state it returns ErrNotBound.
func (b *Binding) SampleFrame() (pose.Sample, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateBound {
		return pose.Sample{}, ErrNotBound
	}

	p := b.session.Pose(b.index)
	if p.Valid {
		b.last = pose.FromMatrix(p.Transform)
	}
	return b.last, nil
}

// Recenter resets the seated tracking origin. It never touches the binding's
// state or selected slot, and reports true whenever the command was issued.
func (b *Binding) Recenter() bool {
	return b.session.Recenter()
}

// State returns the binding's current lifecycle state.
func (b *Binding) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Err returns the bind-time failure reason, or nil unless state is Failed.
func (b *Binding) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// DeviceIndex returns the bound hardware slot, or -1 when not bound.
func (b *Binding) DeviceIndex() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.index
}
