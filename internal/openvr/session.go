package openvr

import (
	"sync"

	"github.com/cadence-vr/headtrack/internal/monitoring"
)

// Session owns the process-wide runtime handle. Initialization is lazy and
// happens at most once: the first caller through With triggers it, and the
// outcome (success or failure) is cached for the life of the process. The
// same mutex that guards initialization guards every hardware call, because
// the underlying runtime API is not thread-safe.
type Session struct {
	mu   sync.Mutex
	init InitFunc

	attempted bool
	runtime   Runtime // non-nil iff initialization succeeded and not yet closed
	initErr   InitError

	closeOnce sync.Once
	closed    bool

	// lastPoseCond throttles invalid-pose diagnostics: one log line per
	// distinct (slot, flags) condition, not one per frame.
	lastPoseCond *poseCondition
}

// NewSession creates a session that will initialize the runtime with init on
// first use. Pass SystemInit for real hardware.
func NewSession(init InitFunc) *Session {
	return &Session{init: init}
}

// Conn is a locked view of the session, valid only for the duration of the
// With callback that produced it. All hardware operations are methods on
// Conn, so code already inside With never re-acquires the session lock;
// nested enumeration and sampling compose without deadlock. Conn must not be
// retained after the callback returns.
type Conn struct {
	s *Session
}

// With acquires the session lock, ensures the runtime has been initialized
// (attempting it exactly once per process), and invokes fn with a locked
// connection. This is the only path to the hardware; the raw Runtime never
// escapes the lock scope.
func (s *Session) With(fn func(c *Conn)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureInitLocked()
	fn(&Conn{s: s})
}

func (s *Session) ensureInitLocked() {
	if s.attempted || s.closed {
		return
	}
	s.attempted = true
	s.runtime, s.initErr = s.init()
	if s.runtime == nil {
		if s.initErr == InitErrorNone {
			s.initErr = InitErrorUnknown
		}
		monitoring.Logf("openvr: init failure: %s", s.initErr.Symbol())
	}
}

// Close shuts the runtime down. Safe to call multiple times; only the first
// call releases the handle. After Close the session behaves as if no hardware
// were available: With still runs callbacks, but Conn.OK reports false.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
		if s.runtime != nil {
			s.runtime.Shutdown()
			s.runtime = nil
		}
	})
}

// OK reports whether the runtime handle is live. When false, every hardware
// operation on the connection is a no-op returning empty results.
func (c *Conn) OK() bool { return c.s.runtime != nil }

// InitErr returns the cached initialization error code. Meaningful when OK
// is false; InitErrorNone otherwise.
func (c *Conn) InitErr() InitError {
	if c.s.runtime != nil {
		return InitErrorNone
	}
	if !c.s.attempted {
		return InitErrorUnknown
	}
	return c.s.initErr
}

// Devices enumerates trackable devices under the session lock. Convenience
// wrapper for callers not already inside With (the device-selection dialog).
func (s *Session) Devices() DeviceSpecs {
	var specs DeviceSpecs
	s.With(func(c *Conn) { specs = c.Devices() })
	return specs
}

// Pose samples the device in the given slot under the session lock.
func (s *Session) Pose(slot int) Pose {
	var p Pose
	s.With(func(c *Conn) { p = c.Pose(slot) })
	return p
}

// Recenter resets the seated tracking origin under the session lock. It
// reports true whenever the command was issued, regardless of hardware
// outcome: the underlying call is fire-and-forget.
func (s *Session) Recenter() bool {
	var ok bool
	s.With(func(c *Conn) { ok = c.Recenter() })
	return ok
}

// Recenter issues the reset-seated-origin command if the runtime is live.
func (c *Conn) Recenter() bool {
	if c.OK() {
		c.s.runtime.ResetSeatedZeroPose()
	}
	return true
}
