// Package openvr defines the boundary to the positional-tracking runtime and
// owns the process-wide session through which every hardware call is made.
//
// The concrete vendor SDK binding lives outside this repository; it plugs in
// through an InitFunc (see RegisterInit). Everything above the Runtime
// interface is hardware-agnostic and testable against SimRuntime.
package openvr

// MaxDevices is the number of hardware-addressed device slots the runtime
// exposes. Slot indices are stable for the lifetime of the runtime connection.
const MaxDevices = 64

// DeviceClass identifies what kind of tracked device occupies a slot.
type DeviceClass int

const (
	ClassInvalid DeviceClass = iota
	ClassHMD
	ClassController
	ClassTrackingReference
	ClassUnknown
)

// MarshalJSON renders the class as its name rather than its numeric value.
func (c DeviceClass) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

func (c DeviceClass) String() string {
	switch c {
	case ClassHMD:
		return "HMD"
	case ClassController:
		return "Controller"
	case ClassTrackingReference:
		return "TrackingReference"
	case ClassInvalid:
		return "Invalid"
	default:
		return "Unknown"
	}
}

// Property names a per-device string property.
type Property int

const (
	PropSerialNumber Property = iota + 1
	PropModelNumber
)

// TrackingOrigin selects the reference frame poses are reported against.
type TrackingOrigin int

const (
	// OriginSeated is the recentre-able seated zero pose. All sampling in
	// this package is relative to the seated origin.
	OriginSeated TrackingOrigin = iota
	OriginStanding
)

// Pose is one slot of the batched pose query: a 3x4 rigid transform
// (rotation 3x3, translation in the fourth column) plus the hardware's
// validity and connectivity flags. The zero value is an invalid pose.
type Pose struct {
	Valid     bool
	Connected bool
	Transform [3][4]float64
}

// Runtime is the surface the tracking runtime exposes once initialized. The
// underlying API is not reentrant or thread-safe; every call must be made
// while holding the owning Session's lock, which is why the raw Runtime is
// never handed out (see Session.With).
type Runtime interface {
	// DeviceClass reports the class of the device in the given slot.
	DeviceClass(slot int) DeviceClass

	// DevicePoses fills out with the current pose of every slot relative to
	// origin. The API is batch-oriented: there is no per-device query, so
	// every sample pays for all slots.
	DevicePoses(origin TrackingOrigin, out []Pose)

	// StringProperty reads a per-device string property. Each property fetch
	// can fail independently of the rest of the slot.
	StringProperty(slot int, prop Property) (string, error)

	// ResetSeatedZeroPose re-zeroes the seated origin at the device's current
	// pose. Fire-and-forget: the runtime reports no outcome.
	ResetSeatedZeroPose()

	// Shutdown releases the runtime connection. Called exactly once, at
	// process exit, by the Session that owns the handle.
	Shutdown()
}

// InitFunc initializes the tracking runtime. A nil Runtime with a non-zero
// InitError means no hardware is available; the session caches that outcome
// and never retries.
type InitFunc func() (Runtime, InitError)

// SystemInit is the initializer used for real hardware. A vendor SDK adapter
// installs itself here via RegisterInit at program start; without one the
// session reports InitErrorInstallNotFound and the tracker degrades to "no
// hardware available".
var SystemInit InitFunc = func() (Runtime, InitError) {
	return nil, InitErrorInstallNotFound
}

// RegisterInit installs the initializer used by SystemInit. Intended to be
// called from an init function in the vendor adapter package.
func RegisterInit(fn InitFunc) {
	if fn != nil {
		SystemInit = fn
	}
}
