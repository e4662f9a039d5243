package openvr

import (
	"fmt"

	"github.com/cadence-vr/headtrack/internal/monitoring"
)

// DeviceSpec describes one connected, trackable device at the instant of
// enumeration. Specs are value objects: they hold the slot index, not the
// hardware resource, and are produced fresh on every call.
type DeviceSpec struct {
	Index  int         `json:"index"`
	Class  DeviceClass `json:"class"`
	Model  string      `json:"model"`
	Serial string      `json:"serial"`
}

// String formats the device's identity as shown in the selection dialog and
// matched against the persisted preferred-serial setting.
func (d DeviceSpec) String() string {
	return fmt.Sprintf("<%s> %s [%s]", d.Class, d.Model, d.Serial)
}

// DeviceSpecs is an enumeration result in ascending slot order.
type DeviceSpecs []DeviceSpec

// HMDs returns only head-mounted displays.
func (ds DeviceSpecs) HMDs() DeviceSpecs {
	var out DeviceSpecs
	for _, d := range ds {
		if d.Class == ClassHMD {
			out = append(out, d)
		}
	}
	return out
}

// Controllers returns only controllers.
func (ds DeviceSpecs) Controllers() DeviceSpecs {
	var out DeviceSpecs
	for _, d := range ds {
		if d.Class == ClassController {
			out = append(out, d)
		}
	}
	return out
}

// ByIdentity returns the first device whose formatted identity string equals
// id, or false if none matches.
func (ds DeviceSpecs) ByIdentity(id string) (DeviceSpec, bool) {
	for _, d := range ds {
		if d.String() == id {
			return d, true
		}
	}
	return DeviceSpec{}, false
}

// Devices lists every currently connected, trackable device in ascending
// slot order. Slots classified invalid or as tracking references are skipped,
// as are disconnected slots. A slot whose serial or model property cannot be
// read is skipped with a log line and enumeration continues; a failed slot is
// never an enumeration error. With no hardware the result is empty, not an
// error: "no devices" is the binding's concern, not the enumerator's.
func (c *Conn) Devices() DeviceSpecs {
	if !c.OK() {
		return nil
	}

	var poses [MaxDevices]Pose
	c.s.runtime.DevicePoses(OriginSeated, poses[:])

	var specs DeviceSpecs
	for k := 0; k < MaxDevices; k++ {
		class := c.s.runtime.DeviceClass(k)
		if class == ClassInvalid || class == ClassTrackingReference {
			continue
		}
		if !poses[k].Connected {
			continue
		}

		serial, err := c.s.runtime.StringProperty(k, PropSerialNumber)
		if err != nil {
			monitoring.Logf("openvr: reading serial number failed for slot %d: %v", k, err)
			continue
		}
		model, err := c.s.runtime.StringProperty(k, PropModelNumber)
		if err != nil {
			monitoring.Logf("openvr: reading model number failed for slot %d: %v", k, err)
			continue
		}

		switch class {
		case ClassHMD, ClassController:
		default:
			class = ClassUnknown
		}

		specs = append(specs, DeviceSpec{
			Index:  k,
			Class:  class,
			Model:  model,
			Serial: serial,
		})
	}
	return specs
}
