package openvr

import "github.com/cadence-vr/headtrack/internal/monitoring"

// poseCondition captures why a sample came back unusable. The sampler logs a
// diagnostic only when the condition differs from the previous one, so a
// device that stays disconnected produces one line, not one per frame.
type poseCondition struct {
	slot      int
	valid     bool
	connected bool
}

// Pose samples the current pose of the device in the given slot, relative to
// the seated origin. An out-of-range slot returns an invalid pose without
// touching hardware, as does a session with no runtime. The result is valid
// only when the hardware reports both the validity and connectivity flags;
// anything else yields the zero Pose.
func (c *Conn) Pose(slot int) Pose {
	if slot < 0 || slot >= MaxDevices {
		return Pose{}
	}
	if !c.OK() {
		return Pose{}
	}

	// The runtime only offers the batched all-slots query; fetch everything
	// and pick out the requested entry.
	var poses [MaxDevices]Pose
	c.s.runtime.DevicePoses(OriginSeated, poses[:])

	p := poses[slot]
	if p.Valid && p.Connected {
		c.notePoseCondition(poseCondition{slot: slot, valid: true, connected: true}, false)
		return p
	}

	c.notePoseCondition(poseCondition{slot: slot, valid: p.Valid, connected: p.Connected}, true)
	return Pose{}
}

func (c *Conn) notePoseCondition(cond poseCondition, emit bool) {
	if c.s.lastPoseCond != nil && *c.s.lastPoseCond == cond {
		return
	}
	c.s.lastPoseCond = &cond
	if emit {
		monitoring.Logf("openvr: no usable pose from slot %d: valid=%t connected=%t",
			cond.slot, cond.valid, cond.connected)
	}
}
