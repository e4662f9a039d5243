package openvr

import "fmt"

// InitError is the runtime's initialization error code. Zero means success.
type InitError int

const (
	InitErrorNone            InitError = 0
	InitErrorUnknown         InitError = 1
	InitErrorInstallNotFound InitError = 100
	InitErrorNotInstalled    InitError = 101
	InitErrorNoServer        InitError = 102
	InitErrorConnectFailed   InitError = 103
	InitErrorHmdNotFound     InitError = 108
)

// Symbol returns the runtime's diagnostic symbol for the code. This is the
// string surfaced to the user when the binding fails with RuntimeUnavailable.
func (e InitError) Symbol() string {
	switch e {
	case InitErrorNone:
		return "Init_None"
	case InitErrorInstallNotFound:
		return "Init_InstallationNotFound"
	case InitErrorNotInstalled:
		return "Init_RuntimeNotInstalled"
	case InitErrorNoServer:
		return "Init_NoServerForBackgroundApp"
	case InitErrorConnectFailed:
		return "Init_VRServiceConnectFailed"
	case InitErrorHmdNotFound:
		return "Init_HmdNotFound"
	case InitErrorUnknown:
		return "Init_Unknown"
	default:
		return fmt.Sprintf("Init_Error(%d)", int(e))
	}
}

func (e InitError) String() string { return e.Symbol() }
