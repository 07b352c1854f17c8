// SPDX-License-Identifier: Unlicense OR MIT

package glctx

import "fmt"

// Backend identifies the native interface behind a context.
type Backend uint8

const (
	// None is the state of a released context.
	None Backend = iota
	GLX
	EGL
	// PlatformNative is WGL on Windows.
	PlatformNative
)

func (b Backend) String() string {
	switch b {
	case None:
		return "none"
	case GLX:
		return "glx"
	case EGL:
		return "egl"
	case PlatformNative:
		return "native"
	default:
		return fmt.Sprintf("Backend(%d)", uint8(b))
	}
}

// ParseBackend parses the names printed by Backend.String. The empty
// string and "auto" parse to None, meaning no preference.
func ParseBackend(s string) (Backend, error) {
	switch s {
	case "", "auto":
		return None, nil
	case "glx":
		return GLX, nil
	case "egl":
		return EGL, nil
	case "native", "wgl":
		return PlatformNative, nil
	}
	return None, fmt.Errorf("glctx: unknown backend %q", s)
}
