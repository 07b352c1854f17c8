// SPDX-License-Identifier: Unlicense OR MIT

//go:build !windows

package xlib

import (
	"unsafe"

	"github.com/ebitengine/purego"
)

func errorCallback() uintptr {
	return purego.NewCallback(func(dpy, ev uintptr) uintptr {
		handleError(dpy, (*ErrorEvent)(unsafe.Pointer(ev)))
		return 0
	})
}
