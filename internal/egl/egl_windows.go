// SPDX-License-Identifier: Unlicense OR MIT

package egl

import "unsafe"

// Libraries are the names libEGL is loaded under, in order. ANGLE ships
// libEGL.dll; the ATI drivers provide an EGL implementation in their
// OpenGL DLLs.
var Libraries = []string{"libEGL.dll", atiDLL()}

func atiDLL() string {
	if unsafe.Sizeof(uintptr(0)) == 8 {
		return "atio6axx.dll"
	}
	return "atioglxx.dll"
}
