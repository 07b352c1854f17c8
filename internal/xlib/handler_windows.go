// SPDX-License-Identifier: Unlicense OR MIT

package xlib

// There is no Xlib on Windows.
func errorCallback() uintptr {
	return 0
}
