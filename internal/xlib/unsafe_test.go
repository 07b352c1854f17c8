// SPDX-License-Identifier: Unlicense OR MIT

package xlib

import "unsafe"

func unsafeBytes(p *byte, n int32) []byte {
	return unsafe.Slice(p, n)
}
