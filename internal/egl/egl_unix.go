// SPDX-License-Identifier: Unlicense OR MIT

//go:build !windows

package egl

// Libraries are the names libEGL is loaded under, in order.
var Libraries = []string{"libEGL.so.1", "libEGL.so"}
