// SPDX-License-Identifier: Unlicense OR MIT

package gl

import (
	"fmt"
	"math/bits"
)

// PixelFormatRequirements constrains the framebuffer configurations a
// backend may choose. Zero bit counts mean "don't care". Hardware
// acceleration is always required.
type PixelFormatRequirements struct {
	ColorBits   uint8
	AlphaBits   uint8
	DepthBits   uint8
	StencilBits uint8
	// Multisampling is the number of samples per pixel, zero to disable.
	// It must be a power of two.
	Multisampling uint16
	SingleBuffer  bool
	Stereo        bool
	SRGB          bool
}

// DefaultPixelFormat returns the requirements used when the caller has
// no preference.
func DefaultPixelFormat() PixelFormatRequirements {
	return PixelFormatRequirements{
		ColorBits:   24,
		AlphaBits:   8,
		DepthBits:   24,
		StencilBits: 8,
	}
}

func (r *PixelFormatRequirements) Validate() error {
	if n := r.Multisampling; n != 0 && bits.OnesCount16(n) != 1 {
		return fmt.Errorf("multisampling must be a power of two, got %d", n)
	}
	return nil
}

// ChannelBits splits ColorBits evenly over red, green and blue.
func (r *PixelFormatRequirements) ChannelBits() (red, green, blue uint8) {
	c := r.ColorBits / 3
	extra := r.ColorBits % 3
	red, green, blue = c, c, c
	if extra > 0 {
		green++
	}
	if extra > 1 {
		red++
	}
	return
}

// PixelFormat describes the framebuffer configuration a context ended
// up with.
type PixelFormat struct {
	HardwareAccelerated bool
	ColorBits           uint8
	AlphaBits           uint8
	DepthBits           uint8
	StencilBits         uint8
	Stereo              bool
	DoubleBuffer        bool
	Multisampling       uint16
	SRGB                bool
}
