// SPDX-License-Identifier: Unlicense OR MIT

package glx

import (
	"errors"
	"fmt"
	"unsafe"

	"gioui.org/glctx/internal/gl"
	"gioui.org/glctx/internal/xlib"
)

// Config is a negotiated framebuffer configuration together with the
// X visual windows must be created with.
type Config struct {
	FBConfig FBConfig
	Visual   xlib.VisualInfo
	Format   gl.PixelFormat
	Screen   int32
}

var ErrNoConfig = errors.New("glx: no framebuffer configuration matches")

func configAttribs(pf *gl.PixelFormatRequirements, srgb bool) []int32 {
	r, g, b := pf.ChannelBits()
	attribs := []int32{
		_GLX_X_RENDERABLE, 1,
		_GLX_DRAWABLE_TYPE, _GLX_WINDOW_BIT,
		_GLX_RENDER_TYPE, _GLX_RGBA_BIT,
		_GLX_X_VISUAL_TYPE, _GLX_TRUE_COLOR,
		_GLX_CONFIG_CAVEAT, _GLX_NONE,
		_GLX_RED_SIZE, int32(r),
		_GLX_GREEN_SIZE, int32(g),
		_GLX_BLUE_SIZE, int32(b),
		_GLX_ALPHA_SIZE, int32(pf.AlphaBits),
		_GLX_DEPTH_SIZE, int32(pf.DepthBits),
		_GLX_STENCIL_SIZE, int32(pf.StencilBits),
	}
	if pf.SingleBuffer {
		attribs = append(attribs, _GLX_DOUBLEBUFFER, 0)
	} else {
		attribs = append(attribs, _GLX_DOUBLEBUFFER, 1)
	}
	if pf.Stereo {
		attribs = append(attribs, _GLX_STEREO, 1)
	}
	if n := pf.Multisampling; n > 0 {
		attribs = append(attribs, _GLX_SAMPLE_BUFFERS, 1, _GLX_SAMPLES, int32(n))
	}
	if srgb {
		attribs = append(attribs, _GLX_FRAMEBUFFER_SRGB_ARB, 1)
	}
	return append(attribs, attribEnd)
}

// ChooseConfig picks the first framebuffer configuration on screen that
// satisfies pf and carries an X visual.
func ChooseConfig(f *Funcs, c *xlib.Conn, screen int32, pf *gl.PixelFormatRequirements) (Config, error) {
	if c.Closed() {
		return Config{}, xlib.ErrClosed
	}
	exts := f.extensions(c, screen)
	if pf.SRGB && !hasExtension(exts, "GLX_ARB_framebuffer_sRGB") && !hasExtension(exts, "GLX_EXT_framebuffer_sRGB") {
		return Config{}, fmt.Errorf("%w: sRGB framebuffers", gl.ErrUnsupported)
	}
	attribs := configAttribs(pf, pf.SRGB)
	var n int32
	cfgs := f.ChooseFBConfig(c.Handle(), screen, &attribs[0], &n)
	if cfgs != nil {
		defer c.Funcs().Free(unsafe.Pointer(cfgs))
	}
	if err := c.CheckErrors(); err != nil {
		return Config{}, fmt.Errorf("glXChooseFBConfig: %w", err)
	}
	if cfgs == nil || n <= 0 {
		return Config{}, ErrNoConfig
	}
	for _, fb := range unsafe.Slice(cfgs, n) {
		vi, ok := xlib.CopyVisual(c, f.GetVisualFromFBConfig(c.Handle(), fb))
		if !ok {
			continue
		}
		return Config{
			FBConfig: fb,
			Visual:   vi,
			Format:   f.describe(c, fb),
			Screen:   screen,
		}, nil
	}
	return Config{}, fmt.Errorf("%w: %d configurations but none with a visual", ErrNoConfig, n)
}

func (f *Funcs) describe(c *xlib.Conn, fb FBConfig) gl.PixelFormat {
	attr := func(a int32) int32 {
		var v int32
		f.GetFBConfigAttrib(c.Handle(), fb, a, &v)
		return v
	}
	pf := gl.PixelFormat{
		HardwareAccelerated: attr(_GLX_CONFIG_CAVEAT) != _GLX_SLOW_CONFIG,
		ColorBits:           uint8(attr(_GLX_RED_SIZE) + attr(_GLX_GREEN_SIZE) + attr(_GLX_BLUE_SIZE)),
		AlphaBits:           uint8(attr(_GLX_ALPHA_SIZE)),
		DepthBits:           uint8(attr(_GLX_DEPTH_SIZE)),
		StencilBits:         uint8(attr(_GLX_STENCIL_SIZE)),
		Stereo:              attr(_GLX_STEREO) != 0,
		DoubleBuffer:        attr(_GLX_DOUBLEBUFFER) != 0,
		SRGB:                attr(_GLX_FRAMEBUFFER_SRGB_ARB) != 0,
	}
	if attr(_GLX_SAMPLE_BUFFERS) != 0 {
		pf.Multisampling = uint16(attr(_GLX_SAMPLES))
	}
	return pf
}
