// SPDX-License-Identifier: Unlicense OR MIT

package wgl

import (
	"errors"
	"fmt"

	"gioui.org/glctx/internal/gl"
	"gioui.org/glctx/internal/log"
)

var (
	ErrNoPixelFormat = errors.New("wgl: no pixel format matches")
	ErrConsumed      = errors.New("wgl: prototype already used")
)

// Prototype is a pixel format chosen for a device context, not yet set
// on it.
type Prototype struct {
	f      *Funcs
	hdc    HDC
	index  int32
	pfd    PixelFormatDescriptor
	attrs  gl.Attributes
	format gl.PixelFormat
	done   bool
}

// NewPrototype chooses a hardware accelerated pixel format for hdc.
func NewPrototype(f *Funcs, hdc HDC, pf *gl.PixelFormatRequirements, attrs *gl.Attributes) (*Prototype, error) {
	if !attrs.Request.WantsDesktop() {
		return nil, fmt.Errorf("%w: WGL only provides desktop OpenGL", gl.ErrUnsupported)
	}
	if pf.SRGB || pf.Multisampling > 0 {
		return nil, fmt.Errorf("%w: sRGB and multisampling need WGL_ARB_pixel_format", gl.ErrUnsupported)
	}
	want := descriptor(pf)
	index := f.ChoosePixelFormat(hdc, &want)
	if index == 0 {
		return nil, ErrNoPixelFormat
	}
	p := &Prototype{f: f, hdc: hdc, index: index, attrs: *attrs}
	if f.DescribePixelFormat(hdc, index, descriptorSize(), &p.pfd) == 0 {
		return nil, f.fail("DescribePixelFormat")
	}
	flags := p.pfd.Flags
	if flags&PFD_GENERIC_FORMAT != 0 && flags&PFD_GENERIC_ACCELERATED == 0 {
		return nil, ErrSoftware
	}
	p.format = gl.PixelFormat{
		HardwareAccelerated: true,
		ColorBits:           p.pfd.RedBits + p.pfd.GreenBits + p.pfd.BlueBits,
		AlphaBits:           p.pfd.AlphaBits,
		DepthBits:           p.pfd.DepthBits,
		StencilBits:         p.pfd.StencilBits,
		Stereo:              flags&PFD_STEREO != 0,
		DoubleBuffer:        flags&PFD_DOUBLEBUFFER != 0,
	}
	return p, nil
}

func descriptor(pf *gl.PixelFormatRequirements) PixelFormatDescriptor {
	d := PixelFormatDescriptor{
		Size:        uint16(descriptorSize()),
		Version:     1,
		Flags:       PFD_DRAW_TO_WINDOW | PFD_SUPPORT_OPENGL | PFD_DOUBLEBUFFER,
		PixelType:   PFD_TYPE_RGBA,
		ColorBits:   pf.ColorBits,
		AlphaBits:   pf.AlphaBits,
		DepthBits:   pf.DepthBits,
		StencilBits: pf.StencilBits,
		LayerType:   PFD_MAIN_PLANE,
	}
	if pf.SingleBuffer {
		d.Flags &^= PFD_DOUBLEBUFFER
	}
	if pf.Stereo {
		d.Flags |= PFD_STEREO
	} else {
		d.Flags |= PFD_STEREO_DONTCARE
	}
	return d
}

func (p *Prototype) PixelFormat() gl.PixelFormat {
	return p.format
}

// Index returns the chosen pixel format index.
func (p *Prototype) Index() int32 {
	return p.index
}

// Release discards an unused prototype. There is nothing to free.
func (p *Prototype) Release() {
	p.done = true
}

// NewContext sets the pixel format on the device context and creates a
// context for it, sharing objects with share if non-nil.
func (p *Prototype) NewContext(share *Context) (*Context, error) {
	if p.done {
		return nil, ErrConsumed
	}
	p.done = true
	f := p.f
	switch cur := f.GetPixelFormat(p.hdc); cur {
	case 0:
		if f.SetPixelFormat(p.hdc, p.index, &p.pfd) == 0 {
			return nil, f.fail("SetPixelFormat")
		}
	case p.index:
	default:
		return nil, fmt.Errorf("wgl: window already has pixel format %d, want %d", cur, p.index)
	}
	legacy := f.CreateContext(p.hdc)
	if legacy == 0 {
		return nil, f.fail("wglCreateContext")
	}
	c := &Context{f: f, hdc: p.hdc, ctx: legacy, format: p.format}
	if p.needsARB() {
		if err := c.upgrade(&p.attrs, share); err != nil {
			f.DeleteContext(legacy)
			return nil, err
		}
		return c, nil
	}
	if share != nil && f.ShareLists(share.ctx, legacy) == 0 {
		err := f.fail("wglShareLists")
		f.DeleteContext(legacy)
		return nil, err
	}
	return c, nil
}

// needsARB reports whether the attributes can only be honoured by
// wglCreateContextAttribsARB.
func (p *Prototype) needsARB() bool {
	a := p.attrs
	return a.Request.Kind != gl.RequestLatest || a.Profile != gl.ProfileDefault || a.Debug
}

// upgrade replaces the legacy context c holds by one created through
// wglCreateContextAttribsARB.
func (c *Context) upgrade(attrs *gl.Attributes, share *Context) error {
	f := c.f
	prevDC, prev := f.GetCurrentDC(), f.GetCurrentContext()
	if f.MakeCurrent(c.hdc, c.ctx) == 0 {
		return f.fail("wglMakeCurrent")
	}
	f.resolveExtensions()
	f.MakeCurrent(prevDC, prev)
	if f.CreateContextAttribsARB == nil {
		return fmt.Errorf("%w: %v needs WGL_ARB_create_context", gl.ErrUnsupported, attrs.Request)
	}
	var shareCtx HGLRC
	if share != nil {
		shareCtx = share.ctx
	}
	versions := []gl.Version{attrs.Request.Version}
	if attrs.Request.Kind == gl.RequestLatest {
		versions = gl.DesktopVersions
	}
	var err error
	for _, v := range versions {
		attribs := []int32{
			_WGL_CONTEXT_MAJOR_VERSION_ARB, int32(v.Major),
			_WGL_CONTEXT_MINOR_VERSION_ARB, int32(v.Minor),
		}
		if !v.Less(gl.Version{3, 2}) {
			switch attrs.Profile {
			case gl.ProfileCore:
				attribs = append(attribs, _WGL_CONTEXT_PROFILE_MASK_ARB, _WGL_CONTEXT_CORE_PROFILE_BIT_ARB)
			case gl.ProfileCompatibility:
				attribs = append(attribs, _WGL_CONTEXT_PROFILE_MASK_ARB, _WGL_CONTEXT_COMPATIBILITY_PROFILE_BIT_ARB)
			}
		}
		if attrs.Debug {
			attribs = append(attribs, _WGL_CONTEXT_FLAGS_ARB, _WGL_CONTEXT_DEBUG_BIT_ARB)
		}
		attribs = append(attribs, 0)
		ctx := f.CreateContextAttribsARB(c.hdc, shareCtx, &attribs[0])
		if ctx != 0 {
			f.DeleteContext(c.ctx)
			c.ctx = ctx
			c.version = v
			return nil
		}
		err = f.fail("wglCreateContextAttribsARB")
		log.L().Debug("wgl: context version rejected", "version", v, "err", err)
	}
	return err
}
