// SPDX-License-Identifier: Unlicense OR MIT

// Package wgltest provides an in-memory stand-in for opengl32.dll and
// the GDI pixel format calls.
package wgltest

import (
	"errors"
	"sync"

	"gioui.org/glctx/internal/gl"
	"gioui.org/glctx/internal/nativetest"
	"gioui.org/glctx/internal/wgl"
)

var errInvalid = errors.New("wgltest: invalid handle")

// DefaultFormat is a double buffered, accelerated RGBA8 format with
// depth and stencil.
func DefaultFormat() wgl.PixelFormatDescriptor {
	return wgl.PixelFormatDescriptor{
		Size:        40,
		Version:     1,
		Flags:       wgl.PFD_DRAW_TO_WINDOW | wgl.PFD_SUPPORT_OPENGL | wgl.PFD_DOUBLEBUFFER,
		ColorBits:   32,
		RedBits:     8,
		GreenBits:   8,
		BlueBits:    8,
		AlphaBits:   8,
		DepthBits:   24,
		StencilBits: 8,
	}
}

// Driver is a fake WGL implementation.
type Driver struct {
	*nativetest.Trace

	// Formats are the pixel formats, with index i+1 for Formats[i].
	Formats []wgl.PixelFormatDescriptor
	// NoARB hides wglCreateContextAttribsARB.
	NoARB bool
	// MaxVersion is the newest version ARB context creation accepts.
	MaxVersion gl.Version

	mu       sync.Mutex
	next     wgl.HGLRC
	live     map[wgl.HGLRC]bool
	formats  map[wgl.HDC]int32
	current  wgl.HGLRC
	curDC    wgl.HDC
	requests []map[int32]int32
}

// New returns a driver offering DefaultFormat. A nil trace gets a
// private one.
func New(trace *nativetest.Trace) *Driver {
	if trace == nil {
		trace = new(nativetest.Trace)
	}
	return &Driver{
		Trace:      trace,
		Formats:    []wgl.PixelFormatDescriptor{DefaultFormat()},
		MaxVersion: gl.Version{4, 6},
		next:       0x10000,
		live:       make(map[wgl.HGLRC]bool),
		formats:    make(map[wgl.HDC]int32),
	}
}

// Live returns the number of contexts not yet deleted.
func (d *Driver) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// Format returns the pixel format set on hdc, or 0.
func (d *Driver) Format(hdc wgl.HDC) int32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.formats[hdc]
}

// SetFormat presets the pixel format of hdc as a previous owner of the
// window would have.
func (d *Driver) SetFormat(hdc wgl.HDC, index int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.formats[hdc] = index
}

// Requests returns the attribute lists passed to
// wglCreateContextAttribsARB.
func (d *Driver) Requests() []map[int32]int32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]map[int32]int32(nil), d.requests...)
}

func (d *Driver) newContext() wgl.HGLRC {
	d.next++
	d.live[d.next] = true
	return d.next
}

// Funcs returns the function table backed by d.
func (d *Driver) Funcs() *wgl.Funcs {
	f := &wgl.Funcs{
		ChoosePixelFormat: func(hdc wgl.HDC, pfd *wgl.PixelFormatDescriptor) int32 {
			d.Record("ChoosePixelFormat")
			if len(d.Formats) == 0 {
				return 0
			}
			return 1
		},
		DescribePixelFormat: func(hdc wgl.HDC, index int32, size uint32, pfd *wgl.PixelFormatDescriptor) int32 {
			if index < 1 || int(index) > len(d.Formats) {
				return 0
			}
			*pfd = d.Formats[index-1]
			return int32(len(d.Formats))
		},
		GetPixelFormat: func(hdc wgl.HDC) int32 {
			return d.Format(hdc)
		},
		SetPixelFormat: func(hdc wgl.HDC, index int32, pfd *wgl.PixelFormatDescriptor) int32 {
			d.Record("SetPixelFormat")
			d.SetFormat(hdc, index)
			return 1
		},
		SwapBuffers: func(hdc wgl.HDC) int32 {
			d.Record("SwapBuffers")
			return 1
		},
		CreateContext: func(hdc wgl.HDC) wgl.HGLRC {
			d.Record("wglCreateContext")
			d.mu.Lock()
			defer d.mu.Unlock()
			if d.formats[hdc] == 0 {
				return 0
			}
			return d.newContext()
		},
		DeleteContext: func(ctx wgl.HGLRC) int32 {
			d.Record("wglDeleteContext")
			d.mu.Lock()
			defer d.mu.Unlock()
			if !d.live[ctx] {
				return 0
			}
			delete(d.live, ctx)
			if d.current == ctx {
				d.current, d.curDC = 0, 0
			}
			return 1
		},
		MakeCurrent: func(hdc wgl.HDC, ctx wgl.HGLRC) int32 {
			d.Record("wglMakeCurrent")
			d.mu.Lock()
			defer d.mu.Unlock()
			if ctx != 0 && (hdc == 0 || !d.live[ctx]) {
				return 0
			}
			d.current, d.curDC = ctx, hdc
			if ctx == 0 {
				d.curDC = 0
			}
			return 1
		},
		GetCurrentContext: func() wgl.HGLRC {
			d.mu.Lock()
			defer d.mu.Unlock()
			return d.current
		},
		GetCurrentDC: func() wgl.HDC {
			d.mu.Lock()
			defer d.mu.Unlock()
			return d.curDC
		},
		GetProcAddress: func(name string) uintptr {
			if name == "glGenBuffers" {
				return 0x8000
			}
			// Some drivers return small integers for unknown names.
			return 2
		},
		ShareLists: func(a, b wgl.HGLRC) int32 {
			d.Record("wglShareLists")
			d.mu.Lock()
			defer d.mu.Unlock()
			if !d.live[a] || !d.live[b] {
				return 0
			}
			return 1
		},
		Export: func(name string) uintptr {
			if name == "glClear" {
				return 0x7100
			}
			return 0
		},
		LastError: func() error {
			return errInvalid
		},
		SwapIntervalEXT: func(interval int32) int32 {
			d.Record("wglSwapIntervalEXT")
			return 1
		},
	}
	if !d.NoARB {
		f.CreateContextAttribsARB = func(hdc wgl.HDC, share wgl.HGLRC, attribs *int32) wgl.HGLRC {
			d.Record("wglCreateContextAttribsARB")
			req := nativetest.Attribs(attribs, 0)
			d.mu.Lock()
			defer d.mu.Unlock()
			d.requests = append(d.requests, req)
			if share != 0 && !d.live[share] {
				return 0
			}
			v := gl.Version{uint8(req[0x2091]), uint8(req[0x2092])}
			if d.MaxVersion.Less(v) {
				return 0
			}
			return d.newContext()
		}
	}
	return f
}
