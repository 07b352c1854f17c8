// SPDX-License-Identifier: Unlicense OR MIT

package glctx

import (
	"gioui.org/glctx/internal/egl/egltest"
	"gioui.org/glctx/internal/glx/glxtest"
	"gioui.org/glctx/internal/wayland/waylandtest"
	"gioui.org/glctx/internal/wgl/wgltest"
	"gioui.org/glctx/internal/xlib"
	"gioui.org/glctx/internal/xlib/xlibtest"
)

const (
	xWindow   = 0x3200001
	wlSurface = 0x5a00
	hwnd      = 0x1c0042
	hdc       = 0x3c01
	// visualID is the visual of both the default GLX and EGL
	// configurations.
	visualID = 0x21
)

// fixture is a set of fake native libraries sharing one call trace.
type fixture struct {
	srv *xlibtest.Server
	glx *glxtest.Driver
	egl *egltest.Driver
	wl  *waylandtest.Lib
	wgl *wgltest.Driver
}

func newFixture() *fixture {
	srv := xlibtest.New(xlib.VisualInfo{Visual: 0x5000, VisualID: visualID, Depth: 24})
	return &fixture{
		srv: srv,
		glx: glxtest.New(srv, glxtest.DefaultConfig()),
		egl: egltest.New(srv.Trace),
		wl:  waylandtest.New(srv.Trace),
		wgl: wgltest.New(srv.Trace),
	}
}

// availability returns an Availability with Xlib, wayland-egl and the
// given backends loaded.
func (f *fixture) availability(backends ...Backend) *Availability {
	a := &Availability{x11: f.srv.Funcs(), wayland: f.wl.Funcs()}
	for _, b := range backends {
		switch b {
		case GLX:
			a.glx = f.glx.Funcs()
		case EGL:
			a.egl = f.egl.Funcs()
		case PlatformNative:
			a.wgl = f.wgl.Funcs()
		}
	}
	return a
}

// x11Display returns a display on the fake server's connection.
func (f *fixture) x11Display() *Display {
	return newDisplay(X11, xlibtest.Display, f.srv.Conn())
}

func (f *fixture) display(p Platform) *Display {
	switch p {
	case X11:
		return f.x11Display()
	case Wayland:
		return NewWaylandDisplay(0x3a00)
	default:
		return NewWin32Display(hdc)
	}
}

func window(p Platform) NativeWindow {
	switch p {
	case X11:
		return NativeWindow{Handle: xWindow}
	case Wayland:
		return NativeWindow{Handle: wlSurface, Width: 640, Height: 480}
	default:
		return NativeWindow{Handle: hwnd}
	}
}
