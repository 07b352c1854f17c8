// SPDX-License-Identifier: Unlicense OR MIT

package glctx

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"gioui.org/glctx/internal/dl"
	"gioui.org/glctx/internal/egl"
	"gioui.org/glctx/internal/glx"
	"gioui.org/glctx/internal/log"
	"gioui.org/glctx/internal/wayland"
	"gioui.org/glctx/internal/wgl"
	"gioui.org/glctx/internal/xlib"
)

// Availability records the native libraries a probe loaded. Its
// tables are shared by every context created through it.
type Availability struct {
	cfg     Config
	x11     *xlib.Funcs
	glx     *glx.Funcs
	egl     *egl.Funcs
	wayland *wayland.Funcs
	wgl     *wgl.Funcs
	err     error
}

// loaders bind the native tables from loaded libraries.
type loaders struct {
	x11     func(*dl.Library) (*xlib.Funcs, error)
	glx     func(*dl.Library) (*glx.Funcs, error)
	egl     func(*dl.Library) (*egl.Funcs, error)
	wayland func(*dl.Library) (*wayland.Funcs, error)
	wgl     func(gdi, opengl *dl.Library) (*wgl.Funcs, error)
}

var nativeLoaders = loaders{
	x11:     xlib.Load,
	glx:     glx.Load,
	egl:     egl.Load,
	wayland: wayland.Load,
	wgl:     wgl.Load,
}

var (
	probeOnce sync.Once
	probed    *Availability
)

// Probe loads the native libraries once per process, configured by
// DefaultConfig and the environment. It is safe for concurrent use.
func Probe() *Availability {
	probeOnce.Do(func() {
		cfg, err := DefaultConfig().FromEnv()
		if err != nil {
			log.L().Warn("glctx: ignoring invalid configuration", "err", err)
			cfg = DefaultConfig()
		}
		probed = ProbeWith(cfg, nil)
	})
	return probed
}

// ProbeWith loads the libraries named by cfg with open, or the platform
// loader if open is nil. Loaded libraries are never unloaded.
func ProbeWith(cfg Config, open dl.Opener) *Availability {
	return probe(cfg, open, runtime.GOOS, nativeLoaders)
}

func probe(cfg Config, open dl.Opener, goos string, ld loaders) *Availability {
	a := &Availability{cfg: cfg}
	var errs []error
	load := func(what string, names []string, bind func(lib *dl.Library) error) {
		if len(names) == 0 {
			return
		}
		lib, err := openLibrary(open, names)
		if err == nil {
			if err = bind(lib); err != nil {
				lib.Close()
			}
		}
		if err != nil {
			log.L().Debug("glctx: library unavailable", "lib", what, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", what, err))
			return
		}
		log.L().Debug("glctx: library loaded", "lib", what, "name", lib.Name)
	}
	libs := cfg.Libraries
	load("Xlib", libs.X11, func(lib *dl.Library) (err error) {
		a.x11, err = ld.x11(lib)
		return
	})
	if a.x11 != nil {
		load("GLX", libs.GL, func(lib *dl.Library) (err error) {
			a.glx, err = ld.glx(lib)
			return
		})
	}
	load("EGL", libs.EGL, func(lib *dl.Library) (err error) {
		a.egl, err = ld.egl(lib)
		return
	})
	load("wayland-egl", libs.WaylandEGL, func(lib *dl.Library) (err error) {
		a.wayland, err = ld.wayland(lib)
		return
	})
	if goos == "windows" {
		load("WGL", libs.GDI, func(gdi *dl.Library) error {
			opengl, err := openLibrary(open, libs.OpenGL32)
			if err != nil {
				return err
			}
			if a.wgl, err = ld.wgl(gdi, opengl); err != nil {
				opengl.Close()
			}
			return err
		})
	}
	a.err = errors.Join(errs...)
	log.L().Debug("glctx: probe complete", "backends", a.Backends())
	return a
}

func openLibrary(open dl.Opener, names []string) (*dl.Library, error) {
	if open == nil {
		return dl.Open(names...)
	}
	return dl.OpenWith(open, names...)
}

// unavailable reports that what was not loaded, with the probe's load
// errors as the cause.
func (a *Availability) unavailable(what string) error {
	cause := fmt.Errorf("%s not loaded", what)
	if a.err != nil {
		cause = fmt.Errorf("%s not loaded: %w", what, a.err)
	}
	return &NoBackendAvailableError{Cause: cause}
}

// GLX reports whether the GLX and Xlib tables loaded.
func (a *Availability) GLX() bool {
	return a.glx != nil && a.x11 != nil
}

// EGL reports whether the EGL table loaded.
func (a *Availability) EGL() bool {
	return a.egl != nil
}

// PlatformNative reports whether WGL is available.
func (a *Availability) PlatformNative() bool {
	return a.wgl != nil
}

// X11 reports whether Xlib loaded.
func (a *Availability) X11() bool {
	return a.x11 != nil
}

// Wayland reports whether libwayland-egl loaded.
func (a *Availability) Wayland() bool {
	return a.wayland != nil
}

// Err returns the load errors of the libraries that are missing, or
// nil.
func (a *Availability) Err() error {
	return a.err
}

// Config returns the configuration the probe ran with.
func (a *Availability) Config() Config {
	return a.cfg
}

// Backends lists the available backends in selection order.
func (a *Availability) Backends() []Backend {
	var bs []Backend
	if a.GLX() {
		bs = append(bs, GLX)
	}
	if a.PlatformNative() {
		bs = append(bs, PlatformNative)
	}
	if a.EGL() {
		bs = append(bs, EGL)
	}
	return bs
}

// Equal reports whether a and b found the same libraries.
func (a *Availability) Equal(b *Availability) bool {
	return a.GLX() == b.GLX() &&
		a.EGL() == b.EGL() &&
		a.PlatformNative() == b.PlatformNative() &&
		a.X11() == b.X11() &&
		a.Wayland() == b.Wayland()
}

func (a *Availability) String() string {
	return fmt.Sprintf("glx=%t egl=%t native=%t x11=%t wayland=%t",
		a.GLX(), a.EGL(), a.PlatformNative(), a.X11(), a.Wayland())
}
