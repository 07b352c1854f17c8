// SPDX-License-Identifier: Unlicense OR MIT

package glctx

import (
	"fmt"

	"gioui.org/glctx/internal/egl"
	"gioui.org/glctx/internal/glx"
	"gioui.org/glctx/internal/log"
	"gioui.org/glctx/internal/wayland"
	"gioui.org/glctx/internal/wgl"
	"gioui.org/glctx/internal/xlib"
)

// Context is an OpenGL context bound to a window or pbuffer.
//
// A released context is in the None state. MakeCurrent, SwapBuffers
// and SetSwapInterval do nothing and ProcAddress returns 0, but queries
// that have no meaningful answer (IsCurrent, API, Version and
// PixelFormat) panic.
type Context struct {
	// variant is a *glx.Context, *egl.Context or *wgl.Context, and nil
	// once released.
	variant any
	disp    *Display
	// colormap is the X colormap installed on the window.
	colormap uintptr
	// window is the wl_egl_window on Wayland.
	window *wayland.Window
	// vsync is set until the swap interval has been applied.
	vsync bool
}

func badVariant(v any) string {
	return fmt.Sprintf("glctx: unknown context variant %T", v)
}

func released(op string) string {
	return "glctx: " + op + " on a released context"
}

// Backend reports the backend of the context, or None once released.
func (c *Context) Backend() Backend {
	switch v := c.variant.(type) {
	case nil:
		return None
	case *glx.Context:
		return GLX
	case *egl.Context:
		return EGL
	case *wgl.Context:
		return PlatformNative
	default:
		panic(badVariant(v))
	}
}

// Display returns the display the context was created on.
func (c *Context) Display() *Display {
	return c.disp
}

// MakeCurrent binds the context to the calling thread.
func (c *Context) MakeCurrent() error {
	var err error
	switch v := c.variant.(type) {
	case nil:
		return nil
	case *glx.Context:
		err = v.MakeCurrent()
	case *egl.Context:
		err = v.MakeCurrent()
	case *wgl.Context:
		err = v.MakeCurrent()
	default:
		panic(badVariant(v))
	}
	if err != nil {
		return nativeError("MakeCurrent", err)
	}
	if c.vsync {
		c.vsync = false
		if err := c.SetSwapInterval(1); err != nil {
			log.L().Warn("glctx: vsync unavailable", "backend", c.Backend(), "err", err)
		}
	}
	return nil
}

// ReleaseCurrent unbinds the context from the calling thread.
func (c *Context) ReleaseCurrent() error {
	var err error
	switch v := c.variant.(type) {
	case nil:
		return nil
	case *glx.Context:
		err = v.ReleaseCurrent()
	case *egl.Context:
		err = v.ReleaseCurrent()
	case *wgl.Context:
		err = v.ReleaseCurrent()
	default:
		panic(badVariant(v))
	}
	return nativeError("ReleaseCurrent", err)
}

// IsCurrent reports whether the context is current on the calling
// thread.
func (c *Context) IsCurrent() bool {
	switch v := c.variant.(type) {
	case nil:
		panic(released("IsCurrent"))
	case *glx.Context:
		return v.IsCurrent()
	case *egl.Context:
		return v.IsCurrent()
	case *wgl.Context:
		return v.IsCurrent()
	default:
		panic(badVariant(v))
	}
}

// ProcAddress returns the address of an OpenGL function, or 0.
func (c *Context) ProcAddress(name string) uintptr {
	switch v := c.variant.(type) {
	case nil:
		return 0
	case *glx.Context:
		return v.ProcAddress(name)
	case *egl.Context:
		return v.ProcAddress(name)
	case *wgl.Context:
		return v.ProcAddress(name)
	default:
		panic(badVariant(v))
	}
}

// SwapBuffers presents the back buffer. Errors from a lost context
// match ErrContextLost.
func (c *Context) SwapBuffers() error {
	var err error
	switch v := c.variant.(type) {
	case nil:
		return nil
	case *glx.Context:
		err = v.SwapBuffers()
	case *egl.Context:
		err = v.SwapBuffers()
	case *wgl.Context:
		err = v.SwapBuffers()
	default:
		panic(badVariant(v))
	}
	return nativeError("SwapBuffers", err)
}

// SetSwapInterval sets the number of vertical blanks to wait for per
// swap. The context must be current.
func (c *Context) SetSwapInterval(interval int) error {
	var err error
	switch v := c.variant.(type) {
	case nil:
		return nil
	case *glx.Context:
		err = v.SetSwapInterval(interval)
	case *egl.Context:
		err = v.SetSwapInterval(interval)
	case *wgl.Context:
		err = v.SetSwapInterval(interval)
	default:
		panic(badVariant(v))
	}
	return nativeError("SetSwapInterval", err)
}

// API returns the client API of the context.
func (c *Context) API() API {
	switch v := c.variant.(type) {
	case nil:
		panic(released("API"))
	case *glx.Context:
		return v.API()
	case *egl.Context:
		return v.API()
	case *wgl.Context:
		return v.API()
	default:
		panic(badVariant(v))
	}
}

// Version returns the version the context was created with. It is
// zero when the driver picked the version.
func (c *Context) Version() Version {
	switch v := c.variant.(type) {
	case nil:
		panic(released("Version"))
	case *glx.Context:
		return v.Version()
	case *egl.Context:
		return v.Version()
	case *wgl.Context:
		return v.Version()
	default:
		panic(badVariant(v))
	}
}

// PixelFormat describes the framebuffer of the context.
func (c *Context) PixelFormat() PixelFormat {
	switch v := c.variant.(type) {
	case nil:
		panic(released("PixelFormat"))
	case *glx.Context:
		return v.PixelFormat()
	case *egl.Context:
		return v.PixelFormat()
	case *wgl.Context:
		return v.PixelFormat()
	default:
		panic(badVariant(v))
	}
}

// Resize resizes the Wayland window of the context. Other windowing
// systems track the window size themselves.
func (c *Context) Resize(width, height int) {
	if c.variant == nil || c.window == nil {
		return
	}
	c.window.Resize(width, height)
}

// Release destroys the context. The context is detached first, so
// that nothing reaches the native context while the colormap and the
// display reference are released after it. Releasing twice is a
// no-op.
func (c *Context) Release() {
	v := c.variant
	if v == nil {
		return
	}
	c.variant = nil
	switch v := v.(type) {
	case *glx.Context:
		v.Release()
	case *egl.Context:
		v.Release()
	case *wgl.Context:
		v.Release()
	default:
		panic(badVariant(v))
	}
	if c.window != nil {
		c.window.Destroy()
		c.window = nil
	}
	if c.colormap != 0 {
		xlib.FreeColormap(c.disp.conn, c.colormap)
		c.colormap = 0
	}
	c.disp.Release()
}
