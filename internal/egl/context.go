// SPDX-License-Identifier: Unlicense OR MIT

package egl

import (
	"gioui.org/glctx/internal/gl"
)

// Context is an EGL context and the surface it renders to.
type Context struct {
	f       *Funcs
	disp    Display
	ctx     Handle
	surf    Surface
	api     gl.API
	version gl.Version
	format  gl.PixelFormat
}

func (c *Context) Handle() Handle {
	return c.ctx
}

func (c *Context) Display() Display {
	return c.disp
}

func (c *Context) API() gl.API {
	return c.api
}

// Version returns the version the context was created with. It is the
// zero Version when the driver chose it.
func (c *Context) Version() gl.Version {
	return c.version
}

func (c *Context) PixelFormat() gl.PixelFormat {
	return c.format
}

// MakeCurrent binds the context and its surface to the calling thread.
func (c *Context) MakeCurrent() error {
	if err := c.f.bindAPI(c.api); err != nil {
		return err
	}
	if c.f.MakeCurrent(c.disp, c.surf, c.surf, c.ctx) != _EGL_TRUE {
		return c.f.fail("eglMakeCurrent")
	}
	return nil
}

// ReleaseCurrent unbinds the current context of the context's API from
// the calling thread.
func (c *Context) ReleaseCurrent() error {
	if err := c.f.bindAPI(c.api); err != nil {
		return err
	}
	if c.f.MakeCurrent(c.disp, nilSurface, nilSurface, nilContext) != _EGL_TRUE {
		return c.f.fail("eglMakeCurrent(EGL_NO_CONTEXT)")
	}
	return nil
}

// IsCurrent reports whether the context is current for its API on the
// calling thread.
func (c *Context) IsCurrent() bool {
	if c.ctx == nilContext || c.f.bindAPI(c.api) != nil {
		return false
	}
	return c.f.GetCurrentContext() == c.ctx
}

func (c *Context) ProcAddress(name string) uintptr {
	return c.f.GetProcAddress(name)
}

// SwapBuffers presents the back buffer. A lost context is reported as
// an error matching ErrContextLost.
func (c *Context) SwapBuffers() error {
	if c.f.SwapBuffers(c.disp, c.surf) != _EGL_TRUE {
		return c.f.fail("eglSwapBuffers")
	}
	return nil
}

// SetSwapInterval sets the number of vertical blanks to wait for per
// swap. The context must be current.
func (c *Context) SetSwapInterval(interval int) error {
	if c.f.SwapInterval(c.disp, Int(interval)) != _EGL_TRUE {
		return c.f.fail("eglSwapInterval")
	}
	return nil
}

// Release destroys the surface and the context and drops the display
// reference taken at initialization. Releasing twice is a no-op.
func (c *Context) Release() {
	if c.ctx == nilContext {
		return
	}
	if c.IsCurrent() {
		c.ReleaseCurrent()
	}
	if c.surf != nilSurface {
		c.f.DestroySurface(c.disp, c.surf)
		c.surf = nilSurface
	}
	c.f.DestroyContext(c.disp, c.ctx)
	c.ctx = nilContext
	terminate(c.f, c.disp)
	c.f.ReleaseThread()
}
