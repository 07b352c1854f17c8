// SPDX-License-Identifier: Unlicense OR MIT

package wgl

import (
	"fmt"

	"gioui.org/glctx/internal/gl"
)

// Context is a WGL context bound to a window's device context.
type Context struct {
	f       *Funcs
	hdc     HDC
	ctx     HGLRC
	version gl.Version
	format  gl.PixelFormat
}

func (c *Context) Handle() HGLRC {
	return c.ctx
}

// API is always desktop OpenGL.
func (c *Context) API() gl.API {
	return gl.OpenGL
}

// Version returns the version requested at creation, or the zero
// Version for legacy contexts.
func (c *Context) Version() gl.Version {
	return c.version
}

func (c *Context) PixelFormat() gl.PixelFormat {
	return c.format
}

func (c *Context) MakeCurrent() error {
	if c.f.MakeCurrent(c.hdc, c.ctx) == 0 {
		return c.f.fail("wglMakeCurrent")
	}
	return nil
}

func (c *Context) ReleaseCurrent() error {
	if c.f.MakeCurrent(0, 0) == 0 {
		return c.f.fail("wglMakeCurrent(NULL)")
	}
	return nil
}

func (c *Context) IsCurrent() bool {
	return c.ctx != 0 && c.f.GetCurrentContext() == c.ctx
}

func (c *Context) ProcAddress(name string) uintptr {
	return c.f.ProcAddress(name)
}

func (c *Context) SwapBuffers() error {
	if c.f.SwapBuffers(c.hdc) == 0 {
		return c.f.fail("SwapBuffers")
	}
	return nil
}

// SetSwapInterval needs WGL_EXT_swap_control and a current context.
func (c *Context) SetSwapInterval(interval int) error {
	c.f.resolveExtensions()
	if c.f.SwapIntervalEXT == nil {
		return fmt.Errorf("%w: wglSwapIntervalEXT", gl.ErrUnsupported)
	}
	if c.f.SwapIntervalEXT(int32(interval)) == 0 {
		return c.f.fail("wglSwapIntervalEXT")
	}
	return nil
}

// Release deletes the context, unbinding it first if it is current.
func (c *Context) Release() {
	if c.ctx == 0 {
		return
	}
	if c.IsCurrent() {
		c.ReleaseCurrent()
	}
	c.f.DeleteContext(c.ctx)
	c.ctx = 0
}
