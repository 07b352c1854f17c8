// SPDX-License-Identifier: Unlicense OR MIT

package glx

import (
	"errors"
	"fmt"

	"gioui.org/glctx/internal/gl"
	"gioui.org/glctx/internal/log"
	"gioui.org/glctx/internal/xlib"
)

// Context is a GLX context bound to an X drawable.
type Context struct {
	f        *Funcs
	conn     *xlib.Conn
	cfg      Config
	drawable uintptr
	ctx      Handle
	api      gl.API
	version  gl.Version
}

// NewContext creates a context for cfg that draws into win, sharing
// objects with share if it is not nil. Every failed attempt is rolled
// back.
func NewContext(f *Funcs, c *xlib.Conn, cfg Config, attrs *gl.Attributes, share *Context, win uintptr) (*Context, error) {
	if c.Closed() {
		return nil, xlib.ErrClosed
	}
	if win == 0 {
		return nil, errors.New("glx: no drawable")
	}
	var shareCtx Handle
	if share != nil {
		shareCtx = share.ctx
	}
	ctx := &Context{f: f, conn: c, cfg: cfg, drawable: win, api: gl.OpenGL}
	h, err := ctx.create(attrs, shareCtx)
	if err != nil {
		return nil, err
	}
	ctx.ctx = h
	return ctx, nil
}

func (c *Context) create(attrs *gl.Attributes, share Handle) (Handle, error) {
	req := attrs.Request
	var versions []gl.Version
	switch req.Kind {
	case gl.RequestLatest:
		versions = gl.DesktopVersions
	case gl.RequestSpecific:
		if req.API != gl.OpenGL {
			return 0, fmt.Errorf("%w: %v through GLX", gl.ErrUnsupported, req.API)
		}
		versions = []gl.Version{req.Version}
	case gl.RequestGLThenGLES:
		versions = []gl.Version{req.Version}
	}
	if c.f.CreateContextAttribsARB != nil {
		var lastErr error
		for _, v := range versions {
			h, err := c.createARB(v, attrs, share, false)
			if err == nil {
				c.version = v
				return h, nil
			}
			lastErr = err
			log.L().Debug("glx: context version rejected", "version", v, "err", err)
		}
		if req.Kind == gl.RequestGLThenGLES && hasExtension(c.f.extensions(c.conn, c.cfg.Screen), "GLX_EXT_create_context_es2_profile") {
			h, err := c.createARB(req.GLESVersion, attrs, share, true)
			if err == nil {
				c.api, c.version = gl.OpenGLES, req.GLESVersion
				return h, nil
			}
			lastErr = err
		}
		if req.Kind != gl.RequestLatest {
			return 0, lastErr
		}
		if attrs.Profile != gl.ProfileDefault {
			return 0, fmt.Errorf("%w: no %v profile context: %v", gl.ErrUnsupported, attrs.Profile, lastErr)
		}
		log.L().Warn("glx: falling back to a legacy context", "err", lastErr)
	} else if req.Kind != gl.RequestLatest && !req.Version.Less(gl.Version{3, 0}) {
		return 0, fmt.Errorf("%w: OpenGL %v needs GLX_ARB_create_context", gl.ErrUnsupported, req.Version)
	} else if attrs.Profile != gl.ProfileDefault {
		return 0, fmt.Errorf("%w: %v profile needs GLX_ARB_create_context_profile", gl.ErrUnsupported, attrs.Profile)
	}
	return c.createLegacy(share)
}

func (c *Context) createARB(v gl.Version, attrs *gl.Attributes, share Handle, es bool) (Handle, error) {
	a := []int32{
		_GLX_CONTEXT_MAJOR_VERSION_ARB, int32(v.Major),
		_GLX_CONTEXT_MINOR_VERSION_ARB, int32(v.Minor),
	}
	switch {
	case es:
		a = append(a, _GLX_CONTEXT_PROFILE_MASK_ARB, _GLX_CONTEXT_ES2_PROFILE_BIT_EXT)
	case v.Less(gl.Version{3, 2}):
	case attrs.Profile == gl.ProfileCompatibility:
		a = append(a, _GLX_CONTEXT_PROFILE_MASK_ARB, _GLX_CONTEXT_COMPATIBILITY_BIT)
	case attrs.Profile == gl.ProfileCore:
		a = append(a, _GLX_CONTEXT_PROFILE_MASK_ARB, _GLX_CONTEXT_CORE_PROFILE_BIT)
	}
	if attrs.Debug {
		a = append(a, _GLX_CONTEXT_FLAGS_ARB, _GLX_CONTEXT_DEBUG_BIT_ARB)
	}
	a = append(a, attribEnd)
	h := c.f.CreateContextAttribsARB(c.conn.Handle(), c.cfg.FBConfig, share, 1, &a[0])
	return c.checkCreated(h, "glXCreateContextAttribsARB")
}

func (c *Context) createLegacy(share Handle) (Handle, error) {
	h := c.f.CreateNewContext(c.conn.Handle(), c.cfg.FBConfig, _GLX_RGBA_TYPE, share, 1)
	h, err := c.checkCreated(h, "glXCreateNewContext")
	if err == nil {
		c.version = gl.Version{2, 1}
	}
	return h, err
}

// checkCreated syncs with the server so that errors caused by the
// creation call are reported before they are checked.
func (c *Context) checkCreated(h Handle, op string) (Handle, error) {
	c.conn.Sync()
	if err := c.conn.CheckErrors(); err != nil {
		if h != 0 {
			c.f.DestroyContext(c.conn.Handle(), h)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if h == 0 {
		return 0, fmt.Errorf("%s failed", op)
	}
	return h, nil
}

func (c *Context) Handle() Handle {
	return c.ctx
}

func (c *Context) API() gl.API {
	return c.api
}

func (c *Context) Version() gl.Version {
	return c.version
}

func (c *Context) PixelFormat() gl.PixelFormat {
	return c.cfg.Format
}

func (c *Context) MakeCurrent() error {
	if c.f.MakeCurrent(c.conn.Handle(), c.drawable, c.ctx) == 0 {
		return errors.New("glXMakeCurrent failed")
	}
	if err := c.conn.CheckErrors(); err != nil {
		return fmt.Errorf("glXMakeCurrent: %w", err)
	}
	return nil
}

func (c *Context) ReleaseCurrent() error {
	if c.f.MakeCurrent(c.conn.Handle(), 0, 0) == 0 {
		return errors.New("glXMakeCurrent(None) failed")
	}
	return c.conn.CheckErrors()
}

func (c *Context) IsCurrent() bool {
	return c.ctx != 0 && c.f.GetCurrentContext() == c.ctx
}

func (c *Context) ProcAddress(name string) uintptr {
	return c.f.GetProcAddress(name)
}

func (c *Context) SwapBuffers() error {
	c.f.SwapBuffers(c.conn.Handle(), c.drawable)
	if err := c.conn.CheckErrors(); err != nil {
		return fmt.Errorf("glXSwapBuffers: %w", err)
	}
	return nil
}

// SetSwapInterval sets the number of vertical blanks to wait for
// between buffer swaps.
func (c *Context) SetSwapInterval(interval int) error {
	if c.f.SwapIntervalEXT == nil {
		return fmt.Errorf("%w: GLX_EXT_swap_control", gl.ErrUnsupported)
	}
	c.f.SwapIntervalEXT(c.conn.Handle(), c.drawable, int32(interval))
	return c.conn.CheckErrors()
}

// Release destroys the context, unbinding it first if it is current.
func (c *Context) Release() {
	if c.ctx == 0 {
		return
	}
	if c.IsCurrent() {
		c.ReleaseCurrent()
	}
	c.f.DestroyContext(c.conn.Handle(), c.ctx)
	c.ctx = 0
}
