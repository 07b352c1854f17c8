// SPDX-License-Identifier: Unlicense OR MIT

package glctx

import (
	"golang.org/x/exp/slices"

	"gioui.org/glctx/internal/egl"
	"gioui.org/glctx/internal/gl"
	"gioui.org/glctx/internal/glx"
	"gioui.org/glctx/internal/log"
	"gioui.org/glctx/internal/wayland"
	"gioui.org/glctx/internal/wgl"
	"gioui.org/glctx/internal/xlib"
)

// Visual is the X visual a window must be created with to host a
// context.
type Visual struct {
	ID     uint
	Depth  int
	Screen int
	// Visual is the Xlib Visual pointer.
	Visual uintptr
}

// NativeWindow is the window a context renders to.
type NativeWindow struct {
	// Handle is the X11 Window, the wl_surface pointer or the HWND.
	Handle uintptr
	// Width and Height size the wl_egl_window on Wayland and are
	// ignored elsewhere.
	Width, Height int
}

// Prototype is a negotiated backend and framebuffer configuration, not
// yet bound to a window. It is finished or released exactly once.
//
// A Prototype does not hold a reference to its display. Closing the
// display releases the native state of the prototype first, and
// finishing it afterwards fails with ErrDisplayClosed.
type Prototype struct {
	a        *Availability
	disp     *Display
	backend  Backend
	attrs    GLAttributes
	headless bool
	// visual is set on X11.
	visual *xlib.VisualInfo

	glx  glx.Config
	egl  *egl.Prototype
	wgl  *wgl.Prototype
	done bool
	// cancelClose unregisters the EGL cleanup run if the display
	// closes before the prototype is consumed.
	cancelClose func()
}

// BuildPrototype selects a backend for disp and negotiates a
// framebuffer configuration satisfying pf and attrs. Nil pf or attrs
// mean the defaults.
//
// Desktop OpenGL requests prefer GLX, then WGL, then EGL. OpenGL ES
// requests need EGL. Requests no backend can serve fail with a
// NotSupportedError, even when no library was loaded.
func (a *Availability) BuildPrototype(disp *Display, pf *PixelFormatRequirements, attrs *GLAttributes) (*Prototype, error) {
	return a.buildPrototype(disp, pf, attrs, false)
}

func (a *Availability) buildPrototype(disp *Display, pf *PixelFormatRequirements, attrs *GLAttributes, headless bool) (*Prototype, error) {
	if attrs == nil {
		attrs = new(GLAttributes)
	}
	if pf == nil {
		def := DefaultPixelFormat()
		pf = &def
	}
	native := attrs.native()
	if err := native.Validate(); err != nil {
		return nil, &NotSupportedError{Reason: err.Error()}
	}
	if err := pf.Validate(); err != nil {
		return nil, configError("%v", err)
	}
	if !a.GLX() && !a.EGL() && !a.PlatformNative() {
		return nil, a.unavailable("OpenGL backend")
	}
	if disp == nil {
		return nil, configError("nil display")
	}
	if disp.Closed() {
		return nil, ErrDisplayClosed
	}
	backend, err := a.selectBackend(disp.platform, native.Request, headless)
	if err != nil {
		return nil, err
	}
	if err := checkSharing(attrs.Sharing, disp, backend); err != nil {
		return nil, err
	}
	p := &Prototype{a: a, disp: disp, backend: backend, attrs: *attrs, headless: headless}
	switch backend {
	case GLX:
		err = p.buildGLX(pf)
	case EGL:
		err = p.buildEGL(pf, &native)
	case PlatformNative:
		err = p.buildWGL(pf, &native)
	}
	if err != nil {
		return nil, err
	}
	log.L().Debug("glctx: prototype built", "backend", backend, "platform", disp.platform, "request", native.Request)
	return p, nil
}

// candidates lists the backends able to serve req on platform, in
// order of preference. GLX must come before EGL: mixing the two on one
// X connection crashes some drivers.
func (a *Availability) candidates(platform Platform, req gl.Request, headless bool) []Backend {
	var cs []Backend
	if req.WantsDesktop() && !headless {
		if platform == X11 && a.GLX() {
			cs = append(cs, GLX)
		}
		if platform == Win32 && a.PlatformNative() {
			cs = append(cs, PlatformNative)
		}
	}
	if a.EGL() {
		switch {
		case headless:
			cs = append(cs, EGL)
		case platform == X11 && a.X11():
			cs = append(cs, EGL)
		case platform == Wayland && a.Wayland():
			cs = append(cs, EGL)
		case platform == Win32:
			cs = append(cs, EGL)
		}
	}
	return cs
}

// SelectBackend reports the backend BuildPrototype would pick for req
// on platform, without loading a configuration or creating anything.
func (a *Availability) SelectBackend(platform Platform, req Request, headless bool) (Backend, error) {
	attrs := gl.Attributes{Request: req}
	if err := attrs.Validate(); err != nil {
		return None, &NotSupportedError{Reason: err.Error()}
	}
	if !a.GLX() && !a.EGL() && !a.PlatformNative() {
		return None, a.unavailable("OpenGL backend")
	}
	return a.selectBackend(platform, req, headless)
}

func (a *Availability) selectBackend(platform Platform, req gl.Request, headless bool) (Backend, error) {
	cs := a.candidates(platform, req, headless)
	if forced := a.cfg.forced(); forced != None {
		if !slices.Contains(cs, forced) {
			return None, notSupported("%v requested by configuration cannot serve %v on %v", forced, req, platform)
		}
		return forced, nil
	}
	if len(cs) == 0 {
		return None, notSupported("no backend serves %v on %v", req, platform)
	}
	return cs[0], nil
}

func checkSharing(share *Context, disp *Display, b Backend) error {
	if share == nil {
		return nil
	}
	switch sb := share.Backend(); {
	case sb == None:
		return configError("sharing context was released")
	case sb != b:
		return configError("sharing context uses %v, not %v", sb, b)
	case share.disp != disp:
		return configError("sharing context belongs to another display")
	}
	return nil
}

func (p *Prototype) buildGLX(pf *PixelFormatRequirements) error {
	c := p.disp.conn
	cfg, err := glx.ChooseConfig(p.a.glx, c, c.DefaultScreen(), pf)
	if err != nil {
		return nativeError("glXChooseFBConfig", err)
	}
	p.glx = cfg
	p.visual = &cfg.Visual
	return nil
}

func (p *Prototype) buildEGL(pf *PixelFormatRequirements, attrs *gl.Attributes) error {
	kind := egl.WindowSurface
	if p.headless {
		kind = egl.PbufferSurface
	}
	ep, err := egl.NewPrototype(p.a.egl, egl.NativeDisplayType(p.disp.handle), pf, attrs, kind)
	if err != nil {
		return nativeError("EGL", err)
	}
	if p.disp.platform == X11 && !p.headless {
		// EGL only knows the visual ID.
		vi, err := xlib.LookupVisual(p.disp.conn, uint(ep.VisualID()))
		if err != nil {
			ep.Release()
			return &NativeCallError{Op: "XGetVisualInfo", Err: err}
		}
		p.visual = &vi
	}
	p.egl = ep
	// EGL must terminate before the display connection closes.
	p.cancelClose = p.disp.onClose(ep.Release)
	return nil
}

func (p *Prototype) buildWGL(pf *PixelFormatRequirements, attrs *gl.Attributes) error {
	wp, err := wgl.NewPrototype(p.a.wgl, wgl.HDC(p.disp.handle), pf, attrs)
	if err != nil {
		return nativeError("ChoosePixelFormat", err)
	}
	p.wgl = wp
	return nil
}

// Backend returns the backend the prototype was negotiated with.
func (p *Prototype) Backend() Backend {
	return p.backend
}

// Visual returns the visual for X11 windows. There is none on other
// platforms.
func (p *Prototype) Visual() (Visual, bool) {
	if p.visual == nil {
		return Visual{}, false
	}
	return Visual{
		ID:     p.visual.VisualID,
		Depth:  int(p.visual.Depth),
		Screen: int(p.visual.Screen),
		Visual: p.visual.Visual,
	}, true
}

// PixelFormat describes the negotiated configuration. The finished
// context may differ where a driver rejected a requirement, such as an
// sRGB surface.
func (p *Prototype) PixelFormat() PixelFormat {
	switch p.backend {
	case GLX:
		return p.glx.Format
	case EGL:
		return p.egl.PixelFormat()
	case PlatformNative:
		return p.wgl.PixelFormat()
	}
	return PixelFormat{}
}

// Release discards a prototype that will not be finished.
func (p *Prototype) Release() {
	if p.done {
		return
	}
	p.done = true
	p.releaseNative()
}

func (p *Prototype) releaseNative() {
	if p.cancelClose != nil {
		p.cancelClose()
		p.cancelClose = nil
	}
	switch {
	case p.egl != nil:
		p.egl.Release()
	case p.wgl != nil:
		p.wgl.Release()
	}
}

// consume marks the prototype finished, reporting why it cannot be.
func (p *Prototype) consume() error {
	if p.done {
		return ErrPrototypeConsumed
	}
	p.done = true
	if p.cancelClose != nil {
		p.cancelClose()
		p.cancelClose = nil
	}
	if p.disp.Closed() {
		p.releaseNative()
		return ErrDisplayClosed
	}
	if err := checkSharing(p.attrs.Sharing, p.disp, p.backend); err != nil {
		p.releaseNative()
		return err
	}
	return nil
}

// Finish binds the prototype to win. The prototype is consumed even if
// Finish fails, and everything created by a failed Finish is released.
func (p *Prototype) Finish(win NativeWindow) (*Context, error) {
	if p.done {
		return nil, ErrPrototypeConsumed
	}
	if win.Handle == 0 {
		return nil, configError("nil native window")
	}
	if p.headless {
		return nil, configError("headless prototype finished with a window")
	}
	if err := p.consume(); err != nil {
		return nil, err
	}
	ctx := &Context{disp: p.disp, vsync: p.attrs.VSync}
	var err error
	switch p.backend {
	case GLX:
		err = p.finishGLX(ctx, win)
	case EGL:
		err = p.finishEGL(ctx, win)
	case PlatformNative:
		err = p.finishWGL(ctx)
	}
	if err != nil {
		return nil, err
	}
	p.disp.Retain()
	log.L().Debug("glctx: context created", "backend", p.backend, "api", ctx.API())
	return ctx, nil
}

// FinishHeadless creates an EGL context rendering to an off-screen
// pbuffer of the given size.
func (p *Prototype) FinishHeadless(width, height int) (*Context, error) {
	if p.done {
		return nil, ErrPrototypeConsumed
	}
	if p.backend != EGL {
		return nil, notSupported("headless contexts need EGL, not %v", p.backend)
	}
	if width <= 0 || height <= 0 {
		return nil, configError("invalid pbuffer size %dx%d", width, height)
	}
	if err := p.consume(); err != nil {
		return nil, err
	}
	ec, err := p.egl.NewPbufferContext(p.eglShare(), width, height)
	if err != nil {
		return nil, nativeError("eglCreatePbufferSurface", err)
	}
	p.disp.Retain()
	return &Context{variant: ec, disp: p.disp, vsync: p.attrs.VSync}, nil
}

func (p *Prototype) eglShare() *egl.Context {
	if s := p.attrs.Sharing; s != nil {
		return s.variant.(*egl.Context)
	}
	return nil
}

func (p *Prototype) finishGLX(ctx *Context, win NativeWindow) error {
	var share *glx.Context
	if s := p.attrs.Sharing; s != nil {
		share = s.variant.(*glx.Context)
	}
	conn := p.disp.conn
	attrs := p.attrs.native()
	gc, err := glx.NewContext(p.a.glx, conn, p.glx, &attrs, share, win.Handle)
	if err != nil {
		return nativeError("glXCreateContext", err)
	}
	cmap, err := xlib.CreateColormap(conn, p.glx.Screen, win.Handle, p.visual.Visual)
	if err != nil {
		gc.Release()
		return &NativeCallError{Op: "XCreateColormap", Err: err}
	}
	ctx.variant = gc
	ctx.colormap = cmap
	return nil
}

func (p *Prototype) finishEGL(ctx *Context, win NativeWindow) error {
	share := p.eglShare()
	switch p.disp.platform {
	case X11:
		ec, err := p.egl.NewWindowContext(share, egl.NativeWindowType(win.Handle))
		if err != nil {
			return nativeError("eglCreateWindowSurface", err)
		}
		cmap, err := xlib.CreateColormap(p.disp.conn, p.visual.Screen, win.Handle, p.visual.Visual)
		if err != nil {
			ec.Release()
			return &NativeCallError{Op: "XCreateColormap", Err: err}
		}
		ctx.variant = ec
		ctx.colormap = cmap
	case Wayland:
		w, err := wayland.NewWindow(p.a.wayland, win.Handle, win.Width, win.Height)
		if err != nil {
			p.egl.Release()
			return &NativeCallError{Op: "wl_egl_window_create", Err: err}
		}
		ec, err := p.egl.NewWindowContext(share, egl.NativeWindowType(w.Handle()))
		if err != nil {
			w.Destroy()
			return nativeError("eglCreateWindowSurface", err)
		}
		ctx.variant = ec
		ctx.window = w
	default:
		ec, err := p.egl.NewWindowContext(share, egl.NativeWindowType(win.Handle))
		if err != nil {
			return nativeError("eglCreateWindowSurface", err)
		}
		ctx.variant = ec
	}
	return nil
}

func (p *Prototype) finishWGL(ctx *Context) error {
	var share *wgl.Context
	if s := p.attrs.Sharing; s != nil {
		share = s.variant.(*wgl.Context)
	}
	wc, err := p.wgl.NewContext(share)
	if err != nil {
		return nativeError("wglCreateContext", err)
	}
	ctx.variant = wc
	return nil
}

// CreateWindowContext probes the native libraries, builds a prototype
// for disp and finishes it with win.
func CreateWindowContext(disp *Display, pf *PixelFormatRequirements, attrs *GLAttributes, win NativeWindow) (*Context, error) {
	return Probe().CreateWindowContext(disp, pf, attrs, win)
}

// CreateWindowContext builds a prototype for disp from a and finishes
// it with win.
func (a *Availability) CreateWindowContext(disp *Display, pf *PixelFormatRequirements, attrs *GLAttributes, win NativeWindow) (*Context, error) {
	p, err := a.BuildPrototype(disp, pf, attrs)
	if err != nil {
		return nil, err
	}
	ctx, err := p.Finish(win)
	if err != nil {
		p.Release()
		return nil, err
	}
	return ctx, nil
}

// CreateHeadlessContext creates an EGL context rendering to an
// off-screen pbuffer on disp.
func CreateHeadlessContext(disp *Display, width, height int, pf *PixelFormatRequirements, attrs *GLAttributes) (*Context, error) {
	return Probe().CreateHeadlessContext(disp, width, height, pf, attrs)
}

// CreateHeadlessContext is like the package level CreateHeadlessContext,
// using the libraries of a.
func (a *Availability) CreateHeadlessContext(disp *Display, width, height int, pf *PixelFormatRequirements, attrs *GLAttributes) (*Context, error) {
	if width <= 0 || height <= 0 {
		return nil, configError("invalid pbuffer size %dx%d", width, height)
	}
	p, err := a.buildPrototype(disp, pf, attrs, true)
	if err != nil {
		return nil, err
	}
	return p.FinishHeadless(width, height)
}
