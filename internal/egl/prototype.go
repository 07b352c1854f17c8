// SPDX-License-Identifier: Unlicense OR MIT

package egl

import (
	"errors"
	"fmt"
	"runtime"

	"gioui.org/glctx/internal/gl"
	"gioui.org/glctx/internal/log"
)

// SurfaceKind is the kind of surface a prototype's configuration must
// support.
type SurfaceKind uint8

const (
	WindowSurface SurfaceKind = iota
	PbufferSurface
)

var (
	ErrNoConfig = errors.New("egl: no configuration matches")
	ErrConsumed = errors.New("egl: prototype already used")
)

// Prototype is an initialized display and a chosen configuration, not
// yet bound to a surface.
type Prototype struct {
	f        *Funcs
	disp     Display
	config   Config
	attrs    gl.Attributes
	api      gl.API
	visualID int
	srgb     bool
	// khrCreate reports support for EGL_KHR_create_context or EGL 1.5
	// context attributes.
	khrCreate bool
	// fallbackES is set when a desktop context may fall back to OpenGL ES.
	fallbackES bool
	format     gl.PixelFormat
	done       bool
}

// NewPrototype initializes the EGL display for nd and chooses a
// configuration satisfying pf and attrs.
func NewPrototype(f *Funcs, nd NativeDisplayType, pf *gl.PixelFormatRequirements, attrs *gl.Attributes, kind SurfaceKind) (*Prototype, error) {
	disp := f.GetDisplay(nd)
	if disp == nilDisplay {
		return nil, f.fail("eglGetDisplay")
	}
	major, minor, err := initialize(f, disp)
	if err != nil {
		return nil, err
	}
	p, err := newPrototype(f, disp, gl.Version{uint8(major), uint8(minor)}, pf, attrs, kind)
	if err != nil {
		terminate(f, disp)
		return nil, err
	}
	return p, nil
}

func newPrototype(f *Funcs, disp Display, version gl.Version, pf *gl.PixelFormatRequirements, attrs *gl.Attributes, kind SurfaceKind) (*Prototype, error) {
	egl15 := !version.Less(gl.Version{1, 5})
	exts := f.queryList(disp, _EGL_EXTENSIONS)
	p := &Prototype{
		f:         f,
		disp:      disp,
		attrs:     *attrs,
		khrCreate: egl15 || hasExtension(exts, "EGL_KHR_create_context"),
	}
	if err := p.bindAPI(f.queryList(disp, _EGL_CLIENT_APIS)); err != nil {
		return nil, err
	}
	// sRGB framebuffer support on EGL 1.5 or if EGL_KHR_gl_colorspace is supported.
	if pf.SRGB {
		if !egl15 && !hasExtension(exts, "EGL_KHR_gl_colorspace") {
			return nil, fmt.Errorf("%w: sRGB surfaces", gl.ErrUnsupported)
		}
		p.srgb = true
	}
	attribs := p.configAttribs(pf, kind)
	var cfg Config
	var n Int
	ok := f.ChooseConfig(disp, &attribs[0], &cfg, 1, &n)
	issue34474KeepAlive(attribs)
	if ok != _EGL_TRUE {
		return nil, f.fail("eglChooseConfig")
	}
	if n == 0 || cfg == nilConfig {
		return nil, ErrNoConfig
	}
	p.config = cfg
	var visID Int
	if f.GetConfigAttrib(disp, cfg, _EGL_NATIVE_VISUAL_ID, &visID) != _EGL_TRUE {
		return nil, f.fail("eglGetConfigAttrib(EGL_NATIVE_VISUAL_ID)")
	}
	p.visualID = int(visID)
	p.format = p.describe()
	return p, nil
}

// bindAPI binds desktop OpenGL when it is requested and the display
// offers it, and OpenGL ES otherwise.
func (p *Prototype) bindAPI(clientAPIs []string) error {
	req := p.attrs.Request
	desktop := req.WantsDesktop() && hasExtension(clientAPIs, "OpenGL")
	if req.Kind == gl.RequestSpecific && req.API == gl.OpenGL && !desktop {
		return fmt.Errorf("%w: display offers no desktop OpenGL", gl.ErrUnsupported)
	}
	if desktop {
		err := p.f.bindAPI(gl.OpenGL)
		if err == nil {
			p.api = gl.OpenGL
			p.fallbackES = req.Kind == gl.RequestGLThenGLES && hasExtension(clientAPIs, "OpenGL_ES")
			return nil
		}
		if req.Kind == gl.RequestSpecific {
			return err
		}
	}
	if err := p.f.bindAPI(gl.OpenGLES); err != nil {
		return err
	}
	p.api = gl.OpenGLES
	return nil
}

func (p *Prototype) renderableBit() Int {
	switch {
	case p.api == gl.OpenGLES:
		return p.esBit()
	case p.fallbackES:
		return _EGL_OPENGL_BIT | p.esBit()
	default:
		return _EGL_OPENGL_BIT
	}
}

func (p *Prototype) esBit() Int {
	if !p.khrCreate {
		return _EGL_OPENGL_ES2_BIT
	}
	for _, v := range p.esVersions() {
		if v.Less(gl.Version{3, 0}) {
			return _EGL_OPENGL_ES2_BIT
		}
	}
	return _EGL_OPENGL_ES3_BIT
}

func (p *Prototype) configAttribs(pf *gl.PixelFormatRequirements, kind SurfaceKind) []Int {
	surface := Int(_EGL_WINDOW_BIT)
	if kind == PbufferSurface {
		surface = _EGL_PBUFFER_BIT
	}
	bit := p.renderableBit()
	r, g, b := pf.ChannelBits()
	attribs := []Int{
		_EGL_RENDERABLE_TYPE, bit,
		_EGL_CONFORMANT, bit,
		_EGL_SURFACE_TYPE, surface,
		_EGL_RED_SIZE, Int(r),
		_EGL_GREEN_SIZE, Int(g),
		_EGL_BLUE_SIZE, Int(b),
		_EGL_DEPTH_SIZE, Int(pf.DepthBits),
		_EGL_STENCIL_SIZE, Int(pf.StencilBits),
		_EGL_CONFIG_CAVEAT, _EGL_NONE,
	}
	alpha := Int(pf.AlphaBits)
	if p.srgb && alpha == 0 && runtime.GOOS == "linux" {
		// Some Mesa drivers crash if an sRGB framebuffer is requested without alpha.
		// https://bugs.freedesktop.org/show_bug.cgi?id=107782.
		alpha = 1
	}
	attribs = append(attribs, _EGL_ALPHA_SIZE, alpha)
	if n := pf.Multisampling; n > 0 {
		attribs = append(attribs, _EGL_SAMPLE_BUFFERS, 1, _EGL_SAMPLES, Int(n))
	}
	return append(attribs, _EGL_NONE)
}

func (p *Prototype) describe() gl.PixelFormat {
	attr := func(a Int) Int {
		var v Int
		p.f.GetConfigAttrib(p.disp, p.config, a, &v)
		return v
	}
	pf := gl.PixelFormat{
		HardwareAccelerated: attr(_EGL_CONFIG_CAVEAT) != _EGL_SLOW_CONFIG,
		ColorBits:           uint8(attr(_EGL_RED_SIZE) + attr(_EGL_GREEN_SIZE) + attr(_EGL_BLUE_SIZE)),
		AlphaBits:           uint8(attr(_EGL_ALPHA_SIZE)),
		DepthBits:           uint8(attr(_EGL_DEPTH_SIZE)),
		StencilBits:         uint8(attr(_EGL_STENCIL_SIZE)),
		DoubleBuffer:        true,
		SRGB:                p.srgb,
	}
	if attr(_EGL_SAMPLE_BUFFERS) != 0 {
		pf.Multisampling = uint16(attr(_EGL_SAMPLES))
	}
	return pf
}

// API returns the client API bound for the prototype.
func (p *Prototype) API() gl.API {
	return p.api
}

// VisualID returns the native visual ID of the chosen configuration.
func (p *Prototype) VisualID() int {
	return p.visualID
}

func (p *Prototype) PixelFormat() gl.PixelFormat {
	return p.format
}

// Release discards an unused prototype.
func (p *Prototype) Release() {
	if p.done {
		return
	}
	p.done = true
	terminate(p.f, p.disp)
}

// NewWindowContext creates a context rendering to win. The prototype is
// consumed, whether or not creation succeeds.
func (p *Prototype) NewWindowContext(share *Context, win NativeWindowType) (*Context, error) {
	return p.finish(share, func() (Surface, error) {
		return p.createWindowSurface(win)
	})
}

// NewPbufferContext creates a context rendering to an off-screen
// pbuffer of the given size.
func (p *Prototype) NewPbufferContext(share *Context, width, height int) (*Context, error) {
	return p.finish(share, func() (Surface, error) {
		attribs := []Int{_EGL_WIDTH, Int(width), _EGL_HEIGHT, Int(height), _EGL_NONE}
		s := p.f.CreatePbufferSurface(p.disp, p.config, &attribs[0])
		issue34474KeepAlive(attribs)
		if s == nilSurface {
			return nilSurface, p.f.fail("eglCreatePbufferSurface")
		}
		return s, nil
	})
}

func (p *Prototype) finish(share *Context, surface func() (Surface, error)) (*Context, error) {
	if p.done {
		return nil, ErrConsumed
	}
	p.done = true
	var shareCtx Handle
	if share != nil {
		shareCtx = share.ctx
	}
	ctx, version, err := p.createContext(shareCtx)
	if err != nil {
		terminate(p.f, p.disp)
		return nil, err
	}
	surf, err := surface()
	if err != nil {
		p.f.DestroyContext(p.disp, ctx)
		terminate(p.f, p.disp)
		return nil, err
	}
	return &Context{
		f:       p.f,
		disp:    p.disp,
		ctx:     ctx,
		surf:    surf,
		api:     p.api,
		version: version,
		format:  p.format,
	}, nil
}

func (p *Prototype) esVersions() []gl.Version {
	req := p.attrs.Request
	switch {
	case req.Kind == gl.RequestSpecific:
		return []gl.Version{req.Version}
	case req.Kind == gl.RequestGLThenGLES:
		return []gl.Version{req.GLESVersion}
	case p.khrCreate:
		return gl.ESVersions
	default:
		return []gl.Version{{3, 0}, {2, 0}}
	}
}

func (p *Prototype) versions() []gl.Version {
	if p.api == gl.OpenGLES {
		return p.esVersions()
	}
	if p.attrs.Request.Kind == gl.RequestLatest {
		if !p.khrCreate {
			return []gl.Version{{}}
		}
		return gl.DesktopVersions
	}
	return []gl.Version{p.attrs.Request.Version}
}

func (p *Prototype) createContext(share Handle) (Handle, gl.Version, error) {
	ctx, v, err := p.tryVersions(share)
	if err == nil || !p.fallbackES {
		return ctx, v, err
	}
	log.L().Warn("egl: desktop OpenGL context failed, falling back to OpenGL ES", "err", err)
	p.api = gl.OpenGLES
	return p.tryVersions(share)
}

// tryVersions binds p.api before creating: another prototype may have
// bound a different API on this thread since p was built.
func (p *Prototype) tryVersions(share Handle) (Handle, gl.Version, error) {
	if err := p.f.bindAPI(p.api); err != nil {
		return nilContext, gl.Version{}, err
	}
	var lastErr error
	for _, v := range p.versions() {
		attribs, err := p.contextAttribs(v)
		if err != nil {
			return nilContext, gl.Version{}, err
		}
		ctx := p.f.CreateContext(p.disp, p.config, share, &attribs[0])
		issue34474KeepAlive(attribs)
		if ctx != nilContext {
			return ctx, v, nil
		}
		lastErr = p.f.fail("eglCreateContext")
		log.L().Debug("egl: context version rejected", "api", p.api, "version", v, "err", lastErr)
	}
	return nilContext, gl.Version{}, lastErr
}

func (p *Prototype) contextAttribs(v gl.Version) ([]Int, error) {
	var attribs []Int
	switch {
	case p.khrCreate:
		attribs = append(attribs,
			_EGL_CONTEXT_CLIENT_VERSION, Int(v.Major),
			_EGL_CONTEXT_MINOR_VERSION, Int(v.Minor),
		)
		if p.api == gl.OpenGL && !v.Less(gl.Version{3, 2}) {
			switch p.attrs.Profile {
			case gl.ProfileCore:
				attribs = append(attribs, _EGL_CONTEXT_OPENGL_PROFILE_MASK, _EGL_CONTEXT_OPENGL_CORE_PROFILE_BIT)
			case gl.ProfileCompatibility:
				attribs = append(attribs, _EGL_CONTEXT_OPENGL_PROFILE_MASK, _EGL_CONTEXT_OPENGL_COMPATIBILITY_BIT)
			}
		}
		if p.attrs.Debug {
			attribs = append(attribs, _EGL_CONTEXT_FLAGS_KHR, _EGL_CONTEXT_OPENGL_DEBUG_BIT_KHR)
		}
	case p.api == gl.OpenGLES:
		if v.Minor != 0 {
			return nil, fmt.Errorf("%w: OpenGL ES %v needs EGL_KHR_create_context", gl.ErrUnsupported, v)
		}
		attribs = append(attribs, _EGL_CONTEXT_CLIENT_VERSION, Int(v.Major))
	case v != gl.Version{}:
		return nil, fmt.Errorf("%w: OpenGL %v needs EGL_KHR_create_context", gl.ErrUnsupported, v)
	}
	return append(attribs, _EGL_NONE), nil
}

func (p *Prototype) createWindowSurface(win NativeWindowType) (Surface, error) {
	var attribs []Int
	if p.srgb {
		attribs = append(attribs, _EGL_GL_COLORSPACE_KHR, _EGL_GL_COLORSPACE_SRGB_KHR)
	}
	attribs = append(attribs, _EGL_NONE)
	surf := p.f.CreateWindowSurface(p.disp, p.config, win, &attribs[0])
	issue34474KeepAlive(attribs)
	if surf == nilSurface && p.srgb {
		// Try again without sRGB.
		log.L().Warn("egl: sRGB window surface rejected, retrying without", "err", p.f.fail("eglCreateWindowSurface"))
		p.srgb = false
		p.format.SRGB = false
		attribs = []Int{_EGL_NONE}
		surf = p.f.CreateWindowSurface(p.disp, p.config, win, &attribs[0])
		issue34474KeepAlive(attribs)
	}
	if surf == nilSurface {
		return nilSurface, p.f.fail("eglCreateWindowSurface")
	}
	return surf, nil
}
