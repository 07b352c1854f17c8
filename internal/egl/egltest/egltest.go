// SPDX-License-Identifier: Unlicense OR MIT

// Package egltest provides an in-memory stand-in for libEGL.
package egltest

import (
	"sync"

	"gioui.org/glctx/internal/egl"
	"gioui.org/glctx/internal/gl"
	"gioui.org/glctx/internal/nativetest"
)

const (
	success      = 0x3000
	notInit      = 0x3001
	badContext   = 0x3006
	badMatch     = 0x3009
	contextLost  = 0x300e
	none         = 0x3038
	colorspace   = 0x309d
	clientMajor  = 0x3098
	clientMinor  = 0x30fb
	renderable   = 0x3040
	conformant   = 0x3042
	surfaceType  = 0x3033
	configCaveat = 0x3027
	esAPI        = 0x30a0
	glAPI        = 0x30a2
)

// Config is a fake framebuffer configuration.
type Config struct {
	ID      egl.Config
	Attribs map[egl.Int]egl.Int
}

// DefaultConfig is an RGBA8 configuration with 24 bit depth and 8 bit
// stencil, renderable with every client API on windows and pbuffers.
func DefaultConfig() Config {
	return Config{
		ID: 0x91,
		Attribs: map[egl.Int]egl.Int{
			0x3024: 8, 0x3023: 8, 0x3022: 8, 0x3021: 8,
			0x3025: 24, 0x3026: 8,
			renderable: 0x4c, conformant: 0x4c,
			surfaceType:  0x5,
			configCaveat: none,
			0x302e:       0x21,
		},
	}
}

// Driver is a fake EGL implementation.
type Driver struct {
	*nativetest.Trace

	Configs    []Config
	Extensions string
	ClientAPIs string
	// Version is reported by eglInitialize.
	Version gl.Version
	// MaxVersion bounds the context versions accepted per client API.
	MaxVersion map[gl.API]gl.Version
	// RejectSRGBSurface fails window surfaces asking for an sRGB
	// colorspace.
	RejectSRGBSurface bool
	// FailWindowSurface fails every window surface creation.
	FailWindowSurface bool
	// LoseContext fails every swap with EGL_CONTEXT_LOST.
	LoseContext bool

	mu       sync.Mutex
	inits    map[egl.Display]bool
	next     uintptr
	api      egl.Enum
	contexts map[egl.Handle]bool
	apis     map[egl.Handle]gl.API
	surfaces map[egl.Surface]bool
	current  egl.Handle
	lastErr  egl.Int
	requests []map[egl.Int]egl.Int
}

// New returns a driver with a single DefaultConfig, EGL 1.5 and both
// OpenGL and OpenGL ES. A nil trace gets a private one.
func New(trace *nativetest.Trace) *Driver {
	if trace == nil {
		trace = new(nativetest.Trace)
	}
	return &Driver{
		Trace:      trace,
		Configs:    []Config{DefaultConfig()},
		Extensions: "EGL_KHR_create_context EGL_KHR_gl_colorspace EGL_KHR_surfaceless_context",
		ClientAPIs: "OpenGL_ES OpenGL",
		Version:    gl.Version{1, 5},
		MaxVersion: map[gl.API]gl.Version{
			gl.OpenGL:   {4, 6},
			gl.OpenGLES: {3, 2},
		},
		inits:    make(map[egl.Display]bool),
		next:     0x100,
		api:      esAPI,
		contexts: make(map[egl.Handle]bool),
		apis:     make(map[egl.Handle]gl.API),
		surfaces: make(map[egl.Surface]bool),
		lastErr:  success,
	}
}

// Initialized reports whether disp is initialized. Like real EGL,
// repeated eglInitialize calls do not nest.
func (d *Driver) Initialized(disp egl.Display) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inits[disp]
}

// Live returns the number of contexts and surfaces not yet destroyed.
func (d *Driver) Live() (contexts, surfaces int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.contexts), len(d.surfaces)
}

// Requests returns the attribute lists passed to eglCreateContext.
func (d *Driver) Requests() []map[egl.Int]egl.Int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]map[egl.Int]egl.Int(nil), d.requests...)
}

// BoundAPI reports the client API of the last successful eglBindAPI.
func (d *Driver) BoundAPI() gl.API {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.api == glAPI {
		return gl.OpenGL
	}
	return gl.OpenGLES
}

// ContextAPI returns the client API that was bound when ctx was
// created.
func (d *Driver) ContextAPI(ctx egl.Handle) gl.API {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.apis[ctx]
}

func (d *Driver) setError(code egl.Int) {
	d.lastErr = code
}

func (d *Driver) alloc() uintptr {
	d.next++
	return d.next
}

func (d *Driver) matches(c Config, req map[egl.Int]egl.Int) bool {
	for k, v := range req {
		have := c.Attribs[k]
		switch k {
		case renderable, conformant, surfaceType:
			if have&v != v {
				return false
			}
		case configCaveat:
			if v != none && have != v {
				return false
			}
			if v == none && have != none && have != 0 {
				return false
			}
		default:
			if have < v {
				return false
			}
		}
	}
	return true
}

// Funcs returns the function table backed by d.
func (d *Driver) Funcs() *egl.Funcs {
	return &egl.Funcs{
		GetDisplay: func(nd egl.NativeDisplayType) egl.Display {
			d.Record("eglGetDisplay")
			return DisplayFor(nd)
		},
		Initialize: func(disp egl.Display, major, minor *egl.Int) egl.Boolean {
			d.Record("eglInitialize")
			d.mu.Lock()
			defer d.mu.Unlock()
			d.inits[disp] = true
			*major, *minor = egl.Int(d.Version.Major), egl.Int(d.Version.Minor)
			return 1
		},
		Terminate: func(disp egl.Display) egl.Boolean {
			d.Record("eglTerminate")
			d.mu.Lock()
			defer d.mu.Unlock()
			if !d.inits[disp] {
				d.setError(notInit)
				return 0
			}
			delete(d.inits, disp)
			return 1
		},
		QueryString: func(disp egl.Display, name egl.Int) string {
			switch name {
			case 0x3055:
				return d.Extensions
			case 0x308d:
				return d.ClientAPIs
			}
			return ""
		},
		BindAPI: func(api egl.Enum) egl.Boolean {
			d.Record("eglBindAPI")
			d.mu.Lock()
			defer d.mu.Unlock()
			d.api = api
			return 1
		},
		ChooseConfig: func(disp egl.Display, attribs *egl.Int, configs *egl.Config, size egl.Int, n *egl.Int) egl.Boolean {
			d.Record("eglChooseConfig")
			req := nativetest.Attribs(attribs, none)
			*n = 0
			for _, c := range d.Configs {
				if *n < size && d.matches(c, req) {
					*configs = c.ID
					*n = 1
					break
				}
			}
			return 1
		},
		GetConfigAttrib: func(disp egl.Display, cfg egl.Config, attr egl.Int, val *egl.Int) egl.Boolean {
			for _, c := range d.Configs {
				if c.ID == cfg {
					*val = c.Attribs[attr]
					return 1
				}
			}
			d.mu.Lock()
			d.setError(0x3005)
			d.mu.Unlock()
			return 0
		},
		CreateContext: func(disp egl.Display, cfg egl.Config, share egl.Handle, attribs *egl.Int) egl.Handle {
			d.Record("eglCreateContext")
			req := nativetest.Attribs(attribs, none)
			d.mu.Lock()
			defer d.mu.Unlock()
			d.requests = append(d.requests, req)
			if share != 0 && !d.contexts[share] {
				d.setError(badContext)
				return 0
			}
			api := gl.OpenGLES
			if d.api == glAPI {
				api = gl.OpenGL
			}
			v := gl.Version{uint8(req[clientMajor]), uint8(req[clientMinor])}
			if d.MaxVersion[api].Less(v) {
				d.setError(badMatch)
				return 0
			}
			h := egl.Handle(d.alloc())
			d.contexts[h] = true
			d.apis[h] = api
			return h
		},
		DestroyContext: func(disp egl.Display, ctx egl.Handle) egl.Boolean {
			d.Record("eglDestroyContext")
			d.mu.Lock()
			defer d.mu.Unlock()
			if !d.contexts[ctx] {
				d.setError(badContext)
				return 0
			}
			delete(d.contexts, ctx)
			return 1
		},
		CreateWindowSurface: func(disp egl.Display, cfg egl.Config, win egl.NativeWindowType, attribs *egl.Int) egl.Surface {
			d.Record("eglCreateWindowSurface")
			req := nativetest.Attribs(attribs, none)
			d.mu.Lock()
			defer d.mu.Unlock()
			if win == 0 || d.FailWindowSurface || d.RejectSRGBSurface && req[colorspace] != 0 {
				d.setError(badMatch)
				return 0
			}
			s := egl.Surface(d.alloc())
			d.surfaces[s] = true
			return s
		},
		CreatePbufferSurface: func(disp egl.Display, cfg egl.Config, attribs *egl.Int) egl.Surface {
			d.Record("eglCreatePbufferSurface")
			d.mu.Lock()
			defer d.mu.Unlock()
			s := egl.Surface(d.alloc())
			d.surfaces[s] = true
			return s
		},
		DestroySurface: func(disp egl.Display, surf egl.Surface) egl.Boolean {
			d.Record("eglDestroySurface")
			d.mu.Lock()
			defer d.mu.Unlock()
			delete(d.surfaces, surf)
			return 1
		},
		MakeCurrent: func(disp egl.Display, draw, read egl.Surface, ctx egl.Handle) egl.Boolean {
			d.Record("eglMakeCurrent")
			d.mu.Lock()
			defer d.mu.Unlock()
			if ctx != 0 && !d.contexts[ctx] {
				d.setError(badContext)
				return 0
			}
			d.current = ctx
			return 1
		},
		GetCurrentContext: func() egl.Handle {
			d.mu.Lock()
			defer d.mu.Unlock()
			return d.current
		},
		SwapBuffers: func(disp egl.Display, surf egl.Surface) egl.Boolean {
			d.Record("eglSwapBuffers")
			d.mu.Lock()
			defer d.mu.Unlock()
			if d.LoseContext {
				d.setError(contextLost)
				return 0
			}
			return 1
		},
		SwapInterval: func(disp egl.Display, interval egl.Int) egl.Boolean {
			d.Record("eglSwapInterval")
			return 1
		},
		GetProcAddress: func(name string) uintptr {
			if name == "glClear" {
				return 0x7000
			}
			return 0
		},
		GetError: func() egl.Int {
			d.mu.Lock()
			defer d.mu.Unlock()
			code := d.lastErr
			d.lastErr = success
			return code
		},
		ReleaseThread: func() egl.Boolean {
			d.Record("eglReleaseThread")
			return 1
		},
	}
}

// DisplayFor returns the EGLDisplay the driver hands out for nd.
func DisplayFor(nd egl.NativeDisplayType) egl.Display {
	return egl.Display(0xe000 + nd)
}
