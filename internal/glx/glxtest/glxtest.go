// SPDX-License-Identifier: Unlicense OR MIT

// Package glxtest provides an in-memory stand-in for libGL's GLX entry
// points, served on top of an xlibtest.Server.
package glxtest

import (
	"sync"

	"gioui.org/glctx/internal/gl"
	"gioui.org/glctx/internal/glx"
	"gioui.org/glctx/internal/nativetest"
	"gioui.org/glctx/internal/xlib"
	"gioui.org/glctx/internal/xlib/xlibtest"
)

// requestCode is the GLX major opcode fake creation failures are
// reported with.
const requestCode = 152

// Config is a fake framebuffer configuration.
type Config struct {
	ID      glx.FBConfig
	Visual  xlib.VisualInfo
	Attribs map[int32]int32
}

// Driver is a fake GLX implementation.
type Driver struct {
	Configs    []Config
	Extensions string
	// NoARB hides glXCreateContextAttribsARB.
	NoARB bool
	// MaxVersion is the newest version ARB context creation accepts.
	MaxVersion gl.Version

	srv *xlibtest.Server

	mu       sync.Mutex
	next     glx.Handle
	live     map[glx.Handle]bool
	current  glx.Handle
	requests []map[int32]int32
}

// DefaultConfig is a double buffered 24 bit configuration with depth
// and stencil.
func DefaultConfig() Config {
	return Config{
		ID:     0x71,
		Visual: xlib.VisualInfo{Visual: 0x5000, VisualID: 0x21, Depth: 24},
		Attribs: map[int32]int32{
			8: 8, 9: 8, 10: 8, 11: 8, 12: 24, 13: 8, 5: 1,
		},
	}
}

func New(srv *xlibtest.Server, configs ...Config) *Driver {
	return &Driver{
		Configs:    configs,
		Extensions: "GLX_ARB_create_context GLX_ARB_create_context_profile GLX_ARB_framebuffer_sRGB",
		MaxVersion: gl.Version{4, 6},
		srv:        srv,
		next:       0xc0,
		live:       make(map[glx.Handle]bool),
	}
}

// Live returns the number of contexts not yet destroyed.
func (d *Driver) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, l := range d.live {
		if l {
			n++
		}
	}
	return n
}

// Requests returns the attribute lists of every ARB creation call.
func (d *Driver) Requests() []map[int32]int32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]map[int32]int32(nil), d.requests...)
}

// Current returns the current context.
func (d *Driver) Current() glx.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

func (d *Driver) newContext() glx.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	d.live[d.next] = true
	return d.next
}

func (d *Driver) config(id glx.FBConfig) *Config {
	for i := range d.Configs {
		if d.Configs[i].ID == id {
			return &d.Configs[i]
		}
	}
	return nil
}

// Funcs returns a GLX table served by d.
func (d *Driver) Funcs() *glx.Funcs {
	f := &glx.Funcs{
		ChooseFBConfig: func(_ uintptr, _ int32, _ *int32, n *int32) *glx.FBConfig {
			d.srv.Record("glXChooseFBConfig")
			var ids []glx.FBConfig
			for _, c := range d.Configs {
				ids = append(ids, c.ID)
			}
			*n = int32(len(ids))
			return xlibtest.Alloc(d.srv, ids)
		},
		GetFBConfigAttrib: func(_ uintptr, id glx.FBConfig, attr int32, v *int32) int32 {
			if c := d.config(id); c != nil {
				*v = c.Attribs[attr]
			}
			return 0
		},
		GetVisualFromFBConfig: func(_ uintptr, id glx.FBConfig) *xlib.VisualInfo {
			c := d.config(id)
			if c == nil || c.Visual.Visual == 0 {
				return nil
			}
			return xlibtest.Alloc(d.srv, []xlib.VisualInfo{c.Visual})
		},
		CreateNewContext: func(_ uintptr, _ glx.FBConfig, _ int32, _ glx.Handle, _ int32) glx.Handle {
			d.srv.Record("glXCreateNewContext")
			return d.newContext()
		},
		MakeCurrent: func(_, _ uintptr, ctx glx.Handle) int32 {
			d.mu.Lock()
			d.current = ctx
			d.mu.Unlock()
			d.srv.Record("glXMakeCurrent")
			return 1
		},
		GetCurrentContext: func() glx.Handle {
			return d.Current()
		},
		SwapBuffers: func(_, _ uintptr) {
			d.srv.Record("glXSwapBuffers")
		},
		DestroyContext: func(_ uintptr, ctx glx.Handle) {
			d.mu.Lock()
			d.live[ctx] = false
			d.mu.Unlock()
			d.srv.Record("glXDestroyContext")
		},
		GetProcAddress: func(name string) uintptr {
			return 0xf00
		},
		QueryExtensionsString: func(uintptr, int32) string {
			return d.Extensions
		},
	}
	if !d.NoARB {
		f.CreateContextAttribsARB = func(_ uintptr, _ glx.FBConfig, _ glx.Handle, _ int32, attribs *int32) glx.Handle {
			d.srv.Record("glXCreateContextAttribsARB")
			a := nativetest.Attribs(attribs, 0)
			d.mu.Lock()
			d.requests = append(d.requests, a)
			d.mu.Unlock()
			v := gl.Version{Major: uint8(a[0x2091]), Minor: uint8(a[0x2092])}
			if d.MaxVersion.Less(v) {
				d.srv.Fail(requestCode)
				return 0
			}
			return d.newContext()
		}
	}
	return f
}
