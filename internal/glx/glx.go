// SPDX-License-Identifier: Unlicense OR MIT

// Package glx implements OpenGL contexts on X11 through GLX.
package glx

import (
	"fmt"
	"strings"

	"github.com/ebitengine/purego"
	"golang.org/x/exp/slices"

	"gioui.org/glctx/internal/dl"
	"gioui.org/glctx/internal/xlib"
)

type (
	FBConfig uintptr
	Handle   uintptr
)

const (
	_GLX_NONE                 = 0x8000
	_GLX_SLOW_CONFIG          = 0x8001
	_GLX_CONFIG_CAVEAT        = 0x20
	_GLX_X_VISUAL_TYPE        = 0x22
	_GLX_TRUE_COLOR           = 0x8002
	_GLX_DOUBLEBUFFER         = 5
	_GLX_STEREO               = 6
	_GLX_RED_SIZE             = 8
	_GLX_GREEN_SIZE           = 9
	_GLX_BLUE_SIZE            = 10
	_GLX_ALPHA_SIZE           = 11
	_GLX_DEPTH_SIZE           = 12
	_GLX_STENCIL_SIZE         = 13
	_GLX_DRAWABLE_TYPE        = 0x8010
	_GLX_RENDER_TYPE          = 0x8011
	_GLX_X_RENDERABLE         = 0x8012
	_GLX_RGBA_TYPE            = 0x8014
	_GLX_WINDOW_BIT           = 0x1
	_GLX_RGBA_BIT             = 0x1
	_GLX_SAMPLE_BUFFERS       = 100000
	_GLX_SAMPLES              = 100001
	_GLX_FRAMEBUFFER_SRGB_ARB = 0x20b2

	_GLX_CONTEXT_MAJOR_VERSION_ARB   = 0x2091
	_GLX_CONTEXT_MINOR_VERSION_ARB   = 0x2092
	_GLX_CONTEXT_FLAGS_ARB           = 0x2094
	_GLX_CONTEXT_PROFILE_MASK_ARB    = 0x9126
	_GLX_CONTEXT_DEBUG_BIT_ARB       = 0x1
	_GLX_CONTEXT_CORE_PROFILE_BIT    = 0x1
	_GLX_CONTEXT_COMPATIBILITY_BIT   = 0x2
	_GLX_CONTEXT_ES2_PROFILE_BIT_EXT = 0x4
)

const attribEnd int32 = 0

// Funcs is the GLX function table.
type Funcs struct {
	ChooseFBConfig        func(dpy uintptr, screen int32, attribs *int32, n *int32) *FBConfig
	GetFBConfigAttrib     func(dpy uintptr, cfg FBConfig, attr int32, val *int32) int32
	GetVisualFromFBConfig func(dpy uintptr, cfg FBConfig) *xlib.VisualInfo
	CreateNewContext      func(dpy uintptr, cfg FBConfig, renderType int32, share Handle, direct int32) Handle
	MakeCurrent           func(dpy, drawable uintptr, ctx Handle) int32
	GetCurrentContext     func() Handle
	SwapBuffers           func(dpy, drawable uintptr)
	DestroyContext        func(dpy uintptr, ctx Handle)
	GetProcAddress        func(name string) uintptr
	QueryExtensionsString func(dpy uintptr, screen int32) string

	// Extension entry points, nil when missing.
	CreateContextAttribsARB func(dpy uintptr, cfg FBConfig, share Handle, direct int32, attribs *int32) Handle
	SwapIntervalEXT         func(dpy, drawable uintptr, interval int32)
}

// Libraries are the names libGL is loaded under, in order.
var Libraries = []string{"libGL.so.1", "libGL.so"}

// Load binds the GLX table from lib.
func Load(lib *dl.Library) (*Funcs, error) {
	f := new(Funcs)
	err := lib.BindAll(map[string]any{
		"glXChooseFBConfig":        &f.ChooseFBConfig,
		"glXGetFBConfigAttrib":     &f.GetFBConfigAttrib,
		"glXGetVisualFromFBConfig": &f.GetVisualFromFBConfig,
		"glXCreateNewContext":      &f.CreateNewContext,
		"glXMakeCurrent":           &f.MakeCurrent,
		"glXGetCurrentContext":     &f.GetCurrentContext,
		"glXSwapBuffers":           &f.SwapBuffers,
		"glXDestroyContext":        &f.DestroyContext,
		"glXGetProcAddressARB":     &f.GetProcAddress,
		"glXQueryExtensionsString": &f.QueryExtensionsString,
	})
	if err != nil {
		return nil, fmt.Errorf("glx: %w", err)
	}
	if addr := f.GetProcAddress("glXCreateContextAttribsARB"); addr != 0 {
		purego.RegisterFunc(&f.CreateContextAttribsARB, addr)
	}
	if addr := f.GetProcAddress("glXSwapIntervalEXT"); addr != 0 {
		purego.RegisterFunc(&f.SwapIntervalEXT, addr)
	}
	return f, nil
}

func (f *Funcs) extensions(c *xlib.Conn, screen int32) []string {
	if f.QueryExtensionsString == nil {
		return nil
	}
	return strings.Fields(f.QueryExtensionsString(c.Handle(), screen))
}

func hasExtension(exts []string, ext string) bool {
	return slices.Contains(exts, ext)
}
