// SPDX-License-Identifier: Unlicense OR MIT

// Package egl implements OpenGL and OpenGL ES contexts through EGL.
package egl

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/exp/slices"

	"gioui.org/glctx/internal/dl"
	"gioui.org/glctx/internal/gl"
)

type (
	Int               int32
	Boolean           uint32
	Enum              uint32
	Display           uintptr
	Config            uintptr
	Handle            uintptr
	Surface           uintptr
	NativeDisplayType uintptr
	NativeWindowType  uintptr
)

const (
	_EGL_SUCCESS                          = 0x3000
	_EGL_CONTEXT_LOST                     = 0x300e
	_EGL_BUFFER_SIZE                      = 0x3020
	_EGL_ALPHA_SIZE                       = 0x3021
	_EGL_BLUE_SIZE                        = 0x3022
	_EGL_GREEN_SIZE                       = 0x3023
	_EGL_RED_SIZE                         = 0x3024
	_EGL_DEPTH_SIZE                       = 0x3025
	_EGL_STENCIL_SIZE                     = 0x3026
	_EGL_CONFIG_CAVEAT                    = 0x3027
	_EGL_SAMPLES                          = 0x3031
	_EGL_SAMPLE_BUFFERS                   = 0x3032
	_EGL_SURFACE_TYPE                     = 0x3033
	_EGL_NONE                             = 0x3038
	_EGL_RENDERABLE_TYPE                  = 0x3040
	_EGL_CONFORMANT                       = 0x3042
	_EGL_NATIVE_VISUAL_ID                 = 0x302e
	_EGL_SLOW_CONFIG                      = 0x3050
	_EGL_VERSION                          = 0x3054
	_EGL_EXTENSIONS                       = 0x3055
	_EGL_HEIGHT                           = 0x3056
	_EGL_WIDTH                            = 0x3057
	_EGL_CLIENT_APIS                      = 0x308d
	_EGL_GL_COLORSPACE_SRGB_KHR           = 0x3089
	_EGL_CONTEXT_CLIENT_VERSION           = 0x3098
	_EGL_GL_COLORSPACE_KHR                = 0x309d
	_EGL_OPENGL_ES_API                    = 0x30a0
	_EGL_OPENGL_API                       = 0x30a2
	_EGL_CONTEXT_MINOR_VERSION            = 0x30fb
	_EGL_CONTEXT_FLAGS_KHR                = 0x30fc
	_EGL_CONTEXT_OPENGL_PROFILE_MASK      = 0x30fd
	_EGL_CONTEXT_OPENGL_DEBUG             = 0x31b0
	_EGL_PBUFFER_BIT                      = 0x1
	_EGL_WINDOW_BIT                       = 0x4
	_EGL_OPENGL_ES2_BIT                   = 0x4
	_EGL_OPENGL_BIT                       = 0x8
	_EGL_OPENGL_ES3_BIT                   = 0x40
	_EGL_CONTEXT_OPENGL_CORE_PROFILE_BIT  = 0x1
	_EGL_CONTEXT_OPENGL_COMPATIBILITY_BIT = 0x2
	_EGL_CONTEXT_OPENGL_DEBUG_BIT_KHR     = 0x1
	_EGL_TRUE                             = 1
)

var (
	nilDisplay Display
	nilSurface Surface
	nilContext Handle
	nilConfig  Config
)

// Funcs is the EGL function table.
type Funcs struct {
	GetDisplay           func(disp NativeDisplayType) Display
	Initialize           func(disp Display, major, minor *Int) Boolean
	Terminate            func(disp Display) Boolean
	QueryString          func(disp Display, name Int) string
	BindAPI              func(api Enum) Boolean
	ChooseConfig         func(disp Display, attribs *Int, configs *Config, size Int, n *Int) Boolean
	GetConfigAttrib      func(disp Display, cfg Config, attr Int, val *Int) Boolean
	CreateContext        func(disp Display, cfg Config, share Handle, attribs *Int) Handle
	DestroyContext       func(disp Display, ctx Handle) Boolean
	CreateWindowSurface  func(disp Display, cfg Config, win NativeWindowType, attribs *Int) Surface
	CreatePbufferSurface func(disp Display, cfg Config, attribs *Int) Surface
	DestroySurface       func(disp Display, surf Surface) Boolean
	MakeCurrent          func(disp Display, draw, read Surface, ctx Handle) Boolean
	GetCurrentContext    func() Handle
	SwapBuffers          func(disp Display, surf Surface) Boolean
	SwapInterval         func(disp Display, interval Int) Boolean
	GetProcAddress       func(name string) uintptr
	GetError             func() Int
	ReleaseThread        func() Boolean
}

// Load binds the EGL table from lib.
func Load(lib *dl.Library) (*Funcs, error) {
	f := new(Funcs)
	err := lib.BindAll(map[string]any{
		"eglGetDisplay":           &f.GetDisplay,
		"eglInitialize":           &f.Initialize,
		"eglTerminate":            &f.Terminate,
		"eglQueryString":          &f.QueryString,
		"eglBindAPI":              &f.BindAPI,
		"eglChooseConfig":         &f.ChooseConfig,
		"eglGetConfigAttrib":      &f.GetConfigAttrib,
		"eglCreateContext":        &f.CreateContext,
		"eglDestroyContext":       &f.DestroyContext,
		"eglCreateWindowSurface":  &f.CreateWindowSurface,
		"eglCreatePbufferSurface": &f.CreatePbufferSurface,
		"eglDestroySurface":       &f.DestroySurface,
		"eglMakeCurrent":          &f.MakeCurrent,
		"eglGetCurrentContext":    &f.GetCurrentContext,
		"eglSwapBuffers":          &f.SwapBuffers,
		"eglSwapInterval":         &f.SwapInterval,
		"eglGetProcAddress":       &f.GetProcAddress,
		"eglGetError":             &f.GetError,
		"eglReleaseThread":        &f.ReleaseThread,
	})
	if err != nil {
		return nil, fmt.Errorf("egl: %w", err)
	}
	return f, nil
}

// ErrContextLost matches errors caused by a lost context, such as after
// a power management event.
var ErrContextLost = errors.New("egl: context lost")

// Error is a failed EGL call and the code eglGetError reported.
type Error struct {
	Op   string
	Code Int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: 0x%x", e.Op, e.Code)
}

func (e *Error) Is(target error) bool {
	return target == ErrContextLost && e.Code == _EGL_CONTEXT_LOST
}

func (f *Funcs) fail(op string) error {
	return &Error{Op: op, Code: f.GetError()}
}

// displays counts the users of every initialized display. eglTerminate
// affects every context on a display, so only the last user issues it.
var (
	displaysMu sync.Mutex
	displays   = make(map[Display]int)
)

func initialize(f *Funcs, disp Display) (major, minor Int, err error) {
	if f.Initialize(disp, &major, &minor) != _EGL_TRUE {
		return 0, 0, f.fail("eglInitialize")
	}
	displaysMu.Lock()
	displays[disp]++
	displaysMu.Unlock()
	return major, minor, nil
}

func terminate(f *Funcs, disp Display) {
	displaysMu.Lock()
	n := displays[disp] - 1
	if n > 0 {
		displays[disp] = n
	} else {
		delete(displays, disp)
	}
	displaysMu.Unlock()
	if n <= 0 {
		f.Terminate(disp)
	}
}

// bindAPI makes api the client API of the calling thread. The binding
// is per thread, so every call that depends on it binds first.
func (f *Funcs) bindAPI(api gl.API) error {
	if api == gl.OpenGL {
		if f.BindAPI(_EGL_OPENGL_API) != _EGL_TRUE {
			return f.fail("eglBindAPI(EGL_OPENGL_API)")
		}
		return nil
	}
	if f.BindAPI(_EGL_OPENGL_ES_API) != _EGL_TRUE {
		return f.fail("eglBindAPI(EGL_OPENGL_ES_API)")
	}
	return nil
}

func (f *Funcs) queryList(disp Display, name Int) []string {
	return strings.Fields(f.QueryString(disp, name))
}

func hasExtension(exts []string, ext string) bool {
	return slices.Contains(exts, ext)
}

// issue34474KeepAlive calls runtime.KeepAlive as a
// workaround for golang.org/issue/34474.
func issue34474KeepAlive(v any) {
	runtime.KeepAlive(v)
}
