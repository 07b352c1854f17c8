// SPDX-License-Identifier: Unlicense OR MIT

// Package wgl implements desktop OpenGL contexts through WGL, the
// native Windows interface.
package wgl

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"

	"gioui.org/glctx/internal/dl"
)

type (
	HDC   uintptr
	HGLRC uintptr
)

// PixelFormatDescriptor mirrors PIXELFORMATDESCRIPTOR.
type PixelFormatDescriptor struct {
	Size           uint16
	Version        uint16
	Flags          uint32
	PixelType      uint8
	ColorBits      uint8
	RedBits        uint8
	RedShift       uint8
	GreenBits      uint8
	GreenShift     uint8
	BlueBits       uint8
	BlueShift      uint8
	AlphaBits      uint8
	AlphaShift     uint8
	AccumBits      uint8
	AccumRedBits   uint8
	AccumGreenBits uint8
	AccumBlueBits  uint8
	AccumAlphaBits uint8
	DepthBits      uint8
	StencilBits    uint8
	AuxBuffers     uint8
	LayerType      uint8
	Reserved       uint8
	LayerMask      uint32
	VisibleMask    uint32
	DamageMask     uint32
}

const (
	PFD_DOUBLEBUFFER          = 0x1
	PFD_STEREO                = 0x2
	PFD_DRAW_TO_WINDOW        = 0x4
	PFD_SUPPORT_OPENGL        = 0x20
	PFD_GENERIC_FORMAT        = 0x40
	PFD_GENERIC_ACCELERATED   = 0x1000
	PFD_DOUBLEBUFFER_DONTCARE = 0x40000000
	PFD_STEREO_DONTCARE       = 0x80000000
	PFD_TYPE_RGBA             = 0
	PFD_MAIN_PLANE            = 0
)

const (
	_WGL_CONTEXT_MAJOR_VERSION_ARB             = 0x2091
	_WGL_CONTEXT_MINOR_VERSION_ARB             = 0x2092
	_WGL_CONTEXT_FLAGS_ARB                     = 0x2094
	_WGL_CONTEXT_PROFILE_MASK_ARB              = 0x9126
	_WGL_CONTEXT_DEBUG_BIT_ARB                 = 0x1
	_WGL_CONTEXT_CORE_PROFILE_BIT_ARB          = 0x1
	_WGL_CONTEXT_COMPATIBILITY_PROFILE_BIT_ARB = 0x2
)

// Funcs is the WGL function table, bound from gdi32.dll and
// opengl32.dll.
type Funcs struct {
	ChoosePixelFormat   func(hdc HDC, pfd *PixelFormatDescriptor) int32
	DescribePixelFormat func(hdc HDC, index int32, size uint32, pfd *PixelFormatDescriptor) int32
	GetPixelFormat      func(hdc HDC) int32
	SetPixelFormat      func(hdc HDC, index int32, pfd *PixelFormatDescriptor) int32
	SwapBuffers         func(hdc HDC) int32
	CreateContext       func(hdc HDC) HGLRC
	DeleteContext       func(ctx HGLRC) int32
	MakeCurrent         func(hdc HDC, ctx HGLRC) int32
	GetCurrentContext   func() HGLRC
	GetCurrentDC        func() HDC
	GetProcAddress      func(name string) uintptr
	ShareLists          func(a, b HGLRC) int32
	// Export resolves a symbol exported by opengl32.dll. OpenGL 1.1
	// functions are only available this way.
	Export    func(name string) uintptr
	LastError func() error

	// Extensions, resolved once a context is current.
	CreateContextAttribsARB func(hdc HDC, share HGLRC, attribs *int32) HGLRC
	SwapIntervalEXT         func(interval int32) int32
	resolved                bool
}

var (
	GDILibraries    = []string{"gdi32.dll"}
	OpenGLLibraries = []string{"opengl32.dll"}
)

// Load binds the table from the gdi32 and opengl32 libraries.
func Load(gdi, opengl *dl.Library) (*Funcs, error) {
	f := new(Funcs)
	err := gdi.BindAll(map[string]any{
		"ChoosePixelFormat":   &f.ChoosePixelFormat,
		"DescribePixelFormat": &f.DescribePixelFormat,
		"GetPixelFormat":      &f.GetPixelFormat,
		"SetPixelFormat":      &f.SetPixelFormat,
		"SwapBuffers":         &f.SwapBuffers,
	})
	if err != nil {
		return nil, fmt.Errorf("wgl: %w", err)
	}
	err = opengl.BindAll(map[string]any{
		"wglCreateContext":     &f.CreateContext,
		"wglDeleteContext":     &f.DeleteContext,
		"wglMakeCurrent":       &f.MakeCurrent,
		"wglGetCurrentContext": &f.GetCurrentContext,
		"wglGetCurrentDC":      &f.GetCurrentDC,
		"wglGetProcAddress":    &f.GetProcAddress,
		"wglShareLists":        &f.ShareLists,
	})
	if err != nil {
		return nil, fmt.Errorf("wgl: %w", err)
	}
	f.Export = func(name string) uintptr {
		addr, _ := opengl.Sym(name)
		return addr
	}
	f.LastError = lastError
	return f, nil
}

// validProc reports whether addr is a usable wglGetProcAddress
// result. Some drivers return small integers instead of NULL.
func validProc(addr uintptr) bool {
	switch addr {
	case 0, 1, 2, 3, ^uintptr(0):
		return false
	}
	return true
}

// ProcAddress resolves name through wglGetProcAddress, falling back to
// the opengl32.dll export table.
func (f *Funcs) ProcAddress(name string) uintptr {
	if addr := f.GetProcAddress(name); validProc(addr) {
		return addr
	}
	if f.Export == nil {
		return 0
	}
	return f.Export(name)
}

// resolveExtensions binds the extension entry points. A context must
// be current.
func (f *Funcs) resolveExtensions() {
	if f.resolved {
		return
	}
	f.resolved = true
	if f.CreateContextAttribsARB == nil {
		if addr := f.GetProcAddress("wglCreateContextAttribsARB"); validProc(addr) {
			purego.RegisterFunc(&f.CreateContextAttribsARB, addr)
		}
	}
	if f.SwapIntervalEXT == nil {
		if addr := f.GetProcAddress("wglSwapIntervalEXT"); validProc(addr) {
			purego.RegisterFunc(&f.SwapIntervalEXT, addr)
		}
	}
}

// Error is a failed WGL or GDI call.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (f *Funcs) fail(op string) error {
	var err error
	if f.LastError != nil {
		err = f.LastError()
	}
	return &Error{Op: op, Err: err}
}

var ErrSoftware = errors.New("wgl: pixel format is not hardware accelerated")

func descriptorSize() uint32 {
	return uint32(unsafe.Sizeof(PixelFormatDescriptor{}))
}
