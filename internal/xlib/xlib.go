// SPDX-License-Identifier: Unlicense OR MIT

// Package xlib binds the handful of Xlib calls context creation needs
// and manages shared display connections.
package xlib

import (
	"fmt"
	"unsafe"

	"gioui.org/glctx/internal/dl"
)

// VisualInfo mirrors XVisualInfo.
type VisualInfo struct {
	Visual       uintptr
	VisualID     uint
	Screen       int32
	Depth        int32
	Class        int32
	RedMask      uint
	GreenMask    uint
	BlueMask     uint
	ColormapSize int32
	BitsPerRGB   int32
}

// ErrorEvent mirrors XErrorEvent.
type ErrorEvent struct {
	Type        int32
	Display     uintptr
	ResourceID  uintptr
	Serial      uint
	ErrorCode   uint8
	RequestCode uint8
	MinorCode   uint8
}

const (
	VisualIDMask = 0x1
	AllocNone    = 0
)

// Funcs is the Xlib function table.
type Funcs struct {
	OpenDisplay       func(name *byte) uintptr
	CloseDisplay      func(dpy uintptr) int32
	DefaultScreen     func(dpy uintptr) int32
	RootWindow        func(dpy uintptr, screen int32) uintptr
	GetVisualInfo     func(dpy uintptr, mask int, template *VisualInfo, n *int32) *VisualInfo
	Free              func(data unsafe.Pointer) int32
	CreateColormap    func(dpy, win, visual uintptr, alloc int32) uintptr
	FreeColormap      func(dpy, cmap uintptr) int32
	SetWindowColormap func(dpy, win, cmap uintptr) int32
	Sync              func(dpy uintptr, discard int32) int32
	SetErrorHandler   func(handler uintptr) uintptr
	GetErrorText      func(dpy uintptr, code int32, buf *byte, n int32) int32
}

// Libraries are the names libX11 is loaded under, in order.
var Libraries = []string{"libX11.so.6", "libX11.so"}

// Load binds the Xlib table from lib.
func Load(lib *dl.Library) (*Funcs, error) {
	f := new(Funcs)
	err := lib.BindAll(map[string]any{
		"XOpenDisplay":       &f.OpenDisplay,
		"XCloseDisplay":      &f.CloseDisplay,
		"XDefaultScreen":     &f.DefaultScreen,
		"XRootWindow":        &f.RootWindow,
		"XGetVisualInfo":     &f.GetVisualInfo,
		"XFree":              &f.Free,
		"XCreateColormap":    &f.CreateColormap,
		"XFreeColormap":      &f.FreeColormap,
		"XSetWindowColormap": &f.SetWindowColormap,
		"XSync":              &f.Sync,
		"XSetErrorHandler":   &f.SetErrorHandler,
		"XGetErrorText":      &f.GetErrorText,
	})
	if err != nil {
		return nil, fmt.Errorf("xlib: %w", err)
	}
	return f, nil
}

// Error is an error reported by the X server.
type Error struct {
	Description string
	ErrorCode   uint8
	RequestCode uint8
	MinorCode   uint8
}

func (e Error) Error() string {
	return fmt.Sprintf("X error %d (request %d.%d): %s", e.ErrorCode, e.RequestCode, e.MinorCode, e.Description)
}

func cString(s string) *byte {
	b := append([]byte(s), 0)
	return &b[0]
}
