// SPDX-License-Identifier: Unlicense OR MIT

// Package wayland binds the wl_egl_window functions of libwayland-egl,
// which turn a wl_surface into a native window EGL can render to.
package wayland

import (
	"errors"
	"fmt"

	"gioui.org/glctx/internal/dl"
)

// Funcs is the libwayland-egl function table.
type Funcs struct {
	WindowCreate  func(surface uintptr, width, height int32) uintptr
	WindowDestroy func(win uintptr)
	WindowResize  func(win uintptr, width, height, dx, dy int32)
}

var Libraries = []string{"libwayland-egl.so.1", "libwayland-egl.so"}

func Load(lib *dl.Library) (*Funcs, error) {
	f := new(Funcs)
	err := lib.BindAll(map[string]any{
		"wl_egl_window_create":  &f.WindowCreate,
		"wl_egl_window_destroy": &f.WindowDestroy,
		"wl_egl_window_resize":  &f.WindowResize,
	})
	if err != nil {
		return nil, fmt.Errorf("wayland: %w", err)
	}
	return f, nil
}

var ErrNoSurface = errors.New("wayland: nil wl_surface")

// Window is a wl_egl_window.
type Window struct {
	f             *Funcs
	win           uintptr
	width, height int32
}

// NewWindow creates a wl_egl_window of the given size for surface.
func NewWindow(f *Funcs, surface uintptr, width, height int) (*Window, error) {
	if surface == 0 {
		return nil, ErrNoSurface
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("wayland: invalid window size %dx%d", width, height)
	}
	win := f.WindowCreate(surface, int32(width), int32(height))
	if win == 0 {
		return nil, errors.New("wayland: wl_egl_window_create failed")
	}
	return &Window{f: f, win: win, width: int32(width), height: int32(height)}, nil
}

// Handle returns the wl_egl_window pointer to pass to
// eglCreateWindowSurface.
func (w *Window) Handle() uintptr {
	return w.win
}

func (w *Window) Size() (width, height int) {
	return int(w.width), int(w.height)
}

// Resize changes the window size. Unchanged sizes are ignored.
func (w *Window) Resize(width, height int) {
	if w.win == 0 || width <= 0 || height <= 0 {
		return
	}
	if int32(width) == w.width && int32(height) == w.height {
		return
	}
	w.width, w.height = int32(width), int32(height)
	w.f.WindowResize(w.win, w.width, w.height, 0, 0)
}

// Destroy frees the window. Destroying twice is a no-op.
func (w *Window) Destroy() {
	if w.win == 0 {
		return
	}
	w.f.WindowDestroy(w.win)
	w.win = 0
}
