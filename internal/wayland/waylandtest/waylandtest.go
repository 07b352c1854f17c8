// SPDX-License-Identifier: Unlicense OR MIT

// Package waylandtest fakes libwayland-egl.
package waylandtest

import (
	"fmt"
	"sync"

	"gioui.org/glctx/internal/nativetest"
	"gioui.org/glctx/internal/wayland"
)

type Window struct {
	Surface       uintptr
	Width, Height int32
}

// Lib is a fake libwayland-egl.
type Lib struct {
	*nativetest.Trace

	mu      sync.Mutex
	next    uintptr
	windows map[uintptr]*Window
}

func New(trace *nativetest.Trace) *Lib {
	if trace == nil {
		trace = new(nativetest.Trace)
	}
	return &Lib{Trace: trace, next: 0x9000, windows: make(map[uintptr]*Window)}
}

// Window returns the live window w, or nil.
func (l *Lib) Window(w uintptr) *Window {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.windows[w]
}

// Live returns the number of windows not yet destroyed.
func (l *Lib) Live() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

func (l *Lib) Funcs() *wayland.Funcs {
	return &wayland.Funcs{
		WindowCreate: func(surface uintptr, width, height int32) uintptr {
			l.Record("wl_egl_window_create")
			l.mu.Lock()
			defer l.mu.Unlock()
			l.next++
			l.windows[l.next] = &Window{Surface: surface, Width: width, Height: height}
			return l.next
		},
		WindowDestroy: func(win uintptr) {
			l.Record("wl_egl_window_destroy")
			l.mu.Lock()
			defer l.mu.Unlock()
			if l.windows[win] == nil {
				panic(fmt.Sprintf("waylandtest: destroy of unknown window %#x", win))
			}
			delete(l.windows, win)
		},
		WindowResize: func(win uintptr, width, height, dx, dy int32) {
			l.Record("wl_egl_window_resize")
			l.mu.Lock()
			defer l.mu.Unlock()
			w := l.windows[win]
			w.Width, w.Height = width, height
		},
	}
}
