// SPDX-License-Identifier: Unlicense OR MIT

// Package xlibtest provides an in-memory stand-in for Xlib.
package xlibtest

import (
	"sync"
	"unsafe"

	"gioui.org/glctx/internal/nativetest"
	"gioui.org/glctx/internal/xlib"
)

// Display is the Display pointer of every fake connection.
const Display uintptr = 0xd15

// BadAlloc is the X error code reported by failing fake calls.
const BadAlloc = 11

// Server is a fake X server. Every call it handles is appended to the
// trace.
type Server struct {
	*nativetest.Trace

	Visuals []xlib.VisualInfo
	// FailColormap makes XCreateColormap report BadAlloc.
	FailColormap bool

	mu      sync.Mutex
	allocs  map[unsafe.Pointer]bool
	nextXID uintptr
	conn    *xlib.Conn
}

func New(visuals ...xlib.VisualInfo) *Server {
	return &Server{
		Trace:   new(nativetest.Trace),
		Visuals: visuals,
		allocs:  make(map[unsafe.Pointer]bool),
		nextXID: 0x400000,
	}
}

// Conn returns a connection to the fake server, opened on first use.
func (s *Server) Conn() *xlib.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		c, err := xlib.Open(s.Funcs(), "")
		if err != nil {
			panic(err)
		}
		s.conn = c
	}
	return s.conn
}

// Outstanding returns the number of Xlib allocations not yet freed.
func (s *Server) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, live := range s.allocs {
		if live {
			n++
		}
	}
	return n
}

// Alloc copies v into an Xlib allocation.
func Alloc[T any](s *Server, v []T) *T {
	if len(v) == 0 {
		return nil
	}
	buf := append([]T(nil), v...)
	p := &buf[0]
	s.mu.Lock()
	s.allocs[unsafe.Pointer(p)] = true
	s.mu.Unlock()
	return p
}

// Fail reports a BadAlloc error for request code req.
func (s *Server) Fail(req uint8) {
	s.conn.Report(xlib.Error{Description: "BadAlloc (insufficient resources for operation)", ErrorCode: BadAlloc, RequestCode: req})
}

func (s *Server) xid() uintptr {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextXID++
	return s.nextXID
}

// Funcs returns an Xlib table served by s.
func (s *Server) Funcs() *xlib.Funcs {
	return &xlib.Funcs{
		OpenDisplay: func(*byte) uintptr {
			s.Record("XOpenDisplay")
			return Display
		},
		CloseDisplay: func(uintptr) int32 {
			s.Record("XCloseDisplay")
			return 0
		},
		DefaultScreen: func(uintptr) int32 { return 0 },
		RootWindow:    func(uintptr, int32) uintptr { return 0x100 },
		GetVisualInfo: func(_ uintptr, mask int, tmpl *xlib.VisualInfo, n *int32) *xlib.VisualInfo {
			s.Record("XGetVisualInfo")
			var matches []xlib.VisualInfo
			for _, v := range s.Visuals {
				if mask&xlib.VisualIDMask == 0 || v.VisualID == tmpl.VisualID {
					matches = append(matches, v)
				}
			}
			*n = int32(len(matches))
			return Alloc(s, matches)
		},
		Free: func(p unsafe.Pointer) int32 {
			s.Record("XFree")
			s.mu.Lock()
			defer s.mu.Unlock()
			if !s.allocs[p] {
				panic("xlibtest: XFree of a pointer not allocated by Xlib")
			}
			s.allocs[p] = false
			return 1
		},
		CreateColormap: func(_, _, _ uintptr, _ int32) uintptr {
			s.Record("XCreateColormap")
			if s.FailColormap {
				s.Fail(78)
				return 0
			}
			return s.xid()
		},
		FreeColormap: func(uintptr, uintptr) int32 {
			s.Record("XFreeColormap")
			return 1
		},
		SetWindowColormap: func(_, _, _ uintptr) int32 {
			s.Record("XSetWindowColormap")
			return 1
		},
		Sync: func(uintptr, int32) int32 { return 1 },
	}
}
