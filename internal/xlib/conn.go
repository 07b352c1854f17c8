// SPDX-License-Identifier: Unlicense OR MIT

package xlib

import (
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/slices"
)

// Conn is a display connection shared by every context on the display.
// It is reference counted; the last Release closes connections opened
// by Open.
//
// The latest X error is kept in a single slot. CheckErrors takes it and
// clears it, so callers must serialize compound call sequences against
// one display or risk attributing an error to the wrong call.
type Conn struct {
	f     *Funcs
	dpy   uintptr
	owned bool
	refs  atomic.Int32

	mu     sync.Mutex
	latest *Error
}

// registry lists the live connections per Display pointer. A display
// may be wrapped more than once; its errors go to every wrapper.
var (
	registryMu sync.Mutex
	registry   = make(map[uintptr][]*Conn)

	handlerOnce sync.Once
)

// ErrClosed is returned for calls on a released connection.
var ErrClosed = errors.New("xlib: display connection closed")

// Open connects to the named display, or $DISPLAY when name is empty.
func Open(f *Funcs, name string) (*Conn, error) {
	var cname *byte
	if name != "" {
		cname = cString(name)
	}
	dpy := f.OpenDisplay(cname)
	if dpy == 0 {
		return nil, errors.New("xlib: XOpenDisplay failed")
	}
	c := newConn(f, dpy, true)
	return c, nil
}

// Wrap shares an existing display connection. The connection is never
// closed by Release.
func Wrap(f *Funcs, dpy uintptr) *Conn {
	return newConn(f, dpy, false)
}

func newConn(f *Funcs, dpy uintptr, owned bool) *Conn {
	c := &Conn{f: f, dpy: dpy, owned: owned}
	c.refs.Store(1)
	installHandler(f)
	registryMu.Lock()
	registry[dpy] = append(registry[dpy], c)
	registryMu.Unlock()
	return c
}

func installHandler(f *Funcs) {
	if f.SetErrorHandler == nil {
		return
	}
	handlerOnce.Do(func() {
		if cb := errorCallback(); cb != 0 {
			f.SetErrorHandler(cb)
		}
	})
}

// Funcs returns the Xlib table the connection was made with.
func (c *Conn) Funcs() *Funcs {
	return c.f
}

// Handle returns the Display pointer.
func (c *Conn) Handle() uintptr {
	return c.dpy
}

// Closed reports whether the last reference has been released.
func (c *Conn) Closed() bool {
	return c.refs.Load() <= 0
}

// Retain adds a reference to the connection.
func (c *Conn) Retain() *Conn {
	c.refs.Add(1)
	return c
}

// Release drops a reference. The last one unregisters the connection
// and closes it if it was opened by Open.
func (c *Conn) Release() {
	n := c.refs.Add(-1)
	if n != 0 {
		if n < 0 {
			panic("xlib: Release of a closed connection")
		}
		return
	}
	registryMu.Lock()
	conns := slices.DeleteFunc(registry[c.dpy], func(o *Conn) bool { return o == c })
	if len(conns) == 0 {
		delete(registry, c.dpy)
	} else {
		registry[c.dpy] = conns
	}
	registryMu.Unlock()
	if c.owned {
		c.f.CloseDisplay(c.dpy)
	}
}

// DefaultScreen returns the default screen number.
func (c *Conn) DefaultScreen() int32 {
	return c.f.DefaultScreen(c.dpy)
}

// Sync flushes the request buffer and waits until the server has
// processed every request, so that errors have been reported.
func (c *Conn) Sync() {
	if c.f.Sync != nil {
		c.f.Sync(c.dpy, 0)
	}
}

// CheckErrors takes and clears the latest error.
func (c *Conn) CheckErrors() error {
	c.mu.Lock()
	e := c.latest
	c.latest = nil
	c.mu.Unlock()
	if e == nil {
		return nil
	}
	return *e
}

// IgnoreError discards the latest error.
func (c *Conn) IgnoreError() {
	c.mu.Lock()
	c.latest = nil
	c.mu.Unlock()
}

// Report stores e as the latest error, replacing any earlier one.
func (c *Conn) Report(e Error) {
	c.mu.Lock()
	c.latest = &e
	c.mu.Unlock()
}

// handleError routes an error event to the connections of its display.
func handleError(dpy uintptr, ev *ErrorEvent) {
	registryMu.Lock()
	conns := slices.Clone(registry[dpy])
	registryMu.Unlock()
	if len(conns) == 0 {
		return
	}
	e := Error{
		ErrorCode:   ev.ErrorCode,
		RequestCode: ev.RequestCode,
		MinorCode:   ev.MinorCode,
	}
	if f := conns[0].f; f.GetErrorText != nil {
		var buf [1024]byte
		f.GetErrorText(dpy, int32(ev.ErrorCode), &buf[0], int32(len(buf)))
		e.Description = goString(buf[:])
	}
	for _, c := range conns {
		c.Report(e)
	}
}

func goString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
