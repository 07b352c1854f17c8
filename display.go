// SPDX-License-Identifier: Unlicense OR MIT

package glctx

import (
	"fmt"
	"sync"
	"sync/atomic"

	"gioui.org/glctx/internal/xlib"
)

// Platform is the windowing system of a Display.
type Platform uint8

const (
	X11 Platform = iota
	Wayland
	Win32
)

func (p Platform) String() string {
	switch p {
	case X11:
		return "x11"
	case Wayland:
		return "wayland"
	case Win32:
		return "win32"
	default:
		return fmt.Sprintf("Platform(%d)", uint8(p))
	}
}

// Display is a reference counted native display connection shared by
// the contexts created on it. Each context holds a reference; the last
// Release closes connections opened by OpenX11Display.
type Display struct {
	platform Platform
	handle   uintptr
	// conn is set for X11 displays only.
	conn *xlib.Conn
	refs atomic.Int32

	mu sync.Mutex
	// closers run before the connection closes, for native state
	// created on the display without a reference to it.
	closers map[int]func()
	nextID  int
}

func newDisplay(p Platform, handle uintptr, conn *xlib.Conn) *Display {
	d := &Display{platform: p, handle: handle, conn: conn}
	d.refs.Store(1)
	return d
}

// OpenX11Display connects to the named X display, or $DISPLAY if name
// is empty.
func OpenX11Display(name string) (*Display, error) {
	return Probe().OpenX11Display(name)
}

// NewX11Display wraps an existing Xlib Display pointer. The connection
// stays owned by the caller and is never closed.
func NewX11Display(handle uintptr) (*Display, error) {
	return Probe().NewX11Display(handle)
}

// NewWaylandDisplay wraps a wl_display pointer.
func NewWaylandDisplay(handle uintptr) *Display {
	return newDisplay(Wayland, handle, nil)
}

// NewWin32Display wraps the device context of a window.
func NewWin32Display(hdc uintptr) *Display {
	return newDisplay(Win32, hdc, nil)
}

// OpenX11Display is like the package level OpenX11Display, using the
// Xlib table of a.
func (a *Availability) OpenX11Display(name string) (*Display, error) {
	if a.x11 == nil {
		return nil, a.unavailable("Xlib")
	}
	c, err := xlib.Open(a.x11, name)
	if err != nil {
		return nil, &NativeCallError{Op: "XOpenDisplay", Err: err}
	}
	return newDisplay(X11, c.Handle(), c), nil
}

// NewX11Display is like the package level NewX11Display, using the
// Xlib table of a.
func (a *Availability) NewX11Display(handle uintptr) (*Display, error) {
	if a.x11 == nil {
		return nil, a.unavailable("Xlib")
	}
	if handle == 0 {
		return nil, configError("nil X11 display")
	}
	return newDisplay(X11, handle, xlib.Wrap(a.x11, handle)), nil
}

// Platform returns the windowing system of the display.
func (d *Display) Platform() Platform {
	return d.platform
}

// Handle returns the native display pointer or device context.
func (d *Display) Handle() uintptr {
	return d.handle
}

// Retain adds a reference.
func (d *Display) Retain() *Display {
	d.refs.Add(1)
	return d
}

// Release drops a reference. Releasing more references than were taken
// panics.
func (d *Display) Release() {
	n := d.refs.Add(-1)
	if n < 0 {
		panic("glctx: Release of a closed display")
	}
	if n != 0 {
		return
	}
	d.mu.Lock()
	closers := d.closers
	d.closers = nil
	d.mu.Unlock()
	for _, fn := range closers {
		fn()
	}
	if d.conn != nil {
		d.conn.Release()
	}
}

// onClose registers fn to run when the last reference is released, and
// returns a function that unregisters it.
func (d *Display) onClose(fn func()) (cancel func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closers == nil {
		d.closers = make(map[int]func())
	}
	id := d.nextID
	d.nextID++
	d.closers[id] = fn
	return func() {
		d.mu.Lock()
		delete(d.closers, id)
		d.mu.Unlock()
	}
}

// Closed reports whether the last reference was released.
func (d *Display) Closed() bool {
	return d.refs.Load() <= 0
}

// ParsePlatform parses the names printed by Platform.String.
func ParsePlatform(s string) (Platform, error) {
	for _, p := range []Platform{X11, Wayland, Win32} {
		if s == p.String() {
			return p, nil
		}
	}
	return 0, fmt.Errorf("glctx: unknown platform %q", s)
}
