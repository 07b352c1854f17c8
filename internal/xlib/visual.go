// SPDX-License-Identifier: Unlicense OR MIT

package xlib

import (
	"errors"
	"fmt"
	"unsafe"
)

var (
	ErrNoVisual        = errors.New("xlib: no visual matches the requested ID")
	ErrAmbiguousVisual = errors.New("xlib: more than one visual matches the requested ID")
)

// LookupVisual finds the visual with the given ID. Exactly one match is
// expected. The result is copied out of the buffer Xlib allocated, and
// that buffer is always freed.
func LookupVisual(c *Conn, id uint) (VisualInfo, error) {
	if c.Closed() {
		return VisualInfo{}, ErrClosed
	}
	tmpl := VisualInfo{VisualID: id}
	var n int32
	infos := c.f.GetVisualInfo(c.dpy, VisualIDMask, &tmpl, &n)
	if infos != nil {
		defer c.f.Free(unsafe.Pointer(infos))
	}
	if err := c.CheckErrors(); err != nil {
		return VisualInfo{}, fmt.Errorf("XGetVisualInfo: %w", err)
	}
	switch {
	case infos == nil || n == 0:
		return VisualInfo{}, fmt.Errorf("%w: 0x%x", ErrNoVisual, id)
	case n > 1:
		return VisualInfo{}, fmt.Errorf("%w: 0x%x (%d matches)", ErrAmbiguousVisual, id, n)
	}
	return *infos, nil
}

// CopyVisual copies a library-allocated visual and frees the original.
func CopyVisual(c *Conn, vi *VisualInfo) (VisualInfo, bool) {
	if vi == nil {
		return VisualInfo{}, false
	}
	v := *vi
	c.f.Free(unsafe.Pointer(vi))
	return v, true
}

// CreateColormap creates a colormap for visual on the root window of
// screen and installs it on win.
func CreateColormap(c *Conn, screen int32, win uintptr, visual uintptr) (uintptr, error) {
	root := c.f.RootWindow(c.dpy, screen)
	cmap := c.f.CreateColormap(c.dpy, root, visual, AllocNone)
	c.Sync()
	if err := c.CheckErrors(); err != nil {
		if cmap != 0 {
			c.f.FreeColormap(c.dpy, cmap)
		}
		return 0, fmt.Errorf("XCreateColormap: %w", err)
	}
	if cmap == 0 {
		return 0, errors.New("XCreateColormap failed")
	}
	if win != 0 && c.f.SetWindowColormap != nil {
		c.f.SetWindowColormap(c.dpy, win, cmap)
		c.Sync()
		if err := c.CheckErrors(); err != nil {
			c.f.FreeColormap(c.dpy, cmap)
			return 0, fmt.Errorf("XSetWindowColormap: %w", err)
		}
	}
	return cmap, nil
}

// FreeColormap releases a colormap made by CreateColormap.
func FreeColormap(c *Conn, cmap uintptr) {
	if cmap != 0 {
		c.f.FreeColormap(c.dpy, cmap)
	}
}
