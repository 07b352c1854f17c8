// SPDX-License-Identifier: Unlicense OR MIT

package glctx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gioui.org/glctx/internal/egl"
	"gioui.org/glctx/internal/egl/egltest"
)

func TestFinishTwice(t *testing.T) {
	f := newFixture()
	a := f.availability(GLX)
	disp := f.x11Display()
	defer disp.Release()

	p, err := a.BuildPrototype(disp, nil, nil)
	require.NoError(t, err)
	ctx, err := p.Finish(window(X11))
	require.NoError(t, err)
	defer ctx.Release()

	ops := f.srv.Ops()
	_, err = p.Finish(window(X11))
	require.ErrorIs(t, err, ErrPrototypeConsumed)
	_, err = p.FinishHeadless(64, 64)
	require.ErrorIs(t, err, ErrPrototypeConsumed)
	p.Release()
	require.Equal(t, ops, f.srv.Ops(), "a consumed prototype must not call into native libraries")
}

func TestFinishWithoutWindow(t *testing.T) {
	f := newFixture()
	a := f.availability(EGL)
	p, err := a.BuildPrototype(NewWaylandDisplay(0x3a00), nil, nil)
	require.NoError(t, err)

	_, err = p.Finish(NativeWindow{})
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)

	ctx, err := p.Finish(window(Wayland))
	require.NoError(t, err, "a rejected window must not consume the prototype")
	ctx.Release()
}

func TestFinishAfterDisplayClosed(t *testing.T) {
	f := newFixture()
	a := f.availability(EGL)
	disp := NewWaylandDisplay(0x3a00)
	p, err := a.BuildPrototype(disp, nil, nil)
	require.NoError(t, err)
	disp.Release()

	_, err = p.Finish(window(Wayland))
	require.ErrorIs(t, err, ErrDisplayClosed)
	require.False(t, f.egl.Initialized(egltest.DisplayFor(0x3a00)), "prototype display not terminated")
	require.Zero(t, f.wl.Live())

	_, err = p.Finish(window(Wayland))
	require.ErrorIs(t, err, ErrPrototypeConsumed)
}

func TestReleasedContext(t *testing.T) {
	f := newFixture()
	a := f.availability(EGL)
	ctx, err := a.CreateWindowContext(NewWaylandDisplay(0x3a00), nil, nil, window(Wayland))
	require.NoError(t, err)
	ctx.Release()

	ops := f.srv.Ops()
	require.Equal(t, None, ctx.Backend())
	require.NoError(t, ctx.MakeCurrent())
	require.NoError(t, ctx.ReleaseCurrent())
	require.NoError(t, ctx.SwapBuffers())
	require.NoError(t, ctx.SetSwapInterval(1))
	require.Zero(t, ctx.ProcAddress("glClear"))
	ctx.Resize(800, 600)
	ctx.Release()
	require.Equal(t, ops, f.srv.Ops(), "released context called into native libraries")

	require.Panics(t, func() { ctx.IsCurrent() })
	require.Panics(t, func() { ctx.API() })
	require.Panics(t, func() { ctx.Version() })
	require.Panics(t, func() { ctx.PixelFormat() })
}

func TestGLXContext(t *testing.T) {
	f := newFixture()
	a := f.availability(GLX)
	disp := f.x11Display()
	defer disp.Release()

	ctx, err := a.CreateWindowContext(disp, nil, &GLAttributes{Request: Specific(OpenGL, 3, 3), Profile: ProfileCore}, window(X11))
	require.NoError(t, err)
	defer ctx.Release()

	require.Equal(t, GLX, ctx.Backend())
	require.Equal(t, OpenGL, ctx.API())
	require.Equal(t, Version{3, 3}, ctx.Version())
	require.Equal(t, uint8(24), ctx.PixelFormat().DepthBits)
	require.Equal(t, 1, f.srv.Count("XSetWindowColormap"))

	require.NoError(t, ctx.MakeCurrent())
	require.True(t, ctx.IsCurrent())
	require.NotZero(t, ctx.ProcAddress("glClear"))
	require.NoError(t, ctx.SwapBuffers())
	require.NoError(t, ctx.ReleaseCurrent())
	require.False(t, ctx.IsCurrent())
}

func TestTeardownOrder(t *testing.T) {
	f := newFixture()
	a := f.availability(GLX)
	disp := f.x11Display()
	ctx, err := a.CreateWindowContext(disp, nil, nil, window(X11))
	require.NoError(t, err)

	// The caller may drop its reference while contexts are alive.
	disp.Release()
	require.False(t, disp.Closed())
	require.Zero(t, f.srv.Count("XCloseDisplay"))

	require.NoError(t, ctx.MakeCurrent())
	ctx.Release()
	require.True(t, disp.Closed())
	require.Zero(t, f.glx.Live())

	destroy := f.srv.Index("glXDestroyContext")
	cmap := f.srv.Index("XFreeColormap")
	closed := f.srv.Index("XCloseDisplay")
	require.NotEqual(t, -1, destroy)
	require.Less(t, destroy, cmap, "colormap freed before the context")
	require.Less(t, cmap, closed, "display closed before the colormap was freed")
}

func TestColormapFailure(t *testing.T) {
	for _, b := range []Backend{GLX, EGL} {
		t.Run(b.String(), func(t *testing.T) {
			f := newFixture()
			f.srv.FailColormap = true
			a := f.availability(b)
			disp := f.x11Display()
			defer disp.Release()

			_, err := a.CreateWindowContext(disp, nil, nil, window(X11))
			var nc *NativeCallError
			require.ErrorAs(t, err, &nc)
			require.Equal(t, "XCreateColormap", nc.Op)
			require.Zero(t, f.glx.Live())
			contexts, surfaces := f.egl.Live()
			require.Zero(t, contexts)
			require.Zero(t, surfaces)
		})
	}
}

func TestWaylandContext(t *testing.T) {
	f := newFixture()
	a := f.availability(EGL)
	disp := NewWaylandDisplay(0x3a00)
	defer disp.Release()

	ctx, err := a.CreateWindowContext(disp, nil, nil, window(Wayland))
	require.NoError(t, err)
	require.Equal(t, EGL, ctx.Backend())
	require.Equal(t, OpenGL, ctx.API())

	w := f.wl.Window(ctx.window.Handle())
	require.NotNil(t, w)
	require.Equal(t, uintptr(wlSurface), w.Surface)
	require.Equal(t, int32(640), w.Width)

	ctx.Resize(800, 600)
	require.Equal(t, int32(800), w.Width)
	require.Equal(t, int32(600), w.Height)
	ctx.Resize(800, 600)
	require.Equal(t, 1, f.srv.Count("wl_egl_window_resize"))

	ctx.Release()
	require.Zero(t, f.wl.Live())
	require.Less(t, f.srv.Index("eglDestroySurface"), f.srv.Index("wl_egl_window_destroy"),
		"wl_egl_window destroyed under a live surface")
	require.False(t, f.egl.Initialized(egltest.DisplayFor(0x3a00)))
}

func TestWaylandSurfaceFailure(t *testing.T) {
	f := newFixture()
	f.egl.FailWindowSurface = true
	a := f.availability(EGL)
	disp := NewWaylandDisplay(0x3a00)
	defer disp.Release()

	_, err := a.CreateWindowContext(disp, nil, nil, window(Wayland))
	var nc *NativeCallError
	require.ErrorAs(t, err, &nc)
	require.Zero(t, f.wl.Live())
	contexts, surfaces := f.egl.Live()
	require.Zero(t, contexts)
	require.Zero(t, surfaces)
	require.False(t, f.egl.Initialized(egltest.DisplayFor(0x3a00)))
}

func TestWaylandWindowSize(t *testing.T) {
	f := newFixture()
	a := f.availability(EGL)
	disp := NewWaylandDisplay(0x3a00)
	defer disp.Release()

	_, err := a.CreateWindowContext(disp, nil, nil, NativeWindow{Handle: wlSurface})
	require.Error(t, err)
	require.Zero(t, f.srv.Count("wl_egl_window_create"))
	require.False(t, f.egl.Initialized(egltest.DisplayFor(0x3a00)))
}

func TestWin32Context(t *testing.T) {
	f := newFixture()
	a := f.availability(PlatformNative, EGL)
	disp := NewWin32Display(hdc)
	defer disp.Release()

	ctx, err := a.CreateWindowContext(disp, nil, nil, window(Win32))
	require.NoError(t, err)
	require.Equal(t, PlatformNative, ctx.Backend())
	require.Equal(t, OpenGL, ctx.API())
	require.Equal(t, uintptr(0x7100), ctx.ProcAddress("glClear"))
	require.Zero(t, f.srv.Count("eglGetDisplay"))
	ctx.Release()
	require.Equal(t, 1, f.srv.Count("wglDeleteContext"))
	require.Zero(t, f.wgl.Live())
}

func TestWin32OpenGLES(t *testing.T) {
	f := newFixture()
	a := f.availability(PlatformNative, EGL)
	disp := NewWin32Display(hdc)
	defer disp.Release()

	ctx, err := a.CreateWindowContext(disp, nil, &GLAttributes{Request: Specific(OpenGLES, 3, 0)}, window(Win32))
	require.NoError(t, err)
	defer ctx.Release()
	require.Equal(t, EGL, ctx.Backend())
	require.Equal(t, OpenGLES, ctx.API())
	require.Zero(t, f.srv.Count("ChoosePixelFormat"))
}

func TestHeadlessContext(t *testing.T) {
	f := newFixture()
	a := f.availability(GLX, EGL)
	disp := f.x11Display()
	defer disp.Release()

	ctx, err := a.CreateHeadlessContext(disp, 256, 256, nil, nil)
	require.NoError(t, err)
	require.Equal(t, EGL, ctx.Backend())
	require.Equal(t, 1, f.srv.Count("eglCreatePbufferSurface"))
	require.Zero(t, f.srv.Count("eglCreateWindowSurface"))
	require.Zero(t, f.srv.Count("XCreateColormap"))
	require.NoError(t, ctx.MakeCurrent())
	ctx.Release()
	contexts, surfaces := f.egl.Live()
	require.Zero(t, contexts)
	require.Zero(t, surfaces)
}

func TestHeadlessNeedsEGL(t *testing.T) {
	f := newFixture()
	a := f.availability(GLX)
	disp := f.x11Display()
	defer disp.Release()

	_, err := a.CreateHeadlessContext(disp, 256, 256, nil, nil)
	require.ErrorIs(t, err, ErrNotSupported)
	_, err = a.CreateHeadlessContext(disp, 0, 256, nil, nil)
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)

	p, err := a.BuildPrototype(disp, nil, nil)
	require.NoError(t, err)
	_, err = p.FinishHeadless(256, 256)
	require.ErrorIs(t, err, ErrNotSupported)
	ctx, err := p.Finish(window(X11))
	require.NoError(t, err, "a GLX prototype must survive FinishHeadless")
	ctx.Release()
}

func TestHeadlessPrototypeRejectsWindow(t *testing.T) {
	f := newFixture()
	a := f.availability(EGL)
	p, err := a.buildPrototype(NewWaylandDisplay(0x3a00), nil, nil, true)
	require.NoError(t, err)
	_, err = p.Finish(window(Wayland))
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	ctx, err := p.FinishHeadless(32, 32)
	require.NoError(t, err)
	ctx.Release()
}

func TestVSync(t *testing.T) {
	f := newFixture()
	a := f.availability(EGL)
	disp := NewWaylandDisplay(0x3a00)
	defer disp.Release()

	ctx, err := a.CreateWindowContext(disp, nil, &GLAttributes{VSync: true}, window(Wayland))
	require.NoError(t, err)
	defer ctx.Release()
	require.Zero(t, f.srv.Count("eglSwapInterval"), "swap interval set before MakeCurrent")
	require.NoError(t, ctx.MakeCurrent())
	require.NoError(t, ctx.MakeCurrent())
	require.Equal(t, 1, f.srv.Count("eglSwapInterval"))
}

func TestVSyncUnavailable(t *testing.T) {
	f := newFixture()
	a := f.availability(GLX)
	disp := f.x11Display()
	defer disp.Release()

	ctx, err := a.CreateWindowContext(disp, nil, &GLAttributes{VSync: true}, window(X11))
	require.NoError(t, err)
	defer ctx.Release()
	require.NoError(t, ctx.MakeCurrent(), "missing swap control must not fail MakeCurrent")
	require.ErrorIs(t, ctx.SetSwapInterval(1), ErrNotSupported)
}

func TestContextLost(t *testing.T) {
	f := newFixture()
	a := f.availability(EGL)
	disp := NewWaylandDisplay(0x3a00)
	defer disp.Release()

	ctx, err := a.CreateWindowContext(disp, nil, nil, window(Wayland))
	require.NoError(t, err)
	defer ctx.Release()
	require.NoError(t, ctx.SwapBuffers())
	f.egl.LoseContext = true
	err = ctx.SwapBuffers()
	require.ErrorIs(t, err, ErrContextLost)
	var nc *NativeCallError
	require.ErrorAs(t, err, &nc)
	var ee *egl.Error
	require.ErrorAs(t, err, &ee)
	require.Equal(t, "eglSwapBuffers", ee.Op)
}

func TestDisplayCloseTerminatesEGLFirst(t *testing.T) {
	f := newFixture()
	a := f.availability(EGL)
	disp := f.x11Display()
	p, err := a.BuildPrototype(disp, nil, nil)
	require.NoError(t, err)

	disp.Release()
	terminate := f.srv.Index("eglTerminate")
	require.NotEqual(t, -1, terminate, "display closed without terminating EGL")
	require.Less(t, terminate, f.srv.Index("XCloseDisplay"))

	_, err = p.Finish(window(X11))
	require.ErrorIs(t, err, ErrDisplayClosed)
	p.Release()
	require.Equal(t, 1, f.srv.Count("eglTerminate"))
}

func TestConsumedPrototypeLeavesDisplay(t *testing.T) {
	f := newFixture()
	a := f.availability(EGL)
	disp := f.x11Display()
	p, err := a.BuildPrototype(disp, nil, nil)
	require.NoError(t, err)
	p.Release()
	require.Equal(t, 1, f.srv.Count("eglTerminate"))

	disp.Release()
	require.Equal(t, 1, f.srv.Count("eglTerminate"), "released prototype terminated again on close")
}
