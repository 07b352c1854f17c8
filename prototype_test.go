// SPDX-License-Identifier: Unlicense OR MIT

package glctx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"gioui.org/glctx/internal/gl"
	"gioui.org/glctx/internal/xlib"
	"gioui.org/glctx/internal/xlib/xlibtest"
)

func TestOpenGLESUsesEGL(t *testing.T) {
	f := newFixture()
	a := f.availability(EGL)
	disp := f.x11Display()
	defer disp.Release()

	attrs := &GLAttributes{Request: Specific(OpenGLES, 3, 0)}
	p, err := a.BuildPrototype(disp, nil, attrs)
	require.NoError(t, err)
	require.Equal(t, EGL, p.Backend())
	vis, ok := p.Visual()
	require.True(t, ok)
	require.Equal(t, uint(visualID), vis.ID)

	ctx, err := p.Finish(window(X11))
	require.NoError(t, err)
	defer ctx.Release()
	require.Equal(t, EGL, ctx.Backend())
	require.Equal(t, OpenGLES, ctx.API())
	require.Equal(t, Version{3, 0}, ctx.Version())
}

func TestLatestPrefersGLX(t *testing.T) {
	f := newFixture()
	a := f.availability(GLX, EGL)
	disp := f.x11Display()
	defer disp.Release()

	p, err := a.BuildPrototype(disp, nil, &GLAttributes{})
	require.NoError(t, err)
	require.Equal(t, GLX, p.Backend())
	require.Zero(t, f.srv.Count("eglGetDisplay"), "EGL must not touch a display GLX serves")
	ctx, err := p.Finish(window(X11))
	require.NoError(t, err)
	defer ctx.Release()
	require.Equal(t, GLX, ctx.Backend())
}

func TestDesktopRequestsPreferGLX(t *testing.T) {
	f := newFixture()
	a := f.availability(GLX, EGL)
	rapid.Check(t, func(t *rapid.T) {
		var req gl.Request
		switch rapid.IntRange(0, 2).Draw(t, "kind") {
		case 0:
			req = Latest()
		case 1:
			v := rapid.SampledFrom(gl.DesktopVersions).Draw(t, "version")
			req = Specific(OpenGL, v.Major, v.Minor)
		case 2:
			v := rapid.SampledFrom(gl.DesktopVersions).Draw(t, "version")
			es := rapid.SampledFrom(gl.ESVersions).Draw(t, "es")
			req = GLThenGLES(v, es)
		}
		b, err := a.selectBackend(X11, req, false)
		require.NoError(t, err)
		require.Equal(t, GLX, b, "request %v", req)
	})
}

func TestNothingLoaded(t *testing.T) {
	cause := errors.New("libEGL.so.1: cannot open shared object file")
	a := &Availability{err: cause}
	disp := NewWaylandDisplay(0x3a00)
	for _, req := range []Request{Latest(), Specific(OpenGLES, 2, 0), GLThenGLES(Version{3, 3}, Version{3, 0})} {
		_, err := a.BuildPrototype(disp, nil, &GLAttributes{Request: req})
		var nb *NoBackendAvailableError
		require.ErrorAs(t, err, &nb, "request %v", req)
		require.ErrorIs(t, err, cause)
	}
}

func TestUnsupportedRequest(t *testing.T) {
	f := newFixture()
	rapid.Check(t, func(t *rapid.T) {
		var backends []Backend
		for _, b := range []Backend{GLX, EGL, PlatformNative} {
			if rapid.Bool().Draw(t, b.String()) {
				backends = append(backends, b)
			}
		}
		a := f.availability(backends...)
		attrs := rapid.SampledFrom([]GLAttributes{
			{Request: Specific(WebGL, 2, 0)},
			{Request: Specific(OpenGLES, 3, 0), Profile: ProfileCore},
			{Request: Specific(OpenGL, 3, 1), Profile: ProfileCompatibility},
			{Request: Specific(OpenGLES, 4, 0)},
			{Request: Specific(OpenGL, 0, 0)},
			{Request: GLThenGLES(Version{3, 3}, Version{})},
		}).Draw(t, "attrs")
		_, err := a.BuildPrototype(NewWaylandDisplay(0x3a00), nil, &attrs)
		require.ErrorIs(t, err, ErrNotSupported)
		var ns *NotSupportedError
		require.ErrorAs(t, err, &ns)
	})
	require.Zero(t, len(f.srv.Ops()), "rejected requests must not reach a native library")
}

func TestOpenGLESWithoutEGL(t *testing.T) {
	f := newFixture()
	a := f.availability(GLX)
	disp := f.x11Display()
	defer disp.Release()
	_, err := a.BuildPrototype(disp, nil, &GLAttributes{Request: Specific(OpenGLES, 3, 0)})
	require.ErrorIs(t, err, ErrNotSupported)
}

func TestCandidatesByPlatform(t *testing.T) {
	f := newFixture()
	tests := []struct {
		platform Platform
		loaded   []Backend
		want     []Backend
	}{
		{X11, []Backend{GLX, EGL, PlatformNative}, []Backend{GLX, EGL}},
		{X11, []Backend{EGL, PlatformNative}, []Backend{EGL}},
		{Wayland, []Backend{GLX, EGL}, []Backend{EGL}},
		{Win32, []Backend{GLX, EGL, PlatformNative}, []Backend{PlatformNative, EGL}},
		{Win32, []Backend{GLX}, nil},
	}
	for _, test := range tests {
		a := f.availability(test.loaded...)
		require.Equal(t, test.want, a.candidates(test.platform, Latest(), false), "%v with %v", test.platform, test.loaded)
	}
	a := f.availability(GLX, EGL, PlatformNative)
	require.Equal(t, []Backend{EGL}, a.candidates(Win32, Specific(OpenGLES, 3, 0), false))
	require.Equal(t, []Backend{EGL}, a.candidates(X11, Latest(), true))
}

func TestWaylandNeedsWaylandEGL(t *testing.T) {
	f := newFixture()
	a := f.availability(EGL)
	a.wayland = nil
	_, err := a.BuildPrototype(NewWaylandDisplay(0x3a00), nil, nil)
	require.ErrorIs(t, err, ErrNotSupported)
}

func TestForcedBackend(t *testing.T) {
	f := newFixture()
	a := f.availability(GLX, EGL)
	a.cfg.Backend = "egl"
	disp := f.x11Display()
	defer disp.Release()

	p, err := a.BuildPrototype(disp, nil, nil)
	require.NoError(t, err)
	require.Equal(t, EGL, p.Backend())
	p.Release()

	a.cfg.Backend = "native"
	_, err = a.BuildPrototype(disp, nil, nil)
	require.ErrorIs(t, err, ErrNotSupported)
}

func TestEGLVisualLookup(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := newFixture()
		matches := rapid.IntRange(0, 4).Draw(t, "matches")
		f.srv.Visuals = []xlib.VisualInfo{{Visual: 0x9999, VisualID: visualID + 1, Depth: 32}}
		for i := 0; i < matches; i++ {
			f.srv.Visuals = append(f.srv.Visuals, xlib.VisualInfo{Visual: uintptr(0x5000 + i), VisualID: visualID, Depth: 24})
		}
		a := f.availability(EGL)
		disp := f.x11Display()
		defer disp.Release()

		p, err := a.BuildPrototype(disp, nil, nil)
		require.Zero(t, f.srv.Outstanding(), "visual buffer leaked")
		if matches != 1 {
			var nc *NativeCallError
			require.ErrorAs(t, err, &nc)
			require.Equal(t, "XGetVisualInfo", nc.Op)
			if matches == 0 {
				require.ErrorIs(t, err, xlib.ErrNoVisual)
			} else {
				require.ErrorIs(t, err, xlib.ErrAmbiguousVisual)
			}
			require.Equal(t, 1, f.srv.Count("eglTerminate"))
			return
		}
		require.NoError(t, err)
		defer p.Release()
		vis, ok := p.Visual()
		require.True(t, ok)
		want := f.srv.Visuals[1]
		require.Equal(t, Visual{ID: want.VisualID, Depth: int(want.Depth), Visual: want.Visual}, vis)
	})
}

func TestGLXVisual(t *testing.T) {
	f := newFixture()
	a := f.availability(GLX)
	disp := f.x11Display()
	defer disp.Release()
	p, err := a.BuildPrototype(disp, nil, nil)
	require.NoError(t, err)
	defer p.Release()
	vis, ok := p.Visual()
	require.True(t, ok)
	require.Equal(t, uintptr(0x5000), vis.Visual)
	require.Zero(t, f.srv.Count("XGetVisualInfo"), "GLX configurations carry their visual")
}

func TestNoVisualOffX11(t *testing.T) {
	f := newFixture()
	a := f.availability(EGL)
	p, err := a.BuildPrototype(NewWaylandDisplay(0x3a00), nil, nil)
	require.NoError(t, err)
	defer p.Release()
	_, ok := p.Visual()
	require.False(t, ok)
	require.Zero(t, f.srv.Count("XGetVisualInfo"))
}

func TestSharing(t *testing.T) {
	f := newFixture()
	a := f.availability(GLX, EGL)
	disp := f.x11Display()
	defer disp.Release()

	share, err := a.CreateWindowContext(disp, nil, nil, window(X11))
	require.NoError(t, err)
	require.Equal(t, GLX, share.Backend())

	ctx, err := a.CreateWindowContext(disp, nil, &GLAttributes{Sharing: share}, window(X11))
	require.NoError(t, err)
	ctx.Release()

	_, err = a.BuildPrototype(disp, nil, &GLAttributes{Request: Specific(OpenGLES, 3, 0), Sharing: share})
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce, "GLX context shared with an EGL one")

	other := newDisplay(X11, xlibtest.Display+1, nil)
	_, err = a.BuildPrototype(other, nil, &GLAttributes{Sharing: share})
	require.ErrorAs(t, err, &ce, "sharing across displays")

	share.Release()
	_, err = a.BuildPrototype(disp, nil, &GLAttributes{Sharing: share})
	require.ErrorAs(t, err, &ce, "released sharing context")
}

func TestSharingReleasedBeforeFinish(t *testing.T) {
	f := newFixture()
	a := f.availability(EGL)
	disp := NewWaylandDisplay(0x3a00)
	share, err := a.CreateWindowContext(disp, nil, nil, window(Wayland))
	require.NoError(t, err)
	p, err := a.BuildPrototype(disp, nil, &GLAttributes{Sharing: share})
	require.NoError(t, err)
	share.Release()
	_, err = p.Finish(window(Wayland))
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	contexts, surfaces := f.egl.Live()
	require.Zero(t, contexts)
	require.Zero(t, surfaces)
}

func TestInvalidPixelFormat(t *testing.T) {
	f := newFixture()
	a := f.availability(EGL)
	pf := DefaultPixelFormat()
	pf.Multisampling = 3
	_, err := a.BuildPrototype(NewWaylandDisplay(0x3a00), &pf, nil)
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
}

func TestNoMatchingConfig(t *testing.T) {
	f := newFixture()
	f.glx.Configs = nil
	a := f.availability(GLX)
	disp := f.x11Display()
	defer disp.Release()
	_, err := a.BuildPrototype(disp, nil, nil)
	require.ErrorIs(t, err, ErrNotSupported)
}

func TestBuildOnClosedDisplay(t *testing.T) {
	f := newFixture()
	a := f.availability(EGL)
	disp := NewWaylandDisplay(0x3a00)
	disp.Release()
	_, err := a.BuildPrototype(disp, nil, nil)
	require.ErrorIs(t, err, ErrDisplayClosed)
}
