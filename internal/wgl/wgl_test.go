// SPDX-License-Identifier: Unlicense OR MIT

package wgl_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gioui.org/glctx/internal/gl"
	"gioui.org/glctx/internal/wgl"
	"gioui.org/glctx/internal/wgl/wgltest"
)

const hdc = wgl.HDC(0x3c01)

func newPrototype(t *testing.T, d *wgltest.Driver, attrs gl.Attributes) *wgl.Prototype {
	t.Helper()
	pf := gl.DefaultPixelFormat()
	p, err := wgl.NewPrototype(d.Funcs(), hdc, &pf, &attrs)
	require.NoError(t, err)
	return p
}

func TestDescribeFormat(t *testing.T) {
	d := wgltest.New(nil)
	p := newPrototype(t, d, gl.Attributes{})
	pf := p.PixelFormat()
	require.Equal(t, uint8(24), pf.ColorBits)
	require.Equal(t, uint8(8), pf.AlphaBits)
	require.True(t, pf.DoubleBuffer)
	require.True(t, pf.HardwareAccelerated)
	require.Zero(t, d.Format(hdc), "the pixel format is only set on finish")
}

func TestRejectSoftwareFormat(t *testing.T) {
	d := wgltest.New(nil)
	d.Formats[0].Flags |= wgl.PFD_GENERIC_FORMAT
	pf := gl.DefaultPixelFormat()
	_, err := wgl.NewPrototype(d.Funcs(), hdc, &pf, &gl.Attributes{})
	require.ErrorIs(t, err, wgl.ErrSoftware)
}

func TestGenericAcceleratedAllowed(t *testing.T) {
	d := wgltest.New(nil)
	d.Formats[0].Flags |= wgl.PFD_GENERIC_FORMAT | wgl.PFD_GENERIC_ACCELERATED
	newPrototype(t, d, gl.Attributes{})
}

func TestRejectES(t *testing.T) {
	d := wgltest.New(nil)
	pf := gl.DefaultPixelFormat()
	attrs := gl.Attributes{Request: gl.Specific(gl.OpenGLES, 3, 0)}
	_, err := wgl.NewPrototype(d.Funcs(), hdc, &pf, &attrs)
	require.ErrorIs(t, err, gl.ErrUnsupported)
}

func TestLegacyContext(t *testing.T) {
	d := wgltest.New(nil)
	p := newPrototype(t, d, gl.Attributes{})
	ctx, err := p.NewContext(nil)
	require.NoError(t, err)
	require.Equal(t, p.Index(), d.Format(hdc))
	require.Zero(t, d.Count("wglCreateContextAttribsARB"))
	require.Equal(t, gl.OpenGL, ctx.API())

	require.NoError(t, ctx.MakeCurrent())
	require.True(t, ctx.IsCurrent())
	require.NoError(t, ctx.SwapBuffers())
	ctx.Release()
	ctx.Release()
	require.Zero(t, d.Live())
	require.Equal(t, 1, d.Count("wglDeleteContext"))
}

func TestSpecificUsesARB(t *testing.T) {
	d := wgltest.New(nil)
	d.MaxVersion = gl.Version{4, 1}
	attrs := gl.Attributes{Request: gl.Specific(gl.OpenGL, 3, 3), Profile: gl.ProfileCore}
	ctx, err := newPrototype(t, d, attrs).NewContext(nil)
	require.NoError(t, err)
	defer ctx.Release()
	require.Equal(t, gl.Version{3, 3}, ctx.Version())
	require.Equal(t, 1, d.Live(), "the bootstrap context must be deleted")
	req := d.Requests()[0]
	require.Equal(t, int32(1), req[0x9126])
	require.False(t, ctx.IsCurrent(), "creation must not leave a context current")
}

func TestLatestCoreWalksVersions(t *testing.T) {
	d := wgltest.New(nil)
	d.MaxVersion = gl.Version{4, 1}
	ctx, err := newPrototype(t, d, gl.Attributes{Profile: gl.ProfileCore}).NewContext(nil)
	require.NoError(t, err)
	defer ctx.Release()
	require.Equal(t, gl.Version{4, 1}, ctx.Version())
	// 4.6 down to 4.2 fail.
	require.Equal(t, 6, d.Count("wglCreateContextAttribsARB"))
}

func TestSpecificWithoutARB(t *testing.T) {
	d := wgltest.New(nil)
	d.NoARB = true
	attrs := gl.Attributes{Request: gl.Specific(gl.OpenGL, 3, 3)}
	_, err := newPrototype(t, d, attrs).NewContext(nil)
	require.ErrorIs(t, err, gl.ErrUnsupported)
	require.Zero(t, d.Live())
}

func TestSharing(t *testing.T) {
	d := wgltest.New(nil)
	a, err := newPrototype(t, d, gl.Attributes{}).NewContext(nil)
	require.NoError(t, err)
	defer a.Release()
	b, err := newPrototype(t, d, gl.Attributes{}).NewContext(a)
	require.NoError(t, err)
	defer b.Release()
	require.Equal(t, 1, d.Count("wglShareLists"))
}

func TestPixelFormatAlreadySet(t *testing.T) {
	d := wgltest.New(nil)
	d.SetFormat(hdc, 7)
	_, err := newPrototype(t, d, gl.Attributes{}).NewContext(nil)
	require.Error(t, err)
	require.Zero(t, d.Count("wglCreateContext"))
}

func TestPrototypeConsumed(t *testing.T) {
	d := wgltest.New(nil)
	p := newPrototype(t, d, gl.Attributes{})
	ctx, err := p.NewContext(nil)
	require.NoError(t, err)
	defer ctx.Release()
	_, err = p.NewContext(nil)
	require.ErrorIs(t, err, wgl.ErrConsumed)
}

func TestProcAddressFallsBackToExports(t *testing.T) {
	d := wgltest.New(nil)
	ctx, err := newPrototype(t, d, gl.Attributes{}).NewContext(nil)
	require.NoError(t, err)
	defer ctx.Release()
	require.Equal(t, uintptr(0x8000), ctx.ProcAddress("glGenBuffers"))
	require.Equal(t, uintptr(0x7100), ctx.ProcAddress("glClear"))
	require.Zero(t, ctx.ProcAddress("glNoSuchFunction"))
}

func TestSwapInterval(t *testing.T) {
	d := wgltest.New(nil)
	ctx, err := newPrototype(t, d, gl.Attributes{}).NewContext(nil)
	require.NoError(t, err)
	defer ctx.Release()
	require.NoError(t, ctx.MakeCurrent())
	require.NoError(t, ctx.SetSwapInterval(1))
	require.Equal(t, 1, d.Count("wglSwapIntervalEXT"))
}

func TestUpgradeRestoresCurrent(t *testing.T) {
	d := wgltest.New(nil)
	a, err := newPrototype(t, d, gl.Attributes{}).NewContext(nil)
	require.NoError(t, err)
	defer a.Release()
	require.NoError(t, a.MakeCurrent())

	const other = wgl.HDC(0x3c02)
	pf := gl.DefaultPixelFormat()
	attrs := gl.Attributes{Request: gl.Specific(gl.OpenGL, 3, 3)}
	p, err := wgl.NewPrototype(d.Funcs(), other, &pf, &attrs)
	require.NoError(t, err)
	b, err := p.NewContext(nil)
	require.NoError(t, err)
	defer b.Release()

	f := d.Funcs()
	require.True(t, a.IsCurrent())
	require.Equal(t, hdc, f.GetCurrentDC())
}
