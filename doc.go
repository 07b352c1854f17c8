// SPDX-License-Identifier: Unlicense OR MIT

/*
Package glctx creates OpenGL contexts for existing native windows,
choosing between the GLX, EGL and native Windows backends at run time.

Context creation has two phases. BuildPrototype negotiates a backend and
a framebuffer configuration for a display and reports the visual a
window must be created with. Finish binds the prototype to the window
and returns a Context:

	disp, err := glctx.OpenX11Display("")
	...
	pf := glctx.DefaultPixelFormat()
	proto, err := glctx.Probe().BuildPrototype(disp, &pf, &glctx.GLAttributes{})
	...
	vis, _ := proto.Visual()
	// Create the X window with vis.
	ctx, err := proto.Finish(glctx.NativeWindow{Handle: win})
	...
	defer ctx.Release()

No native library is linked. GLX, EGL, Xlib, libwayland-egl and WGL are
loaded with dlopen or LoadLibrary by Probe, and missing libraries only
narrow the choice of backends.

# Threads

Contexts are not safe for concurrent use. A context is current on an OS
thread, so callers lock the goroutine to its thread with
runtime.LockOSThread while the context is current.

# Logging

The package is silent by default. SetLogger installs a log/slog logger
for backend selection and fallback diagnostics.
*/
package glctx
