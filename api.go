// SPDX-License-Identifier: Unlicense OR MIT

package glctx

import "gioui.org/glctx/internal/gl"

type (
	// API is a client rendering API.
	API = gl.API
	// Version is a major.minor API version.
	Version = gl.Version
	// Request describes the API and version a context must provide.
	Request = gl.Request
	// Profile is a desktop OpenGL context profile.
	Profile = gl.Profile
	// PixelFormatRequirements constrains the framebuffer
	// configuration. Hardware acceleration is always required.
	PixelFormatRequirements = gl.PixelFormatRequirements
	// PixelFormat describes the framebuffer configuration of a context.
	PixelFormat = gl.PixelFormat
)

const (
	OpenGL   = gl.OpenGL
	OpenGLES = gl.OpenGLES
	WebGL    = gl.WebGL
)

const (
	ProfileDefault       = gl.ProfileDefault
	ProfileCore          = gl.ProfileCore
	ProfileCompatibility = gl.ProfileCompatibility
)

// Latest requests the newest desktop OpenGL the backend offers.
func Latest() Request {
	return gl.Latest()
}

// Specific requests exactly api at major.minor.
func Specific(api API, major, minor uint8) Request {
	return gl.Specific(api, major, minor)
}

// GLThenGLES requests desktop OpenGL at glVersion and falls back to
// OpenGL ES at glesVersion.
func GLThenGLES(glVersion, glesVersion Version) Request {
	return gl.GLThenGLES(glVersion, glesVersion)
}

// DefaultPixelFormat returns 24 bit color with 8 bits of alpha, 24 bit
// depth and 8 bit stencil, double buffered.
func DefaultPixelFormat() PixelFormatRequirements {
	return gl.DefaultPixelFormat()
}

// GLAttributes are the context attributes of a request.
type GLAttributes struct {
	Request Request
	Profile Profile
	Debug   bool
	// VSync enables a swap interval of 1 the first time the context
	// is made current.
	VSync bool
	// Sharing is an existing context to share objects with. It must
	// belong to the backend the new context is created with.
	Sharing *Context
}

func (a *GLAttributes) native() gl.Attributes {
	return gl.Attributes{
		Request: a.Request,
		Profile: a.Profile,
		Debug:   a.Debug,
		VSync:   a.VSync,
	}
}
