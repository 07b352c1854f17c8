// SPDX-License-Identifier: Unlicense OR MIT

// Package gl holds the vocabulary shared by every context backend:
// client APIs, versions, requests and pixel formats.
package gl

import (
	"errors"
	"fmt"
)

// API is a client rendering API.
type API uint8

const (
	OpenGL API = iota
	OpenGLES
	WebGL
)

func (a API) String() string {
	switch a {
	case OpenGL:
		return "OpenGL"
	case OpenGLES:
		return "OpenGL ES"
	case WebGL:
		return "WebGL"
	default:
		return fmt.Sprintf("API(%d)", uint8(a))
	}
}

// Version is a major.minor API version.
type Version struct {
	Major, Minor uint8
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Less reports whether v is an older version than o.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

// RequestKind selects how a Request is interpreted.
type RequestKind uint8

const (
	// RequestLatest asks for the most recent OpenGL version the
	// backend supports.
	RequestLatest RequestKind = iota
	// RequestSpecific asks for exactly Request.API at Request.Version.
	RequestSpecific
	// RequestGLThenGLES asks for desktop OpenGL at Request.Version and
	// falls back to OpenGL ES at Request.GLESVersion.
	RequestGLThenGLES
)

// Request describes the API and version a context must provide. The
// zero Request is RequestLatest.
type Request struct {
	Kind        RequestKind
	API         API
	Version     Version
	GLESVersion Version
}

// Latest returns a request for the newest available desktop OpenGL.
func Latest() Request {
	return Request{Kind: RequestLatest}
}

// Specific returns a request for exactly api at major.minor.
func Specific(api API, major, minor uint8) Request {
	return Request{Kind: RequestSpecific, API: api, Version: Version{major, minor}}
}

// GLThenGLES returns a request for desktop OpenGL at gl, or OpenGL ES
// at gles if desktop OpenGL is unavailable.
func GLThenGLES(gl, gles Version) Request {
	return Request{Kind: RequestGLThenGLES, API: OpenGL, Version: gl, GLESVersion: gles}
}

// WantsDesktop reports whether the request is satisfied by desktop
// OpenGL.
func (r Request) WantsDesktop() bool {
	switch r.Kind {
	case RequestLatest, RequestGLThenGLES:
		return true
	default:
		return r.API == OpenGL
	}
}

func (r Request) String() string {
	switch r.Kind {
	case RequestLatest:
		return "latest"
	case RequestGLThenGLES:
		return fmt.Sprintf("OpenGL %v then OpenGL ES %v", r.Version, r.GLESVersion)
	default:
		return fmt.Sprintf("%v %v", r.API, r.Version)
	}
}

// Profile is a desktop OpenGL context profile.
type Profile uint8

const (
	ProfileDefault Profile = iota
	ProfileCore
	ProfileCompatibility
)

func (p Profile) String() string {
	switch p {
	case ProfileCore:
		return "core"
	case ProfileCompatibility:
		return "compatibility"
	default:
		return "default"
	}
}

// Attributes are the context attributes every backend understands.
// Context sharing is resolved by the caller and passed separately.
type Attributes struct {
	Request Request
	Profile Profile
	Debug   bool
	VSync   bool
}

// ErrUnsupported is wrapped by errors for requests a backend cannot
// satisfy.
var ErrUnsupported = errors.New("unsupported request")

// Validate rejects API, version and profile combinations no backend can
// satisfy.
func (a *Attributes) Validate() error {
	r := a.Request
	switch r.Kind {
	case RequestLatest:
	case RequestGLThenGLES:
		if r.Version.Major == 0 || r.GLESVersion.Major == 0 {
			return fmt.Errorf("%w: %v", ErrUnsupported, r)
		}
	case RequestSpecific:
		switch r.API {
		case OpenGL, OpenGLES:
		default:
			return fmt.Errorf("%w: %v contexts", ErrUnsupported, r.API)
		}
		if r.Version.Major == 0 {
			return fmt.Errorf("%w: %v", ErrUnsupported, r)
		}
		if r.API == OpenGLES && r.Version.Major > 3 {
			return fmt.Errorf("%w: %v", ErrUnsupported, r)
		}
	default:
		return fmt.Errorf("%w: request kind %d", ErrUnsupported, r.Kind)
	}
	if a.Profile == ProfileDefault {
		return nil
	}
	if r.Kind == RequestSpecific && r.API == OpenGLES {
		return fmt.Errorf("%w: %v profile with %v", ErrUnsupported, a.Profile, r.API)
	}
	if r.Kind != RequestLatest && r.Version.Less(Version{3, 2}) {
		return fmt.Errorf("%w: %v profile needs OpenGL 3.2, got %v", ErrUnsupported, a.Profile, r.Version)
	}
	return nil
}

// DesktopVersions lists the desktop versions tried, newest first, for a
// RequestLatest.
var DesktopVersions = []Version{
	{4, 6}, {4, 5}, {4, 4}, {4, 3}, {4, 2}, {4, 1}, {4, 0},
	{3, 3}, {3, 2}, {3, 1}, {3, 0},
}

// ESVersions lists the OpenGL ES versions tried, newest first, when no
// ES version was given.
var ESVersions = []Version{{3, 2}, {3, 1}, {3, 0}, {2, 0}}
