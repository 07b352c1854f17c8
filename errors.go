// SPDX-License-Identifier: Unlicense OR MIT

package glctx

import (
	"errors"
	"fmt"

	"gioui.org/glctx/internal/egl"
	"gioui.org/glctx/internal/gl"
	"gioui.org/glctx/internal/glx"
	"gioui.org/glctx/internal/wgl"
)

// ErrNotSupported matches every NotSupportedError.
var ErrNotSupported = errors.New("glctx: not supported")

var (
	// ErrPrototypeConsumed is returned when finishing a prototype that
	// was already finished or released.
	ErrPrototypeConsumed = errors.New("glctx: prototype already consumed")
	// ErrDisplayClosed is returned when using a display after its last
	// reference was released.
	ErrDisplayClosed = errors.New("glctx: display closed")
	// ErrContextLost matches errors from a context lost to a driver
	// reset or a power management event.
	ErrContextLost = egl.ErrContextLost
)

// NotSupportedError reports a request that no available backend can
// serve.
type NotSupportedError struct {
	Reason string
}

func (e *NotSupportedError) Error() string {
	return "glctx: not supported: " + e.Reason
}

func (e *NotSupportedError) Is(target error) bool {
	return target == ErrNotSupported
}

// NoBackendAvailableError reports that no backend library could be
// loaded. Cause holds the load errors.
type NoBackendAvailableError struct {
	Cause error
}

func (e *NoBackendAvailableError) Error() string {
	if e.Cause == nil {
		return "glctx: no OpenGL backend available"
	}
	return fmt.Sprintf("glctx: no OpenGL backend available: %v", e.Cause)
}

func (e *NoBackendAvailableError) Unwrap() error {
	return e.Cause
}

// NativeCallError is a failed call into a native library.
type NativeCallError struct {
	Op  string
	Err error
}

func (e *NativeCallError) Error() string {
	return fmt.Sprintf("glctx: %s: %v", e.Op, e.Err)
}

func (e *NativeCallError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports inconsistent arguments, such as a sharing
// context of another backend.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "glctx: invalid configuration: " + e.Reason
}

func notSupported(format string, args ...any) error {
	return &NotSupportedError{Reason: fmt.Sprintf(format, args...)}
}

func configError(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// nativeError classifies a backend error. Rejected requests and
// configurations no driver offers become NotSupportedErrors, anything
// else a NativeCallError. Classified errors pass through.
func nativeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		ns *NotSupportedError
		nc *NativeCallError
		ce *ConfigurationError
	)
	switch {
	case errors.As(err, &ns), errors.As(err, &nc), errors.As(err, &ce):
		return err
	case errors.Is(err, gl.ErrUnsupported),
		errors.Is(err, glx.ErrNoConfig),
		errors.Is(err, egl.ErrNoConfig),
		errors.Is(err, wgl.ErrNoPixelFormat),
		errors.Is(err, wgl.ErrSoftware):
		return &NotSupportedError{Reason: err.Error()}
	}
	return &NativeCallError{Op: op, Err: err}
}
