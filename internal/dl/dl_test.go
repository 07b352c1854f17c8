// SPDX-License-Identifier: Unlicense OR MIT

package dl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenWithOrder(t *testing.T) {
	var tried []string
	open := func(name string) (*Library, error) {
		tried = append(tried, name)
		if name == "libGL.so" {
			return NewLibrary(name, nil), nil
		}
		return nil, errors.New("not found")
	}
	lib, err := OpenWith(open, "libGL.so.1", "libGL.so", "libGL.so.0")
	require.NoError(t, err)
	require.Equal(t, "libGL.so", lib.Name)
	require.Equal(t, []string{"libGL.so.1", "libGL.so"}, tried)
}

func TestOpenWithFailure(t *testing.T) {
	open := func(name string) (*Library, error) {
		return nil, errors.New(name + " missing")
	}
	_, err := OpenWith(open, "libEGL.so.1", "libEGL.so")
	require.Error(t, err)
	require.Contains(t, err.Error(), "libEGL.so.1 missing")
	require.Contains(t, err.Error(), "libEGL.so missing")

	_, err = OpenWith(open)
	require.ErrorIs(t, err, ErrNoNames)
}

func TestLookupOverride(t *testing.T) {
	lib := NewLibrary("fake", func(name string) (uintptr, error) {
		if name == "eglGetError" {
			return 0x1000, nil
		}
		return 0, errors.New("undefined symbol")
	})
	require.True(t, lib.Has("eglGetError"))
	require.False(t, lib.Has("eglSwapBuffers"))
	var f func() int32
	require.Error(t, lib.Bind(&f, "eglSwapBuffers"))
	require.NoError(t, lib.Close())
}
