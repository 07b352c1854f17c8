// SPDX-License-Identifier: Unlicense OR MIT

//go:build !windows

package dl

import (
	"github.com/ebitengine/purego"
)

func openLibrary(name string) (*Library, error) {
	h, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, err
	}
	return &Library{Name: name, handle: h}, nil
}

func (l *Library) sym(name string) (uintptr, error) {
	return purego.Dlsym(l.handle, name)
}

func (l *Library) close() error {
	return purego.Dlclose(l.handle)
}
