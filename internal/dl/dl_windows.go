// SPDX-License-Identifier: Unlicense OR MIT

package dl

import (
	"fmt"

	syscall "golang.org/x/sys/windows"
)

func openLibrary(name string) (*Library, error) {
	h, err := syscall.LoadLibraryEx(name, 0, syscall.LOAD_LIBRARY_SEARCH_DEFAULT_DIRS)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %v", name, err)
	}
	return &Library{Name: name, handle: uintptr(h)}, nil
}

func (l *Library) sym(name string) (uintptr, error) {
	return syscall.GetProcAddress(syscall.Handle(l.handle), name)
}

func (l *Library) close() error {
	return syscall.FreeLibrary(syscall.Handle(l.handle))
}
