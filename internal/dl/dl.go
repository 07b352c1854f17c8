// SPDX-License-Identifier: Unlicense OR MIT

// Package dl loads shared libraries at run time and binds their symbols
// to Go functions.
package dl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ebitengine/purego"
)

// Library is a loaded shared library.
type Library struct {
	Name   string
	handle uintptr
	// lookup, when set, replaces the platform symbol lookup.
	lookup func(name string) (uintptr, error)
}

// Opener loads a single library by name.
type Opener func(name string) (*Library, error)

// ErrNoNames is returned by OpenWith when given no names to try.
var ErrNoNames = errors.New("dl: no library names")

// Open loads the first of names that can be loaded, trying them in
// order.
func Open(names ...string) (*Library, error) {
	return OpenWith(openLibrary, names...)
}

// OpenWith is like Open but loads each name with open.
func OpenWith(open Opener, names ...string) (*Library, error) {
	if len(names) == 0 {
		return nil, ErrNoNames
	}
	var errs []string
	for _, n := range names {
		lib, err := open(n)
		if err == nil {
			return lib, nil
		}
		errs = append(errs, err.Error())
	}
	return nil, fmt.Errorf("dl: failed to load any of %s: %s", strings.Join(names, ", "), strings.Join(errs, "; "))
}

// NewLibrary returns a Library that resolves symbols with lookup. It is
// used for libraries whose symbols come from somewhere other than the
// platform loader, such as tests.
func NewLibrary(name string, lookup func(name string) (uintptr, error)) *Library {
	return &Library{Name: name, lookup: lookup}
}

// Sym returns the address of the named symbol.
func (l *Library) Sym(name string) (uintptr, error) {
	if l.lookup != nil {
		return l.lookup(name)
	}
	return l.sym(name)
}

// Has reports whether the library exports name.
func (l *Library) Has(name string) bool {
	_, err := l.Sym(name)
	return err == nil
}

// Bind resolves name and stores a Go function calling it in fptr, which
// must be a pointer to a func variable.
func (l *Library) Bind(fptr any, name string) error {
	addr, err := l.Sym(name)
	if err != nil {
		return fmt.Errorf("dl: failed to locate %s in %s: %w", name, l.Name, err)
	}
	if addr == 0 {
		return fmt.Errorf("dl: %s in %s is nil", name, l.Name)
	}
	purego.RegisterFunc(fptr, addr)
	return nil
}

// BindAll binds every entry of syms, keyed by symbol name.
func (l *Library) BindAll(syms map[string]any) error {
	for name, fptr := range syms {
		if err := l.Bind(fptr, name); err != nil {
			return err
		}
	}
	return nil
}

// Close unloads the library. Functions bound from it must not be called
// afterwards.
func (l *Library) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := l.close()
	l.handle = 0
	return err
}
