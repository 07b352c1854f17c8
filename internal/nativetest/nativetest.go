// SPDX-License-Identifier: Unlicense OR MIT

// Package nativetest holds helpers shared by the fake native libraries.
package nativetest

import (
	"sync"
	"unsafe"
)

// Trace is an ordered log of native calls, shared between fakes so that
// tests can assert on the interleaving of calls into different
// libraries.
type Trace struct {
	mu  sync.Mutex
	ops []string
}

func (t *Trace) Record(op string) {
	t.mu.Lock()
	t.ops = append(t.ops, op)
	t.mu.Unlock()
}

// Ops returns a copy of the calls recorded so far.
func (t *Trace) Ops() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.ops...)
}

// Count returns how many times op was recorded.
func (t *Trace) Count(op string) int {
	n := 0
	for _, o := range t.Ops() {
		if o == op {
			n++
		}
	}
	return n
}

// Index returns the position of the first op recorded, or -1.
func (t *Trace) Index(op string) int {
	for i, o := range t.Ops() {
		if o == op {
			return i
		}
	}
	return -1
}

// Attribs decodes a native key/value attribute list ending in term.
func Attribs[T comparable](p *T, term T) map[T]T {
	m := make(map[T]T)
	if p == nil {
		return m
	}
	var zero T
	size := unsafe.Sizeof(zero)
	for i := uintptr(0); ; i += 2 {
		k := *(*T)(unsafe.Add(unsafe.Pointer(p), i*size))
		if k == term {
			return m
		}
		m[k] = *(*T)(unsafe.Add(unsafe.Pointer(p), (i+1)*size))
	}
}
