// Copyright 2024 The liballoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package liballoc

import (
	"fmt"
	"sync"
	"unsafe"
)

// fakeProvider is a PageProvider backed by one in-process arena instead of
// real OS pages, so the tests below are fast and deterministic. Grounded on
// the pack's arena-over-a-buffer allocators (alewtschuk-balloc,
// SeleniaProject-Orizon's ArenaAllocatorImpl) rather than on any real mmap.
type fakeProvider struct {
	mu       sync.Mutex
	pageSize uintptr
	arena    []byte
	base     uintptr
	next     uintptr
	free     map[int][]uintptr // pages -> stack of freed offsets of that size
	live     map[uintptr]int   // offset -> pages, for double-free detection
}

func newFakeProvider(pageSize uintptr, totalPages int) *fakeProvider {
	arena := make([]byte, uintptr(totalPages)*pageSize)
	return &fakeProvider{
		pageSize: pageSize,
		arena:    arena,
		base:     uintptr(unsafe.Pointer(&arena[0])),
		free:     map[int][]uintptr{},
		live:     map[uintptr]int{},
	}
}

func (f *fakeProvider) PageAlloc(pages int) (uintptr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if stack := f.free[pages]; len(stack) > 0 {
		off := stack[len(stack)-1]
		f.free[pages] = stack[:len(stack)-1]
		f.live[off] = pages
		return f.base + off, nil
	}

	need := uintptr(pages) * f.pageSize
	if f.next+need > uintptr(len(f.arena)) {
		return 0, fmt.Errorf("fakeProvider: out of pages (want %d, have %d free)", pages, (uintptr(len(f.arena))-f.next)/f.pageSize)
	}

	off := f.next
	f.next += need
	f.live[off] = pages
	return f.base + off, nil
}

func (f *fakeProvider) PageFree(base uintptr, pages int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	off := base - f.base
	if got, ok := f.live[off]; !ok || got != pages {
		return fmt.Errorf("fakeProvider: mismatched free at offset %d: have %d, want %d", off, got, pages)
	}
	delete(f.live, off)
	f.free[pages] = append(f.free[pages], off)
	return nil
}

func (f *fakeProvider) liveRegions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}
