// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

// Modifications (c) 2024 The liballoc Authors.

package liballoc

import (
	"fmt"
	"sync"

	"golang.org/x/sys/windows"
)

// OSPageProvider backs PageProvider with pages mapped via
// CreateFileMapping/MapViewOfFile, one mapping per major block. Each mapping
// is pages*DefaultPageSize bytes, whatever PageSize the Heap using it is
// configured with.
type OSPageProvider struct {
	mu      sync.Mutex
	handles map[uintptr]windows.Handle
}

// NewOSPageProvider returns a PageProvider backed by the host's virtual
// memory manager.
func NewOSPageProvider() *OSPageProvider {
	return &OSPageProvider{handles: map[uintptr]windows.Handle{}}
}

// PageAlloc implements PageProvider.
//
// Mapping is a two-step process on Windows: CreateFileMapping reserves a
// page-file-backed mapping object, then MapViewOfFile commits an actual view
// of it into the address space.
func (o *OSPageProvider) PageAlloc(pages int) (uintptr, error) {
	size := uint64(pages * DefaultPageSize)
	sizeHigh := uint32(size >> 32)
	sizeLow := uint32(size & 0xFFFFFFFF)

	h, err := windows.CreateFileMapping(windows.InvalidHandle, nil, windows.PAGE_READWRITE, sizeHigh, sizeLow, nil)
	if err != nil {
		return 0, fmt.Errorf("liballoc: CreateFileMapping: %w", err)
	}

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(h)
		return 0, fmt.Errorf("liballoc: MapViewOfFile: %w", err)
	}

	o.mu.Lock()
	o.handles[addr] = h
	o.mu.Unlock()
	return addr, nil
}

// PageFree implements PageProvider.
//
// The handle map and the unmap must be locked together: once the view is
// unmapped the OS is free to reuse the address, so another goroutine must
// not be able to observe a stale handle entry in between.
func (o *OSPageProvider) PageFree(base uintptr, pages int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := windows.UnmapViewOfFile(base); err != nil {
		return fmt.Errorf("liballoc: UnmapViewOfFile: %w", err)
	}

	h, ok := o.handles[base]
	if !ok {
		return fmt.Errorf("liballoc: unknown page region %#x", base)
	}
	delete(o.handles, base)

	if err := windows.CloseHandle(h); err != nil {
		return fmt.Errorf("liballoc: CloseHandle: %w", err)
	}
	return nil
}
