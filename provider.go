// Copyright 2024 The liballoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package liballoc

// PageProvider is the host-supplied page backing interface (spec.md §6). The
// core never assumes what backs it: mmap, a kernel page allocator, an sbrk
// wrapper, or a test-only arena.
//
// PageAlloc must return pages*DefaultPageSize (or the heap's configured page
// size) contiguous, writable bytes at the returned base, or an error.
// Content need not be zeroed. PageFree releases a region previously returned
// by PageAlloc, with the same pages count.
//
// Neither method may re-enter the allocator on the heap it is backing.
type PageProvider interface {
	PageAlloc(pages int) (base uintptr, err error)
	PageFree(base uintptr, pages int) error
}
