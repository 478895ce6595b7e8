// Copyright 2024 The liballoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package liballoc

import (
	"testing"
	"unsafe"
)

func TestPagesForFloorsAtMinPages(t *testing.T) {
	got := pagesFor(1, DefaultPageSize, DefaultMinPagesPerMajor)
	if got != DefaultMinPagesPerMajor {
		t.Fatalf("pagesFor(1) = %d, want %d", got, DefaultMinPagesPerMajor)
	}
}

func TestPagesForRoundsUp(t *testing.T) {
	big := uintptr(DefaultMinPagesPerMajor+3) * DefaultPageSize
	got := pagesFor(big, DefaultPageSize, DefaultMinPagesPerMajor)
	if got <= DefaultMinPagesPerMajor {
		t.Fatalf("pagesFor(%d) = %d, want more than %d pages", big, got, DefaultMinPagesPerMajor)
	}
}

// TestEmptyMajorReclamation is spec.md §8 invariant 5, exercised across
// several majors: freeing every allocation placed in a given major must
// trigger a matching PageFree before the freeing call returns.
func TestEmptyMajorReclamation(t *testing.T) {
	fp := newFakeProvider(DefaultPageSize, 4096)
	h, err := NewHeap(fp, HeapConfig{})
	if err != nil {
		t.Fatal(err)
	}

	// Force several majors by allocating blocks close to a major's
	// capacity.
	const perMajor = 8
	const size = (DefaultMinPagesPerMajor * DefaultPageSize) / perMajor

	var ptrs []unsafe.Pointer
	for i := 0; i < perMajor*3; i++ {
		p := h.Alloc(size)
		if p == nil {
			t.Fatalf("alloc %d failed", i)
		}
		ptrs = append(ptrs, p)
	}

	for _, p := range ptrs {
		h.Free(p)
	}

	if got := h.Stats(); got.Allocated != 0 {
		t.Fatalf("expected all majors released, Allocated=%d", got.Allocated)
	}
	if got := fp.liveRegions(); got != 0 {
		t.Fatalf("expected all page-provider regions released, %d remain", got)
	}
}
