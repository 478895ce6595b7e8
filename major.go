// Copyright 2024 The liballoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package liballoc

import "unsafe"

// major is the header of a contiguous page run obtained from the page
// provider (spec.md "Major block"). It is placed directly at the base
// address the provider returns; the minor-list for the block starts
// immediately after it.
type major struct {
	prev, next *major
	pages      int
	size       uintptr // total bytes: pages * page size
	usage      uintptr // bytes committed, including this header
	first      *minor
}

var majorHeaderSize = unsafe.Sizeof(major{})

func majorAt(addr uintptr) *major {
	return (*major)(unsafe.Pointer(addr))
}

func addrOfMajor(m *major) uintptr {
	return uintptr(unsafe.Pointer(m))
}

// freeSpan is the upper bound on a single allocation this major can still
// satisfy (not necessarily contiguous; see GLOSSARY "Free span").
func (m *major) freeSpan() uintptr {
	return m.size - m.usage
}

// pagesFor computes the page count for a major sized to hold size bytes of
// payload plus one major header and one minor header (spec.md §4.3),
// floored at minPages.
func pagesFor(size, pageSize uintptr, minPages int) int {
	need := size + majorHeaderSize + minorHeaderSize
	pages := int((need + pageSize - 1) / pageSize)
	if pages < minPages {
		pages = minPages
	}
	return pages
}

// provisionMajor asks the page provider for a fresh major sized for size
// bytes of payload. On provider failure it increments Warnings and returns
// nil, matching spec.md §4.3's "on failure, increment warning_count and
// return NIL upward".
func (h *Heap) provisionMajor(size uintptr) *major {
	pages := pagesFor(size, h.pageSize, h.minPagesPerMajor)
	base, err := h.provider.PageAlloc(pages)
	if err != nil {
		h.Warnings++
		if h.Logger != nil {
			h.Logger.Warn("liballoc: page provider exhausted", "pages", pages, "err", err)
		}
		return nil
	}

	maj := majorAt(base)
	maj.prev = nil
	maj.next = nil
	maj.pages = pages
	maj.size = uintptr(pages) * h.pageSize
	maj.usage = majorHeaderSize
	maj.first = nil

	h.Allocated += int64(maj.size)
	return maj
}

// releaseMajor returns a now-empty major's pages to the provider and unlinks it
// from the heap's major-list, root, and best-bet (spec.md invariant 5).
func (h *Heap) releaseMajor(maj *major) {
	if h.root == maj {
		h.root = maj.next
	}
	if h.bestBet == maj {
		h.bestBet = nil
	}
	if maj.prev != nil {
		maj.prev.next = maj.next
	}
	if maj.next != nil {
		maj.next.prev = maj.prev
	}
	h.Allocated -= int64(maj.size)

	if err := h.provider.PageFree(addrOfMajor(maj), maj.pages); err != nil && h.Logger != nil {
		h.Logger.Error("liballoc: page provider failed to release pages", "pages", maj.pages, "err", err)
	}
}
