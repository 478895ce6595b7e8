// Copyright 2024 The liballoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package liballoc implements a general-purpose heap allocator over a
// page-granularity backing provider. It carves host-supplied page runs
// ("major" blocks) into arbitrarily sized, aligned user allocations
// ("minor" blocks), with per-heap accounting and magic-number corruption
// detection, following the classic liballoc design.
//
// The package is not thread-safe: a Heap is a plain struct the caller must
// serialize access to, typically with one mutex per heap or one heap per
// goroutine.
package liballoc

import (
	"log/slog"
	"unsafe"
)

// Default ABI constants (spec.md §6). These are part of the wire contract
// if multiple compilation units were to share a heap; in Go they are simply
// the defaults HeapConfig falls back to when left zero.
const (
	DefaultPageSize         = 4096
	DefaultMinPagesPerMajor = 16
	DefaultAlignment        = 16
)

// HeapConfig parameterizes a Heap. The zero value resolves every field to
// its Default* constant.
type HeapConfig struct {
	PageSize         uintptr
	MinPagesPerMajor int
	Alignment        uintptr

	// Logger, if non-nil, receives one structured record per classified
	// corruption event (double free or wild pointer) in addition to the
	// counter bump, and one record per page-provider failure. Possible
	// overruns are counted but carry no event kind of their own. Nil means
	// no logging, ever.
	Logger *slog.Logger
}

// Heap is a single allocator arena: operations are passed an explicit
// handle rather than operating on hidden global state (spec.md "Heap
// handle"). The zero value is not ready for use directly; construct with
// NewHeap so the page provider and config are attached.
type Heap struct {
	provider         PageProvider
	pageSize         uintptr
	minPagesPerMajor int
	alignment        uintptr

	root    *major
	bestBet *major

	Allocated        int64
	InUse            int64
	Warnings         int64
	Errors           int64
	PossibleOverruns int64

	Logger *slog.Logger
}

// NewHeap constructs an empty Heap backed by provider. provider must not be
// nil; cfg.Alignment, if set, must be a power of two.
func NewHeap(provider PageProvider, cfg HeapConfig) (*Heap, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	pageSize := cfg.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	minPages := cfg.MinPagesPerMajor
	if minPages == 0 {
		minPages = DefaultMinPagesPerMajor
	}

	alignment := cfg.Alignment
	if alignment == 0 {
		alignment = DefaultAlignment
	}
	if alignment&(alignment-1) != 0 {
		return nil, ErrInvalidAlignment
	}

	return &Heap{
		provider:         provider,
		pageSize:         pageSize,
		minPagesPerMajor: minPages,
		alignment:        alignment,
		Logger:           cfg.Logger,
	}, nil
}

// Alloc carves req bytes of aligned storage out of h and returns a pointer
// to it, or nil if the page provider is exhausted (spec.md §4.2). A req of
// zero is rewritten to one and counted as a warning; it never returns nil
// for that reason alone.
func (h *Heap) Alloc(req uintptr) unsafe.Pointer {
	if req == 0 {
		h.Warnings++
		req = 1
	}

	size := req
	if h.alignment > 1 {
		size += h.alignment + alignInfo
	}

	if trace {
		defer func() { tracef("liballoc: Alloc(%d)", req) }()
	}

	if h.root == nil {
		h.root = h.provisionMajor(size)
		if h.root == nil {
			return nil
		}
	}

	maj := h.root
	startedBet := false
	var bestSize uintptr

	if h.bestBet != nil {
		bestSize = h.bestBet.freeSpan()
		if bestSize > size+minorHeaderSize {
			maj = h.bestBet
			startedBet = true
		}
	}

	for maj != nil {
		diff := maj.freeSpan()
		if bestSize < diff {
			h.bestBet = maj
			bestSize = diff
		}

		// Case 1: not enough room anywhere in this major.
		if diff < size+minorHeaderSize {
			if maj.next != nil {
				maj = maj.next
				continue
			}
			if startedBet {
				maj = h.root
				startedBet = false
				continue
			}

			next := h.provisionMajor(size)
			if next == nil {
				break
			}
			next.prev = maj
			maj.next = next
			maj = next
			// fall through to case 2: the new major is always empty.
		}

		// Case 2: brand new, empty block.
		if maj.first == nil {
			return h.placeInEmptyMajor(maj, size, req)
		}

		// Case 3: room between the major header and the first minor.
		frontGap := addrOfMinor(maj.first) - addrOfMajor(maj) - majorHeaderSize
		if frontGap >= size+minorHeaderSize {
			return h.placeAtFront(maj, size, req)
		}

		// Case 4: walk the minor-list for a tail or mid-list hole.
		for m := maj.first; m != nil; m = m.next {
			if m.next == nil {
				tailEnd := addrOfMajor(maj) + maj.size
				gap := tailEnd - m.payloadStart() - m.size
				if gap >= size+minorHeaderSize {
					return h.placeAfterTail(m, maj, size, req)
				}
			}
			if m.next != nil {
				gap := addrOfMinor(m.next) - m.payloadStart() - m.size
				if gap >= size+minorHeaderSize {
					return h.placeBetween(m, m.next, maj, size, req)
				}
			}
		}

		// Case 5: block full, no hole found. Ensure a next block and loop.
		if maj.next == nil {
			if startedBet {
				maj = h.root
				startedBet = false
				continue
			}

			next := h.provisionMajor(size)
			if next == nil {
				break
			}
			next.prev = maj
			maj.next = next
		}

		maj = maj.next
	}

	return nil
}

// placeInEmptyMajor implements case 2: the new minor becomes the sole entry
// at the head of maj's minor-list.
func (h *Heap) placeInEmptyMajor(maj *major, size, req uintptr) unsafe.Pointer {
	m := minorAt(addrOfMajor(maj) + majorHeaderSize)
	m.prev = nil
	m.next = nil
	maj.first = m
	return h.commitMinor(m, maj, size, req)
}

// placeAtFront implements case 3: insert a new head before maj.first, using
// the gap between the major header and the current first minor.
func (h *Heap) placeAtFront(maj *major, size, req uintptr) unsafe.Pointer {
	m := minorAt(addrOfMajor(maj) + majorHeaderSize)
	m.prev = nil
	m.next = maj.first
	maj.first.prev = m
	maj.first = m
	return h.commitMinor(m, maj, size, req)
}

// placeAfterTail implements case 4.1: append a new minor after the current
// last minor, using the gap to the end of the block.
func (h *Heap) placeAfterTail(tail *minor, maj *major, size, req uintptr) unsafe.Pointer {
	m := minorAt(tail.payloadStart() + tail.size)
	m.prev = tail
	m.next = nil
	tail.next = m
	return h.commitMinor(m, maj, size, req)
}

// placeBetween implements case 4.2: splice a new minor between two adjacent
// minors a and b, using the gap between them.
func (h *Heap) placeBetween(a, b *minor, maj *major, size, req uintptr) unsafe.Pointer {
	m := minorAt(a.payloadStart() + a.size)
	m.prev = a
	m.next = b
	a.next = m
	b.prev = m
	return h.commitMinor(m, maj, size, req)
}

// commitMinor finalizes a newly placed minor's header, updates accounting,
// and returns its aligned user pointer.
func (h *Heap) commitMinor(m *minor, maj *major, size, req uintptr) unsafe.Pointer {
	m.magic = liveMagic
	m.block = maj
	m.size = size
	m.reqSize = req

	maj.usage += size + minorHeaderSize
	h.InUse += int64(size)

	return unsafe.Pointer(alignUp(m.payloadStart(), h.alignment))
}

// Free releases the allocation at p, which must have been returned by
// Alloc, CallocZeroed, or Resize on h. A nil p is a no-op counted as a
// warning (spec.md §4.4). A p whose header magic is not live is counted as
// an error and classified (double free vs. wild pointer); the heap is left
// untouched.
func (h *Heap) Free(p unsafe.Pointer) {
	if trace {
		defer func() { tracef("liballoc: Free(%p)", p) }()
	}

	if p == nil {
		h.Warnings++
		return
	}

	payload := unalign(uintptr(p), h.alignment)
	m := minorAt(payload - minorHeaderSize)

	if m.magic != liveMagic {
		h.Errors++
		if overrunHeuristic(m.magic) {
			h.PossibleOverruns++
		}
		h.logCorruption(classifyMagic(m.magic), p)
		return
	}

	maj := m.block
	h.InUse -= int64(m.size)
	maj.usage -= m.size + minorHeaderSize
	m.magic = deadMagic

	if m.next != nil {
		m.next.prev = m.prev
	}
	if m.prev != nil {
		m.prev.next = m.next
	}
	if m.prev == nil {
		maj.first = m.next
	}

	if maj.first == nil {
		h.releaseMajor(maj)
		return
	}

	if h.bestBet != nil && maj.freeSpan() > h.bestBet.freeSpan() {
		h.bestBet = maj
	}
}

// CallocZeroed allocates room for n elements of elemSize bytes each and
// zeroes exactly n*elemSize bytes of it (spec.md §4.5). It returns nil,
// without allocating, if n*elemSize would overflow uintptr — the fix noted
// in spec.md §9 rather than the original's unchecked multiplication.
func (h *Heap) CallocZeroed(n, elemSize uintptr) unsafe.Pointer {
	total := n * elemSize
	if n != 0 && total/n != elemSize {
		return nil
	}

	p := h.Alloc(total)
	if p == nil {
		return nil
	}

	b := unsafe.Slice((*byte)(p), total)
	for i := range b {
		b[i] = 0
	}
	return p
}

// Resize changes the usable size of the allocation at p to newSize,
// returning the (possibly new) pointer (spec.md §4.6). newSize of zero
// frees p and returns nil. A nil p behaves like Alloc(newSize). Shrinking
// happens in place with no data movement; growing allocates fresh, copies
// the original request size, and frees the old block.
func (h *Heap) Resize(p unsafe.Pointer, newSize uintptr) unsafe.Pointer {
	if newSize == 0 {
		h.Free(p)
		return nil
	}
	if p == nil {
		return h.Alloc(newSize)
	}

	payload := unalign(uintptr(p), h.alignment)
	m := minorAt(payload - minorHeaderSize)

	if m.magic != liveMagic {
		h.Errors++
		if overrunHeuristic(m.magic) {
			h.PossibleOverruns++
		}
		h.logCorruption(classifyMagic(m.magic), p)
		return nil
	}

	if newSize <= m.reqSize {
		m.reqSize = newSize
		return p
	}

	newP := h.Alloc(newSize)
	if newP == nil {
		return nil
	}

	copy(unsafe.Slice((*byte)(newP), m.reqSize), unsafe.Slice((*byte)(p), m.reqSize))
	h.Free(p)
	return newP
}
