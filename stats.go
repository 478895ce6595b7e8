// Copyright 2024 The liballoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package liballoc

import "fmt"

// Stats is a point-in-time snapshot of a Heap's accounting counters
// (spec.md "Heap handle").
type Stats struct {
	Allocated        int64 // pages held, in bytes
	InUse            int64 // sum of live user sizes
	Warnings         int64
	Errors           int64
	PossibleOverruns int64
}

// String renders Stats the way cznic/memory's tests log allocator state:
// a single dense line suited to t.Logf or a debug print.
func (s Stats) String() string {
	return fmt.Sprintf(
		"allocated=%d inuse=%d warnings=%d errors=%d possible_overruns=%d",
		s.Allocated, s.InUse, s.Warnings, s.Errors, s.PossibleOverruns,
	)
}

// Stats returns a snapshot of h's current counters.
func (h *Heap) Stats() Stats {
	return Stats{
		Allocated:        h.Allocated,
		InUse:            h.InUse,
		Warnings:         h.Warnings,
		Errors:           h.Errors,
		PossibleOverruns: h.PossibleOverruns,
	}
}
