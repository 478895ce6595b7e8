// Copyright 2024 The liballoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package liballoc

import "unsafe"

// logCorruption emits one structured record per classified corruption
// event, in addition to the counter bump the caller already performed. A
// nil Logger is a no-op.
func (h *Heap) logCorruption(kind CorruptionKind, p unsafe.Pointer) {
	if h.Logger == nil {
		return
	}

	h.Logger.Warn("liballoc: corrupted free/resize",
		"event", kind.String(),
		"ptr", p,
	)
}
