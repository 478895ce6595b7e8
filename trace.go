// Copyright 2024 The liballoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package liballoc

import (
	"fmt"
	"os"
)

// trace gates the package's low-level per-call debug prints. It costs
// nothing when false: every call site is a single bool check guarding a
// deferred closure, the same shape cznic/memory uses around Malloc/Free.
var trace = false

func tracef(format string, args ...interface{}) {
	if !trace {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)
}
