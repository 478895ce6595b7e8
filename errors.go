// Copyright 2024 The liballoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package liballoc

import "errors"

var (
	// ErrNilProvider is returned by NewHeap when provider is nil.
	ErrNilProvider = errors.New("liballoc: page provider must not be nil")
	// ErrInvalidAlignment is returned by NewHeap when cfg.Alignment is not
	// a power of two.
	ErrInvalidAlignment = errors.New("liballoc: alignment must be a power of two")
)
