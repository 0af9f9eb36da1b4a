/*
Package abi negotiates the size of caller-supplied, versioned structures.
Fields are only ever appended, so a smaller declared size selects an older
layout that is a prefix of the current one.
*/
package abi

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"

	"perfenc/internal/pfmerr"
)

// Revision is one published layout of a structure.
type Revision struct {
	Name string
	Size uint32
}

// Table lists the revisions of a structure in ascending size. The first
// entry is the smallest layout accepted, the last is the layout this
// package was built with.
type Table struct {
	Name      string
	Revisions []Revision
}

// Floor is the size of the oldest accepted revision.
func (t Table) Floor() uint32 {
	return t.Revisions[0].Size
}

// Current is the size of the newest known revision.
func (t Table) Current() uint32 {
	return t.Revisions[len(t.Revisions)-1].Size
}

// Negotiate returns how many bytes may be exchanged with a caller that
// declared size bytes. Zero means the oldest revision.
func (t Table) Negotiate(size uint32) (uint32, error) {
	if size == 0 {
		return t.Floor(), nil
	}
	if size < t.Floor() {
		return 0, fmt.Errorf("%s size %d below minimum %d: %w", t.Name, size, t.Floor(), pfmerr.ErrInvalid)
	}
	return min(size, t.Current()), nil
}

// Revision returns the newest revision that fits in size bytes.
func (t Table) Revision(size uint32) (Revision, bool) {
	var found Revision
	ok := false
	for _, r := range t.Revisions {
		if r.Size > size {
			break
		}
		found, ok = r, true
	}
	return found, ok
}
