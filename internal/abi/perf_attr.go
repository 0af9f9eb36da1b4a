package abi

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// PerfAttrSize is the size of perf_event_attr as known to this build.
const PerfAttrSize = uint32(unsafe.Sizeof(unix.PerfEventAttr{}))

// PerfAttr lists the kernel's perf_event_attr revisions, capped at the
// layout of unix.PerfEventAttr.
var PerfAttr = perfAttrTable()

func perfAttrTable() Table {
	known := []Revision{
		{"VER0", unix.PERF_ATTR_SIZE_VER0},
		{"VER1", unix.PERF_ATTR_SIZE_VER1},
		{"VER2", unix.PERF_ATTR_SIZE_VER2},
		{"VER3", unix.PERF_ATTR_SIZE_VER3},
		{"VER4", unix.PERF_ATTR_SIZE_VER4},
		{"VER5", unix.PERF_ATTR_SIZE_VER5},
		{"VER6", unix.PERF_ATTR_SIZE_VER6},
		{"VER7", unix.PERF_ATTR_SIZE_VER7},
	}
	t := Table{Name: "perf_event_attr"}
	for _, r := range known {
		if r.Size > PerfAttrSize {
			break
		}
		t.Revisions = append(t.Revisions, r)
	}
	if t.Current() < PerfAttrSize {
		t.Revisions = append(t.Revisions, Revision{"current", PerfAttrSize})
	}
	return t
}

// AttrBytes views attr as its raw bytes. PerfEventAttr holds no pointers,
// so the view is safe to read and write.
func AttrBytes(attr *unix.PerfEventAttr) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(attr)), PerfAttrSize)
}

// CopyAttr copies the first n bytes of src into dst.
func CopyAttr(dst, src *unix.PerfEventAttr, n uint32) {
	n = min(n, PerfAttrSize)
	copy(AttrBytes(dst)[:n], AttrBytes(src)[:n])
}
