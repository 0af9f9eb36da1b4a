package pmu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"golang.org/x/sys/unix"
)

// Driver produces the raw encoding of an event. Encode must set at least
// one code and a canonical fragment, and must leave OS-level attributes
// alone.
type Driver interface {
	Encode(e *EventDesc) error
}

// TypeResolver maps a PMU's perf name to a kernel PMU type.
type TypeResolver interface {
	Resolve(perfName string) (uint32, error)
}

// PerfEncoder is implemented by drivers that can express their codes as a
// perf_event_attr. Encode has already run when EncodePerf is called.
type PerfEncoder interface {
	EncodePerf(e *EventDesc, attr *unix.PerfEventAttr, types TypeResolver) error
}

// PerfAttrFilter is implemented by drivers that cannot honour every
// perf_event attribute. Hidden attributes are neither accepted in event
// strings nor rendered in canonical strings.
type PerfAttrFilter interface {
	PerfAttrExposed(e *EventDesc, idx int) bool
}
