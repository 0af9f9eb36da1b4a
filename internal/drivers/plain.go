package drivers

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"perfenc/internal/pmu"
)

// plainCode encodes PMUs whose event code is the whole configuration, such
// as free running MSR counters and the Kunpeng uncore.
type plainCode struct {
	perfCodes
}

func (d plainCode) Encode(e *pmu.EventDesc) error {
	ev := e.Entry()
	e.Codes = []uint64{ev.Code}
	e.Fstr = ev.Name
	return nil
}
