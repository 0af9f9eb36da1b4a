package drivers

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"

	"golang.org/x/sys/unix"

	"perfenc/internal/attrs"
	"perfenc/internal/pfmerr"
	"perfenc/internal/pmu"
)

// perfCodes maps raw codes onto perf_event_attr and decides which
// perf_event attributes a PMU can honour. Drivers embed it.
type perfCodes struct {
	// sampling is false for counters that cannot generate interrupts
	sampling bool
}

// EncodePerf sets the PMU type, config and config1.
func (p perfCodes) EncodePerf(e *pmu.EventDesc, attr *unix.PerfEventAttr, types pmu.TypeResolver) error {
	if len(e.Codes) == 0 || len(e.Codes) > 2 {
		return fmt.Errorf("%s: %d codes: %w", e.FullName(), len(e.Codes), pfmerr.ErrNotSupported)
	}
	typ, err := types.Resolve(e.PMU.PerfName)
	if err != nil {
		return err
	}
	attr.Type = typ
	attr.Config = e.Codes[0]
	if len(e.Codes) > 1 {
		attr.Ext1 = e.Codes[1]
	}
	slog.Debug("perf encoding", slog.String("event", e.FullName()), slog.Uint64("type", uint64(attr.Type)), slog.String("config", fmt.Sprintf("0x%x", attr.Config)))
	return nil
}

// PerfAttrExposed hides privilege levels the PMU cannot filter, guest/host
// scope on uncore PMUs, and sampling controls on counting-only PMUs.
func (p perfCodes) PerfAttrExposed(e *pmu.EventDesc, idx int) bool {
	plm := e.PMU.SupportedPLM
	switch idx {
	case attrs.PerfAttrU:
		return plm&pmu.PLM3 != 0
	case attrs.PerfAttrK:
		return plm&pmu.PLM0 != 0
	case attrs.PerfAttrH:
		return plm&pmu.PLMH != 0
	case attrs.PerfAttrMG, attrs.PerfAttrMH:
		return e.PMU.Type == pmu.TypeCore
	case attrs.PerfAttrPeriod, attrs.PerfAttrFreq:
		return p.sampling
	case attrs.PerfAttrPrecise, attrs.PerfAttrHWS:
		return p.sampling && e.Entry().Flags&pmu.EventPrecise != 0
	}
	return true
}

// pmuMods collects the PMU-level modifier values selected for an event,
// keyed by modifier index.
func pmuMods(e *pmu.EventDesc) map[int]uint64 {
	mods := make(map[int]uint64)
	for i, av := range e.Attrs {
		a := e.Attr(i)
		if a.Ctrl != attrs.CtrlPMU || a.Type == attrs.TypeUmask || a.Type == attrs.TypeRawUmask {
			continue
		}
		mods[a.Idx] = av.Value
	}
	return mods
}
