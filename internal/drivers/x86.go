package drivers

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"perfenc/internal/attrs"
	"perfenc/internal/pfmerr"
	"perfenc/internal/pmu"
)

// event select register layout shared by core and uncore counters
const (
	selUsr   = 1 << 16
	selOS    = 1 << 17
	selEdge  = 1 << 18
	selInt   = 1 << 20
	selEn    = 1 << 22
	selInv   = 1 << 23
	selCmask = 24
)

const (
	x86AttrE = iota
	x86AttrI
	x86AttrC
)

var x86Mods = []attrs.Desc{
	x86AttrE: {Name: "e", Desc: "edge level (may require counter-mask >= 1)", Type: attrs.TypeBool},
	x86AttrI: {Name: "i", Desc: "invert", Type: attrs.TypeBool},
	x86AttrC: {Name: "c", Desc: "counter-mask in range [0-255]", Type: attrs.TypeInt},
}

// x86Core encodes core PMU events into IA32_PERFEVTSELx values.
type x86Core struct {
	perfCodes
}

func (d x86Core) Encode(e *pmu.EventDesc) error {
	ev := e.Entry()
	umask, fstr, err := x86Umasks(e)
	if err != nil {
		return err
	}
	code := ev.Code | umask<<8
	mods := pmuMods(e)
	if mods[x86AttrE] != 0 {
		code |= selEdge
	}
	if mods[x86AttrI] != 0 {
		code |= selInv
	}
	c := mods[x86AttrC]
	if c > 0xff {
		return fmt.Errorf("%s: counter-mask %d out of range: %w", ev.Name, c, pfmerr.ErrAttrValue)
	}
	code |= c << selCmask
	// the kernel owns the enable, interrupt and privilege bits of perf events
	if e.OS == nil {
		code |= selEn | selInt
		if e.DflPLM&pmu.PLM3 != 0 {
			code |= selUsr
		}
		if e.DflPLM&pmu.PLM0 != 0 {
			code |= selOS
		}
	}
	e.Codes = []uint64{code}
	e.Fstr = fstr + renderMods(e, mods)
	slog.Debug("x86 encoding", slog.String("pmu", e.PMU.Name), slog.String("event", ev.Name), slog.String("code", fmt.Sprintf("0x%x", code)))
	return nil
}

// x86Umasks checks the unit masks selected for the event, adds defaults
// when none were given, and returns their combined code and the event
// fragment of the canonical string.
func x86Umasks(e *pmu.EventDesc) (uint64, string, error) {
	ev := e.Entry()
	sel := e.Umasks()
	if raw, ok := e.RawUmask(); ok {
		if len(sel) > 0 {
			return 0, "", fmt.Errorf("%s: numeric and named unit masks: %w", ev.Name, pfmerr.ErrFeatComb)
		}
		return raw, fmt.Sprintf("%s:0x%x", ev.Name, raw), nil
	}
	if len(sel) == 0 && len(ev.Umasks) > 0 {
		for i, u := range ev.Umasks {
			if u.Flags&pmu.UmaskDefault != 0 {
				e.AddUmask(i)
				sel = append(sel, i)
			}
		}
		if len(sel) == 0 {
			return 0, "", fmt.Errorf("%s requires a unit mask: %w", ev.Name, pfmerr.ErrUmask)
		}
	}
	if len(sel) > 1 {
		for _, i := range sel {
			if ev.Umasks[i].Flags&pmu.UmaskNCombo != 0 {
				return 0, "", fmt.Errorf("%s:%s cannot be combined: %w", ev.Name, ev.Umasks[i].Name, pfmerr.ErrFeatComb)
			}
		}
	}
	slices.Sort(sel)
	var code uint64
	var b strings.Builder
	b.WriteString(ev.Name)
	for _, i := range sel {
		code |= ev.Umasks[i].Code
		b.WriteString(":" + ev.Umasks[i].Name)
	}
	return code, b.String(), nil
}

// renderMods appends every PMU modifier the event accepts with its
// effective value, in table order.
func renderMods(e *pmu.EventDesc, mods map[int]uint64) string {
	var b strings.Builder
	for i, m := range e.PMU.Mods {
		if m.Skip() || !e.Entry().AcceptsMod(i) {
			continue
		}
		fmt.Fprintf(&b, ":%s=%d", m.Name, mods[i])
	}
	return b.String()
}
