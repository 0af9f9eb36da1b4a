package drivers

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"

	"perfenc/internal/attrs"
	"perfenc/internal/pfmerr"
	"perfenc/internal/pmu"
)

const (
	uncAttrE = iota
	uncAttrI
	uncAttrT
)

var uncoreMods = []attrs.Desc{
	uncAttrE: {Name: "e", Desc: "edge detect", Type: attrs.TypeBool},
	uncAttrI: {Name: "i", Desc: "invert", Type: attrs.TypeBool},
	uncAttrT: {Name: "t", Desc: "threshold in range [0-255]", Type: attrs.TypeInt},
}

// snbepUncore encodes uncore boxes sharing the SandyBridge-EP register
// layout. umaskShift is zero for boxes whose unit mask codes are already
// positioned in the register.
type snbepUncore struct {
	perfCodes
	umaskShift uint
}

func (d snbepUncore) Encode(e *pmu.EventDesc) error {
	ev := e.Entry()
	umask, fstr, err := x86Umasks(e)
	if err != nil {
		return err
	}
	code := ev.Code | umask<<d.umaskShift
	mods := pmuMods(e)
	if mods[uncAttrE] != 0 {
		code |= selEdge
	}
	if mods[uncAttrI] != 0 {
		code |= selInv
	}
	t := mods[uncAttrT]
	if t > 0xff {
		return fmt.Errorf("%s: threshold %d out of range: %w", ev.Name, t, pfmerr.ErrAttrValue)
	}
	code |= t << selCmask
	if e.OS == nil {
		code |= selEn
	}
	e.Codes = []uint64{code}
	e.Fstr = fstr + renderMods(e, mods)
	return nil
}
