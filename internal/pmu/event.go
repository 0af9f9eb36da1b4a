package pmu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"perfenc/internal/attrs"
)

// AttrValue is one attribute selected in an event string. ID indexes the
// event's Pattrs.
type AttrValue struct {
	ID    int
	Value uint64
}

// EventDesc is the working state of a single encode call. It is never shared
// between calls.
type EventDesc struct {
	PMU   *PMU
	Event int
	// OS is the OS-level attribute namespace in use, nil for a raw encoding.
	OS *attrs.Namespace
	// Pattrs lists every attribute the event accepts: unit masks, PMU
	// modifiers, then the exposed OS attributes.
	Pattrs []attrs.Info
	// Attrs are the selected attributes in the order they were given.
	Attrs  []AttrValue
	Codes  []uint64
	Fstr   string
	DflPLM int
}

// Entry returns the event table entry.
func (e *EventDesc) Entry() *Event {
	return &e.PMU.Events[e.Event]
}

// Attr returns the descriptor of the i-th selected attribute.
func (e *EventDesc) Attr(i int) attrs.Info {
	return e.Pattrs[e.Attrs[i].ID]
}

// Value returns the value selected for the attribute at table index idx of
// layer ctrl.
func (e *EventDesc) Value(ctrl attrs.Ctrl, idx int) (uint64, bool) {
	for i, av := range e.Attrs {
		a := e.Attr(i)
		if a.Ctrl == ctrl && a.Idx == idx && a.Type != attrs.TypeUmask {
			return av.Value, true
		}
	}
	return 0, false
}

// Umasks returns the selected unit masks as indices into the event's
// unit mask table.
func (e *EventDesc) Umasks() []int {
	var out []int
	for i := range e.Attrs {
		a := e.Attr(i)
		if a.Ctrl == attrs.CtrlPMU && a.Type == attrs.TypeUmask {
			out = append(out, a.Idx)
		}
	}
	return out
}

// RawUmask returns the numeric unit mask, if one was given.
func (e *EventDesc) RawUmask() (uint64, bool) {
	for i, av := range e.Attrs {
		if e.Attr(i).Type == attrs.TypeRawUmask {
			return av.Value, true
		}
	}
	return 0, false
}

// AddUmask selects the unit mask at index umask of the event table. It is
// used by drivers to apply defaults.
func (e *EventDesc) AddUmask(umask int) {
	for id, a := range e.Pattrs {
		if a.Ctrl == attrs.CtrlPMU && a.Type == attrs.TypeUmask && a.Idx == umask {
			e.Attrs = append(e.Attrs, AttrValue{ID: id, Value: 1})
			return
		}
	}
}

// FullName is the canonical string: the PMU name followed by the fragment
// accumulated in Fstr.
func (e *EventDesc) FullName() string {
	return e.PMU.Name + "::" + e.Fstr
}

// PerfAttrExposed reports whether the OS attribute at idx is part of the
// event's vocabulary.
func (e *EventDesc) PerfAttrExposed(idx int) bool {
	for _, a := range e.Pattrs {
		if a.Ctrl == attrs.CtrlPerfEvent && a.Idx == idx {
			return true
		}
	}
	return false
}

func (e *EventDesc) buildPattrs() {
	ev := e.Entry()
	e.Pattrs = e.Pattrs[:0]
	for i, u := range ev.Umasks {
		e.Pattrs = append(e.Pattrs, attrs.Info{
			Name:      u.Name,
			Desc:      u.Desc,
			Code:      u.Code,
			Type:      attrs.TypeUmask,
			Ctrl:      attrs.CtrlPMU,
			Idx:       i,
			IsDefault: u.Flags&UmaskDefault != 0,
			NoMods:    u.Flags&UmaskNoMods != 0,
		})
	}
	for i, m := range e.PMU.Mods {
		if m.Skip() || !ev.AcceptsMod(i) {
			continue
		}
		e.Pattrs = append(e.Pattrs, attrs.Info{
			Name: m.Name,
			Desc: m.Desc,
			Code: uint64(i),
			Type: m.Type,
			Ctrl: attrs.CtrlPMU,
			Idx:  i,
		})
	}
	if e.PMU.Flags&FlagRawUmask != 0 {
		e.Pattrs = append(e.Pattrs, attrs.Info{
			Name: "raw_umask",
			Desc: "numeric unit mask",
			Type: attrs.TypeRawUmask,
			Ctrl: attrs.CtrlPMU,
			Idx:  -1,
		})
	}
	if e.OS == nil {
		return
	}
	filter, _ := e.PMU.Driver.(PerfAttrFilter)
	for _, info := range e.OS.Enumerate() {
		if filter != nil && !filter.PerfAttrExposed(e, info.Idx) {
			continue
		}
		e.Pattrs = append(e.Pattrs, info)
	}
}
