/*
Package attrs describes event attributes: unit masks and modifiers exposed by a
PMU, and the modifiers the perf_event layer adds on top of them.
*/
package attrs

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strings"
)

// Type is the kind of value an attribute accepts.
type Type int

const (
	TypeNone Type = iota
	TypeUmask
	TypeBool
	TypeInt
	TypeRawUmask
)

func (t Type) String() string {
	switch t {
	case TypeUmask:
		return "umask"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeRawUmask:
		return "raw_umask"
	default:
		return "none"
	}
}

// Ctrl identifies the layer that interprets an attribute.
type Ctrl int

const (
	CtrlUnknown Ctrl = iota
	CtrlPMU
	CtrlPerfEvent
)

func (c Ctrl) String() string {
	switch c {
	case CtrlPMU:
		return "pmu"
	case CtrlPerfEvent:
		return "perf_event"
	default:
		return "unknown"
	}
}

// Desc is an entry of an attribute table. An entry with an empty name is
// padding: it occupies an index but is never exposed.
type Desc struct {
	Name string
	Desc string
	Type Type
}

// Skip reports whether d is a padding entry.
func (d Desc) Skip() bool {
	return d.Name == ""
}

// Info is the public view of one attribute of an event, as returned by
// enumeration.
type Info struct {
	Name      string `json:"name" yaml:"name"`
	Desc      string `json:"desc" yaml:"desc"`
	Code      uint64 `json:"code" yaml:"code"`
	Type      Type   `json:"type" yaml:"type"`
	Ctrl      Ctrl   `json:"ctrl" yaml:"ctrl"`
	Idx       int    `json:"idx" yaml:"idx"` // position in the owning table
	IsDefault bool   `json:"is_default" yaml:"is_default"`
	NoMods    bool   `json:"no_mods" yaml:"no_mods"` // umask forbids OS-level modifiers
}

// Namespace is a named attribute table. Indices into Mods are stable, so
// padding is kept in place rather than removed.
type Namespace struct {
	Name string
	Mods []Desc
}

// Lookup returns the attribute at idx. Padding and out-of-range indices are
// reported as missing.
func (n Namespace) Lookup(idx int) (Desc, bool) {
	if idx < 0 || idx >= len(n.Mods) || n.Mods[idx].Skip() {
		return Desc{}, false
	}
	return n.Mods[idx], true
}

// Index returns the table index of the attribute called name, or -1.
func (n Namespace) Index(name string) int {
	for i, d := range n.Mods {
		if !d.Skip() && strings.EqualFold(d.Name, name) {
			return i
		}
	}
	return -1
}

// Enumerate lists the attributes in table order, skipping padding.
func (n Namespace) Enumerate() []Info {
	infos := make([]Info, 0, len(n.Mods))
	for i, d := range n.Mods {
		if d.Skip() {
			continue
		}
		infos = append(infos, Info{
			Name: d.Name,
			Desc: d.Desc,
			Code: uint64(i),
			Type: d.Type,
			Ctrl: CtrlPerfEvent,
			Idx:  i,
		})
	}
	return infos
}
