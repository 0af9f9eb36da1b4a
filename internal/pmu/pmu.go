/*
Package pmu models performance monitoring units, their event tables and the
contract drivers implement to turn a parsed event into raw register codes.
*/
package pmu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strings"

	"perfenc/internal/attrs"
)

// Privilege level masks.
const (
	PLM0   = 0x01 // kernel
	PLM1   = 0x02
	PLM2   = 0x04
	PLM3   = 0x08 // user
	PLMH   = 0x10 // hypervisor
	PLMAll = PLM0 | PLM1 | PLM2 | PLM3 | PLMH
)

// Type classifies a PMU.
type Type int

const (
	TypeUnknown Type = iota
	TypeCore
	TypeUncore
)

func (t Type) String() string {
	switch t {
	case TypeCore:
		return "core"
	case TypeUncore:
		return "uncore"
	default:
		return "unknown"
	}
}

// Flags modify how a PMU parses its events.
type Flags uint32

const (
	// FlagRawUmask accepts a numeric unit mask, e.g. EVENT:0x41.
	FlagRawUmask Flags = 1 << iota
)

// UmaskFlags qualify a unit mask.
type UmaskFlags uint32

const (
	UmaskDefault UmaskFlags = 1 << iota // applied when no unit mask is given
	UmaskNoMods                         // event cannot take OS-level modifiers
	UmaskNCombo                         // cannot be combined with other unit masks
)

// EventFlags qualify an event.
type EventFlags uint32

const (
	EventPrecise EventFlags = 1 << iota // supports precise sampling
)

type Umask struct {
	Name  string
	Desc  string
	Code  uint64
	Flags UmaskFlags
}

type Event struct {
	Name    string
	Desc    string
	Code    uint64
	Umasks  []Umask
	ModMask uint64 // PMU modifiers accepted, by index; zero accepts all
	Flags   EventFlags
}

// AcceptsMod reports whether the PMU modifier at idx may be used with ev.
func (ev *Event) AcceptsMod(idx int) bool {
	return ev.ModMask == 0 || ev.ModMask&(1<<uint(idx)) != 0
}

// PMU describes one kind of performance monitoring unit.
type PMU struct {
	Name string
	Desc string
	// PerfName is the kernel's name for the PMU, or a comma separated list of
	// candidates in priority order. Empty means the raw type.
	PerfName     string
	ID           int
	Type         Type
	SupportedPLM int
	Flags        Flags
	Mods         []attrs.Desc
	Events       []Event
	Driver       Driver
}

// EventIndex returns the index of the event called name, or -1.
func (p *PMU) EventIndex(name string) int {
	for i := range p.Events {
		if strings.EqualFold(p.Events[i].Name, name) {
			return i
		}
	}
	return -1
}

// GlobalIndex combines the PMU id and an event index into a single value
// unique across all registered PMUs.
func (p *PMU) GlobalIndex(event int) int {
	return p.ID<<21 | event
}

// SplitGlobalIndex is the inverse of GlobalIndex.
func SplitGlobalIndex(idx int) (id, event int) {
	return idx >> 21, idx & (1<<21 - 1)
}
