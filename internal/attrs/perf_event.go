package attrs

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Indices of the perf_event modifiers. Both namespaces share them; the
// minimal one pads the slots it does not expose.
const (
	PerfAttrU = iota
	PerfAttrK
	PerfAttrH
	PerfAttrPeriod
	PerfAttrFreq
	PerfAttrPrecise
	PerfAttrExcl
	PerfAttrMG
	PerfAttrMH
	PerfAttrCPU
	PerfAttrPinned
	PerfAttrHWS
)

var (
	modU       = Desc{Name: "u", Desc: "monitor at user level", Type: TypeBool}
	modK       = Desc{Name: "k", Desc: "monitor at kernel level", Type: TypeBool}
	modH       = Desc{Name: "h", Desc: "monitor at hypervisor level", Type: TypeBool}
	modPeriod  = Desc{Name: "period", Desc: "sampling period", Type: TypeInt}
	modFreq    = Desc{Name: "freq", Desc: "sampling frequency (Hz)", Type: TypeInt}
	modPrecise = Desc{Name: "precise", Desc: "precise event sampling", Type: TypeInt}
	modExcl    = Desc{Name: "excl", Desc: "exclusive access", Type: TypeBool}
	modMG      = Desc{Name: "mg", Desc: "monitor guest execution", Type: TypeBool}
	modMH      = Desc{Name: "mh", Desc: "monitor host execution", Type: TypeBool}
	modCPU     = Desc{Name: "cpu", Desc: "CPU to program", Type: TypeInt}
	modPinned  = Desc{Name: "pinned", Desc: "pin event to counters", Type: TypeBool}
	modHWS     = Desc{Name: "hw_smpl", Desc: "enable hardware sampling", Type: TypeBool}
)

// PerfEvent is the minimal perf_event vocabulary: privilege levels and
// guest/host scope.
var PerfEvent = Namespace{
	Name: "perf_event",
	Mods: []Desc{
		PerfAttrU: modU,
		PerfAttrK: modK,
		PerfAttrH: modH,
		{}, {}, {}, {},
		PerfAttrMG: modMG,
		PerfAttrMH: modMH,
	},
}

// PerfEventExt adds sampling, exclusivity, cpu and pinning controls.
var PerfEventExt = Namespace{
	Name: "perf_event_ext",
	Mods: []Desc{
		PerfAttrU:       modU,
		PerfAttrK:       modK,
		PerfAttrH:       modH,
		PerfAttrPeriod:  modPeriod,
		PerfAttrFreq:    modFreq,
		PerfAttrPrecise: modPrecise,
		PerfAttrExcl:    modExcl,
		PerfAttrMG:      modMG,
		PerfAttrMH:      modMH,
		PerfAttrCPU:     modCPU,
		PerfAttrPinned:  modPinned,
		PerfAttrHWS:     modHWS,
	},
}
