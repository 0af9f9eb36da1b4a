/*
Package perfevent encodes symbolic events into perf_event_attr requests.

The driver of the PMU owning the event produces the raw codes; this package
overlays the OS-level attributes (privilege levels, sampling, exclusivity,
guest/host scope) and exchanges results with callers through versioned
argument structures.
*/
package perfevent

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"

	"perfenc/internal/abi"
	"perfenc/internal/attrs"
	"perfenc/internal/pfmerr"
	"perfenc/internal/pmu"
)

// OS selects the layer an event is encoded for.
type OS int

const (
	OSNone         OS = iota // raw PMU codes
	OSPerfEvent              // perf_event, privilege levels and guest/host only
	OSPerfEventExt           // perf_event with sampling and placement controls
)

var osNames = []string{"none", "perf", "perf_ext"}

func (o OS) String() string {
	if o < 0 || int(o) >= len(osNames) {
		return fmt.Sprintf("os(%d)", int(o))
	}
	return osNames[o]
}

// ParseOS is the inverse of String.
func ParseOS(s string) (OS, error) {
	for i, n := range osNames {
		if strings.EqualFold(n, s) {
			return OS(i), nil
		}
	}
	return OSNone, fmt.Errorf("unknown OS layer %q: %w", s, pfmerr.ErrInvalid)
}

// Namespace returns the attribute vocabulary of the layer, nil for OSNone.
func (o OS) Namespace() *attrs.Namespace {
	switch o {
	case OSPerfEvent:
		return &attrs.PerfEvent
	case OSPerfEventExt:
		return &attrs.PerfEventExt
	}
	return nil
}

// FlagStrictPMUType makes an unresolvable PMU type an error instead of a
// fallback to PERF_TYPE_RAW.
const FlagStrictPMUType uint32 = 1 << 0

// EncodeArg is the argument of perf_event encodings. Size records the
// layout the caller was built with: fields are only appended, and fields
// past Size are neither read nor written.
type EncodeArg struct {
	Attr  *unix.PerfEventAttr // in/out, Attr.Size selects its own layout
	Fstr  *string             // out, canonical string, optional
	Size  uint32
	Idx   int // out, event index within its PMU
	CPU   int // out, cpu requested by the event string, -1 if none
	Flags uint32

	// added in ABI1
	PMU int // out, id of the PMU owning the event
}

// RawEncodeArg is the argument of raw (OSNone) encodings.
type RawEncodeArg struct {
	Codes []uint64 // out, allocated when nil
	Count int      // out, number of valid codes
	Fstr  *string  // out, canonical string, optional
	Size  uint32
	Idx   int // out
}

var (
	sizeEncodeArg0 = uint32(unsafe.Offsetof(EncodeArg{}.PMU))
	sizeEncodeArg1 = uint32(unsafe.Sizeof(EncodeArg{}))
	sizeRawArg0    = uint32(unsafe.Sizeof(RawEncodeArg{}))

	// EncodeArgABI lists the revisions of EncodeArg.
	EncodeArgABI = abi.Table{
		Name:      "perf encode arg",
		Revisions: []abi.Revision{{Name: "ABI0", Size: sizeEncodeArg0}, {Name: "ABI1", Size: sizeEncodeArg1}},
	}
	// RawEncodeArgABI lists the revisions of RawEncodeArg.
	RawEncodeArgABI = abi.Table{
		Name:      "raw encode arg",
		Revisions: []abi.Revision{{Name: "ABI0", Size: sizeRawArg0}},
	}
)

// Encoder resolves event strings against a PMU registry. It holds no
// per-call state and is safe for concurrent use.
type Encoder struct {
	reg   *pmu.Registry
	types pmu.TypeResolver
}

// New returns an encoder. types may be nil, in which case every PMU
// resolves to PERF_TYPE_RAW.
func New(reg *pmu.Registry, types pmu.TypeResolver) *Encoder {
	return &Encoder{reg: reg, types: types}
}

// Registry returns the PMUs the encoder resolves against.
func (enc *Encoder) Registry() *pmu.Registry {
	return enc.reg
}

// GetOSEventEncoding encodes str for the given layer. arg is a
// *RawEncodeArg for OSNone and an *EncodeArg otherwise. dflPLM applies when
// str sets no privilege level. On failure arg is left untouched.
func (enc *Encoder) GetOSEventEncoding(str string, dflPLM int, os OS, arg any) error {
	if str == "" {
		return fmt.Errorf("empty event: %w", pfmerr.ErrInvalid)
	}
	if dflPLM&^pmu.PLMAll != 0 {
		return fmt.Errorf("default privilege mask 0x%x: %w", dflPLM, pfmerr.ErrInvalid)
	}
	switch os {
	case OSNone:
		a, ok := arg.(*RawEncodeArg)
		if !ok || a == nil {
			return fmt.Errorf("%s layer needs a *RawEncodeArg: %w", os, pfmerr.ErrInvalid)
		}
		return enc.encodeRaw(str, dflPLM, a)
	case OSPerfEvent, OSPerfEventExt:
		a, ok := arg.(*EncodeArg)
		if !ok || a == nil {
			return fmt.Errorf("%s layer needs an *EncodeArg: %w", os, pfmerr.ErrInvalid)
		}
		return enc.encodePerf(str, dflPLM, os, a)
	}
	return fmt.Errorf("OS layer %s: %w", os, pfmerr.ErrNotSupported)
}

// GetPerfEventEncoding is the fixed-layer form of GetOSEventEncoding using
// OSPerfEventExt. fstr and idx may be nil.
func (enc *Encoder) GetPerfEventEncoding(str string, dflPLM int, attr *unix.PerfEventAttr, fstr *string, idx *int) error {
	if attr == nil {
		return fmt.Errorf("nil perf_event_attr: %w", pfmerr.ErrInvalid)
	}
	arg := EncodeArg{
		Attr: attr,
		Fstr: fstr,
		Size: sizeEncodeArg1,
	}
	if err := enc.GetOSEventEncoding(str, dflPLM, OSPerfEventExt, &arg); err != nil {
		return err
	}
	if idx != nil {
		*idx = arg.Idx
	}
	return nil
}

// EventInfo parses str and returns its descriptor, with the attributes it
// accepts on the given layer. No encoding is performed.
func (enc *Encoder) EventInfo(str string, os OS) (*pmu.EventDesc, error) {
	return enc.reg.Parse(str, os.Namespace(), 0)
}

func (enc *Encoder) encodeRaw(str string, dflPLM int, uarg *RawEncodeArg) error {
	if _, err := RawEncodeArgABI.Negotiate(uarg.Size); err != nil {
		return err
	}
	e, err := enc.reg.Parse(str, nil, dflPLM)
	if err != nil {
		return err
	}
	if err := e.PMU.Driver.Encode(e); err != nil {
		return err
	}
	if len(e.Codes) == 0 {
		return fmt.Errorf("%s: driver returned no codes: %w", e.PMU.Name, pfmerr.ErrFailure)
	}
	if uarg.Codes != nil && len(uarg.Codes) < len(e.Codes) {
		return fmt.Errorf("%d codes needed, %d provided: %w", len(e.Codes), len(uarg.Codes), pfmerr.ErrTooSmall)
	}
	if uarg.Codes == nil {
		uarg.Codes = make([]uint64, len(e.Codes))
	}
	copy(uarg.Codes, e.Codes)
	uarg.Count = len(e.Codes)
	uarg.Idx = e.Event
	if uarg.Fstr != nil {
		*uarg.Fstr = e.FullName()
	}
	slog.Debug("raw encoding", slog.String("event", e.FullName()), slog.Any("codes", e.Codes))
	return nil
}
