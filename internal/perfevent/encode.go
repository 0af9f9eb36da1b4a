package perfevent

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/sys/unix"

	"perfenc/internal/abi"
	"perfenc/internal/attrs"
	"perfenc/internal/pfmerr"
	"perfenc/internal/pmu"
)

// osState is what the OS-level attributes of one event resolved to.
type osState struct {
	plm       int
	vmx       int
	cpu       int
	hasCPU    bool
	pinned    bool
	hasPinned bool
	noMods    bool
}

func (enc *Encoder) encodePerf(str string, dflPLM int, os OS, uarg *EncodeArg) error {
	sz, err := EncodeArgABI.Negotiate(uarg.Size)
	if err != nil {
		return err
	}
	arg := copyArgIn(uarg, sz)
	if arg.Attr == nil {
		return fmt.Errorf("nil perf_event_attr: %w", pfmerr.ErrInvalid)
	}

	// stage the caller's attr in a full size, zeroed copy
	origSize := arg.Attr.Size
	asz, err := abi.PerfAttr.Negotiate(origSize)
	if err != nil {
		return err
	}
	var attr unix.PerfEventAttr
	abi.CopyAttr(&attr, arg.Attr, asz)
	attr.Size = abi.PerfAttrSize
	if asz != abi.PerfAttrSize {
		rev, _ := abi.PerfAttr.Revision(asz)
		slog.Debug("perf_event_attr size mismatch", slog.Uint64("caller", uint64(asz)), slog.String("revision", rev.Name), slog.Uint64("current", uint64(abi.PerfAttrSize)))
	}

	e, err := enc.reg.Parse(str, os.Namespace(), dflPLM)
	if err != nil {
		return err
	}
	pe, ok := e.PMU.Driver.(pmu.PerfEncoder)
	if !ok {
		return fmt.Errorf("PMU %s has no %s encoder: %w", e.PMU.Name, os, pfmerr.ErrNotSupported)
	}
	if err := e.PMU.Driver.Encode(e); err != nil {
		return err
	}
	types := resolver{types: enc.types, strict: arg.Flags&FlagStrictPMUType != 0}
	if err := pe.EncodePerf(e, &attr, types); err != nil {
		return err
	}
	st, err := applyOSAttrs(e, &attr)
	if err != nil {
		return err
	}
	fstr := e.FullName()
	if !st.noMods {
		fstr += renderOSAttrs(e, &attr, st)
	}
	slog.Debug("perf encoding",
		slog.String("event", str),
		slog.Uint64("type", uint64(attr.Type)),
		slog.String("config", fmt.Sprintf("0x%x", attr.Config)),
		slog.Bool("exclude_user", attr.Bits&unix.PerfBitExcludeUser != 0),
		slog.Bool("exclude_kernel", attr.Bits&unix.PerfBitExcludeKernel != 0),
		slog.Bool("exclude_guest", attr.Bits&unix.PerfBitExcludeGuest != 0),
		slog.Bool("exclude_host", attr.Bits&unix.PerfBitExcludeHost != 0),
		slog.Uint64("sample", attr.Sample),
		slog.Bool("freq", attr.Bits&unix.PerfBitFreq != 0))

	// everything succeeded, publish
	abi.CopyAttr(arg.Attr, &attr, asz)
	arg.Attr.Size = origSize
	arg.Idx = e.Event
	arg.CPU = -1
	if st.hasCPU {
		arg.CPU = st.cpu
	}
	arg.PMU = e.PMU.ID
	if arg.Fstr != nil {
		*arg.Fstr = fstr
	}
	copyArgOut(uarg, &arg, sz)
	return nil
}

// copyArgIn returns the fields of a that lie within sz bytes; the rest are zero.
func copyArgIn(a *EncodeArg, sz uint32) EncodeArg {
	out := EncodeArg{
		Attr:  a.Attr,
		Fstr:  a.Fstr,
		Size:  a.Size,
		Idx:   a.Idx,
		CPU:   a.CPU,
		Flags: a.Flags,
	}
	if sz >= sizeEncodeArg1 {
		out.PMU = a.PMU
	}
	return out
}

// copyArgOut writes back the output fields the caller declared.
func copyArgOut(dst, src *EncodeArg, sz uint32) {
	dst.Idx = src.Idx
	dst.CPU = src.CPU
	if sz >= sizeEncodeArg1 {
		dst.PMU = src.PMU
	}
}

// resolver applies the fallback policy on top of the PMU type cache.
type resolver struct {
	types  pmu.TypeResolver
	strict bool
}

func (r resolver) Resolve(perfName string) (uint32, error) {
	if r.types == nil {
		if r.strict && perfName != "" {
			return 0, fmt.Errorf("PMU %q: no type registry: %w", perfName, pfmerr.ErrNotFound)
		}
		return unix.PERF_TYPE_RAW, nil
	}
	typ, err := r.types.Resolve(perfName)
	if err == nil {
		return typ, nil
	}
	if r.strict {
		return 0, err
	}
	slog.Warn("PMU type not resolved, using raw type", slog.String("pmu", perfName), slog.String("error", err.Error()))
	return unix.PERF_TYPE_RAW, nil
}

// noMods reports whether any selected unit mask forbids OS-level
// modifiers. A single such unit mask puts the whole event in that mode.
func noMods(e *pmu.EventDesc) bool {
	umasks, restricted := 0, 0
	for i := range e.Attrs {
		a := e.Attr(i)
		if a.Ctrl != attrs.CtrlPMU || a.Type != attrs.TypeUmask {
			continue
		}
		umasks++
		if a.NoMods {
			restricted++
		}
	}
	if restricted > 0 && restricted != umasks {
		slog.Debug("unit masks with and without modifier support, forcing no modifiers", slog.String("event", e.FullName()))
	}
	return restricted > 0
}

// applyOSAttrs folds the selected perf_event attributes into attr.
func applyOSAttrs(e *pmu.EventDesc, attr *unix.PerfEventAttr) (osState, error) {
	st := osState{noMods: noMods(e)}
	hasPLM, hasVMX := false, false
	for i, av := range e.Attrs {
		a := e.Attr(i)
		if a.Ctrl != attrs.CtrlPerfEvent {
			continue
		}
		v := av.Value
		if st.noMods && v != 0 && a.Idx != attrs.PerfAttrPinned {
			return st, fmt.Errorf("%s: %s=%d not allowed with this unit mask: %w", e.FullName(), a.Name, v, pfmerr.ErrAttrValue)
		}
		switch a.Idx {
		case attrs.PerfAttrU:
			if v != 0 {
				st.plm |= pmu.PLM3
			}
			hasPLM = true
		case attrs.PerfAttrK:
			if v != 0 {
				st.plm |= pmu.PLM0
			}
			hasPLM = true
		case attrs.PerfAttrH:
			if v != 0 {
				st.plm |= pmu.PLMH
			}
			hasPLM = true
		case attrs.PerfAttrPeriod:
			if v == 0 || attr.Bits&unix.PerfBitFreq != 0 {
				return st, fmt.Errorf("%s: period=%d: %w", e.FullName(), v, pfmerr.ErrAttrValue)
			}
			attr.Sample = v
		case attrs.PerfAttrFreq:
			if v == 0 || attr.Sample != 0 {
				return st, fmt.Errorf("%s: freq=%d: %w", e.FullName(), v, pfmerr.ErrAttrValue)
			}
			attr.Sample = v
			attr.Bits |= unix.PerfBitFreq
		case attrs.PerfAttrPrecise:
			if v > 3 {
				return st, fmt.Errorf("%s: precise=%d out of range [0-3]: %w", e.FullName(), v, pfmerr.ErrAttrValue)
			}
			setPrecise(attr, v)
		case attrs.PerfAttrExcl:
			if v != 0 {
				attr.Bits |= unix.PerfBitExclusive
			}
		case attrs.PerfAttrMG:
			if v != 0 {
				st.vmx |= pmu.PLM3
			}
			hasVMX = true
		case attrs.PerfAttrMH:
			if v != 0 {
				st.vmx |= pmu.PLM0
			}
			hasVMX = true
		case attrs.PerfAttrCPU:
			if v >= math.MaxInt32 {
				return st, fmt.Errorf("%s: cpu=%d: %w", e.FullName(), v, pfmerr.ErrAttrValue)
			}
			st.cpu, st.hasCPU = int(v), true
		case attrs.PerfAttrPinned:
			st.pinned, st.hasPinned = v != 0, true
		case attrs.PerfAttrHWS:
			switch {
			case v == 0:
				setPrecise(attr, 0)
			case precise(attr) == 0:
				setPrecise(attr, 1)
			}
		}
	}
	if !hasPLM {
		st.plm = e.DflPLM
	}
	// guest execution is excluded unless asked for
	if !hasVMX {
		st.vmx = pmu.PLM0
	}
	// levels the PMU cannot filter are never excluded
	unsupported := ^e.PMU.SupportedPLM & pmu.PLMAll
	st.plm |= unsupported
	st.vmx |= unsupported

	setBit(attr, unix.PerfBitExcludeUser, st.plm&pmu.PLM3 == 0)
	setBit(attr, unix.PerfBitExcludeKernel, st.plm&pmu.PLM0 == 0)
	setBit(attr, unix.PerfBitExcludeHv, st.plm&pmu.PLMH == 0)
	setBit(attr, unix.PerfBitExcludeGuest, st.vmx&pmu.PLM3 == 0)
	setBit(attr, unix.PerfBitExcludeHost, st.vmx&pmu.PLM0 == 0)
	setBit(attr, unix.PerfBitPinned, st.pinned)
	return st, nil
}

// renderOSAttrs returns the perf_event part of the canonical string: every
// exposed attribute in table order with its effective value.
func renderOSAttrs(e *pmu.EventDesc, attr *unix.PerfEventAttr, st osState) string {
	var b strings.Builder
	freq := attr.Bits&unix.PerfBitFreq != 0
	for _, a := range e.Pattrs {
		if a.Ctrl != attrs.CtrlPerfEvent {
			continue
		}
		var v uint64
		switch a.Idx {
		case attrs.PerfAttrU:
			v = flag(st.plm&pmu.PLM3 != 0)
		case attrs.PerfAttrK:
			v = flag(st.plm&pmu.PLM0 != 0)
		case attrs.PerfAttrH:
			v = flag(st.plm&pmu.PLMH != 0)
		case attrs.PerfAttrPeriod:
			if freq || attr.Sample == 0 {
				continue
			}
			v = attr.Sample
		case attrs.PerfAttrFreq:
			if !freq || attr.Sample == 0 {
				continue
			}
			v = attr.Sample
		case attrs.PerfAttrPrecise:
			v = precise(attr)
		case attrs.PerfAttrHWS:
			v = flag(precise(attr) != 0)
		case attrs.PerfAttrExcl:
			v = flag(attr.Bits&unix.PerfBitExclusive != 0)
		case attrs.PerfAttrMG:
			v = flag(attr.Bits&unix.PerfBitExcludeGuest == 0)
		case attrs.PerfAttrMH:
			v = flag(attr.Bits&unix.PerfBitExcludeHost == 0)
		case attrs.PerfAttrCPU:
			if !st.hasCPU {
				continue
			}
			v = uint64(st.cpu)
		case attrs.PerfAttrPinned:
			if !st.hasPinned {
				continue
			}
			v = flag(st.pinned)
		default:
			continue
		}
		fmt.Fprintf(&b, ":%s=%d", a.Name, v)
	}
	return b.String()
}

func setBit(attr *unix.PerfEventAttr, bit uint64, on bool) {
	if on {
		attr.Bits |= bit
	} else {
		attr.Bits &^= bit
	}
}

// precise_ip is a two bit field
func setPrecise(attr *unix.PerfEventAttr, v uint64) {
	setBit(attr, unix.PerfBitPreciseIPBit1, v&1 != 0)
	setBit(attr, unix.PerfBitPreciseIPBit2, v&2 != 0)
}

func precise(attr *unix.PerfEventAttr) uint64 {
	var v uint64
	if attr.Bits&unix.PerfBitPreciseIPBit1 != 0 {
		v |= 1
	}
	if attr.Bits&unix.PerfBitPreciseIPBit2 != 0 {
		v |= 2
	}
	return v
}

func flag(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
