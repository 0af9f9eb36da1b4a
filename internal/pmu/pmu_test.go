package pmu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfenc/internal/attrs"
	"perfenc/internal/pfmerr"
)

type stubDriver struct{}

func (stubDriver) Encode(e *EventDesc) error {
	e.Codes = []uint64{e.Entry().Code}
	e.Fstr = e.Entry().Name
	return nil
}

// hidesHypervisor filters the h attribute out of every event.
type hidesHypervisor struct{ stubDriver }

func (hidesHypervisor) PerfAttrExposed(e *EventDesc, idx int) bool {
	return idx != attrs.PerfAttrH
}

var stubMods = []attrs.Desc{
	{Name: "e", Desc: "edge", Type: attrs.TypeBool},
	{},
	{Name: "c", Desc: "counter mask", Type: attrs.TypeInt},
}

func testPMUs() []*PMU {
	return []*PMU{
		{
			Name:         "core",
			ID:           1,
			Type:         TypeCore,
			SupportedPLM: PLM0 | PLM3,
			Flags:        FlagRawUmask,
			Mods:         stubMods,
			Events: []Event{
				{Name: "cycles", Code: 0x3c},
				{
					Name: "LOADS",
					Code: 0xd1,
					Umasks: []Umask{
						{Name: "HIT", Code: 1, Flags: UmaskDefault},
						{Name: "MISS", Code: 2},
					},
					ModMask: 1 << 2,
				},
			},
			Driver: hidesHypervisor{},
		},
		{
			Name:   "unc",
			ID:     2,
			Type:   TypeUncore,
			Events: []Event{{Name: "ticks"}, {Name: "cycles", Code: 0xff}},
			Driver: stubDriver{},
		},
	}
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(testPMUs()...)
	require.NoError(t, err)
	return reg
}

func TestParseEventLookup(t *testing.T) {
	reg := testRegistry(t)
	tests := []struct {
		str   string
		pmu   string
		event string
		err   error
	}{
		{"cycles", "core", "cycles", nil},
		{"unc::cycles", "unc", "cycles", nil},
		{"UNC::CYCLES", "unc", "cycles", nil},
		{"ticks", "unc", "ticks", nil},
		{"core::ticks", "", "", pfmerr.ErrNotFound},
		{"nope::cycles", "", "", pfmerr.ErrNotFound},
		{"nosuch", "", "", pfmerr.ErrNotFound},
		{"::cycles", "", "", pfmerr.ErrInvalid},
		{"core::", "", "", pfmerr.ErrInvalid},
		{"cycles:", "", "", pfmerr.ErrInvalid},
		{"cycles:e=", "", "", pfmerr.ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			e, err := reg.Parse(tt.str, nil, PLM3)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pmu, e.PMU.Name)
			assert.Equal(t, tt.event, e.Entry().Name)
			assert.Equal(t, PLM3, e.DflPLM)
		})
	}
}

func TestParseAttributes(t *testing.T) {
	reg := testRegistry(t)
	tests := []struct {
		name     string
		str      string
		os       *attrs.Namespace
		expected map[string]uint64
		err      error
	}{
		{"unit mask", "core::LOADS:MISS", nil, map[string]uint64{"MISS": 1}, nil},
		{"unit mask is case insensitive", "core::loads:miss", nil, map[string]uint64{"MISS": 1}, nil},
		{"unit mask with value", "core::LOADS:MISS=1", nil, nil, pfmerr.ErrAttrValue},
		{"int modifier", "core::LOADS:c=0x10", nil, map[string]uint64{"c": 16}, nil},
		{"modifier not accepted by event", "core::LOADS:e", nil, nil, pfmerr.ErrAttr},
		{"bool without value", "core::cycles:e", nil, map[string]uint64{"e": 1}, nil},
		{"bool spelled out", "core::cycles:e=no", nil, map[string]uint64{"e": 0}, nil},
		{"bad bool", "core::cycles:e=2", nil, nil, pfmerr.ErrAttrValue},
		{"int without value", "core::cycles:c", nil, nil, pfmerr.ErrAttrValue},
		{"bad int", "core::cycles:c=ten", nil, nil, pfmerr.ErrAttrValue},
		{"raw unit mask", "core::LOADS:0x41", nil, map[string]uint64{"raw_umask": 0x41}, nil},
		{"raw unit mask needs flag", "unc::ticks:0x41", nil, nil, pfmerr.ErrAttr},
		{"duplicate", "core::cycles:e:e=0", nil, nil, pfmerr.ErrAttrSet},
		{"duplicate is attr value", "core::cycles:c=1:C=2", nil, nil, pfmerr.ErrAttrValue},
		{"os attribute", "core::cycles:u:k=0", &attrs.PerfEvent, map[string]uint64{"u": 1, "k": 0}, nil},
		{"os attribute without namespace", "core::cycles:u", nil, nil, pfmerr.ErrAttr},
		{"filtered os attribute", "core::cycles:h", &attrs.PerfEvent, nil, pfmerr.ErrAttr},
		{"unfiltered os attribute", "unc::ticks:h", &attrs.PerfEvent, map[string]uint64{"h": 1}, nil},
		{"ext attribute on minimal layer", "core::cycles:period=10", &attrs.PerfEvent, nil, pfmerr.ErrAttr},
		{"ext attribute", "core::cycles:period=10", &attrs.PerfEventExt, map[string]uint64{"period": 10}, nil},
		{"too many attributes", "core::cycles" + strings.Repeat(":e", MaxEventAttrs+1), nil, nil, pfmerr.ErrTooMany},
		{"attribute limit reached", "core::cycles" + strings.Repeat(":e", MaxEventAttrs), nil, nil, pfmerr.ErrAttrSet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := reg.Parse(tt.str, tt.os, PLM3)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			got := make(map[string]uint64)
			for i, av := range e.Attrs {
				got[e.Attr(i).Name] = av.Value
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPattrsOrder(t *testing.T) {
	reg := testRegistry(t)
	e, err := reg.Parse("core::LOADS", &attrs.PerfEvent, PLM3)
	require.NoError(t, err)
	var names []string
	for _, a := range e.Pattrs {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"HIT", "MISS", "c", "raw_umask", "u", "k", "mg", "mh"}, names)
	assert.True(t, e.Pattrs[0].IsDefault)
	assert.Equal(t, attrs.CtrlPerfEvent, e.Pattrs[4].Ctrl)
	assert.True(t, e.PerfAttrExposed(attrs.PerfAttrMG))
	assert.False(t, e.PerfAttrExposed(attrs.PerfAttrH))
}

func TestEventDescHelpers(t *testing.T) {
	reg := testRegistry(t)
	e, err := reg.Parse("core::LOADS:c=3", &attrs.PerfEvent, PLM3)
	require.NoError(t, err)
	assert.Empty(t, e.Umasks())

	e.AddUmask(1) // MISS
	assert.Equal(t, []int{1}, e.Umasks())
	_, ok := e.RawUmask()
	assert.False(t, ok)

	v, ok := e.Value(attrs.CtrlPMU, 2)
	assert.True(t, ok)
	assert.EqualValues(t, 3, v)
	_, ok = e.Value(attrs.CtrlPerfEvent, attrs.PerfAttrU)
	assert.False(t, ok)

	require.NoError(t, e.PMU.Driver.Encode(e))
	assert.Equal(t, "core::LOADS", e.FullName())

	e, err = reg.Parse("core::LOADS:0x7", nil, PLM3)
	require.NoError(t, err)
	raw, ok := e.RawUmask()
	assert.True(t, ok)
	assert.EqualValues(t, 7, raw)
}

func TestNewRegistryValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(pmus []*PMU)
	}{
		{"no driver", func(p []*PMU) { p[0].Driver = nil }},
		{"no events", func(p []*PMU) { p[1].Events = nil }},
		{"duplicate name", func(p []*PMU) { p[1].Name = "CORE" }},
		{"duplicate id", func(p []*PMU) { p[1].ID = 1 }},
		{"unknown privilege level", func(p []*PMU) { p[0].SupportedPLM = 0x40 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pmus := testPMUs()
			tt.mutate(pmus)
			_, err := NewRegistry(pmus...)
			assert.ErrorIs(t, err, pfmerr.ErrInvalid)
		})
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := testRegistry(t)

	p, ok := reg.Lookup("Core")
	require.True(t, ok)
	assert.Equal(t, 1, p.ID)
	_, ok = reg.Lookup("cor")
	assert.False(t, ok)

	p, ok = reg.ByID(2)
	require.True(t, ok)
	assert.Equal(t, "unc", p.Name)
	_, ok = reg.ByID(3)
	assert.False(t, ok)

	pmus := reg.PMUs()
	pmus[0] = nil
	assert.NotNil(t, reg.PMUs()[0], "PMUs returns a copy")
}

func TestRegistrySubset(t *testing.T) {
	reg := testRegistry(t)

	sub, err := reg.Subset([]string{"unc", "core"})
	require.NoError(t, err)
	require.Len(t, sub.PMUs(), 2)
	assert.Equal(t, "core", sub.PMUs()[0].Name, "priority order kept")

	sub, err = reg.Subset([]string{"UNC"})
	require.NoError(t, err)
	e, err := sub.Parse("cycles", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "unc", e.PMU.Name)

	_, err = reg.Subset([]string{"zz", "core", "aa"})
	require.ErrorIs(t, err, pfmerr.ErrNotFound)
	assert.Contains(t, err.Error(), "aa, zz")
}

func TestGlobalIndex(t *testing.T) {
	p := &PMU{ID: 9}
	id, ev := SplitGlobalIndex(p.GlobalIndex(1234))
	assert.Equal(t, 9, id)
	assert.Equal(t, 1234, ev)
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "core", TypeCore.String())
	assert.Equal(t, "uncore", TypeUncore.String())
	assert.Equal(t, "unknown", Type(7).String())
}
