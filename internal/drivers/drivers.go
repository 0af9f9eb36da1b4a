/*
Package drivers provides the built-in PMU descriptions and their encoders.
*/
package drivers

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"

	"perfenc/internal/pmu"
)

// PMU ids. They are stable and appear in encoded results.
const (
	IDX86Arch = iota + 1
	IDAdlGLC
	IDAdlGRT
	IDIntelMSR
	IDAMD64MSR
	IDIcxUncPCU
	IDSkxUncM2M0
	IDSkxUncM2M1
	IDKunpeng // first of the Kunpeng uncore instances
)

// kunpengUnit is one kind of Kunpeng uncore and the sccl and unit numbers
// of its instances.
type kunpengUnit struct {
	kind   string
	desc   string
	events []pmu.Event
	units  [][2]int
}

// instances get consecutive ids from IDKunpeng in this order
var kunpengUnits = []kunpengUnit{
	{kind: "ddrc", desc: "DDRC", events: ddrcEvents, units: [][2]int{
		{1, 0}, {1, 1}, {1, 2}, {1, 3}, {3, 0}, {3, 1}, {3, 2}, {3, 3},
		{5, 0}, {5, 1}, {5, 2}, {5, 3}, {7, 0}, {7, 1}, {7, 2}, {7, 3},
	}},
	{kind: "hha", desc: "HHA", events: hhaEvents, units: [][2]int{
		{1, 2}, {1, 3}, {3, 0}, {3, 1}, {5, 6}, {5, 7}, {7, 4}, {7, 5},
	}},
	{kind: "l3c", desc: "L3C", events: l3cEvents, units: [][2]int{
		{1, 10}, {1, 11}, {1, 12}, {1, 13}, {1, 14}, {1, 15}, {1, 8}, {1, 9},
		{3, 0}, {3, 1}, {3, 2}, {3, 3}, {3, 4}, {3, 5}, {3, 6}, {3, 7},
		{5, 24}, {5, 25}, {5, 26}, {5, 27}, {5, 28}, {5, 29}, {5, 30}, {5, 31},
		{7, 16}, {7, 17}, {7, 18}, {7, 19}, {7, 20}, {7, 21}, {7, 22}, {7, 23},
	}},
}

// PMUs returns fresh descriptions of every built-in PMU, in lookup priority
// order.
func PMUs() []*pmu.PMU {
	pmus := []*pmu.PMU{
		{
			Name:         "cpu",
			Desc:         "Intel X86 architectural PMU",
			ID:           IDX86Arch,
			Type:         pmu.TypeCore,
			SupportedPLM: x86PLM,
			Mods:         x86Mods,
			Events:       archEvents,
			Driver:       x86Core{perfCodes{sampling: true}},
		},
		{
			Name:         "adl_glc",
			Desc:         "Intel AlderLake GoldenCove (P-Core)",
			PerfName:     "cpu_core,cpu",
			ID:           IDAdlGLC,
			Type:         pmu.TypeCore,
			SupportedPLM: x86PLM,
			Flags:        pmu.FlagRawUmask,
			Mods:         x86Mods,
			Events:       glcEvents,
			Driver:       x86Core{perfCodes{sampling: true}},
		},
		{
			Name:         "adl_grt",
			Desc:         "Intel AlderLake Gracemont (E-Core)",
			PerfName:     "cpu_atom,cpu",
			ID:           IDAdlGRT,
			Type:         pmu.TypeCore,
			SupportedPLM: x86PLM,
			Flags:        pmu.FlagRawUmask,
			Mods:         x86Mods,
			Events:       grtEvents,
			Driver:       x86Core{perfCodes{sampling: true}},
		},
		{
			Name:         "intel_msr",
			Desc:         "Intel MSR",
			PerfName:     "msr",
			ID:           IDIntelMSR,
			Type:         pmu.TypeCore,
			SupportedPLM: pmu.PLM0,
			Events:       msrEvents,
			Driver:       plainCode{},
		},
		{
			Name:         "amd64_msr",
			Desc:         "AMD64 MSR",
			PerfName:     "msr",
			ID:           IDAMD64MSR,
			Type:         pmu.TypeCore,
			SupportedPLM: pmu.PLM0,
			Events:       msrEvents,
			Driver:       plainCode{},
		},
		{
			Name:     "icx_unc_pcu",
			Desc:     "Intel IcelakeX PCU uncore",
			PerfName: "uncore_pcu",
			ID:       IDIcxUncPCU,
			Type:     pmu.TypeUncore,
			Mods:     uncoreMods,
			Events:   icxPCUEvents,
			Driver:   snbepUncore{umaskShift: 0},
		},
	}
	for n, id := range []int{IDSkxUncM2M0, IDSkxUncM2M1} {
		pmus = append(pmus, &pmu.PMU{
			Name:     fmt.Sprintf("skx_unc_m2m%d", n),
			Desc:     fmt.Sprintf("Intel SkylakeX M2M%d uncore", n),
			PerfName: fmt.Sprintf("uncore_m2m_%d", n),
			ID:       id,
			Type:     pmu.TypeUncore,
			Flags:    pmu.FlagRawUmask,
			Mods:     uncoreMods,
			Events:   m2mEvents,
			Driver:   snbepUncore{umaskShift: 8},
		})
	}
	id := IDKunpeng
	for _, ku := range kunpengUnits {
		for _, sc := range ku.units {
			name := fmt.Sprintf("hisi_sccl%d_%s%d", sc[0], ku.kind, sc[1])
			pmus = append(pmus, &pmu.PMU{
				Name:     name,
				Desc:     fmt.Sprintf("Hisilicon Kunpeng SCCL%d %s%d", sc[0], ku.desc, sc[1]),
				PerfName: name,
				ID:       id,
				Type:     pmu.TypeUncore,
				Events:   ku.events,
				Driver:   plainCode{},
			})
			id++
		}
	}
	return pmus
}

// Registry returns a registry of the built-in PMUs.
func Registry() (*pmu.Registry, error) {
	return pmu.NewRegistry(PMUs()...)
}
