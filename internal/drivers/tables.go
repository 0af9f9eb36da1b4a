package drivers

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"perfenc/internal/pmu"
)

const x86PLM = pmu.PLM0 | pmu.PLM1 | pmu.PLM2 | pmu.PLM3

// architectural events, umask folded into the code
var archEvents = []pmu.Event{
	{Name: "cycles", Desc: "Unhalted core cycles", Code: 0x003c, Flags: pmu.EventPrecise},
	{Name: "instructions", Desc: "Instructions retired", Code: 0x00c0, Flags: pmu.EventPrecise},
	{Name: "ref-cycles", Desc: "Unhalted reference cycles", Code: 0x013c},
	{Name: "llc-references", Desc: "Last level cache references", Code: 0x4f2e},
	{Name: "llc-misses", Desc: "Last level cache misses", Code: 0x412e},
	{Name: "branches", Desc: "Branch instructions retired", Code: 0x00c4, Flags: pmu.EventPrecise},
	{Name: "branch-misses", Desc: "Mispredicted branch instructions retired", Code: 0x00c5, Flags: pmu.EventPrecise},
	{
		Name: "TOPDOWN",
		Desc: "Topdown slots",
		Code: 0x00a4,
		Umasks: []pmu.Umask{
			{Name: "SLOTS", Desc: "Issue slots, counted on the fixed counter", Code: 0x04, Flags: pmu.UmaskDefault | pmu.UmaskNoMods},
			{Name: "SLOTS_P", Desc: "Issue slots, counted on a generic counter", Code: 0x01},
			{Name: "BACKEND_BOUND_SLOTS", Desc: "Issue slots where no uop was delivered due to backend stalls", Code: 0x02},
		},
	},
}

var glcEvents = []pmu.Event{
	{
		Name: "INST_RETIRED",
		Desc: "Number of instructions retired",
		Code: 0xc0,
		Umasks: []pmu.Umask{
			{Name: "ANY_P", Desc: "Any instruction retired, generic counter", Code: 0x00, Flags: pmu.UmaskDefault},
			{Name: "PREC_DIST", Desc: "Precise instruction retired with reduced skid", Code: 0x01, Flags: pmu.UmaskNCombo},
		},
		Flags: pmu.EventPrecise,
	},
	{
		Name: "CPU_CLK_UNHALTED",
		Desc: "Core cycles when the thread is not halted",
		Code: 0x3c,
		Umasks: []pmu.Umask{
			{Name: "THREAD_P", Desc: "Thread cycles when thread is not in halt state", Code: 0x00, Flags: pmu.UmaskDefault},
			{Name: "REF_TSC_P", Desc: "Reference cycles at TSC rate", Code: 0x01, Flags: pmu.UmaskNCombo},
		},
	},
	{
		Name: "MEM_LOAD_RETIRED",
		Desc: "Retired load instructions by data source",
		Code: 0xd1,
		Umasks: []pmu.Umask{
			{Name: "L1_HIT", Desc: "Retired load instructions with L1 cache hits as data sources", Code: 0x01},
			{Name: "L2_HIT", Desc: "Retired load instructions with L2 cache hits as data sources", Code: 0x02},
			{Name: "L3_HIT", Desc: "Retired load instructions with L3 cache hits as data sources", Code: 0x04},
			{Name: "L1_MISS", Desc: "Retired load instructions missing the L1 cache", Code: 0x08},
		},
		Flags: pmu.EventPrecise,
	},
	{
		Name: "TOPDOWN",
		Desc: "Topdown slots",
		Code: 0xa4,
		Umasks: []pmu.Umask{
			{Name: "SLOTS", Desc: "Issue slots, counted on the fixed counter", Code: 0x04, Flags: pmu.UmaskDefault | pmu.UmaskNoMods},
			{Name: "SLOTS_P", Desc: "Issue slots, counted on a generic counter", Code: 0x01},
		},
	},
}

var grtEvents = []pmu.Event{
	{
		Name: "INST_RETIRED",
		Desc: "Number of instructions retired",
		Code: 0xc0,
		Umasks: []pmu.Umask{
			{Name: "ANY_P", Desc: "Any instruction retired, generic counter", Code: 0x00, Flags: pmu.UmaskDefault},
		},
		Flags: pmu.EventPrecise,
	},
	{
		Name: "CPU_CLK_UNHALTED",
		Desc: "Core cycles when the core is not halted",
		Code: 0x3c,
		Umasks: []pmu.Umask{
			{Name: "CORE_P", Desc: "Core cycles, generic counter", Code: 0x00, Flags: pmu.UmaskDefault},
			{Name: "REF_TSC_P", Desc: "Reference cycles at TSC rate", Code: 0x01, Flags: pmu.UmaskNCombo},
		},
	},
	{
		Name: "LONGEST_LAT_CACHE",
		Desc: "Last level cache requests",
		Code: 0x2e,
		Umasks: []pmu.Umask{
			{Name: "MISS", Desc: "Last level cache misses", Code: 0x41, Flags: pmu.UmaskNCombo},
			{Name: "REFERENCE", Desc: "Last level cache references", Code: 0x4f, Flags: pmu.UmaskNCombo | pmu.UmaskDefault},
		},
	},
}

var msrEvents = []pmu.Event{
	{Name: "TSC", Desc: "Time Stamp Counter", Code: 0x0},
	{Name: "APERF", Desc: "Actual Performance", Code: 0x1},
	{Name: "MPERF", Desc: "Maximum Performance", Code: 0x2},
	{Name: "PPERF", Desc: "Productive Performance Count", Code: 0x3},
	{Name: "SMI", Desc: "System Management Interrupt", Code: 0x4},
	{Name: "PTSC", Desc: "Performance Time Stamp Counter", Code: 0x5},
}

var icxPCUEvents = []pmu.Event{
	{Name: "UNC_P_CLOCKTICKS", Desc: "Clockticks of the power control unit (PCU)", Code: 0x0000},
	{Name: "UNC_P_CORE_TRANSITION_CYCLES", Desc: "UNC_P_CORE_TRANSITION_CYCLES (experimental)", Code: 0x0060},
	{Name: "UNC_P_DEMOTIONS", Desc: "UNC_P_DEMOTIONS (experimental)", Code: 0x0030},
	{Name: "UNC_P_FIVR_PS_PS0_CYCLES", Desc: "Phase Shed 0 Cycles (experimental)", Code: 0x0075},
	{Name: "UNC_P_FIVR_PS_PS1_CYCLES", Desc: "Phase Shed 1 Cycles (experimental)", Code: 0x0076},
	{Name: "UNC_P_FIVR_PS_PS2_CYCLES", Desc: "Phase Shed 2 Cycles (experimental)", Code: 0x0077},
	{Name: "UNC_P_FIVR_PS_PS3_CYCLES", Desc: "Phase Shed 3 Cycles (experimental)", Code: 0x0078},
	{Name: "UNC_P_FREQ_CLIP_AVX256", Desc: "AVX256 Frequency Clipping (experimental)", Code: 0x0049},
	{Name: "UNC_P_FREQ_CLIP_AVX512", Desc: "AVX512 Frequency Clipping (experimental)", Code: 0x004a},
	{Name: "UNC_P_FREQ_TRANS_CYCLES", Desc: "Cycles spent changing Frequency (experimental)", Code: 0x0074},
	{Name: "UNC_P_PKG_RESIDENCY_C0_CYCLES", Desc: "Package C State Residency - C0 (experimental)", Code: 0x002a},
	{Name: "UNC_P_PKG_RESIDENCY_C6_CYCLES", Desc: "Package C State Residency - C6 (experimental)", Code: 0x002d},
	{
		Name: "UNC_P_POWER_STATE_OCCUPANCY",
		Desc: "Number of cores in C-State",
		Code: 0x0080,
		Umasks: []pmu.Umask{
			{Name: "CORES_C0", Desc: "C0 and C1 (experimental)", Code: 0x4000, Flags: pmu.UmaskNCombo},
			{Name: "CORES_C3", Desc: "C3 (experimental)", Code: 0x8000, Flags: pmu.UmaskNCombo},
			{Name: "CORES_C6", Desc: "C6 and C7 (experimental)", Code: 0xc000, Flags: pmu.UmaskNCombo},
		},
	},
	{Name: "UNC_P_PROCHOT_EXTERNAL_CYCLES", Desc: "External Prochot (experimental)", Code: 0x000a},
	{Name: "UNC_P_VR_HOT_CYCLES", Desc: "VR Hot (experimental)", Code: 0x0042},
}

var m2mEvents = []pmu.Event{
	{Name: "UNC_M2M_CLOCKTICKS", Desc: "Clockticks of the mesh to memory (M2M)", Code: 0x00},
	{
		Name: "UNC_M2M_BYPASS_M2M_EGRESS",
		Desc: "M2M to iMC bypass",
		Code: 0x22,
		Umasks: []pmu.Umask{
			{Name: "NOT_TAKEN", Desc: "Not taken", Code: 0x02},
			{Name: "TAKEN", Desc: "Taken", Code: 0x01},
		},
	},
	{
		Name: "UNC_M2M_IMC_READS",
		Desc: "M2M reads issued to iMC",
		Code: 0x37,
		Umasks: []pmu.Umask{
			{Name: "ALL", Desc: "All, regardless of priority", Code: 0x04, Flags: pmu.UmaskDefault},
			{Name: "NORMAL", Desc: "Normal priority", Code: 0x01},
		},
	},
}

var ddrcEvents = []pmu.Event{
	{Name: "flux_wr", Desc: "DDRC total write operations", Code: 0x00},
	{Name: "flux_rd", Desc: "DDRC total read operations", Code: 0x01},
	{Name: "flux_wcmd", Desc: "DDRC write commands", Code: 0x02},
	{Name: "flux_rcmd", Desc: "DDRC read commands", Code: 0x03},
	{Name: "pre_cmd", Desc: "DDRC precharge commands", Code: 0x04},
	{Name: "act_cmd", Desc: "DDRC active commands", Code: 0x05},
	{Name: "rnk_chg", Desc: "DDRC rank changes", Code: 0x06},
	{Name: "rw_chg", Desc: "DDRC read and write changes", Code: 0x07},
}

var hhaEvents = []pmu.Event{
	{Name: "rx_ops_num", Desc: "HHA requests received", Code: 0x00},
	{Name: "rx_outer", Desc: "HHA requests received from another socket", Code: 0x01},
	{Name: "rx_sccl", Desc: "HHA requests received from another SCCL", Code: 0x02},
	{Name: "rx_ccix", Desc: "HHA requests received from CCIX", Code: 0x03},
	{Name: "rx_wbi", Desc: "HHA write back invalidate requests received", Code: 0x04},
	{Name: "rx_wbip", Desc: "HHA partial write back invalidate requests received", Code: 0x05},
	{Name: "rx_wtistash", Desc: "HHA write stash requests received", Code: 0x11},
	{Name: "rd_ddr_64b", Desc: "HHA 64 byte reads from DDR", Code: 0x1c},
	{Name: "wr_ddr_64b", Desc: "HHA 64 byte writes to DDR", Code: 0x1d},
	{Name: "rd_ddr_128b", Desc: "HHA 128 byte reads from DDR", Code: 0x1e},
	{Name: "wr_ddr_128b", Desc: "HHA 128 byte writes to DDR", Code: 0x1f},
	{Name: "spill_num", Desc: "HHA spill operations", Code: 0x20},
	{Name: "spill_success", Desc: "HHA successful spill operations", Code: 0x21},
}

var l3cEvents = []pmu.Event{
	{Name: "rd_cpipe", Desc: "L3C reads in the core pipeline", Code: 0x00},
	{Name: "wr_cpipe", Desc: "L3C writes in the core pipeline", Code: 0x01},
	{Name: "rd_hit_cpipe", Desc: "L3C read hits in the core pipeline", Code: 0x02},
	{Name: "wr_hit_cpipe", Desc: "L3C write hits in the core pipeline", Code: 0x03},
	{Name: "victim_num", Desc: "L3C victim lines", Code: 0x04},
	{Name: "rd_spipe", Desc: "L3C reads in the snoop pipeline", Code: 0x20},
	{Name: "wr_spipe", Desc: "L3C writes in the snoop pipeline", Code: 0x21},
	{Name: "rd_hit_spipe", Desc: "L3C read hits in the snoop pipeline", Code: 0x22},
	{Name: "wr_hit_spipe", Desc: "L3C write hits in the snoop pipeline", Code: 0x23},
	{Name: "back_invalid", Desc: "L3C back invalidations", Code: 0x29},
	{Name: "retry_cpu", Desc: "L3C retries of core requests", Code: 0x40},
	{Name: "retry_ring", Desc: "L3C retries of ring requests", Code: 0x41},
	{Name: "prefetch_drop", Desc: "L3C dropped prefetches", Code: 0x42},
}
