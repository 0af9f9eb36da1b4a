package config

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfenc/internal/perfevent"
	"perfenc/internal/pfmerr"
	"perfenc/internal/pmu"
	"perfenc/internal/sysfs"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParsePLM(t *testing.T) {
	tests := []struct {
		in       string
		expected int
		err      bool
	}{
		{"", 0, false},
		{"u", pmu.PLM3, false},
		{"u,k", pmu.PLM3 | pmu.PLM0, false},
		{" K , H ", pmu.PLM0 | pmu.PLMH, false},
		{"0,3", pmu.PLM0 | pmu.PLM3, false},
		{"1,2", pmu.PLM1 | pmu.PLM2, false},
		{"0x9", pmu.PLM0 | pmu.PLM3, false},
		{"0x1f", pmu.PLMAll, false},
		{"0x20", 0, true},
		{"user", 0, true},
		{"u,,k", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			plm, err := ParsePLM(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, plm)
		})
	}
}

func TestFormatPLM(t *testing.T) {
	for _, s := range []string{"u", "k", "u,k", "u,k,h", ""} {
		plm, err := ParsePLM(s)
		require.NoError(t, err)
		assert.Equal(t, s, FormatPLM(plm))
	}
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "perfenc.yaml", `
sysfs_dir: /tmp/devices
default_plm: u
os: perf
strict_pmu_type: true
pmus: [cpu, icx_unc_pcu]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/devices", cfg.SysfsDir)
	assert.True(t, cfg.StrictPMUType)
	assert.Equal(t, []string{"cpu", "icx_unc_pcu"}, cfg.PMUs)
	plm, err := cfg.PLM()
	require.NoError(t, err)
	assert.Equal(t, pmu.PLM3, plm)
	layer, err := cfg.Layer()
	require.NoError(t, err)
	assert.Equal(t, perfevent.OSPerfEvent, layer)
}

func TestLoadKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "perfenc.yaml", "strict_pmu_type: true\n"))
	require.NoError(t, err)
	assert.Equal(t, sysfs.DevicesDir, cfg.SysfsDir)
	assert.Equal(t, "u,k", cfg.DefaultPLM)
	assert.Equal(t, "perf_ext", cfg.OS)
	assert.Same(t, sysfs.Default(), cfg.Types())
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]string{
		"unknown key":   "sysfs: /sys\n",
		"bad plm":       "default_plm: everything\n",
		"bad os":        "os: windows\n",
		"not yaml":      "os: [perf\n",
		"wrong type":    "pmus: cpu: x\n",
		"bad plm value": "default_plm: 0x40\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "perfenc.yaml", content))
			assert.Error(t, err)
		})
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEncoder(t *testing.T) {
	cfg := Default()
	cfg.SysfsDir = t.TempDir()
	cfg.PMUs = []string{"icx_unc_pcu"}
	enc, err := cfg.Encoder(cfg.Types())
	require.NoError(t, err)
	require.Len(t, enc.Registry().PMUs(), 1)

	_, err = enc.EventInfo("cpu::cycles", perfevent.OSPerfEvent)
	assert.ErrorIs(t, err, pfmerr.ErrNotFound)
	e, err := enc.EventInfo("UNC_P_CLOCKTICKS", perfevent.OSPerfEvent)
	require.NoError(t, err)
	assert.Equal(t, "icx_unc_pcu", e.PMU.Name)

	cfg.PMUs = []string{"nosuch"}
	_, err = cfg.Encoder(cfg.Types())
	assert.ErrorIs(t, err, pfmerr.ErrNotFound)

	_, err = cfg.Encoder(nil)
	assert.ErrorIs(t, err, pfmerr.ErrNoInit)
}

func TestLoadEvents(t *testing.T) {
	events, err := LoadEvents(writeFile(t, "events.yaml", `
events:
  - cpu::cycles:u
  - "  "
  - adl_glc::INST_RETIRED:period=100000
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"cpu::cycles:u", "adl_glc::INST_RETIRED:period=100000"}, events)

	_, err = LoadEvents(writeFile(t, "events.yaml", "events: []\n"))
	assert.Error(t, err)
	_, err = LoadEvents(writeFile(t, "events.yaml", "event: [cycles]\n"))
	assert.Error(t, err)
}
