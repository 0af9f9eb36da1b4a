package types

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfenc/internal/drivers"
	"perfenc/internal/sysfs"
)

func TestTables(t *testing.T) {
	reg, err := drivers.Registry()
	require.NoError(t, err)
	reg, err = reg.Subset([]string{"cpu", "intel_msr", "icx_unc_pcu"})
	require.NoError(t, err)
	types := sysfs.New(fstest.MapFS{
		"msr/type":                       {Data: []byte("12\n")},
		"msr/perf_event_mux_interval_ms": {Data: []byte("4\n")},
		"power/type":                     {Data: []byte("9\n")},
	}, "testdata")

	tables := Tables(types, reg)
	require.Len(t, tables, 2)
	kernel := tables[0]
	// power has no mux interval file and is not a PMU entry
	require.Equal(t, 1, kernel.Rows())
	assert.Equal(t, []string{"msr"}, kernel.Fields[0].Values)
	assert.Equal(t, []string{"12"}, kernel.Fields[1].Values)

	resolved := tables[1]
	require.Equal(t, 3, resolved.Rows())
	status := map[string]string{}
	typ := map[string]string{}
	for i, name := range resolved.Fields[0].Values {
		typ[name] = resolved.Fields[4].Values[i]
		status[name] = resolved.Fields[5].Values[i]
	}
	assert.Equal(t, "found", status["intel_msr"])
	assert.Equal(t, "12", typ["intel_msr"])
	assert.Equal(t, "raw fallback", status["icx_unc_pcu"])
	assert.Equal(t, "4", typ["icx_unc_pcu"])
}
