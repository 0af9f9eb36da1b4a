package encode

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfenc/internal/common"
)

func TestTables(t *testing.T) {
	results := []common.Result{
		{Event: "cpu::cycles:period=1000000", PMU: "cpu", Type: 4, Config: 0x3c, Period: 1000000, Exclude: []string{"guest"}, CPU: -1, Canonical: "cpu::cycles:period=1000000"},
		{Event: "cpu::cycles", PMU: "cpu", Codes: []uint64{0x53003c, 0x1}, CPU: 2, ID: 1<<21 | 3},
	}
	failures := []common.Failure{{Event: "cpu::nope", Status: "notfound", Error: "not found"}}

	tables := Tables(results, failures, true)
	require.Len(t, tables, 2)
	enc := tables[0]
	assert.Equal(t, EncodingsTableName, enc.Name)
	require.Equal(t, 2, enc.Rows())
	column := func(name string) []string {
		for _, f := range enc.Fields {
			if f.Name == name {
				return f.Values
			}
		}
		t.Fatalf("no column %s", name)
		return nil
	}
	assert.Equal(t, []string{"0x3c", "0x53003c 0x1"}, column("Config"))
	assert.Equal(t, []string{"1,000,000", "0"}, column("Period"))
	assert.Equal(t, []string{"guest", "none"}, column("Exclude"))
	assert.Equal(t, []string{"", "2"}, column("CPU"))
	assert.Equal(t, []string{"0", "2097155"}, column("ID"))

	tables = Tables(results, nil, false)
	assert.Equal(t, "1000000", tables[0].Fields[7].Values[0])
	assert.Zero(t, tables[1].Rows())
	assert.Equal(t, "All events encoded.", tables[1].NoDataFound)

	assert.Equal(t, []string{"notfound"}, Tables(nil, failures, false)[1].Fields[1].Values)
}
