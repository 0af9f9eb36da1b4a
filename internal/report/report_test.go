package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v2"
)

func sampleTables() []TableValues {
	enc := NewTable("Encodings", "Event", "Type", "Config")
	enc.AddRow("cpu::cycles", "4", "0x3c")
	enc.AddRow("msr::tsc", "12", "0x0")
	summary := TableValues{
		Name:   "Summary",
		Fields: []Field{{Name: "Events", Values: []string{"2"}}, {Name: "Failures", Values: []string{"0"}}},
	}
	empty := NewTable("Failures", "Event", "Error")
	empty.NoDataFound = "All events encoded."
	return []TableValues{enc, summary, empty}
}

func TestTextReport(t *testing.T) {
	out, err := Create(FormatTxt, sampleTables())
	require.NoError(t, err)
	expected := `Encodings
=========
Event         Type   Config
-----         ----   ------
cpu::cycles   4      0x3c
msr::tsc      12     0x0

Summary
=======
Events:   2
Failures: 0

Failures
========
All events encoded.

`
	assert.Equal(t, expected, string(out))
}

func TestJsonReport(t *testing.T) {
	out, err := Create(FormatJson, sampleTables())
	require.NoError(t, err)
	var got map[string][]map[string]string
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, []map[string]string{
		{"Event": "cpu::cycles", "Type": "4", "Config": "0x3c"},
		{"Event": "msr::tsc", "Type": "12", "Config": "0x0"},
	}, got["Encodings"])
	assert.Empty(t, got["Failures"])
	assert.Contains(t, got, "Failures")
}

func TestYamlReport(t *testing.T) {
	out, err := Create(FormatYaml, sampleTables()[:1])
	require.NoError(t, err)
	text := string(out)
	assert.Less(t, strings.Index(text, "cpu::cycles"), strings.Index(text, "msr::tsc"))
	assert.Less(t, strings.Index(text, "Event:"), strings.Index(text, "Type:"))
	assert.Less(t, strings.Index(text, "Type:"), strings.Index(text, "Config:"))
	var got map[string][]map[string]string
	require.NoError(t, yaml.Unmarshal(out, &got))
	assert.Equal(t, []map[string]string{
		{"Event": "cpu::cycles", "Type": "4", "Config": "0x3c"},
		{"Event": "msr::tsc", "Type": "12", "Config": "0x0"},
	}, got["Encodings"])
}

func TestXlsxReport(t *testing.T) {
	out, err := Create(FormatXlsx, sampleTables())
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(XlsxPrimarySheetName)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 4)
	assert.Equal(t, []string{"Encodings"}, rows[0])
	assert.Equal(t, []string{"", "Event", "Type", "Config"}, rows[1])
	assert.Equal(t, []string{"", "cpu::cycles", "4", "0x3c"}, rows[2])
}

func TestCreateErrors(t *testing.T) {
	_, err := Create("html", sampleTables())
	assert.Error(t, err)

	bad := NewTable("Bad", "A", "B")
	bad.Fields[0].Values = []string{"1"}
	_, err = Create(FormatTxt, []TableValues{bad})
	assert.Error(t, err)

	assert.Panics(t, func() { bad.AddRow("only one") })
}
