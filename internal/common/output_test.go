package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfenc/internal/report"
)

func TestResolvedFormat(t *testing.T) {
	tests := []struct {
		flags    OutputFlags
		expected string
	}{
		{OutputFlags{Format: report.FormatYaml}, report.FormatYaml},
		{OutputFlags{Format: report.FormatTxt, Output: "out.json"}, report.FormatTxt},
		{OutputFlags{Output: "out.json"}, report.FormatJson},
		{OutputFlags{Output: "out.YML"}, report.FormatYaml},
		{OutputFlags{Output: "out.xlsx"}, report.FormatXlsx},
		{OutputFlags{Output: "out.log"}, report.FormatTxt},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.flags.ResolvedFormat(), "%+v", tt.flags)
	}
}

func TestOutputFlagsValidate(t *testing.T) {
	assert.NoError(t, (&OutputFlags{}).Validate())
	assert.NoError(t, (&OutputFlags{Format: report.FormatXlsx, Output: "x.xlsx"}).Validate())
	assert.Error(t, (&OutputFlags{Format: "html"}).Validate())
	assert.Error(t, (&OutputFlags{Format: report.FormatXlsx}).Validate())
}

func TestOutputFlagsWrite(t *testing.T) {
	table := report.NewTable("Encodings", "Event")
	table.AddRow("cpu::cycles")

	var buf bytes.Buffer
	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(&buf)
	cmd.SetErr(&bytes.Buffer{})
	f := OutputFlags{Format: report.FormatJson}
	require.NoError(t, f.Write(cmd, []report.TableValues{table}))
	assert.Contains(t, buf.String(), `"Event": "cpu::cycles"`)

	path := filepath.Join(t.TempDir(), "out.yaml")
	f = OutputFlags{Output: path}
	require.NoError(t, f.Write(cmd, []report.TableValues{table}))
	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Event: cpu::cycles")
}
