package abi

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"perfenc/internal/pfmerr"
)

var testTable = Table{
	Name: "arg",
	Revisions: []Revision{
		{"ABI0", 40},
		{"ABI1", 48},
	},
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name     string
		size     uint32
		expected uint32
		err      error
	}{
		{"zero means oldest", 0, 40, nil},
		{"below floor", 39, 0, pfmerr.ErrInvalid},
		{"exact floor", 40, 40, nil},
		{"between revisions", 44, 44, nil},
		{"exact current", 48, 48, nil},
		{"newer caller capped", 4096, 48, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := testTable.Negotiate(tt.size)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, n)
		})
	}
}

func TestRevision(t *testing.T) {
	r, ok := testTable.Revision(44)
	assert.True(t, ok)
	assert.Equal(t, "ABI0", r.Name)
	r, ok = testTable.Revision(100)
	assert.True(t, ok)
	assert.Equal(t, "ABI1", r.Name)
	_, ok = testTable.Revision(8)
	assert.False(t, ok)
}

func TestPerfAttrTable(t *testing.T) {
	assert.EqualValues(t, unix.PERF_ATTR_SIZE_VER0, PerfAttr.Floor())
	assert.Equal(t, PerfAttrSize, PerfAttr.Current())
	for i := 1; i < len(PerfAttr.Revisions); i++ {
		assert.Greater(t, PerfAttr.Revisions[i].Size, PerfAttr.Revisions[i-1].Size)
	}
	n, err := PerfAttr.Negotiate(0)
	require.NoError(t, err)
	m, err := PerfAttr.Negotiate(unix.PERF_ATTR_SIZE_VER0)
	require.NoError(t, err)
	assert.Equal(t, m, n)
}

func TestCopyAttrBounded(t *testing.T) {
	src := unix.PerfEventAttr{
		Type:               unix.PERF_TYPE_RAW,
		Config:             0x3c,
		Ext1:               0x1234, // config1 is the last field of VER0
		Ext2:               0x5678, // config2 starts VER1
		Branch_sample_type: unix.PERF_SAMPLE_BRANCH_USER,
	}
	var dst unix.PerfEventAttr
	CopyAttr(&dst, &src, unix.PERF_ATTR_SIZE_VER0)
	assert.Equal(t, src.Type, dst.Type)
	assert.Equal(t, src.Config, dst.Config)
	assert.Equal(t, src.Ext1, dst.Ext1)
	assert.Zero(t, dst.Ext2)
	assert.Zero(t, dst.Branch_sample_type)

	dst = unix.PerfEventAttr{}
	CopyAttr(&dst, &src, unix.PERF_ATTR_SIZE_VER1)
	assert.Equal(t, src.Ext2, dst.Ext2)
	assert.Zero(t, dst.Branch_sample_type)

	CopyAttr(&dst, &src, 1<<20)
	assert.Equal(t, src, dst)
}

func TestAttrBytesAliases(t *testing.T) {
	var attr unix.PerfEventAttr
	b := AttrBytes(&attr)
	require.Len(t, b, int(PerfAttrSize))
	attr.Config = ^uint64(0) // config follows type and size
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, b[8:16])
	assert.Equal(t, make([]byte, 8), b[:8])
}
