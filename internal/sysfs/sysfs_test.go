package sysfs

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"perfenc/internal/pfmerr"
)

func pmuFiles(name, typ string) fstest.MapFS {
	fsys := fstest.MapFS{}
	fsys[name+"/type"] = &fstest.MapFile{Data: []byte(typ)}
	fsys[name+"/"+muxIntervalFile] = &fstest.MapFile{Data: []byte("4\n")}
	return fsys
}

func testRegistry() fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, typ := range map[string]string{
		"cpu":          "4\n",
		"cpu_core":     "10\n",
		"msr":          "12\n",
		"uncore_pcu":   "23",
		".hidden":      "99\n",
		"broken":       "not-a-number\n",
		"uncore_m2m_0": "31\n",
	} {
		for k, v := range pmuFiles(name, typ) {
			fsys[k] = v
		}
	}
	// a directory without the mux interval file is not a PMU
	fsys["software_only/type"] = &fstest.MapFile{Data: []byte("1\n")}
	// missing type file
	fsys["notype/"+muxIntervalFile] = &fstest.MapFile{Data: []byte("4\n")}
	// plain file at the top level
	fsys["uevent"] = &fstest.MapFile{Data: []byte("x")}
	return fsys
}

// countingFS records every Open so tests can assert the registry was not touched.
type countingFS struct {
	fs.FS
	opens atomic.Int32
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.opens.Add(1)
	return c.FS.Open(name)
}

func TestBuildFiltersEntries(t *testing.T) {
	c := New(testRegistry(), "testdata")
	require.NoError(t, c.Build())
	names := map[string]uint32{}
	for _, e := range c.Entries() {
		names[e.Name] = e.Type
	}
	assert.Equal(t, map[string]uint32{
		"cpu":          4,
		"cpu_core":     10,
		"msr":          12,
		"uncore_pcu":   23,
		"uncore_m2m_0": 31,
	}, names)
}

func TestLookup(t *testing.T) {
	c := New(testRegistry(), "testdata")
	tests := []struct {
		name     string
		pmu      string
		expected uint32
		err      error
	}{
		{"exact", "cpu", 4, nil},
		{"no trailing newline", "uncore_pcu", 23, nil},
		{"prefix is not a match", "cpu_", 0, pfmerr.ErrNotFound},
		{"hidden entries skipped", ".hidden", 0, pfmerr.ErrNotFound},
		{"unparsable type skipped", "broken", 0, pfmerr.ErrNotFound},
		{"missing type skipped", "notype", 0, pfmerr.ErrNotFound},
		{"not a pmu", "software_only", 0, pfmerr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, err := c.Lookup(tt.pmu)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, typ)
		})
	}
}

func TestResolve(t *testing.T) {
	c := New(testRegistry(), "testdata")
	tests := []struct {
		name     string
		perfName string
		expected uint32
		found    bool
	}{
		{"single", "msr", 12, true},
		{"first of list matches", "cpu_core,cpu", 10, true},
		{"second of list matches", "cpu_atom,cpu", 4, true},
		{"nothing matches", "cpu_atom,uncore_x", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, err := c.Resolve(tt.perfName)
			if !tt.found {
				assert.ErrorIs(t, err, pfmerr.ErrNotFound)
				assert.Contains(t, err.Error(), "uncore_x")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, typ)
		})
	}
}

func TestResolveEmptyIsRaw(t *testing.T) {
	fsys := &countingFS{FS: testRegistry()}
	c := New(fsys, "testdata")
	typ, err := c.Resolve("")
	require.NoError(t, err)
	assert.EqualValues(t, unix.PERF_TYPE_RAW, typ)
	assert.Zero(t, fsys.opens.Load())
}

func TestMissingRegistry(t *testing.T) {
	c := NewDir(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, c.Build())
	assert.Empty(t, c.Entries())
	_, err := c.Resolve("cpu")
	assert.ErrorIs(t, err, pfmerr.ErrNotFound)
	// the failure is sticky
	assert.Error(t, c.Build())
}

func TestNilRegistry(t *testing.T) {
	c := New(nil, "")
	assert.ErrorIs(t, c.Build(), pfmerr.ErrNotSupported)
}

func TestBuildOnceConcurrent(t *testing.T) {
	fsys := &countingFS{FS: testRegistry()}
	c := New(fsys, "testdata")
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			typ, err := c.Lookup("msr")
			assert.NoError(t, err)
			assert.EqualValues(t, 12, typ)
		}()
	}
	wg.Wait()
	opens := fsys.opens.Load()
	_, _ = c.Lookup("cpu")
	assert.Equal(t, opens, fsys.opens.Load())
}

func TestDefaultIsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}

// The kernel exposes each PMU as a symlink into the device tree.
func TestBuildFollowsSymlinks(t *testing.T) {
	root := t.TempDir()
	devices := filepath.Join(root, "devices")
	registry := filepath.Join(root, "event_source")
	require.NoError(t, os.MkdirAll(registry, 0755))
	for name, typ := range map[string]string{"cpu": "4\n", "msr": "12\n"} {
		dir := filepath.Join(devices, name)
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "type"), []byte(typ), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, muxIntervalFile), []byte("4\n"), 0644))
	}
	require.NoError(t, os.Symlink(filepath.Join(devices, "cpu"), filepath.Join(registry, "cpu")))
	// a real directory is accepted as well
	require.NoError(t, os.Rename(filepath.Join(devices, "msr"), filepath.Join(registry, "msr")))
	require.NoError(t, os.Symlink(filepath.Join(devices, "gone"), filepath.Join(registry, "dangling")))
	require.NoError(t, os.WriteFile(filepath.Join(registry, "uevent"), []byte("4\n"), 0644))

	c := NewDir(registry)
	require.NoError(t, c.Build())
	assert.Equal(t, []Entry{{Name: "cpu", Type: 4}, {Name: "msr", Type: 12}}, c.Entries())
	typ, err := c.Lookup("cpu")
	require.NoError(t, err)
	assert.EqualValues(t, 4, typ)
	_, err = c.Lookup("dangling")
	assert.ErrorIs(t, err, pfmerr.ErrNotFound)
}

func TestReadParanoid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content *string
		level   int
		err     error
	}{
		{"restricted", ptr("2\n"), 2, nil},
		{"open", ptr("-1\n"), -1, nil},
		{"missing", nil, 0, pfmerr.ErrNotSupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0644))
			}
			level, err := ReadParanoid(path)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.level, level)
		})
	}

	path := filepath.Join(dir, "garbage")
	require.NoError(t, os.WriteFile(path, []byte("lots\n"), 0644))
	_, err := ReadParanoid(path)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, pfmerr.ErrNotSupported)
}

func ptr(s string) *string { return &s }
