/*
Package sysfs caches the PMU types the kernel publishes under the event source
device registry so symbolic PMU names can be mapped to perf_event_attr.type.
*/
package sysfs

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"perfenc/internal/pfmerr"
)

// DevicesDir is the kernel's registry of event sources.
const DevicesDir = "/sys/bus/event_source/devices"

// ParanoidFile exists when the kernel provides perf_event_open(2).
const ParanoidFile = "/proc/sys/kernel/perf_event_paranoid"

// an entry must carry this file to be treated as a PMU
const muxIntervalFile = "perf_event_mux_interval_ms"

// Entry is one cached PMU.
type Entry struct {
	Name string `json:"name" yaml:"name"`
	Type uint32 `json:"type" yaml:"type"`
}

// Cache maps PMU names to kernel types. It is populated once, on first use,
// and is read-only afterwards.
type Cache struct {
	fsys    fs.FS
	dir     string
	once    sync.Once
	entries []Entry
	err     error
}

// New returns a cache that will scan fsys. dir is only used in messages.
func New(fsys fs.FS, dir string) *Cache {
	return &Cache{fsys: fsys, dir: dir}
}

// NewDir returns a cache over a directory on the host filesystem.
func NewDir(dir string) *Cache {
	return New(os.DirFS(dir), dir)
}

var defaultCache = sync.OnceValue(func() *Cache {
	return NewDir(DevicesDir)
})

// Default returns the process-wide cache over DevicesDir.
func Default() *Cache {
	return defaultCache()
}

// Build scans the registry. Only the first call does any work; later calls
// return the outcome of the first. A failed scan leaves the cache empty and
// is not retried.
func (c *Cache) Build() error {
	c.once.Do(func() {
		c.entries, c.err = c.scan()
		if c.err != nil {
			slog.Warn("failed to build PMU type cache", slog.String("dir", c.dir), slog.String("error", c.err.Error()))
			return
		}
		slog.Debug("built PMU type cache", slog.String("dir", c.dir), slog.Int("pmus", len(c.entries)))
	})
	return c.err
}

func (c *Cache) scan() ([]Entry, error) {
	if c.fsys == nil {
		return nil, errors.Wrap(pfmerr.ErrNotSupported, "no event source registry")
	}
	dirEntries, err := fs.ReadDir(c.fsys, ".")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", c.dir)
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !c.isPMU(de) {
			continue
		}
		typ, err := c.readType(de.Name())
		if err != nil {
			slog.Debug("skipping PMU without usable type", slog.String("pmu", de.Name()), slog.String("error", err.Error()))
			continue
		}
		entries = append(entries, Entry{Name: de.Name(), Type: typ})
	}
	return slices.Clip(entries), nil
}

func (c *Cache) isPMU(de fs.DirEntry) bool {
	if strings.HasPrefix(de.Name(), ".") {
		return false
	}
	if !de.IsDir() && de.Type()&fs.ModeSymlink == 0 {
		return false
	}
	_, err := fs.Stat(c.fsys, path.Join(de.Name(), muxIntervalFile))
	return err == nil
}

func (c *Cache) readType(name string) (uint32, error) {
	b, err := fs.ReadFile(c.fsys, path.Join(name, "type"))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read type of %s", name)
	}
	typ, err := strconv.ParseUint(string(bytes.TrimSpace(b)), 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse type of %s", name)
	}
	return uint32(typ), nil
}

// Entries returns a copy of the cached PMUs in registry order.
func (c *Cache) Entries() []Entry {
	_ = c.Build()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup returns the type of the PMU called name. Names are matched exactly.
func (c *Cache) Lookup(name string) (uint32, error) {
	_ = c.Build()
	for _, e := range c.entries {
		if e.Name == name {
			return e.Type, nil
		}
	}
	slog.Debug("PMU not found in type cache", slog.String("pmu", name))
	return 0, fmt.Errorf("PMU %q: %w", name, pfmerr.ErrNotFound)
}

// Resolve maps a PMU's perf name to a kernel type. An empty name means the
// raw type. A comma-separated list is tried left to right and the first
// match wins; when nothing matches the outcome of the last lookup is
// returned.
func (c *Cache) Resolve(perfName string) (uint32, error) {
	if perfName == "" {
		return unix.PERF_TYPE_RAW, nil
	}
	var (
		typ uint32
		err error
	)
	for name := range strings.SplitSeq(perfName, ",") {
		typ, err = c.Lookup(name)
		if err == nil {
			return typ, nil
		}
	}
	return typ, err
}

// ReadParanoid returns the perf_event_paranoid level found at path. A
// missing file means the kernel has no perf_event support.
func ReadParanoid(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, errors.Wrapf(pfmerr.ErrNotSupported, "perf_event: %s not found", path)
		}
		return 0, errors.Wrapf(err, "failed to read %s", path)
	}
	level, err := strconv.Atoi(string(bytes.TrimSpace(b)))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse %s", path)
	}
	return level, nil
}
