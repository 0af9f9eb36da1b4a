/*
Package config loads encoder settings from a YAML file and turns them into a
ready to use encoder.
*/
package config

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"perfenc/internal/drivers"
	"perfenc/internal/perfevent"
	"perfenc/internal/pfmerr"
	"perfenc/internal/pmu"
	"perfenc/internal/sysfs"
	"perfenc/internal/util"
)

// Config is the content of a configuration file. Zero fields keep their
// defaults.
type Config struct {
	SysfsDir      string   `yaml:"sysfs_dir"`
	DefaultPLM    string   `yaml:"default_plm"`
	OS            string   `yaml:"os"`
	StrictPMUType bool     `yaml:"strict_pmu_type"`
	PMUs          []string `yaml:"pmus"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		SysfsDir:   sysfs.DevicesDir,
		DefaultPLM: "u,k",
		OS:         perfevent.OSPerfEventExt.String(),
	}
}

// Load reads the file at path on top of the defaults. Unknown keys are an
// error.
func Load(path string) (Config, error) {
	cfg := Default()
	yamlFile, err := os.ReadFile(util.ExpandUser(path))
	if err != nil {
		return cfg, err
	}
	if err := yaml.UnmarshalStrict(yamlFile, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	slog.Debug("loaded config", slog.String("path", path), slog.Any("config", cfg))
	return cfg, nil
}

// Validate checks the values that have a fixed vocabulary.
func (c Config) Validate() error {
	if _, err := c.PLM(); err != nil {
		return err
	}
	if _, err := c.Layer(); err != nil {
		return err
	}
	return nil
}

// PLM returns the default privilege level mask.
func (c Config) PLM() (int, error) {
	return ParsePLM(c.DefaultPLM)
}

// Layer returns the OS layer events are encoded for.
func (c Config) Layer() (perfevent.OS, error) {
	return perfevent.ParseOS(c.OS)
}

// Types returns the PMU type cache for SysfsDir. The kernel's registry
// shares the process-wide cache.
func (c Config) Types() *sysfs.Cache {
	if c.SysfsDir == "" || c.SysfsDir == sysfs.DevicesDir {
		return sysfs.Default()
	}
	return sysfs.NewDir(util.ExpandUser(c.SysfsDir))
}

// Registry returns the built-in PMUs, restricted to PMUs when the list is
// not empty.
func (c Config) Registry() (*pmu.Registry, error) {
	reg, err := drivers.Registry()
	if err != nil {
		return nil, err
	}
	if len(c.PMUs) > 0 {
		return reg.Subset(c.PMUs)
	}
	return reg, nil
}

// Encoder builds an encoder over Registry resolving PMU types with types,
// usually the cache returned by Types.
func (c Config) Encoder(types *sysfs.Cache) (*perfevent.Encoder, error) {
	if types == nil {
		return nil, fmt.Errorf("no PMU type cache: %w", pfmerr.ErrNoInit)
	}
	reg, err := c.Registry()
	if err != nil {
		return nil, err
	}
	return perfevent.New(reg, types), nil
}

var plmNames = map[string]int{
	"u":  pmu.PLM3,
	"k":  pmu.PLM0,
	"h":  pmu.PLMH,
	"1":  pmu.PLM1,
	"2":  pmu.PLM2,
	"3":  pmu.PLM3,
	"0":  pmu.PLM0,
	"hv": pmu.PLMH,
}

// ParsePLM accepts a comma separated list of privilege levels (u, k, h, or
// the ring numbers 0-3), or a numeric mask such as 0x9. An empty string is
// the empty mask.
func ParsePLM(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s, 0, 32)
		if err != nil || int(v)&^pmu.PLMAll != 0 {
			return 0, fmt.Errorf("invalid privilege level mask %q", s)
		}
		return int(v), nil
	}
	plm := 0
	for _, name := range strings.Split(s, ",") {
		level, ok := plmNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, fmt.Errorf("invalid privilege level %q, expected u, k, h or 0-3", name)
		}
		plm |= level
	}
	return plm, nil
}

// FormatPLM is the inverse of ParsePLM for masks made of named levels.
func FormatPLM(plm int) string {
	var levels []string
	for _, l := range []struct {
		mask int
		name string
	}{{pmu.PLM3, "u"}, {pmu.PLM0, "k"}, {pmu.PLMH, "h"}, {pmu.PLM1, "1"}, {pmu.PLM2, "2"}} {
		if plm&l.mask != 0 {
			levels = append(levels, l.name)
		}
	}
	return strings.Join(levels, ",")
}

type eventsFile struct {
	Events []string `yaml:"events"`
}

// LoadEvents reads a YAML file holding a list of event strings under the
// events key.
func LoadEvents(path string) ([]string, error) {
	yamlFile, err := os.ReadFile(util.ExpandUser(path))
	if err != nil {
		return nil, err
	}
	var ef eventsFile
	if err := yaml.UnmarshalStrict(yamlFile, &ef); err != nil {
		return nil, fmt.Errorf("failed to parse events file %s: %w", path, err)
	}
	var events []string
	for _, ev := range ef.Events {
		if ev = strings.TrimSpace(ev); ev != "" {
			events = append(events, ev)
		}
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("no events in %s", path)
	}
	return events, nil
}
