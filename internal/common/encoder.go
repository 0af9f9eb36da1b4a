package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"perfenc/internal/abi"
	"perfenc/internal/config"
	"perfenc/internal/perfevent"
	"perfenc/internal/pfmerr"
	"perfenc/internal/pmu"
	"perfenc/internal/sysfs"
)

const (
	FlagPLMName        = "plm"
	FlagOSName         = "os"
	FlagStrictTypeName = "strict-type"
	FlagSysfsDirName   = "sysfs-dir"
	FlagPMUsName       = "pmus"
)

// EncoderFlags override the configuration file for one command.
type EncoderFlags struct {
	PLM        string
	OS         string
	StrictType bool
	SysfsDir   string
	PMUs       []string
}

func (f *EncoderFlags) Add(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.PLM, FlagPLMName, "", "")
	cmd.Flags().StringVar(&f.OS, FlagOSName, "", "")
	cmd.Flags().BoolVar(&f.StrictType, FlagStrictTypeName, false, "")
	cmd.Flags().StringVar(&f.SysfsDir, FlagSysfsDirName, "", "")
	cmd.Flags().StringSliceVar(&f.PMUs, FlagPMUsName, nil, "")
}

func (f *EncoderFlags) Group() FlagGroup {
	return FlagGroup{
		GroupName: "Encoder Options",
		Flags: []Flag{
			{Name: FlagPLMName, Help: "default privilege levels, e.g. u,k or 0x9, for events that set none"},
			{Name: FlagOSName, Help: "OS layer to encode for: none, perf or perf_ext"},
			{Name: FlagStrictTypeName, Help: "fail when a PMU type is not found in sysfs instead of using PERF_TYPE_RAW"},
			{Name: FlagSysfsDirName, Help: "directory holding the kernel's PMU entries"},
			{Name: FlagPMUsName, Help: "comma separated list of PMUs to encode against"},
		},
	}
}

// Resolve applies the flags the user set on top of cfg.
func (f *EncoderFlags) Resolve(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	if cmd.Flags().Changed(FlagPLMName) {
		cfg.DefaultPLM = f.PLM
	}
	if cmd.Flags().Changed(FlagOSName) {
		cfg.OS = f.OS
	}
	if cmd.Flags().Changed(FlagStrictTypeName) {
		cfg.StrictPMUType = f.StrictType
	}
	if cmd.Flags().Changed(FlagSysfsDirName) {
		cfg.SysfsDir = f.SysfsDir
	}
	if cmd.Flags().Changed(FlagPMUsName) {
		cfg.PMUs = f.PMUs
	}
	return cfg, cfg.Validate()
}

// Session is an encoder with the settings of one command invocation.
type Session struct {
	Encoder *perfevent.Encoder
	Types   *sysfs.Cache
	PLM     int
	OS      perfevent.OS
	Flags   uint32
}

func NewSession(cfg config.Config) (*Session, error) {
	plm, err := cfg.PLM()
	if err != nil {
		return nil, err
	}
	layer, err := cfg.Layer()
	if err != nil {
		return nil, err
	}
	s := &Session{
		Types: cfg.Types(),
		PLM:   plm,
		OS:    layer,
	}
	if s.Encoder, err = cfg.Encoder(s.Types); err != nil {
		return nil, err
	}
	if cfg.StrictPMUType {
		s.Flags |= perfevent.FlagStrictPMUType
	}
	if layer != perfevent.OSNone {
		if level, err := sysfs.ReadParanoid(sysfs.ParanoidFile); err != nil {
			slog.Warn("perf_event support not detected on this host, encoding anyway", slog.String("error", err.Error()))
		} else {
			slog.Debug("perf_event support detected", slog.Int("paranoid", level))
		}
	}
	slog.Debug("encoder session", slog.String("os", layer.String()), slog.String("plm", config.FormatPLM(plm)), slog.Int("pmus", len(s.Encoder.Registry().PMUs())))
	return s, nil
}

// Result is one encoded event.
type Result struct {
	Event     string   `json:"event"`
	Canonical string   `json:"canonical"`
	PMU       string   `json:"pmu"`
	OS        string   `json:"os"`
	Index     int      `json:"index"`
	ID        int      `json:"id"`
	Type      uint32   `json:"type"`
	Config    uint64   `json:"config"`
	Config1   uint64   `json:"config1"`
	Exclude   []string `json:"exclude,omitempty"`
	Period    uint64   `json:"period,omitempty"`
	Freq      uint64   `json:"freq,omitempty"`
	Precise   uint64   `json:"precise,omitempty"`
	Exclusive bool     `json:"exclusive,omitempty"`
	Pinned    bool     `json:"pinned,omitempty"`
	CPU       int      `json:"cpu"`
	Codes     []uint64 `json:"codes,omitempty"`
}

// Failure is an event that could not be encoded.
type Failure struct {
	Event  string `json:"event"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

func NewFailure(event string, err error) Failure {
	return Failure{Event: event, Status: pfmerr.Name(pfmerr.Code(err)), Error: err.Error()}
}

var excludeBits = []struct {
	name string
	bit  uint64
}{
	{"user", unix.PerfBitExcludeUser},
	{"kernel", unix.PerfBitExcludeKernel},
	{"hv", unix.PerfBitExcludeHv},
	{"guest", unix.PerfBitExcludeGuest},
	{"host", unix.PerfBitExcludeHost},
}

// Encode encodes one event for the session's layer.
func (s *Session) Encode(event string) (Result, error) {
	r := Result{Event: event, OS: s.OS.String(), CPU: -1}
	reg := s.Encoder.Registry()
	var (
		fstr string
		p    *pmu.PMU
	)
	if s.OS == perfevent.OSNone {
		arg := perfevent.RawEncodeArg{Fstr: &fstr, Size: perfevent.RawEncodeArgABI.Current()}
		if err := s.Encoder.GetOSEventEncoding(event, s.PLM, s.OS, &arg); err != nil {
			return r, err
		}
		r.Codes = arg.Codes[:arg.Count]
		r.Index = arg.Idx
		name, _, _ := strings.Cut(fstr, "::")
		p, _ = reg.Lookup(name)
		if len(r.Codes) > 0 {
			r.Config = r.Codes[0]
		}
		if len(r.Codes) > 1 {
			r.Config1 = r.Codes[1]
		}
	} else {
		attr := unix.PerfEventAttr{Size: abi.PerfAttrSize}
		arg := perfevent.EncodeArg{
			Attr:  &attr,
			Fstr:  &fstr,
			Size:  perfevent.EncodeArgABI.Current(),
			Flags: s.Flags,
		}
		if err := s.Encoder.GetOSEventEncoding(event, s.PLM, s.OS, &arg); err != nil {
			return r, err
		}
		r.Index = arg.Idx
		r.CPU = arg.CPU
		p, _ = reg.ByID(arg.PMU)
		r.Type = attr.Type
		r.Config = attr.Config
		r.Config1 = attr.Ext1
		for _, b := range excludeBits {
			if attr.Bits&b.bit != 0 {
				r.Exclude = append(r.Exclude, b.name)
			}
		}
		if attr.Bits&unix.PerfBitFreq != 0 {
			r.Freq = attr.Sample
		} else {
			r.Period = attr.Sample
		}
		if attr.Bits&unix.PerfBitPreciseIPBit1 != 0 {
			r.Precise |= 1
		}
		if attr.Bits&unix.PerfBitPreciseIPBit2 != 0 {
			r.Precise |= 2
		}
		r.Exclusive = attr.Bits&unix.PerfBitExclusive != 0
		r.Pinned = attr.Bits&unix.PerfBitPinned != 0
	}
	r.Canonical = fstr
	if p == nil {
		return r, fmt.Errorf("no PMU for encoded event %q: %w", fstr, pfmerr.ErrFailure)
	}
	r.PMU = p.Name
	r.ID = p.GlobalIndex(r.Index)
	return r, nil
}

// EventName returns the pmu::event name of a global event id, as found in
// Result.ID.
func (s *Session) EventName(id int) (string, error) {
	if id < 0 {
		return "", fmt.Errorf("event id %d: %w", id, pfmerr.ErrInvalid)
	}
	pmuID, idx := pmu.SplitGlobalIndex(id)
	p, ok := s.Encoder.Registry().ByID(pmuID)
	if !ok || idx >= len(p.Events) {
		return "", fmt.Errorf("event id %d: %w", id, pfmerr.ErrNotFound)
	}
	return p.Name + "::" + p.Events[idx].Name, nil
}

// EncodeAll encodes every event, splitting results from failures.
func (s *Session) EncodeAll(events []string) (results []Result, failures []Failure) {
	for _, event := range events {
		r, err := s.Encode(event)
		if err != nil {
			slog.Debug("failed to encode event", slog.String("event", event), slog.String("error", err.Error()))
			failures = append(failures, NewFailure(event, err))
			continue
		}
		results = append(results, r)
	}
	return
}

// FormatExclude renders the exclusion list of a result.
func FormatExclude(r Result) string {
	if len(r.Exclude) == 0 {
		return "none"
	}
	return strings.Join(r.Exclude, ",")
}

// Hex renders a code the way event tables show it.
func Hex(v uint64) string {
	return fmt.Sprintf("0x%x", v)
}
