// Package types is a subcommand of the root command. It shows the PMU types registered by the kernel.
package types

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"perfenc/internal/common"
	"perfenc/internal/pmu"
	"perfenc/internal/report"
	"perfenc/internal/sysfs"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

const cmdName = "types"

var examples = []string{
	fmt.Sprintf("  Show PMU types:                   $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Show PMU types from a snapshot:   $ %s %s --sysfs-dir ./devices", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Show the PMU types registered by the kernel and how each PMU resolves",
	Long:          "",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var (
	encoderFlags common.EncoderFlags
	outputFlags  common.OutputFlags
)

func init() {
	encoderFlags.Add(Cmd)
	outputFlags.Add(Cmd)

	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []common.FlagGroup {
	return []common.FlagGroup{encoderFlags.Group(), outputFlags.Group()}
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if err := outputFlags.Validate(); err != nil {
		return common.FlagError(err)
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cfg, err := encoderFlags.Resolve(cmd, common.GetAppContext(cmd).Config)
	if err != nil {
		return common.FlagError(err)
	}
	session, err := common.NewSession(cfg)
	if err != nil {
		return common.FlagError(err)
	}
	if err := session.Types.Build(); err != nil {
		slog.Warn("failed to read PMU types", slog.String("error", err.Error()))
		cmd.PrintErrf("Warning: %v\n", err)
	}
	tables := Tables(session.Types, session.Encoder.Registry())
	if err := outputFlags.Write(cmd, tables); err != nil {
		return common.FlagError(err)
	}
	return nil
}

const (
	KernelTableName   = "Kernel PMU Types"
	RegistryTableName = "PMU Resolution"
)

// Tables lists the kernel's PMUs and the type each registry PMU resolves to.
// A PMU without a kernel entry is encoded as PERF_TYPE_RAW unless strict
// resolution is requested.
func Tables(types *sysfs.Cache, reg *pmu.Registry) []report.TableValues {
	kernel := report.NewTable(KernelTableName, "Name", "Type")
	for _, e := range types.Entries() {
		kernel.AddRow(e.Name, strconv.FormatUint(uint64(e.Type), 10))
	}
	kernel.NoDataFound = "No PMUs found."
	resolved := report.NewTable(RegistryTableName, "PMU", "ID", "Kind", "Perf Name", "Type", "Status", "Description")
	for _, p := range reg.PMUs() {
		status := "found"
		typ, err := types.Resolve(p.PerfName)
		if err != nil {
			status = "raw fallback"
			typ = unix.PERF_TYPE_RAW
		} else if p.PerfName == "" {
			status = "raw"
		}
		resolved.AddRow(p.Name, strconv.Itoa(p.ID), p.Type.String(), p.PerfName, strconv.FormatUint(uint64(typ), 10), status, p.Desc)
	}
	return []report.TableValues{kernel, resolved}
}
