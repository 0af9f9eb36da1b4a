// Package attrs is a subcommand of the root command. It lists the attributes of an OS layer or of an event.
package attrs

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strconv"
	"strings"

	"perfenc/internal/attrs"
	"perfenc/internal/common"
	"perfenc/internal/report"

	"github.com/spf13/cobra"
)

const cmdName = "attrs"

var examples = []string{
	fmt.Sprintf("  List the perf_event attributes:         $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  List the attributes of an event:        $ %s %s cpu::llc-misses", common.AppName, cmdName),
	fmt.Sprintf("  List the raw attributes of an event:    $ %s %s --os none cpu::branches", common.AppName, cmdName),
	fmt.Sprintf("  List the attributes of an event by id:  $ %s %s 2097153", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName + " [EVENT]",
	Short:         "List the attributes an OS layer or an event accepts",
	Long:          "",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.MaximumNArgs(1),
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
	var table report.TableValues
	if len(args) == 0 {
		ns := session.OS.Namespace()
		if ns == nil {
			err := fmt.Errorf("the %s layer has no OS attributes", session.OS)
			return common.FlagError(err)
		}
		table = Table(ns.Name, ns.Enumerate())
	} else {
		event, err := EventArg(session, args[0])
		if err != nil {
			return common.FlagError(err)
		}
		e, err := session.Encoder.EventInfo(event, session.OS)
		if err != nil {
			return common.FlagError(err)
		}
		table = Table(e.PMU.Name+"::"+e.Entry().Name, e.Pattrs)
	}
	if err := outputFlags.Write(cmd, []report.TableValues{table}); err != nil {
		return common.FlagError(err)
	}
	return nil
}

// EventArg returns the event string named by arg, which is either an event
// string or a numeric event id as reported by the encode command.
func EventArg(session *common.Session, arg string) (string, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return arg, nil
	}
	return session.EventName(id)
}

// Table lists attributes in the order they are given.
func Table(name string, infos []attrs.Info) report.TableValues {
	table := report.NewTable(name, "Name", "Layer", "Type", "Code", "Default", "Description")
	for _, info := range infos {
		def := ""
		if info.IsDefault {
			def = "yes"
		}
		table.AddRow(info.Name, info.Ctrl.String(), info.Type.String(), "0x"+strconv.FormatUint(info.Code, 16), def, info.Desc)
	}
	table.NoDataFound = "No attributes."
	return table
}
