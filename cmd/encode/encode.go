// Package encode is a subcommand of the root command. It encodes event strings for an OS layer.
package encode

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"perfenc/internal/common"
	"perfenc/internal/config"
	"perfenc/internal/report"
	"perfenc/internal/util"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const cmdName = "encode"

var examples = []string{
	fmt.Sprintf("  Encode an event:                        $ %s %s cpu::cycles", common.AppName, cmdName),
	fmt.Sprintf("  Encode a sampling event, user only:     $ %s %s --plm u cpu::llc-misses:period=10000:precise=2", common.AppName, cmdName),
	fmt.Sprintf("  Encode the raw PMU codes:               $ %s %s --os none cpu::branches:u", common.AppName, cmdName),
	fmt.Sprintf("  Encode events from a file to Excel:     $ %s %s --events-file events.yaml --output events.xlsx", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName + " [EVENT...]",
	Short:         "Encode event strings into perf_event_open(2) attributes",
	Long:          "",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	SilenceErrors: true,
}

var (
	flagEventsFile string

	encoderFlags common.EncoderFlags
	outputFlags  common.OutputFlags
)

const (
	flagEventsFileName = "events-file"
)

func init() {
	Cmd.Flags().StringVar(&flagEventsFile, flagEventsFileName, "", "")
	encoderFlags.Add(Cmd)
	outputFlags.Add(Cmd)

	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []common.FlagGroup {
	var groups []common.FlagGroup
	groups = append(groups, common.FlagGroup{
		GroupName: "Options",
		Flags: []common.Flag{
			{
				Name: flagEventsFileName,
				Help: "YAML file with an 'events' list, encoded after the events given as arguments. Repeated events are encoded once",
			},
		},
	})
	groups = append(groups, encoderFlags.Group())
	groups = append(groups, outputFlags.Group())
	return groups
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && flagEventsFile == "" {
		return common.FlagError(fmt.Errorf("at least one event or --%s is required", flagEventsFileName))
	}
	if flagEventsFile != "" {
		exists, err := util.FileExists(util.ExpandUser(flagEventsFile))
		if err != nil {
			return common.FlagError(err)
		}
		if !exists {
			return common.FlagError(fmt.Errorf("events file %s does not exist", flagEventsFile))
		}
	}
	if err := outputFlags.Validate(); err != nil {
		return common.FlagError(err)
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	appContext := common.GetAppContext(cmd)
	cfg, err := encoderFlags.Resolve(cmd, appContext.Config)
	if err != nil {
		return common.FlagError(err)
	}
	var events []string
	for _, event := range args {
		events = util.UniqueAppend(events, event)
	}
	if flagEventsFile != "" {
		fileEvents, err := config.LoadEvents(flagEventsFile)
		if err != nil {
			return common.FlagError(err)
		}
		for _, event := range fileEvents {
			events = util.UniqueAppend(events, event)
		}
	}
	session, err := common.NewSession(cfg)
	if err != nil {
		return common.FlagError(err)
	}
	results, failures := session.EncodeAll(events)
	slog.Info("encoded events", slog.Int("encoded", len(results)), slog.Int("failed", len(failures)))
	tables := Tables(results, failures, outputFlags.ResolvedFormat() == report.FormatTxt)
	if err := outputFlags.Write(cmd, tables); err != nil {
		return common.FlagError(err)
	}
	if len(failures) > 0 {
		err := fmt.Errorf("%d of %d events failed to encode", len(failures), len(events))
		cmd.PrintErrf("Error: %v\n", err)
		return err
	}
	return nil
}

const (
	EncodingsTableName = "Encodings"
	FailuresTableName  = "Failures"
)

// Tables lays out results and failures for the report renderers. Sample
// values get thousands separators when grouped is set.
func Tables(results []common.Result, failures []common.Failure, grouped bool) []report.TableValues {
	printer := message.NewPrinter(language.English)
	sample := func(v uint64) string {
		if grouped {
			return printer.Sprintf("%d", v)
		}
		return strconv.FormatUint(v, 10)
	}
	encodings := report.NewTable(EncodingsTableName, "Event", "PMU", "Index", "Type", "Config", "Config1", "Exclude", "Period", "Freq", "Precise", "CPU", "Canonical", "ID")
	for _, r := range results {
		encoded := common.Hex(r.Config)
		if len(r.Codes) > 0 {
			codes := make([]string, 0, len(r.Codes))
			for _, c := range r.Codes {
				codes = append(codes, common.Hex(c))
			}
			encoded = strings.Join(codes, " ")
		}
		cpu := ""
		if r.CPU >= 0 {
			cpu = strconv.Itoa(r.CPU)
		}
		encodings.AddRow(
			r.Event,
			r.PMU,
			strconv.Itoa(r.Index),
			strconv.FormatUint(uint64(r.Type), 10),
			encoded,
			common.Hex(r.Config1),
			common.FormatExclude(r),
			sample(r.Period),
			sample(r.Freq),
			strconv.FormatUint(r.Precise, 10),
			cpu,
			r.Canonical,
			strconv.Itoa(r.ID),
		)
	}
	encodings.NoDataFound = "No events encoded."
	failed := report.NewTable(FailuresTableName, "Event", "Status", "Error")
	for _, f := range failures {
		failed.AddRow(f.Event, f.Status, f.Error)
	}
	failed.NoDataFound = "All events encoded."
	return []report.TableValues{encodings, failed}
}
