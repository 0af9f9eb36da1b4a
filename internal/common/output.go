package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"perfenc/internal/report"
	"perfenc/internal/util"
)

const (
	FlagFormatName = "format"
	FlagOutputName = "output"
)

// OutputFlags select how a command's tables are rendered and where they go.
type OutputFlags struct {
	Format string
	Output string
}

func (f *OutputFlags) Add(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Format, FlagFormatName, "", "")
	cmd.Flags().StringVar(&f.Output, FlagOutputName, "", "")
}

func (f *OutputFlags) Group() FlagGroup {
	return FlagGroup{
		GroupName: "Output Options",
		Flags: []Flag{
			{Name: FlagFormatName, Help: fmt.Sprintf("choose output format from: %s. Defaults to txt on a terminal, otherwise json or the --%s file extension", strings.Join(report.FormatOptions, ", "), FlagOutputName)},
			{Name: FlagOutputName, Help: "write output to this file instead of stdout"},
		},
	}
}

func (f *OutputFlags) Validate() error {
	if f.Format != "" && !slices.Contains(report.FormatOptions, f.Format) {
		return fmt.Errorf("format options are: %s", strings.Join(report.FormatOptions, ", "))
	}
	if f.ResolvedFormat() == report.FormatXlsx && f.Output == "" {
		return fmt.Errorf("--%s %s requires --%s", FlagFormatName, report.FormatXlsx, FlagOutputName)
	}
	return nil
}

// ResolvedFormat returns the requested format or picks one from the output
// destination.
func (f *OutputFlags) ResolvedFormat() string {
	if f.Format != "" {
		return f.Format
	}
	if f.Output != "" {
		switch strings.ToLower(filepath.Ext(f.Output)) {
		case ".json":
			return report.FormatJson
		case ".yaml", ".yml":
			return report.FormatYaml
		case ".xlsx":
			return report.FormatXlsx
		}
		return report.FormatTxt
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return report.FormatTxt
	}
	return report.FormatJson
}

// Write renders the tables and writes them to the output file or the
// command's stdout.
func (f *OutputFlags) Write(cmd *cobra.Command, tables []report.TableValues) error {
	format := f.ResolvedFormat()
	out, err := report.Create(format, tables)
	if err != nil {
		return err
	}
	if f.Output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	path := util.ExpandUser(f.Output)
	if err := os.WriteFile(path, out, 0644); err != nil { // #nosec G306
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	slog.Info("wrote report", slog.String("path", path), slog.String("format", format))
	cmd.PrintErrf("Report written to %s\n", path)
	return nil
}
