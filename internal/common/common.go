// Package common defines data structures and functions that are used by multiple
// application commands, e.g., encode, types, attrs, serve.
package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"perfenc/internal/config"
)

var AppName = filepath.Base(os.Args[0])

// AppContext represents the application context that can be accessed from all commands.
type AppContext struct {
	Config      config.Config // Config is the configuration file content, or the defaults.
	ConfigPath  string        // ConfigPath is the file Config was loaded from, empty for defaults.
	LogFilePath string        // LogFilePath is the log file, empty when logging elsewhere.
	Version     string        // Version is the version of the application.
}

type Flag struct {
	Name string
	Help string
}
type FlagGroup struct {
	GroupName string
	Flags     []Flag
}

// GetAppContext returns the context set up by the root command. Commands run
// without it, e.g. from tests, get the default configuration.
func GetAppContext(cmd *cobra.Command) AppContext {
	for c := cmd; c != nil; c = c.Parent() {
		if ctx := c.Context(); ctx != nil {
			if appContext, ok := ctx.Value(AppContext{}).(AppContext); ok {
				return appContext
			}
		}
	}
	return AppContext{Config: config.Default()}
}

// UsageFunc prints the command's flags in groups, followed by the global
// flags of the root command.
func UsageFunc(getFlagGroups func() []FlagGroup) func(*cobra.Command) error {
	return func(cmd *cobra.Command) error {
		cmd.Printf("Usage: %s\n\n", cmd.UseLine())
		if cmd.Example != "" {
			cmd.Printf("Examples:\n%s\n\n", cmd.Example)
		}
		cmd.Println("Flags:")
		for _, group := range getFlagGroups() {
			cmd.Printf("  %s:\n", group.GroupName)
			for _, flag := range group.Flags {
				flagDefault := ""
				if f := cmd.Flags().Lookup(flag.Name); f != nil && f.DefValue != "" && f.DefValue != "[]" && f.DefValue != "false" {
					flagDefault = fmt.Sprintf(" (default: %s)", f.DefValue)
				}
				cmd.Printf("    --%-20s %s%s\n", flag.Name, flag.Help, flagDefault)
			}
		}
		if cmd.HasParent() {
			cmd.Println("\nGlobal Flags:")
			cmd.Root().PersistentFlags().VisitAll(func(pf *pflag.Flag) {
				flagDefault := ""
				if pf.DefValue != "" && pf.DefValue != "false" {
					flagDefault = fmt.Sprintf(" (default: %s)", pf.DefValue)
				}
				cmd.Printf("  --%-20s %s%s\n", pf.Name, pf.Usage, flagDefault)
			})
		}
		return nil
	}
}

// FlagError reports a flag validation failure the way every command does.
func FlagError(err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return err
}
