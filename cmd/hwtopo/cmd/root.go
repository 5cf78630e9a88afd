// Copyright (c) 2026 The hwloc-go Authors.
// SPDX-License-Identifier: Apache-2.0

// Package cmd implements the hwtopo command line tool: run the
// registered discovery backends and print the resulting topology tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Verbose enables debug logging.
	Verbose bool
	// HideErrors suppresses backend diagnostics, like setting
	// HWLOC_HIDE_ERRORS=1.
	HideErrors bool
)

var rootCmd = &cobra.Command{
	Use:   "hwtopo",
	Short: "Inspect the hardware topology of this machine",
	Long: `hwtopo builds a topology tree of this machine: the PCI bus
substrate plus the accelerator devices the discovery backends can see,
each grafted under its physical bus slot.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false,
		"enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&HideErrors, "hide-errors", false,
		"suppress backend diagnostics")
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if Verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}
