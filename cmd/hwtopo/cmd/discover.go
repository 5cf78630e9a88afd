// Copyright (c) 2026 The hwloc-go Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dora-zhang/hwloc/base"
	"github.com/dora-zhang/hwloc/topology"

	// Discovery backends register themselves.
	_ "github.com/dora-zhang/hwloc/levelzero"
	_ "github.com/dora-zhang/hwloc/pcibus"
)

var (
	format      string
	useBackends []string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Run discovery backends and print the topology tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		log := base.NewSourceLogObject(logger, "hwtopo", os.Getpid())

		topo := topology.New(log)
		if HideErrors {
			topo.SetHideErrors(true)
		}

		var err error
		if len(useBackends) == 0 {
			err = topo.DiscoverAll()
		} else {
			var backends []topology.Backend
			for _, name := range useBackends {
				b, berr := topology.GetBackend(name, log)
				if berr != nil {
					return berr
				}
				backends = append(backends, b)
			}
			err = topo.Discover(backends...)
		}
		if err != nil {
			log.Errorf("discovery: %v", err)
		}

		switch format {
		case "text":
			return topo.Render(os.Stdout)
		case "yaml":
			out, merr := topo.ExportYAML()
			if merr != nil {
				return merr
			}
			_, werr := os.Stdout.Write(out)
			return werr
		default:
			return fmt.Errorf("unknown format %q (want text or yaml)", format)
		}
	},
}

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List the registered discovery backends",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range topology.AvailableBackends() {
			fmt.Println(name)
		}
	},
}

func init() {
	discoverCmd.Flags().StringVarP(&format, "format", "f", "text",
		"output format: text or yaml")
	discoverCmd.Flags().StringSliceVarP(&useBackends, "backend", "b", nil,
		"backend to run (repeatable, default all)")
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(backendsCmd)
}
