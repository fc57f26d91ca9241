/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "gridcore",
	Short: "Headless data grid core: grouping, aggregation and row layout",
	Long: `gridcore hydrates a data grid from a JSON or CSV file: it groups rows,
aggregates columns into group rows and footers and computes row heights and
scroll positions. The result can be printed or browsed in the inspector.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the grid inspector",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var hydrateCmd = &cobra.Command{
	Use:   "hydrate",
	Short: "Hydrate the grid once and print it",
	Args:  cobra.NoArgs,
	RunE:  runHydrate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "gridcore", version)
	},
}

var (
	configPath string
	dataPath   string
	addr       string
	watchFlag  bool

	jsonFlag     bool
	groupFlag    []string
	aggFlag      []string
	pageSizeFlag int
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (.yaml, .yml, .toml or .json)")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "Rows file (.json or .csv); overrides the configuration")

	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address; overrides the configuration")
	serveCmd.Flags().BoolVar(&watchFlag, "watch", true, "Reload the configuration when its file changes")

	hydrateCmd.Flags().BoolVar(&jsonFlag, "json", false, "Output the state and row geometry as JSON")
	hydrateCmd.Flags().StringSliceVar(&groupFlag, "group", nil, "Row grouping fields, outermost first")
	hydrateCmd.Flags().StringSliceVar(&aggFlag, "agg", nil, "Aggregations as field:function")
	hydrateCmd.Flags().IntVar(&pageSizeFlag, "page-size", -1, "Rows per page (0 shows every row)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(hydrateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
