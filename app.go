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
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/gridcore/core/config"
	"github.com/google/gridcore/core/gridstate"
	"github.com/google/gridcore/core/locale"
	"github.com/google/gridcore/core/server"
	"github.com/google/gridcore/datasources"
	"github.com/google/gridcore/demo"
)

// loadConfig loads the configuration file and applies the command line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg)
	return cfg, nil
}

func applyFlags(cfg *config.Config) {
	if dataPath != "" {
		cfg.Data = dataPath
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
}

// loadSource loads the configured rows, or the demo orders when no file is set.
func loadSource(manager *datasources.Manager, cfg *config.Config) (*datasources.Source, error) {
	if cfg.Data == "" {
		source := demo.Orders()
		source.ApplyColumns(cfg.ColumnDefs())
		return source, nil
	}
	loaded, err := manager.LoadFile(cfg.Data)
	if err != nil {
		return nil, err
	}
	// Cached sources are shared, so overrides go to a copy.
	source := &datasources.Source{Rows: loaded.Rows, Columns: append(loaded.Columns[:0:0], loaded.Columns...)}
	source.ApplyColumns(cfg.ColumnDefs())
	return source, nil
}

// newManager resolves data paths relative to the configuration file.
func newManager() *datasources.Manager {
	manager := datasources.NewManager()
	if configPath != "" {
		manager.SetBaseDir(filepath.Dir(configPath))
	}
	return manager
}

// defaultSnapshot returns the models configured in cfg. The demo data gets a
// grouping and an aggregation when none is configured.
func defaultSnapshot(cfg *config.Config) gridstate.Snapshot {
	snap := gridstate.Snapshot{
		AggregationModel: cfg.Model(),
		RowGroupingModel: cfg.RowGroupingModel,
		Pagination:       cfg.GridPagination(),
		Density:          cfg.GridDensity(),
	}
	if cfg.Data == "" && len(cfg.AggregationModel) == 0 && len(cfg.RowGroupingModel) == 0 {
		snap.AggregationModel = demo.DefaultAggregationModel()
		snap.RowGroupingModel = demo.DefaultRowGroupingModel()
	}
	return snap
}

func serverSettings(cfg *config.Config) server.Settings {
	title := "Demo orders"
	if cfg.Data != "" {
		title = filepath.Base(cfg.Data)
	}
	return server.Settings{
		Title:     title,
		RowHeight: cfg.RowHeight,
		Position:  cfg.PositionResolver(),
		Texts:     locale.ForLanguage(cfg.Locale),
		Defaults:  defaultSnapshot(cfg),
	}
}

func describeSource(logger *slog.Logger, cfg *config.Config, source *datasources.Source) {
	name := cfg.Data
	if name == "" {
		name = "demo"
	}
	logger.Info("rows loaded", "source", name, "rows", len(source.Rows), "columns", len(source.Columns))
}

func parseAggregations(items []string) ([]config.ModelItem, error) {
	model := make([]config.ModelItem, 0, len(items))
	for _, item := range items {
		i := strings.LastIndex(item, ":")
		if i <= 0 || i == len(item)-1 {
			return nil, fmt.Errorf("invalid aggregation %q, want field:function", item)
		}
		model = append(model, config.ModelItem{Field: item[:i], Function: item[i+1:]})
	}
	return model, nil
}
