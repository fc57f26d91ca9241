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

// Package config loads grid configuration files.
//
// Files are decoded by extension: .yaml and .yml with yaml.v3, .toml with
// BurntSushi/toml and .json with encoding/json. Missing fields keep their
// defaults and out-of-range values are clamped by Normalize.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/gridcore/core/aggregation"
	"github.com/google/gridcore/core/columns"
	"github.com/google/gridcore/core/gridstate"
	"github.com/google/gridcore/core/logging"
	"github.com/google/gridcore/core/rows"
	"github.com/google/gridcore/core/rowsmeta"
)

// ErrUnsupportedFormat is returned for files whose extension has no decoder.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// DefaultDebounceMs is the default delay of a row height pass after a measurement.
const DefaultDebounceMs = 166

// Aggregation positions accepted in AggregationPosition.
const (
	// PositionAuto shows the root values in the grid footer and group values inline.
	PositionAuto   = "auto"
	PositionInline = "inline"
	PositionFooter = "footer"
	PositionNone   = "none"
)

// ModelItem is one entry of the aggregation model. The model is a list so that
// its order survives every file format.
type ModelItem struct {
	Field    string `yaml:"field" toml:"field" json:"field"`
	Function string `yaml:"function" toml:"function" json:"function"`
}

// Column describes a grid column.
type Column struct {
	Field      string `yaml:"field" toml:"field" json:"field"`
	HeaderName string `yaml:"header_name" toml:"header_name" json:"header_name"`
	Type       string `yaml:"type" toml:"type" json:"type"`
	// Aggregable defaults to true.
	Aggregable                    *bool    `yaml:"aggregable" toml:"aggregable" json:"aggregable"`
	AvailableAggregationFunctions []string `yaml:"aggregation_functions" toml:"aggregation_functions" json:"aggregation_functions"`
}

type Pagination struct {
	Page     int `yaml:"page" toml:"page" json:"page"`
	PageSize int `yaml:"page_size" toml:"page_size" json:"page_size"`
}

type Server struct {
	Addr string `yaml:"addr" toml:"addr" json:"addr"`
}

// Config is the configuration of a grid and the tools around it.
type Config struct {
	// Data is a JSON or CSV file of rows. Empty uses the demo data.
	Data    string   `yaml:"data" toml:"data" json:"data"`
	Columns []Column `yaml:"columns" toml:"columns" json:"columns"`

	RowHeight  int    `yaml:"row_height" toml:"row_height" json:"row_height"`
	Density    string `yaml:"density" toml:"density" json:"density"`
	DebounceMs int    `yaml:"debounce_ms" toml:"debounce_ms" json:"debounce_ms"`

	AggregationPosition string      `yaml:"aggregation_position" toml:"aggregation_position" json:"aggregation_position"`
	AggregationModel    []ModelItem `yaml:"aggregation_model" toml:"aggregation_model" json:"aggregation_model"`
	RowGroupingModel    []string    `yaml:"row_grouping_model" toml:"row_grouping_model" json:"row_grouping_model"`
	Pagination          Pagination  `yaml:"pagination" toml:"pagination" json:"pagination"`

	Locale  string         `yaml:"locale" toml:"locale" json:"locale"`
	Logging logging.Config `yaml:"logging" toml:"logging" json:"logging"`
	Server  Server         `yaml:"server" toml:"server" json:"server"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		RowHeight:           rowsmeta.DefaultRowHeight,
		Density:             string(gridstate.DensityStandard),
		DebounceMs:          DefaultDebounceMs,
		AggregationPosition: PositionAuto,
		Locale:              "en",
		Logging:             logging.DefaultConfig(),
		Server:              Server{Addr: "127.0.0.1:8097"},
	}
}

// Normalize clamps out-of-range values back to their defaults.
func (c *Config) Normalize() {
	def := Default()
	if c.RowHeight <= 0 {
		c.RowHeight = def.RowHeight
	}
	switch gridstate.Density(c.Density) {
	case gridstate.DensityCompact, gridstate.DensityStandard, gridstate.DensityComfortable:
	default:
		c.Density = def.Density
	}
	if c.DebounceMs < 0 {
		c.DebounceMs = def.DebounceMs
	}
	if c.AggregationPosition == "" {
		c.AggregationPosition = def.AggregationPosition
	}
	c.Pagination.Page = max(c.Pagination.Page, 0)
	c.Pagination.PageSize = max(c.Pagination.PageSize, 0)
	if c.Locale == "" {
		c.Locale = def.Locale
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = def.Logging.Format
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
}

// Validate reports settings that cannot be clamped.
func (c *Config) Validate() error {
	var errs []error
	switch c.AggregationPosition {
	case PositionAuto, PositionInline, PositionFooter, PositionNone:
	default:
		errs = append(errs, fmt.Errorf("aggregation_position: unknown value %q", c.AggregationPosition))
	}
	for i, item := range c.AggregationModel {
		if item.Field == "" || item.Function == "" {
			errs = append(errs, fmt.Errorf("aggregation_model[%d]: field and function are required", i))
		}
	}
	for i, col := range c.Columns {
		if col.Field == "" {
			errs = append(errs, fmt.Errorf("columns[%d]: field is required", i))
		}
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}
	if f := c.Logging.Format; f != logging.FormatText && f != logging.FormatJSON {
		errs = append(errs, fmt.Errorf("logging: unknown format %q", f))
	}
	return errors.Join(errs...)
}

// GridDensity returns the configured density.
func (c *Config) GridDensity() gridstate.Density {
	return gridstate.Density(c.Density)
}

// DebounceWait returns the debounce delay of row height passes.
func (c *Config) DebounceWait() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// GridPagination returns the configured pagination model.
func (c *Config) GridPagination() gridstate.Pagination {
	return gridstate.Pagination{Page: c.Pagination.Page, PageSize: c.Pagination.PageSize}
}

// Model returns the aggregation model. Later entries for a field win.
func (c *Config) Model() *aggregation.Model {
	model := aggregation.NewModel()
	for _, item := range c.AggregationModel {
		model.Set(item.Field, item.Function)
	}
	return model
}

// ColumnDefs returns the configured columns.
func (c *Config) ColumnDefs() []*columns.ColumnDef {
	defs := make([]*columns.ColumnDef, 0, len(c.Columns))
	for _, col := range c.Columns {
		def := columns.NewColumnDef(col.Field, col.HeaderName, columns.ColumnType(col.Type))
		if col.Aggregable != nil {
			def.Aggregable = *col.Aggregable
		}
		def.AvailableAggregationFunctions = col.AvailableAggregationFunctions
		defs = append(defs, def)
	}
	return defs
}

// PositionResolver returns the resolver for AggregationPosition.
func (c *Config) PositionResolver() aggregation.PositionResolver {
	switch c.AggregationPosition {
	case PositionFooter:
		return func(*rows.Node) aggregation.Position { return aggregation.PositionFooter }
	case PositionInline:
		return func(group *rows.Node) aggregation.Position {
			if group.Depth == -1 {
				return aggregation.PositionNone
			}
			return aggregation.PositionInline
		}
	case PositionNone:
		return func(*rows.Node) aggregation.Position { return aggregation.PositionNone }
	default:
		return aggregation.DefaultPosition
	}
}
