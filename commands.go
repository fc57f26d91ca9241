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
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/google/gridcore/core/config"
	"github.com/google/gridcore/core/grid"
	"github.com/google/gridcore/core/locale"
	"github.com/google/gridcore/core/logging"
	"github.com/google/gridcore/core/query"
	"github.com/google/gridcore/core/server"
	"github.com/google/gridcore/core/views"
)

func runServe(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(configPath)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlags(cfg)

	logger, closeLog, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}
	defer closeLog()

	manager := newManager()
	source, err := loadSource(manager, cfg)
	if err != nil {
		return err
	}
	describeSource(logger, cfg, source)

	srv, err := server.NewServer(source, serverSettings(cfg), logger)
	if err != nil {
		return err
	}

	if watchFlag && configPath != "" {
		loader.OnChange(func(next *config.Config) {
			applyFlags(next)
			if next.Data != "" {
				manager.InvalidateCache(next.Data)
			}
			source, err := loadSource(manager, next)
			if err != nil {
				logger.Error("reloading rows failed", "error", err)
				return
			}
			srv.SetSource(source)
			srv.SetSettings(serverSettings(next))
			logger.Info("configuration reloaded", "path", configPath)
			describeSource(logger, next, source)
		})
		if err := loader.Watch(); err != nil {
			return fmt.Errorf("watching config: %w", err)
		}
		defer loader.Close()
		go func() {
			for err := range loader.Errors() {
				logger.Warn("configuration watch error", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("inspector listening", "url", "http://"+cfg.Server.Addr+server.GridPath)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return httpServer.Shutdown(shutdownCtx)
}

func runHydrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if len(groupFlag) > 0 {
		cfg.RowGroupingModel = groupFlag
	}
	if len(aggFlag) > 0 {
		if cfg.AggregationModel, err = parseAggregations(aggFlag); err != nil {
			return err
		}
	}
	if pageSizeFlag >= 0 {
		cfg.Pagination.PageSize = pageSizeFlag
	}

	logger, closeLog, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}
	defer closeLog()

	source, err := loadSource(newManager(), cfg)
	if err != nil {
		return err
	}

	snap := defaultSnapshot(cfg)
	g := grid.New(grid.Options{
		Columns:                source.Columns,
		Rows:                   source.Rows,
		AggregationModel:       snap.AggregationModel,
		GetAggregationPosition: cfg.PositionResolver(),
		RowGroupingModel:       snap.RowGroupingModel,
		Pagination:             snap.Pagination,
		RowHeight:              cfg.RowHeight,
		Density:                snap.Density,
		Texts:                  locale.ForLanguage(cfg.Locale),
		Logger:                 logger,
	})
	defer g.Close()

	out := cmd.OutOrStdout()
	if !jsonFlag {
		q := query.FromSnapshot(server.GridPath, g.ExportState())
		_, err := fmt.Fprint(out, views.RenderText(views.BuildViewModel(g, q, serverSettings(cfg).Title)))
		return err
	}

	data, err := hydrateJSON(g)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// hydrateJSON encodes the exported state and the geometry of the visible rows.
func hydrateJSON(g *grid.Grid) ([]byte, error) {
	state, err := g.ExportState().ToStruct()
	if err != nil {
		return nil, err
	}
	tree := g.Tree()
	positions := g.RowsMeta().Positions
	geometry := make([]any, 0, len(positions))
	for i, entry := range g.VisibleRows() {
		if i >= len(positions) {
			break
		}
		kind := ""
		if node := tree[entry.ID]; node != nil {
			kind = node.Type.String()
		}
		geometry = append(geometry, map[string]any{
			"id":     string(entry.ID),
			"kind":   kind,
			"top":    positions[i],
			"height": g.RowHeight(entry.ID),
		})
	}
	rowsValue, err := structpb.NewList(geometry)
	if err != nil {
		return nil, err
	}

	doc := &structpb.Struct{Fields: map[string]*structpb.Value{
		"state":       structpb.NewStructValue(state),
		"rows":        structpb.NewListValue(rowsValue),
		"totalHeight": structpb.NewNumberValue(g.RowsMeta().CurrentPageTotalHeight),
	}}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(doc)
}
