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

// Package server serves the grid inspector: an HTML rendering of a hydrated
// grid whose models are carried in the URL.
package server

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/google/gridcore/core/aggregation"
	"github.com/google/gridcore/core/columns"
	"github.com/google/gridcore/core/grid"
	"github.com/google/gridcore/core/gridstate"
	"github.com/google/gridcore/core/locale"
	"github.com/google/gridcore/core/query"
	"github.com/google/gridcore/core/rendering"
	"github.com/google/gridcore/core/rows"
	"github.com/google/gridcore/core/views"
	"github.com/google/gridcore/datasources"
)

// GridPath is the path of the inspector page.
const GridPath = "/grid"

// Settings are the grid options that do not come from the URL.
type Settings struct {
	Title     string
	RowHeight int
	Position  aggregation.PositionResolver
	Texts     *locale.Texts
	// Defaults are the models shown when the URL carries none.
	Defaults gridstate.Snapshot
}

// Server represents the application server with all its dependencies
type Server struct {
	mu       sync.RWMutex
	source   *datasources.Source
	settings Settings

	renderer *rendering.GridRenderer
	logger   *slog.Logger
}

// NewServer creates a new server showing source.
func NewServer(source *datasources.Source, settings Settings, logger *slog.Logger) (*Server, error) {
	renderer, err := rendering.NewGridRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		source:   source,
		settings: settings,
		renderer: renderer,
		logger:   logger.With("component", "server"),
	}, nil
}

// SetSource replaces the rows shown by later requests.
func (s *Server) SetSource(source *datasources.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = source
}

// SetSettings replaces the settings used by later requests.
func (s *Server) SetSettings(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

func (s *Server) snapshot() (*datasources.Source, Settings) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source, s.settings
}

// GridHandlerResult represents the result of handling a grid request
type GridHandlerResult struct {
	Error      error
	StatusCode int
	Message    string
}

// TimingCollector collects timing measurements for various operations
type TimingCollector struct {
	attrs []any
	start time.Time
}

// NewTimingCollector creates a new timing collector
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{start: time.Now()}
}

// Record records a timing entry
func (tc *TimingCollector) Record(operation string, duration time.Duration) {
	tc.attrs = append(tc.attrs, slog.Duration(operation, duration))
}

// Attrs returns the recorded timings followed by the total.
func (tc *TimingCollector) Attrs() []any {
	return append(slices.Clone(tc.attrs), slog.Duration("total", time.Since(tc.start)))
}

// parseQuery returns the query of a request URL. A URL without parameters
// shows the default models.
func (s *Server) parseQuery(requestURL *url.URL, settings Settings) *query.Query {
	if requestURL.RawQuery == "" {
		return query.FromSnapshot(GridPath, settings.Defaults)
	}
	q := query.NewQuery(requestURL)
	q.Path = GridPath
	return q
}

// validateFilters checks that filter columns exist
func validateFilters(lookup columns.Lookup, filters map[string]string) error {
	for colName := range filters {
		if _, ok := lookup[colName]; !ok {
			return fmt.Errorf("column '%s' does not exist", colName)
		}
	}
	return nil
}

// newGrid builds a grid showing the models of q.
func newGrid(source *datasources.Source, settings Settings, q *query.Query, logger *slog.Logger) *grid.Grid {
	snap := q.Snapshot()
	g := grid.New(grid.Options{
		Columns:                source.Columns,
		Rows:                   source.Rows,
		AggregationModel:       snap.AggregationModel,
		GetAggregationPosition: settings.Position,
		RowGroupingModel:       snap.RowGroupingModel,
		FilterModel:            snap.FilterModel,
		SortModel:              snap.SortModel,
		Pagination:             snap.Pagination,
		RowHeight:              settings.RowHeight,
		Density:                snap.Density,
		Texts:                  settings.Texts,
		Logger:                 logger,
	})
	for _, id := range q.Collapsed {
		g.SetRowExpansion(rows.RowID(id), false)
	}
	return g
}

// HandleGridRequest processes a grid request and writes the response.
// Returns an error result if the request is invalid, nil on success
func (s *Server) HandleGridRequest(w io.Writer, requestURL *url.URL, setHeader func(key, value string)) *GridHandlerResult {
	timing := NewTimingCollector()
	source, settings := s.snapshot()

	parseStart := time.Now()
	q := s.parseQuery(requestURL, settings)
	timing.Record("parse", time.Since(parseStart))

	if err := validateFilters(columns.NewLookup(source.Columns), q.Filters); err != nil {
		return &GridHandlerResult{StatusCode: http.StatusBadRequest, Message: err.Error()}
	}

	hydrateStart := time.Now()
	g := newGrid(source, settings, q, s.logger)
	defer g.Close()
	timing.Record("hydrate", time.Since(hydrateStart))

	vmStart := time.Now()
	viewModel := views.BuildViewModel(g, q, settings.Title)
	timing.Record("viewModel", time.Since(vmStart))

	setHeader("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(w, viewModel); err != nil {
		s.logger.Error("template rendering failed", "error", err)
		return &GridHandlerResult{Error: err}
	}
	s.logger.Debug("grid rendered", timing.Attrs()...)
	return nil
}

// HandleTextRequest writes the text rendering of the grid.
func (s *Server) HandleTextRequest(w io.Writer, requestURL *url.URL, setHeader func(key, value string)) *GridHandlerResult {
	source, settings := s.snapshot()
	q := s.parseQuery(requestURL, settings)
	if err := validateFilters(columns.NewLookup(source.Columns), q.Filters); err != nil {
		return &GridHandlerResult{StatusCode: http.StatusBadRequest, Message: err.Error()}
	}

	g := newGrid(source, settings, q, s.logger)
	defer g.Close()

	setHeader("Content-Type", "text/plain; charset=utf-8")
	if _, err := io.WriteString(w, views.RenderText(views.BuildViewModel(g, q, settings.Title))); err != nil {
		return &GridHandlerResult{Error: err}
	}
	return nil
}

// HandleStateRequest writes the models of a grid URL as JSON.
func (s *Server) HandleStateRequest(w io.Writer, requestURL *url.URL, setHeader func(key, value string)) *GridHandlerResult {
	source, settings := s.snapshot()
	q := s.parseQuery(requestURL, settings)

	g := newGrid(source, settings, q, s.logger)
	defer g.Close()

	data, err := g.ExportState().MarshalJSON()
	if err != nil {
		return &GridHandlerResult{Error: err}
	}
	setHeader("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		return &GridHandlerResult{Error: err}
	}
	return nil
}

// RestoreURL returns the grid URL showing an exported state.
func RestoreURL(data []byte) (string, error) {
	snap, err := gridstate.UnmarshalSnapshot(data)
	if err != nil {
		return "", err
	}
	return query.FromSnapshot(GridPath, snap).ToURL(), nil
}

// Handler returns the HTTP handler of the inspector.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, GridPath, http.StatusFound)
	})
	mux.HandleFunc("GET "+GridPath, s.adapt(s.HandleGridRequest))
	mux.HandleFunc("GET "+GridPath+".txt", s.adapt(s.HandleTextRequest))
	mux.HandleFunc("GET /state", s.adapt(s.HandleStateRequest))
	mux.HandleFunc("POST /state", func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		target, err := RestoreURL(data)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	})
	return mux
}

type handlerFunc func(w io.Writer, requestURL *url.URL, setHeader func(key, value string)) *GridHandlerResult

func (s *Server) adapt(handle handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := handle(w, r.URL, w.Header().Set)
		if result == nil {
			return
		}
		if result.Error != nil {
			s.logger.Error("request failed", "path", r.URL.Path, "error", result.Error)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		http.Error(w, result.Message, result.StatusCode)
	}
}
