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

// Package logging builds the structured logger shared by the grid, the
// inspector server and the command line.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format is the output format of log records.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config holds the logging configuration.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" toml:"level" json:"level"`
	// Format is text or json.
	Format Format `yaml:"format" toml:"format" json:"format"`
	// Output is stderr, stdout or a file path.
	Output    string `yaml:"output" toml:"output" json:"output"`
	AddSource bool   `yaml:"add_source" toml:"add_source" json:"add_source"`
}

// DefaultConfig returns text logs at info level on stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: FormatText, Output: "stderr"}
}

// ParseLevel converts a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// NewHandler creates a handler writing to w.
func NewHandler(cfg Config, w io.Writer) (slog.Handler, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.AddSource}
	switch cfg.Format {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts), nil
	case FormatText, "":
		return slog.NewTextHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

// New creates a logger for cfg. The returned close function releases the log
// file, if one was opened.
func New(cfg Config) (*slog.Logger, func() error, error) {
	var w io.Writer
	closeFn := func() error { return nil }
	switch cfg.Output {
	case "", "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closeFn = f, f.Close
	}

	handler, err := NewHandler(cfg, w)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return slog.New(handler), closeFn, nil
}
