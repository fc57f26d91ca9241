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

package datasources

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Manager picks a loader by file extension and caches loaded sources by path.
type Manager struct {
	mu sync.RWMutex

	// Loaders indexed by extension, including the dot.
	loaders map[string]DataSourceLoader

	// Cached sources indexed by cleaned path - populated lazily
	sources map[string]*Source

	// Base directory for resolving relative paths
	baseDir string
}

// NewManager creates a manager with the CSV and JSON loaders registered.
func NewManager() *Manager {
	m := &Manager{
		loaders: make(map[string]DataSourceLoader),
		sources: make(map[string]*Source),
	}
	m.RegisterLoader(NewCsvLoader())
	m.RegisterLoader(NewJsonLoader())
	return m
}

// RegisterLoader registers a loader for its extensions, replacing any
// previous loader of those extensions.
func (m *Manager) RegisterLoader(loader DataSourceLoader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ext := range loader.Extensions() {
		m.loaders[strings.ToLower(ext)] = loader
	}
}

// SetBaseDir sets the directory relative paths are resolved against.
func (m *Manager) SetBaseDir(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseDir = dir
}

// SourceTypes returns the registered loader types, sorted.
func (m *Manager) SourceTypes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var types []string
	for _, loader := range m.loaders {
		if !slices.Contains(types, loader.SourceType()) {
			types = append(types, loader.SourceType())
		}
	}
	slices.Sort(types)
	return types
}

// LoadFile returns the source of a file, loading it on first access.
func (m *Manager) LoadFile(path string) (*Source, error) {
	m.mu.RLock()
	path = m.resolve(path)
	if source, ok := m.sources[path]; ok {
		m.mu.RUnlock()
		return source, nil
	}
	loader, ok := m.loaders[strings.ToLower(filepath.Ext(path))]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no loader registered for %q", filepath.Ext(path))
	}
	source, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", path, err)
	}

	m.mu.Lock()
	m.sources[path] = source
	m.mu.Unlock()
	return source, nil
}

func (m *Manager) resolve(path string) string {
	if m.baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(m.baseDir, path)
	}
	return filepath.Clean(path)
}

// IsLoaded returns whether a file is currently cached.
func (m *Manager) IsLoaded(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sources[m.resolve(path)]
	return ok
}

// InvalidateCache removes a file from the cache, forcing reload on next access.
func (m *Manager) InvalidateCache(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sources, m.resolve(path))
}
