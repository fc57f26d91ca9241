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

// Package ordered provides an insertion-ordered map. Aggregation models, rules
// and the aggregation function registry use it because their enumeration order
// is observable (rule equality and available-function listings depend on it).
package ordered

import "slices"

// Map is a map that preserves the order of insertion.
// The zero value is not usable; create maps with New.
type Map[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// New creates a new ordered map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		keys:   make([]K, 0),
		values: make(map[K]V),
	}
}

// Set adds or updates a key-value pair. Updating an existing key keeps its position.
func (m *Map[K, V]) Set(key K, value V) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get retrieves a value by key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	if m == nil {
		var zero V
		return zero, false
	}
	val, exists := m.values[key]
	return val, exists
}

// Has checks if a key exists.
func (m *Map[K, V]) Has(key K) bool {
	if m == nil {
		return false
	}
	_, exists := m.values[key]
	return exists
}

// Delete removes a key-value pair.
func (m *Map[K, V]) Delete(key K) {
	if _, exists := m.values[key]; !exists {
		return
	}
	delete(m.values, key)
	if i := slices.Index(m.keys, key); i >= 0 {
		m.keys = slices.Delete(m.keys, i, i+1)
	}
}

// Keys returns all keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// Values returns all values in insertion order.
func (m *Map[K, V]) Values() []V {
	if m == nil {
		return nil
	}
	result := make([]V, len(m.keys))
	for i, k := range m.keys {
		result[i] = m.values[k]
	}
	return result
}

// Len returns the number of key-value pairs. A nil map has length 0.
func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Range iterates over the map in insertion order.
// If f returns false, iteration stops.
func (m *Map[K, V]) Range(f func(key K, value V) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !f(k, m.values[k]) {
			break
		}
	}
}

// Clone returns a shallow copy with the same order.
func (m *Map[K, V]) Clone() *Map[K, V] {
	c := New[K, V]()
	m.Range(func(k K, v V) bool {
		c.Set(k, v)
		return true
	})
	return c
}
