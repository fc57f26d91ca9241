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

package ordered

import "testing"

func TestMap(t *testing.T) {
	m := New[string, int]()
	m.Set("first", 1)
	m.Set("second", 2)
	m.Set("third", 3)

	if val, ok := m.Get("second"); !ok || val != 2 {
		t.Errorf("Expected Get('second') to return 2, got %d", val)
	}

	keys := m.Keys()
	expected := []string{"first", "second", "third"}
	if len(keys) != len(expected) {
		t.Fatalf("Expected %d keys, got %d", len(expected), len(keys))
	}
	for i, key := range keys {
		if key != expected[i] {
			t.Errorf("Expected key[%d] = %s, got %s", i, expected[i], key)
		}
	}

	// Updating an existing key must not move it
	m.Set("first", 10)
	if keys := m.Keys(); keys[0] != "first" {
		t.Errorf("Updating value should not change key order")
	}

	m.Delete("second")
	keys = m.Keys()
	expected = []string{"first", "third"}
	for i, key := range keys {
		if key != expected[i] {
			t.Errorf("After delete, expected key[%d] = %s, got %s", i, expected[i], key)
		}
	}
	if m.Len() != 2 {
		t.Errorf("Expected Len 2, got %d", m.Len())
	}
}

func TestMapRangeStopsEarly(t *testing.T) {
	m := New[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)

	count := 0
	m.Range(func(k string, v int) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("Expected Range to stop after 2 iterations, got %d", count)
	}
}

func TestMapCloneIsIndependent(t *testing.T) {
	m := New[string, int]()
	m.Set("a", 1)
	c := m.Clone()
	c.Set("b", 2)
	c.Set("a", 5)

	if m.Len() != 1 {
		t.Errorf("Clone must not share keys, original has %d", m.Len())
	}
	if v, _ := m.Get("a"); v != 1 {
		t.Errorf("Clone must not share values, original a=%d", v)
	}
}

func TestNilMap(t *testing.T) {
	var m *Map[string, int]
	if m.Len() != 0 || m.Has("x") || m.Keys() != nil {
		t.Errorf("nil map should behave as empty")
	}
}
