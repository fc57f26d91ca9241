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

// Package aggregation derives aggregation rules from a model and column
// definitions, keeps group footers in the row tree in sync with those rules,
// and computes the aggregated values of every group.
//
// Values are aggregated hierarchically: each group merges the states of its
// child groups with the values of its own leaves, so every leaf value is read
// exactly once per pass.
package aggregation

import (
	"slices"

	"github.com/google/gridcore/core/columns"
	"github.com/google/gridcore/core/locale"
	"github.com/google/gridcore/core/ordered"
)

// Function is an aggregation function as registered in a Registry.
type Function struct {
	// Label overrides the localized label. Empty means "use the locale text".
	Label string
	// ColumnTypes restricts the function to columns of these types. nil means
	// every type.
	ColumnTypes []columns.ColumnType
	// NewState creates an empty accumulator. A function without NewState is
	// accepted in rules but produces no values.
	NewState func() State
}

// Registry is an insertion-ordered set of named aggregation functions.
type Registry struct {
	funcs *ordered.Map[string, *Function]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: ordered.New[string, *Function]()}
}

// Register adds or replaces the function registered under name. Replacing keeps
// the registration position.
func (r *Registry) Register(name string, fn *Function) {
	r.funcs.Set(name, fn)
}

// Get returns the function registered under name.
func (r *Registry) Get(name string) (*Function, bool) {
	if r == nil {
		return nil, false
	}
	return r.funcs.Get(name)
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return r.funcs.Keys()
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return r.funcs.Len()
}

// Clone returns a copy that can be extended without affecting r.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return NewRegistry()
	}
	return &Registry{funcs: r.funcs.Clone()}
}

// Model maps fields to aggregation function names in enumeration order.
type Model = ordered.Map[string, string]

// NewModel creates an empty model.
func NewModel() *Model {
	return ordered.New[string, string]()
}

// Rule is a model entry resolved against the registry.
type Rule struct {
	FunctionName string
	Function     *Function
}

// Rules maps fields to their resolved rule in model order.
type Rules = ordered.Map[string, Rule]

// NewRules creates an empty rule set.
func NewRules() *Rules {
	return ordered.New[string, Rule]()
}

// CanColumnHaveAggregationFunction reports whether fn, registered as name, can
// aggregate the column colDef. An explicit allow-list on the column wins over
// the function's type restriction.
func CanColumnHaveAggregationFunction(colDef *columns.ColumnDef, name string, fn *Function) bool {
	if colDef == nil || !colDef.Aggregable {
		return false
	}
	if fn == nil {
		return false
	}
	if colDef.AvailableAggregationFunctions != nil {
		return slices.Contains(colDef.AvailableAggregationFunctions, name)
	}
	if fn.ColumnTypes == nil {
		return true
	}
	return slices.Contains(fn.ColumnTypes, colDef.EffectiveType())
}

// GetAvailableAggregationFunctions returns the names of the functions usable on
// colDef in registration order.
func GetAvailableAggregationFunctions(functions *Registry, colDef *columns.ColumnDef) []string {
	var names []string
	for _, name := range functions.Names() {
		fn, _ := functions.Get(name)
		if CanColumnHaveAggregationFunction(colDef, name, fn) {
			names = append(names, name)
		}
	}
	return names
}

// GetAggregationRules resolves model against the columns and the registry.
// Entries naming an unknown column or an unusable function are dropped.
func GetAggregationRules(columnsLookup columns.Lookup, model *Model, functions *Registry) *Rules {
	rules := NewRules()
	model.Range(func(field, name string) bool {
		colDef, ok := columnsLookup[field]
		if !ok {
			return true
		}
		fn, _ := functions.Get(name)
		if CanColumnHaveAggregationFunction(colDef, name, fn) {
			rules.Set(field, Rule{FunctionName: name, Function: fn})
		}
		return true
	})
	return rules
}

// AreAggregationRulesEqual reports whether next would aggregate exactly like
// prev. The field sequences are compared in order, so reordering the model is a
// change. prev may be nil.
func AreAggregationRulesEqual(prev, next *Rules) bool {
	if !slices.Equal(prev.Keys(), next.Keys()) {
		return false
	}
	equal := true
	next.Range(func(field string, rule Rule) bool {
		old, _ := prev.Get(field)
		equal = old.Function == rule.Function && old.FunctionName == rule.FunctionName
		return equal
	})
	return equal
}

// TextSource resolves locale texts. *locale.Texts implements it.
type TextSource interface {
	Text(key string) (string, error)
}

// GetAggregationFunctionLabel returns the header label of rule: the function's
// own label, else the locale text "aggregationFunctionLabel<Name>", else the
// function name.
func GetAggregationFunctionLabel(rule Rule, texts TextSource) string {
	if rule.Function != nil && rule.Function.Label != "" {
		return rule.Function.Label
	}
	if texts == nil {
		return rule.FunctionName
	}
	label, err := texts.Text("aggregationFunctionLabel" + locale.Capitalize(rule.FunctionName))
	if err != nil {
		return rule.FunctionName
	}
	return label
}
