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

package gridstate

// EventName identifies an event published by the store.
type EventName string

const (
	// AggregationModelChange carries the new *aggregation.Model.
	AggregationModelChange EventName = "aggregationModelChange"
	// RowGroupingModelChange carries the new []string grouping model.
	RowGroupingModelChange EventName = "rowGroupingModelChange"
	// RowsMetaChange carries the new RowsMeta after every hydration pass.
	RowsMetaChange EventName = "rowsMetaChange"
)

// Event is a committed state change.
type Event struct {
	Name    EventName
	Payload any
}

// Listener receives events.
type Listener func(Event)
