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

package aggregation

import (
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/google/gridcore/core/rows"
)

// Cell is the aggregated value of one field for one group.
type Cell struct {
	Position Position
	Value    *structpb.Value
}

// Lookup maps group ids to the aggregated cells of each field. Groups whose
// position is PositionNone have no entry.
type Lookup map[rows.RowID]map[string]Cell

// ComputeLookup aggregates the leaves of state below every group. include
// filters leaves; nil includes every leaf. A nil position uses DefaultPosition.
func ComputeLookup(state *rows.TreeState, rules *Rules, position PositionResolver, include func(leaf *rows.Node) bool) Lookup {
	lookup := Lookup{}
	if state == nil || rules.Len() == 0 {
		return lookup
	}
	if position == nil {
		position = DefaultPosition
	}
	root := state.Tree.Root()
	if root == nil {
		return lookup
	}

	fields := rules.Keys()
	newStates := func() map[string]State {
		states := make(map[string]State, len(fields))
		for _, field := range fields {
			rule, _ := rules.Get(field)
			if rule.Function != nil && rule.Function.NewState != nil {
				states[field] = rule.Function.NewState()
			}
		}
		return states
	}

	var aggregate func(group *rows.Node) map[string]State
	aggregate = func(group *rows.Node) map[string]State {
		states := newStates()
		for _, id := range group.Children {
			child, ok := state.Tree[id]
			if !ok {
				continue
			}
			switch child.Type {
			case rows.NodeLeaf:
				if include != nil && !include(child) {
					continue
				}
				values := state.DataRowIDToModel[id].GetFields()
				for field, s := range states {
					s.Add(values[field])
				}
			case rows.NodeGroup:
				sub := aggregate(child)
				for field, s := range states {
					if childState, ok := sub[field]; ok {
						s.Combine(childState)
					}
				}
			}
		}

		if pos := position(group); pos != PositionNone {
			cells := make(map[string]Cell, len(states))
			for field, s := range states {
				cells[field] = Cell{Position: pos, Value: s.Value()}
			}
			lookup[group.ID] = cells
		}
		return states
	}
	aggregate(root)
	return lookup
}

// CellFor returns the value node displays for field: inline values on group
// rows, footer values on footer rows and on the root footer.
func (l Lookup) CellFor(node *rows.Node, field string) (Cell, bool) {
	var groupID rows.RowID
	var want Position
	switch {
	case node.Type == rows.NodeGroup:
		groupID, want = node.ID, PositionInline
	case node.Type == rows.NodeFooter:
		groupID, want = node.Parent, PositionFooter
	case node.ID == RootFooterRowID:
		groupID, want = rows.RootGroupID, PositionFooter
	default:
		return Cell{}, false
	}
	cell, ok := l[groupID][field]
	if !ok || cell.Position != want {
		return Cell{}, false
	}
	return cell, true
}
