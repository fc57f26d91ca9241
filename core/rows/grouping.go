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

package rows

import (
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"
)

// Terminology:
// * the fields of the row grouping model are the grouping fields, outermost first
// * every distinct key of a grouping field under one parent spawns a group node
// * leaves hang below the group of the last grouping field
// Groups keep the order in which their first row was seen, so the tree is stable
// for a given input order.

// KeyGetter returns the grouping key of a row for a field. ok is false when the
// row has no usable value; such rows are grouped under the empty key.
type KeyGetter func(row RowEntry, field string) (key string, ok bool)

// DefaultKeyGetter reads the key from the row data.
func DefaultKeyGetter(row RowEntry, field string) (string, bool) {
	v, ok := row.Field(field)
	if !ok {
		return "", false
	}
	return ValueKey(v)
}

// ValueKey converts a scalar protobuf value to a grouping key.
func ValueKey(v *structpb.Value) (string, bool) {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue, true
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64), true
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue), true
	default:
		return "", false
	}
}

// PathItem is one step of the path from the root to a group.
type PathItem struct {
	Field string
	Key   string
}

// pathEscaper escapes the separators of a group id inside fields and keys.
var pathEscaper = strings.NewReplacer("%", "%25", "/", "%2F", "-", "%2D")

// GroupRowID derives the id of the group reached by path. Distinct paths give
// distinct ids: separators inside fields and keys are percent-escaped.
func GroupRowID(path []PathItem) RowID {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = pathEscaper.Replace(p.Field) + "/" + pathEscaper.Replace(p.Key)
	}
	return RowID("auto-generated-row-" + strings.Join(parts, "-"))
}

// NewFlatTree builds a tree where every entry is a top-level leaf.
func NewFlatTree(entries []RowEntry) *TreeState {
	return BuildGroupedTree(entries, nil, nil)
}

// BuildGroupedTree groups entries by fields, outermost first. With no fields it
// returns a flat tree. A nil getKey uses DefaultKeyGetter.
func BuildGroupedTree(entries []RowEntry, fields []string, getKey KeyGetter) *TreeState {
	if getKey == nil {
		getKey = DefaultKeyGetter
	}
	state := NewTreeState()
	root := state.Tree[RootGroupID]

	path := make([]PathItem, 0, len(fields))
	for _, entry := range entries {
		if _, dup := state.Tree[entry.ID]; dup {
			continue
		}
		parent := root
		path = path[:0]
		for level, field := range fields {
			key, _ := getKey(entry, field)
			path = append(path, PathItem{Field: field, Key: key})

			childID, exists := parent.ChildrenFromPath[field][key]
			if !exists {
				group := &Node{
					ID:               GroupRowID(path),
					Type:             NodeGroup,
					Parent:           parent.ID,
					Depth:            level,
					GroupingField:    field,
					GroupingKey:      key,
					IsAutoGenerated:  true,
					ChildrenExpanded: true,
				}
				// Nodes are fresh and unshared while building, so mutate in place.
				state.Tree[group.ID] = group
				state.Depths[group.Depth]++
				appendChild(parent, group)
				childID = group.ID
			}
			parent = state.Tree[childID]
		}

		leaf := &Node{
			ID:     entry.ID,
			Type:   NodeLeaf,
			Parent: parent.ID,
			Depth:  len(fields),
		}
		state.Tree[leaf.ID] = leaf
		state.Depths[leaf.Depth]++
		appendChild(parent, leaf)
		state.DataRowIDToModel[entry.ID] = entry.Data
	}
	return state
}

// Leaves returns the ids of the leaves below id in display order.
func (t Tree) Leaves(id RowID) []RowID {
	var leaves []RowID
	var walk func(id RowID)
	walk = func(id RowID) {
		node, ok := t[id]
		if !ok {
			return
		}
		switch node.Type {
		case NodeLeaf:
			leaves = append(leaves, id)
		case NodeGroup:
			for _, child := range node.Children {
				walk(child)
			}
		}
	}
	walk(id)
	return leaves
}
