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

// Package rows holds the canonical row tree of a grid: leaves, groups, group
// footers and pinned rows, keyed by id, plus the depth index used for
// virtualization estimates.
//
// Nodes are treated as immutable once they are in a tree that may be shared.
// Mutation primitives replace the parent node with a modified copy instead of
// editing it in place, so a TreeState clone never observes changes made to
// another clone.
package rows

import (
	"fmt"
	"maps"
	"slices"

	"google.golang.org/protobuf/types/known/structpb"
)

// RowID identifies a row within a tree.
type RowID string

// RootGroupID is the id of the synthetic group every tree is rooted at.
const RootGroupID RowID = "auto-generated-group-node-root"

// NodeType tags the variant of a Node.
type NodeType int

const (
	NodeLeaf NodeType = iota
	NodeGroup
	NodeFooter
	NodePinnedRow
)

func (t NodeType) String() string {
	switch t {
	case NodeLeaf:
		return "leaf"
	case NodeGroup:
		return "group"
	case NodeFooter:
		return "footer"
	case NodePinnedRow:
		return "pinnedRow"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// Node is a row in the tree.
type Node struct {
	ID     RowID
	Type   NodeType
	Parent RowID
	// Depth is Parent's depth + 1. The root has depth -1.
	Depth int

	// Group-only fields.
	Children []RowID
	// ChildrenFromPath indexes group children by grouping field, then grouping key.
	ChildrenFromPath map[string]map[string]RowID
	// FooterID is empty when the group has no footer.
	FooterID         RowID
	ChildrenExpanded bool

	GroupingField   string
	GroupingKey     string
	IsAutoGenerated bool
}

// HasFooter reports whether a group node currently owns a footer.
func (n *Node) HasFooter() bool {
	return n.FooterID != ""
}

// clone returns a copy of n whose slices and maps can be modified without
// affecting n.
func (n *Node) clone() *Node {
	c := *n
	c.Children = slices.Clone(n.Children)
	if n.ChildrenFromPath != nil {
		c.ChildrenFromPath = make(map[string]map[string]RowID, len(n.ChildrenFromPath))
		for field, byKey := range n.ChildrenFromPath {
			c.ChildrenFromPath[field] = maps.Clone(byKey)
		}
	}
	return &c
}

// Tree maps row ids to nodes. It owns every node.
type Tree map[RowID]*Node

// Root returns the synthetic root group, or nil for an empty tree.
func (t Tree) Root() *Node {
	return t[RootGroupID]
}

// TreeDepths counts the nodes at each depth. The root is not counted.
type TreeDepths map[int]int

// MaxDepth returns the deepest populated depth, or -1 when only the root exists.
func (d TreeDepths) MaxDepth() int {
	maxDepth := -1
	for depth := range d {
		if depth > maxDepth {
			maxDepth = depth
		}
	}
	return maxDepth
}

// RowEntry is a row as seen by the layout engine and the rendering collaborators.
type RowEntry struct {
	ID   RowID
	Data *structpb.Struct
}

// Field returns the value of a data field, or false if the row does not carry it.
func (e RowEntry) Field(name string) (*structpb.Value, bool) {
	if e.Data == nil {
		return nil, false
	}
	v, ok := e.Data.GetFields()[name]
	return v, ok
}

// PinnedPosition is the edge a pinned row is held at.
type PinnedPosition int

const (
	PinnedTop PinnedPosition = iota
	PinnedBottom
)

func (p PinnedPosition) String() string {
	if p == PinnedTop {
		return "top"
	}
	return "bottom"
}

// PinnedRows is the pinned-rows partition. Pinned rows are measured by the
// height engine but excluded from scroll positions.
type PinnedRows struct {
	Top    []RowEntry
	Bottom []RowEntry
}

// All returns top rows followed by bottom rows.
func (p PinnedRows) All() []RowEntry {
	all := make([]RowEntry, 0, len(p.Top)+len(p.Bottom))
	all = append(all, p.Top...)
	return append(all, p.Bottom...)
}

// TreeState is the output of a rows hydration pass: the tree, its depth index,
// the pinned partition and the row data lookup.
type TreeState struct {
	Tree             Tree
	Depths           TreeDepths
	PinnedRows       PinnedRows
	DataRowIDToModel map[RowID]*structpb.Struct
}

// NewTreeState returns a state holding only the root group.
func NewTreeState() *TreeState {
	return &TreeState{
		Tree:             Tree{RootGroupID: newRootNode()},
		Depths:           TreeDepths{},
		DataRowIDToModel: make(map[RowID]*structpb.Struct),
	}
}

func newRootNode() *Node {
	return &Node{
		ID:               RootGroupID,
		Type:             NodeGroup,
		Depth:            -1,
		ChildrenExpanded: true,
	}
}

// Clone returns a shallow copy: top-level containers are copied, nodes are shared.
func (s *TreeState) Clone() *TreeState {
	c := &TreeState{
		Tree:   maps.Clone(s.Tree),
		Depths: maps.Clone(s.Depths),
		PinnedRows: PinnedRows{
			Top:    slices.Clone(s.PinnedRows.Top),
			Bottom: slices.Clone(s.PinnedRows.Bottom),
		},
		DataRowIDToModel: maps.Clone(s.DataRowIDToModel),
	}
	if c.Tree == nil {
		c.Tree = Tree{}
	}
	if c.Depths == nil {
		c.Depths = TreeDepths{}
	}
	if c.DataRowIDToModel == nil {
		c.DataRowIDToModel = make(map[RowID]*structpb.Struct)
	}
	return c
}

// Entry returns the row entry for id, with its data when the row carries any.
func (s *TreeState) Entry(id RowID) RowEntry {
	return RowEntry{ID: id, Data: s.DataRowIDToModel[id]}
}
