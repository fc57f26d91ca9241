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
	"github.com/google/gridcore/core/pipes"
	"github.com/google/gridcore/core/rows"
)

// RootFooterRowID is the id of the grid-wide footer, pinned at the bottom.
const RootFooterRowID rows.RowID = "auto-generated-group-footer-root"

// FooterProcessorID is the id of the footer pass on the hydrateRows pipeline.
const FooterProcessorID = "aggregation"

// Position is where the aggregated values of a group are shown.
type Position string

const (
	// PositionNone means the group shows no aggregated values.
	PositionNone   Position = ""
	PositionInline Position = "inline"
	PositionFooter Position = "footer"
)

// PositionResolver decides the position of a group's aggregated values.
type PositionResolver func(group *rows.Node) Position

// DefaultPosition puts the root values in the grid footer and every other
// group's values inline on the group row.
func DefaultPosition(group *rows.Node) Position {
	if group.Depth == -1 {
		return PositionFooter
	}
	return PositionInline
}

// GetAggregationFooterRowIDFromGroupID returns the id of the footer of a group.
func GetAggregationFooterRowIDFromGroupID(groupID rows.RowID) rows.RowID {
	if groupID == "" || groupID == rows.RootGroupID {
		return RootFooterRowID
	}
	return "auto-generated-group-footer-" + groupID
}

// AddFooterRows returns a copy of state in which every group that should show
// its values in a footer owns one, and no other group does. The root footer is
// pinned at the bottom and is never removed here. The input's tree and depth
// index are left untouched; nodes may be shared between input and output.
func AddFooterRows(state *rows.TreeState, position PositionResolver, hasAggregationRule bool) *rows.TreeState {
	if position == nil {
		position = DefaultPosition
	}
	next := state.Clone()

	updateChildGroupFooter := func(group *rows.Node) {
		shouldHaveFooter := hasAggregationRule && position(group) == PositionFooter
		if shouldHaveFooter {
			footerID := GetAggregationFooterRowIDFromGroupID(group.ID)
			if group.FooterID == footerID {
				return
			}
			if group.HasFooter() {
				rows.RemoveNode(next.Tree[group.FooterID], next.Tree, next.Depths)
			}
			rows.InsertNode(&rows.Node{
				ID:     footerID,
				Type:   rows.NodeFooter,
				Parent: group.ID,
				Depth:  group.Depth + 1,
			}, next.Tree, next.Depths)
			return
		}
		if !group.HasFooter() {
			return
		}
		rows.RemoveNode(next.Tree[group.FooterID], next.Tree, next.Depths)
		// The footer may have been missing from the tree.
		if current := next.Tree[group.ID]; current != nil && current.HasFooter() {
			cleared := *current
			cleared.FooterID = ""
			next.Tree[group.ID] = &cleared
		}
	}

	var updateGroupFooter func(group *rows.Node)
	updateGroupFooter = func(group *rows.Node) {
		if group.ID == rows.RootGroupID {
			if hasAggregationRule && position(group) == PositionFooter {
				next = rows.AddPinnedRow(next, RootFooterRowID, nil, rows.PinnedBottom, true)
			}
		} else {
			updateChildGroupFooter(group)
		}
		for _, childID := range group.Children {
			if child := next.Tree[childID]; child != nil && child.Type == rows.NodeGroup {
				updateGroupFooter(child)
			}
		}
	}

	if root := next.Tree.Root(); root != nil {
		updateGroupFooter(root)
	}
	return next
}

// RegisterFooterProcessor registers the footer pass on the hydrateRows pipeline
// of reg. rules is read on every pass.
func RegisterFooterProcessor(reg *pipes.Registry, rules func() *Rules, position PositionResolver) *pipes.Registration {
	return pipes.RegisterFunc(reg, pipes.HydrateRows, FooterProcessorID, func(state *rows.TreeState, _ any) *rows.TreeState {
		return AddFooterRows(state, position, rules().Len() > 0)
	})
}
