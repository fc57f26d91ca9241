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
	"slices"

	"google.golang.org/protobuf/types/known/structpb"
)

// AddPinnedRow returns a copy of state with rowID pinned at position.
// Auto-generated rows (such as the grid-wide aggregation footer) are not
// recorded as data rows. Pinning an id that is already at position updates it
// in place, so repeated calls are idempotent. An id pinned at the other edge
// moves to position.
func AddPinnedRow(state *TreeState, rowID RowID, model *structpb.Struct, position PinnedPosition, isAutoGenerated bool) *TreeState {
	next := state.Clone()

	InsertNode(&Node{
		ID:              rowID,
		Type:            NodePinnedRow,
		Parent:          RootGroupID,
		Depth:           0,
		IsAutoGenerated: isAutoGenerated,
	}, next.Tree, next.Depths)

	if model == nil {
		model = &structpb.Struct{}
	}
	if !isAutoGenerated {
		next.DataRowIDToModel[rowID] = model
	}

	entry := RowEntry{ID: rowID, Data: model}
	list, other := &next.PinnedRows.Bottom, &next.PinnedRows.Top
	if position == PinnedTop {
		list, other = other, list
	}
	*other = slices.DeleteFunc(*other, func(e RowEntry) bool { return e.ID == rowID })
	if i := slices.IndexFunc(*list, func(e RowEntry) bool { return e.ID == rowID }); i >= 0 {
		(*list)[i] = entry
	} else {
		*list = append(*list, entry)
	}
	return next
}
