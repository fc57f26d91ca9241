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
	"sort"
)

// FlattenOptions controls which nodes Flatten emits and in which order.
type FlattenOptions struct {
	// Include filters leaves; nil keeps every leaf. A group is emitted only when
	// at least one leaf below it is included.
	Include func(leaf *Node) bool
	// Less orders siblings; nil keeps tree order.
	Less func(a, b *Node) bool
}

// Flatten walks tree depth-first and returns the display order of its rows:
// each group, then its children when expanded, then its footer. The root
// footer is a pinned row and never part of the result.
func Flatten(tree Tree, opts FlattenOptions) []RowID {
	root := tree.Root()
	if root == nil {
		return nil
	}
	out, _ := flattenChildren(tree, root, opts)
	return out
}

func flattenChildren(tree Tree, group *Node, opts FlattenOptions) ([]RowID, bool) {
	children := group.Children
	if opts.Less != nil {
		children = slices.Clone(children)
		sort.SliceStable(children, func(i, j int) bool {
			a, b := tree[children[i]], tree[children[j]]
			if a == nil || b == nil {
				return false
			}
			return opts.Less(a, b)
		})
	}

	var out []RowID
	hasLeaf := false
	for _, id := range children {
		child, ok := tree[id]
		if !ok {
			continue
		}
		switch child.Type {
		case NodeLeaf:
			if opts.Include == nil || opts.Include(child) {
				out = append(out, id)
				hasLeaf = true
			}
		case NodeGroup:
			sub, ok := flattenChildren(tree, child, opts)
			if !ok {
				continue
			}
			hasLeaf = true
			out = append(out, id)
			if child.ChildrenExpanded {
				out = append(out, sub...)
				if child.HasFooter() {
					out = append(out, child.FooterID)
				}
			}
		}
	}
	return out, hasLeaf
}
