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

import "slices"

// InsertNode adds node to tree and records it in depths. The parent is replaced
// by a copy: leaves and groups are appended to its children, a footer becomes
// its FooterID.
//
// Inserting an id that is already present replaces the stored node. When the
// parent is unchanged the node keeps its position among its siblings.
func InsertNode(node *Node, tree Tree, depths TreeDepths) {
	if existing, ok := tree[node.ID]; ok {
		if existing.Parent == node.Parent && isChildType(existing.Type) == isChildType(node.Type) {
			replaceNode(existing, node, tree, depths)
			return
		}
		RemoveNode(existing, tree, depths)
	}

	tree[node.ID] = node
	depths[node.Depth]++

	parent, ok := tree[node.Parent]
	if !ok || parent.Type != NodeGroup {
		return
	}
	switch node.Type {
	case NodeLeaf, NodeGroup:
		p := parent.clone()
		appendChild(p, node)
		tree[p.ID] = p
	case NodeFooter:
		p := parent.clone()
		p.FooterID = node.ID
		tree[p.ID] = p
	}
}

// RemoveNode detaches node from tree and depths. The parent is replaced by a
// copy without the node. Removing a node that is not in the tree is a no-op.
func RemoveNode(node *Node, tree Tree, depths TreeDepths) {
	if node == nil {
		return
	}
	stored, ok := tree[node.ID]
	if !ok {
		return
	}
	delete(tree, stored.ID)
	decrementDepth(depths, stored.Depth)

	parent, ok := tree[stored.Parent]
	if !ok || parent.Type != NodeGroup {
		return
	}
	switch stored.Type {
	case NodeFooter:
		if parent.FooterID == stored.ID {
			p := parent.clone()
			p.FooterID = ""
			tree[p.ID] = p
		}
	case NodeLeaf, NodeGroup:
		p := parent.clone()
		removeChild(p, stored)
		tree[p.ID] = p
	}
}

func replaceNode(existing, node *Node, tree Tree, depths TreeDepths) {
	tree[node.ID] = node
	if existing.Depth != node.Depth {
		decrementDepth(depths, existing.Depth)
		depths[node.Depth]++
	}
	parent, ok := tree[node.Parent]
	if !ok || parent.Type != NodeGroup {
		return
	}
	switch node.Type {
	case NodeFooter:
		if parent.FooterID != node.ID {
			p := parent.clone()
			p.FooterID = node.ID
			tree[p.ID] = p
		}
	case NodeLeaf, NodeGroup:
		if existing.GroupingField != node.GroupingField || existing.GroupingKey != node.GroupingKey {
			p := parent.clone()
			unindexChild(p, existing)
			indexChild(p, node)
			tree[p.ID] = p
		}
	}
}

func isChildType(t NodeType) bool {
	return t == NodeLeaf || t == NodeGroup
}

func decrementDepth(depths TreeDepths, depth int) {
	if n := depths[depth]; n <= 1 {
		delete(depths, depth)
	} else {
		depths[depth] = n - 1
	}
}

// appendChild mutates parent; callers own parent.
func appendChild(parent, child *Node) {
	parent.Children = append(parent.Children, child.ID)
	indexChild(parent, child)
}

func removeChild(parent, child *Node) {
	parent.Children = slices.DeleteFunc(parent.Children, func(id RowID) bool {
		return id == child.ID
	})
	if len(parent.Children) == 0 {
		parent.Children = nil
	}
	unindexChild(parent, child)
}

// Only grouped children are indexed by path.
func indexChild(parent, child *Node) {
	if child.GroupingField == "" {
		return
	}
	if parent.ChildrenFromPath == nil {
		parent.ChildrenFromPath = make(map[string]map[string]RowID)
	}
	byKey, ok := parent.ChildrenFromPath[child.GroupingField]
	if !ok {
		byKey = make(map[string]RowID)
		parent.ChildrenFromPath[child.GroupingField] = byKey
	}
	byKey[child.GroupingKey] = child.ID
}

func unindexChild(parent, child *Node) {
	byKey, ok := parent.ChildrenFromPath[child.GroupingField]
	if !ok || byKey[child.GroupingKey] != child.ID {
		return
	}
	delete(byKey, child.GroupingKey)
	if len(byKey) == 0 {
		delete(parent.ChildrenFromPath, child.GroupingField)
	}
	if len(parent.ChildrenFromPath) == 0 {
		parent.ChildrenFromPath = nil
	}
}
