// Copyright 2026 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tree

import (
	"context"

	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/types"
)

// Strategy selects the entries visited by Iterate.
type Strategy int

const (
	// Children visits the direct entries of the tree.
	Children Strategy = iota
	// Recursive visits every entry beneath the tree, each subtree node
	// before its contents.
	Recursive
	// RecursiveFeatures visits every feature beneath the tree.
	RecursiveFeatures
	// RecursiveTrees visits every subtree beneath the tree.
	RecursiveTrees
)

// Iterate calls |cb| with the path, relative to |t|, and node of each entry
// selected by |strategy|. Leaf entries are visited in name order; entries of
// a bucketed tree are visited bucket by bucket. Returning an error from |cb|
// stops the iteration.
func Iterate(ctx context.Context, odb types.ObjectDatabase, t *types.Tree, strategy Strategy, cb func(path string, n types.Node) error) error {
	type frame struct {
		tree   *types.Tree
		id     hash.Hash
		parent string
		emit   bool
		node   types.Node
	}

	recursive := strategy != Children
	stack := []frame{{tree: t}}
	for visited := 0; len(stack) > 0; visited++ {
		if visited%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.emit {
			path := AppendChild(f.parent, f.node.Name)
			if wanted(strategy, f.node) {
				if err := cb(path, f.node); err != nil {
					return err
				}
			}
			continue
		}

		cur := f.tree
		if cur == nil {
			var err error
			cur, err = types.GetTree(ctx, odb, f.id)
			if err != nil {
				return err
			}
		}
		if !cur.IsLeaf() {
			buckets := cur.Buckets()
			for i := len(buckets) - 1; i >= 0; i-- {
				stack = append(stack, frame{id: buckets[i].ID, parent: f.parent})
			}
			continue
		}
		nodes := cur.Nodes()
		for i := len(nodes) - 1; i >= 0; i-- {
			n := nodes[i]
			if recursive && n.IsTree() {
				stack = append(stack, frame{id: n.ID, parent: AppendChild(f.parent, n.Name)})
			}
			stack = append(stack, frame{emit: true, node: n, parent: f.parent})
		}
	}
	return nil
}

func wanted(strategy Strategy, n types.Node) bool {
	switch strategy {
	case RecursiveFeatures:
		return !n.IsTree()
	case RecursiveTrees:
		return n.IsTree()
	default:
		return true
	}
}
