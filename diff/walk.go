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

package diff

import (
	"context"

	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/tree"
	"github.com/rmarianski/GeoGit/types"
)

const ctxCheckInterval = 256

// Walk compares |left| and |right| and reports their differences to |c|.
//
// The two root trees are reported to Tree with the empty path. Nothing at
// all is reported when the roots are equal.
func Walk(ctx context.Context, odb types.ObjectDatabase, left, right *types.Tree, c Consumer) error {
	if left.ID() == right.ID() {
		return nil
	}
	w := &walker{ctx: ctx, odb: odb, c: c}
	l := &NodeRef{Node: types.Node{ID: left.ID(), Type: types.TreeNode}}
	r := &NodeRef{Node: types.Node{ID: right.ID(), Type: types.TreeNode}}
	descend, err := c.Tree(l, r)
	if err != nil {
		return err
	}
	if descend {
		if err := w.traverseTree("", left, right, 0); err != nil {
			return err
		}
	}
	return c.EndTree(l, r)
}

type walker struct {
	ctx   context.Context
	odb   types.ObjectDatabase
	c     Consumer
	calls int
}

func (w *walker) check() error {
	w.calls++
	if w.calls%ctxCheckInterval == 0 {
		return w.ctx.Err()
	}
	return nil
}

func (w *walker) getTree(id hash.Hash) (*types.Tree, error) {
	return types.GetTree(w.ctx, w.odb, id)
}

// traverseTree compares the contents of two trees, or two buckets of the tree
// at |path|, at bucket |depth|.
func (w *walker) traverseTree(path string, left, right *types.Tree, depth int) error {
	if left.ID() == right.ID() {
		return nil
	}
	if err := w.check(); err != nil {
		return err
	}
	switch {
	case left.IsLeaf() && right.IsLeaf():
		return w.traverseLeafLeaf(path, left.Nodes(), right.Nodes())
	case left.IsLeaf():
		return w.traverseLeafBucket(path, left.Nodes(), right, depth, false)
	case right.IsLeaf():
		return w.traverseLeafBucket(path, right.Nodes(), left, depth, true)
	default:
		return w.traverseBucketBucket(path, left, right, depth)
	}
}

// traverseLeafLeaf merges two name sorted lists of entries.
func (w *walker) traverseLeafLeaf(path string, left, right []types.Node) error {
	i, j := 0, 0
	for i < len(left) || j < len(right) {
		switch {
		case j == len(right) || (i < len(left) && left[i].Name < right[j].Name):
			if err := w.node(path, &left[i], nil); err != nil {
				return err
			}
			i++
		case i == len(left) || right[j].Name < left[i].Name:
			if err := w.node(path, nil, &right[j]); err != nil {
				return err
			}
			j++
		default:
			l, r := &left[i], &right[j]
			i++
			j++
			if l.Equals(*r) {
				continue
			}
			if l.Type != r.Type {
				// A feature replaced by a tree, or the other way around,
				// is the removal of one and the addition of the other.
				if err := w.node(path, l, nil); err != nil {
					return err
				}
				if err := w.node(path, nil, r); err != nil {
					return err
				}
				continue
			}
			if err := w.node(path, l, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) node(parent string, left, right *types.Node) error {
	if err := w.check(); err != nil {
		return err
	}
	var l, r *NodeRef
	if left != nil {
		l = &NodeRef{Node: *left, Parent: parent}
	}
	if right != nil {
		r = &NodeRef{Node: *right, Parent: parent}
	}
	n := left
	if n == nil {
		n = right
	}
	if !n.IsTree() {
		return w.c.Feature(l, r)
	}

	descend, err := w.c.Tree(l, r)
	if err != nil {
		return err
	}
	if descend {
		lt, rt := types.EmptyTree, types.EmptyTree
		if left != nil {
			if lt, err = w.getTree(left.ID); err != nil {
				return err
			}
		}
		if right != nil {
			if rt, err = w.getTree(right.ID); err != nil {
				return err
			}
		}
		// A nested tree restarts bucketing at depth zero.
		if err := w.traverseTree(tree.AppendChild(parent, n.Name), lt, rt, 0); err != nil {
			return err
		}
	}
	return w.c.EndTree(l, r)
}

// traverseLeafBucket compares the entries of a leaf tree with a bucketed
// tree at |depth|. When |swapped| is set the leaf is the right hand side.
func (w *walker) traverseLeafBucket(path string, leaf []types.Node, bucketed *types.Tree, depth int, swapped bool) error {
	byBucket := make([][]types.Node, types.MaxBuckets)
	for _, n := range leaf {
		idx := tree.BucketIndex(n.Name, depth)
		byBucket[idx] = append(byBucket[idx], n)
	}

	for idx := 0; idx < types.MaxBuckets; idx++ {
		nodes := byBucket[idx]
		bucket, hasBucket := bucketed.Bucket(idx)
		switch {
		case !hasBucket && len(nodes) == 0:
			continue
		case !hasBucket:
			var err error
			if swapped {
				err = w.traverseLeafLeaf(path, nil, nodes)
			} else {
				err = w.traverseLeafLeaf(path, nodes, nil)
			}
			if err != nil {
				return err
			}
		case len(nodes) == 0:
			l, r := (*types.Bucket)(nil), &bucket
			if swapped {
				l, r = r, nil
			}
			descend, err := w.c.Bucket(path, idx, depth, l, r)
			if err != nil {
				return err
			}
			if descend {
				child, err := w.getTree(bucket.ID)
				if err != nil {
					return err
				}
				lt, rt := types.EmptyTree, child
				if swapped {
					lt, rt = child, types.EmptyTree
				}
				if err := w.traverseTree(path, lt, rt, depth+1); err != nil {
					return err
				}
			}
			if err := w.c.EndBucket(path, idx, depth, l, r); err != nil {
				return err
			}
		default:
			child, err := w.getTree(bucket.ID)
			if err != nil {
				return err
			}
			// The counts of this partial tree are never read.
			leafTree := types.NewLeafTree(nodes, 0, 0)
			if swapped {
				err = w.traverseTree(path, child, leafTree, depth+1)
			} else {
				err = w.traverseTree(path, leafTree, child, depth+1)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) traverseBucketBucket(path string, left, right *types.Tree, depth int) error {
	for idx := 0; idx < types.MaxBuckets; idx++ {
		lb, lok := left.Bucket(idx)
		rb, rok := right.Bucket(idx)
		if (!lok && !rok) || (lok && rok && lb.ID == rb.ID) {
			continue
		}
		var l, r *types.Bucket
		if lok {
			l = &lb
		}
		if rok {
			r = &rb
		}
		descend, err := w.c.Bucket(path, idx, depth, l, r)
		if err != nil {
			return err
		}
		if descend {
			lt, rt := types.EmptyTree, types.EmptyTree
			if lok {
				if lt, err = w.getTree(lb.ID); err != nil {
					return err
				}
			}
			if rok {
				if rt, err = w.getTree(rb.ID); err != nil {
					return err
				}
			}
			if err := w.traverseTree(path, lt, rt, depth+1); err != nil {
				return err
			}
		}
		if err := w.c.EndBucket(path, idx, depth, l, r); err != nil {
			return err
		}
	}
	return nil
}
