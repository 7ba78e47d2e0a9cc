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

// Package tree builds, reads and navigates the sharded trees that hold the
// contents of a repository revision.
package tree

import (
	"context"

	"github.com/google/btree"
	"github.com/sirupsen/logrus"

	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/types"
)

type change struct {
	name    string
	node    types.Node
	removed bool
}

func lessChange(a, b change) bool {
	return a.name < b.name
}

type counts struct {
	entries  uint64
	features uint64
	subtrees uint64
}

func (c counts) add(o counts) counts {
	return counts{c.entries + o.entries, c.features + o.features, c.subtrees + o.subtrees}
}

func (c counts) sub(o counts) counts {
	return counts{c.entries - o.entries, c.features - o.features, c.subtrees - o.subtrees}
}

func treeCounts(t *types.Tree) counts {
	return counts{t.EntryCount(), t.FeatureCount(), t.SubtreeCount()}
}

// Builder accumulates changes to a tree and writes the resulting tree on
// Build. Only trees on the path from the root to a changed entry are
// written; every other subtree and bucket is shared with the original.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	odb      types.ObjectDatabase
	original *types.Tree
	changes  *btree.BTreeG[change]

	written   []types.RevObject
	nodeCache map[hash.Hash]counts
}

// NewBuilder returns a Builder that applies changes on top of |original|. A
// nil |original| starts from the empty tree.
func NewBuilder(odb types.ObjectDatabase, original *types.Tree) *Builder {
	if original == nil {
		original = types.EmptyTree
	}
	return &Builder{
		odb:      odb,
		original: original,
		changes:  btree.NewG[change](32, lessChange),
	}
}

// Put adds |node|, replacing any entry with the same name regardless of its
// type.
func (b *Builder) Put(node types.Node) *Builder {
	b.changes.ReplaceOrInsert(change{name: node.Name, node: node})
	return b
}

// Remove removes the entry called |name|. Removing an absent entry is a
// no-op.
func (b *Builder) Remove(name string) *Builder {
	b.changes.ReplaceOrInsert(change{name: name, removed: true})
	return b
}

// NumChanges returns the number of pending changes.
func (b *Builder) NumChanges() int {
	return b.changes.Len()
}

// Build writes the new tree and returns it. The Builder can keep being used
// afterwards; its changes remain relative to the original tree.
func (b *Builder) Build(ctx context.Context) (*types.Tree, error) {
	pending := make([]change, 0, b.changes.Len())
	b.changes.Ascend(func(c change) bool {
		pending = append(pending, c)
		return true
	})

	b.written = nil
	b.nodeCache = make(map[hash.Hash]counts)
	t, err := b.build(ctx, b.original, pending, 0)
	if err != nil {
		return nil, err
	}
	if len(b.written) > 0 {
		if _, err := b.odb.PutAll(ctx, b.written, nil); err != nil {
			return nil, err
		}
	}
	logrus.WithFields(logrus.Fields{
		"tree":    t.ID().String(),
		"changes": len(pending),
		"written": len(b.written),
	}).Trace("built tree")
	b.written = nil
	return t, nil
}

// build applies |changes|, sorted by name, to |original|, a tree at bucket
// depth |depth|.
func (b *Builder) build(ctx context.Context, original *types.Tree, changes []change, depth int) (*types.Tree, error) {
	if len(changes) == 0 {
		return original, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if original.IsLeaf() {
		return b.fromNodes(ctx, mergeNodes(original.Nodes(), changes), depth)
	}

	byBucket := make(map[int][]change)
	for _, c := range changes {
		idx := BucketIndex(c.name, depth)
		byBucket[idx] = append(byBucket[idx], c)
	}

	total := treeCounts(original)
	children := make(map[int]*types.Tree, types.MaxBuckets)
	for idx, bucketChanges := range byBucket {
		oldChild := types.EmptyTree
		if bucket, ok := original.Bucket(idx); ok {
			var err error
			oldChild, err = types.GetTree(ctx, b.odb, bucket.ID)
			if err != nil {
				return nil, err
			}
		}
		newChild, err := b.build(ctx, oldChild, bucketChanges, depth+1)
		if err != nil {
			return nil, err
		}
		total = total.sub(treeCounts(oldChild)).add(treeCounts(newChild))
		children[idx] = newChild
	}

	if total.entries <= types.NormalizedSizeLimit {
		nodes, err := b.collectNodes(ctx, original, children)
		if err != nil {
			return nil, err
		}
		return b.write(types.NewLeafTree(nodes, total.features, total.subtrees)), nil
	}

	buckets := make([]types.Bucket, 0, types.MaxBuckets)
	for _, bucket := range original.Buckets() {
		if _, changed := children[bucket.Index]; !changed {
			buckets = append(buckets, bucket)
		}
	}
	for idx, child := range children {
		if !child.IsEmpty() {
			buckets = append(buckets, types.Bucket{Index: idx, ID: child.ID()})
		}
	}
	return b.write(types.NewBucketTree(buckets, total.entries, total.features, total.subtrees)), nil
}

// fromNodes builds the canonical tree for |nodes| at |depth|.
func (b *Builder) fromNodes(ctx context.Context, nodes []types.Node, depth int) (*types.Tree, error) {
	if len(nodes) <= types.NormalizedSizeLimit || depth >= MaxDepth {
		var total counts
		for _, n := range nodes {
			c, err := b.nodeCounts(ctx, n)
			if err != nil {
				return nil, err
			}
			total = total.add(c)
		}
		if len(nodes) == 0 {
			return types.EmptyTree, nil
		}
		return b.write(types.NewLeafTree(nodes, total.features, total.subtrees)), nil
	}

	partitioned := make([][]types.Node, types.MaxBuckets)
	for _, n := range nodes {
		idx := BucketIndex(n.Name, depth)
		partitioned[idx] = append(partitioned[idx], n)
	}
	var total counts
	var buckets []types.Bucket
	for idx, bucketNodes := range partitioned {
		if len(bucketNodes) == 0 {
			continue
		}
		child, err := b.fromNodes(ctx, bucketNodes, depth+1)
		if err != nil {
			return nil, err
		}
		total = total.add(treeCounts(child))
		buckets = append(buckets, types.Bucket{Index: idx, ID: child.ID()})
	}
	return b.write(types.NewBucketTree(buckets, total.entries, total.features, total.subtrees)), nil
}

// collectNodes gathers every entry of a bucketed tree whose buckets in
// |replaced| have been rebuilt.
func (b *Builder) collectNodes(ctx context.Context, original *types.Tree, replaced map[int]*types.Tree) ([]types.Node, error) {
	var nodes []types.Node
	collect := func(t *types.Tree) error {
		return Iterate(ctx, b.odb, t, Children, func(_ string, n types.Node) error {
			nodes = append(nodes, n)
			return nil
		})
	}
	for _, bucket := range original.Buckets() {
		if _, ok := replaced[bucket.Index]; ok {
			continue
		}
		child, err := types.GetTree(ctx, b.odb, bucket.ID)
		if err != nil {
			return nil, err
		}
		if err := collect(child); err != nil {
			return nil, err
		}
	}
	for _, child := range replaced {
		if err := collect(child); err != nil {
			return nil, err
		}
	}
	return nodes, nil
}

// nodeCounts returns the contribution of |n| to the counts of the tree
// holding it.
func (b *Builder) nodeCounts(ctx context.Context, n types.Node) (counts, error) {
	if !n.IsTree() {
		return counts{entries: 1, features: 1}, nil
	}
	if c, ok := b.nodeCache[n.ID]; ok {
		return c, nil
	}
	sub, err := types.GetTree(ctx, b.odb, n.ID)
	if err != nil {
		return counts{}, err
	}
	c := counts{entries: 1, features: sub.FeatureCount(), subtrees: 1 + sub.SubtreeCount()}
	b.nodeCache[n.ID] = c
	return c, nil
}

func (b *Builder) write(t *types.Tree) *types.Tree {
	if t.ID() != types.EmptyTreeID {
		b.written = append(b.written, t)
	}
	return t
}

// mergeNodes applies |changes| to |nodes|. Both inputs are sorted by name.
func mergeNodes(nodes []types.Node, changes []change) []types.Node {
	out := make([]types.Node, 0, len(nodes)+len(changes))
	i, j := 0, 0
	for i < len(nodes) || j < len(changes) {
		switch {
		case j == len(changes) || (i < len(nodes) && nodes[i].Name < changes[j].name):
			out = append(out, nodes[i])
			i++
		case i == len(nodes) || changes[j].name < nodes[i].Name:
			if !changes[j].removed {
				out = append(out, changes[j].node)
			}
			j++
		default:
			if !changes[j].removed {
				out = append(out, changes[j].node)
			}
			i++
			j++
		}
	}
	return out
}
