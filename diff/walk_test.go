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

package diff_test

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarianski/GeoGit/diff"
	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/tree"
	"github.com/rmarianski/GeoGit/tree/treetest"
	"github.com/rmarianski/GeoGit/types"
)

// recorder records every call and checks that Tree and Bucket calls are
// balanced by their End counterparts.
type recorder struct {
	t        *testing.T
	features []diff.DiffEntry
	trees    []diff.DiffEntry
	buckets  int
	open     []string
}

func (r *recorder) Feature(left, right *diff.NodeRef) error {
	r.features = append(r.features, diff.DiffEntry{Old: left, New: right})
	return nil
}

func (r *recorder) Tree(left, right *diff.NodeRef) (bool, error) {
	e := diff.DiffEntry{Old: left, New: right}
	r.trees = append(r.trees, e)
	r.open = append(r.open, "tree:"+e.Path())
	return true, nil
}

func (r *recorder) EndTree(left, right *diff.NodeRef) error {
	r.close("tree:" + diff.DiffEntry{Old: left, New: right}.Path())
	return nil
}

func (r *recorder) Bucket(treePath string, index, depth int, left, right *types.Bucket) (bool, error) {
	r.buckets++
	r.open = append(r.open, fmt.Sprintf("bucket:%s:%d:%d", treePath, index, depth))
	return true, nil
}

func (r *recorder) EndBucket(treePath string, index, depth int, left, right *types.Bucket) error {
	r.close(fmt.Sprintf("bucket:%s:%d:%d", treePath, index, depth))
	return nil
}

func (r *recorder) close(key string) {
	require.NotEmpty(r.t, r.open)
	require.Equal(r.t, key, r.open[len(r.open)-1])
	r.open = r.open[:len(r.open)-1]
}

func (r *recorder) events() int {
	return len(r.features) + len(r.trees) + r.buckets
}

func walk(t *testing.T, odb types.ObjectDatabase, left, right *types.Tree) *recorder {
	r := &recorder{t: t}
	require.NoError(t, diff.Walk(context.Background(), odb, left, right, r))
	assert.Empty(t, r.open)
	return r
}

func paths(entries []diff.DiffEntry) []string {
	ps := make([]string, len(entries))
	for i, e := range entries {
		ps[i] = e.Path()
	}
	sort.Strings(ps)
	return ps
}

func countChanges(entries []diff.DiffEntry) map[diff.ChangeType]int {
	counts := make(map[diff.ChangeType]int)
	for _, e := range entries {
		counts[e.ChangeType()]++
	}
	return counts
}

func TestWalkIdenticalTrees(t *testing.T) {
	ctx := context.Background()
	odb := types.NewMemoryObjectStore()
	for _, n := range []int{0, 10, types.NormalizedSizeLimit, 12000} {
		tr, err := treetest.CreateFeaturesTree(ctx, odb, "f", n)
		require.NoError(t, err)
		r := walk(t, odb, tr, tr)
		assert.Equal(t, 0, r.events(), "%d entries", n)
	}

	nested, err := treetest.CreateTreesTree(ctx, odb, 40, 600, hash.Of([]byte("meta")))
	require.NoError(t, err)
	r := walk(t, odb, nested, nested)
	assert.Equal(t, 0, r.events())
}

func TestWalkFromEmptyTree(t *testing.T) {
	ctx := context.Background()
	odb := types.NewMemoryObjectStore()
	a := treetest.FeatureNodes("a", 1500)
	b := treetest.FeatureNodes("b", 2500)
	all, err := treetest.Build(ctx, odb, append(append([]types.Node(nil), a...), b...)...)
	require.NoError(t, err)
	require.False(t, all.IsLeaf())

	r := walk(t, odb, types.EmptyTree, all)
	assert.Len(t, r.features, len(a)+len(b))
	for _, e := range r.features {
		assert.Equal(t, diff.Added, e.ChangeType())
	}
	// Only the root is reported as a tree.
	require.Len(t, r.trees, 1)
	assert.Equal(t, "", r.trees[0].Path())

	r = walk(t, odb, all, types.EmptyTree)
	assert.Len(t, r.features, len(a)+len(b))
	for _, e := range r.features {
		assert.Equal(t, diff.Removed, e.ChangeType())
	}
}

func TestWalkLeafAgainstBucketed(t *testing.T) {
	ctx := context.Background()
	odb := types.NewMemoryObjectStore()
	base := treetest.FeatureNodes("f", 100)
	left, err := treetest.Build(ctx, odb, base...)
	require.NoError(t, err)
	require.True(t, left.IsLeaf())

	b := tree.NewBuilder(odb, left)
	for i := 0; i < 10; i++ {
		b.Put(treetest.ModifiedNode(base[i]))
	}
	for i := 10; i < 15; i++ {
		b.Remove(base[i].Name)
	}
	for _, n := range treetest.FeatureNodes("g", 1000) {
		b.Put(n)
	}
	right, err := b.Build(ctx)
	require.NoError(t, err)
	require.False(t, right.IsLeaf())

	entries, err := diff.Trees(ctx, odb, left, right, diff.Options{})
	require.NoError(t, err)
	assert.Equal(t, map[diff.ChangeType]int{diff.Modified: 10, diff.Removed: 5, diff.Added: 1000}, countChanges(entries))

	reversed, err := diff.Trees(ctx, odb, right, left, diff.Options{})
	require.NoError(t, err)
	assert.Equal(t, map[diff.ChangeType]int{diff.Modified: 10, diff.Added: 5, diff.Removed: 1000}, countChanges(reversed))
	assert.Equal(t, paths(entries), paths(reversed))
}

func TestWalkBucketedTrees(t *testing.T) {
	ctx := context.Background()
	odb := types.NewMemoryObjectStore()
	base := treetest.FeatureNodes("f", 5000)
	left, err := treetest.Build(ctx, odb, base...)
	require.NoError(t, err)

	b := tree.NewBuilder(odb, left)
	b.Put(treetest.ModifiedNode(base[42]))
	b.Remove(base[4242].Name)
	b.Put(treetest.FeatureNode("new", 1))
	right, err := b.Build(ctx)
	require.NoError(t, err)

	entries, err := diff.Trees(ctx, odb, left, right, diff.Options{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"f42", "f4242", "new1"}, paths(entries))
	assert.Equal(t, map[diff.ChangeType]int{diff.Modified: 1, diff.Removed: 1, diff.Added: 1}, countChanges(entries))
}

func TestWalkTypeChange(t *testing.T) {
	ctx := context.Background()
	odb := types.NewMemoryObjectStore()
	feature := treetest.FeatureNode("x", 0)
	left, err := treetest.Build(ctx, odb, feature)
	require.NoError(t, err)

	sub, err := treetest.CreateFeaturesTree(ctx, odb, "inner", 3)
	require.NoError(t, err)
	right, err := treetest.Build(ctx, odb, types.Node{Name: feature.Name, ID: sub.ID(), Type: types.TreeNode})
	require.NoError(t, err)

	entries, err := diff.Trees(ctx, odb, left, right, diff.Options{ReportTrees: true})
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, diff.Removed, entries[0].ChangeType())
	assert.False(t, entries[0].IsTree())
	assert.Equal(t, diff.Added, entries[1].ChangeType())
	assert.True(t, entries[1].IsTree())
	for _, e := range entries[2:] {
		assert.Equal(t, diff.Added, e.ChangeType())
		assert.True(t, tree.IsChild("x0", e.Path()))
	}
}

func TestWalkNestedTrees(t *testing.T) {
	ctx := context.Background()
	odb := types.NewMemoryObjectStore()
	meta := hash.Of([]byte("meta"))
	left, err := treetest.CreateTreesTree(ctx, odb, 10, 800, meta)
	require.NoError(t, err)

	right, err := tree.Update(ctx, odb, left, "subtree3", func(b *tree.Builder) {
		b.Put(treetest.ModifiedNode(treetest.FeatureNode("subtree3-f", 7)))
		b.Remove("subtree3-f8")
	})
	require.NoError(t, err)

	r := walk(t, odb, left, right)
	require.Len(t, r.trees, 2)
	assert.Equal(t, "subtree3", r.trees[1].Path())
	assert.Equal(t, meta, r.trees[1].New.MetadataID)
	assert.Equal(t, []string{"subtree3/subtree3-f7", "subtree3/subtree3-f8"}, paths(r.features))
}

func TestWalkCanceled(t *testing.T) {
	ctx := context.Background()
	odb := types.NewMemoryObjectStore()
	big, err := treetest.CreateFeaturesTree(ctx, odb, "f", 5000)
	require.NoError(t, err)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	err = diff.Walk(canceled, odb, types.EmptyTree, big, diff.NoopConsumer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWalkMissingObject(t *testing.T) {
	ctx := context.Background()
	odb := types.NewMemoryObjectStore()
	sub, err := treetest.CreateFeaturesTree(ctx, odb, "f", 5)
	require.NoError(t, err)
	root, err := treetest.Build(ctx, odb, types.Node{Name: "sub", ID: sub.ID(), Type: types.TreeNode})
	require.NoError(t, err)

	empty := types.NewMemoryObjectStore()
	err = diff.Walk(ctx, empty, types.EmptyTree, root, diff.NoopConsumer{})
	assert.True(t, types.ErrObjectNotFound.Is(err))
}
