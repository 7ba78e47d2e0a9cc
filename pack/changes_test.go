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

package pack

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarianski/GeoGit/diff"
	"github.com/rmarianski/GeoGit/tree/treetest"
	"github.com/rmarianski/GeoGit/types"
	"github.com/rmarianski/GeoGit/types/typestest"
)

func changedTrees(t *testing.T) (types.ObjectDatabase, *types.Tree, *types.Tree) {
	ctx := context.Background()
	odb := types.NewMemoryObjectStore()

	a1, err := typestest.StoreFeatures(ctx, odb, "a-", 30, 1)
	require.NoError(t, err)
	a2, err := typestest.StoreFeatures(ctx, odb, "a-", 30, 2)
	require.NoError(t, err)
	aChanged := append(append([]types.Node(nil), a2[:10]...), a1[10:]...)

	subtreeNode := func(name string, nodes []types.Node) types.Node {
		st, err := treetest.Build(ctx, odb, nodes...)
		require.NoError(t, err)
		return types.Node{Name: name, ID: st.ID(), Type: types.TreeNode}
	}
	b, err := typestest.StoreFeatures(ctx, odb, "b-", 20, 1)
	require.NoError(t, err)
	c, err := typestest.StoreFeatures(ctx, odb, "c-", 5, 1)
	require.NoError(t, err)

	left, err := treetest.Build(ctx, odb, subtreeNode("a", a1), subtreeNode("b", b))
	require.NoError(t, err)
	right, err := treetest.Build(ctx, odb, subtreeNode("a", aChanged), subtreeNode("c", c))
	require.NoError(t, err)
	return odb, left, right
}

func ingestChanges(t *testing.T, data []byte, dst types.ObjectDatabase) ([]diff.DiffEntry, IngestResult) {
	var got []diff.DiffEntry
	res, err := NewReader(dst, Options{BatchSize: 4}).Ingest(context.Background(), bytes.NewReader(data), func(e diff.DiffEntry) error {
		if e.New != nil {
			ok, err := dst.Exists(context.Background(), e.New.ID)
			require.NoError(t, err)
			assert.True(t, ok, "%s ingested before its object", e.Path())
		}
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)
	return got, res
}

func TestChangesPack(t *testing.T) {
	ctx := context.Background()
	odb, left, right := changedTrees(t)
	entries, err := diff.Trees(ctx, odb, left, right, diff.Options{})
	require.NoError(t, err)
	require.Len(t, entries, 10+20+5)

	for _, c := range []Compression{NoCompression, ZstdCompression} {
		var buf bytes.Buffer
		n, err := NewWriter(odb, Options{Compression: c}).WriteChanges(ctx, &buf, entries, true)
		require.NoError(t, err)
		assert.Equal(t, len(entries), n)

		dst := types.NewMemoryObjectStore()
		got, res := ingestChanges(t, buf.Bytes(), dst)
		assert.Equal(t, entries, got)
		assert.Equal(t, len(entries), res.Entries)
		assert.True(t, res.Filtered)
		// 15 new features and their feature type, sent once.
		assert.Equal(t, 16, res.Inserted)
		assert.Zero(t, res.Existing)

		pt, err := types.GetFeatureType(ctx, dst, typestest.PointType.ID())
		require.NoError(t, err)
		assert.Equal(t, "point", pt.Name())
	}
}

func TestTreeChangesPack(t *testing.T) {
	ctx := context.Background()
	odb, left, right := changedTrees(t)
	w := NewWriter(odb, Options{})

	var buf bytes.Buffer
	n, err := w.WriteTreeChanges(ctx, &buf, left, right, diff.Options{})
	require.NoError(t, err)
	assert.Equal(t, 35, n)
	_, res := ingestChanges(t, buf.Bytes(), types.NewMemoryObjectStore())
	assert.False(t, res.Filtered)

	opts := diff.Options{PathFilters: []string{"c"}}
	expected, err := diff.Trees(ctx, odb, left, right, opts)
	require.NoError(t, err)
	require.Len(t, expected, 5)

	buf.Reset()
	n, err = w.WriteTreeChanges(ctx, &buf, left, right, opts)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	got, res := ingestChanges(t, buf.Bytes(), types.NewMemoryObjectStore())
	assert.Equal(t, expected, got)
	assert.True(t, res.Filtered)

	_, err = w.WriteTreeChanges(ctx, &buf, left, right, diff.Options{PathFilters: []string{"/c"}})
	assert.True(t, diff.ErrInvalidPathFilter.Is(err))
}
