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

	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/tree/treetest"
	"github.com/rmarianski/GeoGit/types"
	"github.com/rmarianski/GeoGit/types/typestest"
	"github.com/rmarianski/GeoGit/walk"
)

func subtree(t *testing.T, odb types.ObjectDatabase, name string, n, version int) types.Node {
	ctx := context.Background()
	nodes, err := typestest.StoreFeatures(ctx, odb, name+"-", n, version)
	require.NoError(t, err)
	st, err := treetest.Build(ctx, odb, nodes...)
	require.NoError(t, err)
	return types.Node{Name: name, ID: st.ID(), Type: types.TreeNode, MetadataID: typestest.PointType.ID()}
}

func commit(t *testing.T, odb types.ObjectDatabase, message string, children []types.Node, parents ...*types.Commit) *types.Commit {
	ctx := context.Background()
	root, err := treetest.Build(ctx, odb, children...)
	require.NoError(t, err)
	var ids []hash.Hash
	for _, p := range parents {
		ids = append(ids, p.ID())
	}
	c, err := typestest.Commit(ctx, odb, root.ID(), message, ids...)
	require.NoError(t, err)
	return c
}

func closure(t *testing.T, odb types.ObjectDatabase, roots ...hash.Hash) hash.HashSet {
	ids, err := walk.Closure(context.Background(), odb, roots, walk.Options{TraverseCommits: true})
	require.NoError(t, err)
	return hash.HashSlice(ids).HashSet()
}

func minus(set hash.HashSet, others ...hash.HashSet) hash.HashSet {
	out := hash.NewHashSet()
	for id := range set {
		excluded := false
		for _, o := range others {
			if o.Has(id) {
				excluded = true
				break
			}
		}
		if !excluded {
			out.Insert(id)
		}
	}
	return out
}

// history stores c1 <- c2 and a side branch c1 <- c3. c3 shares subtree
// "a" with c1 but not with c2.
type history struct {
	odb        *types.ObjectStore
	c1, c2, c3 *types.Commit
}

func newHistory(t *testing.T) history {
	odb := types.NewMemoryObjectStore()
	a1 := subtree(t, odb, "a", 600, 1)
	b1 := subtree(t, odb, "b", 40, 1)
	c1 := commit(t, odb, "first", []types.Node{a1, b1})
	c2 := commit(t, odb, "second", []types.Node{subtree(t, odb, "a", 600, 2), b1}, c1)
	c3 := commit(t, odb, "third", []types.Node{a1, subtree(t, odb, "b", 40, 3)}, c1)
	return history{odb: odb, c1: c1, c2: c2, c3: c3}
}

func writeObjects(t *testing.T, odb types.ObjectDatabase, opts Options, want, have []hash.Hash) ([]byte, int) {
	var buf bytes.Buffer
	n, err := NewWriter(odb, opts).WriteObjects(context.Background(), &buf, want, have, true, nil)
	require.NoError(t, err)
	return buf.Bytes(), n
}

func TestObjectPackRoundTrip(t *testing.T) {
	for _, c := range []Compression{NoCompression, ZstdCompression} {
		t.Run(c.String(), func(t *testing.T) {
			ctx := context.Background()
			h := newHistory(t)
			data, n := writeObjects(t, h.odb, Options{Compression: c}, []hash.Hash{h.c2.ID()}, nil)
			expected := closure(t, h.odb, h.c2.ID())
			assert.Equal(t, expected.Size(), n)
			assert.Equal(t, byte(c), data[len(magic)+1])

			dst := types.NewMemoryObjectStore()
			res, err := NewReader(dst, Options{BatchSize: 7}).Ingest(ctx, bytes.NewReader(data), nil)
			require.NoError(t, err)
			assert.Equal(t, expected.Size(), res.Inserted)
			assert.Zero(t, res.Existing)
			assert.False(t, res.Filtered)

			for id := range expected {
				want, err := h.odb.Get(ctx, id)
				require.NoError(t, err)
				got, err := dst.Get(ctx, id)
				require.NoError(t, err)
				assert.Equal(t, types.Encode(want), types.Encode(got))
			}

			res, err = NewReader(dst, Options{}).Ingest(ctx, bytes.NewReader(data), nil)
			require.NoError(t, err)
			assert.Zero(t, res.Inserted)
			assert.Equal(t, expected.Size(), res.Existing)
		})
	}
}

func TestObjectPackOrder(t *testing.T) {
	ctx := context.Background()
	h := newHistory(t)
	data, _ := writeObjects(t, h.odb, Options{}, []hash.Hash{h.c2.ID()}, nil)

	// Storing objects one at a time in pack order never stores an object
	// before the objects it refers to.
	dst := types.NewMemoryObjectStore()
	_, err := NewReader(dst, Options{BatchSize: 1}).Ingest(ctx, bytes.NewReader(data), nil)
	require.NoError(t, err)

	cr, err := newChunkReader(bytes.NewReader(data))
	require.NoError(t, err)
	seen := hash.NewHashSet()
	for {
		kind, err := cr.readKind()
		require.NoError(t, err)
		if kind == chunkEnd {
			break
		}
		require.Equal(t, chunkObject, kind)
		obj, err := cr.readObject()
		require.NoError(t, err)
		for _, ref := range walk.References(obj, walk.Options{TraverseCommits: true}) {
			assert.True(t, seen.Has(ref), "%s written before %s", obj.ID(), ref)
		}
		seen.Insert(obj.ID())
	}
}

func TestObjectPackHave(t *testing.T) {
	ctx := context.Background()
	h := newHistory(t)
	dst := types.NewMemoryObjectStore()

	data, _ := writeObjects(t, h.odb, Options{}, []hash.Hash{h.c2.ID()}, nil)
	_, err := NewReader(dst, Options{}).Ingest(ctx, bytes.NewReader(data), nil)
	require.NoError(t, err)

	// The receiver holds c1 only as an ancestor of c2, yet nothing of c1
	// that c3 shares is sent again.
	data, n := writeObjects(t, h.odb, Options{}, []hash.Hash{h.c3.ID()}, []hash.Hash{h.c2.ID()})
	expected := minus(closure(t, h.odb, h.c3.ID()), closure(t, h.odb, h.c2.ID()))
	assert.Equal(t, expected.Size(), n)

	res, err := NewReader(dst, Options{}).Ingest(ctx, bytes.NewReader(data), nil)
	require.NoError(t, err)
	assert.Equal(t, expected.Size(), res.Inserted)
	assert.Zero(t, res.Existing)

	for id := range closure(t, h.odb, h.c3.ID()) {
		ok, err := dst.Exists(ctx, id)
		require.NoError(t, err)
		assert.True(t, ok, "missing %s", id)
	}
}

func TestObjectPackDedupAcrossPacks(t *testing.T) {
	h := newHistory(t)
	dedup := walk.NewDeduplicator()
	w := NewWriter(h.odb, Options{})

	var buf bytes.Buffer
	n1, err := w.WriteObjects(context.Background(), &buf, []hash.Hash{h.c2.ID()}, nil, true, dedup)
	require.NoError(t, err)
	n2, err := w.WriteObjects(context.Background(), &buf, []hash.Hash{h.c3.ID()}, nil, true, dedup)
	require.NoError(t, err)

	all := closure(t, h.odb, h.c2.ID(), h.c3.ID())
	assert.Equal(t, all.Size(), n1+n2)
	assert.Equal(t, all.Size(), dedup.Size())
}

func TestObjectPackErrors(t *testing.T) {
	ctx := context.Background()
	h := newHistory(t)
	w := NewWriter(h.odb, Options{})
	var buf bytes.Buffer

	_, err := w.WriteObjects(ctx, &buf, nil, nil, true, nil)
	assert.True(t, ErrIncompatibleWantHave.Is(err))

	_, err = w.WriteObjects(ctx, &buf, []hash.Hash{h.c2.ID()}, []hash.Hash{h.c1.ID(), h.c2.ID()}, true, nil)
	assert.True(t, ErrIncompatibleWantHave.Is(err))

	missing := hash.Of([]byte("missing"))
	_, err = w.WriteObjects(ctx, &buf, []hash.Hash{missing}, nil, true, nil)
	assert.True(t, ErrWantNotFound.Is(err))
	assert.Zero(t, buf.Len())

	n, err := w.WriteObjects(ctx, &buf, []hash.Hash{h.c1.ID()}, []hash.Hash{missing}, true, nil)
	require.NoError(t, err)
	assert.Equal(t, closure(t, h.odb, h.c1.ID()).Size(), n)
}

func TestIngestCorruptPack(t *testing.T) {
	ctx := context.Background()
	h := newHistory(t)

	for _, c := range []Compression{NoCompression, ZstdCompression} {
		data, _ := writeObjects(t, h.odb, Options{Compression: c}, []hash.Hash{h.c1.ID()}, nil)
		for _, cut := range []int{0, 3, len(magic) + 2, len(data) / 2, len(data) - 1} {
			_, err := NewReader(types.NewMemoryObjectStore(), Options{}).Ingest(ctx, bytes.NewReader(data[:cut]), nil)
			assert.True(t, ErrCorruptPack.Is(err), "%s cut at %d: %v", c, cut, err)
		}
	}

	data, _ := writeObjects(t, h.odb, Options{}, []hash.Hash{h.c1.ID()}, nil)
	flipped := append([]byte(nil), data...)
	// The last object ends right before the two byte end chunk.
	flipped[len(flipped)-3] ^= 0xff
	_, err := NewReader(types.NewMemoryObjectStore(), Options{}).Ingest(ctx, bytes.NewReader(flipped), nil)
	assert.True(t, ErrCorruptPack.Is(err))

	badMagic := append([]byte("NOPE"), data[len(magic):]...)
	_, err = NewReader(types.NewMemoryObjectStore(), Options{}).Ingest(ctx, bytes.NewReader(badMagic), nil)
	assert.True(t, ErrCorruptPack.Is(err))

	badVersion := append([]byte(nil), data...)
	badVersion[len(magic)] = 9
	_, err = NewReader(types.NewMemoryObjectStore(), Options{}).Ingest(ctx, bytes.NewReader(badVersion), nil)
	assert.True(t, ErrCorruptPack.Is(err))
}

func TestIngestTrailingBytes(t *testing.T) {
	ctx := context.Background()
	h := newHistory(t)

	for _, c := range []Compression{NoCompression, ZstdCompression} {
		data, _ := writeObjects(t, h.odb, Options{Compression: c}, []hash.Hash{h.c1.ID()}, nil)
		_, err := NewReader(types.NewMemoryObjectStore(), Options{}).Ingest(ctx, bytes.NewReader(data), nil)
		require.NoError(t, err, "%s", c)

		for _, extra := range [][]byte{{0}, []byte("more data")} {
			padded := append(append([]byte(nil), data...), extra...)
			_, err := NewReader(types.NewMemoryObjectStore(), Options{}).Ingest(ctx, bytes.NewReader(padded), nil)
			assert.True(t, ErrCorruptPack.Is(err), "%s with %d extra bytes: %v", c, len(extra), err)
		}
	}
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	h := newHistory(t)
	dst := types.NewMemoryObjectStore()
	opts := TransferOptions{Options: Options{Compression: ZstdCompression}, TraverseCommits: true}

	res, err := Transfer(ctx, h.odb, dst, []hash.Hash{h.c2.ID()}, nil, opts)
	require.NoError(t, err)
	assert.Equal(t, closure(t, h.odb, h.c2.ID()).Size(), res.Inserted)

	res, err = Transfer(ctx, h.odb, dst, []hash.Hash{h.c3.ID()}, []hash.Hash{h.c2.ID()}, opts)
	require.NoError(t, err)
	assert.Zero(t, res.Existing)
	assert.Equal(t, minus(closure(t, h.odb, h.c3.ID()), closure(t, h.odb, h.c2.ID())).Size(), res.Inserted)

	_, err = Transfer(ctx, h.odb, dst, []hash.Hash{hash.Of([]byte("missing"))}, nil, opts)
	assert.True(t, ErrWantNotFound.Is(err))
}
