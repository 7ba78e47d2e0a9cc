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

package chunks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/kv"
)

type ChunkStoreTestSuite struct {
	suite.Suite
	storage *TestStorage
}

func TestChunkStoreSuite(t *testing.T) {
	suite.Run(t, &ChunkStoreTestSuite{})
}

func (suite *ChunkStoreTestSuite) SetupTest() {
	suite.storage = &TestStorage{}
}

func (suite *ChunkStoreTestSuite) TestChunkStorePut() {
	ctx := context.Background()
	store := suite.storage.NewView()
	c := NewChunk([]byte("abc"))
	suite.NoError(store.Put(ctx, c))

	read, err := store.Get(ctx, c.Hash())
	suite.NoError(err)
	suite.Equal("abc", string(read.Data()))
	suite.Equal(c.Hash(), read.Hash())

	// Another view over the same storage sees the chunk.
	other := suite.storage.NewView()
	ok, err := other.Has(ctx, c.Hash())
	suite.NoError(err)
	suite.True(ok)
	suite.Equal(1, store.Writes())
	suite.Equal(1, other.Hases())
}

func (suite *ChunkStoreTestSuite) TestChunkStoreGetNonExisting() {
	store := suite.storage.NewView()
	h, err := hash.Parse("11111111111111111111111111111111")
	suite.Require().NoError(err)
	c, err := store.Get(context.Background(), h)
	suite.NoError(err)
	suite.True(c.IsEmpty())
}

func (suite *ChunkStoreTestSuite) TestChunkStoreHasMany() {
	ctx := context.Background()
	store := suite.storage.NewView()
	present := NewChunk([]byte("present"))
	absent := NewChunk([]byte("absent"))
	suite.NoError(store.PutMany(ctx, []Chunk{present}))

	missing, err := store.HasMany(ctx, hash.NewHashSet(present.Hash(), absent.Hash()))
	suite.NoError(err)
	suite.Equal(hash.NewHashSet(absent.Hash()), missing)
}

func (suite *ChunkStoreTestSuite) TestChunkStoreDelete() {
	ctx := context.Background()
	store := suite.storage.NewView()
	c := NewChunk([]byte("doomed"))
	suite.NoError(store.Put(ctx, c))

	deleted, err := store.Delete(ctx, c.Hash())
	suite.NoError(err)
	suite.True(deleted)

	deleted, err = store.Delete(ctx, c.Hash())
	suite.NoError(err)
	suite.False(deleted)
}

func TestKVStoreDetectsCorruption(t *testing.T) {
	ctx := context.Background()
	kvs := kv.NewMemoryStore()
	store := NewKVStore(kvs, true)

	c := NewChunk([]byte("original"))
	forged := NewChunkWithHash(c.Hash(), []byte("tampered"))
	require.NoError(t, store.Put(ctx, forged))

	_, err := store.Get(ctx, c.Hash())
	assert.True(t, ErrCorruptChunk.Is(err))

	stats := store.Stats().(KVStoreStats)
	assert.Equal(t, int64(1), stats.Writes)
	assert.Equal(t, int64(1), stats.Reads)
}
