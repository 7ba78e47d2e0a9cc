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
	"sync"
	"sync/atomic"

	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/kv"
)

// TestStorage hands out views over one shared in-memory chunk store.
type TestStorage struct {
	once sync.Once
	kvs  *kv.MemoryStore
}

// NewView returns a ChunkStore over the shared storage that counts the
// operations issued through it.
func (t *TestStorage) NewView() *TestStoreView {
	t.once.Do(func() {
		t.kvs = kv.NewMemoryStore()
	})
	return &TestStoreView{ChunkStore: NewKVStore(t.kvs, true)}
}

// TestStoreView is a ChunkStore that counts reads, has-checks and writes.
type TestStoreView struct {
	ChunkStore
	reads  atomic.Int32
	hases  atomic.Int32
	writes atomic.Int32
}

var _ ChunkStore = (*TestStoreView)(nil)

func (s *TestStoreView) Get(ctx context.Context, h hash.Hash) (Chunk, error) {
	s.reads.Add(1)
	return s.ChunkStore.Get(ctx, h)
}

func (s *TestStoreView) Has(ctx context.Context, h hash.Hash) (bool, error) {
	s.hases.Add(1)
	return s.ChunkStore.Has(ctx, h)
}

func (s *TestStoreView) HasMany(ctx context.Context, hashes hash.HashSet) (hash.HashSet, error) {
	s.hases.Add(int32(len(hashes)))
	return s.ChunkStore.HasMany(ctx, hashes)
}

func (s *TestStoreView) Put(ctx context.Context, c Chunk) error {
	s.writes.Add(1)
	return s.ChunkStore.Put(ctx, c)
}

func (s *TestStoreView) PutMany(ctx context.Context, cs []Chunk) error {
	s.writes.Add(int32(len(cs)))
	return s.ChunkStore.PutMany(ctx, cs)
}

// Close leaves the shared storage open for other views.
func (s *TestStoreView) Close() error {
	return nil
}

func (s *TestStoreView) Reads() int {
	return int(s.reads.Load())
}

func (s *TestStoreView) Hases() int {
	return int(s.hases.Load())
}

func (s *TestStoreView) Writes() int {
	return int(s.writes.Load())
}
