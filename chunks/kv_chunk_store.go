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
	"sync/atomic"

	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/kv"
)

const chunkPrefix = "o/"

// KVStoreStats counts operations against a KVStore.
type KVStoreStats struct {
	Reads        int64
	Writes       int64
	BytesWritten int64
}

// KVStore is a ChunkStore persisting snappy-compressed chunks in a kv.Store.
type KVStore struct {
	kvs    kv.Store
	verify bool

	reads        atomic.Int64
	writes       atomic.Int64
	bytesWritten atomic.Int64
}

var _ ChunkStore = (*KVStore)(nil)

// NewKVStore returns a ChunkStore writing chunks under a reserved prefix of
// |kvs|. When |verify| is set every read checks the chunk's hash.
func NewKVStore(kvs kv.Store, verify bool) *KVStore {
	return &KVStore{kvs: kv.Prefixed(kvs, chunkPrefix), verify: verify}
}

func (s *KVStore) Get(ctx context.Context, h hash.Hash) (Chunk, error) {
	s.reads.Add(1)
	compressed, ok, err := s.kvs.Get(ctx, h[:])
	if err != nil {
		return EmptyChunk, err
	} else if !ok {
		return EmptyChunk, nil
	}
	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return EmptyChunk, errors.Wrapf(err, "decompressing chunk %s", h)
	}
	if s.verify {
		if actual := hash.Of(data); actual != h {
			return EmptyChunk, ErrCorruptChunk.New(h, actual)
		}
	}
	return NewChunkWithHash(h, data), nil
}

func (s *KVStore) Has(ctx context.Context, h hash.Hash) (bool, error) {
	return s.kvs.Has(ctx, h[:])
}

func (s *KVStore) HasMany(ctx context.Context, hashes hash.HashSet) (hash.HashSet, error) {
	absent := hash.HashSet{}
	for h := range hashes {
		ok, err := s.Has(ctx, h)
		if err != nil {
			return nil, err
		}
		if !ok {
			absent.Insert(h)
		}
	}
	return absent, nil
}

func (s *KVStore) Put(ctx context.Context, c Chunk) error {
	return s.PutMany(ctx, []Chunk{c})
}

func (s *KVStore) PutMany(ctx context.Context, cs []Chunk) error {
	pairs := make([]kv.Pair, 0, len(cs))
	for _, c := range cs {
		h := c.Hash()
		compressed := snappy.Encode(nil, c.Data())
		pairs = append(pairs, kv.Pair{Key: h[:], Value: compressed})
		s.bytesWritten.Add(int64(len(compressed)))
	}
	s.writes.Add(int64(len(cs)))
	return s.kvs.PutMany(ctx, pairs)
}

func (s *KVStore) Delete(ctx context.Context, h hash.Hash) (bool, error) {
	ok, err := s.kvs.Has(ctx, h[:])
	if err != nil || !ok {
		return false, err
	}
	return true, s.kvs.Delete(ctx, h[:])
}

func (s *KVStore) Stats() interface{} {
	return KVStoreStats{
		Reads:        s.reads.Load(),
		Writes:       s.writes.Load(),
		BytesWritten: s.bytesWritten.Load(),
	}
}

func (s *KVStore) Close() error {
	return s.kvs.Close()
}
