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

	"gopkg.in/src-d/go-errors.v1"

	"github.com/rmarianski/GeoGit/hash"
)

// ErrCorruptChunk is returned when the bytes stored under a hash do not hash
// to that value.
var ErrCorruptChunk = errors.NewKind("chunk %s is corrupt: stored data hashes to %s")

// ChunkStore is the core storage abstraction for encoded objects. Chunks are
// immutable and addressed by the hash of their contents, which makes writing
// the same chunk twice a no-op.
type ChunkStore interface {
	// Get gets the Chunk for the value of the hash in the store. If the hash
	// is absent from the store EmptyChunk is returned.
	Get(ctx context.Context, h hash.Hash) (Chunk, error)

	// Has returns true if the chunk is in the store.
	Has(ctx context.Context, h hash.Hash) (bool, error)

	// HasMany returns the subset of |hashes| that are absent from the store.
	HasMany(ctx context.Context, hashes hash.HashSet) (absent hash.HashSet, err error)

	// Put caches c in the ChunkSource. Puts of a chunk already present are
	// ignored.
	Put(ctx context.Context, c Chunk) error

	// PutMany writes all |cs| in one batch.
	PutMany(ctx context.Context, cs []Chunk) error

	// Delete removes the chunk for |h|, returning whether it was present.
	Delete(ctx context.Context, h hash.Hash) (bool, error)

	// Stats may return some kind of struct that reports statistics about the
	// ChunkStore instance. The type is implementation-dependent, and impls
	// may return nil
	Stats() interface{}

	Close() error
}
