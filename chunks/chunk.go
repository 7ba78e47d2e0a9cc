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

// Package chunks provides the content-addressed byte storage that encoded
// objects are written to.
package chunks

import (
	"github.com/rmarianski/GeoGit/hash"
)

// Chunk is a unit of stored data in a ChunkStore. It is identified by the
// hash of its bytes.
type Chunk struct {
	r    hash.Hash
	data []byte
}

var EmptyChunk = Chunk{}

func (c Chunk) Hash() hash.Hash {
	return c.r
}

func (c Chunk) Data() []byte {
	return c.data
}

func (c Chunk) IsEmpty() bool {
	return len(c.data) == 0
}

func (c Chunk) Size() int {
	return len(c.data)
}

// NewChunk creates a new Chunk backed by data. This means that the returned
// Chunk has ownership of this slice of memory.
func NewChunk(data []byte) Chunk {
	return Chunk{hash.Of(data), data}
}

// NewChunkWithHash creates a new chunk with a known hash. The hash is not
// re-calculated or verified. This should obviously only be used in cases
// where the caller already knows the specified hash is correct.
func NewChunkWithHash(r hash.Hash, data []byte) Chunk {
	return Chunk{r, data}
}
