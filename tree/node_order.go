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

package tree

import (
	"github.com/zeebo/blake3"
)

const (
	bitsPerLevel = 5

	// MaxDepth is the deepest bucket level. Entries of a tree at MaxDepth are
	// always kept in leaf form since there are no more name hash bits left
	// to partition them by.
	MaxDepth = 256 / bitsPerLevel
)

// BucketIndex returns the bucket that the entry called |name| belongs to in a
// bucketed tree at |depth|. Each depth consumes the next 5 bits of the name's
// blake3 digest, so entries sharing a bucket at one depth are spread over
// distinct buckets at the next.
func BucketIndex(name string, depth int) int {
	sum := blake3.Sum256([]byte(name))
	return bucketIndexOf(sum[:], depth)
}

func bucketIndexOf(sum []byte, depth int) int {
	if depth < 0 || depth >= MaxDepth {
		panic("tree: bucket depth out of range")
	}
	idx := 0
	start := depth * bitsPerLevel
	for bit := start; bit < start+bitsPerLevel; bit++ {
		b := (sum[bit/8] >> (7 - uint(bit%8))) & 1
		idx = idx<<1 | int(b)
	}
	return idx
}

// bucketIndexFunc memoizes the digest of one name for lookups at several
// depths.
func bucketIndexFunc(name string) func(depth int) int {
	sum := blake3.Sum256([]byte(name))
	return func(depth int) int {
		return bucketIndexOf(sum[:], depth)
	}
}
