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

package walk

import "github.com/rmarianski/GeoGit/hash"

// Deduplicator records the ids seen by one traversal. It is not safe for
// concurrent use; a traversal owns its Deduplicator and resets it between
// independent passes over the same objects.
type Deduplicator struct {
	visited hash.HashSet
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{visited: hash.NewHashSet()}
}

// Visit marks |id| as visited and returns whether it already was.
func (d *Deduplicator) Visit(id hash.Hash) bool {
	if d.visited.Has(id) {
		return true
	}
	d.visited.Insert(id)
	return false
}

func (d *Deduplicator) IsVisited(id hash.Hash) bool {
	return d.visited.Has(id)
}

// Remove forgets |id|.
func (d *Deduplicator) Remove(id hash.Hash) {
	d.visited.Remove(id)
}

// Size returns the number of visited ids.
func (d *Deduplicator) Size() int {
	return d.visited.Size()
}

// Reset forgets every visited id.
func (d *Deduplicator) Reset() {
	d.visited = hash.NewHashSet()
}
