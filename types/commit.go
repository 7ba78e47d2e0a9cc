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

package types

import (
	"github.com/rmarianski/GeoGit/hash"
)

// Commit records a snapshot of the repository's root tree along with the
// commits it was derived from. A commit with two or more parents is a merge.
type Commit struct {
	id        hash.Hash
	treeID    hash.Hash
	parents   []hash.Hash
	author    Person
	committer Person
	message   string
}

var _ RevObject = (*Commit)(nil)

// NewCommit returns a new Commit. The order of |parents| is significant; the
// first parent is the commit the change was made on top of.
func NewCommit(treeID hash.Hash, parents []hash.Hash, author, committer Person, message string) *Commit {
	c := &Commit{
		treeID:    treeID,
		parents:   append([]hash.Hash(nil), parents...),
		author:    author,
		committer: committer,
		message:   message,
	}
	c.id = computeID(c)
	return c
}

func (c *Commit) ID() hash.Hash {
	return c.id
}

func (c *Commit) Type() ObjectType {
	return TypeCommit
}

func (c *Commit) TreeID() hash.Hash {
	return c.treeID
}

// Parents returns a copy of the commit's parent ids.
func (c *Commit) Parents() []hash.Hash {
	return append([]hash.Hash(nil), c.parents...)
}

// ParentN returns the |i|th parent, if the commit has one.
func (c *Commit) ParentN(i int) (hash.Hash, bool) {
	if i < 0 || i >= len(c.parents) {
		return hash.Hash{}, false
	}
	return c.parents[i], true
}

func (c *Commit) NumParents() int {
	return len(c.parents)
}

func (c *Commit) Author() Person {
	return c.author
}

func (c *Commit) Committer() Person {
	return c.committer
}

func (c *Commit) Message() string {
	return c.message
}
