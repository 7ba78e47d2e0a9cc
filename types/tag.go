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

// Tag is an annotated, named pointer to a commit.
type Tag struct {
	id       hash.Hash
	name     string
	commitID hash.Hash
	message  string
	tagger   Person
}

var _ RevObject = (*Tag)(nil)

func NewTag(name string, commitID hash.Hash, message string, tagger Person) *Tag {
	t := &Tag{name: name, commitID: commitID, message: message, tagger: tagger}
	t.id = computeID(t)
	return t
}

func (t *Tag) ID() hash.Hash {
	return t.id
}

func (t *Tag) Type() ObjectType {
	return TypeTag
}

func (t *Tag) Name() string {
	return t.name
}

func (t *Tag) CommitID() hash.Hash {
	return t.commitID
}

func (t *Tag) Message() string {
	return t.message
}

func (t *Tag) Tagger() Person {
	return t.tagger
}
