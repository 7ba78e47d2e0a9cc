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

package diff

import (
	"fmt"

	"github.com/rmarianski/GeoGit/types"
)

// ChangeType classifies a DiffEntry.
type ChangeType int

const (
	Added ChangeType = iota
	Removed
	Modified
)

func (ct ChangeType) String() string {
	switch ct {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "modified"
	}
}

// DiffEntry is a single difference between two trees. Old is nil for an
// addition and New is nil for a removal.
type DiffEntry struct {
	Old *NodeRef
	New *NodeRef
}

func (e DiffEntry) ChangeType() ChangeType {
	switch {
	case e.Old == nil:
		return Added
	case e.New == nil:
		return Removed
	default:
		return Modified
	}
}

// Path returns the path of the changed entry.
func (e DiffEntry) Path() string {
	return pathOf(e.Old, e.New)
}

// IsTree returns whether the entry refers to a tree.
func (e DiffEntry) IsTree() bool {
	if e.New != nil {
		return e.New.IsTree()
	}
	return e.Old.IsTree()
}

func (e DiffEntry) String() string {
	switch e.ChangeType() {
	case Added:
		return fmt.Sprintf("A %s %s", e.Path(), e.New.ID.Abbreviated())
	case Removed:
		return fmt.Sprintf("D %s %s", e.Path(), e.Old.ID.Abbreviated())
	default:
		return fmt.Sprintf("M %s %s..%s", e.Path(), e.Old.ID.Abbreviated(), e.New.ID.Abbreviated())
	}
}

// EntryConsumer turns the differences reported to it into DiffEntries and
// passes them to a callback. Trees are always descended into so that every
// differing feature is reported.
type EntryConsumer struct {
	cb          func(DiffEntry) error
	reportTrees bool
}

var _ Consumer = (*EntryConsumer)(nil)

// NewEntryConsumer returns an EntryConsumer calling |cb| for every differing
// feature and, if |reportTrees| is set, every differing tree below the root.
func NewEntryConsumer(reportTrees bool, cb func(DiffEntry) error) *EntryConsumer {
	return &EntryConsumer{cb: cb, reportTrees: reportTrees}
}

func (c *EntryConsumer) Feature(left, right *NodeRef) error {
	return c.cb(DiffEntry{Old: left, New: right})
}

func (c *EntryConsumer) Tree(left, right *NodeRef) (bool, error) {
	if c.reportTrees && pathOf(left, right) != "" {
		if err := c.cb(DiffEntry{Old: left, New: right}); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (c *EntryConsumer) EndTree(left, right *NodeRef) error {
	return nil
}

func (c *EntryConsumer) Bucket(treePath string, index, depth int, left, right *types.Bucket) (bool, error) {
	return true, nil
}

func (c *EntryConsumer) EndBucket(treePath string, index, depth int, left, right *types.Bucket) error {
	return nil
}
