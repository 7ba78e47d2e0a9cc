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

// Package diff compares two trees by walking them in parallel, skipping every
// pair of subtrees or buckets with equal ids, and reports the differences to
// a Consumer.
package diff

import (
	"github.com/rmarianski/GeoGit/tree"
	"github.com/rmarianski/GeoGit/types"
)

// NodeRef is a tree entry along with the path of the tree holding it.
type NodeRef struct {
	types.Node
	Parent string
}

// Path returns the full path of the entry. The root tree has the empty path.
func (r *NodeRef) Path() string {
	return tree.AppendChild(r.Parent, r.Name)
}

func pathOf(left, right *NodeRef) string {
	if left != nil {
		return left.Path()
	}
	return right.Path()
}

// Consumer receives the differences found by Walk. For each pair at most one
// side is nil: a nil left side is an addition and a nil right side a
// removal. Both sides present means the entries differ.
//
// Every call to Tree is matched by a call to EndTree, and every call to
// Bucket by a call to EndBucket, whatever Tree or Bucket returned.
type Consumer interface {
	// Feature reports a feature that was added, removed or changed.
	Feature(left, right *NodeRef) error

	// Tree reports a tree that was added, removed or changed and returns
	// whether to compare its contents.
	Tree(left, right *NodeRef) (bool, error)

	EndTree(left, right *NodeRef) error

	// Bucket reports a differing bucket at |depth| of the tree at |treePath|
	// and returns whether to compare its contents.
	Bucket(treePath string, index, depth int, left, right *types.Bucket) (bool, error)

	EndBucket(treePath string, index, depth int, left, right *types.Bucket) error
}

// ForwardingConsumer passes every call to the wrapped Consumer. It is meant
// to be embedded by consumers that override some of the calls.
type ForwardingConsumer struct {
	Consumer
}

// NoopConsumer ignores every difference and descends into everything.
type NoopConsumer struct{}

var _ Consumer = NoopConsumer{}

func (NoopConsumer) Feature(left, right *NodeRef) error {
	return nil
}

func (NoopConsumer) Tree(left, right *NodeRef) (bool, error) {
	return true, nil
}

func (NoopConsumer) EndTree(left, right *NodeRef) error {
	return nil
}

func (NoopConsumer) Bucket(treePath string, index, depth int, left, right *types.Bucket) (bool, error) {
	return true, nil
}

func (NoopConsumer) EndBucket(treePath string, index, depth int, left, right *types.Bucket) error {
	return nil
}
