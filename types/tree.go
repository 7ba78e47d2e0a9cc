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
	"sort"

	"github.com/rmarianski/GeoGit/d"
	"github.com/rmarianski/GeoGit/hash"
)

const (
	// NormalizedSizeLimit is the largest number of entries a tree keeps in
	// leaf form. Larger trees are split into buckets.
	NormalizedSizeLimit = 512

	// MaxBuckets is the number of bucket slots in a bucketed tree.
	MaxBuckets = 32
)

// NodeType distinguishes the two kinds of tree entries.
type NodeType uint8

const (
	FeatureNode NodeType = 1
	TreeNode    NodeType = 2
)

func (t NodeType) String() string {
	switch t {
	case FeatureNode:
		return "feature"
	case TreeNode:
		return "tree"
	default:
		return "unknown"
	}
}

// Node is a named entry of a tree referencing a feature or a subtree.
// MetadataID, when not empty, references the FeatureType governing the
// entry.
type Node struct {
	Name       string
	ID         hash.Hash
	Type       NodeType
	MetadataID hash.Hash
}

func (n Node) IsTree() bool {
	return n.Type == TreeNode
}

// Equals returns whether both nodes have the same name, type, id and
// metadata id.
func (n Node) Equals(other Node) bool {
	return n == other
}

// Bucket references the tree holding the entries of one slot of a bucketed
// tree.
type Bucket struct {
	Index int
	ID    hash.Hash
}

// Tree is an immutable snapshot of one level of a hierarchical namespace.
//
// A tree with at most NormalizedSizeLimit entries is a leaf and lists its
// nodes directly, sorted by name. Larger trees are bucketed: their entries
// are spread over up to MaxBuckets child trees by a hash of the entry name
// and the depth of the bucket, and only the non-empty buckets are stored.
//
// Every tree records the number of features and subtrees beneath it so they
// can be counted without visiting its children.
type Tree struct {
	id           hash.Hash
	entryCount   uint64
	featureCount uint64
	subtreeCount uint64
	nodes        []Node
	buckets      []Bucket
}

var _ RevObject = (*Tree)(nil)

// EmptyTree is the tree with no entries. It can always be read from an
// ObjectDatabase, whether or not it was written.
var EmptyTree = NewLeafTree(nil, 0, 0)

// EmptyTreeID is the id of EmptyTree.
var EmptyTreeID = EmptyTree.ID()

// NewLeafTree returns a leaf tree holding |nodes|, which must have distinct
// names. |featureCount| and |subtreeCount| are the recursive totals beneath
// the tree.
func NewLeafTree(nodes []Node, featureCount, subtreeCount uint64) *Tree {
	sorted := append([]Node(nil), nodes...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	for i := 1; i < len(sorted); i++ {
		d.Chk.NotEqual(sorted[i-1].Name, sorted[i].Name, "duplicate tree entry %q", sorted[i].Name)
	}
	t := &Tree{
		entryCount:   uint64(len(sorted)),
		featureCount: featureCount,
		subtreeCount: subtreeCount,
		nodes:        sorted,
	}
	t.id = computeID(t)
	return t
}

// NewBucketTree returns a bucketed tree. |entryCount| is the number of direct
// entries across all buckets.
func NewBucketTree(buckets []Bucket, entryCount, featureCount, subtreeCount uint64) *Tree {
	sorted := append([]Bucket(nil), buckets...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Index < sorted[j].Index
	})
	for i, b := range sorted {
		d.Chk.True(b.Index >= 0 && b.Index < MaxBuckets, "bucket index %d out of range", b.Index)
		d.PanicIfTrue(i > 0 && sorted[i-1].Index == b.Index)
	}
	t := &Tree{
		entryCount:   entryCount,
		featureCount: featureCount,
		subtreeCount: subtreeCount,
		buckets:      sorted,
	}
	t.id = computeID(t)
	return t
}

func (t *Tree) ID() hash.Hash {
	return t.id
}

func (t *Tree) Type() ObjectType {
	return TypeTree
}

// IsLeaf returns whether the tree lists its entries directly.
func (t *Tree) IsLeaf() bool {
	return len(t.buckets) == 0
}

func (t *Tree) IsEmpty() bool {
	return t.entryCount == 0
}

// EntryCount is the number of direct entries of the tree, whether listed or
// bucketed.
func (t *Tree) EntryCount() uint64 {
	return t.entryCount
}

// FeatureCount is the number of features beneath the tree, including those
// of nested subtrees.
func (t *Tree) FeatureCount() uint64 {
	return t.featureCount
}

// SubtreeCount is the number of trees nested beneath the tree at any depth.
// Bucket trees are not counted.
func (t *Tree) SubtreeCount() uint64 {
	return t.subtreeCount
}

// Nodes returns the entries of a leaf tree sorted by name. The returned slice
// must not be modified.
func (t *Tree) Nodes() []Node {
	return t.nodes
}

// Buckets returns the non-empty buckets of a bucketed tree sorted by index.
// The returned slice must not be modified.
func (t *Tree) Buckets() []Bucket {
	return t.buckets
}

// Bucket returns the bucket at |index|, if it is not empty.
func (t *Tree) Bucket(index int) (Bucket, bool) {
	i := sort.Search(len(t.buckets), func(i int) bool {
		return t.buckets[i].Index >= index
	})
	if i < len(t.buckets) && t.buckets[i].Index == index {
		return t.buckets[i], true
	}
	return Bucket{}, false
}

// Lookup returns the entry of a leaf tree named |name|.
func (t *Tree) Lookup(name string) (Node, bool) {
	i := sort.Search(len(t.nodes), func(i int) bool {
		return t.nodes[i].Name >= name
	})
	if i < len(t.nodes) && t.nodes[i].Name == name {
		return t.nodes[i], true
	}
	return Node{}, false
}

// Features returns the feature entries of a leaf tree.
func (t *Tree) Features() []Node {
	return t.filter(FeatureNode)
}

// Trees returns the subtree entries of a leaf tree.
func (t *Tree) Trees() []Node {
	return t.filter(TreeNode)
}

func (t *Tree) filter(typ NodeType) []Node {
	var out []Node
	for _, n := range t.nodes {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}
