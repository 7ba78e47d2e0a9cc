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

package datas

import (
	"sort"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/src-d/go-errors.v1"

	"github.com/rmarianski/GeoGit/hash"
)

// ErrCorruptGraphNode is returned when a stored GraphNode cannot be decoded.
var ErrCorruptGraphNode = errors.NewKind("corrupt graph node %s: %s")

const (
	// SparseFlag marks a commit whose tree is only a subset of the tree of
	// the commit it was cloned from.
	SparseFlag = "sparse"
	// MappedToProperty records the id of the commit a sparse commit was
	// made from.
	MappedToProperty = "mappedTo"
)

// GraphNode is the ancestry index entry of one commit: the ids of its
// parents and children plus string properties. GraphNodes are values; the
// With methods return modified copies.
type GraphNode struct {
	id         hash.Hash
	parents    []hash.Hash
	children   []hash.Hash
	properties map[string]string
}

func NewGraphNode(id hash.Hash, parents, children []hash.Hash, properties map[string]string) GraphNode {
	n := GraphNode{
		id:       id,
		parents:  append([]hash.Hash(nil), parents...),
		children: append([]hash.Hash(nil), children...),
	}
	if len(properties) > 0 {
		n.properties = make(map[string]string, len(properties))
		for k, v := range properties {
			n.properties[k] = v
		}
	}
	return n
}

func (n GraphNode) ID() hash.Hash {
	return n.id
}

// Parents returns the outgoing edges of the node in commit order.
func (n GraphNode) Parents() []hash.Hash {
	return append([]hash.Hash(nil), n.parents...)
}

// Children returns the incoming edges of the node.
func (n GraphNode) Children() []hash.Hash {
	return append([]hash.Hash(nil), n.children...)
}

func (n GraphNode) NumParents() int {
	return len(n.parents)
}

func (n GraphNode) Property(key string) (string, bool) {
	v, ok := n.properties[key]
	return v, ok
}

func (n GraphNode) Properties() map[string]string {
	props := make(map[string]string, len(n.properties))
	for k, v := range n.properties {
		props[k] = v
	}
	return props
}

// IsSparse returns whether the node carries the sparse flag.
func (n GraphNode) IsSparse() bool {
	v, ok := n.properties[SparseFlag]
	return ok && v == "true"
}

func contains(ids []hash.Hash, id hash.Hash) bool {
	for _, h := range ids {
		if h == id {
			return true
		}
	}
	return false
}

// WithParents returns a copy of |n| with the parents in |ids| it lacks
// appended.
func (n GraphNode) WithParents(ids ...hash.Hash) GraphNode {
	out := NewGraphNode(n.id, n.parents, n.children, n.properties)
	for _, id := range ids {
		if !contains(out.parents, id) {
			out.parents = append(out.parents, id)
		}
	}
	return out
}

// WithChild returns a copy of |n| with |id| among its children.
func (n GraphNode) WithChild(id hash.Hash) GraphNode {
	out := NewGraphNode(n.id, n.parents, n.children, n.properties)
	if !contains(out.children, id) {
		out.children = append(out.children, id)
	}
	return out
}

// WithProperty returns a copy of |n| with |key| set to |value|.
func (n GraphNode) WithProperty(key, value string) GraphNode {
	props := n.Properties()
	props[key] = value
	return NewGraphNode(n.id, n.parents, n.children, props)
}

func (n GraphNode) Equals(other GraphNode) bool {
	if n.id != other.id || len(n.parents) != len(other.parents) || len(n.children) != len(other.children) || len(n.properties) != len(other.properties) {
		return false
	}
	for i := range n.parents {
		if n.parents[i] != other.parents[i] {
			return false
		}
	}
	for i := range n.children {
		if n.children[i] != other.children[i] {
			return false
		}
	}
	for k, v := range n.properties {
		if ov, ok := other.properties[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// graphNodeVersion is the first byte of every encoded GraphNode.
const graphNodeVersion byte = 1

type graphNodeV1 struct {
	ID         []byte            `cbor:"1,keyasint"`
	Parents    [][]byte          `cbor:"2,keyasint,omitempty"`
	Children   [][]byte          `cbor:"3,keyasint,omitempty"`
	Properties map[string]string `cbor:"4,keyasint,omitempty"`
}

var graphNodeEncMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

func hashesToBytes(ids []hash.Hash) [][]byte {
	if len(ids) == 0 {
		return nil
	}
	out := make([][]byte, len(ids))
	for i := range ids {
		out[i] = ids[i][:]
	}
	return out
}

func bytesToHashes(id hash.Hash, bs [][]byte) ([]hash.Hash, error) {
	if len(bs) == 0 {
		return nil, nil
	}
	out := make([]hash.Hash, len(bs))
	for i, b := range bs {
		if len(b) != hash.ByteLen {
			return nil, ErrCorruptGraphNode.New(id, "bad edge length")
		}
		out[i] = hash.New(b)
	}
	return out, nil
}

// EncodeGraphNode returns the versioned binary form of |n|. Children are
// written in sorted order so that equal nodes encode identically.
func EncodeGraphNode(n GraphNode) ([]byte, error) {
	children := append([]hash.Hash(nil), n.children...)
	sort.Slice(children, func(i, j int) bool { return children[i].Less(children[j]) })
	body, err := graphNodeEncMode.Marshal(graphNodeV1{
		ID:         n.id[:],
		Parents:    hashesToBytes(n.parents),
		Children:   hashesToBytes(children),
		Properties: n.properties,
	})
	if err != nil {
		return nil, err
	}
	return append([]byte{graphNodeVersion}, body...), nil
}

// DecodeGraphNode decodes the output of EncodeGraphNode. |id| is the key the
// node was stored under and must match the encoded id.
func DecodeGraphNode(id hash.Hash, data []byte) (GraphNode, error) {
	if len(data) == 0 {
		return GraphNode{}, ErrCorruptGraphNode.New(id, "empty")
	}
	if data[0] != graphNodeVersion {
		return GraphNode{}, ErrCorruptGraphNode.New(id, "unknown version")
	}
	var wire graphNodeV1
	if err := cbor.Unmarshal(data[1:], &wire); err != nil {
		return GraphNode{}, ErrCorruptGraphNode.New(id, err.Error())
	}
	if len(wire.ID) != hash.ByteLen || hash.New(wire.ID) != id {
		return GraphNode{}, ErrCorruptGraphNode.New(id, "id mismatch")
	}
	parents, err := bytesToHashes(id, wire.Parents)
	if err != nil {
		return GraphNode{}, err
	}
	children, err := bytesToHashes(id, wire.Children)
	if err != nil {
		return GraphNode{}, err
	}
	return GraphNode{id: id, parents: parents, children: children, properties: wire.Properties}, nil
}
