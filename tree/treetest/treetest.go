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

// Package treetest builds trees of synthetic entries for tests.
package treetest

import (
	"context"
	"fmt"

	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/tree"
	"github.com/rmarianski/GeoGit/types"
)

// FeatureNode returns a feature entry named |prefix| followed by |i|. Its id
// is derived from its name, so the feature does not need to be stored.
func FeatureNode(prefix string, i int) types.Node {
	name := fmt.Sprintf("%s%d", prefix, i)
	return types.Node{Name: name, ID: hash.Of([]byte(name)), Type: types.FeatureNode}
}

// FeatureNodes returns the entries FeatureNode(prefix, i) for i in [0, n).
func FeatureNodes(prefix string, n int) []types.Node {
	nodes := make([]types.Node, n)
	for i := range nodes {
		nodes[i] = FeatureNode(prefix, i)
	}
	return nodes
}

// ModifiedNode returns |n| pointing at different feature content.
func ModifiedNode(n types.Node) types.Node {
	n.ID = hash.Of([]byte(n.Name + "~modified"))
	return n
}

// Build builds a tree holding |nodes| from the empty tree.
func Build(ctx context.Context, odb types.ObjectDatabase, nodes ...types.Node) (*types.Tree, error) {
	b := tree.NewBuilder(odb, nil)
	for _, n := range nodes {
		b.Put(n)
	}
	return b.Build(ctx)
}

// CreateFeaturesTree builds a tree of |n| feature entries named after
// |prefix|.
func CreateFeaturesTree(ctx context.Context, odb types.ObjectDatabase, prefix string, n int) (*types.Tree, error) {
	return Build(ctx, odb, FeatureNodes(prefix, n)...)
}

// CreateTreesTree builds a tree of |numSubtrees| subtrees named "subtreeN",
// each holding |featuresPerSubtree| features, with |metadataID| on every
// subtree entry.
func CreateTreesTree(ctx context.Context, odb types.ObjectDatabase, numSubtrees, featuresPerSubtree int, metadataID hash.Hash) (*types.Tree, error) {
	b := tree.NewBuilder(odb, nil)
	for i := 0; i < numSubtrees; i++ {
		name := fmt.Sprintf("subtree%d", i)
		sub, err := CreateFeaturesTree(ctx, odb, name+"-f", featuresPerSubtree)
		if err != nil {
			return nil, err
		}
		b.Put(types.Node{Name: name, ID: sub.ID(), Type: types.TreeNode, MetadataID: metadataID})
	}
	return b.Build(ctx)
}
