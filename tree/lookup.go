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
	"context"

	"gopkg.in/src-d/go-errors.v1"

	"github.com/rmarianski/GeoGit/types"
)

// ErrNotATree is returned when a path traverses an entry that is a feature.
var ErrNotATree = errors.NewKind("%s is not a tree")

// FindChild returns the direct entry of |t| called |name|, descending through
// buckets as needed.
func FindChild(ctx context.Context, odb types.ObjectDatabase, t *types.Tree, name string) (types.Node, bool, error) {
	indexAt := bucketIndexFunc(name)
	for depth := 0; !t.IsLeaf(); depth++ {
		bucket, ok := t.Bucket(indexAt(depth))
		if !ok {
			return types.Node{}, false, nil
		}
		var err error
		t, err = types.GetTree(ctx, odb, bucket.ID)
		if err != nil {
			return types.Node{}, false, err
		}
	}
	n, ok := t.Lookup(name)
	return n, ok, nil
}

// FindNode returns the entry at |path| beneath |root|.
func FindNode(ctx context.Context, odb types.ObjectDatabase, root *types.Tree, path string) (types.Node, bool, error) {
	names := Split(path)
	if len(names) == 0 {
		return types.Node{}, false, nil
	}
	t := root
	for i, name := range names {
		n, ok, err := FindChild(ctx, odb, t, name)
		if err != nil || !ok {
			return types.Node{}, false, err
		}
		if i == len(names)-1 {
			return n, true, nil
		}
		if !n.IsTree() {
			return types.Node{}, false, nil
		}
		t, err = types.GetTree(ctx, odb, n.ID)
		if err != nil {
			return types.Node{}, false, err
		}
	}
	panic("unreachable")
}

// FindTree returns the tree at |path| beneath |root|. The empty path is
// |root| itself.
func FindTree(ctx context.Context, odb types.ObjectDatabase, root *types.Tree, path string) (*types.Tree, bool, error) {
	if path == "" {
		return root, true, nil
	}
	n, ok, err := FindNode(ctx, odb, root, path)
	if err != nil || !ok {
		return nil, false, err
	}
	if !n.IsTree() {
		return nil, false, ErrNotATree.New(path)
	}
	t, err := types.GetTree(ctx, odb, n.ID)
	return t, err == nil, err
}

// Update applies |edit| to the tree at |parentPath| beneath |root|, creating
// missing intermediate trees, and returns the new root. Every tree between
// |root| and |parentPath| is rewritten; intermediate entries keep their
// metadata ids.
func Update(ctx context.Context, odb types.ObjectDatabase, root *types.Tree, parentPath string, edit func(b *Builder)) (*types.Tree, error) {
	names := Split(parentPath)

	// Walk down recording the tree and entry at each level.
	trees := make([]*types.Tree, len(names)+1)
	nodes := make([]types.Node, len(names))
	trees[0] = root
	for i, name := range names {
		n, ok, err := FindChild(ctx, odb, trees[i], name)
		if err != nil {
			return nil, err
		}
		child := types.EmptyTree
		if ok {
			if !n.IsTree() {
				return nil, ErrNotATree.New(AppendChild(joinNames(names[:i]), name))
			}
			if child, err = types.GetTree(ctx, odb, n.ID); err != nil {
				return nil, err
			}
		} else {
			n = types.Node{Name: name, Type: types.TreeNode}
		}
		nodes[i] = n
		trees[i+1] = child
	}

	b := NewBuilder(odb, trees[len(names)])
	edit(b)
	updated, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}
	for i := len(names) - 1; i >= 0; i-- {
		n := nodes[i]
		n.ID = updated.ID()
		updated, err = NewBuilder(odb, trees[i]).Put(n).Build(ctx)
		if err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// UpdateSubtree sets the tree at |path| beneath |root| to |subtree|.
func UpdateSubtree(ctx context.Context, odb types.ObjectDatabase, root *types.Tree, path string, subtree *types.Tree) (*types.Tree, error) {
	if path == "" {
		return subtree, nil
	}
	if _, err := odb.Put(ctx, subtree); err != nil {
		return nil, err
	}
	existing, ok, err := FindNode(ctx, odb, root, path)
	if err != nil {
		return nil, err
	}
	n := types.Node{Name: NodeName(path), ID: subtree.ID(), Type: types.TreeNode}
	if ok {
		n.MetadataID = existing.MetadataID
	}
	return Update(ctx, odb, root, ParentPath(path), func(b *Builder) {
		b.Put(n)
	})
}

func joinNames(names []string) string {
	path := ""
	for _, n := range names {
		path = AppendChild(path, n)
	}
	return path
}
