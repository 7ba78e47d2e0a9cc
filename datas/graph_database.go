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
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/kv"
	"github.com/rmarianski/GeoGit/types"
	"github.com/rmarianski/GeoGit/walk"
)

// ErrGraphNodeNotFound is returned by ancestry queries on a commit that has
// not been indexed.
var ErrGraphNodeNotFound = goerrors.NewKind("commit %s is not in the commit graph")

const graphPrefix = "g/"

// GraphReader is the read side of the commit graph used by the ancestry
// queries.
type GraphReader interface {
	// Get returns the node for |id| and whether it is indexed.
	Get(ctx context.Context, id hash.Hash) (GraphNode, bool, error)
}

// GraphDatabase persists GraphNodes in a kv.Store.
type GraphDatabase struct {
	kvs kv.Store
	// mu serializes read-modify-write updates of nodes.
	mu sync.Mutex
}

var _ GraphReader = (*GraphDatabase)(nil)

// NewGraphDatabase returns a GraphDatabase keeping its nodes in |kvs| under
// a fixed prefix, so |kvs| may be shared with other databases.
func NewGraphDatabase(kvs kv.Store) *GraphDatabase {
	return &GraphDatabase{kvs: kv.Prefixed(kvs, graphPrefix)}
}

func (g *GraphDatabase) Get(ctx context.Context, id hash.Hash) (GraphNode, bool, error) {
	data, ok, err := g.kvs.Get(ctx, id[:])
	if err != nil {
		return GraphNode{}, false, errors.Wrapf(err, "reading graph node %s", id)
	}
	if !ok {
		return GraphNode{}, false, nil
	}
	n, err := DecodeGraphNode(id, data)
	if err != nil {
		return GraphNode{}, false, err
	}
	return n, true, nil
}

// MustGet returns the node for |id| or ErrGraphNodeNotFound.
func (g *GraphDatabase) MustGet(ctx context.Context, id hash.Hash) (GraphNode, error) {
	return mustGet(ctx, g, id)
}

func mustGet(ctx context.Context, g GraphReader, id hash.Hash) (GraphNode, error) {
	n, ok, err := g.Get(ctx, id)
	if err != nil {
		return GraphNode{}, err
	}
	if !ok {
		return GraphNode{}, ErrGraphNodeNotFound.New(id)
	}
	return n, nil
}

func (g *GraphDatabase) Exists(ctx context.Context, id hash.Hash) (bool, error) {
	ok, err := g.kvs.Has(ctx, id[:])
	return ok, errors.Wrapf(err, "reading graph node %s", id)
}

func (g *GraphDatabase) pair(n GraphNode) (kv.Pair, error) {
	data, err := EncodeGraphNode(n)
	if err != nil {
		return kv.Pair{}, err
	}
	id := n.ID()
	return kv.Pair{Key: id[:], Value: data}, nil
}

// Put indexes the commit |id| with |parents|, creating the nodes of parents
// that are not yet indexed and linking them back to |id|. Parents missing
// from an existing node are appended. Put returns whether anything changed.
func (g *GraphDatabase) Put(ctx context.Context, id hash.Hash, parents []hash.Hash) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	existing, ok, err := g.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if !ok {
		existing = NewGraphNode(id, nil, nil, nil)
	}
	node := existing.WithParents(parents...)
	changed := !ok || !node.Equals(existing)

	var pairs []kv.Pair
	if changed {
		p, err := g.pair(node)
		if err != nil {
			return false, err
		}
		pairs = append(pairs, p)
	}
	for _, pid := range parents {
		parent, ok, err := g.Get(ctx, pid)
		if err != nil {
			return false, err
		}
		if !ok {
			parent = NewGraphNode(pid, nil, nil, nil)
		}
		updated := parent.WithChild(id)
		if ok && updated.Equals(parent) {
			continue
		}
		p, err := g.pair(updated)
		if err != nil {
			return false, err
		}
		pairs = append(pairs, p)
		changed = true
	}
	if len(pairs) == 0 {
		return false, nil
	}
	if err := g.kvs.PutMany(ctx, pairs); err != nil {
		return false, errors.Wrapf(err, "writing graph node %s", id)
	}
	logrus.WithField("commit", id.String()).Tracef("indexed commit with %d parents", len(parents))
	return changed, nil
}

// GetParents returns the parents of the indexed commit |id|.
func (g *GraphDatabase) GetParents(ctx context.Context, id hash.Hash) ([]hash.Hash, error) {
	n, err := g.MustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	return n.Parents(), nil
}

// GetChildren returns the children of the indexed commit |id|.
func (g *GraphDatabase) GetChildren(ctx context.Context, id hash.Hash) ([]hash.Hash, error) {
	n, err := g.MustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	return n.Children(), nil
}

// SetProperty sets |key| to |value| on the indexed commit |id|.
func (g *GraphDatabase) SetProperty(ctx context.Context, id hash.Hash, key, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, err := g.MustGet(ctx, id)
	if err != nil {
		return err
	}
	p, err := g.pair(n.WithProperty(key, value))
	if err != nil {
		return err
	}
	return errors.Wrapf(g.kvs.Put(ctx, p.Key, p.Value), "writing graph node %s", id)
}

// GetProperty returns the value of |key| on the indexed commit |id|.
func (g *GraphDatabase) GetProperty(ctx context.Context, id hash.Hash, key string) (string, bool, error) {
	n, err := g.MustGet(ctx, id)
	if err != nil {
		return "", false, err
	}
	v, ok := n.Property(key)
	return v, ok, nil
}

// SetSparse flags the indexed commit |id| as sparse.
func (g *GraphDatabase) SetSparse(ctx context.Context, id hash.Hash) error {
	return g.SetProperty(ctx, id, SparseFlag, "true")
}

// Map records that the commit |mapped| was made from |original|, indexing
// |mapped| if needed.
func (g *GraphDatabase) Map(ctx context.Context, mapped, original hash.Hash) error {
	if _, err := g.Put(ctx, mapped, nil); err != nil {
		return err
	}
	return g.SetProperty(ctx, mapped, MappedToProperty, original.String())
}

// GetMapping returns the commit |id| was mapped from, or |id| itself when it
// has no mapping.
func (g *GraphDatabase) GetMapping(ctx context.Context, id hash.Hash) (hash.Hash, error) {
	n, ok, err := g.Get(ctx, id)
	if err != nil || !ok {
		return id, err
	}
	v, ok := n.Property(MappedToProperty)
	if !ok {
		return id, nil
	}
	original, err := hash.Parse(v)
	if err != nil {
		return hash.Hash{}, ErrCorruptGraphNode.New(id, err.Error())
	}
	return original, nil
}

// RebuildGraph indexes every commit reachable from |heads| that is stored in
// |odb|. It returns the number of commits whose index entry changed.
func RebuildGraph(ctx context.Context, odb types.ObjectDatabase, g *GraphDatabase, heads []hash.Hash) (int, error) {
	changed := 0
	err := walk.Ancestors(ctx, odb, heads, walk.NewDeduplicator(), func(c *types.Commit) (bool, error) {
		updated, err := g.Put(ctx, c.ID(), c.Parents())
		if updated {
			changed++
		}
		return true, err
	})
	if err != nil {
		return changed, err
	}
	logrus.WithField("heads", len(heads)).Debugf("rebuilt commit graph, %d commits updated", changed)
	return changed, nil
}
