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

	"github.com/rmarianski/GeoGit/hash"
)

// nodeCache memoizes the graph nodes read by a single query.
type nodeCache struct {
	ctx   context.Context
	g     GraphReader
	nodes map[hash.Hash]GraphNode
}

func newNodeCache(ctx context.Context, g GraphReader) *nodeCache {
	return &nodeCache{ctx: ctx, g: g, nodes: make(map[hash.Hash]GraphNode)}
}

func (c *nodeCache) get(id hash.Hash) (GraphNode, error) {
	if n, ok := c.nodes[id]; ok {
		return n, nil
	}
	n, err := mustGet(c.ctx, c.g, id)
	if err != nil {
		return GraphNode{}, err
	}
	c.nodes[id] = n
	return n, nil
}

// frontier is one side of the common ancestor search.
type frontier struct {
	queue   []hash.Hash
	visited hash.HashSet
}

func (f *frontier) pop() hash.Hash {
	id := f.queue[0]
	f.queue = f.queue[1:]
	return id
}

func (f *frontier) remove(id hash.Hash) {
	kept := f.queue[:0]
	for _, q := range f.queue {
		if q != id {
			kept = append(kept, q)
		}
	}
	f.queue = kept
}

// FindCommonAncestor returns the lowest common ancestor of |left| and
// |right|, and false if their histories are disjoint. When several minimal
// common ancestors exist the one found first is returned.
func FindCommonAncestor(ctx context.Context, g GraphReader, left, right hash.Hash) (hash.Hash, bool, error) {
	if left == right {
		if _, err := mustGet(ctx, g, left); err != nil {
			return hash.Hash{}, false, err
		}
		return left, true, nil
	}
	candidates, err := FindCommonAncestors(ctx, g, left, right)
	if err != nil || len(candidates) == 0 {
		return hash.Hash{}, false, err
	}
	return candidates[0], true, nil
}

// FindCommonAncestors returns every minimal common ancestor of |left| and
// |right| in the order they were found. Criss-cross merges can have more
// than one.
func FindCommonAncestors(ctx context.Context, g GraphReader, left, right hash.Hash) ([]hash.Hash, error) {
	nodes := newNodeCache(ctx, g)
	if left == right {
		if _, err := nodes.get(left); err != nil {
			return nil, err
		}
		return []hash.Hash{left}, nil
	}
	l := &frontier{queue: []hash.Hash{left}, visited: hash.NewHashSet()}
	r := &frontier{queue: []hash.Hash{right}, visited: hash.NewHashSet()}
	if _, err := nodes.get(left); err != nil {
		return nil, err
	}
	if _, err := nodes.get(right); err != nil {
		return nil, err
	}

	var candidates []hash.Hash
	step := func(mine, theirs *frontier) error {
		if len(mine.queue) == 0 {
			return nil
		}
		id := mine.pop()
		if mine.visited.Has(id) {
			return nil
		}
		mine.visited.Insert(id)
		n, err := nodes.get(id)
		if err != nil {
			return err
		}
		if theirs.visited.Has(id) {
			candidates = append(candidates, id)
			return stopAncestryPath(nodes, id, theirs)
		}
		mine.queue = append(mine.queue, n.parents...)
		return nil
	}

	for len(l.queue) > 0 || len(r.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := step(l, r); err != nil {
			return nil, err
		}
		if err := step(r, l); err != nil {
			return nil, err
		}
	}
	return verifyAncestors(nodes, candidates)
}

// stopAncestryPath drops |id| and the ancestors of |id| that the other side
// already visited from that side's queue. Unvisited parents stay queued.
func stopAncestryPath(nodes *nodeCache, id hash.Hash, theirs *frontier) error {
	theirs.remove(id)
	stack := []hash.Hash{id}
	seen := hash.NewHashSet(id)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, err := nodes.get(cur)
		if err != nil {
			return err
		}
		for _, p := range n.parents {
			if !theirs.visited.Has(p) || seen.Has(p) {
				continue
			}
			seen.Insert(p)
			theirs.remove(p)
			stack = append(stack, p)
		}
	}
	return nil
}

// verifyAncestors drops the candidates that are ancestors of another
// candidate. Every parent edge is followed, whether or not the search
// visited the node.
func verifyAncestors(nodes *nodeCache, candidates []hash.Hash) ([]hash.Hash, error) {
	isCandidate := hash.NewHashSet(candidates...)
	falseAncestors := hash.NewHashSet()
	processed := hash.NewHashSet()
	for _, c := range candidates {
		if falseAncestors.Has(c) {
			continue
		}
		queue := []hash.Hash{c}
		for len(queue) > 0 {
			if err := nodes.ctx.Err(); err != nil {
				return nil, err
			}
			cur := queue[0]
			queue = queue[1:]
			n, err := nodes.get(cur)
			if err != nil {
				return nil, err
			}
			for _, p := range n.parents {
				if isCandidate.Has(p) {
					falseAncestors.Insert(p)
				}
				if !processed.Has(p) {
					processed.Insert(p)
					queue = append(queue, p)
				}
			}
		}
	}
	var out []hash.Hash
	for _, c := range candidates {
		if !falseAncestors.Has(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// CheckSparsePath returns whether any path from |start| to |end| following
// parent edges passes through a sparse commit. |end| itself is not
// considered; |start| is.
func CheckSparsePath(ctx context.Context, g GraphReader, start, end hash.Hash) (bool, error) {
	type state struct {
		id     hash.Hash
		sparse bool
	}
	nodes := newNodeCache(ctx, g)
	if _, err := nodes.get(start); err != nil {
		return false, err
	}
	stack := []state{{id: start}}
	seen := make(map[state]bool)
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[s] {
			continue
		}
		seen[s] = true
		if s.id == end {
			if s.sparse {
				return true, nil
			}
			continue
		}
		n, err := nodes.get(s.id)
		if err != nil {
			return false, err
		}
		sparse := s.sparse || n.IsSparse()
		for _, p := range n.parents {
			stack = append(stack, state{id: p, sparse: sparse})
		}
	}
	return false, nil
}

// IsAncestor returns whether |ancestor| is reachable from |descendant| by
// following parent edges. A commit is its own ancestor.
func IsAncestor(ctx context.Context, g GraphReader, ancestor, descendant hash.Hash) (bool, error) {
	nodes := newNodeCache(ctx, g)
	if _, err := nodes.get(ancestor); err != nil {
		return false, err
	}
	queue := []hash.Hash{descendant}
	seen := hash.NewHashSet(descendant)
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		id := queue[0]
		queue = queue[1:]
		if id == ancestor {
			return true, nil
		}
		n, err := nodes.get(id)
		if err != nil {
			return false, err
		}
		for _, p := range n.parents {
			if !seen.Has(p) {
				seen.Insert(p)
				queue = append(queue, p)
			}
		}
	}
	return false, nil
}
