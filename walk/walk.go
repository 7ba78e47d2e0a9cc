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

// Package walk traverses the objects reachable from a set of root ids.
package walk

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/types"
)

const ctxCheckInterval = 256

// Callback is called with every object of a traversal.
type Callback func(obj types.RevObject) error

// Options configures a traversal.
type Options struct {
	// TraverseCommits follows the parents of commits. When unset a commit
	// contributes only its tree.
	TraverseCommits bool
}

// References returns the ids |obj| refers to, in the order they are visited.
// Zero ids, such as an absent metadata id, are left out.
func References(obj types.RevObject, opts Options) []hash.Hash {
	var refs []hash.Hash
	add := func(id hash.Hash) {
		if !id.IsEmpty() {
			refs = append(refs, id)
		}
	}
	switch o := obj.(type) {
	case *types.Commit:
		add(o.TreeID())
		if opts.TraverseCommits {
			for _, p := range o.Parents() {
				add(p)
			}
		}
	case *types.Tag:
		add(o.CommitID())
	case *types.Tree:
		for _, n := range o.Nodes() {
			add(n.MetadataID)
			add(n.ID)
		}
		for _, b := range o.Buckets() {
			add(b.ID)
		}
	}
	return refs
}

type frame struct {
	obj  types.RevObject
	refs []hash.Hash
	next int
}

// PostOrder visits every object reachable from |roots| that |dedup| has not
// already seen, calling |cb| on each object after every object it refers to.
// Objects marked in |dedup| before the call are pruned along with everything
// beneath them.
func PostOrder(ctx context.Context, odb types.ObjectDatabase, roots []hash.Hash, opts Options, dedup *Deduplicator, cb Callback) error {
	var stack []*frame
	calls, visited, pruned := 0, 0, 0
	push := func(id hash.Hash) error {
		if dedup.Visit(id) {
			pruned++
			return nil
		}
		obj, err := odb.Get(ctx, id)
		if err != nil {
			return err
		}
		stack = append(stack, &frame{obj: obj, refs: References(obj, opts)})
		return nil
	}

	for _, root := range roots {
		if err := push(root); err != nil {
			return err
		}
		for len(stack) > 0 {
			calls++
			if calls%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			top := stack[len(stack)-1]
			if top.next < len(top.refs) {
				id := top.refs[top.next]
				top.next++
				if err := push(id); err != nil {
					return err
				}
				continue
			}
			stack = stack[:len(stack)-1]
			visited++
			if err := cb(top.obj); err != nil {
				return err
			}
		}
	}
	logrus.WithFields(logrus.Fields{
		"roots":   len(roots),
		"visited": visited,
		"pruned":  pruned,
	}).Trace("post order walk")
	return nil
}

// Closure returns the ids of every object reachable from |roots| in post
// order.
func Closure(ctx context.Context, odb types.ObjectDatabase, roots []hash.Hash, opts Options) ([]hash.Hash, error) {
	var ids []hash.Hash
	err := PostOrder(ctx, odb, roots, opts, NewDeduplicator(), func(obj types.RevObject) error {
		ids = append(ids, obj.ID())
		return nil
	})
	return ids, err
}

// Ancestors visits the commits reachable from |roots| through parent edges,
// breadth first, skipping commits seen by |dedup|. |cb| returns false to
// stop at a commit without visiting its parents. Roots that are not stored
// are skipped.
func Ancestors(ctx context.Context, odb types.ObjectDatabase, roots []hash.Hash, dedup *Deduplicator, cb func(c *types.Commit) (bool, error)) error {
	queue := append([]hash.Hash(nil), roots...)
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := queue[0]
		queue = queue[1:]
		if dedup.Visit(id) {
			continue
		}
		obj, ok, err := types.GetIfPresent(ctx, odb, id)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		c, isCommit := obj.(*types.Commit)
		if !isCommit {
			return types.ErrUnexpectedType.New(id, obj.Type(), types.TypeCommit)
		}
		more, err := cb(c)
		if err != nil {
			return err
		}
		if more {
			queue = append(queue, c.Parents()...)
		}
	}
	return nil
}
