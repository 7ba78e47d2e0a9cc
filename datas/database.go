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

// Package datas keeps the history of a repository: commits, the commit graph
// index used by ancestry queries, named refs and transactions over them.
package datas

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/rmarianski/GeoGit/chunks"
	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/kv"
	"github.com/rmarianski/GeoGit/types"
	"github.com/rmarianski/GeoGit/walk"
)

// ErrMergeNeeded is returned when a commit does not descend from the current
// head of the ref it is committed to.
var ErrMergeNeeded = goerrors.NewKind("head of %s is not an ancestor of commit %s")

// DefaultCommitRetries is the number of times Transaction.Commit retries a
// ref update that lost a race with another writer.
const DefaultCommitRetries = 3

// Env holds the stores a Database is built from. It is assembled once at
// startup and passed explicitly to everything that needs it.
type Env struct {
	ODB   types.ObjectDatabase
	Graph *GraphDatabase
	Refs  *RefDatabase
	Hooks *Hooks

	// CommitRetries bounds the retries of Transaction.Commit.
	CommitRetries int

	// Closer releases the storage behind the stores, if any.
	Closer io.Closer
}

// NewEnv returns an Env whose stores all share |kvs|.
func NewEnv(kvs kv.Store, odb types.ObjectDatabase) Env {
	return Env{
		ODB:           odb,
		Graph:         NewGraphDatabase(kvs),
		Refs:          NewRefDatabase(kvs),
		Hooks:         &Hooks{},
		CommitRetries: DefaultCommitRetries,
		Closer:        kvs,
	}
}

// NewMemoryEnv returns an Env kept entirely in memory.
func NewMemoryEnv() Env {
	kvs := kv.NewMemoryStore()
	return NewEnv(kvs, types.NewObjectStore(chunks.NewKVStore(kvs, false)))
}

func (e Env) Close() error {
	if e.Closer == nil {
		return nil
	}
	return e.Closer.Close()
}

// Database commits trees to refs and answers history queries.
type Database struct {
	env Env
}

func NewDatabase(env Env) *Database {
	if env.Hooks == nil {
		env.Hooks = &Hooks{}
	}
	return &Database{env: env}
}

func (db *Database) ODB() types.ObjectDatabase {
	return db.env.ODB
}

func (db *Database) Graph() *GraphDatabase {
	return db.env.Graph
}

func (db *Database) Refs() *RefDatabase {
	return db.env.Refs
}

func (db *Database) Hooks() *Hooks {
	return db.env.Hooks
}

func (db *Database) Close() error {
	return db.env.Close()
}

// CommitOptions configures a commit.
type CommitOptions struct {
	// Parents of the new commit. When nil the current head of the ref, if
	// any, is the only parent.
	Parents   []hash.Hash
	Author    types.Person
	Committer types.Person
	Message   string
}

// PutCommit stores |c| and indexes it in the commit graph.
func (db *Database) PutCommit(ctx context.Context, c *types.Commit) error {
	if _, err := db.env.ODB.Put(ctx, c); err != nil {
		return err
	}
	_, err := db.env.Graph.Put(ctx, c.ID(), c.Parents())
	return err
}

// Commit records |treeID| as a new commit on |ref| and advances the ref.
//
// The ref may only move forward: ErrMergeNeeded is returned if its current
// head is not an ancestor of the new commit, and ErrOptimisticLockFailed if
// another writer moved it in the meantime. In both cases the new commit is
// stored but not referenced.
func (db *Database) Commit(ctx context.Context, ref string, treeID hash.Hash, opts CommitOptions) (*types.Commit, error) {
	return db.commit(ctx, db.env.Refs, ref, ref, treeID, opts)
}

// commit commits to |name| in |refs|. |ref| is the name reported to hooks.
func (db *Database) commit(ctx context.Context, refs RefStore, ref, name string, treeID hash.Hash, opts CommitOptions) (*types.Commit, error) {
	if err := ValidateRefName(name); err != nil {
		return nil, err
	}
	head, hasHead, err := refs.GetRef(ctx, name)
	if err != nil {
		return nil, err
	}
	parents := opts.Parents
	if parents == nil && hasHead {
		parents = []hash.Hash{head}
	}
	if err := db.env.Hooks.runPreCommit(ctx, CommitRequest{Ref: ref, TreeID: treeID, Parents: parents, Message: opts.Message}); err != nil {
		return nil, err
	}

	committer := opts.Committer
	if committer == (types.Person{}) {
		committer = opts.Author
	}
	c := types.NewCommit(treeID, parents, opts.Author, committer, opts.Message)
	if err := db.PutCommit(ctx, c); err != nil {
		return nil, err
	}

	if hasHead {
		if c.ID() == head {
			return c, nil
		}
		ok, err := IsAncestor(ctx, db.env.Graph, head, c.ID())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrMergeNeeded.New(ref, c.ID())
		}
	}
	if err := refs.CompareAndPutRef(ctx, name, head, c.ID()); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"ref":    ref,
		"commit": c.ID().String(),
	}).Debug("committed")
	db.env.Hooks.runPostCommit(ctx, ref, c)
	return c, nil
}

// Head returns the commit |ref| points at and whether the ref exists.
func (db *Database) Head(ctx context.Context, ref string) (*types.Commit, bool, error) {
	id, ok, err := db.env.Refs.GetRef(ctx, ref)
	if err != nil || !ok {
		return nil, false, err
	}
	c, err := types.GetCommit(ctx, db.env.ODB, id)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// MergeBase returns the lowest common ancestor of two commits.
func (db *Database) MergeBase(ctx context.Context, left, right hash.Hash) (hash.Hash, bool, error) {
	return FindCommonAncestor(ctx, db.env.Graph, left, right)
}

// Log calls |cb| with |from| and its ancestors, breadth first, until |cb|
// returns false.
func (db *Database) Log(ctx context.Context, from hash.Hash, cb func(c *types.Commit) (bool, error)) error {
	stop := false
	return walk.Ancestors(ctx, db.env.ODB, []hash.Hash{from}, walk.NewDeduplicator(), func(c *types.Commit) (bool, error) {
		if stop {
			return false, nil
		}
		more, err := cb(c)
		if !more {
			stop = true
		}
		return more, err
	})
}
