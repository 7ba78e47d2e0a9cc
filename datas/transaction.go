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
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/rmarianski/GeoGit/diff"
	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/tree"
	"github.com/rmarianski/GeoGit/types"
)

var (
	// ErrNoTransaction is returned by operations on a transaction that has
	// already been committed or aborted.
	ErrNoTransaction = goerrors.NewKind("transaction %s has ended")

	// ErrTransactionConflict is returned when a ref changed by a
	// transaction was changed concurrently in a way that cannot be
	// rebased.
	ErrTransactionConflict = goerrors.NewKind("transaction %s conflicts with concurrent changes to %s")
)

// TransactionsPrefix is the ref namespace holding the refs of open
// transactions.
const TransactionsPrefix = "transactions/"

const retryInterval = 20 * time.Millisecond

// Transaction isolates a series of commits from concurrent writers. The refs
// of the repository are copied when it begins, commits made in the
// transaction only move the copies, and Commit applies the changed copies
// to the live refs.
type Transaction struct {
	db     *Database
	id     uuid.UUID
	prefix string
	rebase bool

	mu    sync.Mutex
	start map[string]hash.Hash
	ended bool
	log   *logrus.Entry
}

// BeginTransaction starts a transaction. When |rebase| is set, Commit
// replays the transaction onto refs that moved concurrently, provided the
// transaction changed different top-level paths.
func (db *Database) BeginTransaction(ctx context.Context, rebase bool) (*Transaction, error) {
	id := uuid.New()
	prefix := TransactionsPrefix + id.String() + "/"
	start, err := db.env.Refs.copyRefs(ctx, "refs/", prefix)
	if err != nil {
		return nil, err
	}
	tx := &Transaction{
		db:     db,
		id:     id,
		prefix: prefix,
		rebase: rebase,
		start:  start,
		log:    logrus.WithField("transaction", id.String()),
	}
	tx.log.Debugf("transaction started with %d refs", len(start))
	return tx, nil
}

func (tx *Transaction) ID() uuid.UUID {
	return tx.id
}

func (tx *Transaction) check() error {
	if tx.ended {
		return ErrNoTransaction.New(tx.id)
	}
	return nil
}

// GetRef returns the commit |name| points at within the transaction.
func (tx *Transaction) GetRef(ctx context.Context, name string) (hash.Hash, bool, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if err := tx.check(); err != nil {
		return hash.Hash{}, false, err
	}
	if err := ValidateRefName(name); err != nil {
		return hash.Hash{}, false, err
	}
	return tx.db.env.Refs.GetRef(ctx, tx.prefix+name)
}

// PutRef points |name| at |id| within the transaction.
func (tx *Transaction) PutRef(ctx context.Context, name string, id hash.Hash) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if err := tx.check(); err != nil {
		return err
	}
	if err := ValidateRefName(name); err != nil {
		return err
	}
	return tx.db.env.Refs.PutRef(ctx, tx.prefix+name, id)
}

// DeleteRef removes |name| within the transaction.
func (tx *Transaction) DeleteRef(ctx context.Context, name string) (bool, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if err := tx.check(); err != nil {
		return false, err
	}
	if err := ValidateRefName(name); err != nil {
		return false, err
	}
	return tx.db.env.Refs.DeleteRef(ctx, tx.prefix+name)
}

// NewCommit commits |treeID| to |ref| within the transaction.
func (tx *Transaction) NewCommit(ctx context.Context, ref string, treeID hash.Hash, opts CommitOptions) (*types.Commit, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if err := tx.check(); err != nil {
		return nil, err
	}
	if err := ValidateRefName(ref); err != nil {
		return nil, err
	}
	return tx.db.commit(ctx, tx.db.env.Refs, ref, tx.prefix+ref, treeID, opts)
}

// Abort ends the transaction, discarding its refs. The objects it wrote
// remain stored.
func (tx *Transaction) Abort(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if err := tx.check(); err != nil {
		return err
	}
	tx.ended = true
	tx.log.Debug("transaction aborted")
	return tx.db.env.Refs.deleteRefs(ctx, tx.prefix)
}

// Commit ends the transaction, applying every ref it changed to the live
// refs. Ref updates that lose a race with another writer are retried with
// backoff. Once Commit returns the transaction has ended, whatever the
// outcome.
func (tx *Transaction) Commit(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if err := tx.check(); err != nil {
		return err
	}
	tx.ended = true
	defer func() {
		if err := tx.db.env.Refs.deleteRefs(ctx, tx.prefix); err != nil {
			tx.log.WithError(err).Warn("failed to remove transaction refs")
		}
	}()

	changed, err := tx.changedRefs(ctx)
	if err != nil {
		return err
	}
	for _, name := range changed.names {
		name := name
		op := func() error {
			err := tx.applyRef(ctx, name, changed.refs[name])
			if err != nil && !ErrOptimisticLockFailed.Is(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = retryInterval
		b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(tx.db.env.CommitRetries)), ctx)
		if err := backoff.Retry(op, b); err != nil {
			return err
		}
	}
	tx.log.WithField("refs", len(changed.names)).Debug("transaction committed")
	return nil
}

type refChanges struct {
	names []string
	refs  map[string]hash.Hash
}

// changedRefs returns the refs whose value in the transaction differs from
// the value they had when it began. A zero value means deleted.
func (tx *Transaction) changedRefs(ctx context.Context) (refChanges, error) {
	listed, err := tx.db.env.Refs.ListRefs(ctx, tx.prefix)
	if err != nil {
		return refChanges{}, err
	}
	current := make(map[string]hash.Hash, len(listed))
	for key, id := range listed {
		current[strings.TrimPrefix(key, tx.prefix)] = id
	}
	changes := refChanges{refs: make(map[string]hash.Hash)}
	for name, id := range current {
		if tx.start[name] != id {
			changes.refs[name] = id
		}
	}
	for name := range tx.start {
		if _, ok := current[name]; !ok {
			changes.refs[name] = hash.Hash{}
		}
	}
	for name := range changes.refs {
		changes.names = append(changes.names, name)
	}
	sort.Strings(changes.names)
	return changes, nil
}

// applyRef moves the live ref |name| to |target|, rebasing when the live
// ref moved since the transaction began.
func (tx *Transaction) applyRef(ctx context.Context, name string, target hash.Hash) error {
	refs := tx.db.env.Refs
	live, _, err := refs.GetRef(ctx, name)
	if err != nil {
		return err
	}
	orig := tx.start[name]
	if live == orig || live == target {
		return refs.CompareAndPutRef(ctx, name, live, target)
	}
	if !tx.rebase || target.IsEmpty() || live.IsEmpty() {
		return ErrTransactionConflict.New(tx.id, name)
	}

	g := tx.db.env.Graph
	if ok, err := IsAncestor(ctx, g, live, target); err != nil {
		return err
	} else if ok {
		return refs.CompareAndPutRef(ctx, name, live, target)
	}
	if orig.IsEmpty() {
		return ErrTransactionConflict.New(tx.id, name)
	}
	if ok, err := IsAncestor(ctx, g, orig, live); err != nil {
		return err
	} else if !ok {
		return ErrTransactionConflict.New(tx.id, name)
	}

	rebased, err := tx.replay(ctx, name, orig, target, live)
	if err != nil {
		return err
	}
	tx.log.WithFields(logrus.Fields{
		"ref":    name,
		"onto":   live.String(),
		"commit": rebased.String(),
	}).Debug("rebased transaction commits")
	return refs.CompareAndPutRef(ctx, name, live, rebased)
}

// replay re-applies the commits on the first parent chain from |orig| to
// |target| on top of |onto|. Each replayed commit copies the top-level
// entries its original changed. The transaction and the commits since
// |orig| on |onto| must not change the same top-level entry.
func (tx *Transaction) replay(ctx context.Context, name string, orig, target, onto hash.Hash) (hash.Hash, error) {
	odb := tx.db.env.ODB
	var chain []*types.Commit
	for id := target; id != orig; {
		c, err := types.GetCommit(ctx, odb, id)
		if err != nil {
			return hash.Hash{}, err
		}
		p, ok := c.ParentN(0)
		if !ok {
			return hash.Hash{}, ErrTransactionConflict.New(tx.id, name)
		}
		chain = append(chain, c)
		id = p
	}

	origTree, err := commitTree(ctx, odb, orig)
	if err != nil {
		return hash.Hash{}, err
	}
	ontoTree, err := commitTree(ctx, odb, onto)
	if err != nil {
		return hash.Hash{}, err
	}
	targetTree, err := commitTree(ctx, odb, target)
	if err != nil {
		return hash.Hash{}, err
	}
	theirs, err := topLevelChanges(ctx, odb, origTree, ontoTree)
	if err != nil {
		return hash.Hash{}, err
	}
	ours, err := topLevelChanges(ctx, odb, origTree, targetTree)
	if err != nil {
		return hash.Hash{}, err
	}
	for n := range ours {
		if theirs[n] {
			return hash.Hash{}, ErrTransactionConflict.New(tx.id, name)
		}
	}

	base, baseTree := onto, ontoTree
	for i := len(chain) - 1; i >= 0; i-- {
		c := chain[i]
		parentTree, err := commitTree(ctx, odb, c.Parents()[0])
		if err != nil {
			return hash.Hash{}, err
		}
		cTree, err := types.GetTree(ctx, odb, c.TreeID())
		if err != nil {
			return hash.Hash{}, err
		}
		changes, err := topLevelChanges(ctx, odb, parentTree, cTree)
		if err != nil {
			return hash.Hash{}, err
		}
		b := tree.NewBuilder(odb, baseTree)
		for n := range changes {
			node, ok, err := tree.FindChild(ctx, odb, cTree, n)
			if err != nil {
				return hash.Hash{}, err
			}
			if ok {
				b.Put(node)
			} else {
				b.Remove(n)
			}
		}
		if baseTree, err = b.Build(ctx); err != nil {
			return hash.Hash{}, err
		}
		parents := append([]hash.Hash{base}, c.Parents()[1:]...)
		rebased := types.NewCommit(baseTree.ID(), parents, c.Author(), c.Committer(), c.Message())
		if err := tx.db.PutCommit(ctx, rebased); err != nil {
			return hash.Hash{}, err
		}
		base = rebased.ID()
	}
	return base, nil
}

func commitTree(ctx context.Context, odb types.ObjectDatabase, id hash.Hash) (*types.Tree, error) {
	c, err := types.GetCommit(ctx, odb, id)
	if err != nil {
		return nil, err
	}
	return types.GetTree(ctx, odb, c.TreeID())
}

// topLevelChanges returns the names of the entries of the root tree that
// differ between |left| and |right|.
func topLevelChanges(ctx context.Context, odb types.ObjectDatabase, left, right *types.Tree) (map[string]bool, error) {
	c := &topLevelConsumer{names: make(map[string]bool)}
	if err := diff.Walk(ctx, odb, left, right, c); err != nil {
		return nil, err
	}
	return c.names, nil
}

type topLevelConsumer struct {
	diff.NoopConsumer
	names map[string]bool
}

func (c *topLevelConsumer) Feature(left, right *diff.NodeRef) error {
	c.names[diff.DiffEntry{Old: left, New: right}.Path()] = true
	return nil
}

func (c *topLevelConsumer) Tree(left, right *diff.NodeRef) (bool, error) {
	path := diff.DiffEntry{Old: left, New: right}.Path()
	if path == "" {
		return true, nil
	}
	c.names[path] = true
	return false, nil
}
