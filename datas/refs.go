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
	"strings"
	"sync"
	"unicode"

	"github.com/pkg/errors"
	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/kv"
)

var (
	// ErrRefNotFound is returned when a named ref does not exist.
	ErrRefNotFound = goerrors.NewKind("ref not found: %s")

	// ErrInvalidRefName is returned for a malformed ref name.
	ErrInvalidRefName = goerrors.NewKind("invalid ref name %q")

	// ErrOptimisticLockFailed is returned when a ref changed between being
	// read and being updated.
	ErrOptimisticLockFailed = goerrors.NewKind("optimistic lock failed on ref %s")
)

const (
	refPrefix = "r/"

	// HeadsPrefix is the namespace of branch refs.
	HeadsPrefix = "refs/heads/"
	// TagsPrefix is the namespace of tag refs.
	TagsPrefix = "refs/tags/"
	// DefaultBranch is the ref created by a new repository.
	DefaultBranch = HeadsPrefix + "master"
)

// BranchRef returns the ref name of the branch |name|. Names that are
// already full ref names are returned unchanged.
func BranchRef(name string) string {
	if strings.HasPrefix(name, "refs/") {
		return name
	}
	return HeadsPrefix + name
}

// ValidateRefName returns ErrInvalidRefName unless |name| is a non-empty
// slash separated path without empty, "." or ".." elements, whitespace or
// control characters.
func ValidateRefName(name string) error {
	if name == "" {
		return ErrInvalidRefName.New(name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return ErrInvalidRefName.New(name)
		}
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return ErrInvalidRefName.New(name)
		}
	}
	return nil
}

// RefStore reads and updates named refs.
type RefStore interface {
	GetRef(ctx context.Context, name string) (hash.Hash, bool, error)
	CompareAndPutRef(ctx context.Context, name string, oldID, newID hash.Hash) error
}

// RefDatabase maps ref names to commit ids in a kv.Store.
type RefDatabase struct {
	kvs kv.Store

	// mu makes compare-and-put atomic and is held while a transaction
	// copies refs.
	mu sync.Mutex
}

var _ RefStore = (*RefDatabase)(nil)

// NewRefDatabase returns a RefDatabase keeping its refs in |kvs| under a
// fixed prefix.
func NewRefDatabase(kvs kv.Store) *RefDatabase {
	return &RefDatabase{kvs: kv.Prefixed(kvs, refPrefix)}
}

func (rdb *RefDatabase) getRef(ctx context.Context, name string) (hash.Hash, bool, error) {
	data, ok, err := rdb.kvs.Get(ctx, []byte(name))
	if err != nil {
		return hash.Hash{}, false, errors.Wrapf(err, "reading ref %s", name)
	}
	if !ok {
		return hash.Hash{}, false, nil
	}
	if len(data) != hash.ByteLen {
		return hash.Hash{}, false, errors.Errorf("ref %s has a value of %d bytes", name, len(data))
	}
	return hash.New(data), true, nil
}

// GetRef returns the commit |name| points at and whether it exists.
func (rdb *RefDatabase) GetRef(ctx context.Context, name string) (hash.Hash, bool, error) {
	if err := ValidateRefName(name); err != nil {
		return hash.Hash{}, false, err
	}
	return rdb.getRef(ctx, name)
}

// MustGetRef returns the commit |name| points at or ErrRefNotFound.
func (rdb *RefDatabase) MustGetRef(ctx context.Context, name string) (hash.Hash, error) {
	id, ok, err := rdb.GetRef(ctx, name)
	if err != nil {
		return hash.Hash{}, err
	}
	if !ok {
		return hash.Hash{}, ErrRefNotFound.New(name)
	}
	return id, nil
}

// PutRef points |name| at |id| unconditionally.
func (rdb *RefDatabase) PutRef(ctx context.Context, name string, id hash.Hash) error {
	if err := ValidateRefName(name); err != nil {
		return err
	}
	rdb.mu.Lock()
	defer rdb.mu.Unlock()
	return errors.Wrapf(rdb.kvs.Put(ctx, []byte(name), id[:]), "writing ref %s", name)
}

// CompareAndPutRef points |name| at |newID| if it currently points at |oldID|.
// A zero |oldID| requires that |name| does not exist and a zero |newID| deletes
// it. ErrOptimisticLockFailed is returned if the current value differs.
func (rdb *RefDatabase) CompareAndPutRef(ctx context.Context, name string, oldID, newID hash.Hash) error {
	if err := ValidateRefName(name); err != nil {
		return err
	}
	rdb.mu.Lock()
	defer rdb.mu.Unlock()
	cur, _, err := rdb.getRef(ctx, name)
	if err != nil {
		return err
	}
	if cur != oldID {
		return ErrOptimisticLockFailed.New(name)
	}
	if newID.IsEmpty() {
		return errors.Wrapf(rdb.kvs.Delete(ctx, []byte(name)), "deleting ref %s", name)
	}
	return errors.Wrapf(rdb.kvs.Put(ctx, []byte(name), newID[:]), "writing ref %s", name)
}

// DeleteRef removes |name| and returns whether it existed.
func (rdb *RefDatabase) DeleteRef(ctx context.Context, name string) (bool, error) {
	if err := ValidateRefName(name); err != nil {
		return false, err
	}
	rdb.mu.Lock()
	defer rdb.mu.Unlock()
	_, ok, err := rdb.getRef(ctx, name)
	if err != nil || !ok {
		return false, err
	}
	return true, errors.Wrapf(rdb.kvs.Delete(ctx, []byte(name)), "deleting ref %s", name)
}

// ListRefs returns every ref whose name starts with |prefix|.
func (rdb *RefDatabase) ListRefs(ctx context.Context, prefix string) (map[string]hash.Hash, error) {
	refs := make(map[string]hash.Hash)
	err := rdb.kvs.Scan(ctx, []byte(prefix), func(key, val []byte) error {
		if len(val) != hash.ByteLen {
			return errors.Errorf("ref %s has a value of %d bytes", key, len(val))
		}
		refs[string(key)] = hash.New(val)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// copyRefs copies the refs under |from| to the same names under |to|,
// holding the lock so that the copy is consistent.
func (rdb *RefDatabase) copyRefs(ctx context.Context, from, to string) (map[string]hash.Hash, error) {
	rdb.mu.Lock()
	defer rdb.mu.Unlock()
	refs, err := rdb.ListRefs(ctx, from)
	if err != nil {
		return nil, err
	}
	pairs := make([]kv.Pair, 0, len(refs))
	for name, id := range refs {
		id := id
		pairs = append(pairs, kv.Pair{Key: []byte(to + name), Value: id[:]})
	}
	if err := rdb.kvs.PutMany(ctx, pairs); err != nil {
		return nil, errors.Wrap(err, "copying refs")
	}
	return refs, nil
}

// deleteRefs removes every ref under |prefix|.
func (rdb *RefDatabase) deleteRefs(ctx context.Context, prefix string) error {
	refs, err := rdb.ListRefs(ctx, prefix)
	if err != nil {
		return err
	}
	rdb.mu.Lock()
	defer rdb.mu.Unlock()
	for name := range refs {
		if err := rdb.kvs.Delete(ctx, []byte(name)); err != nil {
			return errors.Wrapf(err, "deleting ref %s", name)
		}
	}
	return nil
}
