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

// Package kv defines the ordered key/value byte store that every persistent
// structure in the repository is layered on, along with in-memory, bbolt and
// LevelDB implementations.
package kv

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/src-d/go-errors.v1"
)

// ErrUnknownBackend is returned by Open for an unrecognized backend name.
var ErrUnknownBackend = errors.NewKind("unknown storage backend: %s")

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.NewKind("store is closed")

// Pair is a single key/value entry.
type Pair struct {
	Key   []byte
	Value []byte
}

// Store is an ordered key/value byte store. Implementations must be safe for
// concurrent use. Values returned from Get and passed to Scan callbacks are
// owned by the caller.
type Store interface {
	// Get returns the value for |key| and whether it was present.
	Get(ctx context.Context, key []byte) ([]byte, bool, error)

	// Has returns whether |key| is present.
	Has(ctx context.Context, key []byte) (bool, error)

	// Put sets |key| to |val|.
	Put(ctx context.Context, key, val []byte) error

	// PutMany writes all |pairs| atomically.
	PutMany(ctx context.Context, pairs []Pair) error

	// Delete removes |key|. Deleting an absent key is not an error.
	Delete(ctx context.Context, key []byte) error

	// Scan calls |cb| for each key with |prefix| in ascending key order.
	// Returning an error from |cb| stops the scan and is returned by Scan.
	Scan(ctx context.Context, prefix []byte, cb func(key, val []byte) error) error

	Close() error
}

// Backend names accepted by Open.
const (
	MemoryBackend  = "memory"
	BoltBackend    = "bolt"
	LevelDBBackend = "leveldb"
)

// Open opens a Store of the named |backend| rooted at |path|. |path| is
// ignored for the memory backend.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case MemoryBackend, "":
		return NewMemoryStore(), nil
	case BoltBackend:
		return NewBoltStore(path)
	case LevelDBBackend:
		return NewLevelDBStore(path)
	default:
		return nil, ErrUnknownBackend.New(backend)
	}
}

// Prefixed returns a Store whose keys are all transparently prefixed with
// |prefix| in |s|. Closing the returned Store does not close |s|.
func Prefixed(s Store, prefix string) Store {
	return prefixedStore{s, []byte(prefix)}
}

type prefixedStore struct {
	s      Store
	prefix []byte
}

func (p prefixedStore) key(k []byte) []byte {
	out := make([]byte, 0, len(p.prefix)+len(k))
	out = append(out, p.prefix...)
	return append(out, k...)
}

func (p prefixedStore) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	return p.s.Get(ctx, p.key(key))
}

func (p prefixedStore) Has(ctx context.Context, key []byte) (bool, error) {
	return p.s.Has(ctx, p.key(key))
}

func (p prefixedStore) Put(ctx context.Context, key, val []byte) error {
	return p.s.Put(ctx, p.key(key), val)
}

func (p prefixedStore) PutMany(ctx context.Context, pairs []Pair) error {
	prefixed := make([]Pair, len(pairs))
	for i, kv := range pairs {
		prefixed[i] = Pair{p.key(kv.Key), kv.Value}
	}
	return p.s.PutMany(ctx, prefixed)
}

func (p prefixedStore) Delete(ctx context.Context, key []byte) error {
	return p.s.Delete(ctx, p.key(key))
}

func (p prefixedStore) Scan(ctx context.Context, prefix []byte, cb func(key, val []byte) error) error {
	return p.s.Scan(ctx, p.key(prefix), func(key, val []byte) error {
		return cb(key[len(p.prefix):], val)
	})
}

func (p prefixedStore) Close() error {
	return nil
}

func (p prefixedStore) String() string {
	return fmt.Sprintf("%v/%s", p.s, p.prefix)
}
