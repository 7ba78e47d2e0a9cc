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

package kv

import (
	"bytes"
	"context"
	"sync"

	"github.com/google/btree"
)

const btreeDegree = 32

type memItem struct {
	key []byte
	val []byte
}

func lessItem(a, b memItem) bool {
	return bytes.Compare(a.key, b.key) < 0
}

// MemoryStore is a Store backed by an in-memory btree.
type MemoryStore struct {
	mu     sync.RWMutex
	tree   *btree.BTreeG[memItem]
	closed bool
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tree: btree.NewG[memItem](btreeDegree, lessItem)}
}

func (ms *MemoryStore) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	if ms.closed {
		return nil, false, ErrClosed.New()
	}
	item, ok := ms.tree.Get(memItem{key: key})
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(item.val), true, nil
}

func (ms *MemoryStore) Has(ctx context.Context, key []byte) (bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	if ms.closed {
		return false, ErrClosed.New()
	}
	return ms.tree.Has(memItem{key: key}), nil
}

func (ms *MemoryStore) Put(ctx context.Context, key, val []byte) error {
	return ms.PutMany(ctx, []Pair{{key, val}})
}

func (ms *MemoryStore) PutMany(ctx context.Context, pairs []Pair) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return ErrClosed.New()
	}
	for _, p := range pairs {
		ms.tree.ReplaceOrInsert(memItem{key: bytes.Clone(p.Key), val: bytes.Clone(p.Value)})
	}
	return nil
}

func (ms *MemoryStore) Delete(ctx context.Context, key []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return ErrClosed.New()
	}
	ms.tree.Delete(memItem{key: key})
	return nil
}

func (ms *MemoryStore) Scan(ctx context.Context, prefix []byte, cb func(key, val []byte) error) error {
	// Copy the matching range first so |cb| may write to the store.
	ms.mu.RLock()
	if ms.closed {
		ms.mu.RUnlock()
		return ErrClosed.New()
	}
	var items []memItem
	ms.tree.AscendGreaterOrEqual(memItem{key: prefix}, func(item memItem) bool {
		if !bytes.HasPrefix(item.key, prefix) {
			return false
		}
		items = append(items, memItem{bytes.Clone(item.key), bytes.Clone(item.val)})
		return true
	})
	ms.mu.RUnlock()

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := cb(item.key, item.val); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of keys in the store.
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.tree.Len()
}

func (ms *MemoryStore) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.closed = true
	return nil
}

func (ms *MemoryStore) String() string {
	return "memory"
}
