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

package types

import (
	"context"

	"github.com/rmarianski/GeoGit/chunks"
	"github.com/rmarianski/GeoGit/hash"
)

// BulkOpListener is notified of the outcome of each object in a bulk put or
// delete.
type BulkOpListener interface {
	// Inserted is called for each object written by a bulk put.
	Inserted(id hash.Hash, size int)
	// Found is called for each object a bulk put skipped because it was
	// already stored.
	Found(id hash.Hash)
	// Deleted is called for each object removed by a bulk delete.
	Deleted(id hash.Hash)
	// NotFound is called for each id a bulk delete did not find.
	NotFound(id hash.Hash)
}

// NoopListener is a BulkOpListener that ignores every notification.
type NoopListener struct{}

func (NoopListener) Inserted(hash.Hash, int) {}
func (NoopListener) Found(hash.Hash)         {}
func (NoopListener) Deleted(hash.Hash)       {}
func (NoopListener) NotFound(hash.Hash)      {}

// CountingListener counts the notifications it receives. It is not safe for
// concurrent use.
type CountingListener struct {
	InsertedCount int
	FoundCount    int
	DeletedCount  int
	NotFoundCount int
	BytesInserted int64
}

func (c *CountingListener) Inserted(_ hash.Hash, size int) {
	c.InsertedCount++
	c.BytesInserted += int64(size)
}

func (c *CountingListener) Found(hash.Hash) {
	c.FoundCount++
}

func (c *CountingListener) Deleted(hash.Hash) {
	c.DeletedCount++
}

func (c *CountingListener) NotFound(hash.Hash) {
	c.NotFoundCount++
}

// ObjectDatabase reads and writes RevObjects by id.
type ObjectDatabase interface {
	// Get returns the object with |id|, or ErrObjectNotFound.
	Get(ctx context.Context, id hash.Hash) (RevObject, error)

	// Exists returns whether the object with |id| is stored.
	Exists(ctx context.Context, id hash.Hash) (bool, error)

	// Put stores |obj|, returning false if it was already present.
	Put(ctx context.Context, obj RevObject) (bool, error)

	// PutAll stores every object in |objs| and returns how many were
	// inserted. |l| may be nil.
	PutAll(ctx context.Context, objs []RevObject, l BulkOpListener) (int, error)

	// Delete removes the object with |id|, returning whether it was present.
	Delete(ctx context.Context, id hash.Hash) (bool, error)

	// DeleteAll removes every object in |ids| and returns how many were
	// present. |l| may be nil.
	DeleteAll(ctx context.Context, ids []hash.Hash, l BulkOpListener) (int, error)
}

// ObjectStore is an ObjectDatabase that encodes objects into a
// chunks.ChunkStore.
type ObjectStore struct {
	cs chunks.ChunkStore
}

var _ ObjectDatabase = (*ObjectStore)(nil)

// NewObjectStore returns an ObjectStore writing to |cs|.
func NewObjectStore(cs chunks.ChunkStore) *ObjectStore {
	return &ObjectStore{cs: cs}
}

// NewMemoryObjectStore returns an ObjectStore backed by a fresh in-memory
// chunk store.
func NewMemoryObjectStore() *ObjectStore {
	ts := &chunks.TestStorage{}
	return NewObjectStore(ts.NewView())
}

// ChunkStore returns the underlying chunk store.
func (s *ObjectStore) ChunkStore() chunks.ChunkStore {
	return s.cs
}

func (s *ObjectStore) Get(ctx context.Context, id hash.Hash) (RevObject, error) {
	if id == EmptyTreeID {
		return EmptyTree, nil
	}
	c, err := s.cs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrObjectNotFound.New(id)
	}
	return Decode(id, c.Data())
}

func (s *ObjectStore) Exists(ctx context.Context, id hash.Hash) (bool, error) {
	if id == EmptyTreeID {
		return true, nil
	}
	return s.cs.Has(ctx, id)
}

func (s *ObjectStore) Put(ctx context.Context, obj RevObject) (bool, error) {
	n, err := s.PutAll(ctx, []RevObject{obj}, nil)
	return n == 1, err
}

func (s *ObjectStore) PutAll(ctx context.Context, objs []RevObject, l BulkOpListener) (int, error) {
	if l == nil {
		l = NoopListener{}
	}
	ids := make(hash.HashSet, len(objs))
	for _, obj := range objs {
		ids.Insert(obj.ID())
	}
	absent, err := s.cs.HasMany(ctx, ids)
	if err != nil {
		return 0, err
	}

	var toWrite []chunks.Chunk
	for _, obj := range objs {
		id := obj.ID()
		if !absent.Has(id) {
			l.Found(id)
			continue
		}
		// Repeated objects in |objs| are only written once.
		absent.Remove(id)
		data := Encode(obj)
		toWrite = append(toWrite, chunks.NewChunkWithHash(id, data))
		l.Inserted(id, len(data))
	}
	if len(toWrite) == 0 {
		return 0, nil
	}
	if err := s.cs.PutMany(ctx, toWrite); err != nil {
		return 0, err
	}
	return len(toWrite), nil
}

func (s *ObjectStore) Delete(ctx context.Context, id hash.Hash) (bool, error) {
	return s.cs.Delete(ctx, id)
}

func (s *ObjectStore) DeleteAll(ctx context.Context, ids []hash.Hash, l BulkOpListener) (int, error) {
	if l == nil {
		l = NoopListener{}
	}
	count := 0
	for _, id := range ids {
		ok, err := s.cs.Delete(ctx, id)
		if err != nil {
			return count, err
		}
		if ok {
			count++
			l.Deleted(id)
		} else {
			l.NotFound(id)
		}
	}
	return count, nil
}

// GetIfPresent returns the object with |id| and true, or false if it is not
// stored.
func GetIfPresent(ctx context.Context, odb ObjectDatabase, id hash.Hash) (RevObject, bool, error) {
	obj, err := odb.Get(ctx, id)
	if ErrObjectNotFound.Is(err) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	return obj, true, nil
}

func getTyped[T RevObject](ctx context.Context, odb ObjectDatabase, id hash.Hash, want ObjectType) (T, error) {
	var zero T
	obj, err := odb.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	typed, ok := obj.(T)
	if !ok {
		return zero, ErrUnexpectedType.New(id, obj.Type(), want)
	}
	return typed, nil
}

// GetTree reads the tree with |id| from |odb|.
func GetTree(ctx context.Context, odb ObjectDatabase, id hash.Hash) (*Tree, error) {
	return getTyped[*Tree](ctx, odb, id, TypeTree)
}

// GetCommit reads the commit with |id| from |odb|.
func GetCommit(ctx context.Context, odb ObjectDatabase, id hash.Hash) (*Commit, error) {
	return getTyped[*Commit](ctx, odb, id, TypeCommit)
}

// GetFeature reads the feature with |id| from |odb|.
func GetFeature(ctx context.Context, odb ObjectDatabase, id hash.Hash) (*Feature, error) {
	return getTyped[*Feature](ctx, odb, id, TypeFeature)
}

// GetFeatureType reads the feature type with |id| from |odb|.
func GetFeatureType(ctx context.Context, odb ObjectDatabase, id hash.Hash) (*FeatureType, error) {
	return getTyped[*FeatureType](ctx, odb, id, TypeFeatureType)
}

// GetTag reads the tag with |id| from |odb|.
func GetTag(ctx context.Context, odb ObjectDatabase, id hash.Hash) (*Tag, error) {
	return getTyped[*Tag](ctx, odb, id, TypeTag)
}
