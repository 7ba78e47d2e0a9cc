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
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("geogit")

// BoltStore is a Store backed by a single bbolt database file.
type BoltStore struct {
	db   *bolt.DB
	path string
}

var _ Store = (*BoltStore)(nil)

// NewBoltStore opens or creates the bbolt database at |path|.
func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, errors.Wrapf(err, "creating directory for %s", path)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening bolt store %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating bolt bucket")
	}
	return &BoltStore{db: db, path: path}, nil
}

func (bs *BoltStore) Get(ctx context.Context, key []byte) (val []byte, ok bool, err error) {
	err = bs.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(boltBucket).Get(key)
		if v != nil {
			val, ok = bytes.Clone(v), true
		}
		return nil
	})
	if err != nil {
		return nil, false, errors.Wrap(err, "bolt get")
	}
	return val, ok, nil
}

func (bs *BoltStore) Has(ctx context.Context, key []byte) (bool, error) {
	_, ok, err := bs.Get(ctx, key)
	return ok, err
}

func (bs *BoltStore) Put(ctx context.Context, key, val []byte) error {
	return bs.PutMany(ctx, []Pair{{key, val}})
}

func (bs *BoltStore) PutMany(ctx context.Context, pairs []Pair) error {
	err := bs.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltBucket)
		for _, p := range pairs {
			if err := b.Put(p.Key, p.Value); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrap(err, "bolt put")
}

func (bs *BoltStore) Delete(ctx context.Context, key []byte) error {
	err := bs.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete(key)
	})
	return errors.Wrap(err, "bolt delete")
}

func (bs *BoltStore) Scan(ctx context.Context, prefix []byte, cb func(key, val []byte) error) error {
	var pairs []Pair
	err := bs.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(boltBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			pairs = append(pairs, Pair{bytes.Clone(k), bytes.Clone(v)})
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "bolt scan")
	}
	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := cb(p.Key, p.Value); err != nil {
			return err
		}
	}
	return nil
}

func (bs *BoltStore) Close() error {
	return bs.db.Close()
}

func (bs *BoltStore) String() string {
	return "bolt:" + bs.path
}
