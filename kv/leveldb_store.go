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
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDBStore is a Store backed by a LevelDB directory.
type LevelDBStore struct {
	db  *leveldb.DB
	dir string
}

var _ Store = (*LevelDBStore)(nil)

// NewLevelDBStore opens or creates the LevelDB database in |dir|.
func NewLevelDBStore(dir string) (*LevelDBStore, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dir)
	}
	db, err := leveldb.OpenFile(dir, &opt.Options{
		// Values are snappy compressed one layer up.
		Compression: opt.NoCompression,
		Filter:      filter.NewBloomFilter(10), // 10 bits/key
	})
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb store %s", dir)
	}
	return &LevelDBStore{db: db, dir: dir}, nil
}

func (l *LevelDBStore) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	val, err := l.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	} else if err != nil {
		return nil, false, errors.Wrap(err, "leveldb get")
	}
	return val, true, nil
}

func (l *LevelDBStore) Has(ctx context.Context, key []byte) (bool, error) {
	ok, err := l.db.Has(key, &opt.ReadOptions{DontFillCache: true})
	if err != nil {
		return false, errors.Wrap(err, "leveldb has")
	}
	return ok, nil
}

func (l *LevelDBStore) Put(ctx context.Context, key, val []byte) error {
	return errors.Wrap(l.db.Put(key, val, nil), "leveldb put")
}

func (l *LevelDBStore) PutMany(ctx context.Context, pairs []Pair) error {
	batch := new(leveldb.Batch)
	for _, p := range pairs {
		batch.Put(p.Key, p.Value)
	}
	return errors.Wrap(l.db.Write(batch, nil), "leveldb write batch")
}

func (l *LevelDBStore) Delete(ctx context.Context, key []byte) error {
	return errors.Wrap(l.db.Delete(key, nil), "leveldb delete")
}

func (l *LevelDBStore) Scan(ctx context.Context, prefix []byte, cb func(key, val []byte) error) error {
	iter := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		// The iterator reuses its buffers between calls to Next.
		key := append([]byte(nil), iter.Key()...)
		val := append([]byte(nil), iter.Value()...)
		if err := cb(key, val); err != nil {
			return err
		}
	}
	return errors.Wrap(iter.Error(), "leveldb scan")
}

func (l *LevelDBStore) Close() error {
	return l.db.Close()
}

func (l *LevelDBStore) String() string {
	return "leveldb:" + l.dir
}
