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
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type StoreSuite struct {
	suite.Suite
	open  func() Store
	store Store
}

func (suite *StoreSuite) SetupTest() {
	suite.store = suite.open()
}

func (suite *StoreSuite) TearDownTest() {
	suite.NoError(suite.store.Close())
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &StoreSuite{open: func() Store { return NewMemoryStore() }})
}

func TestBoltStore(t *testing.T) {
	suite.Run(t, &StoreSuite{open: func() Store {
		s, err := NewBoltStore(filepath.Join(t.TempDir(), "objects.db"))
		if err != nil {
			t.Fatal(err)
		}
		return s
	}})
}

func TestLevelDBStore(t *testing.T) {
	suite.Run(t, &StoreSuite{open: func() Store {
		s, err := NewLevelDBStore(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		return s
	}})
}

func (suite *StoreSuite) TestGetPutDelete() {
	ctx := context.Background()
	_, ok, err := suite.store.Get(ctx, []byte("a"))
	suite.NoError(err)
	suite.False(ok)

	suite.NoError(suite.store.Put(ctx, []byte("a"), []byte("1")))
	val, ok, err := suite.store.Get(ctx, []byte("a"))
	suite.NoError(err)
	suite.True(ok)
	suite.Equal([]byte("1"), val)

	has, err := suite.store.Has(ctx, []byte("a"))
	suite.NoError(err)
	suite.True(has)

	suite.NoError(suite.store.Delete(ctx, []byte("a")))
	has, err = suite.store.Has(ctx, []byte("a"))
	suite.NoError(err)
	suite.False(has)

	suite.NoError(suite.store.Delete(ctx, []byte("missing")))
}

func (suite *StoreSuite) TestScanPrefix() {
	ctx := context.Background()
	suite.NoError(suite.store.PutMany(ctx, []Pair{
		{[]byte("r/b"), []byte("2")},
		{[]byte("r/a"), []byte("1")},
		{[]byte("o/x"), []byte("x")},
		{[]byte("r/c"), []byte("3")},
	}))

	var keys []string
	err := suite.store.Scan(ctx, []byte("r/"), func(key, val []byte) error {
		keys = append(keys, string(key))
		return nil
	})
	suite.NoError(err)
	suite.Equal([]string{"r/a", "r/b", "r/c"}, keys)

	stop := errors.New("stop")
	count := 0
	err = suite.store.Scan(ctx, []byte("r/"), func(key, val []byte) error {
		count++
		return stop
	})
	suite.Equal(stop, err)
	suite.Equal(1, count)
}

func (suite *StoreSuite) TestPrefixed() {
	ctx := context.Background()
	refs := Prefixed(suite.store, "refs/")
	suite.NoError(refs.Put(ctx, []byte("heads/master"), []byte("m")))

	val, ok, err := suite.store.Get(ctx, []byte("refs/heads/master"))
	suite.NoError(err)
	suite.True(ok)
	suite.Equal([]byte("m"), val)

	var keys []string
	suite.NoError(refs.Scan(ctx, []byte("heads/"), func(key, val []byte) error {
		keys = append(keys, string(key))
		return nil
	}))
	suite.Equal([]string{"heads/master"}, keys)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("cassandra", "")
	if !ErrUnknownBackend.Is(err) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}
