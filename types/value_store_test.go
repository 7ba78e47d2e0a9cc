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
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarianski/GeoGit/hash"
)

func mustFeature(t *testing.T, values ...interface{}) *Feature {
	f, err := NewFeature(values...)
	require.NoError(t, err)
	return f
}

func TestObjectStorePutGet(t *testing.T) {
	ctx := context.Background()
	odb := NewMemoryObjectStore()
	f := mustFeature(t, "a")

	inserted, err := odb.Put(ctx, f)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = odb.Put(ctx, f)
	require.NoError(t, err)
	assert.False(t, inserted)

	read, err := GetFeature(ctx, odb, f.ID())
	require.NoError(t, err)
	assert.Equal(t, f.Values(), read.Values())

	_, err = GetTree(ctx, odb, f.ID())
	assert.True(t, ErrUnexpectedType.Is(err))

	_, err = odb.Get(ctx, hash.Of([]byte("missing")))
	assert.True(t, ErrObjectNotFound.Is(err))

	_, ok, err := GetIfPresent(ctx, odb, hash.Of([]byte("missing")))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestObjectStoreEmptyTreeAlwaysPresent(t *testing.T) {
	ctx := context.Background()
	odb := NewMemoryObjectStore()
	ok, err := odb.Exists(ctx, EmptyTreeID)
	require.NoError(t, err)
	assert.True(t, ok)

	tree, err := GetTree(ctx, odb, EmptyTreeID)
	require.NoError(t, err)
	assert.True(t, tree.IsEmpty())
}

func TestObjectStoreBulkOps(t *testing.T) {
	ctx := context.Background()
	odb := NewMemoryObjectStore()
	a, b, c := mustFeature(t, "a"), mustFeature(t, "b"), mustFeature(t, "c")
	_, err := odb.Put(ctx, a)
	require.NoError(t, err)

	l := &CountingListener{}
	n, err := odb.PutAll(ctx, []RevObject{a, b, c, c}, l)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, l.InsertedCount)
	assert.Equal(t, 2, l.FoundCount)
	assert.Positive(t, l.BytesInserted)

	l = &CountingListener{}
	n, err = odb.DeleteAll(ctx, []hash.Hash{a.ID(), hash.Of([]byte("nope"))}, l)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, l.DeletedCount)
	assert.Equal(t, 1, l.NotFoundCount)

	ok, err := odb.Exists(ctx, a.ID())
	require.NoError(t, err)
	assert.False(t, ok)
}

type recordingDatabase struct {
	ObjectDatabase
	calls *[]string
	name  string
}

func (r recordingDatabase) Get(ctx context.Context, id hash.Hash) (RevObject, error) {
	*r.calls = append(*r.calls, r.name)
	return r.ObjectDatabase.Get(ctx, id)
}

func recording(name string, calls *[]string) Middleware {
	return func(next ObjectDatabase) ObjectDatabase {
		return recordingDatabase{next, calls, name}
	}
}

func TestChainOrder(t *testing.T) {
	var calls []string
	odb := Chain(NewMemoryObjectStore(), recording("outer", &calls), recording("inner", &calls))
	_, err := odb.Get(context.Background(), EmptyTreeID)
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, calls)
}

func TestCachingMiddleware(t *testing.T) {
	ctx := context.Background()
	base := NewMemoryObjectStore()
	var calls []string
	mw, err := CachingMiddleware(16)
	require.NoError(t, err)
	odb := Chain(base, mw, recording("base", &calls))

	f := mustFeature(t, "cached")
	_, err = odb.Put(ctx, f)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = odb.Get(ctx, f.ID())
		require.NoError(t, err)
	}
	assert.Empty(t, calls)

	_, err = odb.Delete(ctx, f.ID())
	require.NoError(t, err)
	_, err = odb.Get(ctx, f.ID())
	assert.True(t, ErrObjectNotFound.Is(err))
	assert.Equal(t, []string{"base"}, calls)

	_, err = CachingMiddleware(0)
	assert.Error(t, err)
}

func TestMetricsMiddleware(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m, err := NewDatabaseMetrics(reg)
	require.NoError(t, err)
	odb := Chain(NewMemoryObjectStore(), m.Middleware())

	f := mustFeature(t, 1)
	_, err = odb.Put(ctx, f)
	require.NoError(t, err)
	_, err = odb.Get(ctx, f.ID())
	require.NoError(t, err)
	_, err = odb.Get(ctx, hash.Of([]byte("missing")))
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ops.WithLabelValues("get")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errs.WithLabelValues("get")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inserted))

	_, err = NewDatabaseMetrics(reg)
	assert.Error(t, err, "duplicate registration")
}

func TestLoggingMiddleware(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.TraceLevel)
	odb := Chain(NewMemoryObjectStore(), LoggingMiddleware(logrus.NewEntry(logger)))

	_, err := odb.Get(context.Background(), EmptyTreeID)
	require.NoError(t, err)
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "get", hook.LastEntry().Data["op"])
}
