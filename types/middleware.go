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
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/rmarianski/GeoGit/hash"
)

// Middleware wraps an ObjectDatabase with additional behavior.
type Middleware func(next ObjectDatabase) ObjectDatabase

// Chain applies |mws| to |base|. The first middleware is outermost and sees
// every call before the others.
func Chain(base ObjectDatabase, mws ...Middleware) ObjectDatabase {
	odb := base
	for i := len(mws) - 1; i >= 0; i-- {
		odb = mws[i](odb)
	}
	return odb
}

// CachingMiddleware keeps up to |size| recently read or written objects in
// memory. Deleted objects are evicted.
func CachingMiddleware(size int) (Middleware, error) {
	// Validate the size eagerly so the returned Middleware cannot fail.
	if _, err := lru.New2Q[hash.Hash, RevObject](size); err != nil {
		return nil, err
	}
	return func(next ObjectDatabase) ObjectDatabase {
		cache, _ := lru.New2Q[hash.Hash, RevObject](size)
		return &cachingDatabase{ObjectDatabase: next, cache: cache}
	}, nil
}

type cachingDatabase struct {
	ObjectDatabase
	cache *lru.TwoQueueCache[hash.Hash, RevObject]
}

func (c *cachingDatabase) Get(ctx context.Context, id hash.Hash) (RevObject, error) {
	if obj, ok := c.cache.Get(id); ok {
		return obj, nil
	}
	obj, err := c.ObjectDatabase.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.Add(id, obj)
	return obj, nil
}

func (c *cachingDatabase) Exists(ctx context.Context, id hash.Hash) (bool, error) {
	if c.cache.Contains(id) {
		return true, nil
	}
	return c.ObjectDatabase.Exists(ctx, id)
}

func (c *cachingDatabase) Put(ctx context.Context, obj RevObject) (bool, error) {
	inserted, err := c.ObjectDatabase.Put(ctx, obj)
	if err == nil {
		c.cache.Add(obj.ID(), obj)
	}
	return inserted, err
}

func (c *cachingDatabase) PutAll(ctx context.Context, objs []RevObject, l BulkOpListener) (int, error) {
	n, err := c.ObjectDatabase.PutAll(ctx, objs, l)
	if err == nil {
		for _, obj := range objs {
			c.cache.Add(obj.ID(), obj)
		}
	}
	return n, err
}

func (c *cachingDatabase) Delete(ctx context.Context, id hash.Hash) (bool, error) {
	c.cache.Remove(id)
	return c.ObjectDatabase.Delete(ctx, id)
}

func (c *cachingDatabase) DeleteAll(ctx context.Context, ids []hash.Hash, l BulkOpListener) (int, error) {
	for _, id := range ids {
		c.cache.Remove(id)
	}
	return c.ObjectDatabase.DeleteAll(ctx, ids, l)
}

const opLabel = "op"

// DatabaseMetrics holds the prometheus collectors updated by
// MetricsMiddleware.
type DatabaseMetrics struct {
	ops      *prometheus.CounterVec
	errs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inserted prometheus.Counter
}

// NewDatabaseMetrics creates the object database collectors and registers
// them with |reg|.
func NewDatabaseMetrics(reg prometheus.Registerer) (*DatabaseMetrics, error) {
	m := &DatabaseMetrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geogit_odb_operations_total",
			Help: "Count of object database operations",
		}, []string{opLabel}),
		errs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geogit_odb_errors_total",
			Help: "Count of object database operations that failed",
		}, []string{opLabel}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geogit_odb_operation_seconds",
			Help:    "Duration of object database operations",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{opLabel}),
		inserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "geogit_odb_objects_inserted_total",
			Help: "Count of objects inserted into the object database",
		}),
	}
	for _, c := range []prometheus.Collector{m.ops, m.errs, m.duration, m.inserted} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Middleware returns a Middleware recording every call in |m|.
func (m *DatabaseMetrics) Middleware() Middleware {
	return func(next ObjectDatabase) ObjectDatabase {
		return &metricsDatabase{ObjectDatabase: next, m: m}
	}
}

func (m *DatabaseMetrics) observe(op string, start time.Time, err error) {
	m.ops.WithLabelValues(op).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		m.errs.WithLabelValues(op).Inc()
	}
}

type metricsDatabase struct {
	ObjectDatabase
	m *DatabaseMetrics
}

func (md *metricsDatabase) Get(ctx context.Context, id hash.Hash) (RevObject, error) {
	start := time.Now()
	obj, err := md.ObjectDatabase.Get(ctx, id)
	md.m.observe("get", start, err)
	return obj, err
}

func (md *metricsDatabase) Exists(ctx context.Context, id hash.Hash) (bool, error) {
	start := time.Now()
	ok, err := md.ObjectDatabase.Exists(ctx, id)
	md.m.observe("exists", start, err)
	return ok, err
}

func (md *metricsDatabase) Put(ctx context.Context, obj RevObject) (bool, error) {
	start := time.Now()
	inserted, err := md.ObjectDatabase.Put(ctx, obj)
	md.m.observe("put", start, err)
	if inserted {
		md.m.inserted.Inc()
	}
	return inserted, err
}

func (md *metricsDatabase) PutAll(ctx context.Context, objs []RevObject, l BulkOpListener) (int, error) {
	start := time.Now()
	n, err := md.ObjectDatabase.PutAll(ctx, objs, l)
	md.m.observe("put_all", start, err)
	md.m.inserted.Add(float64(n))
	return n, err
}

func (md *metricsDatabase) Delete(ctx context.Context, id hash.Hash) (bool, error) {
	start := time.Now()
	ok, err := md.ObjectDatabase.Delete(ctx, id)
	md.m.observe("delete", start, err)
	return ok, err
}

func (md *metricsDatabase) DeleteAll(ctx context.Context, ids []hash.Hash, l BulkOpListener) (int, error) {
	start := time.Now()
	n, err := md.ObjectDatabase.DeleteAll(ctx, ids, l)
	md.m.observe("delete_all", start, err)
	return n, err
}

// LoggingMiddleware traces every call at the trace level of |log|.
func LoggingMiddleware(log *logrus.Entry) Middleware {
	return func(next ObjectDatabase) ObjectDatabase {
		return &loggingDatabase{ObjectDatabase: next, log: log}
	}
}

type loggingDatabase struct {
	ObjectDatabase
	log *logrus.Entry
}

func (ld *loggingDatabase) trace(op string, id hash.Hash, start time.Time, err error) {
	if !ld.log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		return
	}
	e := ld.log.WithFields(logrus.Fields{"op": op, "duration": time.Since(start)})
	if !id.IsEmpty() {
		e = e.WithField("id", id.String())
	}
	if err != nil {
		e = e.WithError(err)
	}
	e.Trace("object database call")
}

func (ld *loggingDatabase) Get(ctx context.Context, id hash.Hash) (RevObject, error) {
	start := time.Now()
	obj, err := ld.ObjectDatabase.Get(ctx, id)
	ld.trace("get", id, start, err)
	return obj, err
}

func (ld *loggingDatabase) Exists(ctx context.Context, id hash.Hash) (bool, error) {
	start := time.Now()
	ok, err := ld.ObjectDatabase.Exists(ctx, id)
	ld.trace("exists", id, start, err)
	return ok, err
}

func (ld *loggingDatabase) Put(ctx context.Context, obj RevObject) (bool, error) {
	start := time.Now()
	inserted, err := ld.ObjectDatabase.Put(ctx, obj)
	ld.trace("put", obj.ID(), start, err)
	return inserted, err
}

func (ld *loggingDatabase) PutAll(ctx context.Context, objs []RevObject, l BulkOpListener) (int, error) {
	start := time.Now()
	n, err := ld.ObjectDatabase.PutAll(ctx, objs, l)
	ld.trace("put_all", hash.Hash{}, start, err)
	return n, err
}

func (ld *loggingDatabase) Delete(ctx context.Context, id hash.Hash) (bool, error) {
	start := time.Now()
	ok, err := ld.ObjectDatabase.Delete(ctx, id)
	ld.trace("delete", id, start, err)
	return ok, err
}

func (ld *loggingDatabase) DeleteAll(ctx context.Context, ids []hash.Hash, l BulkOpListener) (int, error) {
	start := time.Now()
	n, err := ld.ObjectDatabase.DeleteAll(ctx, ids, l)
	ld.trace("delete_all", hash.Hash{}, start, err)
	return n, err
}
