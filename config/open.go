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

package config

import (
	"context"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/rmarianski/GeoGit/chunks"
	"github.com/rmarianski/GeoGit/datas"
	"github.com/rmarianski/GeoGit/kv"
	"github.com/rmarianski/GeoGit/types"
)

// Middlewares returns the object database middleware of |c|, outermost
// first: logging, then metrics, then the cache. Metrics are registered with
// |reg|, or the default registerer when it is nil.
func (c *Config) Middlewares(reg prometheus.Registerer) ([]types.Middleware, error) {
	mws := []types.Middleware{types.LoggingMiddleware(logrus.WithField("component", "odb"))}
	if c.Metrics.Enabled {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		m, err := types.NewDatabaseMetrics(reg)
		if err != nil {
			return nil, err
		}
		mws = append(mws, m.Middleware())
	}
	if c.Cache.Objects > 0 {
		cache, err := types.CachingMiddleware(c.Cache.Objects)
		if err != nil {
			return nil, err
		}
		mws = append(mws, cache)
	}
	return mws, nil
}

// Open opens the stores of the repository in |dir| as configured by |c|.
// The returned Env must be closed.
func (c *Config) Open(ctx context.Context, dir string, reg prometheus.Registerer) (datas.Env, error) {
	if err := c.Validate(); err != nil {
		return datas.Env{}, err
	}
	path := c.Storage.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	kvs, err := kv.Open(c.Storage.Backend, path)
	if err != nil {
		return datas.Env{}, err
	}
	mws, err := c.Middlewares(reg)
	if err != nil {
		kvs.Close()
		return datas.Env{}, err
	}
	odb := types.Chain(types.NewObjectStore(chunks.NewKVStore(kvs, c.Storage.Verify)), mws...)

	env := datas.NewEnv(kvs, odb)
	env.CommitRetries = c.Transaction.Retries
	logrus.WithFields(logrus.Fields{
		"backend": c.Storage.Backend,
		"path":    path,
	}).Debug("repository opened")
	return env, nil
}

// Open loads the configuration of the repository in |dir| and opens its
// stores.
func Open(ctx context.Context, dir string) (*Config, datas.Env, error) {
	c, err := Load(dir)
	if err != nil {
		return nil, datas.Env{}, err
	}
	env, err := c.Open(ctx, dir, nil)
	if err != nil {
		return nil, datas.Env{}, err
	}
	return c, env, nil
}
