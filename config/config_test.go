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
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarianski/GeoGit/datas"
	"github.com/rmarianski/GeoGit/kv"
	"github.com/rmarianski/GeoGit/pack"
	"github.com/rmarianski/GeoGit/tree/treetest"
	"github.com/rmarianski/GeoGit/types/typestest"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, kv.BoltBackend, c.Storage.Backend)
	assert.Equal(t, "objects", c.Storage.Path)
	assert.Equal(t, 65536, c.Cache.Objects)
	assert.False(t, c.Metrics.Enabled)
	assert.Equal(t, "zstd", c.Transfer.Compression)
	assert.Equal(t, 3, c.Transaction.Retries)
	assert.Equal(t, "info", c.Log.Level)
	assert.NoError(t, c.Validate())
	assert.Equal(t, pack.ZstdCompression, c.PackOptions().Compression)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	assert.True(t, ErrNoConfig.Is(err))

	c := Default()
	c.Storage.Backend = kv.LevelDBBackend
	c.Cache.Objects = 0
	c.Log.Format = "json"
	require.NoError(t, c.Save(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestLoadPartial(t *testing.T) {
	dir := t.TempDir()
	data := "[cache]\nobjects = 0\n\n[transfer]\ncompression = \"none\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(data), 0644))

	c, err := Load(dir)
	require.NoError(t, err)
	assert.Zero(t, c.Cache.Objects)
	assert.Equal(t, pack.NoCompression, c.PackOptions().Compression)
	assert.Equal(t, kv.BoltBackend, c.Storage.Backend)
	assert.Equal(t, 3, c.Transaction.Retries)
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("[storage\n"), 0644))
	_, err := Load(dir)
	assert.Error(t, err)
	assert.False(t, ErrNoConfig.Is(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"backend", func(c *Config) { c.Storage.Backend = "s3" }},
		{"path", func(c *Config) { c.Storage.Path = "" }},
		{"cache", func(c *Config) { c.Cache.Objects = -1 }},
		{"compression", func(c *Config) { c.Transfer.Compression = "gzip" }},
		{"batch size", func(c *Config) { c.Transfer.BatchSize = -1 }},
		{"retries", func(c *Config) { c.Transaction.Retries = -1 }},
		{"level", func(c *Config) { c.Log.Level = "loud" }},
		{"format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := Default()
			test.modify(c)
			assert.True(t, ErrInvalidConfig.Is(c.Validate()))
			assert.True(t, ErrInvalidConfig.Is(c.Save(t.TempDir())))
		})
	}

	c := Default()
	c.Storage.Backend = kv.MemoryBackend
	c.Storage.Path = ""
	assert.NoError(t, c.Validate())
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "repo")
	require.NoError(t, Init(dir, Default()))
	assert.True(t, ErrAlreadyInitialized.Is(Init(dir, Default())))
}

func TestLogApply(t *testing.T) {
	l := logrus.New()
	require.NoError(t, Log{Level: "debug", Format: "json"}.Apply(l))
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)
	assert.Error(t, Log{Level: "loud"}.Apply(l))
}

func TestOpenPersists(t *testing.T) {
	for _, backend := range []string{kv.BoltBackend, kv.LevelDBBackend} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()
			c := Default()
			c.Storage.Backend = backend
			c.Transaction.Retries = 5
			require.NoError(t, Init(dir, c))

			_, env, err := Open(ctx, dir)
			require.NoError(t, err)
			assert.Equal(t, 5, env.CommitRetries)
			db := datas.NewDatabase(env)
			root, err := treetest.CreateFeaturesTree(ctx, db.ODB(), "f", 10)
			require.NoError(t, err)
			committed, err := db.Commit(ctx, datas.DefaultBranch, root.ID(), datas.CommitOptions{Author: typestest.Person(0), Message: "first"})
			require.NoError(t, err)
			require.NoError(t, db.Close())

			_, env, err = Open(ctx, dir)
			require.NoError(t, err)
			db = datas.NewDatabase(env)
			defer db.Close()
			head, ok, err := db.Head(ctx, datas.DefaultBranch)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, committed.ID(), head.ID())
			ok, err = db.Graph().Exists(ctx, committed.ID())
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestOpenMetrics(t *testing.T) {
	ctx := context.Background()
	c := Default()
	c.Storage.Backend = kv.MemoryBackend
	c.Metrics.Enabled = true
	reg := prometheus.NewRegistry()

	env, err := c.Open(ctx, t.TempDir(), reg)
	require.NoError(t, err)
	defer env.Close()

	_, err = treetest.CreateFeaturesTree(ctx, env.ODB, "f", 10)
	require.NoError(t, err)
	families, err := reg.Gather()
	require.NoError(t, err)
	gathered := map[string]bool{}
	for _, mf := range families {
		gathered[mf.GetName()] = true
	}
	assert.True(t, gathered["geogit_odb_operations_total"])
	assert.True(t, gathered["geogit_odb_objects_inserted_total"])
}
