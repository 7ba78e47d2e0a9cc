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

// Package config reads and writes the configuration of a repository and
// opens the stores it describes.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/rmarianski/GeoGit/kv"
	"github.com/rmarianski/GeoGit/pack"
)

// FileName is the name of the configuration file in a repository directory.
const FileName = "geogit.toml"

var (
	// ErrNoConfig is returned by Load for a directory without a
	// configuration file.
	ErrNoConfig = goerrors.NewKind("no %s in %s")

	// ErrInvalidConfig is returned for a configuration with an unusable
	// setting.
	ErrInvalidConfig = goerrors.NewKind("invalid configuration: %s")

	// ErrAlreadyInitialized is returned by Init for a directory that already
	// holds a configuration file.
	ErrAlreadyInitialized = goerrors.NewKind("repository already initialized in %s")
)

type Config struct {
	Storage     Storage     `toml:"storage"`
	Cache       Cache       `toml:"cache"`
	Metrics     Metrics     `toml:"metrics"`
	Transfer    Transfer    `toml:"transfer"`
	Transaction Transaction `toml:"transaction"`
	Log         Log         `toml:"log"`
}

type Storage struct {
	// Backend is one of memory, bolt or leveldb.
	Backend string `toml:"backend" default:"bolt"`
	// Path is relative to the repository directory.
	Path string `toml:"path" default:"objects"`
	// Verify rehashes every chunk read from storage.
	Verify bool `toml:"verify"`
}

type Cache struct {
	// Objects is the capacity of the object cache. Zero disables it.
	Objects int `toml:"objects" default:"65536"`
}

type Metrics struct {
	Enabled bool `toml:"enabled"`
}

type Transfer struct {
	// Compression is none or zstd.
	Compression string `toml:"compression" default:"zstd"`
	BatchSize   int    `toml:"batch_size" default:"1024"`
}

type Transaction struct {
	Retries int `toml:"retries" default:"3"`
}

type Log struct {
	Level  string `toml:"level" default:"info"`
	Format string `toml:"format" default:"text"`
}

// Default returns the configuration of a new repository.
func Default() *Config {
	c := &Config{}
	if err := defaults.Set(c); err != nil {
		panic(err)
	}
	return c
}

// Load reads the configuration of the repository in |dir|. Settings the
// file leaves out keep their default.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	c := Default()
	if _, err := toml.DecodeFile(path, c); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoConfig.New(FileName, dir)
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Save writes |c| to the repository in |dir|, replacing any existing
// configuration.
func (c *Config) Save(dir string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return err
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// Init creates |dir| if needed and writes |c| to it. It fails if |dir| is
// already a repository.
func Init(dir string, c *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
		return ErrAlreadyInitialized.New(dir)
	}
	return c.Save(dir)
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Backend) {
	case kv.MemoryBackend, kv.BoltBackend, kv.LevelDBBackend:
	default:
		return ErrInvalidConfig.New(fmt.Sprintf("unknown storage backend %q", c.Storage.Backend))
	}
	if c.Storage.Backend != kv.MemoryBackend && c.Storage.Path == "" {
		return ErrInvalidConfig.New("storage path is empty")
	}
	if c.Cache.Objects < 0 {
		return ErrInvalidConfig.New("cache size is negative")
	}
	if _, err := pack.ParseCompression(c.Transfer.Compression); err != nil {
		return ErrInvalidConfig.New(err.Error())
	}
	if c.Transfer.BatchSize < 0 {
		return ErrInvalidConfig.New("transfer batch size is negative")
	}
	if c.Transaction.Retries < 0 {
		return ErrInvalidConfig.New("transaction retries is negative")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return ErrInvalidConfig.New(err.Error())
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return ErrInvalidConfig.New(fmt.Sprintf("unknown log format %q", c.Log.Format))
	}
	return nil
}

// PackOptions returns the options of packs written and read by the
// repository.
func (c *Config) PackOptions() pack.Options {
	comp, _ := pack.ParseCompression(c.Transfer.Compression)
	return pack.Options{Compression: comp, BatchSize: c.Transfer.BatchSize}
}

// Apply configures |l| to log at the configured level and format.
func (lc Log) Apply(l *logrus.Logger) error {
	level, err := logrus.ParseLevel(lc.Level)
	if err != nil {
		return ErrInvalidConfig.New(err.Error())
	}
	l.SetLevel(level)
	if lc.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{})
	}
	return nil
}
