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

package main

import (
	"context"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/rmarianski/GeoGit/config"
	"github.com/rmarianski/GeoGit/kv"
)

func geogitInit(app *kingpin.Application) (*kingpin.CmdClause, commandHandler) {
	cmd := app.Command("init", "creates an empty repository")
	backend := cmd.Flag("backend", "storage backend").Default(kv.BoltBackend).Enum(kv.MemoryBackend, kv.BoltBackend, kv.LevelDBBackend)
	compression := cmd.Flag("compression", "compression of written packs").Default("zstd").Enum("none", "zstd")

	return cmd, func(ctx context.Context, c *cli) error {
		cfg := config.Default()
		cfg.Storage.Backend = *backend
		cfg.Transfer.Compression = *compression
		if err := config.Init(c.dir, cfg); err != nil {
			return err
		}
		c.printf("Initialized empty repository in %s\n", c.dir)
		return nil
	}
}
