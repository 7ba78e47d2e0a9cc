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

	"github.com/dustin/go-humanize"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/rmarianski/GeoGit/datas"
	"github.com/rmarianski/GeoGit/hash"
)

func geogitReindex(app *kingpin.Application) (*kingpin.CmdClause, commandHandler) {
	cmd := app.Command("reindex", "rebuilds the commit graph from the commits reachable from every ref")

	return cmd, func(ctx context.Context, c *cli) error {
		_, db, err := c.open(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		refs, err := db.Refs().ListRefs(ctx, "refs/")
		if err != nil {
			return err
		}
		heads := make([]hash.Hash, 0, len(refs))
		for _, id := range refs {
			heads = append(heads, id)
		}
		n, err := datas.RebuildGraph(ctx, db.ODB(), db.Graph(), heads)
		if err != nil {
			return err
		}
		c.printf("Indexed %s commits from %s refs\n", humanize.Comma(int64(n)), humanize.Comma(int64(len(refs))))
		return nil
	}
}
