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

	"github.com/rmarianski/GeoGit/datas"
)

func geogitSparsePath(app *kingpin.Application) (*kingpin.CmdClause, commandHandler) {
	cmd := app.Command("sparse-path", "reports whether a sparse commit lies between a commit and one of its ancestors")
	startRev := cmd.Arg("start", "descendant commit").Required().String()
	endRev := cmd.Arg("end", "ancestor commit").Required().String()

	return cmd, func(ctx context.Context, c *cli) error {
		_, db, err := c.open(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		start, err := resolveCommit(ctx, db, *startRev)
		if err != nil {
			return err
		}
		end, err := resolveCommit(ctx, db, *endRev)
		if err != nil {
			return err
		}
		sparse, err := datas.CheckSparsePath(ctx, db.Graph(), start.ID(), end.ID())
		if err != nil {
			return err
		}
		c.printf("%t\n", sparse)
		return nil
	}
}

func geogitMarkSparse(app *kingpin.Application) (*kingpin.CmdClause, commandHandler) {
	cmd := app.Command("mark-sparse", "marks commits as sparse")
	revs := cmd.Arg("commits", "commits to mark").Required().Strings()

	return cmd, func(ctx context.Context, c *cli) error {
		_, db, err := c.open(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		for _, rev := range *revs {
			commit, err := resolveCommit(ctx, db, rev)
			if err != nil {
				return err
			}
			if err := db.Graph().SetSparse(ctx, commit.ID()); err != nil {
				return err
			}
		}
		return nil
	}
}
