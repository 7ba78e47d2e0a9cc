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
	"github.com/fatih/color"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/rmarianski/GeoGit/diff"
)

func geogitDiff(app *kingpin.Application) (*kingpin.CmdClause, commandHandler) {
	cmd := app.Command("diff", "shows the differences between two trees")
	oldSpec := cmd.Arg("old", "old tree, as <rev>[:<path>]").Required().String()
	newSpec := cmd.Arg("new", "new tree, as <rev>[:<path>]").Required().String()
	paths := cmd.Flag("path", "only show differences at or beneath this path").Strings()
	count := cmd.Flag("count", "only count the differences").Bool()
	trees := cmd.Flag("trees", "also show differing trees").Bool()

	return cmd, func(ctx context.Context, c *cli) error {
		_, db, err := c.open(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		left, err := resolveTree(ctx, db, *oldSpec)
		if err != nil {
			return err
		}
		right, err := resolveTree(ctx, db, *newSpec)
		if err != nil {
			return err
		}
		opts := diff.Options{PathFilters: *paths, ReportTrees: *trees}

		if *count {
			counts, err := diff.Count(ctx, db.ODB(), left, right, opts)
			if err != nil {
				return err
			}
			c.printf("features: %s added, %s removed, %s changed\n",
				humanize.Comma(int64(counts.FeaturesAdded)), humanize.Comma(int64(counts.FeaturesRemoved)), humanize.Comma(int64(counts.FeaturesChanged)))
			c.printf("trees:    %s added, %s removed, %s changed\n",
				humanize.Comma(int64(counts.TreesAdded)), humanize.Comma(int64(counts.TreesRemoved)), humanize.Comma(int64(counts.TreesChanged)))
			return nil
		}

		entries, err := diff.Trees(ctx, db.ODB(), left, right, opts)
		if err != nil {
			return err
		}
		for _, e := range entries {
			printEntry(c, e)
		}
		return nil
	}
}

func printEntry(c *cli, e diff.DiffEntry) {
	switch e.ChangeType() {
	case diff.Added:
		c.printf("%s %s %s\n", color.GreenString("A"), e.Path(), e.New.ID.Abbreviated())
	case diff.Removed:
		c.printf("%s %s %s\n", color.RedString("D"), e.Path(), e.Old.ID.Abbreviated())
	default:
		c.printf("%s %s %s -> %s\n", color.YellowString("M"), e.Path(), e.Old.ID.Abbreviated(), e.New.ID.Abbreviated())
	}
}
