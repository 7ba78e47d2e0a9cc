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

	"github.com/rmarianski/GeoGit/tree"
	"github.com/rmarianski/GeoGit/types"
)

func geogitLsTree(app *kingpin.Application) (*kingpin.CmdClause, commandHandler) {
	cmd := app.Command("ls-tree", "lists the entries of a tree")
	treeish := cmd.Arg("tree", "tree to list, as <rev>[:<path>]").Default("master").String()
	recursive := cmd.Flag("recursive", "list every entry beneath the tree").Short('r').Bool()
	treesOnly := cmd.Flag("trees", "list only trees").Short('d').Bool()
	size := cmd.Flag("size", "show the number of features beneath each tree").Short('s').Bool()

	return cmd, func(ctx context.Context, c *cli) error {
		_, db, err := c.open(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		t, err := resolveTree(ctx, db, *treeish)
		if err != nil {
			return err
		}
		strategy := tree.Children
		if *recursive {
			strategy = tree.Recursive
			if *treesOnly {
				strategy = tree.RecursiveTrees
			}
		}
		return tree.Iterate(ctx, db.ODB(), t, strategy, func(path string, n types.Node) error {
			if *treesOnly && !n.IsTree() {
				return nil
			}
			if *size && n.IsTree() {
				sub, err := types.GetTree(ctx, db.ODB(), n.ID)
				if err != nil {
					return err
				}
				c.printf("%s %s %8s %s\n", n.Type, n.ID, humanize.Comma(int64(sub.FeatureCount())), path)
				return nil
			}
			c.printf("%s %s %s\n", n.Type, n.ID, path)
			return nil
		})
	}
}
