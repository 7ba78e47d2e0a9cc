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
	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/rmarianski/GeoGit/datas"
	"github.com/rmarianski/GeoGit/hash"
)

var ErrNoMergeBase = goerrors.NewKind("%s and %s have no common ancestor")

func geogitMergeBase(app *kingpin.Application) (*kingpin.CmdClause, commandHandler) {
	cmd := app.Command("merge-base", "finds the lowest common ancestor of two commits")
	leftRev := cmd.Arg("left", "first commit").Required().String()
	rightRev := cmd.Arg("right", "second commit").Required().String()
	all := cmd.Flag("all", "show every lowest common ancestor").Bool()

	return cmd, func(ctx context.Context, c *cli) error {
		_, db, err := c.open(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		left, err := resolveCommit(ctx, db, *leftRev)
		if err != nil {
			return err
		}
		right, err := resolveCommit(ctx, db, *rightRev)
		if err != nil {
			return err
		}

		var bases []hash.Hash
		if *all {
			bases, err = datas.FindCommonAncestors(ctx, db.Graph(), left.ID(), right.ID())
		} else {
			var base hash.Hash
			var ok bool
			base, ok, err = db.MergeBase(ctx, left.ID(), right.ID())
			if ok {
				bases = append(bases, base)
			}
		}
		if err != nil {
			return err
		}
		if len(bases) == 0 {
			return ErrNoMergeBase.New(*leftRev, *rightRev)
		}
		for _, id := range bases {
			c.printf("%s\n", id)
		}
		return nil
	}
}
