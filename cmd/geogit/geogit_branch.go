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
	"sort"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/alecthomas/kingpin.v2"
	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/rmarianski/GeoGit/datas"
	"github.com/rmarianski/GeoGit/hash"
)

var ErrBranchExists = goerrors.NewKind("branch %s already exists")

func geogitBranch(app *kingpin.Application) (*kingpin.CmdClause, commandHandler) {
	cmd := app.Command("branch", "lists, creates or deletes branches")
	name := cmd.Arg("name", "branch to create").String()
	start := cmd.Arg("start", "commit the new branch points at").Default("master").String()
	del := cmd.Flag("delete", "delete the named branch").Short('d').Bool()

	return cmd, func(ctx context.Context, c *cli) error {
		_, db, err := c.open(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if *name == "" {
			refs, err := db.Refs().ListRefs(ctx, datas.HeadsPrefix)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(refs))
			for ref := range refs {
				names = append(names, ref)
			}
			sort.Strings(names)
			for _, ref := range names {
				c.printf("%s %s\n", color.GreenString(strings.TrimPrefix(ref, datas.HeadsPrefix)), refs[ref].Abbreviated())
			}
			return nil
		}

		ref := datas.BranchRef(*name)
		if *del {
			ok, err := db.Refs().DeleteRef(ctx, ref)
			if err != nil {
				return err
			}
			if !ok {
				return datas.ErrRefNotFound.New(ref)
			}
			return nil
		}
		commit, err := resolveCommit(ctx, db, *start)
		if err != nil {
			return err
		}
		err = db.Refs().CompareAndPutRef(ctx, ref, hash.Hash{}, commit.ID())
		if datas.ErrOptimisticLockFailed.Is(err) {
			return ErrBranchExists.New(*name)
		}
		return err
	}
}
