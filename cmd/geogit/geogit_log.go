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
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/rmarianski/GeoGit/types"
)

func geogitLog(app *kingpin.Application) (*kingpin.CmdClause, commandHandler) {
	cmd := app.Command("log", "shows the history of a commit")
	rev := cmd.Arg("rev", "commit to start from").Default("master").String()
	maxCommits := cmd.Flag("max-count", "max number of commits to show (0 for all)").Short('n').Default("0").Int()
	oneline := cmd.Flag("oneline", "show each commit on a single line").Bool()

	return cmd, func(ctx context.Context, c *cli) error {
		_, db, err := c.open(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		start, err := resolveCommit(ctx, db, *rev)
		if err != nil {
			return err
		}
		shown := 0
		return db.Log(ctx, start.ID(), func(commit *types.Commit) (bool, error) {
			printCommit(c, commit, *oneline)
			shown++
			return *maxCommits <= 0 || shown < *maxCommits, nil
		})
	}
}

func printCommit(c *cli, commit *types.Commit, oneline bool) {
	id := color.YellowString(commit.ID().String())
	msg := strings.TrimRight(commit.Message(), "\n")
	if oneline {
		c.printf("%s %s\n", color.YellowString(commit.ID().Abbreviated()), strings.SplitN(msg, "\n", 2)[0])
		return
	}
	c.printf("commit %s\n", id)
	if commit.NumParents() > 1 {
		parents := make([]string, commit.NumParents())
		for i, p := range commit.Parents() {
			parents[i] = p.Abbreviated()
		}
		c.printf("Merge: %s\n", strings.Join(parents, " "))
	}
	author := commit.Author()
	c.printf("Author: %s\n", author)
	c.printf("Date:   %s (%s)\n\n", author.Time().Format("Mon Jan 2 15:04:05 2006 -0700"), humanize.Time(author.Time()))
	for _, line := range strings.Split(msg, "\n") {
		c.printf("    %s\n", line)
	}
	c.printf("\n")
}
