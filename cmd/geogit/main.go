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

// Command geogit manages repositories of versioned geospatial features.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"gopkg.in/alecthomas/kingpin.v2"
)

type commandHandler func(ctx context.Context, c *cli) error

type geogitCommand func(app *kingpin.Application) (*kingpin.CmdClause, commandHandler)

var commands = []geogitCommand{
	geogitInit,
	geogitImport,
	geogitLog,
	geogitLsTree,
	geogitCat,
	geogitDiff,
	geogitMergeBase,
	geogitSparsePath,
	geogitMarkSparse,
	geogitPack,
	geogitUnpack,
	geogitBranch,
	geogitReindex,
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := kingpin.New("geogit", "Versioned storage of geospatial features.")
	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)
	app.HelpFlag.Short('h')

	dir := app.Flag("repo", "repository directory").Short('C').Default(".").String()
	verbose := app.Flag("verbose", "log debug output").Short('v').Bool()
	colorMode := app.Flag("color", "colorize output").Default("auto").Enum("auto", "always", "never")

	handlers := map[string]commandHandler{}
	for _, cmd := range commands {
		clause, handler := cmd(app)
		handlers[clause.FullCommand()] = handler
	}

	input, err := app.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "geogit: error: %v\n", err)
		return 2
	}
	switch *colorMode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	}

	c := &cli{dir: *dir, verbose: *verbose, out: stdout, errOut: stderr}
	if err := handlers[input](ctx, c); err != nil {
		fmt.Fprintf(stderr, "%s %v\n", color.RedString("geogit: error:"), err)
		return 1
	}
	return 0
}
