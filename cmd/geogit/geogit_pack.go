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
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/rmarianski/GeoGit/datas"
	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/pack"
	"github.com/rmarianski/GeoGit/walk"
)

func geogitPack(app *kingpin.Application) (*kingpin.CmdClause, commandHandler) {
	cmd := app.Command("pack", "writes the objects reachable from some revisions to a pack file")
	wantRevs := cmd.Arg("want", "revisions to pack").Required().Strings()
	haveRevs := cmd.Flag("have", "revision the receiver already holds").Strings()
	out := cmd.Flag("output", "pack file to write").Short('o').Required().String()
	noHistory := cmd.Flag("no-history", "pack only the trees of wanted commits, not their ancestors").Bool()

	return cmd, func(ctx context.Context, c *cli) error {
		cfg, db, err := c.open(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		want, err := resolveAll(ctx, db, *wantRevs)
		if err != nil {
			return err
		}
		have, err := resolveAll(ctx, db, *haveRevs)
		if err != nil {
			return err
		}

		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		n, err := pack.NewWriter(db.ODB(), cfg.PackOptions()).WriteObjects(ctx, f, want, have, !*noHistory, walk.NewDeduplicator())
		if err != nil {
			f.Close()
			os.Remove(*out)
			return err
		}
		if err := f.Close(); err != nil {
			return errors.Wrapf(err, "writing %s", *out)
		}
		st, err := os.Stat(*out)
		if err != nil {
			return err
		}
		c.printf("Wrote %s objects to %s (%s)\n", humanize.Comma(int64(n)), *out, humanize.Bytes(uint64(st.Size())))
		return nil
	}
}

func resolveAll(ctx context.Context, db *datas.Database, revs []string) ([]hash.Hash, error) {
	ids := make([]hash.Hash, len(revs))
	for i, rev := range revs {
		id, err := resolve(ctx, db, rev)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func geogitUnpack(app *kingpin.Application) (*kingpin.CmdClause, commandHandler) {
	cmd := app.Command("unpack", "stores the objects of a pack file")
	file := cmd.Arg("file", "pack file to read").Required().ExistingFile()
	heads := cmd.Flag("head", "commit of the pack to index into the commit graph").Strings()
	branch := cmd.Flag("branch", "branch to point at the single --head").String()

	return cmd, func(ctx context.Context, c *cli) error {
		if *branch != "" && len(*heads) != 1 {
			return errors.New("--branch needs exactly one --head")
		}
		cfg, db, err := c.open(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		res, err := pack.NewReader(db.ODB(), cfg.PackOptions()).Ingest(ctx, f, nil)
		if err != nil {
			return err
		}
		c.printf("Unpacked %s objects, %s new\n", humanize.Comma(int64(res.Objects())), humanize.Comma(int64(res.Inserted)))

		if len(*heads) == 0 {
			return nil
		}
		ids := make([]hash.Hash, len(*heads))
		for i, s := range *heads {
			if ids[i], err = hash.Parse(s); err != nil {
				return err
			}
		}
		indexed, err := datas.RebuildGraph(ctx, db.ODB(), db.Graph(), ids)
		if err != nil {
			return err
		}
		c.printf("Indexed %s commits\n", humanize.Comma(int64(indexed)))
		if *branch != "" {
			return db.Refs().PutRef(ctx, datas.BranchRef(*branch), ids[0])
		}
		return nil
	}
}
