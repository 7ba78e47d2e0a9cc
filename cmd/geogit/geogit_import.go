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
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/rmarianski/GeoGit/datas"
	"github.com/rmarianski/GeoGit/tree"
	"github.com/rmarianski/GeoGit/types"
)

func geogitImport(app *kingpin.Application) (*kingpin.CmdClause, commandHandler) {
	cmd := app.Command("import", "imports the rows of a CSV file as features and commits them")
	file := cmd.Arg("file", "CSV file with a header row").Required().ExistingFile()
	path := cmd.Arg("path", "tree to import the features into").Required().String()
	idColumn := cmd.Flag("id", "column holding the feature names").Default("id").String()
	branch := cmd.Flag("branch", "branch to commit to").Default("master").String()
	message := cmd.Flag("message", "commit message").Short('m').String()
	author := cmd.Flag("author", "author name").Default("geogit").String()
	email := cmd.Flag("email", "author email").String()

	return cmd, func(ctx context.Context, c *cli) error {
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		ft, names, features, err := readCSV(f, tree.NodeName(*path), *idColumn)
		if err != nil {
			return fmt.Errorf("%s: %w", *file, err)
		}

		_, db, err := c.open(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		odb := db.ODB()
		if _, err := odb.Put(ctx, ft); err != nil {
			return err
		}
		var stats types.CountingListener
		if _, err := odb.PutAll(ctx, features, &stats); err != nil {
			return err
		}

		ref := datas.BranchRef(*branch)
		root, err := headTree(ctx, db, ref)
		if err != nil {
			return err
		}
		root, err = tree.Update(ctx, odb, root, *path, func(b *tree.Builder) {
			for i, feature := range features {
				b.Put(types.Node{Name: names[i], ID: feature.ID(), Type: types.FeatureNode, MetadataID: ft.ID()})
			}
		})
		if err != nil {
			return err
		}

		msg := *message
		if msg == "" {
			msg = fmt.Sprintf("Import %s into %s", *file, *path)
		}
		commit, err := db.Commit(ctx, ref, root.ID(), datas.CommitOptions{
			Author:  types.NewPerson(*author, *email, time.Now()),
			Message: msg,
		})
		if err != nil {
			return err
		}
		c.printf("Imported %s features into %s (%s new, %s)\n",
			humanize.Comma(int64(len(features))), *path,
			humanize.Comma(int64(stats.InsertedCount)), humanize.Bytes(uint64(stats.BytesInserted)))
		c.printf("[%s %s] %s\n", *branch, commit.ID().Abbreviated(), msg)
		return nil
	}
}

// readCSV reads the rows of |r| as features of a feature type named |name|.
// Column kinds are inferred: a column is an int or float column when every
// non empty value parses as one, and a column with empty values is
// nullable. The |idColumn| values name the features and are not stored as
// attributes.
func readCSV(r io.Reader, name, idColumn string) (*types.FeatureType, []string, []types.RevObject, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil, fmt.Errorf("missing header row")
	}
	header, rows := records[0], records[1:]
	idIdx := -1
	for i, col := range header {
		if col == idColumn {
			idIdx = i
		}
	}
	if idIdx < 0 {
		return nil, nil, nil, fmt.Errorf("no %q column", idColumn)
	}

	var attrs []types.Attribute
	var cols []int
	for i, col := range header {
		if i == idIdx {
			continue
		}
		attrs = append(attrs, inferAttribute(col, rows, i))
		cols = append(cols, i)
	}
	ft := types.NewFeatureType(name, attrs)

	seen := make(map[string]int, len(rows))
	names := make([]string, len(rows))
	features := make([]types.RevObject, len(rows))
	for r, row := range rows {
		id := row[idIdx]
		if id == "" {
			return nil, nil, nil, fmt.Errorf("row %d: empty %s", r+2, idColumn)
		}
		if prev, ok := seen[id]; ok {
			return nil, nil, nil, fmt.Errorf("row %d: %s %q already used by row %d", r+2, idColumn, id, prev+2)
		}
		seen[id] = r
		values := make([]interface{}, len(cols))
		for j, col := range cols {
			values[j] = parseValue(attrs[j].Kind, row[col])
		}
		f, err := types.NewFeature(values...)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := ft.Validate(f); err != nil {
			return nil, nil, nil, fmt.Errorf("row %d: %w", r+2, err)
		}
		names[r] = id
		features[r] = f
	}
	return ft, names, features, nil
}

func inferAttribute(name string, rows [][]string, col int) types.Attribute {
	a := types.Attribute{Name: name, Kind: types.IntKind}
	for _, row := range rows {
		v := row[col]
		if v == "" {
			a.Nullable = true
			continue
		}
		if a.Kind == types.IntKind {
			if _, err := strconv.ParseInt(v, 10, 64); err == nil {
				continue
			}
			a.Kind = types.FloatKind
		}
		if a.Kind == types.FloatKind {
			if _, err := strconv.ParseFloat(v, 64); err == nil {
				continue
			}
			a.Kind = types.StringKind
		}
	}
	return a
}

func parseValue(kind types.ValueKind, s string) interface{} {
	if s == "" {
		return nil
	}
	switch kind {
	case types.IntKind:
		v, _ := strconv.ParseInt(s, 10, 64)
		return v
	case types.FloatKind:
		v, _ := strconv.ParseFloat(s, 64)
		return v
	default:
		return s
	}
}
