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
	"encoding/hex"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/yaml.v3"

	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/types"
)

func geogitCat(app *kingpin.Application) (*kingpin.CmdClause, commandHandler) {
	cmd := app.Command("cat", "prints an object")
	rev := cmd.Arg("object", "object id or revision").Required().String()
	format := cmd.Flag("format", "output format").Default("yaml").Enum("yaml", "raw")

	return cmd, func(ctx context.Context, c *cli) error {
		_, db, err := c.open(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := resolve(ctx, db, *rev)
		if err != nil {
			return err
		}
		obj, err := db.ODB().Get(ctx, id)
		if err != nil {
			return err
		}
		if *format == "raw" {
			c.printf("%s", hex.Dump(types.Encode(obj)))
			return nil
		}
		enc := yaml.NewEncoder(c.out)
		enc.SetIndent(2)
		if err := enc.Encode(objectView(obj)); err != nil {
			return err
		}
		return enc.Close()
	}
}

type headerView struct {
	ID   string `yaml:"id"`
	Type string `yaml:"type"`
}

type personView struct {
	Name  string    `yaml:"name"`
	Email string    `yaml:"email,omitempty"`
	Time  time.Time `yaml:"time"`
}

func viewPerson(p types.Person) personView {
	return personView{Name: p.Name, Email: p.Email, Time: p.Time()}
}

type nodeView struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	ID       string `yaml:"id"`
	Metadata string `yaml:"metadata,omitempty"`
}

type bucketView struct {
	Index int    `yaml:"index"`
	ID    string `yaml:"id"`
}

type attributeView struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Nullable bool   `yaml:"nullable,omitempty"`
}

func idString(id hash.Hash) string {
	if id.IsEmpty() {
		return ""
	}
	return id.String()
}

// objectView returns a value whose YAML form shows every field of |obj|.
func objectView(obj types.RevObject) interface{} {
	header := headerView{obj.ID().String(), obj.Type().String()}

	switch o := obj.(type) {
	case *types.Commit:
		parents := make([]string, o.NumParents())
		for i, p := range o.Parents() {
			parents[i] = p.String()
		}
		return struct {
			Header    headerView `yaml:",inline"`
			Tree      string     `yaml:"tree"`
			Parents   []string   `yaml:"parents"`
			Author    personView `yaml:"author"`
			Committer personView `yaml:"committer"`
			Message   string     `yaml:"message"`
		}{header, o.TreeID().String(), parents, viewPerson(o.Author()), viewPerson(o.Committer()), o.Message()}
	case *types.Tree:
		var nodes []nodeView
		for _, n := range o.Nodes() {
			nodes = append(nodes, nodeView{n.Name, n.Type.String(), n.ID.String(), idString(n.MetadataID)})
		}
		var buckets []bucketView
		for _, b := range o.Buckets() {
			buckets = append(buckets, bucketView{b.Index, b.ID.String()})
		}
		return struct {
			Header   headerView   `yaml:",inline"`
			Entries  uint64       `yaml:"entries"`
			Features uint64       `yaml:"features"`
			Subtrees uint64       `yaml:"subtrees"`
			Nodes    []nodeView   `yaml:"nodes,omitempty"`
			Buckets  []bucketView `yaml:"buckets,omitempty"`
		}{header, o.EntryCount(), o.FeatureCount(), o.SubtreeCount(), nodes, buckets}
	case *types.Feature:
		return struct {
			Header headerView    `yaml:",inline"`
			Values []interface{} `yaml:"values"`
		}{header, o.Values()}
	case *types.FeatureType:
		var attrs []attributeView
		for _, a := range o.Attributes() {
			attrs = append(attrs, attributeView{a.Name, a.Kind.String(), a.Nullable})
		}
		return struct {
			Header     headerView      `yaml:",inline"`
			Name       string          `yaml:"name"`
			Attributes []attributeView `yaml:"attributes"`
		}{header, o.Name(), attrs}
	case *types.Tag:
		return struct {
			Header  headerView `yaml:",inline"`
			Name    string     `yaml:"name"`
			Commit  string     `yaml:"commit"`
			Tagger  personView `yaml:"tagger"`
			Message string     `yaml:"message"`
		}{header, o.Name(), o.CommitID().String(), viewPerson(o.Tagger()), o.Message()}
	default:
		return header
	}
}
