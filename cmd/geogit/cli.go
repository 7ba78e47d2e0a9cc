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
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/rmarianski/GeoGit/config"
	"github.com/rmarianski/GeoGit/datas"
	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/tree"
	"github.com/rmarianski/GeoGit/types"
)

var (
	ErrUnknownRevision = goerrors.NewKind("unknown revision %s")
	ErrPathNotFound    = goerrors.NewKind("path %s not found in %s")
	ErrNotACommit      = goerrors.NewKind("%s is a %s, not a commit")
)

// cli holds the global flags and output streams of one invocation.
type cli struct {
	dir     string
	verbose bool
	out     io.Writer
	errOut  io.Writer
}

func (c *cli) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

// open opens the repository and configures logging from its configuration.
// The returned Database must be closed.
func (c *cli) open(ctx context.Context) (*config.Config, *datas.Database, error) {
	cfg, err := config.Load(c.dir)
	if err != nil {
		return nil, nil, err
	}
	logger := logrus.StandardLogger()
	if err := cfg.Log.Apply(logger); err != nil {
		return nil, nil, err
	}
	logger.SetOutput(c.errOut)
	if c.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	env, err := cfg.Open(ctx, c.dir, nil)
	if err != nil {
		return nil, nil, err
	}
	return cfg, datas.NewDatabase(env), nil
}

// resolve returns the id named by |rev|: a ref, a branch or tag name, or an
// object id.
func resolve(ctx context.Context, db *datas.Database, rev string) (hash.Hash, error) {
	for _, name := range []string{rev, datas.BranchRef(rev), datas.TagsPrefix + rev} {
		if datas.ValidateRefName(name) != nil {
			continue
		}
		id, ok, err := db.Refs().GetRef(ctx, name)
		if err != nil {
			return hash.Hash{}, err
		}
		if ok {
			return id, nil
		}
	}
	if id, err := hash.Parse(rev); err == nil {
		ok, err := db.ODB().Exists(ctx, id)
		if err != nil {
			return hash.Hash{}, err
		}
		if ok {
			return id, nil
		}
	}
	return hash.Hash{}, ErrUnknownRevision.New(rev)
}

func resolveCommit(ctx context.Context, db *datas.Database, rev string) (*types.Commit, error) {
	id, err := resolve(ctx, db, rev)
	if err != nil {
		return nil, err
	}
	obj, err := db.ODB().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch o := obj.(type) {
	case *types.Commit:
		return o, nil
	case *types.Tag:
		return types.GetCommit(ctx, db.ODB(), o.CommitID())
	default:
		return nil, ErrNotACommit.New(rev, obj.Type())
	}
}

// resolveTree returns the tree named by |treeish|, a revision optionally
// followed by a colon and a path beneath its root tree.
func resolveTree(ctx context.Context, db *datas.Database, treeish string) (*types.Tree, error) {
	rev, path := treeish, ""
	if i := strings.Index(treeish, ":"); i >= 0 {
		rev, path = treeish[:i], treeish[i+1:]
	}
	id, err := resolve(ctx, db, rev)
	if err != nil {
		return nil, err
	}
	obj, err := db.ODB().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag, ok := obj.(*types.Tag); ok {
		if obj, err = db.ODB().Get(ctx, tag.CommitID()); err != nil {
			return nil, err
		}
	}
	if c, ok := obj.(*types.Commit); ok {
		if obj, err = db.ODB().Get(ctx, c.TreeID()); err != nil {
			return nil, err
		}
	}
	root, ok := obj.(*types.Tree)
	if !ok {
		return nil, types.ErrUnexpectedType.New(id, obj.Type(), types.TypeTree)
	}
	if path == "" {
		return root, nil
	}
	t, ok, err := tree.FindTree(ctx, db.ODB(), root, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPathNotFound.New(path, rev)
	}
	return t, nil
}

// headTree returns the tree of the head of |ref|, or the empty tree for a
// ref that does not exist yet.
func headTree(ctx context.Context, db *datas.Database, ref string) (*types.Tree, error) {
	head, ok, err := db.Head(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !ok {
		return types.EmptyTree, nil
	}
	return types.GetTree(ctx, db.ODB(), head.TreeID())
}
