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

package diff

import (
	"context"

	"github.com/rmarianski/GeoGit/types"
)

// Options configures Trees and Count.
type Options struct {
	// PathFilters restricts the diff to these paths when not empty.
	PathFilters []string
	// ReportTrees includes differing trees in the result of Trees.
	ReportTrees bool
}

func (o Options) wrap(c Consumer) (Consumer, error) {
	if len(o.PathFilters) == 0 {
		return c, nil
	}
	return NewPathFilteringConsumer(o.PathFilters, c)
}

// Trees returns every difference between |left| and |right|.
func Trees(ctx context.Context, odb types.ObjectDatabase, left, right *types.Tree, opts Options) ([]DiffEntry, error) {
	var entries []DiffEntry
	c, err := opts.wrap(NewEntryConsumer(opts.ReportTrees, func(e DiffEntry) error {
		entries = append(entries, e)
		return nil
	}))
	if err != nil {
		return nil, err
	}
	if err := Walk(ctx, odb, left, right, c); err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the number of differing objects between |left| and |right|.
func Count(ctx context.Context, odb types.ObjectDatabase, left, right *types.Tree, opts Options) (ObjectCount, error) {
	counter := NewCountConsumer(ctx, odb)
	c, err := opts.wrap(counter)
	if err != nil {
		return ObjectCount{}, err
	}
	if err := Walk(ctx, odb, left, right, c); err != nil {
		return ObjectCount{}, err
	}
	return counter.Count(), nil
}
