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

package pack

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/types"
	"github.com/rmarianski/GeoGit/walk"
)

// TransferOptions configures Transfer.
type TransferOptions struct {
	Options
	// TraverseCommits sends the history of wanted commits, not only their
	// trees.
	TraverseCommits bool
}

// Transfer copies every object reachable from |want| that is missing from
// the holder of |have| from |src| into |dst|. The pack is written and
// ingested concurrently, so it is never held in memory as a whole.
func Transfer(ctx context.Context, src, dst types.ObjectDatabase, want, have []hash.Hash, opts TransferOptions) (IngestResult, error) {
	pr, pw := io.Pipe()
	eg, ctx := errgroup.WithContext(ctx)
	var werr error
	eg.Go(func() error {
		_, werr = NewWriter(src, opts.Options).WriteObjects(ctx, pw, want, have, opts.TraverseCommits, walk.NewDeduplicator())
		pw.CloseWithError(werr)
		return werr
	})
	var res IngestResult
	eg.Go(func() error {
		var err error
		res, err = NewReader(dst, opts.Options).Ingest(ctx, pr, nil)
		pr.CloseWithError(err)
		return err
	})
	if err := eg.Wait(); err != nil {
		// A failed writer also fails the reader; report the cause.
		if werr != nil {
			return IngestResult{}, werr
		}
		return IngestResult{}, err
	}
	return res, nil
}
