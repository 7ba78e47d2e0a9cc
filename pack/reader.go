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

	"github.com/sirupsen/logrus"

	"github.com/rmarianski/GeoGit/diff"
	"github.com/rmarianski/GeoGit/types"
	"github.com/rmarianski/GeoGit/util/progress"
)

// IngestResult summarizes an ingested pack.
type IngestResult struct {
	// Inserted is the number of objects that were not stored before.
	Inserted int
	// Existing is the number of objects that were already stored.
	Existing int
	// Filtered is the flag of the end chunk.
	Filtered bool
	// Entries is the number of diff entries read.
	Entries int
}

// Objects returns the number of objects read.
func (r IngestResult) Objects() int {
	return r.Inserted + r.Existing
}

// Reader stores the objects of packs into an ObjectDatabase.
type Reader struct {
	odb  types.ObjectDatabase
	opts Options
}

func NewReader(odb types.ObjectDatabase, opts Options) *Reader {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Reader{odb: odb, opts: opts}
}

// Ingest reads a pack from |in|, which must end right after its end chunk,
// storing every object that is not already stored. Diff entries are passed
// to |cb|, which may be nil, in pack order and only once the objects that
// came before them are stored. Ingesting the same pack twice stores nothing the second time.
func (r *Reader) Ingest(ctx context.Context, in io.Reader, cb func(diff.DiffEntry) error) (IngestResult, error) {
	var res IngestResult
	cr, err := newChunkReader(in)
	if err != nil {
		return res, err
	}
	defer cr.close()

	l := r.opts.listener()
	l.Started("ingesting pack")
	counter := progress.NewCounter(l, progressEvery)
	b := &batch{odb: r.odb, size: r.opts.BatchSize, cb: cb}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		kind, err := cr.readKind()
		if err != nil {
			return res, err
		}
		if kind == chunkEnd {
			flag, err := cr.readByte("reading end marker")
			if err != nil {
				return res, err
			}
			if flag > 1 {
				return res, ErrCorruptPack.New("bad end marker")
			}
			res.Filtered = flag == 1
			if err := cr.finish(); err != nil {
				return res, err
			}
			break
		}

		if kind == chunkMetadataObjectAndDiffEntry {
			obj, err := cr.readObject()
			if err != nil {
				return res, err
			}
			b.objs = append(b.objs, obj)
		}
		if kind != chunkDiffEntry {
			obj, err := cr.readObject()
			if err != nil {
				return res, err
			}
			b.objs = append(b.objs, obj)
		}
		if kind != chunkObject {
			e, err := cr.readEntry()
			if err != nil {
				return res, err
			}
			b.entries = append(b.entries, e)
			res.Entries++
		}
		counter.Add(1)

		if b.full() {
			if err := b.flush(ctx); err != nil {
				return res, err
			}
		}
	}
	if err := b.flush(ctx); err != nil {
		return res, err
	}
	res.Inserted = b.listener.InsertedCount
	res.Existing = b.listener.FoundCount
	l.Completed(counter.Done())
	logrus.WithFields(logrus.Fields{
		"inserted": res.Inserted,
		"existing": res.Existing,
		"entries":  res.Entries,
		"filtered": res.Filtered,
	}).Debug("pack ingested")
	return res, nil
}

// batch buffers objects and the diff entries that follow them.
type batch struct {
	odb      types.ObjectDatabase
	size     int
	cb       func(diff.DiffEntry) error
	objs     []types.RevObject
	entries  []diff.DiffEntry
	listener types.CountingListener
}

func (b *batch) full() bool {
	return len(b.objs) >= b.size || len(b.entries) >= b.size
}

func (b *batch) flush(ctx context.Context) error {
	if len(b.objs) > 0 {
		if _, err := b.odb.PutAll(ctx, b.objs, &b.listener); err != nil {
			return err
		}
		b.objs = b.objs[:0]
	}
	if b.cb != nil {
		for _, e := range b.entries {
			if err := b.cb(e); err != nil {
				return err
			}
		}
	}
	b.entries = b.entries[:0]
	return nil
}
