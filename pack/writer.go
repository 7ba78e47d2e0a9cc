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

// Package pack serializes sets of objects, and the changes between trees,
// into a self-describing stream that another object database can ingest.
package pack

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/rmarianski/GeoGit/diff"
	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/types"
	"github.com/rmarianski/GeoGit/util/progress"
	"github.com/rmarianski/GeoGit/walk"
)

const (
	DefaultBatchSize = 1024

	progressEvery = 1000
)

// Options configures pack writers and readers.
type Options struct {
	// Compression applies to written packs. Readers detect it from the
	// pack header.
	Compression Compression
	// BatchSize is the number of objects a Reader buffers before storing
	// them. Zero means DefaultBatchSize.
	BatchSize int
	// Progress, when set, receives the number of chunks processed.
	Progress progress.Listener
}

func (o Options) listener() progress.Listener {
	if o.Progress == nil {
		return progress.Noop{}
	}
	return o.Progress
}

// Writer writes packs of the objects stored in an ObjectDatabase.
type Writer struct {
	odb  types.ObjectDatabase
	opts Options
}

func NewWriter(odb types.ObjectDatabase, opts Options) *Writer {
	return &Writer{odb: odb, opts: opts}
}

// WriteObjects writes a pack holding every object reachable from |want|
// that the receiver, which holds |have| and everything reachable from it,
// lacks. Each object comes after every object it refers to. Commit parents
// are followed only when |traverseCommits| is set.
//
// Ids already marked in |dedup| are not written, and every written id is
// marked, so a caller can share |dedup| across packs of one session. A nil
// |dedup| starts empty. Missing |have| ids are ignored. It returns the number
// of objects written.
func (w *Writer) WriteObjects(ctx context.Context, out io.Writer, want, have []hash.Hash, traverseCommits bool, dedup *walk.Deduplicator) (int, error) {
	if len(want) == 0 {
		return 0, ErrIncompatibleWantHave.New("nothing wanted")
	}
	haveSet := hash.HashSlice(have).HashSet()
	for _, id := range want {
		if haveSet.Has(id) {
			return 0, ErrIncompatibleWantHave.New(fmt.Sprintf("%s is both wanted and had", id))
		}
		ok, err := w.odb.Exists(ctx, id)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ErrWantNotFound.New(id)
		}
	}
	if dedup == nil {
		dedup = walk.NewDeduplicator()
	}
	if err := w.previsit(ctx, want, have, traverseCommits, dedup); err != nil {
		return 0, err
	}

	cw, err := newChunkWriter(out, w.opts.Compression)
	if err != nil {
		return 0, err
	}
	l := w.opts.listener()
	l.Started("writing objects")
	counter := progress.NewCounter(l, progressEvery)
	err = walk.PostOrder(ctx, w.odb, want, walk.Options{TraverseCommits: traverseCommits}, dedup, func(obj types.RevObject) error {
		cw.writeKind(chunkObject)
		cw.writeObject(obj)
		counter.Add(1)
		return cw.err
	})
	if err != nil {
		return 0, err
	}
	cw.writeEnd(false)
	if err := cw.close(); err != nil {
		return 0, err
	}
	n := int(counter.Done())
	l.Completed(counter.Done())
	logrus.WithFields(logrus.Fields{
		"objects":     n,
		"bytes":       cw.size,
		"compression": w.opts.Compression,
	}).Debug("object pack written")
	return n, nil
}

// previsit marks in |dedup| everything the receiver already holds and the
// object walk from |want| could reach: the closure of each stored |have| id
// and, when commits are traversed, of each ancestor of |have| that the walk
// meets first on its way down the history of |want|.
func (w *Writer) previsit(ctx context.Context, want, have []hash.Hash, traverseCommits bool, dedup *walk.Deduplicator) error {
	var haveCommits, roots []hash.Hash
	for _, id := range have {
		obj, ok, err := types.GetIfPresent(ctx, w.odb, id)
		if err != nil {
			return err
		}
		if !ok {
			logrus.WithField("id", id.String()).Debug("ignoring missing have")
			continue
		}
		roots = append(roots, id)
		if obj.Type() == types.TypeCommit {
			haveCommits = append(haveCommits, id)
		}
	}
	if len(roots) == 0 {
		return nil
	}

	if traverseCommits && len(haveCommits) > 0 {
		scratch := walk.NewDeduplicator()
		known := hash.NewHashSet()
		err := walk.Ancestors(ctx, w.odb, haveCommits, scratch, func(c *types.Commit) (bool, error) {
			known.Insert(c.ID())
			return true, nil
		})
		if err != nil {
			return err
		}

		scratch.Reset()
		var wantCommits []hash.Hash
		for _, id := range want {
			obj, err := w.odb.Get(ctx, id)
			if err != nil {
				return err
			}
			if obj.Type() == types.TypeCommit {
				wantCommits = append(wantCommits, id)
			}
		}
		err = walk.Ancestors(ctx, w.odb, wantCommits, scratch, func(c *types.Commit) (bool, error) {
			if known.Has(c.ID()) {
				roots = append(roots, c.ID())
				return false, nil
			}
			return true, nil
		})
		if err != nil {
			return err
		}
	}

	// Only the objects of each commit are marked, its parents are cut off by
	// marking the commit itself.
	marked := 0
	err := walk.PostOrder(ctx, w.odb, roots, walk.Options{}, dedup, func(types.RevObject) error {
		marked++
		return nil
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"roots": len(roots), "marked": marked}).Trace("pack previsit")
	return nil
}

// WriteChanges writes a pack of |entries| along with the new object of every
// entry that has one, preceded by its metadata object the first time that
// metadata id appears. |filtered| tells the receiver the entries are a subset
// of the changes. It returns the number of entries written.
func (w *Writer) WriteChanges(ctx context.Context, out io.Writer, entries []diff.DiffEntry, filtered bool) (int, error) {
	cw, err := newChunkWriter(out, w.opts.Compression)
	if err != nil {
		return 0, err
	}
	cs := w.newChangeSink(cw)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := cs.put(ctx, e); err != nil {
			return 0, err
		}
	}
	return cs.finish(filtered)
}

// WriteTreeChanges writes a pack of the differences between |left| and
// |right| as they are found, without collecting them first. The pack is
// marked filtered when |opts| has path filters.
func (w *Writer) WriteTreeChanges(ctx context.Context, out io.Writer, left, right *types.Tree, opts diff.Options) (int, error) {
	cw, err := newChunkWriter(out, w.opts.Compression)
	if err != nil {
		return 0, err
	}
	cs := w.newChangeSink(cw)
	var c diff.Consumer = diff.NewEntryConsumer(opts.ReportTrees, func(e diff.DiffEntry) error {
		return cs.put(ctx, e)
	})
	if len(opts.PathFilters) > 0 {
		if c, err = diff.NewPathFilteringConsumer(opts.PathFilters, c); err != nil {
			return 0, err
		}
	}
	if err := diff.Walk(ctx, w.odb, left, right, c); err != nil {
		return 0, err
	}
	return cs.finish(len(opts.PathFilters) > 0)
}

type changeSink struct {
	odb          types.ObjectDatabase
	cw           *chunkWriter
	sentMetadata hash.HashSet
	l            progress.Listener
	counter      *progress.Counter
	compression  Compression
}

func (w *Writer) newChangeSink(cw *chunkWriter) *changeSink {
	l := w.opts.listener()
	l.Started("writing changes")
	return &changeSink{
		odb:          w.odb,
		cw:           cw,
		sentMetadata: hash.NewHashSet(),
		l:            l,
		counter:      progress.NewCounter(l, progressEvery),
		compression:  w.opts.Compression,
	}
}

func (cs *changeSink) put(ctx context.Context, e diff.DiffEntry) error {
	if e.New == nil {
		cs.cw.writeKind(chunkDiffEntry)
		cs.cw.writeEntry(e)
		cs.counter.Add(1)
		return cs.cw.err
	}
	obj, err := cs.odb.Get(ctx, e.New.ID)
	if err != nil {
		return err
	}
	md := e.New.MetadataID
	if !md.IsEmpty() && !cs.sentMetadata.Has(md) {
		mdObj, err := cs.odb.Get(ctx, md)
		if err != nil {
			return err
		}
		cs.sentMetadata.Insert(md)
		cs.cw.writeKind(chunkMetadataObjectAndDiffEntry)
		cs.cw.writeObject(mdObj)
	} else {
		cs.cw.writeKind(chunkObjectAndDiffEntry)
	}
	cs.cw.writeObject(obj)
	cs.cw.writeEntry(e)
	cs.counter.Add(1)
	return cs.cw.err
}

func (cs *changeSink) finish(filtered bool) (int, error) {
	cs.cw.writeEnd(filtered)
	if err := cs.cw.close(); err != nil {
		return 0, err
	}
	n := int(cs.counter.Done())
	cs.l.Completed(cs.counter.Done())
	logrus.WithFields(logrus.Fields{
		"entries":     n,
		"filtered":    filtered,
		"bytes":       cs.cw.size,
		"compression": cs.compression,
	}).Debug("changes pack written")
	return n, nil
}
