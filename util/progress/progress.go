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

// Package progress reports the progress of long running operations.
package progress

import (
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// Listener receives progress updates. Implementations must be safe for
// concurrent use.
type Listener interface {
	// Started is called once when the operation begins.
	Started(description string)
	// Progress reports the number of units processed so far.
	Progress(done uint64)
	// Completed is called once when the operation ends.
	Completed(done uint64)
}

// Noop ignores every update.
type Noop struct{}

var _ Listener = Noop{}

func (Noop) Started(string)   {}
func (Noop) Progress(uint64)  {}
func (Noop) Completed(uint64) {}

// LogListener logs updates to a logrus entry, at most once per interval.
type LogListener struct {
	log      *logrus.Entry
	interval time.Duration
	now      func() time.Time

	mu          sync.Mutex
	description string
	start       time.Time
	last        time.Time
}

var _ Listener = (*LogListener)(nil)

func NewLogListener(log *logrus.Entry, interval time.Duration) *LogListener {
	return &LogListener{log: log, interval: interval, now: time.Now}
}

func (l *LogListener) Started(description string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.description = description
	l.start = l.now()
	l.last = l.start
	l.log.Infof("%s: started", description)
}

func (l *LogListener) Progress(done uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.last) < l.interval {
		return
	}
	l.last = now
	l.log.WithField("elapsed", now.Sub(l.start).Round(time.Millisecond)).
		Infof("%s: %s processed", l.description, humanize.Comma(int64(done)))
}

func (l *LogListener) Completed(done uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log.WithField("elapsed", l.now().Sub(l.start).Round(time.Millisecond)).
		Infof("%s: completed, %s processed", l.description, humanize.Comma(int64(done)))
}

// Counter counts units of work and reports them to a Listener every |every|
// units.
type Counter struct {
	l     Listener
	every uint64
	done  uint64
}

func NewCounter(l Listener, every uint64) *Counter {
	if l == nil {
		l = Noop{}
	}
	if every == 0 {
		every = 1
	}
	return &Counter{l: l, every: every}
}

// Add records |n| more units of work.
func (c *Counter) Add(n uint64) {
	before := c.done / c.every
	c.done += n
	if c.done/c.every != before {
		c.l.Progress(c.done)
	}
}

func (c *Counter) Done() uint64 {
	return c.done
}
