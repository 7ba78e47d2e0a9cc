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

package datas

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/types"
)

// CommitRequest describes a commit about to be written.
type CommitRequest struct {
	Ref     string
	TreeID  hash.Hash
	Parents []hash.Hash
	Message string
}

// PreCommitHook runs before a commit is written. Returning an error aborts
// the commit with that error.
type PreCommitHook func(ctx context.Context, req CommitRequest) error

// PostCommitHook runs after a commit has been written and its ref updated.
// Errors are logged and otherwise ignored.
type PostCommitHook func(ctx context.Context, ref string, c *types.Commit) error

// Hooks holds the commit hooks registered by the host process, run in
// registration order.
type Hooks struct {
	mu   sync.RWMutex
	pre  []PreCommitHook
	post []PostCommitHook
}

func (h *Hooks) RegisterPreCommit(hook PreCommitHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pre = append(h.pre, hook)
}

func (h *Hooks) RegisterPostCommit(hook PostCommitHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.post = append(h.post, hook)
}

func (h *Hooks) runPreCommit(ctx context.Context, req CommitRequest) error {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	hooks := append([]PreCommitHook(nil), h.pre...)
	h.mu.RUnlock()
	for _, hook := range hooks {
		if err := hook(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hooks) runPostCommit(ctx context.Context, ref string, c *types.Commit) {
	if h == nil {
		return
	}
	h.mu.RLock()
	hooks := append([]PostCommitHook(nil), h.post...)
	h.mu.RUnlock()
	for _, hook := range hooks {
		if err := hook(ctx, ref, c); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"ref":    ref,
				"commit": c.ID().String(),
			}).Warn("post-commit hook failed")
		}
	}
}
