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
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/src-d/go-errors.v1"

	"github.com/rmarianski/GeoGit/tree"
	"github.com/rmarianski/GeoGit/types"
)

var (
	// ErrEmptyPathFilter is returned when a path filter is created without
	// any paths.
	ErrEmptyPathFilter = errors.NewKind("path filter list is empty")

	// ErrInvalidPathFilter is returned for a malformed filter path.
	ErrInvalidPathFilter = errors.NewKind("invalid path filter %q")
)

// PathFilter decides which trees, buckets and features of a diff fall under
// a set of paths.
//
// Given the filter roads/highway, the tree paths roads, roads/highway and
// roads/highway/principal apply, while roads/secondary and buildings do not.
type PathFilter struct {
	filters []string
	steps   [][]string
}

// NewPathFilter returns a PathFilter for |filters|, which must not be empty.
func NewPathFilter(filters []string) (*PathFilter, error) {
	if len(filters) == 0 {
		return nil, ErrEmptyPathFilter.New()
	}
	seen := make(map[string]bool, len(filters))
	pf := &PathFilter{}
	for _, f := range filters {
		if f == "" || strings.HasPrefix(f, tree.PathSeparator) || strings.HasSuffix(f, tree.PathSeparator) || strings.Contains(f, "//") {
			return nil, ErrInvalidPathFilter.New(f)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		pf.filters = append(pf.filters, f)
		pf.steps = append(pf.steps, tree.Split(f))
	}
	return pf, nil
}

// covers returns whether |path| equals or is nested beneath a filter.
func (pf *PathFilter) covers(path string) bool {
	for _, f := range pf.filters {
		if f == path || tree.IsChild(f, path) {
			return true
		}
	}
	return false
}

// TreeApplies returns whether the tree at |treePath| equals, contains, or is
// contained by a filter.
func (pf *PathFilter) TreeApplies(treePath string) bool {
	return pf.covers(treePath) || pf.isAncestor(treePath)
}

func (pf *PathFilter) isAncestor(treePath string) bool {
	for _, f := range pf.filters {
		if tree.IsChild(treePath, f) {
			return true
		}
	}
	return false
}

// BucketApplies returns whether the bucket |index| at |depth| of the tree at
// |treePath| can hold an entry a filter refers to.
func (pf *PathFilter) BucketApplies(treePath string, index, depth int) bool {
	if pf.covers(treePath) {
		return true
	}
	treeDepth := tree.Depth(treePath)
	for i, f := range pf.filters {
		if !tree.IsChild(treePath, f) {
			continue
		}
		childName := pf.steps[i][treeDepth]
		applies := tree.BucketIndex(childName, depth) == index
		logrus.WithFields(logrus.Fields{
			"filter": f,
			"tree":   treePath,
			"depth":  depth,
			"bucket": index,
		}).Tracef("bucket applies: %v", applies)
		if applies {
			return true
		}
	}
	return false
}

// FeatureApplies returns whether the feature at |featurePath| equals or is
// nested beneath a filter.
func (pf *PathFilter) FeatureApplies(featurePath string) bool {
	return pf.covers(featurePath)
}

// PathFilteringConsumer forwards to its delegate only the differences under
// a PathFilter.
//
// Trees and buckets that merely lead to a filtered path are descended into
// without being reported, so the delegate sees exactly the differences it
// would see diffing the filtered subtrees alone.
type PathFilteringConsumer struct {
	ForwardingConsumer
	filter *PathFilter

	// forwarded records, for every open Tree or Bucket call, whether it was
	// passed to the delegate.
	forwarded []bool
}

var _ Consumer = (*PathFilteringConsumer)(nil)

// NewPathFilteringConsumer wraps |delegate| with a filter on |filters|.
func NewPathFilteringConsumer(filters []string, delegate Consumer) (*PathFilteringConsumer, error) {
	pf, err := NewPathFilter(filters)
	if err != nil {
		return nil, err
	}
	return &PathFilteringConsumer{ForwardingConsumer: ForwardingConsumer{delegate}, filter: pf}, nil
}

func (c *PathFilteringConsumer) push(forwarded bool) {
	c.forwarded = append(c.forwarded, forwarded)
}

func (c *PathFilteringConsumer) pop() bool {
	top := c.forwarded[len(c.forwarded)-1]
	c.forwarded = c.forwarded[:len(c.forwarded)-1]
	return top
}

func (c *PathFilteringConsumer) Feature(left, right *NodeRef) error {
	if c.filter.FeatureApplies(pathOf(left, right)) {
		return c.Consumer.Feature(left, right)
	}
	return nil
}

func (c *PathFilteringConsumer) Tree(left, right *NodeRef) (bool, error) {
	path := pathOf(left, right)
	switch {
	case c.filter.covers(path):
		c.push(true)
		return c.Consumer.Tree(left, right)
	case c.filter.isAncestor(path):
		c.push(false)
		return true, nil
	default:
		c.push(false)
		return false, nil
	}
}

func (c *PathFilteringConsumer) EndTree(left, right *NodeRef) error {
	if c.pop() {
		return c.Consumer.EndTree(left, right)
	}
	return nil
}

func (c *PathFilteringConsumer) Bucket(treePath string, index, depth int, left, right *types.Bucket) (bool, error) {
	switch {
	case c.filter.covers(treePath):
		c.push(true)
		return c.Consumer.Bucket(treePath, index, depth, left, right)
	case c.filter.BucketApplies(treePath, index, depth):
		c.push(false)
		return true, nil
	default:
		c.push(false)
		return false, nil
	}
}

func (c *PathFilteringConsumer) EndBucket(treePath string, index, depth int, left, right *types.Bucket) error {
	if c.pop() {
		return c.Consumer.EndBucket(treePath, index, depth, left, right)
	}
	return nil
}
