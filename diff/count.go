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
	"fmt"

	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/types"
)

// ObjectCount tallies the features and trees that differ between two trees.
type ObjectCount struct {
	FeaturesAdded   uint64
	FeaturesRemoved uint64
	FeaturesChanged uint64
	TreesAdded      uint64
	TreesRemoved    uint64
	TreesChanged    uint64
}

// Features returns the number of differing features.
func (c ObjectCount) Features() uint64 {
	return c.FeaturesAdded + c.FeaturesRemoved + c.FeaturesChanged
}

// Trees returns the number of differing trees.
func (c ObjectCount) Trees() uint64 {
	return c.TreesAdded + c.TreesRemoved + c.TreesChanged
}

// Count returns the total number of differing objects.
func (c ObjectCount) Count() uint64 {
	return c.Features() + c.Trees()
}

func (c ObjectCount) String() string {
	return fmt.Sprintf("features: +%d -%d ~%d, trees: +%d -%d ~%d",
		c.FeaturesAdded, c.FeaturesRemoved, c.FeaturesChanged,
		c.TreesAdded, c.TreesRemoved, c.TreesChanged)
}

// CountConsumer counts the differences reported to it. Trees and buckets
// present on one side only are counted from the totals stored in them
// without being visited. The root tree is not counted.
type CountConsumer struct {
	ctx   context.Context
	odb   types.ObjectDatabase
	count ObjectCount
}

var _ Consumer = (*CountConsumer)(nil)

func NewCountConsumer(ctx context.Context, odb types.ObjectDatabase) *CountConsumer {
	return &CountConsumer{ctx: ctx, odb: odb}
}

// Count returns the tally so far.
func (c *CountConsumer) Count() ObjectCount {
	return c.count
}

func (c *CountConsumer) Feature(left, right *NodeRef) error {
	switch {
	case left == nil:
		c.count.FeaturesAdded++
	case right == nil:
		c.count.FeaturesRemoved++
	default:
		c.count.FeaturesChanged++
	}
	return nil
}

func (c *CountConsumer) Tree(left, right *NodeRef) (bool, error) {
	if left != nil && right != nil {
		if pathOf(left, right) != "" {
			c.count.TreesChanged++
		}
		return true, nil
	}
	if left == nil {
		return false, c.addTree(right.ID, 1, &c.count.FeaturesAdded, &c.count.TreesAdded)
	}
	return false, c.addTree(left.ID, 1, &c.count.FeaturesRemoved, &c.count.TreesRemoved)
}

func (c *CountConsumer) EndTree(left, right *NodeRef) error {
	return nil
}

func (c *CountConsumer) Bucket(treePath string, index, depth int, left, right *types.Bucket) (bool, error) {
	switch {
	case left == nil:
		return false, c.addTree(right.ID, 0, &c.count.FeaturesAdded, &c.count.TreesAdded)
	case right == nil:
		return false, c.addTree(left.ID, 0, &c.count.FeaturesRemoved, &c.count.TreesRemoved)
	default:
		return true, nil
	}
}

func (c *CountConsumer) EndBucket(treePath string, index, depth int, left, right *types.Bucket) error {
	return nil
}

// addTree adds the totals of the tree |id| plus |self| for the tree itself.
func (c *CountConsumer) addTree(id hash.Hash, self uint64, features, trees *uint64) error {
	t, err := types.GetTree(c.ctx, c.odb, id)
	if err != nil {
		return err
	}
	*features += t.FeatureCount()
	*trees += self + t.SubtreeCount()
	return nil
}
