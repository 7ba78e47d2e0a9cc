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

// Package typestest stores synthetic features and commits for tests.
package typestest

import (
	"context"
	"fmt"
	"time"

	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/types"
)

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// Person returns a fixed author whose timestamp is |i| minutes after a
// fixed epoch.
func Person(i int) types.Person {
	return types.NewPerson("Test User", "test@example.com", epoch.Add(time.Duration(i)*time.Minute))
}

// PointType is the feature type of the features made by StoreFeatures.
var PointType = types.NewFeatureType("point", []types.Attribute{
	{Name: "name", Kind: types.StringKind},
	{Name: "x", Kind: types.FloatKind},
	{Name: "y", Kind: types.FloatKind},
})

// StoreFeatures stores |n| features named after |prefix| and returns tree
// entries for them carrying the id of PointType as metadata id. The content
// of each feature depends on |version| as well as its name.
func StoreFeatures(ctx context.Context, odb types.ObjectDatabase, prefix string, n, version int) ([]types.Node, error) {
	if _, err := odb.Put(ctx, PointType); err != nil {
		return nil, err
	}
	objs := make([]types.RevObject, n)
	nodes := make([]types.Node, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s%d", prefix, i)
		f, err := types.NewFeature(name, float64(i), float64(version))
		if err != nil {
			return nil, err
		}
		objs[i] = f
		nodes[i] = types.Node{Name: name, ID: f.ID(), Type: types.FeatureNode, MetadataID: PointType.ID()}
	}
	if _, err := odb.PutAll(ctx, objs, types.NoopListener{}); err != nil {
		return nil, err
	}
	return nodes, nil
}

// Commit stores a commit of |treeID| on top of |parents|.
func Commit(ctx context.Context, odb types.ObjectDatabase, treeID hash.Hash, message string, parents ...hash.Hash) (*types.Commit, error) {
	c := types.NewCommit(treeID, parents, Person(len(message)), Person(len(message)), message)
	if _, err := odb.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
