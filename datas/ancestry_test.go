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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindCommonAncestorLinear(t *testing.T) {
	ctx := context.Background()
	// a <- b <- c <- d
	g := newGraph(t,
		edge{"b", []string{"a"}},
		edge{"c", []string{"b"}},
		edge{"d", []string{"c"}},
	)
	for _, tc := range []struct{ left, right, expected string }{
		{"c", "d", "c"},
		{"d", "c", "c"},
		{"a", "d", "a"},
		{"b", "b", "b"},
	} {
		ancestor, ok, err := FindCommonAncestor(ctx, g, id(tc.left), id(tc.right))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, id(tc.expected), ancestor, "%s %s", tc.left, tc.right)
	}
}

func TestFindCommonAncestorBranches(t *testing.T) {
	ctx := context.Background()
	// root <- x <- a1 <- a2 <- a3
	//          \
	//           b1 <- b2
	g := newGraph(t,
		edge{"x", []string{"root"}},
		edge{"a1", []string{"x"}},
		edge{"a2", []string{"a1"}},
		edge{"a3", []string{"a2"}},
		edge{"b1", []string{"x"}},
		edge{"b2", []string{"b1"}},
	)
	ancestor, ok, err := FindCommonAncestor(ctx, g, id("a3"), id("b2"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id("x"), ancestor)

	ancestor, ok, err = FindCommonAncestor(ctx, g, id("b2"), id("a1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id("x"), ancestor)
}

func TestFindCommonAncestorAfterMerge(t *testing.T) {
	ctx := context.Background()
	// x <- a1 <- a2 <------ m <- a3
	//  \                   /
	//   b1 <- b2 <- b3 <---
	//                 \
	//                  b4
	g := newGraph(t,
		edge{"a1", []string{"x"}},
		edge{"a2", []string{"a1"}},
		edge{"b1", []string{"x"}},
		edge{"b2", []string{"b1"}},
		edge{"b3", []string{"b2"}},
		edge{"m", []string{"a2", "b3"}},
		edge{"a3", []string{"m"}},
		edge{"b4", []string{"b3"}},
	)
	ancestor, ok, err := FindCommonAncestor(ctx, g, id("a3"), id("b4"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id("b3"), ancestor)
}

func TestFindCommonAncestorsCrissCross(t *testing.T) {
	ctx := context.Background()
	// Two merges of the same pair of branches in opposite order.
	g := newGraph(t,
		edge{"b", []string{"base"}},
		edge{"c", []string{"base"}},
		edge{"m1", []string{"b", "c"}},
		edge{"m2", []string{"c", "b"}},
		edge{"t1", []string{"m1"}},
		edge{"t2", []string{"m2"}},
	)
	candidates, err := FindCommonAncestors(ctx, g, id("t1"), id("t2"))
	require.NoError(t, err)
	assert.ElementsMatch(t, ids("b", "c"), candidates)

	ancestor, ok, err := FindCommonAncestor(ctx, g, id("t1"), id("t2"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, candidates, ancestor)

	// No candidate is an ancestor of another.
	for _, a := range candidates {
		for _, b := range candidates {
			if a == b {
				continue
			}
			isAnc, err := IsAncestor(ctx, g, a, b)
			require.NoError(t, err)
			assert.False(t, isAnc)
		}
	}
}

func TestFindCommonAncestorOlderCandidateFirst(t *testing.T) {
	ctx := context.Background()
	// Both sides reach the old commit c1 directly, and the newer c2 only
	// through p and q. c1 is found first but lies below c2.
	//
	// c1 <- z <- c2 <- p <- l
	//  ^           ^        |
	//  |           +-- q <- r
	//  +----------------- l, r
	g := newGraph(t,
		edge{"z", []string{"c1"}},
		edge{"c2", []string{"z"}},
		edge{"p", []string{"c2"}},
		edge{"q", []string{"c2"}},
		edge{"l", []string{"c1", "p"}},
		edge{"r", []string{"c1", "q"}},
	)
	for _, tc := range []struct{ left, right string }{
		{"l", "r"},
		{"r", "l"},
	} {
		candidates, err := FindCommonAncestors(ctx, g, id(tc.left), id(tc.right))
		require.NoError(t, err)
		assert.Equal(t, ids("c2"), candidates, "%s %s", tc.left, tc.right)

		ancestor, ok, err := FindCommonAncestor(ctx, g, id(tc.left), id(tc.right))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, id("c2"), ancestor, "%s %s", tc.left, tc.right)
	}
}

func TestFindCommonAncestorOlderCandidateLongGap(t *testing.T) {
	ctx := context.Background()
	// Same shape with a long chain between the two candidates, so neither
	// side walks it before both candidates are found.
	edges := []edge{{"z0", []string{"c1"}}}
	for i := 1; i < 50; i++ {
		edges = append(edges, edge{fmt.Sprint("z", i), []string{fmt.Sprint("z", i-1)}})
	}
	edges = append(edges,
		edge{"c2", []string{"z49"}},
		edge{"p1", []string{"c2"}},
		edge{"p2", []string{"p1"}},
		edge{"q1", []string{"c2"}},
		edge{"l", []string{"c1", "p2"}},
		edge{"r", []string{"q1", "c1"}},
	)
	g := newGraph(t, edges...)
	for _, tc := range []struct{ left, right string }{
		{"l", "r"},
		{"r", "l"},
	} {
		ancestor, ok, err := FindCommonAncestor(ctx, g, id(tc.left), id(tc.right))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, id("c2"), ancestor, "%s %s", tc.left, tc.right)
	}
}

func TestFindCommonAncestorLongHistory(t *testing.T) {
	ctx := context.Background()
	var edges []edge
	for i := 1; i < 5000; i++ {
		edges = append(edges, edge{fmt.Sprint("main", i), []string{fmt.Sprint("main", i-1)}})
	}
	edges = append(edges, edge{"side1", []string{"main10"}}, edge{"side2", []string{"side1"}})
	g := newGraph(t, edges...)

	ancestor, ok, err := FindCommonAncestor(ctx, g, id("main4999"), id("side2"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id("main10"), ancestor)
}

func TestFindCommonAncestorDisjoint(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t,
		edge{"a2", []string{"a1"}},
		edge{"b2", []string{"b1"}},
	)
	_, ok, err := FindCommonAncestor(ctx, g, id("a2"), id("b2"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindCommonAncestorNotIndexed(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t, edge{"b", []string{"a"}})
	_, _, err := FindCommonAncestor(ctx, g, id("b"), id("missing"))
	assert.True(t, ErrGraphNodeNotFound.Is(err))
	_, _, err = FindCommonAncestor(ctx, g, id("missing"), id("missing"))
	assert.True(t, ErrGraphNodeNotFound.Is(err))
}

func TestCheckSparsePath(t *testing.T) {
	ctx := context.Background()
	// a <- b <- c <- d <- e
	//       \        /
	//        s1 <- s2
	g := newGraph(t,
		edge{"b", []string{"a"}},
		edge{"c", []string{"b"}},
		edge{"s1", []string{"b"}},
		edge{"s2", []string{"s1"}},
		edge{"d", []string{"c", "s2"}},
		edge{"e", []string{"d"}},
	)
	require.NoError(t, g.SetSparse(ctx, id("s2")))

	for _, tc := range []struct {
		start, end string
		sparse     bool
	}{
		{"e", "a", true},
		{"e", "b", true},
		{"d", "b", true},
		{"e", "s2", false},
		{"c", "a", false},
		{"s2", "a", true},
		{"s1", "a", false},
		{"e", "unrelated", false},
		{"a", "a", false},
	} {
		sparse, err := CheckSparsePath(ctx, g, id(tc.start), id(tc.end))
		require.NoError(t, err)
		assert.Equal(t, tc.sparse, sparse, "%s -> %s", tc.start, tc.end)
	}

	_, err := CheckSparsePath(ctx, g, id("missing"), id("a"))
	assert.True(t, ErrGraphNodeNotFound.Is(err))
}

func TestIsAncestor(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t,
		edge{"b", []string{"a"}},
		edge{"c", []string{"b"}},
		edge{"x", []string{"a"}},
	)
	for _, tc := range []struct {
		ancestor, descendant string
		expected             bool
	}{
		{"a", "c", true},
		{"c", "c", true},
		{"c", "a", false},
		{"b", "x", false},
	} {
		ok, err := IsAncestor(ctx, g, id(tc.ancestor), id(tc.descendant))
		require.NoError(t, err)
		assert.Equal(t, tc.expected, ok, "%s %s", tc.ancestor, tc.descendant)
	}
}
