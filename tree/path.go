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

package tree

import "strings"

// PathSeparator separates the names of nested entries in a path. The root
// tree has the empty path.
const PathSeparator = "/"

// AppendChild returns the path of the entry |child| of the tree at |parent|.
func AppendChild(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + PathSeparator + child
}

// ParentPath returns the path of the tree holding the entry at |path|.
func ParentPath(path string) string {
	i := strings.LastIndex(path, PathSeparator)
	if i < 0 {
		return ""
	}
	return path[:i]
}

// NodeName returns the last element of |path|.
func NodeName(path string) string {
	return path[strings.LastIndex(path, PathSeparator)+1:]
}

// Split returns the names along |path|. The root path has no elements.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, PathSeparator)
}

// Depth returns the number of elements of |path|.
func Depth(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, PathSeparator) + 1
}

// IsChild returns whether |path| is nested, at any depth, beneath |parent|.
func IsChild(parent, path string) bool {
	if parent == "" {
		return path != ""
	}
	return len(path) > len(parent) && strings.HasPrefix(path, parent) && path[len(parent):len(parent)+1] == PathSeparator
}

// IsDirectChild returns whether |path| is an entry of the tree at |parent|.
func IsDirectChild(parent, path string) bool {
	return IsChild(parent, path) && ParentPath(path) == parent
}
