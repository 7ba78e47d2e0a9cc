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

package hash

import "sort"

// HashSlice is a slice of Hashes that implements sort.Interface.
type HashSlice []Hash

func (rs HashSlice) Len() int {
	return len(rs)
}

func (rs HashSlice) Less(i, j int) bool {
	return rs[i].Less(rs[j])
}

func (rs HashSlice) Swap(i, j int) {
	rs[i], rs[j] = rs[j], rs[i]
}

// Sort sorts the slice in place.
func (rs HashSlice) Sort() {
	sort.Sort(rs)
}

func (rs HashSlice) Equals(other HashSlice) bool {
	if len(rs) != len(other) {
		return false
	}
	for i := 0; i < len(rs); i++ {
		if rs[i] != other[i] {
			return false
		}
	}
	return true
}

func (rs HashSlice) HashSet() HashSet {
	hs := make(HashSet, len(rs))
	for _, h := range rs {
		hs[h] = struct{}{}
	}

	return hs
}
