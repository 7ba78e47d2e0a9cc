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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	h := Of([]byte("abc"))
	s := h.String()
	assert.Len(t, s, StringLen)

	parsed, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
}

func TestParseError(t *testing.T) {
	for _, s := range []string{"", "foo", "00000000000000000000000000000000z", "0000000000000000000000000000000w"} {
		_, err := Parse(s)
		assert.Error(t, err, s)
		assert.True(t, ErrInvalidHash.Is(err), s)
		assert.False(t, IsValid(s))
	}
}

func TestOfIsDeterministic(t *testing.T) {
	assert.Equal(t, Of([]byte("data")), Of([]byte("data")))
	assert.NotEqual(t, Of([]byte("data")), Of([]byte("date")))
	assert.False(t, Of(nil).IsEmpty())
	assert.True(t, Hash{}.IsEmpty())
}

func TestLessAndCompare(t *testing.T) {
	var a, b Hash
	b[ByteLen-1] = 1
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.Equal(t, 0, a.Compare(a))
}

func TestHashSet(t *testing.T) {
	a, b, c := Of([]byte("a")), Of([]byte("b")), Of([]byte("c"))
	hs := NewHashSet(a, b)
	assert.Equal(t, 2, hs.Size())
	assert.True(t, hs.Has(a))
	assert.False(t, hs.Has(c))

	cp := hs.Copy()
	hs.Remove(a)
	assert.False(t, hs.Has(a))
	assert.True(t, cp.Has(a))

	sl := cp.ToSlice()
	require.Len(t, sl, 2)
	assert.True(t, sl[0].Less(sl[1]))
	assert.True(t, sl.Equals(HashSlice{sl[0], sl[1]}))
	assert.Equal(t, cp, sl.HashSet())
}
