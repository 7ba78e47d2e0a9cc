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

// Package hash implements the object identifier used throughout the
// repository. An identifier is the first 20 bytes of the sha-512 digest of an
// object's canonical encoding and prints as 32 characters of base32.
package hash

import (
	"bytes"
	"crypto/sha512"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/src-d/go-errors.v1"
)

const (
	// ByteLen is the number of bytes in a Hash.
	ByteLen = 20

	// StringLen is the number of characters needed to print a Hash.
	StringLen = 32
)

var (
	pattern   = regexp.MustCompile("^[0-9a-v]{" + fmt.Sprint(StringLen) + "}$")
	emptyHash = Hash{}

	// ErrInvalidHash is returned when a string cannot be parsed as a Hash.
	ErrInvalidHash = errors.NewKind("invalid object id: %q")
)

// Hash identifies an object by its content.
type Hash [ByteLen]byte

// IsEmpty determines if this Hash is equal to the empty hash (all zeroes).
func (h Hash) IsEmpty() bool {
	return h == emptyHash
}

// String returns a string representation of the hash using Base32 encoding.
func (h Hash) String() string {
	return encode(h[:])
}

// Abbreviated returns the first 8 characters of the printed hash.
func (h Hash) Abbreviated() string {
	return h.String()[:8]
}

// Less compares two hashes returning whether this Hash is less than other.
func (h Hash) Less(other Hash) bool {
	return h.Compare(other) < 0
}

// Compare compares two hashes returning a negative value if h < other, 0 if
// they are equal and a positive value otherwise.
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}

// Of computes a new Hash from |data|.
func Of(data []byte) Hash {
	r := sha512.Sum512(data)
	h := Hash{}
	copy(h[:], r[:ByteLen])
	return h
}

// New creates a new Hash backed by |b|, which must be exactly ByteLen long.
func New(b []byte) Hash {
	if len(b) != ByteLen {
		panic(fmt.Sprintf("hash: expected %d bytes, got %d", ByteLen, len(b)))
	}
	h := Hash{}
	copy(h[:], b)
	return h
}

// MaybeParse parses a string representing a hash as a Base32 encoded byte
// array. If the string is not well formed then this returns (emptyHash, false).
func MaybeParse(s string) (Hash, bool) {
	if !pattern.MatchString(s) {
		return emptyHash, false
	}
	data, err := decode(s)
	if err != nil || len(data) != ByteLen {
		return emptyHash, false
	}
	return New(data), true
}

// Parse parses a string representing a hash as a Base32 encoded byte array.
func Parse(s string) (Hash, error) {
	h, ok := MaybeParse(strings.TrimSpace(s))
	if !ok {
		return emptyHash, ErrInvalidHash.New(s)
	}
	return h, nil
}

// IsValid returns whether |s| is a well formed printed Hash.
func IsValid(s string) bool {
	_, ok := MaybeParse(s)
	return ok
}

// HashSet is a set of Hashes.
type HashSet map[Hash]struct{}

// NewHashSet returns a new HashSet containing |hashes|.
func NewHashSet(hashes ...Hash) HashSet {
	out := make(HashSet, len(hashes))
	for _, h := range hashes {
		out.Insert(h)
	}
	return out
}

// Size returns the number of items in the set.
func (hs HashSet) Size() int {
	return len(hs)
}

// Insert adds a Hash to the set.
func (hs HashSet) Insert(hash Hash) {
	hs[hash] = struct{}{}
}

// Has returns true if the HashSet contains hash.
func (hs HashSet) Has(hash Hash) (has bool) {
	_, has = hs[hash]
	return
}

// Remove removes hash from the HashSet.
func (hs HashSet) Remove(hash Hash) {
	delete(hs, hash)
}

// Copy returns a copy of the hashset.
func (hs HashSet) Copy() HashSet {
	copyOf := make(HashSet, len(hs))
	for k := range hs {
		copyOf[k] = struct{}{}
	}
	return copyOf
}

// ToSlice returns the members of the set in sorted order.
func (hs HashSet) ToSlice() HashSlice {
	out := make(HashSlice, 0, len(hs))
	for h := range hs {
		out = append(out, h)
	}
	out.Sort()
	return out
}

func (hs HashSet) String() string {
	var sb strings.Builder
	sb.WriteString("HashSet {\n")
	for _, h := range hs.ToSlice() {
		sb.WriteString("\t")
		sb.WriteString(h.String())
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}
