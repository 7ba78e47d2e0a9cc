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

// Package types contains the immutable, content-addressed objects stored in a
// repository (commits, trees, features, feature types and tags), their
// canonical binary encoding, and the ObjectDatabase used to read and write
// them.
package types

import (
	"fmt"

	"gopkg.in/src-d/go-errors.v1"

	"github.com/rmarianski/GeoGit/hash"
)

var (
	// ErrObjectNotFound is returned when a required object is absent.
	ErrObjectNotFound = errors.NewKind("object not found: %s")

	// ErrCorruptObject is returned when stored or transferred bytes cannot
	// be decoded into the object they claim to be.
	ErrCorruptObject = errors.NewKind("corrupt object %s: %s")

	// ErrUnexpectedType is returned when an object is not of the type the
	// caller asked for.
	ErrUnexpectedType = errors.NewKind("object %s is a %s, expected a %s")

	// ErrUnsupportedValue is returned when a feature is built from a value
	// that cannot be encoded.
	ErrUnsupportedValue = errors.NewKind("unsupported feature value of type %T")
)

// ObjectType is the tag written as the first byte of every encoded object.
type ObjectType uint8

const (
	TypeCommit      ObjectType = 1
	TypeTree        ObjectType = 2
	TypeFeature     ObjectType = 3
	TypeFeatureType ObjectType = 4
	TypeTag         ObjectType = 5
)

var typeNames = map[ObjectType]string{
	TypeCommit:      "commit",
	TypeTree:        "tree",
	TypeFeature:     "feature",
	TypeFeatureType: "featuretype",
	TypeTag:         "tag",
}

func (t ObjectType) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// IsValid returns whether |t| names a known object type.
func (t ObjectType) IsValid() bool {
	_, ok := typeNames[t]
	return ok
}

// ParseObjectType returns the ObjectType printed as |s|.
func ParseObjectType(s string) (ObjectType, bool) {
	for t, n := range typeNames {
		if n == s {
			return t, true
		}
	}
	return 0, false
}

// RevObject is an immutable object identified by the hash of its canonical
// encoding.
type RevObject interface {
	ID() hash.Hash
	Type() ObjectType
}

func computeID(obj RevObject) hash.Hash {
	return hash.Of(Encode(obj))
}
