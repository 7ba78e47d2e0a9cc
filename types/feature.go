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

package types

import (
	"bytes"
	"fmt"
	"math"

	"github.com/rmarianski/GeoGit/hash"
)

// ValueKind is the kind of a single feature attribute value.
type ValueKind uint8

const (
	NullKind ValueKind = iota
	BoolKind
	IntKind
	FloatKind
	StringKind
	// BytesKind carries opaque binary values such as WKB encoded geometries.
	BytesKind
)

var kindNames = []string{"null", "bool", "int", "float", "string", "bytes"}

func (k ValueKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseValueKind returns the ValueKind printed as |s|.
func ParseValueKind(s string) (ValueKind, bool) {
	for i, n := range kindNames {
		if n == s {
			return ValueKind(i), true
		}
	}
	return 0, false
}

// KindOf returns the ValueKind of a normalized value.
func KindOf(v interface{}) ValueKind {
	switch v.(type) {
	case bool:
		return BoolKind
	case int64:
		return IntKind
	case float64:
		return FloatKind
	case string:
		return StringKind
	case []byte:
		return BytesKind
	default:
		return NullKind
	}
}

func normalizeValue(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case nil, bool, int64, float64, string:
		return t, nil
	case []byte:
		return bytes.Clone(t), nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint8:
		return int64(t), nil
	case float32:
		return float64(t), nil
	default:
		return nil, ErrUnsupportedValue.New(v)
	}
}

// Feature is a single record in a collection: an ordered list of attribute
// values whose meaning is given by a FeatureType.
type Feature struct {
	id     hash.Hash
	values []interface{}
}

var _ RevObject = (*Feature)(nil)

// NewFeature returns a Feature holding |values|. Integer and float values of
// any width are widened to int64 and float64.
func NewFeature(values ...interface{}) (*Feature, error) {
	normalized := make([]interface{}, len(values))
	for i, v := range values {
		nv, err := normalizeValue(v)
		if err != nil {
			return nil, err
		}
		normalized[i] = nv
	}
	f := &Feature{values: normalized}
	f.id = computeID(f)
	return f, nil
}

func (f *Feature) ID() hash.Hash {
	return f.id
}

func (f *Feature) Type() ObjectType {
	return TypeFeature
}

// Values returns a copy of the feature's values.
func (f *Feature) Values() []interface{} {
	return append([]interface{}(nil), f.values...)
}

func (f *Feature) NumValues() int {
	return len(f.values)
}

// Value returns the |i|th value.
func (f *Feature) Value(i int) interface{} {
	return f.values[i]
}

// Attribute describes one positional value of the features governed by a
// FeatureType.
type Attribute struct {
	Name     string
	Kind     ValueKind
	Nullable bool
}

// FeatureType is the schema shared by the features of a collection.
type FeatureType struct {
	id    hash.Hash
	name  string
	attrs []Attribute
}

var _ RevObject = (*FeatureType)(nil)

func NewFeatureType(name string, attrs []Attribute) *FeatureType {
	ft := &FeatureType{name: name, attrs: append([]Attribute(nil), attrs...)}
	ft.id = computeID(ft)
	return ft
}

func (ft *FeatureType) ID() hash.Hash {
	return ft.id
}

func (ft *FeatureType) Type() ObjectType {
	return TypeFeatureType
}

func (ft *FeatureType) Name() string {
	return ft.name
}

// Attributes returns a copy of the type's attribute descriptors.
func (ft *FeatureType) Attributes() []Attribute {
	return append([]Attribute(nil), ft.attrs...)
}

// Validate checks that |f| conforms to the type.
func (ft *FeatureType) Validate(f *Feature) error {
	if len(f.values) != len(ft.attrs) {
		return fmt.Errorf("feature %s has %d values, type %s declares %d", f.id, len(f.values), ft.name, len(ft.attrs))
	}
	for i, a := range ft.attrs {
		k := KindOf(f.values[i])
		if k == NullKind {
			if !a.Nullable {
				return fmt.Errorf("attribute %s of feature %s may not be null", a.Name, f.id)
			}
			continue
		}
		if k != a.Kind {
			return fmt.Errorf("attribute %s of feature %s is %s, expected %s", a.Name, f.id, k, a.Kind)
		}
	}
	return nil
}

func floatBits(f float64) uint64 {
	if math.IsNaN(f) {
		return math.Float64bits(math.NaN())
	}
	return math.Float64bits(f)
}
