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
	"encoding/binary"
	"fmt"
	"math"

	"github.com/rmarianski/GeoGit/d"
	"github.com/rmarianski/GeoGit/hash"
)

// The canonical encoding of an object is its ObjectType tag byte followed by
// its fields. Variable length fields are prefixed by their uvarint length,
// tree nodes are sorted by name and buckets by index, so two objects with the
// same content always encode, and therefore hash, identically.

const (
	treeLeafForm   byte = 0
	treeBucketForm byte = 1
)

// Encode returns the canonical encoding of |obj|.
func Encode(obj RevObject) []byte {
	enc := &encoder{}
	enc.writeByte(byte(obj.Type()))
	switch o := obj.(type) {
	case *Commit:
		enc.writeHash(o.treeID)
		enc.writeUvarint(uint64(len(o.parents)))
		for _, p := range o.parents {
			enc.writeHash(p)
		}
		enc.writePerson(o.author)
		enc.writePerson(o.committer)
		enc.writeString(o.message)
	case *Tree:
		enc.writeUvarint(o.entryCount)
		enc.writeUvarint(o.featureCount)
		enc.writeUvarint(o.subtreeCount)
		if o.IsLeaf() {
			enc.writeByte(treeLeafForm)
			enc.writeUvarint(uint64(len(o.nodes)))
			for _, n := range o.nodes {
				enc.writeNode(n)
			}
		} else {
			enc.writeByte(treeBucketForm)
			enc.writeUvarint(uint64(len(o.buckets)))
			for _, b := range o.buckets {
				enc.writeByte(byte(b.Index))
				enc.writeHash(b.ID)
			}
		}
	case *Feature:
		enc.writeUvarint(uint64(len(o.values)))
		for _, v := range o.values {
			enc.writeValue(v)
		}
	case *FeatureType:
		enc.writeString(o.name)
		enc.writeUvarint(uint64(len(o.attrs)))
		for _, a := range o.attrs {
			enc.writeString(a.Name)
			enc.writeByte(byte(a.Kind))
			enc.writeBool(a.Nullable)
		}
	case *Tag:
		enc.writeString(o.name)
		enc.writeHash(o.commitID)
		enc.writeString(o.message)
		enc.writePerson(o.tagger)
	default:
		d.Panic("cannot encode %T", obj)
	}
	return enc.buf.Bytes()
}

// Decode decodes the object with id |id| from |data|. The decoded object must
// hash back to |id|, otherwise ErrCorruptObject is returned.
func Decode(id hash.Hash, data []byte) (RevObject, error) {
	obj, err := decodeObject(data)
	if err != nil {
		return nil, ErrCorruptObject.New(id, err.Error())
	}
	if obj.ID() != id {
		return nil, ErrCorruptObject.New(id, fmt.Sprintf("content hashes to %s", obj.ID()))
	}
	return obj, nil
}

func decodeObject(data []byte) (RevObject, error) {
	dec := &decoder{data: data}
	typ := ObjectType(dec.readByte())
	var obj RevObject
	switch typ {
	case TypeCommit:
		treeID := dec.readHash()
		parents := make([]hash.Hash, dec.readCount(hash.ByteLen))
		for i := range parents {
			parents[i] = dec.readHash()
		}
		author := dec.readPerson()
		committer := dec.readPerson()
		msg := dec.readString()
		if dec.err == nil {
			obj = NewCommit(treeID, parents, author, committer, msg)
		}
	case TypeTree:
		obj = dec.readTree()
	case TypeFeature:
		values := make([]interface{}, dec.readCount(1))
		for i := range values {
			values[i] = dec.readValue()
		}
		if dec.err == nil {
			f, err := NewFeature(values...)
			if err != nil {
				return nil, err
			}
			obj = f
		}
	case TypeFeatureType:
		name := dec.readString()
		attrs := make([]Attribute, dec.readCount(3))
		for i := range attrs {
			attrs[i].Name = dec.readString()
			attrs[i].Kind = ValueKind(dec.readByte())
			attrs[i].Nullable = dec.readBool()
			if attrs[i].Kind > BytesKind {
				dec.fail("invalid attribute kind %d", attrs[i].Kind)
			}
		}
		if dec.err == nil {
			obj = NewFeatureType(name, attrs)
		}
	case TypeTag:
		name := dec.readString()
		commitID := dec.readHash()
		msg := dec.readString()
		tagger := dec.readPerson()
		if dec.err == nil {
			obj = NewTag(name, commitID, msg, tagger)
		}
	default:
		dec.fail("unknown object type %d", uint8(typ))
	}
	if dec.err != nil {
		return nil, dec.err
	}
	if dec.pos != len(dec.data) {
		return nil, fmt.Errorf("%d trailing bytes", len(dec.data)-dec.pos)
	}
	return obj, nil
}

type encoder struct {
	buf     bytes.Buffer
	scratch [binary.MaxVarintLen64]byte
}

func (enc *encoder) writeByte(b byte) {
	enc.buf.WriteByte(b)
}

func (enc *encoder) writeBool(b bool) {
	if b {
		enc.writeByte(1)
	} else {
		enc.writeByte(0)
	}
}

func (enc *encoder) writeUvarint(v uint64) {
	n := binary.PutUvarint(enc.scratch[:], v)
	enc.buf.Write(enc.scratch[:n])
}

func (enc *encoder) writeVarint(v int64) {
	n := binary.PutVarint(enc.scratch[:], v)
	enc.buf.Write(enc.scratch[:n])
}

func (enc *encoder) writeBytes(b []byte) {
	enc.writeUvarint(uint64(len(b)))
	enc.buf.Write(b)
}

func (enc *encoder) writeString(s string) {
	enc.writeUvarint(uint64(len(s)))
	enc.buf.WriteString(s)
}

func (enc *encoder) writeHash(h hash.Hash) {
	enc.buf.Write(h[:])
}

func (enc *encoder) writePerson(p Person) {
	enc.writeString(p.Name)
	enc.writeString(p.Email)
	enc.writeVarint(p.Timestamp)
	enc.writeVarint(int64(p.TZOffset))
}

func (enc *encoder) writeNode(n Node) {
	enc.writeString(n.Name)
	enc.writeByte(byte(n.Type))
	enc.writeHash(n.ID)
	if n.MetadataID.IsEmpty() {
		enc.writeByte(0)
	} else {
		enc.writeByte(1)
		enc.writeHash(n.MetadataID)
	}
}

func (enc *encoder) writeValue(v interface{}) {
	kind := KindOf(v)
	enc.writeByte(byte(kind))
	switch kind {
	case BoolKind:
		enc.writeBool(v.(bool))
	case IntKind:
		enc.writeVarint(v.(int64))
	case FloatKind:
		binary.BigEndian.PutUint64(enc.scratch[:8], floatBits(v.(float64)))
		enc.buf.Write(enc.scratch[:8])
	case StringKind:
		enc.writeString(v.(string))
	case BytesKind:
		enc.writeBytes(v.([]byte))
	}
}

// decoder reads the fields written by encoder. The first failure is recorded
// in err and every later read returns a zero value.
type decoder struct {
	data []byte
	pos  int
	err  error
}

func (dec *decoder) fail(format string, args ...interface{}) {
	if dec.err == nil {
		dec.err = fmt.Errorf(format, args...)
	}
}

func (dec *decoder) take(n int) []byte {
	if dec.err != nil {
		return nil
	}
	if n < 0 || len(dec.data)-dec.pos < n {
		dec.fail("unexpected end of data at offset %d", dec.pos)
		return nil
	}
	b := dec.data[dec.pos : dec.pos+n]
	dec.pos += n
	return b
}

func (dec *decoder) readByte() byte {
	b := dec.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (dec *decoder) readBool() bool {
	switch b := dec.readByte(); b {
	case 0:
		return false
	case 1:
		return true
	default:
		dec.fail("invalid bool %d", b)
		return false
	}
}

func (dec *decoder) readUvarint() uint64 {
	if dec.err != nil {
		return 0
	}
	v, n := binary.Uvarint(dec.data[dec.pos:])
	if n <= 0 {
		dec.fail("invalid uvarint at offset %d", dec.pos)
		return 0
	}
	dec.pos += n
	return v
}

func (dec *decoder) readVarint() int64 {
	if dec.err != nil {
		return 0
	}
	v, n := binary.Varint(dec.data[dec.pos:])
	if n <= 0 {
		dec.fail("invalid varint at offset %d", dec.pos)
		return 0
	}
	dec.pos += n
	return v
}

// readCount reads a collection length, rejecting lengths that could not fit
// in the remaining data given |minSize| bytes per element.
func (dec *decoder) readCount(minSize int) int {
	n := dec.readUvarint()
	if remaining := uint64(len(dec.data) - dec.pos); n > remaining/uint64(minSize) {
		dec.fail("count %d exceeds remaining %d bytes", n, remaining)
		return 0
	}
	return int(n)
}

func (dec *decoder) readBytes() []byte {
	n := dec.readCount(1)
	return bytes.Clone(dec.take(n))
}

func (dec *decoder) readString() string {
	n := dec.readCount(1)
	return string(dec.take(n))
}

func (dec *decoder) readHash() hash.Hash {
	b := dec.take(hash.ByteLen)
	if b == nil {
		return hash.Hash{}
	}
	return hash.New(b)
}

func (dec *decoder) readPerson() Person {
	return Person{
		Name:      dec.readString(),
		Email:     dec.readString(),
		Timestamp: dec.readVarint(),
		TZOffset:  int32(dec.readVarint()),
	}
}

func (dec *decoder) readNode() Node {
	n := Node{
		Name: dec.readString(),
		Type: NodeType(dec.readByte()),
		ID:   dec.readHash(),
	}
	if n.Type != FeatureNode && n.Type != TreeNode {
		dec.fail("invalid node type %d", n.Type)
	}
	if dec.readBool() {
		n.MetadataID = dec.readHash()
	}
	return n
}

func (dec *decoder) readValue() interface{} {
	switch kind := ValueKind(dec.readByte()); kind {
	case NullKind:
		return nil
	case BoolKind:
		return dec.readBool()
	case IntKind:
		return dec.readVarint()
	case FloatKind:
		b := dec.take(8)
		if b == nil {
			return nil
		}
		return math.Float64frombits(binary.BigEndian.Uint64(b))
	case StringKind:
		return dec.readString()
	case BytesKind:
		return dec.readBytes()
	default:
		dec.fail("invalid value kind %d", kind)
		return nil
	}
}

func (dec *decoder) readTree() *Tree {
	entryCount := dec.readUvarint()
	featureCount := dec.readUvarint()
	subtreeCount := dec.readUvarint()
	switch form := dec.readByte(); form {
	case treeLeafForm:
		nodes := make([]Node, dec.readCount(hash.ByteLen+3))
		for i := range nodes {
			nodes[i] = dec.readNode()
			if i > 0 && dec.err == nil && nodes[i-1].Name >= nodes[i].Name {
				dec.fail("tree nodes out of order at %q", nodes[i].Name)
			}
		}
		if dec.err == nil && uint64(len(nodes)) != entryCount {
			dec.fail("leaf tree lists %d nodes, records %d", len(nodes), entryCount)
		}
		if dec.err != nil {
			return nil
		}
		return NewLeafTree(nodes, featureCount, subtreeCount)
	case treeBucketForm:
		buckets := make([]Bucket, dec.readCount(hash.ByteLen+1))
		for i := range buckets {
			buckets[i].Index = int(dec.readByte())
			buckets[i].ID = dec.readHash()
			if buckets[i].Index >= MaxBuckets {
				dec.fail("bucket index %d out of range", buckets[i].Index)
			} else if i > 0 && buckets[i-1].Index >= buckets[i].Index {
				dec.fail("buckets out of order at %d", buckets[i].Index)
			}
		}
		if dec.err == nil && len(buckets) == 0 {
			dec.fail("bucketed tree has no buckets")
		}
		if dec.err != nil {
			return nil
		}
		return NewBucketTree(buckets, entryCount, featureCount, subtreeCount)
	default:
		dec.fail("invalid tree form %d", form)
		return nil
	}
}
