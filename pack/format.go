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

package pack

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/rmarianski/GeoGit/diff"
	"github.com/rmarianski/GeoGit/hash"
	"github.com/rmarianski/GeoGit/tree"
	"github.com/rmarianski/GeoGit/types"
)

/*
  Pack Serialization:
    Header
    Chunk 0
     ..
    Chunk N
    End

  Header:
    Magic    // "GGPK"
    Version  // 1 byte
    Flags    // 1 byte, bit 0 set when the chunks are zstd compressed

  Chunk:
    Kind     // 1 byte
    ...      // kind specific, see chunkKind

  Object:
    ID       // 20 bytes
    Type     // 1 byte
    Len      // uvarint
    Data     // canonical encoding, hashes to ID

  DiffEntry:
    Old      // side
    New      // side

  Side:
    Present  // 1 byte, the fields below are omitted when 0
    Path     // uvarint length, bytes
    NodeType // 1 byte
    ID       // 20 bytes
    Metadata // 20 bytes
*/

const (
	magic         = "GGPK"
	formatVersion = 1

	flagZstd byte = 1 << 0

	// maxObjectSize bounds the length prefix of an object so a corrupt
	// stream cannot force a huge allocation.
	maxObjectSize = 64 << 20
	maxPathLen    = 64 << 10
)

type chunkKind byte

const (
	// chunkDiffEntry carries a diff entry without an object, as for a
	// removal.
	chunkDiffEntry chunkKind = 0
	// chunkObjectAndDiffEntry carries the new object of a diff entry
	// followed by the entry.
	chunkObjectAndDiffEntry chunkKind = 1
	// chunkMetadataObjectAndDiffEntry carries the metadata object of a diff
	// entry, then its new object, then the entry.
	chunkMetadataObjectAndDiffEntry chunkKind = 2
	// chunkEnd terminates a pack and carries whether the changes were
	// filtered.
	chunkEnd chunkKind = 3
	// chunkObject carries a single object of an object pack.
	chunkObject chunkKind = 4
)

// Compression selects how the chunks of a pack are compressed.
type Compression uint8

const (
	NoCompression Compression = iota
	ZstdCompression
)

func (c Compression) String() string {
	switch c {
	case NoCompression:
		return "none"
	case ZstdCompression:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression returns the Compression named |s|.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return NoCompression, nil
	case "zstd":
		return ZstdCompression, nil
	default:
		return 0, fmt.Errorf("unknown pack compression %q", s)
	}
}

// chunkWriter writes the header and chunks of a pack to an underlying
// writer. The first error is kept and every later write is skipped.
type chunkWriter struct {
	out  io.Writer
	buf  *bufio.Writer
	zw   *zstd.Encoder
	tmp  [binary.MaxVarintLen64]byte
	err  error
	size int64
}

func newChunkWriter(out io.Writer, c Compression) (*chunkWriter, error) {
	flags := byte(0)
	if c == ZstdCompression {
		flags |= flagZstd
	}
	header := append([]byte(magic), formatVersion, flags)
	if _, err := out.Write(header); err != nil {
		return nil, err
	}
	cw := &chunkWriter{out: out, size: int64(len(header))}
	body := io.Writer(countingWriter{cw})
	if c == ZstdCompression {
		zw, err := zstd.NewWriter(body)
		if err != nil {
			return nil, err
		}
		cw.zw = zw
		body = zw
	}
	cw.buf = bufio.NewWriterSize(body, 64<<10)
	return cw, nil
}

type countingWriter struct {
	cw *chunkWriter
}

func (w countingWriter) Write(p []byte) (int, error) {
	n, err := w.cw.out.Write(p)
	w.cw.size += int64(n)
	return n, err
}

func (cw *chunkWriter) write(p []byte) {
	if cw.err == nil {
		_, cw.err = cw.buf.Write(p)
	}
}

func (cw *chunkWriter) writeByte(b byte) {
	if cw.err == nil {
		cw.err = cw.buf.WriteByte(b)
	}
}

func (cw *chunkWriter) writeUvarint(v uint64) {
	n := binary.PutUvarint(cw.tmp[:], v)
	cw.write(cw.tmp[:n])
}

func (cw *chunkWriter) writeKind(k chunkKind) {
	cw.writeByte(byte(k))
}

func (cw *chunkWriter) writeObject(obj types.RevObject) {
	id := obj.ID()
	data := types.Encode(obj)
	cw.write(id[:])
	cw.writeByte(byte(obj.Type()))
	cw.writeUvarint(uint64(len(data)))
	cw.write(data)
}

func (cw *chunkWriter) writeSide(ref *diff.NodeRef) {
	if ref == nil {
		cw.writeByte(0)
		return
	}
	cw.writeByte(1)
	path := ref.Path()
	cw.writeUvarint(uint64(len(path)))
	cw.write([]byte(path))
	cw.writeByte(byte(ref.Type))
	cw.write(ref.ID[:])
	cw.write(ref.MetadataID[:])
}

func (cw *chunkWriter) writeEntry(e diff.DiffEntry) {
	cw.writeSide(e.Old)
	cw.writeSide(e.New)
}

func (cw *chunkWriter) writeEnd(filtered bool) {
	cw.writeKind(chunkEnd)
	if filtered {
		cw.writeByte(1)
	} else {
		cw.writeByte(0)
	}
}

// close flushes every buffered chunk. It does not close the underlying
// writer.
func (cw *chunkWriter) close() error {
	if cw.err == nil {
		cw.err = cw.buf.Flush()
	}
	if cw.zw != nil {
		if err := cw.zw.Close(); cw.err == nil {
			cw.err = err
		}
	}
	return cw.err
}

// chunkReader reads the chunks written by a chunkWriter. Running out of
// input anywhere before the end chunk is reported as ErrCorruptPack.
type chunkReader struct {
	r  *bufio.Reader
	zr *zstd.Decoder
}

func newChunkReader(in io.Reader) (*chunkReader, error) {
	var header [len(magic) + 2]byte
	if _, err := io.ReadFull(in, header[:]); err != nil {
		return nil, corrupt(err, "reading header")
	}
	if string(header[:len(magic)]) != magic {
		return nil, ErrCorruptPack.New("bad magic")
	}
	if v := header[len(magic)]; v != formatVersion {
		return nil, ErrCorruptPack.New(fmt.Sprintf("unsupported version %d", v))
	}
	flags := header[len(magic)+1]
	if flags&^flagZstd != 0 {
		return nil, ErrCorruptPack.New(fmt.Sprintf("unknown flags %#x", flags))
	}
	cr := &chunkReader{}
	body := in
	if flags&flagZstd != 0 {
		zr, err := zstd.NewReader(in)
		if err != nil {
			return nil, err
		}
		cr.zr = zr
		body = zr
	}
	cr.r = bufio.NewReaderSize(body, 64<<10)
	return cr, nil
}

// finish checks the stream ends cleanly after the end chunk. A pack is the
// whole stream, so anything left over is corruption.
func (cr *chunkReader) finish() error {
	n, err := io.Copy(io.Discard, cr.r)
	if err != nil {
		return corrupt(err, "reading trailer")
	}
	if n != 0 {
		return ErrCorruptPack.New(fmt.Sprintf("%d bytes after end marker", n))
	}
	return nil
}

func (cr *chunkReader) close() {
	if cr.zr != nil {
		cr.zr.Close()
	}
}

func corrupt(err error, what string) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrCorruptPack.New(what + ": unexpected end of stream")
	}
	if ErrCorruptPack.Is(err) {
		return err
	}
	return ErrCorruptPack.New(fmt.Sprintf("%s: %v", what, err))
}

func (cr *chunkReader) readByte(what string) (byte, error) {
	b, err := cr.r.ReadByte()
	if err != nil {
		return 0, corrupt(err, what)
	}
	return b, nil
}

func (cr *chunkReader) readFull(p []byte, what string) error {
	if _, err := io.ReadFull(cr.r, p); err != nil {
		return corrupt(err, what)
	}
	return nil
}

func (cr *chunkReader) readHash(what string) (hash.Hash, error) {
	var h hash.Hash
	err := cr.readFull(h[:], what)
	return h, err
}

func (cr *chunkReader) readLen(limit uint64, what string) (int, error) {
	n, err := binary.ReadUvarint(cr.r)
	if err != nil {
		return 0, corrupt(err, what)
	}
	if n > limit {
		return 0, ErrCorruptPack.New(fmt.Sprintf("%s: length %d exceeds %d", what, n, limit))
	}
	return int(n), nil
}

func (cr *chunkReader) readKind() (chunkKind, error) {
	b, err := cr.readByte("reading chunk kind")
	if err != nil {
		return 0, err
	}
	k := chunkKind(b)
	if k > chunkObject {
		return 0, ErrCorruptPack.New(fmt.Sprintf("unknown chunk kind %d", b))
	}
	return k, nil
}

func (cr *chunkReader) readObject() (types.RevObject, error) {
	id, err := cr.readHash("reading object id")
	if err != nil {
		return nil, err
	}
	typ, err := cr.readByte("reading object type")
	if err != nil {
		return nil, err
	}
	if !types.ObjectType(typ).IsValid() {
		return nil, ErrCorruptPack.New(fmt.Sprintf("object %s has unknown type %d", id, typ))
	}
	n, err := cr.readLen(maxObjectSize, "reading object length")
	if err != nil {
		return nil, err
	}
	data := make([]byte, n)
	if err := cr.readFull(data, "reading object "+id.String()); err != nil {
		return nil, err
	}
	if n == 0 || data[0] != typ {
		return nil, ErrCorruptPack.New(fmt.Sprintf("object %s does not match its type %s", id, types.ObjectType(typ)))
	}
	obj, err := types.Decode(id, data)
	if err != nil {
		return nil, ErrCorruptPack.New(err.Error())
	}
	return obj, nil
}

func (cr *chunkReader) readSide() (*diff.NodeRef, error) {
	present, err := cr.readByte("reading diff entry")
	if err != nil {
		return nil, err
	}
	switch present {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, ErrCorruptPack.New(fmt.Sprintf("bad diff entry side marker %d", present))
	}
	n, err := cr.readLen(maxPathLen, "reading diff entry path")
	if err != nil {
		return nil, err
	}
	path := make([]byte, n)
	if err := cr.readFull(path, "reading diff entry path"); err != nil {
		return nil, err
	}
	typ, err := cr.readByte("reading diff entry node type")
	if err != nil {
		return nil, err
	}
	if nt := types.NodeType(typ); nt != types.FeatureNode && nt != types.TreeNode {
		return nil, ErrCorruptPack.New(fmt.Sprintf("bad node type %d for %s", typ, path))
	}
	id, err := cr.readHash("reading diff entry id")
	if err != nil {
		return nil, err
	}
	md, err := cr.readHash("reading diff entry metadata id")
	if err != nil {
		return nil, err
	}
	p := string(path)
	return &diff.NodeRef{
		Node: types.Node{
			Name:       tree.NodeName(p),
			ID:         id,
			Type:       types.NodeType(typ),
			MetadataID: md,
		},
		Parent: tree.ParentPath(p),
	}, nil
}

func (cr *chunkReader) readEntry() (diff.DiffEntry, error) {
	old, err := cr.readSide()
	if err != nil {
		return diff.DiffEntry{}, err
	}
	nu, err := cr.readSide()
	if err != nil {
		return diff.DiffEntry{}, err
	}
	if old == nil && nu == nil {
		return diff.DiffEntry{}, ErrCorruptPack.New("diff entry has neither side")
	}
	return diff.DiffEntry{Old: old, New: nu}, nil
}
