package ecs

import (
	"encoding/binary"
	"fmt"
	"io"
)

// BinaryWriter implements ArchiveWriter over an io.Writer using the
// reference's ephemeral binary layout (spec.md §6): no magic number, no
// version marker on the wire, little-endian fixed-width lengths and
// values, framing calls are no-ops beyond list/map length prefixes. It is
// intended for intra-process or same-build persistence only.
type BinaryWriter struct {
	w               io.Writer
	version         uint32
	allowBinary     bool
	allowOutOfOrder bool
	err             error
}

// NewBinaryWriter constructs a BinaryWriter. allowBinary enables the
// page-blit fast path for trivial component types; allowOutOfOrder is
// carried for symmetry with BinaryReader but has no effect on writing.
func NewBinaryWriter(w io.Writer, version uint32, allowBinary, allowOutOfOrder bool) *BinaryWriter {
	return &BinaryWriter{w: w, version: version, allowBinary: allowBinary, allowOutOfOrder: allowOutOfOrder}
}

func (bw *BinaryWriter) ObjectBegin()          {}
func (bw *BinaryWriter) ObjectEnd()            {}
func (bw *BinaryWriter) MapBegin(n int)        { bw.ListBegin(n) }
func (bw *BinaryWriter) MapEnd()               {}
func (bw *BinaryWriter) Version() uint32       { return bw.version }
func (bw *BinaryWriter) AllowBinary() bool     { return bw.allowBinary }
func (bw *BinaryWriter) AllowOutOfOrder() bool { return bw.allowOutOfOrder }

func (bw *BinaryWriter) ListBegin(length int) {
	if bw.err != nil {
		return
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(length))
	bw.err = bw.WriteBytes(buf[:])
}

func (bw *BinaryWriter) ListEnd() {}

func (bw *BinaryWriter) WriteBytes(p []byte) error {
	if bw.err != nil {
		return bw.err
	}
	_, err := bw.w.Write(p)
	if err != nil {
		bw.err = fmt.Errorf("sparsecs: binary archive write: %w", err)
	}
	return bw.err
}

// Err returns the first error encountered by any write call.
func (bw *BinaryWriter) Err() error { return bw.err }

// BinaryReader implements ArchiveReader as the mirror of BinaryWriter.
type BinaryReader struct {
	r               io.Reader
	version         uint32
	allowBinary     bool
	allowOutOfOrder bool
	err             error
}

func NewBinaryReader(r io.Reader, version uint32, allowBinary, allowOutOfOrder bool) *BinaryReader {
	return &BinaryReader{r: r, version: version, allowBinary: allowBinary, allowOutOfOrder: allowOutOfOrder}
}

func (br *BinaryReader) ObjectBegin()          {}
func (br *BinaryReader) ObjectEnd()            {}
func (br *BinaryReader) MapEnd()               {}
func (br *BinaryReader) Version() uint32       { return br.version }
func (br *BinaryReader) AllowBinary() bool     { return br.allowBinary }
func (br *BinaryReader) AllowOutOfOrder() bool { return br.allowOutOfOrder }

func (br *BinaryReader) MapBegin() int { return br.ListBegin() }

func (br *BinaryReader) ListBegin() int {
	if br.err != nil {
		return 0
	}
	var buf [8]byte
	if err := br.ReadBytes(buf[:]); err != nil {
		return 0
	}
	return int(binary.LittleEndian.Uint64(buf[:]))
}

func (br *BinaryReader) ListEnd() {}

func (br *BinaryReader) ReadBytes(p []byte) error {
	if br.err != nil {
		return br.err
	}
	_, err := io.ReadFull(br.r, p)
	if err != nil {
		br.err = fmt.Errorf("sparsecs: binary archive read: %w", err)
	}
	return br.err
}

// Err returns the first error encountered by any read call.
func (br *BinaryReader) Err() error { return br.err }
