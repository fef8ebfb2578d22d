package tds

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// ===========================================================================
// PRIMITIVE READER
// ===========================================================================
//
// The Reader is a cursor over bytes buffered from the network. Every read
// checks that the whole field (including its length prefix) is buffered
// before consuming anything. On underflow it returns ErrNeedMoreData and the
// cursor does not move, so the caller can resume once Feed adds more bytes.
//
// All multi-byte integers are little-endian.
// Character fields carry a count of UTF-16 code units, not bytes.
//
// ===========================================================================

// ByteOrder is the byte order of every integer on the wire
var ByteOrder = binary.LittleEndian

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Reader reads TDS primitives from buffered bytes
type Reader struct {
	buf      []byte
	off      int   // read position within buf
	consumed int64 // bytes dropped from the front of buf by compaction
}

// NewReader creates a Reader over a copy of b
func NewReader(b []byte) *Reader {
	r := &Reader{}
	r.Feed(b)
	return r
}

// Feed appends a fragment to the buffer. Consumed bytes are dropped first.
func (r *Reader) Feed(b []byte) {
	if r.off > 0 {
		n := copy(r.buf, r.buf[r.off:])
		r.buf = r.buf[:n]
		r.consumed += int64(r.off)
		r.off = 0
	}
	r.buf = append(r.buf, b...)
}

// Buffered returns the number of unread bytes
func (r *Reader) Buffered() int {
	return len(r.buf) - r.off
}

// Offset returns the absolute stream position of the next unread byte
func (r *Reader) Offset() int64 {
	return r.consumed + int64(r.off)
}

// mark returns the current read position for a later rewind
func (r *Reader) mark() int {
	return r.off
}

// rewind moves the read position back to a mark taken since the last Feed
func (r *Reader) rewind(m int) {
	r.off = m
}

// ensure reports ErrNeedMoreData unless n bytes are available at offset skip
func (r *Reader) ensure(skip, n int) error {
	if r.Buffered() < skip+n {
		return ErrNeedMoreData
	}
	return nil
}

// ===========================================================================
// FIXED-WIDTH INTEGERS
// ===========================================================================

// ReadUint8 reads one byte
func (r *Reader) ReadUint8() (uint8, error) {
	if err := r.ensure(0, 1); err != nil {
		return 0, err
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

// ReadUint16LE reads a 2-byte little-endian integer
func (r *Reader) ReadUint16LE() (uint16, error) {
	if err := r.ensure(0, 2); err != nil {
		return 0, err
	}
	v := ByteOrder.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

// ReadUint32LE reads a 4-byte little-endian integer
func (r *Reader) ReadUint32LE() (uint32, error) {
	if err := r.ensure(0, 4); err != nil {
		return 0, err
	}
	v := ByteOrder.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

// ReadUint64LE reads an 8-byte little-endian integer
func (r *Reader) ReadUint64LE() (uint64, error) {
	if err := r.ensure(0, 8); err != nil {
		return 0, err
	}
	v := ByteOrder.Uint64(r.buf[r.off:])
	r.off += 8
	return v, nil
}

// ReadBytes reads exactly n bytes. The result is a copy.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.ensure(0, n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, r.buf[r.off:r.off+n])
	r.off += n
	return b, nil
}

// ===========================================================================
// LENGTH-PREFIXED FIELDS
// ===========================================================================

// ReadBVarChar reads a string prefixed by an 8-bit character count
func (r *Reader) ReadBVarChar() (string, error) {
	if err := r.ensure(0, 1); err != nil {
		return "", err
	}
	chars := int(r.buf[r.off])
	return r.readChars(1, chars)
}

// ReadUsVarChar reads a string prefixed by a 16-bit character count
func (r *Reader) ReadUsVarChar() (string, error) {
	if err := r.ensure(0, 2); err != nil {
		return "", err
	}
	chars := int(ByteOrder.Uint16(r.buf[r.off:]))
	return r.readChars(2, chars)
}

// ReadUsVarByte reads a byte blob prefixed by a 16-bit byte count
func (r *Reader) ReadUsVarByte() ([]byte, error) {
	if err := r.ensure(0, 2); err != nil {
		return nil, err
	}
	n := int(ByteOrder.Uint16(r.buf[r.off:]))
	if err := r.ensure(2, n); err != nil {
		return nil, err
	}
	r.off += 2
	return r.ReadBytes(n)
}

// readChars decodes chars UTF-16 code units that follow a prefix of
// prefixLen bytes. The prefix is only consumed together with the body.
func (r *Reader) readChars(prefixLen, chars int) (string, error) {
	n := chars * 2
	if err := r.ensure(prefixLen, n); err != nil {
		return "", err
	}
	start := r.off + prefixLen
	s, err := utf16le.NewDecoder().Bytes(r.buf[start : start+n])
	if err != nil {
		return "", fmt.Errorf("tds: decode utf-16 string at offset %d: %w", r.Offset(), err)
	}
	r.off = start + n
	return string(s), nil
}
