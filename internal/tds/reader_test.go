package tds

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestReaderIntegers(t *testing.T) {
	r := NewReader([]byte{
		0x01,
		0x02, 0x01,
		0x04, 0x03, 0x02, 0x01,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
	})

	u8, err := r.ReadUint8()
	assert.NilError(t, err)
	assert.Equal(t, u8, uint8(0x01))

	u16, err := r.ReadUint16LE()
	assert.NilError(t, err)
	assert.Equal(t, u16, uint16(0x0102))

	u32, err := r.ReadUint32LE()
	assert.NilError(t, err)
	assert.Equal(t, u32, uint32(0x01020304))

	u64, err := r.ReadUint64LE()
	assert.NilError(t, err)
	assert.Equal(t, u64, uint64(0x0102030405060708))

	assert.Equal(t, r.Buffered(), 0)
	_, err = r.ReadUint8()
	assert.ErrorIs(t, err, ErrNeedMoreData)
}

// TestReaderUnderflowConsumesNothing verifies that a short read leaves the
// cursor where it was, including reads split inside the length prefix
func TestReaderUnderflowConsumesNothing(t *testing.T) {
	full := []byte{0x03, 'a', 0, 'b', 0, 'c', 0} // B-var-char "abc"

	for n := 0; n < len(full); n++ {
		r := NewReader(full[:n])
		_, err := r.ReadBVarChar()
		assert.ErrorIs(t, err, ErrNeedMoreData)
		assert.Equal(t, r.Buffered(), n)
		assert.Equal(t, r.Offset(), int64(0))

		r.Feed(full[n:])
		s, err := r.ReadBVarChar()
		assert.NilError(t, err)
		assert.Equal(t, s, "abc")
	}

	r := NewReader([]byte{0x01, 0x02, 0x03})
	_, err := r.ReadUint32LE()
	assert.ErrorIs(t, err, ErrNeedMoreData)
	_, err = r.ReadUint64LE()
	assert.ErrorIs(t, err, ErrNeedMoreData)
	assert.Equal(t, r.Buffered(), 3)
}

func TestReaderStrings(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		read func(*Reader) (string, error)
		want string
	}{
		{
			name: "b-var-char",
			in:   []byte{0x02, 'I', 0, 'D', 0},
			read: (*Reader).ReadBVarChar,
			want: "ID",
		},
		{
			name: "us-var-char",
			in:   []byte{0x03, 0x00, 'd', 0, 'b', 0, 'o', 0},
			read: (*Reader).ReadUsVarChar,
			want: "dbo",
		},
		{
			name: "non-ascii",
			in:   []byte{0x03, 0x00, 'Z', 0, 'o', 0, 0xEB, 0x00},
			read: (*Reader).ReadUsVarChar,
			want: "Zoë",
		},
		{
			name: "surrogate pair",
			in:   []byte{0x02, 0x3D, 0xD8, 0x00, 0xDE},
			read: (*Reader).ReadBVarChar,
			want: "😀",
		},
		{
			name: "empty",
			in:   []byte{0x00},
			read: (*Reader).ReadBVarChar,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.in)
			got, err := tt.read(r)
			assert.NilError(t, err)
			assert.Equal(t, got, tt.want)
			assert.Equal(t, r.Buffered(), 0)
		})
	}
}

func TestReaderUsVarByte(t *testing.T) {
	r := NewReader([]byte{0x03, 0x00, 0xAA, 0xBB})
	_, err := r.ReadUsVarByte()
	assert.ErrorIs(t, err, ErrNeedMoreData)
	assert.Equal(t, r.Buffered(), 4)

	r.Feed([]byte{0xCC, 0xDD})
	b, err := r.ReadUsVarByte()
	assert.NilError(t, err)
	assert.DeepEqual(t, b, []byte{0xAA, 0xBB, 0xCC})
	assert.Equal(t, r.Buffered(), 1)
}

func TestReaderFeedCompacts(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03})
	_, err := r.ReadUint16LE()
	assert.NilError(t, err)

	m := r.mark()
	_, err = r.ReadUint8()
	assert.NilError(t, err)
	r.rewind(m)
	assert.Equal(t, r.Offset(), int64(2))

	r.Feed([]byte{0x04})
	assert.Equal(t, r.Offset(), int64(2))
	assert.Equal(t, r.Buffered(), 2)
	assert.Equal(t, len(r.buf), 2)

	v, err := r.ReadUint16LE()
	assert.NilError(t, err)
	assert.Equal(t, v, uint16(0x0403))
	assert.Equal(t, r.Offset(), int64(4))
}

func TestReaderFeedCopiesInput(t *testing.T) {
	in := []byte{0x01}
	r := NewReader(in)
	in[0] = 0xFF
	v, err := r.ReadUint8()
	assert.NilError(t, err)
	assert.Equal(t, v, uint8(0x01))
}
