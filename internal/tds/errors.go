package tds

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrNeedMoreData is returned by the Reader when the buffered bytes do not
// hold a complete field. Nothing has been consumed when it is returned; feed
// more bytes and call the decoder again.
var ErrNeedMoreData = errors.New("tds: need more data")

// ErrMalformedAlwaysEncryptedTable is returned when Always Encrypted is enabled
// but the CekTable does not describe a usable column encryption key.
// The error is fatal: the token stream cannot be resynchronized.
var ErrMalformedAlwaysEncryptedTable = errors.New(
	"always encrypted is enabled, but the cek table describes no usable column encryption key")

// UnknownDataTypeError is raised by the base metadata decoder for a type id
// that is not in the data type table.
type UnknownDataTypeError struct {
	ID byte
}

func (e *UnknownDataTypeError) Error() string {
	return fmt.Sprintf("tds: unknown data type 0x%02X", e.ID)
}

// InvalidIntNWidthError reports an INTN data length other than 1, 2, 4 or 8.
type InvalidIntNWidthError struct {
	Width uint32
}

func (e *InvalidIntNWidthError) Error() string {
	return fmt.Sprintf("tds: invalid INTN width %d", e.Width)
}

// UnsupportedTokenError is returned by the StreamParser for a token id it
// cannot decode.
type UnsupportedTokenError struct {
	Type   TokenType
	Offset int64
}

func (e *UnsupportedTokenError) Error() string {
	return fmt.Sprintf("tds: unsupported token 0x%02X at stream offset %d", byte(e.Type), e.Offset)
}
