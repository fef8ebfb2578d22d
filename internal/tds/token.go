package tds

import "strings"

// TokenType is the leading byte of a token in the tabular result stream
type TokenType byte

const (
	TokenColMetadata TokenType = 0x81
	TokenDone        TokenType = 0xFD
	TokenDoneProc    TokenType = 0xFE
	TokenDoneInProc  TokenType = 0xFF
)

func (t TokenType) String() string {
	switch t {
	case TokenColMetadata:
		return "COLMETADATA"
	case TokenDone:
		return "DONE"
	case TokenDoneProc:
		return "DONEPROC"
	case TokenDoneInProc:
		return "DONEINPROC"
	default:
		return "UNKNOWN"
	}
}

// Token is a fully decoded token handed to the stream consumer
type Token interface {
	TokenType() TokenType
}

// ===========================================================================
// COLMETADATA
// ===========================================================================

// UndefinedAlgoName is stored as the algorithm name of crypto metadata whose
// algorithm id is non-zero. Consumers match on this literal.
const UndefinedAlgoName = "undefined"

// CryptoMetadata describes how an encrypted column was encrypted
type CryptoMetadata struct {
	Ordinal            uint16 // index into the CekTable
	UserType           uint32
	BaseTypeInfo       TypeInfo // the column's type before encryption
	EncryptionAlgo     uint8    // 0 = custom algorithm named by AlgoName
	AlgoName           string
	EncryptionAlgoType uint8
	NormVersion        uint8
}

// EncryptionKeyValue is one encrypted copy of a column encryption key, as
// stored for one key store
type EncryptionKeyValue struct {
	EncryptedKey   []byte
	KeyStoreName   string
	KeyPath        string
	AsymmetricAlgo string
}

// EncryptionKeyInfo is the metadata of one column encryption key
type EncryptionKeyInfo struct {
	DatabaseID   uint32
	CekID        uint32
	CekVersion   uint32
	CekMDVersion uint64
	Count        uint8
	Values       []EncryptionKeyValue
}

// CekTableMetadata is the session-wide table of column encryption keys
type CekTableMetadata struct {
	EkValueCount uint16
	KeyInfo      EncryptionKeyInfo
}

// TableName is the table a column belongs to. Before TDS 7.2 the server
// sends a single name; from 7.2 on it sends an ordered list of parts, which
// may be empty.
type TableName struct {
	Parts     []string
	Multipart bool
}

func (t *TableName) String() string {
	if t == nil {
		return ""
	}
	return strings.Join(t.Parts, ".")
}

// ColumnMetadata is one decoded column
type ColumnMetadata struct {
	Metadata
	ColName        string
	TableName      *TableName      // nil when the type carries no table name
	CryptoMetadata *CryptoMetadata // nil unless the column is encrypted and encryption is enabled
}

// ColMetadataToken describes the shape of a result set
type ColMetadataToken struct {
	CekTable *CekTableMetadata
	Columns  []ColumnMetadata
}

func (t *ColMetadataToken) TokenType() TokenType { return TokenColMetadata }

// ===========================================================================
// DONE
// ===========================================================================

// DoneToken completes a statement, procedure or statement within a procedure
type DoneToken struct {
	Type     TokenType
	Status   uint16
	CurCmd   uint16
	RowCount uint64
}

func (t *DoneToken) TokenType() TokenType { return t.Type }
