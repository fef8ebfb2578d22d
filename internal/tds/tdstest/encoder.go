// Package tdstest encodes tabular result stream fixtures: the inverse of the
// decoders in package tds.
package tdstest

import (
	"github.com/leengari/tdsmeta/internal/tds"
	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Encoder appends wire fields to a buffer for one protocol version
type Encoder struct {
	buf     []byte
	version tds.Version
}

// NewEncoder creates an empty encoder for version v
func NewEncoder(v tds.Version) *Encoder {
	return &Encoder{version: v}
}

// Bytes returns the encoded bytes
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// ===========================================================================
// PRIMITIVES
// ===========================================================================

func (e *Encoder) Uint8(v uint8) *Encoder {
	e.buf = append(e.buf, v)
	return e
}

func (e *Encoder) Uint16(v uint16) *Encoder {
	e.buf = tds.ByteOrder.AppendUint16(e.buf, v)
	return e
}

func (e *Encoder) Uint32(v uint32) *Encoder {
	e.buf = tds.ByteOrder.AppendUint32(e.buf, v)
	return e
}

func (e *Encoder) Uint64(v uint64) *Encoder {
	e.buf = tds.ByteOrder.AppendUint64(e.buf, v)
	return e
}

func (e *Encoder) Raw(b []byte) *Encoder {
	e.buf = append(e.buf, b...)
	return e
}

// BVarChar writes an 8-bit character count and UTF-16LE characters
func (e *Encoder) BVarChar(s string) *Encoder {
	b := encodeUTF16(s)
	return e.Uint8(uint8(len(b) / 2)).Raw(b)
}

// UsVarChar writes a 16-bit character count and UTF-16LE characters
func (e *Encoder) UsVarChar(s string) *Encoder {
	b := encodeUTF16(s)
	return e.Uint16(uint16(len(b) / 2)).Raw(b)
}

// UsVarByte writes a 16-bit byte count and the bytes
func (e *Encoder) UsVarByte(b []byte) *Encoder {
	return e.Uint16(uint16(len(b))).Raw(b)
}

// UserType writes a user type in the width the version uses
func (e *Encoder) UserType(v uint32) *Encoder {
	if e.version.AtLeast7_2() {
		return e.Uint32(v)
	}
	return e.Uint16(uint16(v))
}

func encodeUTF16(s string) []byte {
	b, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic(err)
	}
	return b
}

// ===========================================================================
// METADATA
// ===========================================================================

// Metadata writes user type, flags and TYPE_INFO
func (e *Encoder) Metadata(m tds.Metadata) *Encoder {
	return e.UserType(m.UserType).Uint16(m.Flags).TypeInfo(m.TypeInfo)
}

// TypeInfo writes a type id and its layout-specific fields
func (e *Encoder) TypeInfo(ti tds.TypeInfo) *Encoder {
	e.Uint8(ti.Type.ID)
	switch ti.Type {
	case tds.TypeUniqueIdentifier, tds.TypeIntN, tds.TypeBitN, tds.TypeFloatN, tds.TypeMoneyN,
		tds.TypeDateTimeN, tds.TypeChar, tds.TypeVarChar, tds.TypeBinary, tds.TypeVarBinary:
		e.Uint8(uint8(ti.DataLength))
	case tds.TypeDecimal, tds.TypeNumeric, tds.TypeDecimalN, tds.TypeNumericN:
		e.Uint8(uint8(ti.DataLength)).Uint8(ti.Precision).Uint8(ti.Scale)
	case tds.TypeTime, tds.TypeDateTime2, tds.TypeDateTimeOffset:
		e.Uint8(ti.Scale)
	case tds.TypeBigVarBinary, tds.TypeBigBinary:
		e.Uint16(uint16(ti.DataLength))
	case tds.TypeBigVarChar, tds.TypeBigChar, tds.TypeNVarChar, tds.TypeNChar:
		e.Uint16(uint16(ti.DataLength)).Collation(ti.Collation)
	case tds.TypeText, tds.TypeNText:
		e.Uint32(ti.DataLength).Collation(ti.Collation)
	case tds.TypeImage, tds.TypeVariant:
		e.Uint32(ti.DataLength)
	case tds.TypeXML:
		if ti.Schema == nil {
			e.Uint8(0)
		} else {
			e.Uint8(1).
				BVarChar(ti.Schema.DBName).
				BVarChar(ti.Schema.OwningSchema).
				UsVarChar(ti.Schema.XMLSchemaCollection)
		}
	case tds.TypeUDT:
		u := ti.UDTInfo
		e.Uint16(u.MaxByteSize).
			BVarChar(u.DBName).
			BVarChar(u.OwningSchema).
			BVarChar(u.TypeName).
			UsVarChar(u.AssemblyQualifiedName)
	}
	return e
}

// Collation packs a collation into 5 bytes; nil writes zeros
func (e *Encoder) Collation(c *tds.Collation) *Encoder {
	if c == nil {
		return e.Raw(make([]byte, 5))
	}
	return e.Raw([]byte{
		byte(c.LCID),
		byte(c.LCID >> 8),
		byte(c.LCID>>16)&0x0F | c.Flags<<4,
		c.Flags>>4 | c.Version<<4,
		c.SortID,
	})
}

// ===========================================================================
// COLMETADATA
// ===========================================================================

// CekTable writes the table header and every value in KeyInfo.Values.
// KeyInfo.Count is written as given so malformed tables can be built.
func (e *Encoder) CekTable(t *tds.CekTableMetadata) *Encoder {
	k := t.KeyInfo
	e.Uint16(t.EkValueCount).
		Uint32(k.DatabaseID).
		Uint32(k.CekID).
		Uint32(k.CekVersion).
		Uint64(k.CekMDVersion).
		Uint8(k.Count)
	for _, v := range k.Values {
		e.UsVarByte(v.EncryptedKey).
			BVarChar(v.KeyStoreName).
			UsVarChar(v.KeyPath).
			BVarChar(v.AsymmetricAlgo)
	}
	return e
}

// CryptoMetadata writes a column's crypto metadata
func (e *Encoder) CryptoMetadata(cm *tds.CryptoMetadata) *Encoder {
	e.Uint16(cm.Ordinal).
		UserType(cm.UserType).
		TypeInfo(cm.BaseTypeInfo).
		Uint8(cm.EncryptionAlgo)
	if cm.EncryptionAlgo == 0 {
		e.BVarChar(cm.AlgoName)
	}
	return e.Uint8(cm.EncryptionAlgoType).Uint8(cm.NormVersion)
}

// Column writes base metadata, the table name when set, crypto metadata
// when set, and the column name
func (e *Encoder) Column(c tds.ColumnMetadata) *Encoder {
	e.Metadata(c.Metadata)
	if tn := c.TableName; tn != nil {
		if tn.Multipart {
			e.Uint8(uint8(len(tn.Parts)))
			for _, p := range tn.Parts {
				e.UsVarChar(p)
			}
		} else {
			e.UsVarChar(tn.String())
		}
	}
	if c.CryptoMetadata != nil {
		e.CryptoMetadata(c.CryptoMetadata)
	}
	return e.BVarChar(c.ColName)
}

// ColMetadata writes a COLMETADATA body (without the token id). The CekTable
// is written when tok carries one.
func (e *Encoder) ColMetadata(tok *tds.ColMetadataToken) *Encoder {
	e.Uint16(uint16(len(tok.Columns)))
	if tok.CekTable != nil {
		e.CekTable(tok.CekTable)
	}
	for _, c := range tok.Columns {
		e.Column(c)
	}
	return e
}

// Token writes a token id followed by its body
func (e *Encoder) Token(tok tds.Token) *Encoder {
	e.Uint8(byte(tok.TokenType()))
	switch t := tok.(type) {
	case *tds.ColMetadataToken:
		e.ColMetadata(t)
	case *tds.DoneToken:
		e.Uint16(t.Status).Uint16(t.CurCmd)
		if e.version.AtLeast7_2() {
			e.Uint64(t.RowCount)
		} else {
			e.Uint32(uint32(t.RowCount))
		}
	}
	return e
}

// EncodeColMetadata returns the COLMETADATA body of tok for version v
func EncodeColMetadata(v tds.Version, tok *tds.ColMetadataToken) []byte {
	return NewEncoder(v).ColMetadata(tok).Bytes()
}
