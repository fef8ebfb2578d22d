package tds

// ===========================================================================
// BASE METADATA
// ===========================================================================
//
// Column base metadata layout:
//   UserType  uint16 (<7.2) or uint32 (>=7.2)
//   Flags     uint16
//   TYPE_INFO type id byte followed by layout-specific fields
//
// ===========================================================================

const (
	flagNullable  uint16 = 1 << 0
	flagEncrypted uint16 = 1 << 11

	// plpLength marks a (max) column in a 2-byte length field
	plpLength = 0xFFFF

	collationSize = 5
)

// Collation is the 5-byte SQL collation attached to character types
type Collation struct {
	LCID    uint32
	Flags   uint8
	Version uint8
	SortID  uint8
}

// parseCollation unpacks LCID (20 bits), flags (8 bits), version (4 bits)
// and sort id (8 bits)
func parseCollation(b []byte) *Collation {
	return &Collation{
		LCID:    uint32(b[2]&0x0F)<<16 | uint32(b[1])<<8 | uint32(b[0]),
		Flags:   (b[3]&0x0F)<<4 | (b[2]&0xF0)>>4,
		Version: (b[3] & 0xF0) >> 4,
		SortID:  b[4],
	}
}

// UDTInfo identifies the CLR type of a UDT column
type UDTInfo struct {
	MaxByteSize           uint16
	DBName                string
	OwningSchema          string
	TypeName              string
	AssemblyQualifiedName string
}

// XMLSchema names the schema collection bound to a typed XML column
type XMLSchema struct {
	DBName              string
	OwningSchema        string
	XMLSchemaCollection string
}

// TypeInfo is a decoded TYPE_INFO
type TypeInfo struct {
	Type       *DataType
	DataLength uint32
	Precision  uint8
	Scale      uint8
	Collation  *Collation
	UDTInfo    *UDTInfo
	Schema     *XMLSchema
}

// IsPLP reports whether a 2-byte length type was declared (max)
func (ti TypeInfo) IsPLP() bool {
	if ti.Type == nil {
		return false
	}
	switch ti.Type.layout {
	case layoutUShortLen, layoutUShortLenCollation:
		return ti.DataLength == plpLength
	}
	return false
}

// ValueType resolves the concrete type of the column values. INTN columns
// resolve by width; every other type is returned as declared.
func (ti TypeInfo) ValueType() (*DataType, error) {
	if ti.Type == TypeIntN {
		return IntNType(ti.DataLength)
	}
	return ti.Type, nil
}

// Metadata is a column's intrinsic base metadata
type Metadata struct {
	UserType uint32
	Flags    uint16
	TypeInfo
}

// Nullable reports flag bit 0
func (m Metadata) Nullable() bool {
	return m.Flags&flagNullable != 0
}

// Encrypted reports the fEncrypted flag (bit 11)
func (m Metadata) Encrypted() bool {
	return m.Flags&flagEncrypted != 0
}

// MetadataDecoder decodes a column's base metadata and standalone TYPE_INFO
// blocks. Implementations read only through r; returning ErrNeedMoreData
// from any read is enough for the caller to rewind and retry later.
type MetadataDecoder interface {
	DecodeMetadata(r *Reader, opts Options) (Metadata, error)
	DecodeTypeInfo(r *Reader, opts Options) (TypeInfo, error)
}

// DefaultMetadataDecoder decodes every type in the data type table
var DefaultMetadataDecoder MetadataDecoder = metadataDecoder{}

type metadataDecoder struct{}

// DecodeMetadata reads user type, flags and TYPE_INFO
func (d metadataDecoder) DecodeMetadata(r *Reader, opts Options) (Metadata, error) {
	var m Metadata
	if opts.TDSVersion.AtLeast7_2() {
		userType, err := r.ReadUint32LE()
		if err != nil {
			return Metadata{}, err
		}
		m.UserType = userType
	} else {
		userType, err := r.ReadUint16LE()
		if err != nil {
			return Metadata{}, err
		}
		m.UserType = uint32(userType)
	}

	flags, err := r.ReadUint16LE()
	if err != nil {
		return Metadata{}, err
	}
	m.Flags = flags

	ti, err := d.DecodeTypeInfo(r, opts)
	if err != nil {
		return Metadata{}, err
	}
	m.TypeInfo = ti
	return m, nil
}

// DecodeTypeInfo reads a type id and its layout-specific fields
func (d metadataDecoder) DecodeTypeInfo(r *Reader, _ Options) (TypeInfo, error) {
	id, err := r.ReadUint8()
	if err != nil {
		return TypeInfo{}, err
	}
	t, ok := LookupDataType(id)
	if !ok {
		return TypeInfo{}, &UnknownDataTypeError{ID: id}
	}

	ti := TypeInfo{Type: t, DataLength: uint32(t.FixedLength)}
	switch t.layout {
	case layoutFixed:
		// nothing follows the type id
	case layoutByteLen:
		n, err := r.ReadUint8()
		if err != nil {
			return TypeInfo{}, err
		}
		ti.DataLength = uint32(n)

	case layoutDecimal:
		n, err := r.ReadUint8()
		if err != nil {
			return TypeInfo{}, err
		}
		if ti.Precision, err = r.ReadUint8(); err != nil {
			return TypeInfo{}, err
		}
		if ti.Scale, err = r.ReadUint8(); err != nil {
			return TypeInfo{}, err
		}
		ti.DataLength = uint32(n)

	case layoutScale:
		if ti.Scale, err = r.ReadUint8(); err != nil {
			return TypeInfo{}, err
		}

	case layoutUShortLen, layoutUShortLenCollation:
		n, err := r.ReadUint16LE()
		if err != nil {
			return TypeInfo{}, err
		}
		ti.DataLength = uint32(n)
		if t.layout == layoutUShortLenCollation {
			if ti.Collation, err = readCollation(r); err != nil {
				return TypeInfo{}, err
			}
		}

	case layoutLongLen, layoutLongLenCollation:
		if ti.DataLength, err = r.ReadUint32LE(); err != nil {
			return TypeInfo{}, err
		}
		if t.layout == layoutLongLenCollation {
			if ti.Collation, err = readCollation(r); err != nil {
				return TypeInfo{}, err
			}
		}

	case layoutXML:
		if ti.Schema, err = readXMLSchema(r); err != nil {
			return TypeInfo{}, err
		}

	case layoutUDT:
		if ti.UDTInfo, err = readUDTInfo(r); err != nil {
			return TypeInfo{}, err
		}
	}
	return ti, nil
}

func readCollation(r *Reader) (*Collation, error) {
	b, err := r.ReadBytes(collationSize)
	if err != nil {
		return nil, err
	}
	return parseCollation(b), nil
}

// readXMLSchema returns nil when the schema-present byte is 0
func readXMLSchema(r *Reader) (*XMLSchema, error) {
	present, err := r.ReadUint8()
	if err != nil || present == 0 {
		return nil, err
	}
	var s XMLSchema
	if s.DBName, err = r.ReadBVarChar(); err != nil {
		return nil, err
	}
	if s.OwningSchema, err = r.ReadBVarChar(); err != nil {
		return nil, err
	}
	if s.XMLSchemaCollection, err = r.ReadUsVarChar(); err != nil {
		return nil, err
	}
	return &s, nil
}

func readUDTInfo(r *Reader) (*UDTInfo, error) {
	var u UDTInfo
	var err error
	if u.MaxByteSize, err = r.ReadUint16LE(); err != nil {
		return nil, err
	}
	if u.DBName, err = r.ReadBVarChar(); err != nil {
		return nil, err
	}
	if u.OwningSchema, err = r.ReadBVarChar(); err != nil {
		return nil, err
	}
	if u.TypeName, err = r.ReadBVarChar(); err != nil {
		return nil, err
	}
	if u.AssemblyQualifiedName, err = r.ReadUsVarChar(); err != nil {
		return nil, err
	}
	return &u, nil
}
