package tds

// typeInfoLayout selects which TYPE_INFO fields follow a type id
type typeInfoLayout int

const (
	layoutFixed             typeInfoLayout = iota // no further bytes
	layoutByteLen                                 // 1-byte length
	layoutDecimal                                 // 1-byte length, precision, scale
	layoutScale                                   // scale only
	layoutUShortLen                               // 2-byte length
	layoutUShortLenCollation                      // 2-byte length, collation
	layoutLongLen                                 // 4-byte length
	layoutLongLenCollation                        // 4-byte length, collation
	layoutXML                                     // schema info
	layoutUDT                                     // udt info
)

// DataType describes one TDS data type id
type DataType struct {
	ID   byte
	Name string

	// FixedLength is the value width for fixed-length types
	FixedLength int

	// HasTableName is set for the types whose column metadata is followed
	// by the table name the column belongs to (text, ntext, image)
	HasTableName bool

	layout typeInfoLayout
}

var (
	TypeNull             = &DataType{ID: 0x1F, Name: "Null", layout: layoutFixed}
	TypeTinyInt          = &DataType{ID: 0x30, Name: "TinyInt", FixedLength: 1, layout: layoutFixed}
	TypeBit              = &DataType{ID: 0x32, Name: "Bit", FixedLength: 1, layout: layoutFixed}
	TypeSmallInt         = &DataType{ID: 0x34, Name: "SmallInt", FixedLength: 2, layout: layoutFixed}
	TypeInt              = &DataType{ID: 0x38, Name: "Int", FixedLength: 4, layout: layoutFixed}
	TypeSmallDateTime    = &DataType{ID: 0x3A, Name: "SmallDateTime", FixedLength: 4, layout: layoutFixed}
	TypeReal             = &DataType{ID: 0x3B, Name: "Real", FixedLength: 4, layout: layoutFixed}
	TypeMoney            = &DataType{ID: 0x3C, Name: "Money", FixedLength: 8, layout: layoutFixed}
	TypeDateTime         = &DataType{ID: 0x3D, Name: "DateTime", FixedLength: 8, layout: layoutFixed}
	TypeFloat            = &DataType{ID: 0x3E, Name: "Float", FixedLength: 8, layout: layoutFixed}
	TypeSmallMoney       = &DataType{ID: 0x7A, Name: "SmallMoney", FixedLength: 4, layout: layoutFixed}
	TypeBigInt           = &DataType{ID: 0x7F, Name: "BigInt", FixedLength: 8, layout: layoutFixed}
	TypeUniqueIdentifier = &DataType{ID: 0x24, Name: "UniqueIdentifier", layout: layoutByteLen}
	TypeIntN             = &DataType{ID: 0x26, Name: "IntN", layout: layoutByteLen}
	TypeBitN             = &DataType{ID: 0x68, Name: "BitN", layout: layoutByteLen}
	TypeFloatN           = &DataType{ID: 0x6D, Name: "FloatN", layout: layoutByteLen}
	TypeMoneyN           = &DataType{ID: 0x6E, Name: "MoneyN", layout: layoutByteLen}
	TypeDateTimeN        = &DataType{ID: 0x6F, Name: "DateTimeN", layout: layoutByteLen}
	TypeChar             = &DataType{ID: 0x2F, Name: "Char", layout: layoutByteLen}
	TypeVarChar          = &DataType{ID: 0x27, Name: "VarChar", layout: layoutByteLen}
	TypeBinary           = &DataType{ID: 0x2D, Name: "Binary", layout: layoutByteLen}
	TypeVarBinary        = &DataType{ID: 0x25, Name: "VarBinary", layout: layoutByteLen}
	TypeDecimal          = &DataType{ID: 0x37, Name: "Decimal", layout: layoutDecimal}
	TypeNumeric          = &DataType{ID: 0x3F, Name: "Numeric", layout: layoutDecimal}
	TypeDecimalN         = &DataType{ID: 0x6A, Name: "DecimalN", layout: layoutDecimal}
	TypeNumericN         = &DataType{ID: 0x6C, Name: "NumericN", layout: layoutDecimal}
	TypeDate             = &DataType{ID: 0x28, Name: "Date", layout: layoutFixed}
	TypeTime             = &DataType{ID: 0x29, Name: "Time", layout: layoutScale}
	TypeDateTime2        = &DataType{ID: 0x2A, Name: "DateTime2", layout: layoutScale}
	TypeDateTimeOffset   = &DataType{ID: 0x2B, Name: "DateTimeOffset", layout: layoutScale}
	TypeBigVarBinary     = &DataType{ID: 0xA5, Name: "BigVarBinary", layout: layoutUShortLen}
	TypeBigBinary        = &DataType{ID: 0xAD, Name: "BigBinary", layout: layoutUShortLen}
	TypeBigVarChar       = &DataType{ID: 0xA7, Name: "BigVarChar", layout: layoutUShortLenCollation}
	TypeBigChar          = &DataType{ID: 0xAF, Name: "BigChar", layout: layoutUShortLenCollation}
	TypeNVarChar         = &DataType{ID: 0xE7, Name: "NVarChar", layout: layoutUShortLenCollation}
	TypeNChar            = &DataType{ID: 0xEF, Name: "NChar", layout: layoutUShortLenCollation}
	TypeText             = &DataType{ID: 0x23, Name: "Text", HasTableName: true, layout: layoutLongLenCollation}
	TypeNText            = &DataType{ID: 0x63, Name: "NText", HasTableName: true, layout: layoutLongLenCollation}
	TypeImage            = &DataType{ID: 0x22, Name: "Image", HasTableName: true, layout: layoutLongLen}
	TypeVariant          = &DataType{ID: 0x62, Name: "Variant", layout: layoutLongLen}
	TypeXML              = &DataType{ID: 0xF1, Name: "Xml", layout: layoutXML}
	TypeUDT              = &DataType{ID: 0xF0, Name: "UDT", layout: layoutUDT}
)

// dataTypes indexes every supported type by id
var dataTypes = func() map[byte]*DataType {
	all := []*DataType{
		TypeNull, TypeTinyInt, TypeBit, TypeSmallInt, TypeInt, TypeSmallDateTime,
		TypeReal, TypeMoney, TypeDateTime, TypeFloat, TypeSmallMoney, TypeBigInt,
		TypeUniqueIdentifier, TypeIntN, TypeBitN, TypeFloatN, TypeMoneyN, TypeDateTimeN,
		TypeChar, TypeVarChar, TypeBinary, TypeVarBinary,
		TypeDecimal, TypeNumeric, TypeDecimalN, TypeNumericN,
		TypeDate, TypeTime, TypeDateTime2, TypeDateTimeOffset,
		TypeBigVarBinary, TypeBigBinary, TypeBigVarChar, TypeBigChar, TypeNVarChar, TypeNChar,
		TypeText, TypeNText, TypeImage, TypeVariant, TypeXML, TypeUDT,
	}
	m := make(map[byte]*DataType, len(all))
	for _, t := range all {
		m[t.ID] = t
	}
	return m
}()

// LookupDataType returns the data type for a wire type id
func LookupDataType(id byte) (*DataType, bool) {
	t, ok := dataTypes[id]
	return t, ok
}

// intNTypes maps an INTN data length to the concrete integer type
var intNTypes = [...]*DataType{1: TypeTinyInt, 2: TypeSmallInt, 4: TypeInt, 8: TypeBigInt}

// IntNType resolves the fixed-width integer type an INTN column of the given
// width carries
func IntNType(width uint32) (*DataType, error) {
	if width < uint32(len(intNTypes)) && intNTypes[width] != nil {
		return intNTypes[width], nil
	}
	return nil, &InvalidIntNWidthError{Width: width}
}

func (t *DataType) String() string {
	return t.Name
}
