package tds_test

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/tdsmeta/internal/tds"
	"github.com/leengari/tdsmeta/internal/tds/tdstest"
)

func TestDecodeTypeInfoLayouts(t *testing.T) {
	tests := []struct {
		name string
		ti   tds.TypeInfo
	}{
		{name: "fixed int", ti: tds.TypeInfo{Type: tds.TypeInt, DataLength: 4}},
		{name: "fixed bit", ti: tds.TypeInfo{Type: tds.TypeBit, DataLength: 1}},
		{name: "date", ti: tds.TypeInfo{Type: tds.TypeDate}},
		{name: "guid", ti: tds.TypeInfo{Type: tds.TypeUniqueIdentifier, DataLength: 16}},
		{name: "bitn", ti: tds.TypeInfo{Type: tds.TypeBitN, DataLength: 1}},
		{name: "legacy varchar", ti: tds.TypeInfo{Type: tds.TypeVarChar, DataLength: 30}},
		{name: "numeric", ti: tds.TypeInfo{Type: tds.TypeNumericN, DataLength: 9, Precision: 12, Scale: 4}},
		{name: "datetime2", ti: tds.TypeInfo{Type: tds.TypeDateTime2, Scale: 7}},
		{name: "datetimeoffset", ti: tds.TypeInfo{Type: tds.TypeDateTimeOffset, Scale: 3}},
		{name: "varbinary max", ti: tds.TypeInfo{Type: tds.TypeBigVarBinary, DataLength: 0xFFFF}},
		{name: "varchar", ti: tds.TypeInfo{Type: tds.TypeBigVarChar, DataLength: 50, Collation: tdstest.Latin1General}},
		{name: "nchar", ti: tds.TypeInfo{Type: tds.TypeNChar, DataLength: 20, Collation: tdstest.Latin1General}},
		{name: "ntext", ti: tds.TypeInfo{Type: tds.TypeNText, DataLength: 0x7FFFFFFE, Collation: tdstest.Latin1General}},
		{name: "image", ti: tds.TypeInfo{Type: tds.TypeImage, DataLength: 0x7FFFFFFF}},
		{name: "variant", ti: tds.TypeInfo{Type: tds.TypeVariant, DataLength: 8016}},
		{name: "untyped xml", ti: tds.TypeInfo{Type: tds.TypeXML}},
		{
			name: "typed xml",
			ti: tds.TypeInfo{Type: tds.TypeXML, Schema: &tds.XMLSchema{
				DBName:              "AdventureWorks",
				OwningSchema:        "Production",
				XMLSchemaCollection: "ManuInstructionsSchemaCollection",
			}},
		},
		{
			name: "udt",
			ti: tds.TypeInfo{Type: tds.TypeUDT, UDTInfo: &tds.UDTInfo{
				MaxByteSize:           0xFFFF,
				DBName:                "master",
				OwningSchema:          "sys",
				TypeName:              "geography",
				AssemblyQualifiedName: "Microsoft.SqlServer.Types.SqlGeography, Microsoft.SqlServer.Types",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tdstest.NewEncoder(tds.Version7_4).TypeInfo(tt.ti).Bytes()
			r := tds.NewReader(b)
			got, err := tds.DefaultMetadataDecoder.DecodeTypeInfo(r, tds.DefaultOptions())
			assert.NilError(t, err)
			assert.DeepEqual(t, got, tt.ti, tdstest.CmpOptions...)
			assert.Equal(t, r.Buffered(), 0)

			// every proper prefix must underflow
			for n := 0; n < len(b); n++ {
				_, err := tds.DefaultMetadataDecoder.DecodeTypeInfo(tds.NewReader(b[:n]), tds.DefaultOptions())
				assert.ErrorIs(t, err, tds.ErrNeedMoreData, "prefix %d", n)
			}
		})
	}
}

func TestDecodeMetadataUserTypeWidth(t *testing.T) {
	m := tds.Metadata{
		UserType: 0x0102,
		Flags:    0x0009,
		TypeInfo: tds.TypeInfo{Type: tds.TypeIntN, DataLength: 8},
	}

	for _, v := range []tds.Version{tds.Version7_0, tds.Version7_1, tds.Version7_2, tds.Version7_4} {
		t.Run(v.String(), func(t *testing.T) {
			b := tdstest.NewEncoder(v).Metadata(m).Bytes()
			want := 2 + 2 + 2
			if v.AtLeast7_2() {
				want += 2
			}
			assert.Equal(t, len(b), want)

			got, err := tds.DefaultMetadataDecoder.DecodeMetadata(tds.NewReader(b), tds.Options{TDSVersion: v})
			assert.NilError(t, err)
			assert.DeepEqual(t, got, m, tdstest.CmpOptions...)
			assert.Assert(t, got.Nullable())
			assert.Assert(t, !got.Encrypted())
		})
	}
}

func TestCollationUnpacking(t *testing.T) {
	b := tdstest.NewEncoder(tds.Version7_4).
		Uint8(tds.TypeNVarChar.ID).
		Uint16(100).
		Raw([]byte{0x09, 0x04, 0xD0, 0x00, 0x34}).
		Bytes()

	ti, err := tds.DefaultMetadataDecoder.DecodeTypeInfo(tds.NewReader(b), tds.DefaultOptions())
	assert.NilError(t, err)
	assert.DeepEqual(t, ti.Collation, &tds.Collation{LCID: 0x0409, Flags: 0x0D, Version: 0, SortID: 0x34})
}

func TestIsPLP(t *testing.T) {
	assert.Assert(t, tds.TypeInfo{Type: tds.TypeNVarChar, DataLength: 0xFFFF}.IsPLP())
	assert.Assert(t, tds.TypeInfo{Type: tds.TypeBigVarBinary, DataLength: 0xFFFF}.IsPLP())
	assert.Assert(t, !tds.TypeInfo{Type: tds.TypeNVarChar, DataLength: 100}.IsPLP())
	assert.Assert(t, !tds.TypeInfo{Type: tds.TypeImage, DataLength: 0xFFFF}.IsPLP())
	assert.Assert(t, !tds.TypeInfo{}.IsPLP())
}

func TestIntNType(t *testing.T) {
	tests := []struct {
		width uint32
		want  *tds.DataType
	}{
		{1, tds.TypeTinyInt},
		{2, tds.TypeSmallInt},
		{4, tds.TypeInt},
		{8, tds.TypeBigInt},
	}
	for _, tt := range tests {
		got, err := tds.IntNType(tt.width)
		assert.NilError(t, err)
		assert.Assert(t, got == tt.want, "width %d resolved to %s", tt.width, got)

		v, err := tds.TypeInfo{Type: tds.TypeIntN, DataLength: tt.width}.ValueType()
		assert.NilError(t, err)
		assert.Assert(t, v == tt.want)
	}

	for _, width := range []uint32{0, 3, 5, 7, 9, 16} {
		_, err := tds.IntNType(width)
		var invalid *tds.InvalidIntNWidthError
		assert.Assert(t, errors.As(err, &invalid), "width %d", width)
		assert.Equal(t, invalid.Width, width)
	}

	v, err := tds.TypeInfo{Type: tds.TypeNVarChar}.ValueType()
	assert.NilError(t, err)
	assert.Assert(t, v == tds.TypeNVarChar)
}

func TestLookupDataType(t *testing.T) {
	dt, ok := tds.LookupDataType(0xE7)
	assert.Assert(t, ok)
	assert.Equal(t, dt.Name, "NVarChar")
	assert.Assert(t, !dt.HasTableName)

	for _, id := range []byte{0x23, 0x63, 0x22} {
		dt, ok := tds.LookupDataType(id)
		assert.Assert(t, ok)
		assert.Assert(t, dt.HasTableName, "type %s", dt)
	}

	_, ok = tds.LookupDataType(0x00)
	assert.Assert(t, !ok)
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want tds.Version
	}{
		{"7_0", tds.Version7_0},
		{"7.1", tds.Version7_1},
		{"7_2", tds.Version7_2},
		{"7_3_A", tds.Version7_3A},
		{"7.3b", tds.Version7_3B},
		{"7_4", tds.Version7_4},
	}
	for _, tt := range tests {
		got, err := tds.ParseVersion(tt.in)
		assert.NilError(t, err)
		assert.Equal(t, got, tt.want)
	}

	_, err := tds.ParseVersion("8_0")
	assert.ErrorContains(t, err, "unknown TDS version")

	assert.Assert(t, tds.Version7_1 < tds.Version7_2)
	assert.Assert(t, tds.Version7_3A < tds.Version7_3B)
	assert.Assert(t, !tds.Version7_1.AtLeast7_2())
	assert.Assert(t, tds.Version7_3A.AtLeast7_2())
	assert.Equal(t, tds.Version7_3B.String(), "7_3_B")
}
