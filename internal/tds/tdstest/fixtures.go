package tdstest

import (
	"strings"

	"github.com/leengari/tdsmeta/internal/tds"
)

// Latin1General is the collation of SQL_Latin1_General_CP1_CI_AS
var Latin1General = &tds.Collation{LCID: 0x0409, Flags: 0xD0, Version: 0, SortID: 0x34}

// FlagNullable and FlagEncrypted are base metadata flag bits
const (
	FlagNullable  uint16 = 0x0001
	FlagEncrypted uint16 = 0x0800
)

// IntNColumn returns a nullable INTN column of the given width
func IntNColumn(name string, width uint32) tds.ColumnMetadata {
	return tds.ColumnMetadata{
		Metadata: tds.Metadata{
			Flags:    FlagNullable,
			TypeInfo: tds.TypeInfo{Type: tds.TypeIntN, DataLength: width},
		},
		ColName: name,
	}
}

// NVarCharColumn returns an NVARCHAR column of maxBytes
func NVarCharColumn(name string, maxBytes uint32) tds.ColumnMetadata {
	return tds.ColumnMetadata{
		Metadata: tds.Metadata{
			Flags: FlagNullable,
			TypeInfo: tds.TypeInfo{
				Type:       tds.TypeNVarChar,
				DataLength: maxBytes,
				Collation:  Latin1General,
			},
		},
		ColName: name,
	}
}

// DecimalColumn returns a DECIMALN column
func DecimalColumn(name string, precision, scale uint8) tds.ColumnMetadata {
	return tds.ColumnMetadata{
		Metadata: tds.Metadata{
			Flags: FlagNullable,
			TypeInfo: tds.TypeInfo{
				Type:       tds.TypeDecimalN,
				DataLength: 17,
				Precision:  precision,
				Scale:      scale,
			},
		},
		ColName: name,
	}
}

// TextColumn returns a TEXT column with the table name in the shape the
// version sends. Before 7.2 the parts are joined into a single name.
func TextColumn(v tds.Version, name string, table ...string) tds.ColumnMetadata {
	tn := &tds.TableName{Parts: append([]string{}, table...), Multipart: true}
	if !v.AtLeast7_2() {
		tn = &tds.TableName{Parts: []string{strings.Join(table, ".")}}
	}
	return tds.ColumnMetadata{
		Metadata: tds.Metadata{
			Flags: FlagNullable,
			TypeInfo: tds.TypeInfo{
				Type:       tds.TypeText,
				DataLength: 0x7FFFFFFF,
				Collation:  Latin1General,
			},
		},
		ColName:   name,
		TableName: tn,
	}
}

// EncryptedColumn returns a VARBINARY column encrypted with the built-in
// algorithm whose true type is base
func EncryptedColumn(name string, ordinal uint16, base tds.TypeInfo) tds.ColumnMetadata {
	return tds.ColumnMetadata{
		Metadata: tds.Metadata{
			Flags:    FlagNullable | FlagEncrypted,
			TypeInfo: tds.TypeInfo{Type: tds.TypeBigVarBinary, DataLength: 8000},
		},
		ColName: name,
		CryptoMetadata: &tds.CryptoMetadata{
			Ordinal:            ordinal,
			BaseTypeInfo:       base,
			EncryptionAlgo:     2,
			AlgoName:           tds.UndefinedAlgoName,
			EncryptionAlgoType: 1,
			NormVersion:        1,
		},
	}
}

// CekTable returns a valid table with one key value per key store name
func CekTable(keyStores ...string) *tds.CekTableMetadata {
	t := &tds.CekTableMetadata{
		EkValueCount: 1,
		KeyInfo: tds.EncryptionKeyInfo{
			DatabaseID:   5,
			CekID:        1,
			CekVersion:   1,
			CekMDVersion: 0x0000_0001_0000_0A2B,
			Count:        uint8(len(keyStores)),
			Values:       make([]tds.EncryptionKeyValue, 0, len(keyStores)),
		},
	}
	for _, ks := range keyStores {
		t.KeyInfo.Values = append(t.KeyInfo.Values, tds.EncryptionKeyValue{
			EncryptedKey:   []byte{0x01, 0x70, 0x00, 0x00, 0x01, 0xAB, 0xCD},
			KeyStoreName:   ks,
			KeyPath:        "CurrentUser/My/" + ks,
			AsymmetricAlgo: "RSA_OAEP",
		})
	}
	return t
}
