package result_test

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/tdsmeta/internal/result"
	"github.com/leengari/tdsmeta/internal/tds"
	"github.com/leengari/tdsmeta/internal/tds/tdstest"
)

func TestFromColMetadata(t *testing.T) {
	tok := &tds.ColMetadataToken{
		CekTable: tdstest.CekTable("MSSQL_CERTIFICATE_STORE", "AZURE_KEY_VAULT"),
		Columns: []tds.ColumnMetadata{
			tdstest.IntNColumn("Id", 8),
			tdstest.NVarCharColumn("Bio", 0xFFFF),
			tdstest.DecimalColumn("Price", 10, 2),
			tdstest.TextColumn(tds.Version7_4, "Notes", "dbo", "People"),
			tdstest.EncryptedColumn("SSN", 1, tds.TypeInfo{Type: tds.TypeInt, DataLength: 4}),
		},
	}

	res := result.FromToken(tok)
	assert.Equal(t, res.Token, "COLMETADATA")
	assert.Equal(t, res.Message, "5 columns, cek table with 2 key values")
	assert.DeepEqual(t, res.Columns, result.ColumnHeaders)
	assert.DeepEqual(t, res.Rows, []result.Row{
		{"#": 0, "name": "Id", "type": "BigInt", "length": "8", "nullable": true},
		{"#": 1, "name": "Bio", "type": "NVarChar", "length": "max", "nullable": true},
		{"#": 2, "name": "Price", "type": "DecimalN", "length": "10,2", "nullable": true},
		{"#": 3, "name": "Notes", "type": "Text", "length": "2147483647", "nullable": true, "table": "dbo.People"},
		{"#": 4, "name": "SSN", "type": "BigVarBinary", "length": "8000", "nullable": true, "encryption": "undefined as Int (cek 1)"},
	})
}

func TestFromDone(t *testing.T) {
	res := result.FromToken(&tds.DoneToken{Type: tds.TokenDoneInProc, Status: 0x10, CurCmd: 0xC1, RowCount: 7})
	assert.Equal(t, res.Token, "DONEINPROC")
	assert.Equal(t, res.Message, "DONEINPROC status=0x0010 cmd=0x00C1 rows=7")
	assert.Assert(t, res.Rows == nil)
}

func TestFromError(t *testing.T) {
	res := result.FromError(errors.New("tds: unknown data type 0x99"))
	assert.Equal(t, res.Error, "tds: unknown data type 0x99")
}
