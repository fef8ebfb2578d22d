package repl

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/leengari/tdsmeta/internal/result"
	"github.com/leengari/tdsmeta/internal/tds"
	"github.com/leengari/tdsmeta/internal/tds/tdstest"
)

func TestParseHex(t *testing.T) {
	b, err := ParseHex("81 0x0100 00000000")
	assert.NilError(t, err)
	assert.DeepEqual(t, b, []byte{0x81, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00})

	_, err = ParseHex("8")
	assert.ErrorContains(t, err, "invalid hex")
	_, err = ParseHex("zz")
	assert.ErrorContains(t, err, "invalid hex")
}

func TestRunAcrossLines(t *testing.T) {
	stream := tdstest.NewEncoder(tds.Version7_4).
		Token(&tds.ColMetadataToken{Columns: []tds.ColumnMetadata{
			tdstest.IntNColumn("Id", 4),
			tdstest.NVarCharColumn("Name", 100),
		}}).
		Token(&tds.DoneToken{Type: tds.TokenDone, RowCount: 2}).
		Bytes()
	h := hex.EncodeToString(stream)

	// split the stream inside the first column; the column count is consumed
	in := strings.Join([]string{h[:10], "status", h[10:], "exit", "ignored"}, "\n")
	var out bytes.Buffer
	Run(strings.NewReader(in), &out, tds.DefaultOptions())

	got := out.String()
	assert.Assert(t, is.Contains(got, "(need more data, 3 bytes read)"))
	assert.Assert(t, is.Contains(got, "offset=3 pending=true"))
	assert.Assert(t, is.Contains(got, "2 columns"))
	assert.Assert(t, is.Contains(got, "Name"))
	assert.Assert(t, is.Contains(got, "DONE status=0x0000 cmd=0x0000 rows=2"))
	assert.Assert(t, !strings.Contains(got, "ignored"))
}

func TestRunReportsFailureAndReset(t *testing.T) {
	in := strings.Join([]string{"d1", "fd", "reset", "fd 0000 0000 0000000000000000", "\\q"}, "\n")
	var out bytes.Buffer
	Run(strings.NewReader(in), &out, tds.DefaultOptions())

	got := out.String()
	assert.Assert(t, is.Contains(got, "Error: tds: unsupported token 0xD1 at stream offset 0"))
	assert.Equal(t, strings.Count(got, "Error: tds: unsupported token"), 2)
	assert.Assert(t, is.Contains(got, "parser reset"))
	assert.Assert(t, is.Contains(got, "DONE status=0x0000 cmd=0x0000 rows=0"))
}

func TestRunBadHex(t *testing.T) {
	var out bytes.Buffer
	Run(strings.NewReader("xyz\n"), &out, tds.DefaultOptions())
	assert.Assert(t, is.Contains(out.String(), "Error: invalid hex"))
}

func TestPrintResult(t *testing.T) {
	var out bytes.Buffer
	PrintResult(&out, &result.Result{
		Message: "1 columns",
		Columns: []string{"#", "name", "table"},
		Rows:    []result.Row{{"#": 0, "name": "Id"}},
	})

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.DeepEqual(t, lines, []string{
		"1 columns",
		"#    name  table",
		"---  ---   ---",
		"0    Id    -",
	})
}
