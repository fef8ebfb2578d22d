package network

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/leengari/tdsmeta/internal/result"
	"github.com/leengari/tdsmeta/internal/tds"
	"github.com/leengari/tdsmeta/internal/tds/tdstest"
)

func startServer(t *testing.T, opts tds.Options) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NilError(t, err)
	go Serve(ln, opts)
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().String()
}

// exchange writes chunks, half-closes the connection and collects every
// result the server sends back
func exchange(t *testing.T, addr string, chunks ...[]byte) []result.Result {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	assert.NilError(t, err)
	defer conn.Close()
	assert.NilError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	for _, c := range chunks {
		_, err := conn.Write(c)
		assert.NilError(t, err)
	}
	assert.NilError(t, conn.(*net.TCPConn).CloseWrite())

	var results []result.Result
	dec := json.NewDecoder(conn)
	for {
		var res result.Result
		err := dec.Decode(&res)
		if errors.Is(err, io.EOF) {
			return results
		}
		assert.NilError(t, err)
		results = append(results, res)
	}
}

func split(b []byte, size int) [][]byte {
	var out [][]byte
	for len(b) > size {
		out = append(out, b[:size])
		b = b[size:]
	}
	return append(out, b)
}

func TestServerDecodesChunkedStream(t *testing.T) {
	addr := startServer(t, tds.DefaultOptions())

	stream := tdstest.NewEncoder(tds.Version7_4).
		Token(&tds.ColMetadataToken{Columns: []tds.ColumnMetadata{
			tdstest.IntNColumn("Id", 4),
			tdstest.NVarCharColumn("Name", 100),
		}}).
		Token(&tds.DoneToken{Type: tds.TokenDone, Status: 0x10, CurCmd: 0xC1, RowCount: 2}).
		Bytes()

	results := exchange(t, addr, split(stream, 3)...)
	assert.Equal(t, len(results), 2)

	assert.Equal(t, results[0].Token, "COLMETADATA")
	assert.Equal(t, results[0].Message, "2 columns")
	assert.Equal(t, len(results[0].Rows), 2)
	assert.Equal(t, results[0].Rows[1]["name"], "Name")
	assert.Equal(t, results[0].Rows[0]["type"], "Int")

	assert.Equal(t, results[1].Token, "DONE")
	assert.Equal(t, results[1].Message, "DONE status=0x0010 cmd=0x00C1 rows=2")
}

func TestServerReportsTruncatedStream(t *testing.T) {
	addr := startServer(t, tds.DefaultOptions())

	stream := tdstest.NewEncoder(tds.Version7_4).
		Token(&tds.DoneToken{Type: tds.TokenDone}).
		Token(&tds.ColMetadataToken{Columns: []tds.ColumnMetadata{tdstest.IntNColumn("Id", 4)}}).
		Bytes()

	results := exchange(t, addr, stream[:len(stream)-2])
	assert.Equal(t, len(results), 2)
	assert.Equal(t, results[0].Token, "DONE")
	assert.Assert(t, is.Contains(results[1].Error, "stream ended inside a token"))
}

func TestServerClosesOnFatalError(t *testing.T) {
	opts := tds.DefaultOptions()
	opts.AlwaysEncrypted = true
	addr := startServer(t, opts)

	cek := tdstest.CekTable("MSSQL_CERTIFICATE_STORE")
	cek.KeyInfo.DatabaseID = 0
	stream := tdstest.NewEncoder(tds.Version7_4).
		Token(&tds.ColMetadataToken{CekTable: cek, Columns: []tds.ColumnMetadata{tdstest.IntNColumn("Id", 4)}}).
		Token(&tds.DoneToken{Type: tds.TokenDone}).
		Bytes()

	results := exchange(t, addr, stream)
	assert.Equal(t, len(results), 1)
	assert.Assert(t, is.Contains(results[0].Error, "cek table describes no usable column encryption key"))
	assert.Assert(t, is.Contains(results[0].Error, "database_id=0"))
}
