package result

import (
	"fmt"

	"github.com/leengari/tdsmeta/internal/tds"
)

// Row maps a column header to its value
type Row map[string]any

// Result is the printable summary of one decoded token, shared by the REPL
// and the TCP server
type Result struct {
	Token   string   `json:"token,omitempty"`
	Columns []string `json:"columns,omitempty"`
	Rows    []Row    `json:"rows,omitempty"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// ColumnHeaders are the headers of a COLMETADATA summary
var ColumnHeaders = []string{"#", "name", "type", "length", "nullable", "table", "encryption"}

// FromToken summarizes a decoded token
func FromToken(tok tds.Token) *Result {
	switch t := tok.(type) {
	case *tds.ColMetadataToken:
		return fromColMetadata(t)
	case *tds.DoneToken:
		return &Result{
			Token: t.Type.String(),
			Message: fmt.Sprintf("%s status=0x%04X cmd=0x%04X rows=%d",
				t.Type, t.Status, t.CurCmd, t.RowCount),
		}
	default:
		return &Result{Token: tok.TokenType().String()}
	}
}

// FromError reports a decode failure
func FromError(err error) *Result {
	return &Result{Error: err.Error()}
}

func fromColMetadata(t *tds.ColMetadataToken) *Result {
	res := &Result{
		Token:   tds.TokenColMetadata.String(),
		Columns: ColumnHeaders,
		Rows:    make([]Row, 0, len(t.Columns)),
		Message: fmt.Sprintf("%d columns", len(t.Columns)),
	}
	if t.CekTable != nil {
		res.Message += fmt.Sprintf(", cek table with %d key values", len(t.CekTable.KeyInfo.Values))
	}

	for i, c := range t.Columns {
		row := Row{
			"#":        i,
			"name":     c.ColName,
			"type":     typeName(c.TypeInfo),
			"length":   length(c.TypeInfo),
			"nullable": c.Nullable(),
		}
		if c.TableName != nil {
			row["table"] = c.TableName.String()
		}
		if cm := c.CryptoMetadata; cm != nil {
			row["encryption"] = fmt.Sprintf("%s as %s (cek %d)", cm.AlgoName, typeName(cm.BaseTypeInfo), cm.Ordinal)
		}
		res.Rows = append(res.Rows, row)
	}
	return res
}

// typeName resolves INTN to its concrete width where possible
func typeName(ti tds.TypeInfo) string {
	if ti.Type == nil {
		return ""
	}
	t, err := ti.ValueType()
	if err != nil {
		return ti.Type.Name
	}
	return t.Name
}

func length(ti tds.TypeInfo) string {
	switch {
	case ti.IsPLP():
		return "max"
	case ti.Type != nil && (ti.Type == tds.TypeDecimalN || ti.Type == tds.TypeNumericN ||
		ti.Type == tds.TypeDecimal || ti.Type == tds.TypeNumeric):
		return fmt.Sprintf("%d,%d", ti.Precision, ti.Scale)
	case ti.DataLength == 0:
		return ""
	default:
		return fmt.Sprint(ti.DataLength)
	}
}
