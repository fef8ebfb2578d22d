package tds

import (
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// ===========================================================================
// COLMETADATA TOKEN DECODER
// ===========================================================================
//
// Wire layout (token id already consumed):
//   ColumnCount  uint16
//   CekTable     only when Always Encrypted is enabled
//   Columns      ColumnCount x ColumnData
//
// The decoder is a resumable state machine. Each stage is a group of reads
// that either completes or is rolled back to its first byte, so a decode can
// be suspended on any byte boundary and resumed once more bytes are fed.
//
// ===========================================================================

type decodeStage int

const (
	stageColumnCount decodeStage = iota
	stageCekTable
	stageCekValues
	stageColumnBase
	stageTableName
	stageTableNameParts
	stageCryptoMetadata
	stageColumnName
	stageDone
	stageFailed
)

var stageNames = [...]string{
	stageColumnCount:    "column_count",
	stageCekTable:       "cek_table",
	stageCekValues:      "cek_values",
	stageColumnBase:     "column_base",
	stageTableName:      "table_name",
	stageTableNameParts: "table_name_parts",
	stageCryptoMetadata: "crypto_metadata",
	stageColumnName:     "column_name",
	stageDone:           "done",
	stageFailed:         "failed",
}

func (s decodeStage) String() string {
	return stageNames[s]
}

// ColMetadataDecoder decodes one COLMETADATA token. It owns all partial state
// of the decode; use one decoder per token.
type ColMetadataDecoder struct {
	opts Options
	id   string

	stage       decodeStage
	columnCount int
	cekTable    *CekTableMetadata
	columns     []ColumnMetadata

	// column under assembly and its expected table name part count
	column    ColumnMetadata
	partCount int

	token *ColMetadataToken
	err   error
}

// NewColMetadataDecoder creates a decoder positioned before the column count
func NewColMetadataDecoder(opts Options) *ColMetadataDecoder {
	return &ColMetadataDecoder{
		opts: opts,
		id:   uuid.NewString(),
	}
}

// ID identifies this decode in observer events
func (d *ColMetadataDecoder) ID() string {
	return d.id
}

// Decode advances the decode as far as the buffered bytes allow.
// It returns ErrNeedMoreData when suspended; the caller feeds r and calls
// Decode again. The token is returned only once every column is decoded.
// Any other error is fatal and is returned again by later calls.
func (d *ColMetadataDecoder) Decode(r *Reader) (*ColMetadataToken, error) {
	switch d.stage {
	case stageDone:
		return d.token, nil
	case stageFailed:
		return nil, d.err
	}

	for d.stage != stageDone {
		m := r.mark()
		err := d.step(r)
		if errors.Is(err, ErrNeedMoreData) {
			r.rewind(m)
			d.emit(EventSuspend, d.stage.String())
			return nil, ErrNeedMoreData
		}
		if err != nil {
			d.stage = stageFailed
			d.err = err
			d.emit(EventDecodeError, err)
			return nil, err
		}
	}

	d.token = &ColMetadataToken{CekTable: d.cekTable, Columns: d.columns}
	d.emit(EventTokenEnd, d.token)
	return d.token, nil
}

// step runs one stage. State is only mutated once all reads of the stage
// succeeded.
func (d *ColMetadataDecoder) step(r *Reader) error {
	switch d.stage {
	case stageColumnCount:
		n, err := r.ReadUint16LE()
		if err != nil {
			return err
		}
		d.columnCount = int(n)
		d.columns = make([]ColumnMetadata, 0, n)
		d.emit(EventTokenStart, d.columnCount)
		if d.opts.AlwaysEncrypted {
			d.stage = stageCekTable
		} else {
			d.stage = d.nextColumnStage()
		}
		return nil

	case stageCekTable, stageCekValues:
		return d.stepCekTable(r)

	default:
		return d.stepColumn(r)
	}
}

// nextColumnStage starts the next column or finishes the token
func (d *ColMetadataDecoder) nextColumnStage() decodeStage {
	if len(d.columns) < d.columnCount {
		return stageColumnBase
	}
	return stageDone
}

func (d *ColMetadataDecoder) emit(t EventType, data any) {
	if d.opts.Observer == nil {
		return
	}
	d.opts.Observer.OnEvent(Event{
		Type:      t,
		DecodeID:  d.id,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// DecodeColMetadata decodes a complete COLMETADATA token body from b. A
// truncated body is reported as io.ErrUnexpectedEOF.
func DecodeColMetadata(b []byte, opts Options) (*ColMetadataToken, error) {
	tok, err := NewColMetadataDecoder(opts).Decode(NewReader(b))
	if errors.Is(err, ErrNeedMoreData) {
		return nil, fmt.Errorf("truncated COLMETADATA token: %w", io.ErrUnexpectedEOF)
	}
	return tok, err
}
