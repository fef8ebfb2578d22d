package tds

import "github.com/cockroachdb/errors"

// ===========================================================================
// TOKEN STREAM
// ===========================================================================
//
// The StreamParser splits a tabular result stream into tokens. Bytes arrive
// in arbitrary fragments; a token that is only partly buffered is resumed on
// the next Feed. There is no resynchronization marker in the stream, so the
// first decode error is fatal for the parser.
//
// ===========================================================================

// StreamParser dispatches tokens from a byte stream to their decoders
type StreamParser struct {
	opts   Options
	reader *Reader

	current TokenType
	inToken bool
	colMeta *ColMetadataDecoder

	err error
}

// NewStreamParser creates a parser positioned before a token id
func NewStreamParser(opts Options) *StreamParser {
	return &StreamParser{
		opts:   opts,
		reader: NewReader(nil),
	}
}

// Feed buffers chunk and returns every token it completes, in stream order.
// On a decode error the tokens completed before it are returned with it.
func (p *StreamParser) Feed(chunk []byte) ([]Token, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.reader.Feed(chunk)

	var tokens []Token
	for {
		tok, err := p.next()
		if errors.Is(err, ErrNeedMoreData) {
			return tokens, nil
		}
		if err != nil {
			p.err = err
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
}

// Pending reports whether a token has started but not completed
func (p *StreamParser) Pending() bool {
	return p.inToken || p.reader.Buffered() > 0
}

// Offset returns the stream position of the next unread byte
func (p *StreamParser) Offset() int64 {
	return p.reader.Offset()
}

func (p *StreamParser) next() (Token, error) {
	if !p.inToken {
		start := p.reader.Offset()
		id, err := p.reader.ReadUint8()
		if err != nil {
			return nil, err
		}
		p.current = TokenType(id)
		switch p.current {
		case TokenColMetadata:
			p.colMeta = NewColMetadataDecoder(p.opts)
		case TokenDone, TokenDoneProc, TokenDoneInProc:
		default:
			return nil, &UnsupportedTokenError{Type: p.current, Offset: start}
		}
		p.inToken = true
	}

	var tok Token
	switch p.current {
	case TokenColMetadata:
		t, err := p.colMeta.Decode(p.reader)
		if err != nil {
			return nil, err
		}
		p.colMeta = nil
		tok = t
	default:
		t, err := p.readDone()
		if err != nil {
			return nil, err
		}
		tok = t
	}
	p.inToken = false
	return tok, nil
}

// readDone reads the DONE family body: status, current command and a row
// count that widens to 64 bits in TDS 7.2
func (p *StreamParser) readDone() (*DoneToken, error) {
	r := p.reader
	m := r.mark()
	t := &DoneToken{Type: p.current}
	var err error
	defer func() {
		if err != nil {
			r.rewind(m)
		}
	}()

	if t.Status, err = r.ReadUint16LE(); err != nil {
		return nil, err
	}
	if t.CurCmd, err = r.ReadUint16LE(); err != nil {
		return nil, err
	}
	if p.opts.TDSVersion.AtLeast7_2() {
		t.RowCount, err = r.ReadUint64LE()
	} else {
		var n uint32
		n, err = r.ReadUint32LE()
		t.RowCount = uint64(n)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}
