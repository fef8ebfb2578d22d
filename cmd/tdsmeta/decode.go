package main

import (
	"fmt"
	"io"
	"os"

	"github.com/leengari/tdsmeta/internal/repl"
	"github.com/leengari/tdsmeta/internal/result"
	"github.com/leengari/tdsmeta/internal/tds"
)

// decodeFile decodes a captured token stream and prints every token. With
// chunkSize > 0 the capture is fed in fragments of that size.
func decodeFile(w io.Writer, path string, hexInput bool, chunkSize int, opts tds.Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read capture: %w", err)
	}
	if hexInput {
		if data, err = repl.ParseHex(string(data)); err != nil {
			return err
		}
	}
	return decodeStream(w, data, chunkSize, opts)
}

func decodeStream(w io.Writer, data []byte, chunkSize int, opts tds.Options) error {
	if chunkSize <= 0 {
		chunkSize = len(data)
	}

	parser := tds.NewStreamParser(opts)
	for off := 0; off < len(data); off += chunkSize {
		end := min(off+chunkSize, len(data))
		tokens, err := parser.Feed(data[off:end])
		for _, tok := range tokens {
			repl.PrintResult(w, result.FromToken(tok))
		}
		if err != nil {
			return err
		}
	}

	if parser.Pending() {
		return fmt.Errorf("capture ends inside a token at offset %d: %w", parser.Offset(), io.ErrUnexpectedEOF)
	}
	return nil
}
