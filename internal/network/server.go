package network

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/leengari/tdsmeta/internal/result"
	"github.com/leengari/tdsmeta/internal/tds"
)

const readBufferSize = 4096

// Start starts the TCP decode server
func Start(port int, opts tds.Options) {
	addr := fmt.Sprintf(":%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		slog.Error("Failed to bind to port", "port", port, "error", err)
		return
	}
	defer listener.Close()

	slog.Info("Running on port", "port", port)
	Serve(listener, opts)
}

// Serve accepts connections until the listener is closed. Each connection
// carries one raw token stream; decoded tokens are written back as JSON
// results, one per line.
func Serve(listener net.Listener, opts tds.Options) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Error("Failed to accept connection", "error", err)
			continue
		}
		go handleConnection(conn, opts)
	}
}

func handleConnection(conn net.Conn, opts tds.Options) {
	defer conn.Close()

	// Register logging observer for decode tracing
	opts.Observer = tds.Observers(opts.Observer, tds.NewLoggingObserver())
	parser := tds.NewStreamParser(opts)
	encoder := json.NewEncoder(conn)

	buf := make([]byte, readBufferSize)
	for {
		n, readErr := conn.Read(buf)
		if n > 0 {
			tokens, err := parser.Feed(buf[:n])
			for _, tok := range tokens {
				if err := encoder.Encode(result.FromToken(tok)); err != nil {
					slog.Error("encode error", "error", err)
					return
				}
			}
			if err != nil {
				// the stream cannot be resynchronized
				slog.Error("decode error", "remote", conn.RemoteAddr().String(), "offset", parser.Offset(), "error", err)
				_ = encoder.Encode(result.FromError(err))
				return
			}
		}

		if readErr != nil {
			if readErr == io.EOF {
				if parser.Pending() {
					_ = encoder.Encode(result.FromError(fmt.Errorf(
						"stream ended inside a token at offset %d: %w", parser.Offset(), io.ErrUnexpectedEOF)))
				}
				return // Connection closed gracefully
			}
			slog.Error("read error", "error", readErr)
			return
		}
	}
}
