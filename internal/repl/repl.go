package repl

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/leengari/tdsmeta/internal/result"
	"github.com/leengari/tdsmeta/internal/tds"
)

// Start runs the REPL on stdin and stdout
func Start(opts tds.Options) {
	Run(os.Stdin, os.Stdout, opts)
}

// Run reads hex fragments of a token stream, one per line, and prints every
// token a fragment completes. A token may span any number of lines.
func Run(in io.Reader, out io.Writer, opts tds.Options) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	fmt.Fprintln(out, "tdsmeta token stream decoder")
	fmt.Fprintln(out, "Enter hex bytes; 'status', 'reset', 'exit' or '\\q'.")

	parser := tds.NewStreamParser(opts)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		if line == "exit" || line == "\\q" {
			break
		}

		switch line {
		case "status":
			fmt.Fprintf(out, "offset=%d pending=%t\n", parser.Offset(), parser.Pending())
			continue
		case "reset":
			parser = tds.NewStreamParser(opts)
			fmt.Fprintln(out, "parser reset")
			continue
		}

		chunk, err := ParseHex(line)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}

		tokens, err := parser.Feed(chunk)
		for _, tok := range tokens {
			PrintResult(out, result.FromToken(tok))
		}
		if err != nil {
			PrintResult(out, result.FromError(err))
			fmt.Fprintln(out, "parser failed; 'reset' to start a new stream")
			continue
		}
		if len(tokens) == 0 && parser.Pending() {
			fmt.Fprintf(out, "(need more data, %d bytes read)\n", parser.Offset())
		}
	}
}

// ParseHex decodes a line of hex, ignoring whitespace and 0x prefixes
func ParseHex(line string) ([]byte, error) {
	var b strings.Builder
	for _, field := range strings.Fields(line) {
		field = strings.TrimPrefix(strings.TrimPrefix(field, "0x"), "0X")
		b.WriteString(field)
	}
	out, err := hex.DecodeString(b.String())
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return out, nil
}

func PrintResult(w io.Writer, res *result.Result) {
	if res.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", res.Error)
		return
	}

	if res.Message != "" {
		fmt.Fprintln(w, res.Message)
	}

	if len(res.Rows) > 0 || len(res.Columns) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

		// Header
		for i, col := range res.Columns {
			fmt.Fprintf(tw, "%s", col)
			if i < len(res.Columns)-1 {
				fmt.Fprintf(tw, "\t")
			}
		}
		fmt.Fprintln(tw)

		// Separator
		for i := range res.Columns {
			fmt.Fprintf(tw, "---")
			if i < len(res.Columns)-1 {
				fmt.Fprintf(tw, "\t")
			}
		}
		fmt.Fprintln(tw)

		// Rows
		for _, row := range res.Rows {
			for i, col := range res.Columns {
				val, ok := row[col]
				if !ok {
					fmt.Fprintf(tw, "-")
				} else {
					fmt.Fprintf(tw, "%v", val)
				}
				if i < len(res.Columns)-1 {
					fmt.Fprintf(tw, "\t")
				}
			}
			fmt.Fprintln(tw)
		}
		tw.Flush()
	}
}
