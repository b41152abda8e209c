package ctrldef

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrUnterminatedQuote = errors.New("unterminated quoted cell")
)

const utf8BOM = "\uFEFF"

// ReadTable splits comma separated UTF-8 text into rows of raw cells.
//
// Unlike encoding/csv the quotes of a quoted cell are kept verbatim, since
// Coerce treats "0xFF" and 0xFF differently. Commas inside quotes do not
// split the cell. A quoted cell may not span lines.
func ReadTable(r io.Reader) ([][]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var rows [][]string
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if line == 1 {
			text = strings.TrimPrefix(text, utf8BOM)
		}

		cells, err := splitRow(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, cells)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading table: %w", err)
	}

	return rows, nil
}

// splitRow splits a single line on delimiters outside quotes.
func splitRow(text string) ([]string, error) {
	cells := make([]string, 0, strings.Count(text, string(CellDelimiter))+1)

	var (
		start    int
		inQuotes bool
	)
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c == CellQuote:
			// "" inside a quoted cell is an escaped quote, not a close
			if inQuotes && i+1 < len(text) && text[i+1] == CellQuote {
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == CellDelimiter && !inQuotes:
			cells = append(cells, text[start:i])
			start = i + 1
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("%w: %s", ErrUnterminatedQuote, text[start:])
	}

	return append(cells, text[start:]), nil
}
