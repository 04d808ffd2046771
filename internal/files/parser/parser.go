package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/vvka-141/pgdash/pkg/pgdash"
	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DefaultDelimiters are tried in order.
var DefaultDelimiters = []rune{',', ';'}

// Result is a parsed source file.
type Result struct {
	Table     *pgdash.Table
	Delimiter rune
	// Recoded is true when the content was decoded as Windows-1252.
	Recoded bool
}

// Parser parses CSV content. The zero value is not usable; use New.
type Parser struct {
	delimiters []rune
}

// New creates a parser trying the given delimiters in order,
// or DefaultDelimiters when none are given.
func New(delimiters ...rune) *Parser {
	if len(delimiters) == 0 {
		delimiters = DefaultDelimiters
	}
	return &Parser{delimiters: delimiters}
}

// Parse decodes content and parses it into a table named tableName.
//
// A delimiter attempt fails when the CSV is malformed (ragged rows, bad
// quoting) or when it yields a single column whose header still contains a
// later candidate delimiter. The first attempt that succeeds wins. When all
// fail the error wraps pgdash.ErrNoDelimiterMatched. Content without a
// header row fails with pgdash.ErrEmptyFile.
func (p *Parser) Parse(tableName string, content []byte) (*Result, error) {
	text, recoded, err := decode(content)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, pgdash.ErrEmptyFile
	}

	var attempts []string
	for i, delim := range p.delimiters {
		records, err := readAll(text, delim)
		if err == nil && i < len(p.delimiters)-1 && looksUnsplit(records, p.delimiters[i+1:]) {
			err = fmt.Errorf("header has a single column containing another delimiter")
		}
		if err != nil {
			attempts = append(attempts, fmt.Sprintf("%q: %v", delim, err))
			continue
		}
		if len(records) == 0 {
			return nil, pgdash.ErrEmptyFile
		}
		return &Result{
			Table:     buildTable(tableName, records),
			Delimiter: delim,
			Recoded:   recoded,
		}, nil
	}

	return nil, fmt.Errorf("%w (%s)", pgdash.ErrNoDelimiterMatched, strings.Join(attempts, "; "))
}

// decode strips a UTF-8 BOM and falls back to Windows-1252 for invalid UTF-8.
func decode(content []byte) (string, bool, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if utf8.Valid(content) {
		return string(content), false, nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(content)
	if err != nil {
		return "", false, fmt.Errorf("failed to decode as windows-1252: %w", err)
	}
	return string(decoded), true, nil
}

func readAll(text string, delim rune) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = 0
	// stray quotes in free text are kept literally
	r.LazyQuotes = true
	r.ReuseRecord = false

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

func looksUnsplit(records [][]string, others []rune) bool {
	if len(records) == 0 || len(records[0]) != 1 {
		return false
	}
	for _, d := range others {
		if strings.ContainsRune(records[0][0], d) {
			return true
		}
	}
	return false
}

func buildTable(name string, records [][]string) *pgdash.Table {
	header, body := records[0], records[1:]
	names := NormalizeColumnNames(header)

	columns := make([]pgdash.Column, len(names))
	values := make([]string, len(body))
	for c := range names {
		for r, row := range body {
			values[r] = row[c]
		}
		columns[c] = pgdash.Column{Name: names[c], Type: InferColumnType(values)}
	}

	rows := make([][]any, len(body))
	for r, row := range body {
		out := make([]any, len(columns))
		for c, col := range columns {
			out[c] = convertValue(row[c], col.Type)
		}
		rows[r] = out
	}

	return &pgdash.Table{Name: name, Columns: columns, Rows: rows}
}
