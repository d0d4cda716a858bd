// Package tabular reads and writes tab-delimited tables with a header row.
package tabular

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fak/pfam-map-loader/internal/domain"
)

// Table is an in-memory tab-delimited table
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates an empty table with the given header
func New(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Index returns the position of a column, or -1
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// MustIndex returns the position of a column or a configuration error
func (t *Table) MustIndex(name string) (int, error) {
	i := t.Index(name)
	if i < 0 {
		return -1, fmt.Errorf("%w: column %q not in header %v", domain.ErrConfiguration, name, t.Columns)
	}
	return i, nil
}

// Append adds a row
func (t *Table) Append(row ...string) {
	t.Rows = append(t.Rows, row)
}

// SameHeader reports whether two tables have identical columns in the same order
func (t *Table) SameHeader(o *Table) bool {
	if len(t.Columns) != len(o.Columns) {
		return false
	}
	for i := range t.Columns {
		if t.Columns[i] != o.Columns[i] {
			return false
		}
	}
	return true
}

// Read parses a header row followed by data rows. A row with fewer fields
// than the header is rejected; extra fields are kept.
func Read(r io.Reader) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var t *Table
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r\n")
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if t == nil {
			t = New(fields...)
			continue
		}
		if len(fields) < len(t.Columns) {
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d",
				domain.ErrMalformedInput, line, len(fields), len(t.Columns))
		}
		t.Rows = append(t.Rows, fields)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	if t == nil {
		return nil, fmt.Errorf("%w: missing header row", domain.ErrMalformedInput)
	}
	return t, nil
}

// Write renders the table, header first
func Write(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(t.Columns, "\t") + "\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.Rows {
		if _, err := bw.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return bw.Flush()
}

// Bytes renders the table into memory
func (t *Table) Bytes() []byte {
	var buf bytes.Buffer
	// bytes.Buffer writes never fail
	_ = Write(&buf, t)
	return buf.Bytes()
}
