// Package mdtable parses pipe-delimited Markdown tables out of free-form
// LLM output into a rectangular in-memory table.
package mdtable

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoTable means no line in the input has the header shape
	// (starts and ends with a pipe). The caller should show raw text.
	ErrNoTable = errors.New("no markdown table found")
	// ErrMalformedSeparator means a header-shaped line was found but the
	// next line is not a valid separator row like |---|---|.
	ErrMalformedSeparator = errors.New("malformed table separator")
)

// Table is the normalized result of a successful parse. Every row has
// exactly len(Columns) cells.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Parser holds parse policy. The zero value is the default policy:
// ragged data rows are padded with empty cells or truncated to fit the
// header width. With RejectRagged set, ragged rows are dropped instead.
type Parser struct {
	RejectRagged bool
}

// Parse parses with the default pad/truncate policy.
func Parse(raw string) (*Table, error) {
	return Parser{}.Parse(raw)
}

// Parse locates the first contiguous pipe-delimited block in raw and
// parses it. It is a pure function over its input.
//
// The header is the first non-blank line that starts and ends with a
// pipe, and it must be immediately followed by a separator line. Data
// rows run until the first blank line, first non-pipe line, or end of
// input. Markdown only renders contiguous pipe-blocks as tables, so a
// blank line inside the block ends it rather than being skipped.
func (p Parser) Parse(raw string) (*Table, error) {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	h := -1
	for i, line := range lines {
		if line == "" {
			continue
		}
		if isPipeLine(line) {
			h = i
			break
		}
	}
	if h == -1 {
		return nil, fmt.Errorf("%w (%d lines scanned)", ErrNoTable, len(lines))
	}

	if h+1 >= len(lines) || !isSeparatorLine(lines[h+1]) {
		return nil, fmt.Errorf("header at line %d: %w", h+1, ErrMalformedSeparator)
	}

	columns := splitCells(lines[h])
	table := &Table{Columns: columns, Rows: [][]string{}}

	for _, line := range lines[h+2:] {
		// A blank or non-pipe line marks the end of the table, not an error.
		if line == "" || !isPipeLine(line) {
			break
		}
		cells := splitCells(line)
		if len(cells) != len(columns) {
			if p.RejectRagged {
				continue
			}
			cells = normalize(cells, len(columns))
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, nil
}

// Markdown re-serializes the table. Parsing the output again yields the
// same columns and rows.
func (t *Table) Markdown() string {
	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" ")
			b.WriteString(strings.ReplaceAll(c, "|", `\|`))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	writeRow(t.Columns)
	b.WriteString("|")
	for range t.Columns {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for _, row := range t.Rows {
		writeRow(row)
	}
	return b.String()
}

func isPipeLine(line string) bool {
	return len(line) >= 2 && strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|")
}

// isSeparatorLine reports whether line is a valid header/data separator:
// only pipes, hyphens, colons and whitespace, with at least one hyphen.
func isSeparatorLine(line string) bool {
	if !strings.Contains(line, "-") {
		return false
	}
	for _, r := range line {
		switch r {
		case '|', '-', ':', ' ', '\t':
		default:
			return false
		}
	}
	return true
}

// splitCells strips the outer pipes and splits the remainder on
// unescaped pipe characters. An escaped pipe (`\|`) stays in its cell as
// a literal pipe. Cells are trimmed; empty cells are kept.
func splitCells(line string) []string {
	inner := strings.TrimSuffix(strings.TrimPrefix(line, "|"), "|")

	var cells []string
	var cur strings.Builder
	escaped := false
	for _, r := range inner {
		switch {
		case escaped:
			if r != '|' {
				cur.WriteRune('\\')
			}
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		cur.WriteRune('\\')
	}
	cells = append(cells, strings.TrimSpace(cur.String()))
	return cells
}

// normalize pads cells with empty strings on the right, or truncates
// trailing cells, so that len(cells) == width.
func normalize(cells []string, width int) []string {
	if len(cells) > width {
		return cells[:width]
	}
	for len(cells) < width {
		cells = append(cells, "")
	}
	return cells
}
