package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// ImportResult summarizes a CSV import.
type ImportResult struct {
	Supplied  int      // Non-blank data rows in the file
	Applied   int      // Rows whose every value was applied
	Unmatched int      // Rows whose key matched no entity
	Failed    int      // Rows aborted by a rejected value
	Ignored   []string // Header columns that match no grid column
}

// RowError describes the first rejected value of one CSV row.
type RowError struct {
	Line   int    // 1-based line in the file
	Key    string // ID or name the row was matched by
	Column string // Header of the rejected cell
	Err    error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d (%s), %s: %v", e.Line, e.Key, e.Column, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// ImportError collects every row that failed during an import.
// Rows not listed here were applied.
type ImportError struct {
	Rows     []RowError
	Supplied int
}

func (e *ImportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "import: %d of %d rows failed", len(e.Rows), e.Supplied)
	for _, r := range e.Rows {
		b.WriteString("\n  ")
		b.WriteString(r.Error())
	}
	return b.String()
}

// Unwrap exposes the per-row causes to errors.Is and errors.As.
func (e *ImportError) Unwrap() []error {
	errs := make([]error, len(e.Rows))
	for i, r := range e.Rows {
		errs[i] = r
	}
	return errs
}

// ExportCSV writes the grid as CSV: one header of column names and one record
// per row, formatted the way the grid displays it.
func ExportCSV(w io.Writer, g *Grid) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(g.ColumnNames()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(g.Columns()))
	for row := 0; row < g.RowCount(); row++ {
		for col := range record {
			record[col] = g.Value(row, col)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", row+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// importColumn is one CSV column mapped onto the grid.
type importColumn struct {
	pos    int
	header string
	col    Column
}

// ImportCSV applies a CSV file to the grid's session. Rows are matched by the
// ID column, or by Name when the file has no ID column. A rejected value
// aborts the rest of its row; all row failures are returned together as an
// *ImportError alongside the result. limit caps the file size in bytes.
func ImportCSV(r io.Reader, g *Grid, limit int64) (ImportResult, error) {
	var result ImportResult

	cr := csv.NewReader(ImportReader(r, limit))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return result, errors.New("empty file: missing header row")
	}
	if err != nil {
		return result, csvReadError(err)
	}

	hdr := MakeHeaderIndex(header)
	idPos, byID := hdr.Lookup("ID")
	namePos, byName := hdr.Lookup("Name")
	if !byID && !byName {
		return result, errors.New("missing key column: need ID or Name")
	}

	columns, ignored := mapImportColumns(header, g)
	result.Ignored = ignored

	var rowErrs []RowError
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, csvReadError(err)
		}
		if isEmptyRow(record) {
			continue
		}
		result.Supplied++
		line, _ := cr.FieldPos(0)

		var (
			row   int
			found bool
			key   string
		)
		if byID {
			key = cell(record, idPos)
			if id, err := strconv.Atoi(key); err == nil {
				row, found = g.RowByKey(id)
			}
		} else {
			key = cell(record, namePos)
			row, found = g.RowByName(key)
		}
		if !found {
			result.Unmatched++
			continue
		}

		entity, _ := g.Row(row)
		if rowErr, failed := applyImportRow(g.session, entity.Key, record, columns); failed {
			rowErr.Line = line
			rowErr.Key = key
			rowErrs = append(rowErrs, rowErr)
			result.Failed++
			continue
		}
		result.Applied++
	}

	g.syncColumns()
	g.session.logger.Info("csv imported",
		"rows", result.Supplied,
		"applied", result.Applied,
		"unmatched", result.Unmatched,
		"failed", result.Failed,
	)

	if len(rowErrs) > 0 {
		return result, &ImportError{Rows: rowErrs, Supplied: result.Supplied}
	}
	return result, nil
}

// mapImportColumns resolves every data header against the grid. Move columns
// are applied before level columns so a level never lands on a slot that is
// about to receive its move.
func mapImportColumns(header []string, g *Grid) ([]importColumn, []string) {
	var (
		columns []importColumn
		ignored []string
	)
	for pos, h := range header {
		col, ok := g.ColumnByName(h)
		if !ok {
			if name := CleanCell(h); name != "" {
				ignored = append(ignored, name)
			}
			continue
		}
		if !col.Editable() {
			continue
		}
		columns = append(columns, importColumn{pos: pos, header: CleanCell(h), col: col})
	}
	slices.SortStableFunc(columns, func(a, b importColumn) int {
		return int(a.col.Kind) - int(b.col.Kind)
	})
	return columns, ignored
}

// applyImportRow writes one record's values and stops at the first rejection.
func applyImportRow(s *Session, key int, record []string, columns []importColumn) (RowError, bool) {
	for _, ic := range columns {
		if err := s.ApplyCell(key, ic.col, cell(record, ic.pos)); err != nil {
			return RowError{Column: ic.header, Err: err}, true
		}
	}
	return RowError{}, false
}

// cell returns a cleaned record value; short records read as blank.
func cell(record []string, pos int) string {
	if pos < 0 || pos >= len(record) {
		return ""
	}
	return CleanCell(record[pos])
}

func csvReadError(err error) error {
	if errors.Is(err, ErrFileTooLarge) {
		return err
	}
	return fmt.Errorf("invalid csv: %w", err)
}
