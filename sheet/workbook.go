// Package sheet reads a portfolio from a spreadsheet: an Excel workbook with
// named tables, or a directory of CSV files.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Names of the tables a portfolio workbook must contain.
const (
	RecordsTable    = "rec_tab"
	AssetsTable     = "tic_tab"
	CategoriesTable = "category_tab"
	ResultsTable    = "results_tab"
)

// csvFiles maps each table to its file name in a CSV directory.
var csvFiles = map[string]string{
	RecordsTable:    "records.csv",
	AssetsTable:     "assets.csv",
	CategoriesTable: "categories.csv",
	ResultsTable:    "results.csv",
}

// ErrMissingTable is returned when a workbook lacks one of the portfolio tables.
var ErrMissingTable = errors.New("missing table")

// Table is a named range of cells with a header row.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Column returns the index of the named column, ignoring case, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// Workbook is a set of tables indexed by name.
type Workbook struct {
	tables map[string]*Table
}

// NewWorkbook returns a workbook made of tables.
func NewWorkbook(tables ...*Table) *Workbook {
	wb := &Workbook{tables: make(map[string]*Table)}
	for _, t := range tables {
		wb.tables[t.Name] = t
	}
	return wb
}

// Table returns the named table or an ErrMissingTable error.
func (wb *Workbook) Table(name string) (*Table, error) {
	t, ok := wb.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingTable, name)
	}
	return t, nil
}

// Read reads a workbook from an xlsx file or a directory of CSV files.
func Read(path string) (*Workbook, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return ReadCSVDir(path)
	}
	return ReadXLSX(path)
}

// ReadXLSX reads every Excel table of every sheet of the file.
func ReadXLSX(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open workbook %q: %w", path, err)
	}
	defer f.Close()

	wb := NewWorkbook()
	for _, sheet := range f.GetSheetList() {
		tables, err := f.GetTables(sheet)
		if err != nil {
			return nil, fmt.Errorf("cannot list tables of sheet %q: %w", sheet, err)
		}
		if len(tables) == 0 {
			continue
		}
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("cannot read sheet %q: %w", sheet, err)
		}
		for _, t := range tables {
			table, err := cutTable(t.Name, t.Range, rows)
			if err != nil {
				return nil, fmt.Errorf("sheet %q: %w", sheet, err)
			}
			wb.tables[t.Name] = table
		}
	}
	return wb, nil
}

// cutTable extracts the cells of ref, like "A1:D12", from rows. The first
// row of the range is the header.
func cutTable(name, ref string, rows [][]string) (*Table, error) {
	from, to, ok := strings.Cut(ref, ":")
	if !ok {
		return nil, fmt.Errorf("table %q: invalid range %q", name, ref)
	}
	c1, r1, err := excelize.CellNameToCoordinates(from)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", name, err)
	}
	c2, r2, err := excelize.CellNameToCoordinates(to)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", name, err)
	}
	if r2 < r1 || c2 < c1 {
		return nil, fmt.Errorf("table %q: empty range %q", name, ref)
	}
	cells := make([][]string, 0, r2-r1+1)
	for r := r1; r <= r2; r++ {
		row := make([]string, c2-c1+1)
		if r-1 < len(rows) {
			src := rows[r-1]
			for c := c1; c <= c2 && c-1 < len(src); c++ {
				row[c-c1] = strings.TrimSpace(src[c-1])
			}
		}
		cells = append(cells, row)
	}
	return &Table{Name: name, Header: cells[0], Rows: cells[1:]}, nil
}

// ReadCSVDir reads the portfolio tables from the CSV files of dir.
func ReadCSVDir(dir string) (*Workbook, error) {
	wb := NewWorkbook()
	for name, file := range csvFiles {
		t, err := readCSV(filepath.Join(dir, file))
		if errors.Is(err, os.ErrNotExist) {
			continue // reported as a missing table when used.
		}
		if err != nil {
			return nil, err
		}
		t.Name = name
		wb.tables[name] = t
	}
	return wb, nil
}

func readCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv %q has no header", path)
	}
	width := len(records[0])
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]string, width)
		for i := 0; i < width && i < len(rec); i++ {
			row[i] = strings.TrimSpace(rec[i])
		}
		rows = append(rows, row)
	}
	return &Table{Header: records[0], Rows: rows}, nil
}
