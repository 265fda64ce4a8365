package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is tabular role data: a header row followed by data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// Cell returns the value of column col in row, or "" when the row is short.
func (t Table) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// ReadTable reads a CSV or XLSX file. For workbooks sheet selects the
// worksheet; an empty sheet means the first one.
func ReadTable(path, sheet string) (Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(path, sheet)
	case ".csv", ".txt":
		return readCSV(path)
	default:
		return Table{}, fmt.Errorf("%w: unsupported table format %q", ErrMalformedInput, filepath.Ext(path))
	}
}

func readCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("%w: parse %s: %w", ErrMalformedInput, path, err)
		}
		rows = append(rows, record)
	}

	return newTable(path, rows)
}

func readWorkbook(path, sheet string) (Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("%w: open workbook %s: %w", ErrMalformedInput, path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return Table{}, fmt.Errorf("%w: workbook %s has no sheets", ErrMalformedInput, path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return Table{}, fmt.Errorf("%w: read sheet %q of %s: %w", ErrMalformedInput, sheet, path, err)
	}

	return newTable(path, rows)
}

func newTable(path string, rows [][]string) (Table, error) {
	if len(rows) == 0 {
		return Table{}, fmt.Errorf("%w: %s has no header row", ErrMalformedInput, path)
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	return Table{Header: header, Rows: rows[1:]}, nil
}

// roleColumns is the column layout detected in a role table.
type roleColumns struct {
	role        int
	description int
	skills      []int
}

// detectRoleColumns locates the role, description and skill columns. Column
// names are matched case-insensitively. When no explicit skills column exists,
// every column whose name contains "skill" contributes.
func detectRoleColumns(header []string) (roleColumns, error) {
	if len(header) == 0 {
		return roleColumns{}, fmt.Errorf("%w: role table has no columns", ErrMalformedInput)
	}

	byName := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, seen := byName[key]; !seen {
			byName[key] = i
		}
	}
	lookup := func(names ...string) int {
		for _, n := range names {
			if i, ok := byName[n]; ok {
				return i
			}
		}
		return -1
	}

	cols := roleColumns{
		role:        lookup("role", "function", "job title"),
		description: lookup("description"),
	}
	if cols.role < 0 {
		cols.role = 0
	}

	if req := lookup("required skills", "skills"); req >= 0 {
		cols.skills = []int{req}
		return cols, nil
	}
	for i, h := range header {
		if strings.Contains(strings.ToLower(h), "skill") {
			cols.skills = append(cols.skills, i)
		}
	}
	return cols, nil
}

// splitSkills splits a cell on commas and semicolons.
func splitSkills(cell string) []string {
	parts := strings.FieldsFunc(cell, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
