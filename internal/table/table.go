package table

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/heartmarshall/spiral-worksheets/internal/domain"
)

// Table is a validated snapshot of one sheet.
type Table struct {
	Sheet  string
	Schema Schema
	Rows   []Row

	header []string
	index  map[string]int
}

// Row is one non-blank data row of a Table.
type Row struct {
	// Number is the 1-based sheet row; the header is row 1.
	Number int
	values []string
	index  map[string]int
}

// Get returns the trimmed value of the column with the given key.
func (r Row) Get(key string) string {
	pos, ok := r.index[key]
	if !ok || pos >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[pos])
}

// Load reads sheet from store and validates its header against schema.
// Fully blank data rows are skipped but keep their place in the numbering.
func Load(ctx context.Context, store Store, sheet string, schema Schema) (*Table, error) {
	values, err := store.ReadAll(ctx, sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheet, err)
	}
	if len(values) == 0 {
		return nil, &SchemaError{Table: schema.Name, Version: schema.Version, Missing: schema.Header()}
	}
	return build(sheet, schema, values)
}

// LoadOrInit is Load for output tables: an empty sheet gets the schema
// header written to it and is returned as an empty table.
func LoadOrInit(ctx context.Context, store Store, sheet string, schema Schema) (*Table, error) {
	values, err := store.ReadAll(ctx, sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheet, err)
	}
	if len(values) == 0 {
		header := schema.Header()
		if err := store.Append(ctx, sheet, [][]string{header}); err != nil {
			return nil, fmt.Errorf("write %s header: %w", sheet, err)
		}
		values = [][]string{header}
	}
	return build(sheet, schema, values)
}

// LoadOptional is Load for tables that may not exist yet: a missing or
// empty sheet yields an empty table instead of an error.
func LoadOptional(ctx context.Context, store Store, sheet string, schema Schema) (*Table, error) {
	values, err := store.ReadAll(ctx, sheet)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && len(values) == 0) {
		return &Table{Sheet: sheet, Schema: schema, index: map[string]int{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheet, err)
	}
	return build(sheet, schema, values)
}

func build(sheet string, schema Schema, values [][]string) (*Table, error) {
	header := values[0]
	index, err := schema.Resolve(header)
	if err != nil {
		return nil, err
	}

	t := &Table{
		Sheet:  sheet,
		Schema: schema,
		header: header,
		index:  index,
	}
	for i, v := range values[1:] {
		if isBlank(v) {
			continue
		}
		t.Rows = append(t.Rows, Row{Number: i + 2, values: v, index: index})
	}
	return t, nil
}

// Col returns the 1-based sheet column of key, or 0 when the schema has
// no such column.
func (t *Table) Col(key string) int {
	pos, ok := t.index[key]
	if !ok {
		return 0
	}
	return pos + 1
}

// Cell builds a Cell for the column key on the given sheet row.
func (t *Table) Cell(row int, key, value string) Cell {
	return Cell{Row: row, Col: t.Col(key), Value: value}
}

// Encode lays values out in the sheet's own column order. Columns the
// schema does not know about are left empty.
func (t *Table) Encode(values map[string]string) []string {
	row := make([]string, len(t.header))
	for key, v := range values {
		if pos, ok := t.index[key]; ok {
			row[pos] = v
		}
	}
	return row
}

func isBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
