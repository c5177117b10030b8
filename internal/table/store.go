// Package table is the typed layer over the spreadsheet backend: the Store
// contract every backend implements, fixed per-table schemas, and the
// row codecs that turn sheet rows into domain values.
package table

import "context"

// Cell addresses one sheet cell. Row and Col are 1-based sheet coordinates.
type Cell struct {
	Row   int
	Col   int
	Value string
}

// Store is a synchronous, unbuffered table backend keyed by sheet name.
// Every write is visible to the next read. Row numbers are 1-based and
// include the header row.
type Store interface {
	// ReadAll returns every row of the sheet, header first.
	ReadAll(ctx context.Context, sheet string) ([][]string, error)
	// Append adds rows after the last non-empty row.
	Append(ctx context.Context, sheet string, rows [][]string) error
	// UpdateCells writes the given cells. A single-cell update is the
	// one-element case.
	UpdateCells(ctx context.Context, sheet string, cells ...Cell) error
	// ClearRows blanks the given rows without shifting the rows below.
	ClearRows(ctx context.Context, sheet string, rows []int) error
	// DeleteRows removes the given rows. Implementations apply deletions
	// from the highest row number down so that earlier deletions never
	// shift later targets.
	DeleteRows(ctx context.Context, sheet string, rows []int) error
}
