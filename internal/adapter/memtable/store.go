// Package memtable is an in-memory table.Store. It backs the stage tests
// and local dry runs, and can inject a failure into any operation.
package memtable

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/heartmarshall/spiral-worksheets/internal/domain"
	"github.com/heartmarshall/spiral-worksheets/internal/table"
)

// Op names a Store operation for failure injection and call recording.
type Op string

const (
	OpRead   Op = "read"
	OpAppend Op = "append"
	OpUpdate Op = "update"
	OpClear  Op = "clear"
	OpDelete Op = "delete"
)

// Call records one mutating operation.
type Call struct {
	Op    Op
	Sheet string
	Rows  []int
}

type failKey struct {
	op    Op
	sheet string
}

// Store keeps every sheet as a slice of string rows.
type Store struct {
	mu     sync.Mutex
	sheets map[string][][]string
	fail   map[failKey]error
	calls  []Call
}

var _ table.Store = (*Store)(nil)

// New creates an empty Store.
func New() *Store {
	return &Store{
		sheets: make(map[string][][]string),
		fail:   make(map[failKey]error),
	}
}

// Seed replaces the content of sheet, creating it if needed.
func (s *Store) Seed(sheet string, rows ...[]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[sheet] = copyRows(rows)
}

// Rows returns a copy of the content of sheet.
func (s *Store) Rows(sheet string) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRows(s.sheets[sheet])
}

// FailOn makes every later op on sheet return err.
// Passing a nil err removes the injected failure.
func (s *Store) FailOn(op Op, sheet string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, failKey{op, sheet})
		return
	}
	s.fail[failKey{op, sheet}] = err
}

// Calls returns the mutating operations applied so far.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

func (s *Store) ReadAll(ctx context.Context, sheet string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.sheet(ctx, OpRead, sheet)
	if err != nil {
		return nil, err
	}
	return copyRows(rows), nil
}

func (s *Store) Append(ctx context.Context, sheet string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, err := s.sheet(ctx, OpAppend, sheet)
	if err != nil {
		return err
	}
	for len(existing) > 0 && blank(existing[len(existing)-1]) {
		existing = existing[:len(existing)-1]
	}
	first := len(existing) + 1
	s.sheets[sheet] = append(existing, copyRows(rows)...)
	s.record(OpAppend, sheet, rowRange(first, len(rows)))
	return nil
}

func (s *Store) UpdateCells(ctx context.Context, sheet string, cells ...table.Cell) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.sheet(ctx, OpUpdate, sheet)
	if err != nil {
		return err
	}
	for _, c := range cells {
		if c.Row < 1 || c.Col < 1 {
			return fmt.Errorf("memtable: cell %d:%d out of range", c.Row, c.Col)
		}
	}
	touched := make([]int, 0, len(cells))
	for _, c := range cells {
		for len(rows) < c.Row {
			rows = append(rows, nil)
		}
		row := rows[c.Row-1]
		for len(row) < c.Col {
			row = append(row, "")
		}
		row[c.Col-1] = c.Value
		rows[c.Row-1] = row
		touched = append(touched, c.Row)
	}
	s.sheets[sheet] = rows
	s.record(OpUpdate, sheet, touched)
	return nil
}

func (s *Store) ClearRows(ctx context.Context, sheet string, rowNums []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.sheet(ctx, OpClear, sheet)
	if err != nil {
		return err
	}
	if err := checkRows(rows, rowNums); err != nil {
		return err
	}
	for _, n := range rowNums {
		rows[n-1] = make([]string, len(rows[n-1]))
	}
	s.record(OpClear, sheet, rowNums)
	return nil
}

// DeleteRows validates every target before removing anything, then
// deletes from the highest row number down.
func (s *Store) DeleteRows(ctx context.Context, sheet string, rowNums []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.sheet(ctx, OpDelete, sheet)
	if err != nil {
		return err
	}
	if err := checkRows(rows, rowNums); err != nil {
		return err
	}
	order := slices.Clone(rowNums)
	slices.Sort(order)
	order = slices.Compact(order)
	slices.Reverse(order)
	for _, n := range order {
		rows = slices.Delete(rows, n-1, n)
	}
	s.sheets[sheet] = rows
	s.record(OpDelete, sheet, order)
	return nil
}

func (s *Store) sheet(ctx context.Context, op Op, sheet string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := s.fail[failKey{op, sheet}]; ok {
		return nil, err
	}
	rows, ok := s.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("memtable: sheet %q: %w", sheet, domain.ErrNotFound)
	}
	return rows, nil
}

func (s *Store) record(op Op, sheet string, rows []int) {
	s.calls = append(s.calls, Call{Op: op, Sheet: sheet, Rows: slices.Clone(rows)})
}

func checkRows(rows [][]string, nums []int) error {
	for _, n := range nums {
		if n < 1 || n > len(rows) {
			return fmt.Errorf("memtable: row %d: %w", n, domain.ErrNotFound)
		}
	}
	return nil
}

func rowRange(first, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = first + i
	}
	return out
}

func blank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

func copyRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out
}
