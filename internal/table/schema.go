package table

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/spiral-worksheets/internal/domain"
)

// Column describes one required column of a schema.
type Column struct {
	Key     string
	Header  string
	Aliases []string
	// Prefix allows the sheet header to start with Header (or an alias)
	// instead of matching it exactly. Google Form question columns carry
	// the full question text as their header.
	Prefix bool
}

func (c Column) matches(header string) bool {
	header = strings.TrimSpace(header)
	for _, name := range append([]string{c.Header}, c.Aliases...) {
		if header == name {
			return true
		}
		if c.Prefix && strings.HasPrefix(header, name) {
			return true
		}
	}
	return false
}

// Schema is the fixed, versioned column layout of one table.
type Schema struct {
	Name    string
	Version int
	Columns []Column
}

// Header returns the canonical header row for the schema.
func (s Schema) Header() []string {
	h := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		h[i] = c.Header
	}
	return h
}

// Resolve maps every schema column to its 0-based position in header.
// A column that is absent, or that matches more than one header cell,
// fails the whole schema.
func (s Schema) Resolve(header []string) (map[string]int, error) {
	index := make(map[string]int, len(s.Columns))
	var missing, ambiguous []string

	for _, c := range s.Columns {
		pos := -1
		for i, h := range header {
			if !c.matches(h) {
				continue
			}
			if pos >= 0 {
				ambiguous = append(ambiguous, c.Header)
				pos = -2
				break
			}
			pos = i
		}
		switch {
		case pos == -1:
			missing = append(missing, c.Header)
		case pos >= 0:
			index[c.Key] = pos
		}
	}

	if len(missing) > 0 || len(ambiguous) > 0 {
		return nil, &SchemaError{
			Table:     s.Name,
			Version:   s.Version,
			Missing:   missing,
			Ambiguous: ambiguous,
		}
	}
	return index, nil
}

// SchemaError reports a sheet whose header does not fit its schema.
type SchemaError struct {
	Table     string
	Version   int
	Missing   []string
	Ambiguous []string
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Ambiguous) > 0 {
		parts = append(parts, "ambiguous "+strings.Join(e.Ambiguous, ", "))
	}
	return fmt.Sprintf("table %s v%d: %s", e.Table, e.Version, strings.Join(parts, "; "))
}

func (e *SchemaError) Unwrap() error { return domain.ErrSchemaMismatch }
