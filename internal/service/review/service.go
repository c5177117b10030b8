// Package review holds the reviewer desk operations that sit between the
// stages: bulk decisions and the pipeline dashboard.
package review

import (
	"log/slog"

	"github.com/heartmarshall/spiral-worksheets/internal/table"
)

// Sheets names the tables the desk reads and writes.
type Sheets struct {
	Intake       string
	Review       string
	Standby      string
	WorksheetLog string
	Reference    string
}

// Service provides reviewer desk operations.
type Service struct {
	store  table.Store
	sheets Sheets
	log    *slog.Logger
}

// NewService creates a new review desk.
func NewService(log *slog.Logger, store table.Store, sheets Sheets) *Service {
	return &Service{
		store:  store,
		sheets: sheets,
		log:    log.With("service", "review"),
	}
}
