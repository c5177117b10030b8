// Package promotion implements the promotion stage: accepted Review rows
// become Standby quiz items and leave the Review table.
package promotion

import (
	"log/slog"
	"sync"
	"time"

	"github.com/heartmarshall/spiral-worksheets/internal/table"
)

// Removal modes for promoted Review rows.
const (
	RemovalDelete = "delete"
	RemovalClear  = "clear"
)

const defaultDateFormat = "2006/01/02"

// Sheets names the tables the stage reads and writes.
type Sheets struct {
	Review    string
	Standby   string
	Reference string
}

// Config holds the promotion settings.
type Config struct {
	Removal string
	// SaveToBank appends accepted sentences for unknown words to the
	// reference table.
	SaveToBank bool
	DateFormat string
	Location   *time.Location
}

// Service runs the promotion stage.
type Service struct {
	store  table.Store
	sheets Sheets
	cfg    Config
	now    func() time.Time
	log    *slog.Logger
}

// NewService creates a new promotion stage.
func NewService(
	log *slog.Logger,
	store table.Store,
	sheets Sheets,
	cfg Config,
) *Service {
	if cfg.Removal == "" {
		cfg.Removal = RemovalDelete
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = defaultDateFormat
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{
		store:  store,
		sheets: sheets,
		cfg:    cfg,
		now:    time.Now,
		log:    log.With("service", "promotion"),
	}
}

// runTokens hands out the id token of each run. Tokens are Unix
// milliseconds and strictly increase within the process, so two runs in
// the same millisecond still produce distinct ids.
var runTokens tokenSource

type tokenSource struct {
	mu   sync.Mutex
	last int64
}

func (ts *tokenSource) next(now time.Time) int64 {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	token := now.UnixMilli()
	if token <= ts.last {
		token = ts.last + 1
	}
	ts.last = token
	return token
}
