// Package intake implements the import stage: parent submissions become
// word-level Review rows with an example sentence each.
package intake

import (
	"errors"
	"log/slog"

	"github.com/heartmarshall/spiral-worksheets/internal/llm"
	"github.com/heartmarshall/spiral-worksheets/internal/table"
)

// Missing-word policies for generated sentences.
const (
	PolicyAccept = "accept"
	PolicyRetry  = "retry"
	PolicyReject = "reject"
)

// ErrWordMissing is returned for a word whose generated sentence does not
// contain it.
var ErrWordMissing = errors.New("generated sentence does not contain the word")

// Sheets names the tables the stage reads and writes.
type Sheets struct {
	Intake    string
	Reference string
	Review    string
}

// Config holds the sentence generation settings.
type Config struct {
	Audience    string
	Temperature float64
	Policy      string
	// Attempts is the number of generation attempts per word under the
	// retry policy.
	Attempts int
}

// Service runs the import stage.
type Service struct {
	store  table.Store
	llm    llm.Completer
	sheets Sheets
	cfg    Config
	log    *slog.Logger
}

// NewService creates a new import stage.
func NewService(
	log *slog.Logger,
	store table.Store,
	completer llm.Completer,
	sheets Sheets,
	cfg Config,
) *Service {
	if cfg.Policy == "" {
		cfg.Policy = PolicyRetry
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}
	return &Service{
		store:  store,
		llm:    completer,
		sheets: sheets,
		cfg:    cfg,
		log:    log.With("service", "intake"),
	}
}
