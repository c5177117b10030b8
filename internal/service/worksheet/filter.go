package worksheet

import (
	"github.com/heartmarshall/spiral-worksheets/internal/domain"
)

// Item sources.
const (
	SourceStandby = "standby"
	SourceLog     = "log"
)

// Filter selects the items to render. Empty fields match everything.
type Filter struct {
	Source       string `json:"source"`
	School       string `json:"school"`
	QuestionType string `json:"question_type"`
	// State applies to the standby source only.
	State string `json:"state"`
	// IncludeAnswers overrides worksheet.include_answers when set.
	IncludeAnswers *bool `json:"include_answers"`
}

// Validate checks all fields and collects all errors.
func (f Filter) Validate() error {
	var errs []domain.FieldError

	switch f.Source {
	case "", SourceStandby, SourceLog:
	default:
		errs = append(errs, domain.FieldError{Field: "source", Message: "must be standby or log"})
	}
	if f.State != "" {
		if _, err := domain.ParseStandbyState(f.State); err != nil {
			errs = append(errs, domain.FieldError{Field: "state", Message: "must be Ready or Waiting"})
		} else if f.Source == SourceLog {
			errs = append(errs, domain.FieldError{Field: "state", Message: "not supported for the log source"})
		}
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func (f Filter) source() string {
	if f.Source == "" {
		return SourceStandby
	}
	return f.Source
}

func (f Filter) match(school string, qt domain.QuestionType) bool {
	if f.School != "" && f.School != school {
		return false
	}
	if f.QuestionType != "" && f.QuestionType != qt.String() {
		return false
	}
	return true
}
