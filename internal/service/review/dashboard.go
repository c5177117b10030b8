package review

import (
	"context"
	"fmt"

	"github.com/heartmarshall/spiral-worksheets/internal/domain"
	"github.com/heartmarshall/spiral-worksheets/internal/table"
)

// Dashboard counts the rows at every step of the pipeline.
type Dashboard struct {
	Submissions SubmissionCounts `json:"submissions"`
	Review      ReviewCounts     `json:"review"`
	Standby     StandbyCounts    `json:"standby"`
	Worksheets  int              `json:"worksheets"`
	BankWords   int              `json:"bank_words"`
}

// SubmissionCounts splits intake rows by status.
type SubmissionCounts struct {
	Unprocessed int `json:"unprocessed"`
	Done        int `json:"done"`
}

// ReviewCounts splits Review rows by decision and question state.
type ReviewCounts struct {
	Total            int `json:"total"`
	Pending          int `json:"pending"`
	PendingApproval  int `json:"pending_approval"`
	Accepted         int `json:"accepted"`
	Invalid          int `json:"invalid"`
	AwaitingQuestion int `json:"awaiting_question"`
}

// StandbyCounts splits Standby rows by state.
type StandbyCounts struct {
	Total   int `json:"total"`
	Ready   int `json:"ready"`
	Waiting int `json:"waiting"`
}

// Dashboard reads every table once and counts its rows. The Standby
// table and the worksheet log may not exist yet.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard

	intake, err := table.Load(ctx, s.store, s.sheets.Intake, table.IntakeSchema)
	if err != nil {
		return d, fmt.Errorf("load intake: %w", err)
	}
	for _, sub := range table.Submissions(intake) {
		if sub.Status.IsDone() {
			d.Submissions.Done++
		} else {
			d.Submissions.Unprocessed++
		}
	}

	review, err := table.LoadOptional(ctx, s.store, s.sheets.Review, table.ReviewSchema)
	if err != nil {
		return d, fmt.Errorf("load review: %w", err)
	}
	for _, r := range review.Rows {
		d.Review.Total++
		item, err := table.DecodeReview(r)
		switch {
		case err != nil:
			d.Review.Invalid++
		case item.Decision.IsAccepting():
			d.Review.Accepted++
		case item.Decision == domain.DecisionPendingApproval:
			d.Review.PendingApproval++
		default:
			d.Review.Pending++
		}
		if item.NextType != "" && item.NextQuestion == "" {
			d.Review.AwaitingQuestion++
		}
	}

	standby, err := table.LoadOptional(ctx, s.store, s.sheets.Standby, table.StandbySchema)
	if err != nil {
		return d, fmt.Errorf("load standby: %w", err)
	}
	for _, r := range standby.Rows {
		d.Standby.Total++
		item, err := table.DecodeStandby(r)
		if err != nil {
			continue
		}
		if item.State == domain.StandbyReady {
			d.Standby.Ready++
		} else {
			d.Standby.Waiting++
		}
	}

	wsLog, err := table.LoadOptional(ctx, s.store, s.sheets.WorksheetLog, table.WorksheetLogSchema)
	if err != nil {
		return d, fmt.Errorf("load worksheet log: %w", err)
	}
	d.Worksheets = len(wsLog.Rows)

	ref, err := table.LoadOptional(ctx, s.store, s.sheets.Reference, table.ReferenceSchema)
	if err != nil {
		return d, fmt.Errorf("load reference: %w", err)
	}
	d.BankWords = len(table.SentenceBank(ref))

	return d, nil
}
