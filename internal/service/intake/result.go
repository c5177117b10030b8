package intake

import "github.com/heartmarshall/spiral-worksheets/internal/domain"

// Result summarises one import run. Counts cover resolved submissions
// only; Failed counts submissions left unprocessed for the next run.
type Result struct {
	Submissions int                `json:"submissions"`
	Words       int                `json:"words"`
	FromBank    int                `json:"from_bank"`
	Generated   int                `json:"generated"`
	Failed      int                `json:"failed"`
	Errors      []domain.ItemError `json:"errors"`
}

// Counts returns the numeric fields keyed by their JSON names.
func (r Result) Counts() map[string]int {
	return map[string]int{
		"submissions": r.Submissions,
		"words":       r.Words,
		"from_bank":   r.FromBank,
		"generated":   r.Generated,
		"failed":      r.Failed,
	}
}
