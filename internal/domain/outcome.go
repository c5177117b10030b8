package domain

import "fmt"

// ItemError describes one row-level failure inside a stage run. Item
// failures are counted and reported; they never abort the run.
type ItemError struct {
	Row    int    `json:"row"`
	Item   string `json:"item"`
	Reason string `json:"reason"`
}

func (e ItemError) String() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d (%s): %s", e.Row, e.Item, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Item, e.Reason)
}
