package domain

// ID suffixes of the two items promotion derives from one ReviewItem.
const (
	SuffixThisWeek = "_f"
	SuffixNextWeek = "_o"
)

// StandbyItem is a finalized quiz record ready for worksheet rendering.
type StandbyItem struct {
	ID          string
	School      string
	Word        string
	Type        QuestionType
	Question    string
	Answer      string
	State       StandbyState
	CreatedDate string
}

// WorksheetRecord is one row of the worksheet log, written for every
// rendered worksheet.
type WorksheetRecord struct {
	ID            string
	School        string
	Word          string
	Type          QuestionType
	Question      string
	Answer        string
	GeneratedDate string
}
