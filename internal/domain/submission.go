package domain

// Submission is one parent-submitted intake form row.
type Submission struct {
	Row       int
	Timestamp string
	School    string
	WordList  string
	Status    SubmissionStatus
}

// Words returns the individual words of the submission's raw word list.
func (s Submission) Words() []string {
	return SplitWords(s.WordList)
}

// SentenceRecord is one entry of the reference sentence bank.
type SentenceRecord struct {
	Word     string
	Sentence string
}
