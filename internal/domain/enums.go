package domain

import "strings"

// Decision is the reviewer's verdict on a ReviewItem, stored as sheet text.
type Decision string

const (
	DecisionUnset           Decision = ""
	DecisionPending         Decision = "待處理"
	DecisionUseAndKeep      Decision = "即用及保留"
	DecisionKeep            Decision = "保留"
	DecisionPendingApproval Decision = "待審批"
)

func (d Decision) String() string { return string(d) }

func (d Decision) IsValid() bool {
	switch d {
	case DecisionUnset, DecisionPending, DecisionUseAndKeep, DecisionKeep, DecisionPendingApproval:
		return true
	}
	return false
}

// IsPending reports whether no decision has been taken yet.
func (d Decision) IsPending() bool {
	return d == DecisionUnset || d == DecisionPending
}

// IsAccepting reports whether the decision promotes the item to Standby.
func (d Decision) IsAccepting() bool {
	return d == DecisionUseAndKeep || d == DecisionKeep
}

// ParseDecision converts cell text into a Decision.
// Unknown values are rejected with a *ValidationError.
func ParseDecision(s string) (Decision, error) {
	d := Decision(strings.TrimSpace(s))
	if !d.IsValid() {
		return "", NewValidationError("decision", "unknown value "+quote(s))
	}
	return d, nil
}

// StandbyState is the lifecycle state of a StandbyItem.
type StandbyState string

const (
	StandbyReady   StandbyState = "Ready"
	StandbyWaiting StandbyState = "Waiting"
)

func (s StandbyState) String() string { return string(s) }

func (s StandbyState) IsValid() bool {
	switch s {
	case StandbyReady, StandbyWaiting:
		return true
	}
	return false
}

// ParseStandbyState converts cell text into a StandbyState.
func ParseStandbyState(s string) (StandbyState, error) {
	st := StandbyState(strings.TrimSpace(s))
	if !st.IsValid() {
		return "", NewValidationError("state", "unknown value "+quote(s))
	}
	return st, nil
}

// SubmissionStatus is the processing flag of an intake form row.
// Only StatusDone is meaningful; any other cell text means unprocessed.
type SubmissionStatus string

const StatusDone SubmissionStatus = "Done"

func (s SubmissionStatus) IsDone() bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(StatusDone))
}

// QuestionType is the label of a question format as written in the sheet.
// The set is open: labels outside the known list are passed through and
// get a generic prompt.
type QuestionType string

const (
	QuestionReorder        QuestionType = "重組句子"
	QuestionPunctuation    QuestionType = "標點符號"
	QuestionAntonym        QuestionType = "反義詞"
	QuestionSynonym        QuestionType = "同義詞"
	QuestionDiscrimination QuestionType = "詞辨"
	QuestionComposition    QuestionType = "造句"
	QuestionContinuation   QuestionType = "續寫句子"
	QuestionCloze          QuestionType = "填空題"
)

// NextWeekTypes lists the question types a reviewer can request.
var NextWeekTypes = []QuestionType{
	QuestionReorder,
	QuestionComposition,
	QuestionPunctuation,
	QuestionAntonym,
	QuestionSynonym,
	QuestionContinuation,
	QuestionDiscrimination,
}

func (q QuestionType) String() string { return string(q) }

// IsKnown reports whether q is one of the built-in question types.
func (q QuestionType) IsKnown() bool {
	if q == QuestionCloze {
		return true
	}
	for _, t := range NextWeekTypes {
		if q == t {
			return true
		}
	}
	return false
}

func quote(s string) string { return "\"" + s + "\"" }
