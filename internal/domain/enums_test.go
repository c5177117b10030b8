package domain

import (
	"errors"
	"testing"
)

func TestParseDecision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in        string
		want      Decision
		wantErr   bool
		pending   bool
		accepting bool
	}{
		{in: "", want: DecisionUnset, pending: true},
		{in: "  ", want: DecisionUnset, pending: true},
		{in: "待處理", want: DecisionPending, pending: true},
		{in: "即用及保留", want: DecisionUseAndKeep, accepting: true},
		{in: " 保留 ", want: DecisionKeep, accepting: true},
		{in: "待審批", want: DecisionPendingApproval},
		{in: "keep", wantErr: true},
		{in: "保留吧", wantErr: true},
	}
	for _, tt := range tests {
		t.Run("decision_"+tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDecision(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("ParseDecision(%q) error = %v, want ErrValidation", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecision(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecision(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if got.IsPending() != tt.pending {
				t.Errorf("IsPending() = %v, want %v", got.IsPending(), tt.pending)
			}
			if got.IsAccepting() != tt.accepting {
				t.Errorf("IsAccepting() = %v, want %v", got.IsAccepting(), tt.accepting)
			}
		})
	}
}

func TestParseStandbyState(t *testing.T) {
	t.Parallel()

	if s, err := ParseStandbyState("Ready"); err != nil || s != StandbyReady {
		t.Errorf("Ready: got %q, %v", s, err)
	}
	if s, err := ParseStandbyState(" Waiting "); err != nil || s != StandbyWaiting {
		t.Errorf("Waiting: got %q, %v", s, err)
	}
	if _, err := ParseStandbyState("ready"); !errors.Is(err, ErrValidation) {
		t.Errorf("lowercase state should be rejected, got %v", err)
	}
}

func TestSubmissionStatus_IsDone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status SubmissionStatus
		want   bool
	}{
		{"Done", true},
		{" done ", true},
		{"", false},
		{"Pending", false},
	}
	for _, tt := range tests {
		if got := tt.status.IsDone(); got != tt.want {
			t.Errorf("SubmissionStatus(%q).IsDone() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestQuestionType_IsKnown(t *testing.T) {
	t.Parallel()

	for _, q := range NextWeekTypes {
		if !q.IsKnown() {
			t.Errorf("%q should be known", q)
		}
	}
	if !QuestionCloze.IsKnown() {
		t.Error("cloze should be known")
	}
	if QuestionType("配對").IsKnown() {
		t.Error("custom label should not be known")
	}
	if len(NextWeekTypes) != 7 {
		t.Errorf("len(NextWeekTypes) = %d, want 7", len(NextWeekTypes))
	}
}
