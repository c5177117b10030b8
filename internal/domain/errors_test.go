package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("decision", "required")

	if got := err.Error(); got != "validation: decision: required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "school", Message: "required"},
		{Field: "word", Message: "required"},
	})

	if got := err.Error(); got != "validation: 2 errors" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
	if len(err.Errors) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(err.Errors))
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	all := []error{
		ErrNotFound, ErrValidation, ErrUnauthorized, ErrForbidden,
		ErrConflict, ErrSchemaMismatch, ErrBackendUnavailable,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}

func TestPartialError(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("delete review rows: %w", ErrBackendUnavailable)
	err := fmt.Errorf("promotion: %w", &PartialError{
		Step:      "remove review rows",
		Completed: []string{"append standby"},
		Err:       cause,
	})

	if !IsPartial(err) {
		t.Fatal("IsPartial = false, want true")
	}
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Error("PartialError should unwrap to its cause")
	}

	var pe *PartialError
	if !errors.As(err, &pe) {
		t.Fatal("errors.As failed")
	}
	if pe.Step != "remove review rows" {
		t.Errorf("Step = %q, want %q", pe.Step, "remove review rows")
	}
	if IsPartial(cause) {
		t.Error("plain error reported as partial")
	}
}
