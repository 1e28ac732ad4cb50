package model

import "testing"

func TestErrorEnvelope_Error(t *testing.T) {
	e := &ErrorEnvelope{Code: ErrNotFound, Message: "Product not found"}
	want := "NOT_FOUND: Product not found"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorEnvelope_implements_error(t *testing.T) {
	var _ error = (*ErrorEnvelope)(nil)
}

func TestNewNotFoundError(t *testing.T) {
	e := NewNotFoundError("product missing")
	if e.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", e.Code, ErrNotFound)
	}
	if e.Message != "product missing" {
		t.Errorf("Message = %q, want %q", e.Message, "product missing")
	}
}

func TestNewMaxNestingExceededError(t *testing.T) {
	e := NewMaxNestingExceededError()
	if e.Code != ErrMaxNestingExceeded {
		t.Errorf("Code = %q, want %q", e.Code, ErrMaxNestingExceeded)
	}
	if e.Message == "" {
		t.Error("Message should not be empty")
	}
}

func TestNewValidationError(t *testing.T) {
	details := []FieldError{
		{Field: "product_id", Code: "REQUIRED", Message: "Product ID is required"},
	}
	e := NewValidationError(details)
	if e.Code != ErrValidationError {
		t.Errorf("Code = %q, want %q", e.Code, ErrValidationError)
	}
	if len(e.Details) != 1 {
		t.Fatalf("Details length = %d, want 1", len(e.Details))
	}
	if e.Details[0].Field != "product_id" {
		t.Errorf("Details[0].Field = %q, want %q", e.Details[0].Field, "product_id")
	}
}
