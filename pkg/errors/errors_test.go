package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found with id", NewNotFoundError("object", "obj-1"), "object with ID 'obj-1' not found"},
		{"not found without id", NewNotFoundError("field", ""), "field not found"},
		{"validation with field", NewValidationError("label", "label is required"), "validation error on field 'label': label is required"},
		{"validation without field", NewValidationError("", "bad input"), "validation error: bad input"},
		{"permission", NewPermissionError("edit", "object definitions"), "permission denied: cannot edit object definitions"},
		{"conflict", NewConflictError("object", "api_name", "client__c"), "object already exists with api_name='client__c'"},
		{"unauthorized", NewUnauthorizedError("invalid credentials"), "unauthorized: invalid credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewNotFoundError("object", "x"), http.StatusNotFound},
		{NewValidationError("f", "m"), http.StatusBadRequest},
		{NewPermissionError("edit", "x"), http.StatusForbidden},
		{NewUnauthorizedError(""), http.StatusUnauthorized},
		{NewConflictError("object", "", ""), http.StatusConflict},
		{NewInternalError("boom", nil), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := GetHTTPStatus(tt.err); got != tt.want {
			t.Errorf("GetHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestPredicatesUnwrapWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("saving object: %w", NewConflictError("object", "api_name", "client__c"))
	if !IsConflict(wrapped) {
		t.Error("IsConflict should see through fmt.Errorf wrapping")
	}
	if IsNotFound(wrapped) {
		t.Error("IsNotFound should not match a ConflictError")
	}

	internal := NewInternalError("query failed", errors.New("connection reset"))
	if internal.Unwrap() == nil {
		t.Error("InternalError should expose its cause")
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := GetErrorCode(NewValidationError("f", "m")); got != "VALIDATION_ERROR" {
		t.Errorf("GetErrorCode = %q, want VALIDATION_ERROR", got)
	}
	if got := GetErrorCode(errors.New("plain")); got != "UNKNOWN_ERROR" {
		t.Errorf("GetErrorCode = %q, want UNKNOWN_ERROR", got)
	}
}
