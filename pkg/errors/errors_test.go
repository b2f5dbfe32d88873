package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := NewTransportError("Upload failed", nil)
	if err.Error() != "transport: Upload failed" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}

	withDetails := err.WithDetails("status 415")
	if withDetails.Error() != "transport: Upload failed (status 415)" {
		t.Fatalf("unexpected error string: %s", withDetails.Error())
	}
	if err.Details != "" {
		t.Fatalf("expected WithDetails to leave the original untouched")
	}
}

func TestPolicies(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		surface bool
		status  int
	}{
		{"validation", NewValidationError("Please select a file first!", nil), true, http.StatusBadRequest},
		{"transport", NewTransportError("Text extraction failed", nil), true, http.StatusBadGateway},
		{"auth", NewAuthError("Invalid credentials", nil), true, http.StatusUnauthorized},
		{"export", NewExportError("Export failed", nil), false, http.StatusBadGateway},
		{"internal", NewInternalError("boom", nil), true, http.StatusInternalServerError},
		{"plain", errors.New("plain"), true, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldSurface(tt.err); got != tt.surface {
				t.Fatalf("expected surface=%v, got %v", tt.surface, got)
			}
			if got := GetStatusCode(tt.err); got != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, got)
			}
		})
	}
}

func TestWrappedAppError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("export csv: %w", NewExportError("Export failed", cause))

	if !IsType(err, ErrorTypeExport) {
		t.Fatalf("expected export type through wrapping")
	}
	if ShouldSurface(err) {
		t.Fatalf("expected export error to be log-only")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if UserMessage(err) != "Export failed" {
		t.Fatalf("unexpected user message: %s", UserMessage(err))
	}
	if ShouldSurface(nil) || UserMessage(nil) != "" {
		t.Fatalf("expected nil error to be silent")
	}
}
