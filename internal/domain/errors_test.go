package domain

import (
	"testing"
	"time"
)

func TestToolError(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		message   string
		details   string
		requestID string
	}{
		{
			name:      "Invalid input",
			code:      ErrInvalidInput,
			message:   "Invalid case data",
			details:   "site is required",
			requestID: "req-123",
		},
		{
			name:      "Unknown level",
			code:      ErrUnknownLevel,
			message:   "Nodal level not in atlas",
			details:   "VIIb",
			requestID: "req-456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewToolError(tt.code, tt.message, tt.details, tt.requestID)

			if err.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, err.Code)
			}

			if err.Message != tt.message {
				t.Errorf("Expected message %s, got %s", tt.message, err.Message)
			}

			if err.Details != tt.details {
				t.Errorf("Expected details %s, got %s", tt.details, err.Details)
			}

			if err.RequestID != tt.requestID {
				t.Errorf("Expected requestID %s, got %s", tt.requestID, err.RequestID)
			}

			if time.Since(err.Timestamp) > time.Minute {
				t.Errorf("Timestamp should be recent, got %v", err.Timestamp)
			}

			expectedError := tt.code + ": " + tt.message
			if err.Error() != expectedError {
				t.Errorf("Expected error string %s, got %s", expectedError, err.Error())
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		message string
		value   interface{}
	}{
		{
			name:    "String validation error",
			field:   "site",
			message: "site is required",
			value:   "",
		},
		{
			name:    "Numeric validation error",
			field:   "doi",
			message: "Must be numeric",
			value:   -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message, tt.value)

			if err.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, err.Field)
			}

			if err.Message != tt.message {
				t.Errorf("Expected message %s, got %s", tt.message, err.Message)
			}

			if err.Value != tt.value {
				t.Errorf("Expected value %v, got %v", tt.value, err.Value)
			}

			expectedError := "validation error for field '" + tt.field + "': " + tt.message
			if err.Error() != expectedError {
				t.Errorf("Expected error string %s, got %s", expectedError, err.Error())
			}
		})
	}
}

func TestErrorConstants(t *testing.T) {
	constants := map[string]string{
		"ErrInvalidInput":   ErrInvalidInput,
		"ErrValidation":     ErrValidation,
		"ErrExport":         ErrExport,
		"ErrUnknownLevel":   ErrUnknownLevel,
		"ErrInternalServer": ErrInternalServer,
	}

	expectedValues := map[string]string{
		"ErrInvalidInput":   "INVALID_INPUT",
		"ErrValidation":     "VALIDATION_ERROR",
		"ErrExport":         "EXPORT_ERROR",
		"ErrUnknownLevel":   "UNKNOWN_NODAL_LEVEL",
		"ErrInternalServer": "INTERNAL_SERVER_ERROR",
	}

	for name, actual := range constants {
		expected := expectedValues[name]
		if actual != expected {
			t.Errorf("Expected %s to be %s, got %s", name, expected, actual)
		}
	}
}
