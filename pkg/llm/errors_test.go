package llm

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestError_Error_WithStatusCode tests Error.Error() includes status code
func TestError_Error_WithStatusCode(t *testing.T) {
	err := &Error{
		Type:       ErrorTypeEndpoint,
		Message:    "server error",
		StatusCode: 503,
	}

	result := err.Error()
	if !strings.Contains(result, "HTTP 503") {
		t.Errorf("expected error message to contain 'HTTP 503', got: %s", result)
	}
	if !strings.Contains(result, "server error") {
		t.Errorf("expected error message to contain 'server error', got: %s", result)
	}
}

// TestError_Unwrap tests errors.Is works through the cause chain
func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying failure")
	err := NewError(ErrorTypeUnknown, "llm error", false, cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestClassifyError_Nil(t *testing.T) {
	if ClassifyError(nil) != nil {
		t.Error("expected nil for nil input")
	}
}

func TestClassifyError_PassesThroughStructuredErrors(t *testing.T) {
	original := NewError(ErrorTypeAuth, "authentication failed", false, nil)
	wrapped := fmt.Errorf("call failed: %w", original)

	classified := ClassifyError(wrapped)
	if classified != original {
		t.Errorf("expected original structured error back, got %v", classified)
	}
}

func TestClassifyError_Categories(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantType      ErrorType
		wantRetryable bool
	}{
		{"401 status", errors.New("error, status code: 401, message: bad key"), ErrorTypeAuth, false},
		{"unauthorized text", errors.New("request unauthorized"), ErrorTypeAuth, false},
		{"invalid api key", errors.New("Invalid API key provided"), ErrorTypeAuth, false},
		{"model not found", errors.New("The model 'gpt-nope' does not exist"), ErrorTypeModel, false},
		{"404 endpoint", errors.New("error, status code: 404"), ErrorTypeEndpoint, false},
		{"connection refused", errors.New("dial tcp 127.0.0.1:9999: connection refused"), ErrorTypeEndpoint, true},
		{"no such host", errors.New("dial tcp: lookup nowhere.invalid: no such host"), ErrorTypeEndpoint, true},
		{"timeout", errors.New("request timeout exceeded"), ErrorTypeEndpoint, true},
		{"deadline exceeded", errors.New("context deadline exceeded"), ErrorTypeEndpoint, true},
		{"rate limited", errors.New("error, status code: 429, rate limit reached"), ErrorTypeUnknown, true},
		{"server error", errors.New("error, status code: 500"), ErrorTypeEndpoint, true},
		{"bad gateway", errors.New("error, status code: 502"), ErrorTypeEndpoint, true},
		{"unknown", errors.New("something strange happened"), ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := ClassifyError(tt.err)
			if classified.Type != tt.wantType {
				t.Errorf("expected type %s, got %s", tt.wantType, classified.Type)
			}
			if classified.Retryable != tt.wantRetryable {
				t.Errorf("expected retryable %v, got %v", tt.wantRetryable, classified.Retryable)
			}
			if !errors.Is(classified, tt.err) {
				t.Error("expected classified error to wrap the original")
			}
		})
	}
}

func TestClassifyError_ExtractsStatusCode(t *testing.T) {
	classified := ClassifyError(errors.New("error, status code: 429, message: slow down"))
	if classified.StatusCode != 429 {
		t.Errorf("expected status code 429, got %d", classified.StatusCode)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(NewError(ErrorTypeEndpoint, "connection failed", true, nil)) {
		t.Error("expected retryable")
	}
	if IsRetryable(NewError(ErrorTypeAuth, "authentication failed", false, nil)) {
		t.Error("expected not retryable")
	}
	if IsRetryable(errors.New("plain error")) {
		t.Error("expected plain errors to be not retryable")
	}
}

func TestGetErrorType(t *testing.T) {
	if got := GetErrorType(NewError(ErrorTypeModel, "model not found", false, nil)); got != ErrorTypeModel {
		t.Errorf("expected model type, got %s", got)
	}
	if got := GetErrorType(errors.New("plain error")); got != ErrorTypeUnknown {
		t.Errorf("expected unknown type for plain error, got %s", got)
	}
}
