package errors

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    ErrorCode
		message string
	}{
		{
			name:    "creates empty input error",
			code:    ErrCodeEmptyInput,
			message: "Empty text provided",
		},
		{
			name:    "creates validation error",
			code:    ErrCodeValidationRequired,
			message: "text is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, err.Code)
			}
			if err.Message != tt.message {
				t.Errorf("expected message %s, got %s", tt.message, err.Message)
			}
			if err.Internal != nil {
				t.Error("expected Internal to be nil")
			}
			if err.Error() != tt.message {
				t.Errorf("Error() should return message")
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(ErrCodeParserResponse, "parser returned status %d", 503)
	expected := "parser returned status 503"

	if err.Message != expected {
		t.Errorf("expected message %s, got %s", expected, err.Message)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("connection refused")

	tests := []struct {
		name     string
		err      error
		code     ErrorCode
		message  string
		checkNil bool
	}{
		{
			name:    "wraps standard error",
			err:     originalErr,
			code:    ErrCodeParserRequest,
			message: "Failed to reach parser",
		},
		{
			name:     "returns nil for nil error",
			err:      nil,
			code:     ErrCodeInternal,
			message:  "should not appear",
			checkNil: true,
		},
		{
			name:    "wraps an AppError",
			err:     New(ErrCodeParserResponse, "original"),
			code:    ErrCodeExtractionFailure,
			message: "wrapped",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrap(tt.err, tt.code, tt.message)

			if tt.checkNil {
				if wrapped != nil {
					t.Error("expected nil for nil error")
				}
				return
			}

			if wrapped.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, wrapped.Code)
			}
			if wrapped.Message != tt.message {
				t.Errorf("expected message %s, got %s", tt.message, wrapped.Message)
			}
			if !errors.Is(wrapped, tt.err) {
				t.Error("errors.Is should find the wrapped error")
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeEmptyInput, "empty")

	if !Is(err, ErrCodeEmptyInput) {
		t.Error("expected Is to match its own code")
	}
	if Is(err, ErrCodeExtractionFailure) {
		t.Error("expected Is not to match a different code")
	}
	if Is(errors.New("plain"), ErrCodeEmptyInput) {
		t.Error("plain errors carry no code")
	}
	if Is(nil, ErrCodeEmptyInput) {
		t.Error("nil carries no code")
	}
}

func TestGetCodeMessageInternal(t *testing.T) {
	plain := errors.New("boom")
	wrapped := Wrap(plain, ErrCodeExtractionFailure, "Analysis failed: boom")

	tests := []struct {
		name         string
		err          error
		wantCode     ErrorCode
		wantMessage  string
		wantInternal error
	}{
		{"nil", nil, "", "", nil},
		{"plain error", plain, ErrCodeInternal, "An internal error occurred", plain},
		{"app error", wrapped, ErrCodeExtractionFailure, "Analysis failed: boom", plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.wantCode {
				t.Errorf("GetCode = %s, want %s", got, tt.wantCode)
			}
			if got := GetMessage(tt.err); got != tt.wantMessage {
				t.Errorf("GetMessage = %q, want %q", got, tt.wantMessage)
			}
			if got := GetInternal(tt.err); got != tt.wantInternal {
				t.Errorf("GetInternal = %v, want %v", got, tt.wantInternal)
			}
		})
	}

	bare := New(ErrCodeEmptyInput, "empty")
	if GetInternal(bare) != bare {
		t.Error("GetInternal should return the AppError itself when nothing is wrapped")
	}
}

func TestHelperFunctions(t *testing.T) {
	if err := NotFound("entity"); err.Code != ErrCodeEntityNotFound || err.Message != "entity not found" {
		t.Errorf("unexpected NotFound: %+v", err)
	}
	if err := ValidationRequired("text"); err.Code != ErrCodeValidationRequired || err.Message != "text is required" {
		t.Errorf("unexpected ValidationRequired: %+v", err)
	}
	if err := Internal(errors.New("x")); err.Code != ErrCodeInternal {
		t.Errorf("unexpected Internal: %+v", err)
	}
}

func TestToJSON(t *testing.T) {
	err := Wrap(errors.New("secret internals"), ErrCodeParserRequest, "Failed to reach parser").
		WithDetails(map[string]interface{}{"endpoint": "http://parser"})

	data, jsonErr := err.ToJSON()
	if jsonErr != nil {
		t.Fatalf("ToJSON failed: %v", jsonErr)
	}

	var decoded map[string]interface{}
	if jsonErr := json.Unmarshal(data, &decoded); jsonErr != nil {
		t.Fatalf("invalid JSON: %v", jsonErr)
	}

	if decoded["code"] != string(ErrCodeParserRequest) {
		t.Errorf("unexpected code %v", decoded["code"])
	}
	if decoded["message"] != "Failed to reach parser" {
		t.Errorf("unexpected message %v", decoded["message"])
	}
	if _, ok := decoded["details"]; !ok {
		t.Error("expected details in JSON")
	}
	if _, ok := decoded["Internal"]; ok {
		t.Error("internal error must not be serialized")
	}
}
