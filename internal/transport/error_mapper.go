package transport

import (
	"fmt"
	"net/http"

	"github.com/JamesPrial/text2graph/pkg/errors"
	"github.com/JamesPrial/text2graph/pkg/mcp"
)

// ToJSONRPCError maps internal AppError codes to JSON-RPC error codes and mcp.Error
func ToJSONRPCError(err error) mcp.Error {
	if err == nil {
		return mcp.Error{}
	}

	code := errors.GetCode(err)
	message := errors.GetMessage(err)

	var jsonRPCCode int
	switch code {
	// Transport layer errors
	case errors.ErrCodeTransportMethodNotFound, errors.ErrCodeUnknownTool:
		jsonRPCCode = MethodNotFound
	case errors.ErrCodeTransportInvalidParams:
		jsonRPCCode = InvalidParams
	case errors.ErrCodeTransportInvalidJSON, errors.ErrCodeTransportMarshal:
		jsonRPCCode = ParseError

	// Validation errors
	case errors.ErrCodeValidationRequired, errors.ErrCodeValidationInvalid,
		errors.ErrCodeValidationType, errors.ErrCodeEmptyInput:
		jsonRPCCode = InvalidParams

	// Extraction and parser service errors
	case errors.ErrCodeParserUnavailable, errors.ErrCodeParserRequest,
		errors.ErrCodeParserResponse, errors.ErrCodeExtractionFailure:
		jsonRPCCode = ExtractionError

	// System errors
	case errors.ErrCodeInternal, errors.ErrCodePanic, errors.ErrCodeContextCanceled,
		errors.ErrCodeConfiguration:
		jsonRPCCode = InternalError

	// Graph errors
	case errors.ErrCodeEntityNotFound, errors.ErrCodeStorageNotFound:
		jsonRPCCode = NotFoundError
	case errors.ErrCodeEntityAlreadyExists:
		jsonRPCCode = AlreadyExistsError
	case errors.ErrCodeStorageConflict:
		jsonRPCCode = ConflictError
	case errors.ErrCodeStorageConnection, errors.ErrCodeStorageTransaction,
		errors.ErrCodeStorageInitialization:
		jsonRPCCode = InternalError
	default:
		jsonRPCCode = GenericError
	}

	return mcp.Error{
		Code:    jsonRPCCode,
		Message: message,
		Data:    map[string]interface{}{"error_code": string(code)},
	}
}

// ToJSONRPCResponse creates a complete JSONRPCResponse with error
func ToJSONRPCResponse(id interface{}, err error) *JSONRPCResponse {
	if err == nil {
		return NewResultResponse(id, map[string]interface{}{"success": true})
	}

	mcpError := ToJSONRPCError(err)
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    mcpError.Code,
			Message: mcpError.Message,
			Data:    mcpError.Data,
		},
	}
}

// ToHTTPStatusCode maps error codes to HTTP status codes. Only transport
// and critical system failures get an HTTP error status; application errors
// are reported with 200 and the JSON-RPC error in the body.
func ToHTTPStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeTransportInvalidJSON, errors.ErrCodeTransportMarshal:
		return http.StatusBadRequest
	case errors.ErrCodePanic, errors.ErrCodeConfiguration:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

// statusForResponse derives the HTTP status from the error_code carried in
// a response's error data.
func statusForResponse(resp *JSONRPCResponse) int {
	if resp.Error == nil {
		return http.StatusOK
	}
	dataMap, ok := resp.Error.Data.(map[string]interface{})
	if !ok {
		return http.StatusOK
	}
	errorCode, ok := dataMap["error_code"].(string)
	if !ok {
		return http.StatusOK
	}
	return ToHTTPStatusCode(errors.New(errors.ErrorCode(errorCode), resp.Error.Message))
}

// CreateFallbackErrorResponse creates a safe fallback error response for critical failures
func CreateFallbackErrorResponse(id interface{}, message string) *JSONRPCResponse {
	if message == "" {
		message = "An unexpected error occurred"
	}

	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    InternalError,
			Message: message,
			Data:    map[string]interface{}{"error_code": "FALLBACK_ERROR"},
		},
	}
}

// LoggableError returns the full error details for logging, including the internal error
func LoggableError(err error) error {
	if err == nil {
		return nil
	}

	if internal := errors.GetInternal(err); internal != nil {
		return fmt.Errorf("error_code=%s message=%s internal=%v",
			errors.GetCode(err), errors.GetMessage(err), internal)
	}

	return fmt.Errorf("error_code=%s message=%s",
		errors.GetCode(err), errors.GetMessage(err))
}
