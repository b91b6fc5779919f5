package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JamesPrial/text2graph/internal/knowledge"
	"github.com/JamesPrial/text2graph/internal/transport"
	"github.com/JamesPrial/text2graph/pkg/errors"
	"github.com/JamesPrial/text2graph/pkg/logging"
	"github.com/JamesPrial/text2graph/pkg/schema"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "text2graph"
	graphToolPrefix = "graph__"
	maxNameLength   = 100
)

// Server dispatches MCP JSON-RPC requests to the knowledge manager
type Server struct {
	manager *knowledge.Manager
	logger  *slog.Logger
}

// NewServer creates a new MCP server
func NewServer(manager *knowledge.Manager) *Server {
	return &Server{
		manager: manager,
		logger:  logging.GetGlobalLogger("server"),
	}
}

// validateRequest returns an error response for a structurally invalid request
func (s *Server) validateRequest(req *transport.JSONRPCRequest) *transport.JSONRPCResponse {
	if req == nil {
		return transport.NewInvalidRequestError(nil, "Request cannot be null")
	}
	if req.JSONRPC != "2.0" {
		return transport.NewInvalidRequestError(req.ID, "Invalid or missing 'jsonrpc' field, must be '2.0'")
	}
	if req.Method == "" {
		return transport.NewInvalidRequestError(req.ID, "Missing or empty 'method' field")
	}
	if req.ID == nil {
		return transport.NewInvalidRequestError(nil, "Missing 'id' field - only notifications/* may omit it")
	}
	return nil
}

// isValidToolName reports whether name is short and made of ASCII letters,
// digits, underscores and hyphens
func isValidToolName(name string) bool {
	if name == "" || len(name) > maxNameLength {
		return false
	}
	for _, r := range name {
		if !((r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '_' || r == '-') {
			return false
		}
	}
	return true
}

func isKnownToolFamily(name string) bool {
	return name == knowledge.ToolText2Schema || strings.HasPrefix(name, graphToolPrefix)
}

// isMalformedMethod reports methods that are invalid requests rather than
// merely unknown
func isMalformedMethod(method string) bool {
	for _, r := range method {
		if !((r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '/' || r == '_' || r == '-' || r == '.' || r == '\\') {
			return true
		}
	}
	return len(method) > maxNameLength ||
		strings.Contains(method, "..") ||
		strings.Contains(method, "//")
}

// HandleRequest processes a JSON-RPC request. Notifications get a nil response.
func (s *Server) HandleRequest(ctx context.Context, req *transport.JSONRPCRequest) *transport.JSONRPCResponse {
	if req != nil && req.ID == nil && req.JSONRPC == "2.0" && strings.HasPrefix(req.Method, "notifications/") {
		s.logger.DebugContext(ctx, "Notification received", slog.String("method", req.Method))
		return nil
	}

	if validationErr := s.validateRequest(req); validationErr != nil {
		return validationErr
	}

	if isMalformedMethod(req.Method) {
		return transport.NewInvalidRequestError(req.ID, fmt.Sprintf("Invalid method format: '%s'", req.Method))
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "ping":
		return transport.NewResultResponse(req.ID, map[string]interface{}{})
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return transport.NewMethodNotFoundError(req.ID, req.Method)
	}
}

func (s *Server) handleInitialize(req *transport.JSONRPCRequest) *transport.JSONRPCResponse {
	return transport.NewResultResponse(req.ID, map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    serverName,
			"version": version,
		},
	})
}

// handleToolsList handles the tools/list method
func (s *Server) handleToolsList(req *transport.JSONRPCRequest) *transport.JSONRPCResponse {
	return transport.NewResultResponse(req.ID, map[string]interface{}{
		"tools": s.manager.HandleListTools(),
	})
}

// handleToolsCall handles the tools/call method
func (s *Server) handleToolsCall(ctx context.Context, req *transport.JSONRPCRequest) (resp *transport.JSONRPCResponse) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "Panic in tools/call", slog.Any("panic", r))
			resp = transport.ToJSONRPCResponse(req.ID, errors.Newf(errors.ErrCodePanic, "tool call panicked: %v", r))
		}
	}()

	if req.Params == nil {
		return transport.NewInvalidParamsError(req.ID, "Missing 'params' field for tools/call method")
	}

	name, ok := req.Params["name"]
	if !ok {
		return transport.NewInvalidParamsError(req.ID, "Missing 'name' field in params")
	}
	toolName, ok := name.(string)
	if !ok {
		return transport.NewInvalidParamsError(req.ID, "Field 'name' must be a string")
	}
	if toolName == "" {
		return transport.NewInvalidParamsError(req.ID, "Field 'name' cannot be empty")
	}

	arguments := map[string]interface{}{}
	if args, exists := req.Params["arguments"]; exists && args != nil {
		argsMap, ok := args.(map[string]interface{})
		if !ok {
			return transport.NewInvalidParamsError(req.ID, "Field 'arguments' must be an object")
		}
		arguments = argsMap
	}

	if !isValidToolName(toolName) {
		return transport.NewInvalidParamsError(req.ID, "Field 'name' contains invalid characters or unknown tool")
	}
	if !isKnownToolFamily(toolName) {
		return transport.NewInvalidParamsError(req.ID, "Unknown tool name")
	}

	result, err := s.manager.HandleCallTool(ctx, toolName, arguments)
	if err != nil {
		s.logger.WarnContext(ctx, "Tool call failed",
			slog.String("tool", toolName),
			slog.String("error", transport.LoggableError(err).Error()),
		)
		return transport.ToJSONRPCResponse(req.ID, err)
	}

	content, err := toolContent(result)
	if err != nil {
		return transport.ToJSONRPCResponse(req.ID, err)
	}
	return transport.NewResultResponse(req.ID, content)
}

// toolContent wraps a tool result in the MCP content shape. Extraction
// error envelopes are flagged with isError.
func toolContent(result interface{}) (map[string]interface{}, error) {
	text, err := json.Marshal(result)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTransportMarshal, "Failed to serialize tool result")
	}

	_, isError := result.(*schema.ErrorResult)
	return map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": string(text)},
		},
		"structuredContent": result,
		"isError":           isError,
	}, nil
}
