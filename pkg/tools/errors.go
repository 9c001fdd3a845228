package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/trailmcp/pkg/apperr"
)

// ErrorResponse is used for consistent error reporting
func ErrorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// ErrorWithGuidance returns a properly formatted error response with user guidance.
func ErrorWithGuidance(err error) *mcp.CallToolResult {
	message := err.Error()
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Service == "" {
		message = appErr.Message
	}
	errorText := fmt.Sprintf("Error: %s\n\nGuidance: %s", message, apperr.GuidanceOf(err))
	return mcp.NewToolResultError(errorText)
}

// jsonResult marshals v as the text content of a tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return ErrorResponse("Failed to generate result"), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
