package tools

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

type requestIDKey struct{}

// RequestID returns the id assigned to the current tool call, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// withRequestLogging tags each call with a request id and logs its outcome
// and duration.
func (r *Registry) withRequestLogging(name string, next HandlerFunc) HandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := uuid.New().String()
		ctx = context.WithValue(ctx, requestIDKey{}, id)
		logger := r.logger.With("tool", name, "request_id", id)

		start := time.Now()
		result, err := next(ctx, req)
		duration := time.Since(start)

		switch {
		case err != nil:
			logger.Error("tool call failed", "error", err, "duration", duration)
		case result != nil && result.IsError:
			logger.Warn("tool call returned an error result", "duration", duration)
		default:
			logger.Info("tool call completed", "duration", duration)
		}
		return result, err
	}
}
