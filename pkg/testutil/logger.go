// Package testutil provides utilities for testing.
package testutil

import (
	"io"
	"log/slog"
	"reflect"
)

// NewTestLogger creates a debug-level text logger writing to w.
// If w is nil, including a typed nil pointer, it will use io.Discard
func NewTestLogger(w io.Writer) *slog.Logger {
	if isNil(w) {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// DiscardLogger returns a logger that discards all output
func DiscardLogger() *slog.Logger {
	return NewTestLogger(nil)
}

func isNil(w io.Writer) bool {
	if w == nil {
		return true
	}
	v := reflect.ValueOf(w)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
