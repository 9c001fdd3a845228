package prompts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/trailmcp/pkg/testutil"
)

func TestLoadSystemPrompt(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "prompt.txt")
	if err := os.WriteFile(custom, []byte("  You are a careful guide.\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	blank := filepath.Join(dir, "blank.txt")
	if err := os.WriteFile(blank, []byte("\n\t\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"no path", "", DefaultSystemPrompt},
		{"missing file", filepath.Join(dir, "missing.txt"), DefaultSystemPrompt},
		{"blank file", blank, DefaultSystemPrompt},
		{"custom file", custom, "You are a careful guide."},
	}

	logger := testutil.DiscardLogger()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LoadSystemPrompt(tt.path, logger); got != tt.want {
				t.Errorf("LoadSystemPrompt(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func promptText(t *testing.T, result *mcp.GetPromptResult) string {
	t.Helper()
	if len(result.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(result.Messages))
	}
	text, ok := result.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Messages[0].Content)
	}
	return text.Text
}

func TestTrailMatePromptHandler(t *testing.T) {
	result, err := TrailMatePromptHandler("Custom system prompt.")(context.Background(), mcp.GetPromptRequest{})
	if err != nil {
		t.Fatal(err)
	}
	text := promptText(t, result)
	if !strings.HasPrefix(text, "Custom system prompt.") {
		t.Errorf("prompt does not start with the system prompt: %q", text)
	}
	if !strings.Contains(text, "recommend_near_place") {
		t.Error("prompt does not mention the pipeline tool")
	}
}

func TestTrailMateExamplesHandler(t *testing.T) {
	result, err := TrailMateExamplesHandler(context.Background(), mcp.GetPromptRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(promptText(t, result), "weather_for_trail") {
		t.Error("examples do not cover weather_for_trail")
	}
}
