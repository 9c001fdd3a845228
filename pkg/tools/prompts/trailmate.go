// Package prompts provides prompt templates for use with the MCP server.
package prompts

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DefaultSystemPrompt is used when no prompt file is configured or readable.
const DefaultSystemPrompt = "You are TrailMate, a route recommender for Alberta, Canada. " +
	"Use tools to find trails and check weather before recommending."

const toolGuidelines = `

TOOL USAGE:
1. Prefer recommend_near_place when the user names a town or landmark; it geocodes, finds trails and fetches weather in one call.
2. For hard hikes near Calgary, set hard_only=true and radius_km around 50 to include Kananaskis and Canmore.
3. Use weather_for_trail when the user names a specific trail. Pass lat/lon when you already know roughly where it is.
4. Use geocode_place, get_trails_near, get_trails_in_bbox and get_weather for follow-up questions.
5. When a tool returns an error, read the Guidance line and retry with the suggested change.

Summarize the forecast using the summary block (min/max temperature, precipitation) and mention trail difficulty (sac_scale) and surface when present.`

// LoadSystemPrompt reads the system prompt from path, trimming whitespace.
// It falls back to DefaultSystemPrompt when path is empty, missing or blank.
func LoadSystemPrompt(path string, logger *slog.Logger) string {
	if path == "" {
		return DefaultSystemPrompt
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("failed to read prompt file, using built-in prompt", "path", path, "error", err)
		}
		return DefaultSystemPrompt
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return DefaultSystemPrompt
	}
	return prompt
}

// RegisterTrailPrompts registers all trail-related prompts with the MCP server
func RegisterTrailPrompts(s *server.MCPServer, systemPrompt string) {
	s.AddPrompt(mcp.NewPrompt("trailmate",
		mcp.WithPromptDescription("System instructions for recommending trails with weather"),
	), TrailMatePromptHandler(systemPrompt))

	s.AddPrompt(mcp.NewPrompt("trailmate_examples",
		mcp.WithPromptDescription("Examples of requests and the tool calls that answer them"),
	), TrailMateExamplesHandler)
}

// TrailMatePromptHandler returns the main prompt built on systemPrompt
func TrailMatePromptHandler(systemPrompt string) server.PromptHandlerFunc {
	text := systemPrompt + toolGuidelines
	return func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return mcp.NewGetPromptResult(
			"TrailMate Instructions",
			[]mcp.PromptMessage{
				mcp.NewPromptMessage(
					mcp.RoleAssistant,
					mcp.NewTextContent(text),
				),
			},
		), nil
	}
}

// TrailMateExamplesHandler returns worked examples for the trail tools
func TrailMateExamplesHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	examplesPrompt := `EXAMPLES OF EFFECTIVE TRAIL TOOL USAGE:

User: "Any good hikes around Canmore this afternoon?"
AI: *uses recommend_near_place with place: "Canmore", hours: 6*

User: "I want something challenging near Calgary tomorrow."
AI: *uses recommend_near_place with place: "Calgary", radius_km: 50, hard_only: true, hours: 24*

User: "What's the weather going to be on Ha Ling Peak?"
AI: *uses weather_for_trail with trail_name: "Ha Ling Peak"*

User: "How about Grassi Lakes? I'm in Canmore."
AI: *uses weather_for_trail with trail_name: "Grassi Lakes", lat: 51.089, lon: -115.344*

ERROR CORRECTION PATTERN:
1. If geocode_place finds nothing, retry with a nearby town or better-known landmark
2. If weather_for_trail cannot find the trail, retry with a shorter form of the name or pass coordinates
3. If a trail search returns an empty list, widen radius_km or drop hard_only`

	return mcp.NewGetPromptResult(
		"TrailMate Examples",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(examplesPrompt),
			),
		},
	), nil
}
