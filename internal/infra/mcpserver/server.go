package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	appanalysis "github.com/bryanwahyu/aidetect/internal/application/analysis"
	domain "github.com/bryanwahyu/aidetect/internal/domain/analysis"
)

// Detector is the subset of the analysis service the MCP tools need.
type Detector interface {
	Analyze(ctx context.Context, text string) (domain.Outcome, error)
	History(ctx context.Context, limit int) ([]*domain.Record, error)
	Lookup(ctx context.Context, fp domain.Fingerprint) (*domain.Record, error)
}

var _ Detector = (*appanalysis.Service)(nil)

// New creates an MCP server exposing detection as tools.
func New(svc Detector, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"aidetect",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions("aidetect estimates whether a text was machine generated. Identical texts return the stored result."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("analyze_text",
			mcp.WithDescription("Score a text for AI authorship. Text must be at least 50 characters after trimming."),
			mcp.WithString("text", mcp.Description("The text to analyze"), mcp.Required()),
		),
		analyzeText(svc),
	)

	s.AddTool(
		mcp.NewTool("detection_history",
			mcp.WithDescription("List the most recent detection results, newest first."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10, max 100)")),
		),
		detectionHistory(svc),
	)

	s.AddTool(
		mcp.NewTool("get_result",
			mcp.WithDescription("Fetch a stored detection result by its SHA-256 fingerprint."),
			mcp.WithString("fingerprint", mcp.Description("64 hex character fingerprint"), mcp.Required()),
		),
		getResult(svc),
	)

	return s
}

type analysisResult struct {
	*domain.Record
	FromCache bool `json:"fromCache"`
}

func analyzeText(svc Detector) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return toolError("text is required"), nil
		}

		out, err := svc.Analyze(ctx, text)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				return toolError("Text must be at least 50 characters long"), nil
			}
			return toolError(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		return toolJSON(analysisResult{Record: out.Record, FromCache: out.FromCache})
	}
}

func detectionHistory(svc Detector) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", appanalysis.DefaultHistoryLimit)

		list, err := svc.History(ctx, limit)
		if err != nil {
			return toolError(fmt.Sprintf("history failed: %v", err)), nil
		}
		return toolJSON(list)
	}
}

func getResult(svc Detector) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := req.RequireString("fingerprint")
		if err != nil {
			return toolError("fingerprint is required"), nil
		}
		fp := domain.Fingerprint(raw)
		if !fp.Valid() {
			return toolError("fingerprint must be 64 lowercase hex characters"), nil
		}

		rec, err := svc.Lookup(ctx, fp)
		if errors.Is(err, domain.ErrNotFound) {
			return toolError(fmt.Sprintf("no result for %s", fp.Short())), nil
		}
		if err != nil {
			return toolError(fmt.Sprintf("lookup failed: %v", err)), nil
		}
		return toolJSON(rec)
	}
}

func toolJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return toolText(string(b)), nil
}

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
