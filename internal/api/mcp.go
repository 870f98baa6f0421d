package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"mailtriage/internal/classifier"
	"mailtriage/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store *storage.Store
}

// NewMCPServer creates an MCP server exposing the triage operations as
// tools, so an assistant can submit emails and read outcomes.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"mailtriage",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("mailtriage: classify emails as Productive or Unproductive and draft suggested replies."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("submit_email",
			mcp.WithDescription("Submit an email for classification. Returns the job id to poll with email_status."),
			mcp.WithString("title", mcp.Description("Email subject line")),
			mcp.WithString("content", mcp.Description("Email body"), mcp.Required()),
		),
		mcpSubmitEmail(deps),
	)

	s.AddTool(
		mcp.NewTool("email_status",
			mcp.WithDescription("Fetch the status of a submitted email: pending, or done with classification and suggested reply."),
			mcp.WithString("id", mcp.Description("Job id returned by submit_email"), mcp.Required()),
		),
		mcpEmailStatus(deps),
	)

	s.AddTool(
		mcp.NewTool("classify_text",
			mcp.WithDescription("Classify text synchronously with the keyword heuristic, without storing anything."),
			mcp.WithString("text", mcp.Description("Text to classify"), mcp.Required()),
		),
		mcpClassifyText(),
	)

	s.AddResource(
		mcp.NewResource(
			"triage://recent",
			"Recent Emails",
			mcp.WithResourceDescription("Last 10 submitted emails with their current status"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecent(deps),
	)

	return s
}

func mcpSubmitEmail(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := req.RequireString("content")
		if err != nil {
			return mcpError("content is required"), nil
		}
		title := req.GetString("title", "")

		email := storage.Email{
			ID:      uuid.New().String(),
			Title:   title,
			Content: content,
		}
		if err := deps.Store.CreateEmail(email); err != nil {
			return mcpError(fmt.Sprintf("failed to save email: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Queued email %s", email.ID)), nil
	}
}

func mcpEmailStatus(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcpError("id is required"), nil
		}

		email, err := deps.Store.GetEmail(id)
		if err != nil {
			return mcpError(fmt.Sprintf("email %s not found", id)), nil
		}

		out := map[string]string{
			"id":     email.ID,
			"status": email.Status,
		}
		if email.Status == storage.StatusDone {
			out["classification"] = email.Classification
			out["suggested_reply"] = email.SuggestedReply
		}
		b, err := json.Marshal(out)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal status: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpClassifyText() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcpError("text is required"), nil
		}

		classification := classifier.Classify(classifier.Preprocess("", text))
		return mcpText(classification), nil
	}
}

func mcpResourceRecent(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		emails, err := deps.Store.ListRecent(10)
		if err != nil {
			return nil, fmt.Errorf("failed to list recent emails: %w", err)
		}

		type emailSummary struct {
			ID             string `json:"id"`
			Title          string `json:"title"`
			Status         string `json:"status"`
			Classification string `json:"classification,omitempty"`
			CreatedAt      string `json:"created_at"`
		}

		summaries := make([]emailSummary, len(emails))
		for i, e := range emails {
			title := e.Title
			if utf8.RuneCountInString(title) > 200 {
				runes := []rune(title)
				title = string(runes[:200]) + "..."
			}
			summaries[i] = emailSummary{
				ID:             e.ID,
				Title:          title,
				Status:         e.Status,
				Classification: e.Classification,
				CreatedAt:      e.CreatedAt.Format(time.RFC3339),
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal emails: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
