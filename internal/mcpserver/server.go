// Package mcpserver exposes the prospect registry and the radar run as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"TalentRadar/internal/domain"
	"TalentRadar/internal/usecase"
)

// RadarRunner executes one pipeline run.
type RadarRunner interface {
	Run(ctx context.Context, req usecase.RunRequest) (usecase.RunResult, error)
}

// ProspectService backs the registry tools.
type ProspectService interface {
	List(ctx context.Context) ([]domain.ProspectRecord, error)
	AddManual(ctx context.Context, candidate domain.ProspectCandidate) (domain.ProspectRecord, error)
	UpdateStatus(ctx context.Context, id, status string) (domain.ProspectRecord, error)
}

// Config holds the MCP server dependencies.
type Config struct {
	Radar      RadarRunner
	Prospects  ProspectService
	RunTimeout time.Duration
	Version    string
}

// NewServer creates a configured MCP server with all radar tools.
func NewServer(cfg Config) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"TalentRadar",
		ver,
		server.WithToolCapabilities(false),
	)

	registerListTool(s, cfg.Prospects)
	registerAddTool(s, cfg.Prospects)
	registerStatusTool(s, cfg.Prospects)
	registerRadarTool(s, cfg.Radar, cfg.RunTimeout)
	return s
}

// Serve runs the server over stdio until the client disconnects.
func Serve(cfg Config) error {
	return server.ServeStdio(NewServer(cfg))
}

func registerListTool(s *server.MCPServer, svc ProspectService) {
	tool := mcp.NewTool("list_prospects",
		mcp.WithDescription("List every prospect in the talent registry without running extraction."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("status",
			mcp.Description("Only return records with this status (New, Reviewed, Outreach Sent, Pass, Signed)."),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		records, err := svc.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		if raw := req.GetString("status", ""); raw != "" {
			status, ok := domain.ParseStatus(raw)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("unknown status %q", raw)), nil
			}
			filtered := records[:0:0]
			for _, r := range records {
				if r.Status == status {
					filtered = append(filtered, r)
				}
			}
			records = filtered
		}
		return jsonResult(map[string]any{"records": nonNil(records)})
	})
}

func registerAddTool(s *server.MCPServer, svc ProspectService) {
	tool := mcp.NewTool("add_prospect",
		mcp.WithDescription("Add a prospect to the registry by hand. Source and author are recorded as Manual."),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("name", mcp.Required(), mcp.Description("Full name or handle of the prospect")),
		mcp.WithString("why_fit", mcp.Description("Why the prospect fits the roster")),
		mcp.WithString("source_article", mcp.Description("Where the prospect was spotted")),
		mcp.WithArray("platforms",
			mcp.Description("Platforms: Instagram, TikTok, YouTube, Film/TV, Music"),
			mcp.WithStringItems(),
		),
		mcp.WithString("followers_reach", mcp.Description("Audience size estimate")),
		mcp.WithString("upside_notes", mcp.Description("Upside or deal notes")),
		mcp.WithNumber("match_score", mcp.Description("Fit score from 1 to 10 (left unset when omitted)")),
		mcp.WithString("link", mcp.Description("Profile URL")),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError("name is required"), nil
		}
		var platforms []domain.Platform
		for _, p := range req.GetStringSlice("platforms", nil) {
			platforms = append(platforms, domain.Platform(p))
		}

		rec, err := svc.AddManual(ctx, domain.ProspectCandidate{
			Name:            name,
			WhyFit:          req.GetString("why_fit", ""),
			SourceReference: req.GetString("source_article", ""),
			Platforms:       platforms,
			ReachEstimate:   req.GetString("followers_reach", ""),
			UpsideNotes:     req.GetString("upside_notes", ""),
			MatchScore:      req.GetFloat("match_score", 0),
			ProfileLink:     req.GetString("link", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("add failed: %v", err)), nil
		}
		return jsonResult(map[string]any{"record": rec})
	})
}

func registerStatusTool(s *server.MCPServer, svc ProspectService) {
	tool := mcp.NewTool("update_prospect_status",
		mcp.WithDescription("Move a New prospect to Reviewed, Outreach Sent, Pass or Signed."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Registry record id")),
		mcp.WithString("status", mcp.Required(),
			mcp.Description("Target status"),
			mcp.Enum(statusNames()...),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}
		status, err := req.RequireString("status")
		if err != nil {
			return mcp.NewToolResultError("status is required"), nil
		}
		rec, err := svc.UpdateStatus(ctx, id, status)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("update failed: %v", err)), nil
		}
		return jsonResult(map[string]any{"record": rec})
	})
}

func registerRadarTool(s *server.MCPServer, radar RadarRunner, runTimeout time.Duration) {
	tool := mcp.NewTool("run_radar",
		mcp.WithDescription("Scan recent articles and podcasts for new talent, score candidates, and append unseen names to the registry."),
		mcp.WithString("window",
			mcp.Description("Look-back window as a Go duration, e.g. 24h or 72h (default: configured window)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var window time.Duration
		if raw := req.GetString("window", ""); raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil || d <= 0 {
				return mcp.NewToolResultError(fmt.Sprintf("invalid window %q", raw)), nil
			}
			window = d
		}

		if runTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, runTimeout)
			defer cancel()
		}

		result, err := radar.Run(ctx, usecase.RunRequest{Window: window})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("radar run failed: %v", err)), nil
		}
		return jsonResult(map[string]any{
			"newlyAddedCount": result.NewlyAdded,
			"attempted":       result.Attempted,
			"failed":          result.Failed,
			"added":           nonNil(result.Added),
			"total":           len(result.Records),
		})
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func statusNames() []string {
	names := make([]string, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		names = append(names, string(s))
	}
	return names
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
