package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/ports"
)

const (
	serverName    = "financeyatra"
	serverVersion = "1.0.0"

	toolAsk   = "ask_financial_question"
	toolStats = "rag_stats"
)

// Server exposes the query pipeline as MCP tools.
type Server struct {
	query ports.QueryService
	mcp   *server.MCPServer
}

func NewServer(query ports.QueryService) *Server {
	s := &Server{
		query: query,
		mcp:   server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false)),
	}

	languageCodes := make([]string, 0, len(domain.SupportedLanguages()))
	for _, lang := range domain.SupportedLanguages() {
		languageCodes = append(languageCodes, string(lang.Code))
	}

	s.mcp.AddTool(mcp.NewTool(toolAsk,
		mcp.WithDescription("Answer a personal-finance question (EMI, UPI, savings, loans, investments) in one of ten Indian languages, grounded in the FinanceYatra knowledge base."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question text in any supported language.")),
		mcp.WithString("language", mcp.Description("Response language code. Detected from the question when omitted."), mcp.Enum(languageCodes...)),
		mcp.WithString("proficiency_level", mcp.Description("Answer depth."), mcp.Enum("beginner", "intermediate", "expert")),
		mcp.WithNumber("k", mcp.Description("Number of knowledge chunks to retrieve (1-10)."), mcp.Min(domain.MinTopK), mcp.Max(domain.MaxTopK)),
		mcp.WithBoolean("return_sources", mcp.Description("Include retrieved sources in the result.")),
	), s.handleAsk)

	s.mcp.AddTool(mcp.NewTool(toolStats,
		mcp.WithDescription("Report vector store, model and translation status of the FinanceYatra pipeline."),
	), s.handleStats)

	return s
}

// ServeStdio blocks serving MCP over stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil || strings.TrimSpace(question) == "" {
		return mcp.NewToolResultError("question is required"), nil
	}

	query := domain.Query{
		Text:        question,
		Language:    domain.LanguageCode(request.GetString("language", "")),
		Proficiency: domain.Proficiency(request.GetString("proficiency_level", "")),
		K:           request.GetInt("k", 0),
		WantSources: request.GetBool("return_sources", false),
	}

	resp := s.query.ProcessQuery(ctx, query)
	if resp.Outcome == domain.OutcomeError {
		return mcp.NewToolResultError(fmt.Sprintf("%s (%s)", resp.Answer, resp.Error)), nil
	}
	return jsonResult(resp)
}

func (s *Server) handleStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.query.Stats(ctx))
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(body)), nil
}
