package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Locator string `json:"locator" jsonschema:"the locator to resolve, e.g. ssl://example.com/san or json://config.json/servers?port>8000"`
}

// BatchInput is the input schema for the batch tool.
type BatchInput struct {
	Locators []string `json:"locators" jsonschema:"locators to resolve; each one succeeds or fails on its own"`
}

// DescribeInput is the input schema for the describe_scheme tool.
type DescribeInput struct {
	Scheme string `json:"scheme" jsonschema:"the scheme to describe, e.g. github"`
}

// SchemesOutput is the output schema for the list_schemes tool.
type SchemesOutput struct {
	Schemes []domain.Capabilities `json:"schemes"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "query",
		Description: "Resolve one locator and return the result envelope. " +
			"Query parameters filter, sort, project and budget the items.",
	}, s.handleQuery)

	if s.ports.Batch != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "batch",
			Description: "Resolve many locators concurrently and return one record per locator plus a summary",
		}, s.handleBatch)
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_schemes",
		Description: "List the registered locator schemes and their capabilities",
	}, s.handleListSchemes)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "describe_scheme",
		Description: "Describe one scheme: fields, elements, operators and example locators",
	}, s.handleDescribeScheme)
}

// handleQuery handles the query tool invocation. Failures are reported as
// tool errors carrying the classified error record.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, any, error) {
	env, err := s.ports.Query.Query(ctx, input.Locator)
	if err != nil {
		return errorResult(domain.ClassifyError(input.Locator, err))
	}

	data, err := env.MarshalJSON()
	if err != nil {
		return nil, nil, fmt.Errorf("marshalling envelope: %w", err)
	}
	return nil, json.RawMessage(data), nil
}

// handleBatch handles the batch tool invocation.
func (s *Server) handleBatch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BatchInput,
) (*mcp.CallToolResult, any, error) {
	var records []any
	summary := s.ports.Batch.RunLocators(ctx, input.Locators, func(rec domain.BatchRecord) {
		records = append(records, rec.ToObject())
	})
	if records == nil {
		records = []any{}
	}

	out := domain.NewObject().
		Set("records", records).
		Set("summary", domain.NewObject().
			Set("runId", summary.RunID).
			Set("total", summary.Total).
			Set("succeeded", summary.Succeeded).
			Set("failed", summary.Failed).
			Set("exitCode", summary.ExitCode))

	data, err := out.MarshalJSON()
	if err != nil {
		return nil, nil, fmt.Errorf("marshalling batch: %w", err)
	}
	return nil, json.RawMessage(data), nil
}

// handleListSchemes handles the list_schemes tool invocation.
func (s *Server) handleListSchemes(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ any,
) (*mcp.CallToolResult, SchemesOutput, error) {
	schemes := s.ports.Schemes.List()
	if schemes == nil {
		schemes = []domain.Capabilities{}
	}
	return nil, SchemesOutput{Schemes: schemes}, nil
}

// handleDescribeScheme handles the describe_scheme tool invocation.
func (s *Server) handleDescribeScheme(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input DescribeInput,
) (*mcp.CallToolResult, *domain.Capabilities, error) {
	caps, err := s.ports.Schemes.Describe(input.Scheme)
	if err != nil {
		return nil, nil, err
	}
	return nil, caps, nil
}

func errorResult(rec domain.ErrorRecord) (*mcp.CallToolResult, any, error) {
	data, err := json.Marshal(map[string]domain.ErrorRecord{"error": rec})
	if err != nil {
		return nil, nil, fmt.Errorf("marshalling error record: %w", err)
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
