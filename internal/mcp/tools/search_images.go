package tools

import (
	"context"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/image-mcp/library/imagesearch"
)

// SearchImagesTool implements the search_images MCP tool.
type SearchImagesTool struct {
	searcher ImageSearcher
	logger   logSDK.Logger
}

// NewSearchImagesTool constructs a SearchImagesTool with the provided dependencies.
func NewSearchImagesTool(searcher ImageSearcher, logger logSDK.Logger) (*SearchImagesTool, error) {
	if searcher == nil {
		return nil, errors.New("image searcher is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &SearchImagesTool{
		searcher: searcher,
		logger:   logger,
	}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *SearchImagesTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"search_images",
		mcp.WithDescription("Search Google Images for a query and return direct image URLs with titles and source pages."),
		mcp.WithString(
			"search_query",
			mcp.Required(),
			mcp.Description("Plain text image search query."),
		),
		mcp.WithNumber(
			"max_results",
			mcp.Description("Maximum number of images to return, between 1 and 20. Defaults to 10."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Handle executes the search_images tool logic using the configured dependencies.
func (t *SearchImagesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("search_query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return mcp.NewToolResultError("search_query cannot be empty"), nil
	}

	maxResults := req.GetInt("max_results", 0)

	start := time.Now().UTC()
	t.logger.Debug("search_images started",
		zap.Int("query_len", len(query)),
		zap.Int("max_results", maxResults))

	results := t.searcher.SearchImages(ctx, query, maxResults)

	t.logger.Debug("search_images completed",
		zap.Int("query_len", len(query)),
		zap.Int("results_count", len(results)),
		zap.Int("hits", imagesearch.SuccessCount(results)),
		zap.Duration("duration", time.Since(start)),
	)

	toolResult, err := mcp.NewToolResultJSON(results)
	if err != nil {
		t.logger.Error("encode image search result", zap.Error(err))
		return mcp.NewToolResultError("failed to encode image search result"), nil
	}

	return toolResult, nil
}
