package tools

import (
	"context"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"
)

// DownloadImageTool implements the download_image MCP tool.
type DownloadImageTool struct {
	store  ImageStore
	logger logSDK.Logger
}

// NewDownloadImageTool constructs a DownloadImageTool with the provided dependencies.
func NewDownloadImageTool(store ImageStore, logger logSDK.Logger) (*DownloadImageTool, error) {
	if store == nil {
		return nil, errors.New("image store is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &DownloadImageTool{
		store:  store,
		logger: logger,
	}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *DownloadImageTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"download_image",
		mcp.WithDescription("Download a previously stored blob to a local file path."),
		mcp.WithString(
			"filename",
			mcp.Required(),
			mcp.Description("Object name of the stored blob."),
		),
		mcp.WithString(
			"download_path",
			mcp.Required(),
			mcp.Description("Local file path to write the blob to. Parent directories are created as needed."),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

// Handle executes the download_image tool logic using the configured dependencies.
func (t *DownloadImageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	downloadPath, err := req.RequireString("download_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	filename = strings.TrimSpace(filename)
	downloadPath = strings.TrimSpace(downloadPath)

	start := time.Now().UTC()
	t.logger.Debug("download_image started", zap.String("filename", filename))

	outcome := t.store.Download(ctx, filename, downloadPath)

	t.logger.Debug("download_image completed",
		zap.String("status", outcome.Status),
		zap.String("filename", filename),
		zap.Duration("duration", time.Since(start)),
	)

	toolResult, err := mcp.NewToolResultJSON(outcome)
	if err != nil {
		t.logger.Error("encode download result", zap.Error(err))
		return mcp.NewToolResultError("failed to encode download result"), nil
	}

	return toolResult, nil
}
