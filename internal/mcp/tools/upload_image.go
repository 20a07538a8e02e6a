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

// UploadImageTool implements the upload_image MCP tool.
type UploadImageTool struct {
	store  ImageStore
	logger logSDK.Logger
}

// NewUploadImageTool constructs an UploadImageTool with the provided dependencies.
func NewUploadImageTool(store ImageStore, logger logSDK.Logger) (*UploadImageTool, error) {
	if store == nil {
		return nil, errors.New("image store is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &UploadImageTool{
		store:  store,
		logger: logger,
	}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *UploadImageTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"upload_image",
		mcp.WithDescription("Fetch an image from a URL or local file path, store it in the blob bucket and return a signed link."),
		mcp.WithString(
			"image_source",
			mcp.Required(),
			mcp.Description("HTTP(S) URL or local file path of the image to upload."),
		),
		mcp.WithString(
			"blob_name",
			mcp.Description("Optional object name for the stored blob. Auto-generated from the source and a timestamp when omitted."),
		),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Handle executes the upload_image tool logic using the configured dependencies.
func (t *UploadImageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("image_source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	source = strings.TrimSpace(source)
	if source == "" {
		return mcp.NewToolResultError("image_source cannot be empty"), nil
	}

	blobName := strings.TrimSpace(req.GetString("blob_name", ""))

	start := time.Now().UTC()
	t.logger.Debug("upload_image started", zap.String("blob_name", blobName))

	outcome := t.store.UploadSource(ctx, source, blobName)

	t.logger.Debug("upload_image completed",
		zap.String("status", outcome.Status),
		zap.String("filename", outcome.Filename),
		zap.Duration("duration", time.Since(start)),
	)

	toolResult, err := mcp.NewToolResultJSON(outcome)
	if err != nil {
		t.logger.Error("encode upload result", zap.Error(err))
		return mcp.NewToolResultError("failed to encode upload result"), nil
	}

	return toolResult, nil
}
