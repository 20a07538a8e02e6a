package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/image-mcp/internal/mcp/images"
)

// SaveImagesTool implements the save_images MCP tool.
type SaveImagesTool struct {
	store  ImageStore
	logger logSDK.Logger
}

// NewSaveImagesTool constructs a SaveImagesTool with the provided dependencies.
func NewSaveImagesTool(store ImageStore, logger logSDK.Logger) (*SaveImagesTool, error) {
	if store == nil {
		return nil, errors.New("image store is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &SaveImagesTool{
		store:  store,
		logger: logger,
	}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *SaveImagesTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"save_images",
		mcp.WithDescription("Upload a batch of images to the blob bucket, returning a per-source outcome for each entry."),
		mcp.WithArray(
			"image_sources",
			mcp.Required(),
			mcp.Description("HTTP(S) URLs or local file paths of the images to upload."),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString(
			"blob_prefix",
			mcp.Description("Optional prefix for the generated object names. Defaults to `image`."),
		),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// parseSources converts the raw JSON argument into a string slice,
// rejecting any non-string entry.
func parseSources(raw any) ([]string, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, errors.New("image_sources must be an array of strings")
	}

	sources := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, errors.Errorf("image_sources[%d] is not a string", i)
		}
		sources = append(sources, s)
	}
	return sources, nil
}

// Handle executes the save_images tool logic using the configured dependencies.
func (t *SaveImagesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := req.GetArguments()["image_sources"]
	if !ok {
		return mcp.NewToolResultError("required argument \"image_sources\" not found"), nil
	}

	sources, err := parseSources(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(sources) == 0 {
		return mcp.NewToolResultError("image_sources cannot be empty"), nil
	}

	prefix := strings.TrimSpace(req.GetString("blob_prefix", ""))

	start := time.Now().UTC()
	t.logger.Debug("save_images started",
		zap.Int("sources_count", len(sources)),
		zap.String("blob_prefix", prefix))

	outcomes := t.store.SaveAll(ctx, sources, prefix)

	succeeded := 0
	for _, outcome := range outcomes {
		if outcome.Status == images.StatusSuccess {
			succeeded++
		}
	}

	t.logger.Debug("save_images completed",
		zap.Int("sources_count", len(sources)),
		zap.Int("succeeded", succeeded),
		zap.Duration("duration", time.Since(start)),
	)

	response := struct {
		Total     int                    `json:"total"`
		Succeeded int                    `json:"succeeded"`
		Results   []images.UploadOutcome `json:"results"`
	}{
		Total:     len(outcomes),
		Succeeded: succeeded,
		Results:   outcomes,
	}

	toolResult, err := mcp.NewToolResultJSON(response)
	if err != nil {
		t.logger.Error("encode save result", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode save result: %v", err)), nil
	}

	return toolResult, nil
}
