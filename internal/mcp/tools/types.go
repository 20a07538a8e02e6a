package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/image-mcp/internal/mcp/images"
	"github.com/Laisky/image-mcp/library/imagesearch"
)

// Tool exposes the capabilities required by the MCP server registration lifecycle.
type Tool interface {
	Definition() mcp.Tool
	Handle(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// ImageSearcher routes an image query through the configured search strategies.
type ImageSearcher interface {
	SearchImages(ctx context.Context, query string, maxResults int) []imagesearch.Result
}

// ImageStore covers the blob-backed image operations shared by the upload,
// batch-save and download tools.
type ImageStore interface {
	UploadSource(ctx context.Context, source, blobName string) images.UploadOutcome
	SaveAll(ctx context.Context, sources []string, prefix string) []images.UploadOutcome
	Download(ctx context.Context, filename, downloadPath string) images.DownloadOutcome
}
