package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/image-mcp/internal/mcp/images"
	"github.com/Laisky/image-mcp/library/log"
)

type stubImageStore struct {
	uploadOutcome   images.UploadOutcome
	saveOutcomes    []images.UploadOutcome
	downloadOutcome images.DownloadOutcome

	lastSource   string
	lastBlobName string
	lastSources  []string
	lastPrefix   string
	lastFilename string
	lastPath     string
	uploadCalls  int
	saveCalls    int
}

func (s *stubImageStore) UploadSource(_ context.Context, source, blobName string) images.UploadOutcome {
	s.uploadCalls++
	s.lastSource = source
	s.lastBlobName = blobName
	return s.uploadOutcome
}

func (s *stubImageStore) SaveAll(_ context.Context, sources []string, prefix string) []images.UploadOutcome {
	s.saveCalls++
	s.lastSources = sources
	s.lastPrefix = prefix
	return s.saveOutcomes
}

func (s *stubImageStore) Download(_ context.Context, filename, downloadPath string) images.DownloadOutcome {
	s.lastFilename = filename
	s.lastPath = downloadPath
	return s.downloadOutcome
}

func mustUploadImageTool(t *testing.T, store ImageStore) *UploadImageTool {
	t.Helper()

	tool, err := NewUploadImageTool(store, log.Logger.Named("test_upload_image"))
	require.NoError(t, err)
	return tool
}

func TestUploadImageHandleMissingSource(t *testing.T) {
	store := &stubImageStore{}
	tool := mustUploadImageTool(t, store)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]any{},
		},
	}

	result, err := tool.Handle(context.Background(), req)
	require.NoError(t, err)
	require.True(t, result.IsError)
	require.Zero(t, store.uploadCalls)
}

func TestUploadImageHandleSuccess(t *testing.T) {
	store := &stubImageStore{
		uploadOutcome: images.UploadOutcome{
			Source:    "https://example.com/cat.jpg",
			BlobURL:   "https://blob.example.com/cat_20240315_093045.jpg",
			Markdown:  "![cat_20240315_093045.jpg](https://blob.example.com/cat_20240315_093045.jpg)",
			Filename:  "cat_20240315_093045.jpg",
			SizeBytes: 4,
			Status:    images.StatusSuccess,
		},
	}
	tool := mustUploadImageTool(t, store)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]any{
				"image_source": "https://example.com/cat.jpg",
				"blob_name":    "  custom.jpg ",
			},
		},
	}

	result, err := tool.Handle(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Equal(t, "https://example.com/cat.jpg", store.lastSource)
	require.Equal(t, "custom.jpg", store.lastBlobName)

	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var payload images.UploadOutcome
	require.NoError(t, json.Unmarshal([]byte(textContent.Text), &payload))
	require.Equal(t, images.StatusSuccess, payload.Status)
	require.Equal(t, "cat_20240315_093045.jpg", payload.Filename)
	require.Contains(t, payload.Markdown, payload.BlobURL)
}

func TestUploadImageHandleFailureOutcome(t *testing.T) {
	store := &stubImageStore{
		uploadOutcome: images.UploadOutcome{
			Source: "https://images.unsplash.com/photo.jpg",
			Status: images.StatusFailed,
			Error:  "royalty-free image sources are not allowed",
		},
	}
	tool := mustUploadImageTool(t, store)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]any{
				"image_source": "https://images.unsplash.com/photo.jpg",
			},
		},
	}

	// domain failures travel inside the JSON payload
	result, err := tool.Handle(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError)

	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var payload images.UploadOutcome
	require.NoError(t, json.Unmarshal([]byte(textContent.Text), &payload))
	require.Equal(t, images.StatusFailed, payload.Status)
	require.Contains(t, payload.Error, "royalty-free")
}

func TestNewUploadImageToolValidation(t *testing.T) {
	_, err := NewUploadImageTool(nil, log.Logger)
	require.Error(t, err)
	_, err = NewUploadImageTool(&stubImageStore{}, nil)
	require.Error(t, err)
}
