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

func mustDownloadImageTool(t *testing.T, store ImageStore) *DownloadImageTool {
	t.Helper()

	tool, err := NewDownloadImageTool(store, log.Logger.Named("test_download_image"))
	require.NoError(t, err)
	return tool
}

func TestDownloadImageHandleMissingArguments(t *testing.T) {
	store := &stubImageStore{}
	tool := mustDownloadImageTool(t, store)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]any{
				"filename": "pic.png",
			},
		},
	}

	result, err := tool.Handle(context.Background(), req)
	require.NoError(t, err)
	require.True(t, result.IsError)
	require.Empty(t, store.lastFilename)
}

func TestDownloadImageHandleSuccess(t *testing.T) {
	store := &stubImageStore{
		downloadOutcome: images.DownloadOutcome{
			Filename:     "pic.png",
			DownloadPath: "/tmp/out/pic.png",
			Status:       images.StatusSuccess,
		},
	}
	tool := mustDownloadImageTool(t, store)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]any{
				"filename":      " pic.png ",
				"download_path": "/tmp/out/pic.png",
			},
		},
	}

	result, err := tool.Handle(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Equal(t, "pic.png", store.lastFilename)
	require.Equal(t, "/tmp/out/pic.png", store.lastPath)

	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var payload images.DownloadOutcome
	require.NoError(t, json.Unmarshal([]byte(textContent.Text), &payload))
	require.Equal(t, images.StatusSuccess, payload.Status)
	require.Equal(t, "/tmp/out/pic.png", payload.DownloadPath)
}

func TestDownloadImageHandleFailureOutcome(t *testing.T) {
	store := &stubImageStore{
		downloadOutcome: images.DownloadOutcome{
			Filename: "absent.png",
			Status:   images.StatusFailed,
			Error:    "download blob: object not found",
		},
	}
	tool := mustDownloadImageTool(t, store)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]any{
				"filename":      "absent.png",
				"download_path": "/tmp/out/absent.png",
			},
		},
	}

	result, err := tool.Handle(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError)

	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var payload images.DownloadOutcome
	require.NoError(t, json.Unmarshal([]byte(textContent.Text), &payload))
	require.Equal(t, images.StatusFailed, payload.Status)
	require.Contains(t, payload.Error, "not found")
}

func TestNewDownloadImageToolValidation(t *testing.T) {
	_, err := NewDownloadImageTool(nil, log.Logger)
	require.Error(t, err)
	_, err = NewDownloadImageTool(&stubImageStore{}, nil)
	require.Error(t, err)
}
