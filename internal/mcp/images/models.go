// Package images implements the blob-backed image upload and download
// operations behind the MCP tools: blob naming, source policy checks,
// content-type validation, and the pass-through to the object store.
package images

// Outcome status values callers can branch on without inspecting error text.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// UploadOutcome describes one upload attempt. Immutable once returned.
type UploadOutcome struct {
	Source    string `json:"source,omitempty"`
	BlobURL   string `json:"blob_url,omitempty"`
	Markdown  string `json:"markdown,omitempty"`
	Filename  string `json:"filename,omitempty"`
	SizeBytes int    `json:"size_bytes,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// DownloadOutcome describes one blob-to-local-path download attempt.
type DownloadOutcome struct {
	Filename     string `json:"filename"`
	DownloadPath string `json:"download_path,omitempty"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
}

func uploadFailure(source, errMsg string) UploadOutcome {
	return UploadOutcome{
		Source: source,
		Status: StatusFailed,
		Error:  errMsg,
	}
}
