package images

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	appLog "github.com/Laisky/image-mcp/library/log"
)

// signedURLTTL is how long minted retrieval URLs stay valid.
const signedURLTTL = 24 * time.Hour

// BlobStore is the object-store capability the service depends on.
// Implemented by library/blob.Store.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
	SignedURL(ctx context.Context, name string, ttl time.Duration) (string, error)
	Get(ctx context.Context, name string) ([]byte, error)
	Download(ctx context.Context, name, path string) error
}

// Downloader fetches image bytes from a URL. Implemented by fetch.Client.
type Downloader interface {
	Download(ctx context.Context, url string) (body []byte, contentType string, err error)
}

// Service implements the upload/download operations. Per-item failures
// are reported as structured outcomes, never as Go errors, so batch
// siblings stay independent.
type Service struct {
	store      BlobStore
	downloader Downloader
	logger     logSDK.Logger
	now        func() time.Time
}

// Option customises a Service during construction.
type Option func(*Service)

// WithLogger overrides the default named logger.
func WithLogger(logger logSDK.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock supplies a deterministic clock, primarily for testing
// timestamp-embedding blob names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a Service with the provided dependencies.
func NewService(store BlobStore, downloader Downloader, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("blob store is required")
	}
	if downloader == nil {
		return nil, errors.New("downloader is required")
	}

	s := &Service{
		store:      store,
		downloader: downloader,
		logger:     appLog.Logger.Named("images"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// UploadSource fetches one image (URL or local file path) and stores it
// under blobName, auto-generating the name when empty.
func (s *Service) UploadSource(ctx context.Context, source, blobName string) UploadOutcome {
	if strings.TrimSpace(source) == "" {
		return uploadFailure(source, "image source cannot be empty")
	}

	if isHTTPSource(source) {
		return s.uploadFromURL(ctx, source, blobName)
	}
	return s.uploadFromFile(ctx, source, blobName)
}

func (s *Service) uploadFromURL(ctx context.Context, source, blobName string) UploadOutcome {
	// Policy check runs before any network transfer.
	if IsRoyaltyFreeURL(source) {
		return uploadFailure(source, "royalty-free image sources are not allowed")
	}

	if blobName == "" {
		blobName = autoBlobName(source, s.now())
	}

	body, contentType, err := s.downloader.Download(ctx, source)
	if err != nil {
		return uploadFailure(source, fmt.Sprintf("fetch image: %v", err))
	}

	return s.UploadBytes(ctx, source, blobName, body, contentType)
}

func (s *Service) uploadFromFile(ctx context.Context, source, blobName string) UploadOutcome {
	data, err := os.ReadFile(source)
	if err != nil {
		if os.IsNotExist(err) {
			return uploadFailure(source, "file not found and not a valid URL")
		}
		return uploadFailure(source, fmt.Sprintf("read file: %v", err))
	}

	if blobName == "" {
		blobName = autoBlobName(source, s.now())
	}

	return s.UploadBytes(ctx, source, blobName, data, http.DetectContentType(data))
}

// UploadBytes validates and stores raw bytes under blobName, returning
// the signed retrieval URL and a markdown-ready link. Non-image content
// is rejected before any blob-store call.
func (s *Service) UploadBytes(ctx context.Context, source, blobName string, data []byte, contentType string) UploadOutcome {
	if !strings.HasPrefix(contentType, "image/") {
		return uploadFailure(source, fmt.Sprintf("not an image (got %s)", contentType))
	}

	if err := s.store.Put(ctx, blobName, data, contentType); err != nil {
		s.logger.Error("put blob", zap.Error(err), zap.String("blob", blobName))
		return uploadFailure(source, fmt.Sprintf("store blob: %v", err))
	}

	signedURL, err := s.store.SignedURL(ctx, blobName, signedURLTTL)
	if err != nil {
		s.logger.Error("sign blob url", zap.Error(err), zap.String("blob", blobName))
		return uploadFailure(source, fmt.Sprintf("sign blob url: %v", err))
	}

	s.logger.Info("uploaded image",
		zap.String("blob", blobName),
		zap.Int("size", len(data)))

	return UploadOutcome{
		Source:    source,
		BlobURL:   signedURL,
		Markdown:  fmt.Sprintf("![%s](%s)", blobName, signedURL),
		Filename:  blobName,
		SizeBytes: len(data),
		Status:    StatusSuccess,
	}
}

// SaveAll uploads every source with auto-generated indexed blob names.
// One outcome per input item, independent of sibling failures.
func (s *Service) SaveAll(ctx context.Context, sources []string, prefix string) []UploadOutcome {
	if len(sources) == 0 {
		return []UploadOutcome{uploadFailure("", "no image sources provided")}
	}

	outcomes := make([]UploadOutcome, 0, len(sources))
	for i, source := range sources {
		blobName := batchBlobName(prefix, i+1, source, s.now())
		outcomes = append(outcomes, s.UploadSource(ctx, source, blobName))
	}

	var succeeded int
	for _, outcome := range outcomes {
		if outcome.Status == StatusSuccess {
			succeeded++
		}
	}
	s.logger.Info("batch upload finished",
		zap.Int("total", len(sources)),
		zap.Int("succeeded", succeeded))

	return outcomes
}

// Download copies a stored blob to a local path.
func (s *Service) Download(ctx context.Context, filename, downloadPath string) DownloadOutcome {
	if strings.TrimSpace(filename) == "" {
		return DownloadOutcome{
			Filename: filename,
			Status:   StatusFailed,
			Error:    "filename cannot be empty",
		}
	}
	if strings.TrimSpace(downloadPath) == "" {
		return DownloadOutcome{
			Filename: filename,
			Status:   StatusFailed,
			Error:    "download path cannot be empty",
		}
	}

	if err := s.store.Download(ctx, filename, downloadPath); err != nil {
		s.logger.Error("download blob",
			zap.Error(err),
			zap.String("blob", filename))
		return DownloadOutcome{
			Filename: filename,
			Status:   StatusFailed,
			Error:    fmt.Sprintf("download blob: %v", err),
		}
	}

	return DownloadOutcome{
		Filename:     filename,
		DownloadPath: downloadPath,
		Status:       StatusSuccess,
	}
}
