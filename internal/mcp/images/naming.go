package images

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const (
	timestampLayout  = "20060102_150405"
	defaultExtension = "png"
	defaultSlug      = "image"
)

var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"webp": true,
}

// sourceBasename extracts the file name component of a URL or local path.
func sourceBasename(source string) string {
	if isHTTPSource(source) {
		if parsed, err := url.Parse(source); err == nil {
			return path.Base(parsed.Path)
		}
		return ""
	}
	return filepath.Base(source)
}

// normalizeExtension derives a lowercase image extension from the source,
// defaulting to png when the extension is absent or not a known image
// type.
func normalizeExtension(source string) string {
	base := sourceBasename(source)
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(base), "."))
	if !allowedExtensions[ext] {
		return defaultExtension
	}
	return ext
}

// autoBlobName builds `<slug>_<timestamp>.<ext>` from the source. Names
// always embed the timestamp so a name is never implicitly reused.
func autoBlobName(source string, now time.Time) string {
	base := sourceBasename(source)
	slug := strings.TrimSuffix(base, path.Ext(base))
	if slug == "" || slug == "." || slug == "/" {
		slug = defaultSlug
	}

	return fmt.Sprintf("%s_%s.%s",
		slug, now.Format(timestampLayout), normalizeExtension(source))
}

// batchBlobName builds `<prefix>_<NNN>_<timestamp>.<ext>` for the idx-th
// (1-based) item of a batch upload.
func batchBlobName(prefix string, idx int, source string, now time.Time) string {
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultSlug
	}

	return fmt.Sprintf("%s_%03d_%s.%s",
		prefix, idx, now.Format(timestampLayout), normalizeExtension(source))
}
