package scrape

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractQuotedOriginalURLPattern(t *testing.T) {
	text := `junk before "ou":"https://x.com/a.jpg" junk after`
	urls := ExtractImageURLs(text, 10)
	require.Contains(t, urls, "https://x.com/a.jpg")
}

func TestExtractRejectsThumbnailCDN(t *testing.T) {
	text := `"ou":"https://encrypted-tbn0.gstatic.com/images?q=abc.jpg"`
	urls := ExtractImageURLs(text, 10)
	require.Empty(t, urls)
}

func TestExtractRejectsNonContentMarkers(t *testing.T) {
	for _, u := range []string{
		"https://cdn.example.com/logo_large.png",
		"https://cdn.example.com/user/avatar.jpg",
		"https://img.example.com/thumbnail/pic.jpeg",
	} {
		urls := ExtractImageURLs(fmt.Sprintf("%q", u), 10)
		require.Empty(t, urls, "should reject %s", u)
	}
}

func TestExtractUnescapesSequences(t *testing.T) {
	text := "\"ou\":\"https:\\/\\/img.example.com\\/pic.jpg?w\\u003d800\\u0026h\\u003d600\""
	urls := ExtractImageURLs(text, 10)
	require.Contains(t, urls, "https://img.example.com/pic.jpg?w=800&h=600")
}

func TestExtractUnescapesSlashesOnly(t *testing.T) {
	text := "\"ou\":\"https:\\/\\/img.example.com\\/pic.jpg?w=800&h=600\""
	urls := ExtractImageURLs(text, 10)
	require.Contains(t, urls, "https://img.example.com/pic.jpg?w=800&h=600")
}

func TestExtractRawURLPattern(t *testing.T) {
	text := `<script>var a = ["https://photos.example.org/large/cat.webp", 1];</script>`
	urls := ExtractImageURLs(text, 10)
	require.Contains(t, urls, "https://photos.example.org/large/cat.webp")
}

func TestExtractImgTagAttributes(t *testing.T) {
	text := `<html><body>
		<img src="https://pics.example.net/full/dog.jpeg">
		<img data-src="https://pics.example.net/full/cat.png">
	</body></html>`
	urls := ExtractImageURLs(text, 10)
	require.Contains(t, urls, "https://pics.example.net/full/dog.jpeg")
	require.Contains(t, urls, "https://pics.example.net/full/cat.png")
}

func TestExtractRejectsMalformed(t *testing.T) {
	text := `"ou":"not-a-url.jpg" "src":"/relative/path.png" "data-src":"ftp://host/pic.jpg"`
	urls := ExtractImageURLs(text, 10)
	require.Empty(t, urls)
}

func TestExtractRejectsOverlongURL(t *testing.T) {
	long := "https://example.com/" + strings.Repeat("a", 2100) + ".jpg"
	urls := ExtractImageURLs(fmt.Sprintf(`"ou":"%s"`, long), 10)
	require.Empty(t, urls)
}

func TestExtractDeduplicates(t *testing.T) {
	text := `"ou":"https://x.com/same.jpg" "src":"https://x.com/same.jpg"
		<img src="https://x.com/same.jpg">`
	urls := ExtractImageURLs(text, 10)
	require.Len(t, urls, 1)
}

func TestExtractTruncatesToMaxCandidates(t *testing.T) {
	var text string
	for i := 0; i < 30; i++ {
		text += fmt.Sprintf(`"ou":"https://x.com/photos/img_%02d.jpg" `, i)
	}
	urls := ExtractImageURLs(text, 5)
	require.Len(t, urls, 5)
}

func TestExtractIdempotent(t *testing.T) {
	text := `"ou":"https://a.com/one.jpg" "ou":"https://b.com/two.png"
		<img src="https://c.com/three.webp">`
	first := ExtractImageURLs(text, 10)
	second := ExtractImageURLs(text, 10)
	require.Equal(t, first, second)
	require.Len(t, first, 3)
}
