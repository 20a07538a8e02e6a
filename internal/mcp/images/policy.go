package images

import (
	"net/url"
	"strings"
)

// royaltyFreeDomains lists stock-photo hosts whose content must not be
// ingested. Matching is by host suffix so subdomains such as
// images.unsplash.com are covered.
var royaltyFreeDomains = []string{
	"pexels.com",
	"unsplash.com",
	"pixabay.com",
	"freepik.com",
	"stock.adobe.com",
}

// IsRoyaltyFreeURL reports whether rawURL points at a blocked
// royalty-free stock-photo host.
func IsRoyaltyFreeURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	for _, domain := range royaltyFreeDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

func isHTTPSource(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
