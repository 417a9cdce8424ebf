// Package platform provides URL analyzers and statistics collectors for
// individual social-media platforms.
package platform

import (
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"

	"foxypack/pkg/foxypack"
)

// parsedURL is the normalized view of an input URL used for matching. The
// caller's original string is kept in raw and returned in results untouched.
type parsedURL struct {
	raw      string
	hostname string
	segments []string
	query    url.Values
}

// parseURL normalizes rawURL and checks that its host is one of hosts. Any
// failure is reported as a declination.
func parseURL(rawURL string, hosts map[string]bool, platformName string) (*parsedURL, error) {
	normalized := norm.NFKC.String(strings.TrimSpace(rawURL))
	if normalized == "" {
		return nil, foxypack.Decline(rawURL, "empty URL")
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return nil, foxypack.Decline(rawURL, "malformed URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, foxypack.Decline(rawURL, "not an http(s) URL")
	}

	hostname := strings.ToLower(u.Hostname())
	if !hosts[hostname] {
		return nil, foxypack.Decline(rawURL, "not a "+platformName+" URL")
	}

	return &parsedURL{
		raw:      rawURL,
		hostname: hostname,
		segments: pathSegments(u.Path),
		query:    u.Query(),
	}, nil
}

// pathSegments splits a URL path into its non-empty segments.
func pathSegments(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func (p *parsedURL) analysis(platformName string, category foxypack.ContentCategory) *foxypack.Analysis {
	return &foxypack.Analysis{
		URL:      p.raw,
		Platform: platformName,
		Category: category,
	}
}
