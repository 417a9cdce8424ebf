package platform

import (
	"foxypack/pkg/foxypack"
)

// YouTubePlatform is the platform name reported for YouTube URLs.
const YouTubePlatform = "YouTube"

var youtubeHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
}

// YouTubeAnalyzer classifies YouTube and YouTube Music URLs.
type YouTubeAnalyzer struct{}

// NewYouTubeAnalyzer creates a new YouTube analyzer.
func NewYouTubeAnalyzer() *YouTubeAnalyzer {
	return &YouTubeAnalyzer{}
}

// Name returns the handler name.
func (a *YouTubeAnalyzer) Name() string { return "youtube" }

// Analyze classifies a YouTube URL.
func (a *YouTubeAnalyzer) Analyze(rawURL string) (*foxypack.Analysis, error) {
	p, err := parseURL(rawURL, youtubeHosts, YouTubePlatform)
	if err != nil {
		return nil, err
	}

	category, ok := a.contentCategory(p)
	if !ok {
		return nil, foxypack.Decline(rawURL, "unrecognized YouTube path")
	}
	return p.analysis(YouTubePlatform, category), nil
}

// contentCategory maps the known YouTube URL shapes to a category.
func (a *YouTubeAnalyzer) contentCategory(p *parsedURL) (foxypack.ContentCategory, bool) {
	// Short links carry the video ID as the only path segment.
	if p.hostname == "youtu.be" {
		if len(p.segments) == 1 {
			return foxypack.CategoryVideo, true
		}
		return "", false
	}

	if len(p.segments) == 0 {
		return foxypack.CategoryHomepage, true
	}

	first := p.segments[0]
	switch {
	case first == "watch":
		if p.query.Get("v") == "" {
			return "", false
		}
		return foxypack.CategoryVideo, true
	case first == "playlist":
		if p.query.Get("list") == "" {
			return "", false
		}
		return foxypack.CategoryPlaylist, true
	case first == "shorts" || first == "live" || first == "embed":
		if len(p.segments) < 2 {
			return "", false
		}
		return foxypack.CategoryVideo, true
	case first == "channel" || first == "c" || first == "user":
		if len(p.segments) < 2 {
			return "", false
		}
		return foxypack.CategoryChannel, true
	case len(first) > 1 && first[0] == '@':
		return foxypack.CategoryChannel, true
	}
	return "", false
}
