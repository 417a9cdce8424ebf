package platform

import (
	"foxypack/pkg/foxypack"
)

// SoundCloudPlatform is the platform name reported for SoundCloud URLs.
const SoundCloudPlatform = "SoundCloud"

var soundcloudHosts = map[string]bool{
	"soundcloud.com":     true,
	"www.soundcloud.com": true,
	"m.soundcloud.com":   true,
}

// soundcloudReserved are top-level paths that are not artist profiles.
var soundcloudReserved = map[string]bool{
	"discover": true,
	"search":   true,
	"upload":   true,
	"stream":   true,
	"you":      true,
	"charts":   true,
}

// SoundCloudAnalyzer classifies SoundCloud URLs.
type SoundCloudAnalyzer struct{}

// NewSoundCloudAnalyzer creates a new SoundCloud analyzer.
func NewSoundCloudAnalyzer() *SoundCloudAnalyzer {
	return &SoundCloudAnalyzer{}
}

// Name returns the handler name.
func (a *SoundCloudAnalyzer) Name() string { return "soundcloud" }

// Analyze classifies a SoundCloud URL.
func (a *SoundCloudAnalyzer) Analyze(rawURL string) (*foxypack.Analysis, error) {
	p, err := parseURL(rawURL, soundcloudHosts, SoundCloudPlatform)
	if err != nil {
		return nil, err
	}

	var category foxypack.ContentCategory
	switch n := len(p.segments); {
	case n == 0:
		category = foxypack.CategoryHomepage
	case soundcloudReserved[p.segments[0]]:
		return nil, foxypack.Decline(rawURL, "not a SoundCloud content page")
	case n == 1:
		category = foxypack.CategoryChannel
	case n == 3 && p.segments[1] == "sets":
		category = foxypack.CategoryPlaylist
	case n == 2 && p.segments[1] != "sets":
		category = foxypack.CategoryAudio
	default:
		return nil, foxypack.Decline(rawURL, "unrecognized SoundCloud path")
	}

	return p.analysis(SoundCloudPlatform, category), nil
}
