package platform

import (
	"context"
	"strings"
	"time"

	"foxypack/pkg/foxypack"
)

const (
	// FakeSocialPlatform is the platform name reported for fakesocialmedia.com URLs.
	FakeSocialPlatform = "FakeSocialMedia"
	// contentIDParam is the query parameter carrying "<type>_<id>" content references.
	contentIDParam = "content_id"
)

var fakeSocialHosts = map[string]bool{
	"fakesocialmedia.com":     true,
	"www.fakesocialmedia.com": true,
}

var fakeSocialContentTypes = map[string]foxypack.ContentCategory{
	"video":    foxypack.CategoryVideo,
	"image":    foxypack.CategoryImage,
	"text":     foxypack.CategoryText,
	"audio":    foxypack.CategoryAudio,
	"document": foxypack.CategoryDocument,
}

// FakeSocialAnalyzer classifies fakesocialmedia.com URLs. It is a reference
// implementation used in tests and demos.
type FakeSocialAnalyzer struct{}

// NewFakeSocialAnalyzer creates a new FakeSocialMedia analyzer.
func NewFakeSocialAnalyzer() *FakeSocialAnalyzer {
	return &FakeSocialAnalyzer{}
}

// Name returns the handler name.
func (a *FakeSocialAnalyzer) Name() string { return "fakesocial" }

// Analyze classifies a FakeSocialMedia URL.
func (a *FakeSocialAnalyzer) Analyze(rawURL string) (*foxypack.Analysis, error) {
	p, err := parseURL(rawURL, fakeSocialHosts, FakeSocialPlatform)
	if err != nil {
		return nil, err
	}
	return p.analysis(FakeSocialPlatform, a.contentCategory(p)), nil
}

// contentCategory derives the category from the content_id prefix, or from the
// path when no content is referenced.
func (a *FakeSocialAnalyzer) contentCategory(p *parsedURL) foxypack.ContentCategory {
	if p.query.Has(contentIDParam) {
		contentType, _, _ := strings.Cut(p.query.Get(contentIDParam), "_")
		if category, ok := fakeSocialContentTypes[contentType]; ok {
			return category
		}
		return foxypack.CategoryUnknown
	}

	if len(p.segments) == 0 {
		return foxypack.CategoryHomepage
	}
	return foxypack.CategoryChannel
}

// FakeSocialCollector returns canned statistics for FakeSocialMedia content in
// both execution modes.
type FakeSocialCollector struct {
	now func() time.Time
}

// NewFakeSocialCollector creates a new FakeSocialMedia collector.
func NewFakeSocialCollector() *FakeSocialCollector {
	return &FakeSocialCollector{now: time.Now}
}

// Name returns the handler name.
func (c *FakeSocialCollector) Name() string { return "fakesocial" }

// Statistics returns canned statistics for a.
func (c *FakeSocialCollector) Statistics(a *foxypack.Analysis) (foxypack.Statistics, error) {
	if a == nil || a.Platform != FakeSocialPlatform {
		return nil, foxypack.NewCollection(c.Name(), "not a "+FakeSocialPlatform+" analysis")
	}

	switch a.Category {
	case foxypack.CategoryChannel:
		return &foxypack.ContainerStats{
			StatisticsBase: foxypack.NewStatisticsBase(a),
			SystemID:       "CH_001",
			Title:          "Tech Reviews Channel",
			Subscribers:    15400,
			CreatedAt:      time.Date(2019, time.March, 14, 0, 0, 0, 0, time.UTC),
		}, nil
	case foxypack.CategoryVideo:
		return &foxypack.ContentItemStats{
			StatisticsBase: foxypack.NewStatisticsBase(a),
			SystemID:       "VID_001",
			Title:          "Unboxing the Future",
			Views:          98200,
			Likes:          4100,
			PublishedAt:    c.now().UTC().Truncate(24 * time.Hour),
		}, nil
	default:
		return nil, foxypack.NewCollection(c.Name(), "no data for category "+string(a.Category))
	}
}

// StatisticsAsync returns the same canned statistics unless ctx is already done.
func (c *FakeSocialCollector) StatisticsAsync(ctx context.Context, a *foxypack.Analysis) (foxypack.Statistics, error) {
	if err := ctx.Err(); err != nil {
		return nil, foxypack.WrapError(foxypack.KindServiceUnavailable, c.Name(), err)
	}
	return c.Statistics(a)
}
