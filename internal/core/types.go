package core

import (
	"foxypack/pkg/foxypack"
)

// StatisticsKind names the concrete statistics variant in rendered output.
type StatisticsKind string

const (
	KindContainer   StatisticsKind = "container"
	KindContentItem StatisticsKind = "content_item"
	KindOther       StatisticsKind = "other"
)

// StatisticsView is the rendered form of a statistics value for JSON output.
type StatisticsView struct {
	Kind       StatisticsKind      `json:"kind"`
	Statistics foxypack.Statistics `json:"statistics"`
}

// NewStatisticsView tags stats with its variant.
func NewStatisticsView(stats foxypack.Statistics) StatisticsView {
	return StatisticsView{Kind: KindOf(stats), Statistics: stats}
}

// KindOf reports the variant of stats.
func KindOf(stats foxypack.Statistics) StatisticsKind {
	switch stats.(type) {
	case *foxypack.ContainerStats:
		return KindContainer
	case *foxypack.ContentItemStats:
		return KindContentItem
	default:
		return KindOther
	}
}
