package projection

import (
	"math"

	"github.com/stitts-dev/nba-props/internal/features"
	"github.com/stitts-dev/nba-props/internal/props"
)

// Blend weights for the last-5, last-10 and season windows
const (
	WeightL5     = 0.6
	WeightL10    = 0.25
	WeightSeason = 0.15
)

// Project returns the point estimate for a category.
// Missing features count as 0 and unknown categories project to 0.
func Project(f props.Features, c props.Category) float64 {
	switch c {
	case props.CategoryPoints, props.CategoryAssists, props.CategoryRebounds:
		return blend(f, c)
	case props.CategoryComposite:
		return blend(f, props.CategoryPoints) +
			blend(f, props.CategoryRebounds) +
			blend(f, props.CategoryAssists)
	}
	return 0
}

func blend(f props.Features, c props.Category) float64 {
	return WeightL5*f.Get(features.Key(c, features.SuffixL5)) +
		WeightL10*f.Get(features.Key(c, features.SuffixL10)) +
		WeightSeason*f.Get(features.Key(c, ""))
}

// Round2 rounds a projection to two decimals for publishing
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
