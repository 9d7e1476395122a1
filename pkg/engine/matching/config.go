package matching

import (
	"fmt"
	"math"

	"github.com/lintang-b-s/curvematch/pkg/util"
)

type ElevationMetric string

const (
	// ElevationMetricRollingGradient. correlation of rolling gradient profiles, the primary metric.
	ElevationMetricRollingGradient ElevationMetric = "rolling_gradient"
	// ElevationMetricDTW. banded dynamic time warping over raw elevations.
	ElevationMetricDTW ElevationMetric = "dtw"
)

type ShapeMetric string

const (
	ShapeMetricHausdorff ShapeMetric = "hausdorff"
	ShapeMetricFrechet   ShapeMetric = "frechet"
)

// MatchingConfig. per request tuning of the matching engine.
type MatchingConfig struct {
	DistanceFlexibilityPct float64
	ShapeImportance        float64
	TurnsImportance        float64
	ElevationImportance    float64
	GranularityMeters      float64
	MinMatchPercentage     float64

	ElevationMetric ElevationMetric
	ShapeMetric     ShapeMetric
	DTWWindow       int
}

func DefaultMatchingConfig() MatchingConfig {
	return MatchingConfig{
		DistanceFlexibilityPct: DEFAULT_DISTANCE_FLEXIBILITY_PCT,
		ShapeImportance:        1.0,
		TurnsImportance:        0.5,
		ElevationImportance:    1.0,
		GranularityMeters:      DEFAULT_GRANULARITY_METERS,
		MinMatchPercentage:     DEFAULT_MIN_MATCH_PERCENTAGE,
		ElevationMetric:        ElevationMetricRollingGradient,
		ShapeMetric:            ShapeMetricHausdorff,
		DTWWindow:              DEFAULT_DTW_WINDOW,
	}
}

// Validate. all zero importances is allowed (neutral scoring), negative or non finite values are not.
func (c MatchingConfig) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"distance flexibility", c.DistanceFlexibilityPct},
		{"shape importance", c.ShapeImportance},
		{"turns importance", c.TurnsImportance},
		{"elevation importance", c.ElevationImportance},
		{"min match percentage", c.MinMatchPercentage},
	}
	for _, f := range fields {
		if !util.IsFinite(f.value) || f.value < 0 {
			return util.WrapErrorf(nil, util.ErrBadParamInput, "%s must be a non negative number, got %v", f.name, f.value)
		}
	}
	if !util.IsFinite(c.GranularityMeters) || c.GranularityMeters <= 0 {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "granularity must be positive, got %v", c.GranularityMeters)
	}
	if c.DTWWindow < 0 {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "dtw window must be non negative, got %d", c.DTWWindow)
	}
	switch c.ElevationMetric {
	case ElevationMetricRollingGradient, ElevationMetricDTW, "":
	default:
		return util.WrapErrorf(nil, util.ErrBadParamInput, "unknown elevation metric %q", c.ElevationMetric)
	}
	switch c.ShapeMetric {
	case ShapeMetricHausdorff, ShapeMetricFrechet, "":
	default:
		return util.WrapErrorf(nil, util.ErrBadParamInput, "unknown shape metric %q", c.ShapeMetric)
	}
	return nil
}

// DistanceWindow. acceptable candidate length range around the input distance, meters.
func (c MatchingConfig) DistanceWindow(inputDistance float64) (float64, float64) {
	flex := c.DistanceFlexibilityPct / 100.0
	return inputDistance * math.Max(0, 1-flex), inputDistance * (1 + flex)
}

func (c MatchingConfig) String() string {
	return fmt.Sprintf("flex=%.1f%% shape=%.2f turns=%.2f elevation=%.2f(%s) granularity=%.0fm min=%.1f%%",
		c.DistanceFlexibilityPct, c.ShapeImportance, c.TurnsImportance, c.ElevationImportance, c.ElevationMetric,
		c.GranularityMeters, c.MinMatchPercentage)
}
