package matching

const (
	NEUTRAL_SCORE = 0.5

	DEFAULT_DISTANCE_FLEXIBILITY_PCT = 10.0
	DEFAULT_GRANULARITY_METERS       = 200.0
	DEFAULT_MIN_MATCH_PERCENTAGE     = 40.0
	DEFAULT_DTW_WINDOW               = 10

	// below this many candidates the worker pool costs more than it saves
	MIN_PARALLEL_CANDIDATES = 16
)
