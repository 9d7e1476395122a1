package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/lintang-b-s/curvematch/pkg/engine/matching"
	http_router "github.com/lintang-b-s/curvematch/pkg/http/router"
	"github.com/lintang-b-s/curvematch/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/curvematch/pkg/http/server"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
	g   errgroup.Group
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// SetMatchingDefaults. MATCH_* viper defaults taken from matching.DefaultMatchingConfig.
func SetMatchingDefaults() {
	d := matching.DefaultMatchingConfig()
	viper.SetDefault("MATCH_DISTANCE_FLEXIBILITY", d.DistanceFlexibilityPct)
	viper.SetDefault("MATCH_SHAPE_IMPORTANCE", d.ShapeImportance)
	viper.SetDefault("MATCH_TURNS_IMPORTANCE", d.TurnsImportance)
	viper.SetDefault("MATCH_ELEVATION_IMPORTANCE", d.ElevationImportance)
	viper.SetDefault("MATCH_GRANULARITY_METERS", d.GranularityMeters)
	viper.SetDefault("MATCH_MIN_PERCENTAGE", d.MinMatchPercentage)
	viper.SetDefault("MATCH_ELEVATION_METRIC", string(d.ElevationMetric))
	viper.SetDefault("MATCH_SHAPE_METRIC", string(d.ShapeMetric))
	viper.SetDefault("MATCH_DTW_WINDOW", d.DTWWindow)
}

// MatchingConfigFromViper. server wide defaults for match requests.
func MatchingConfigFromViper() matching.MatchingConfig {
	return matching.MatchingConfig{
		DistanceFlexibilityPct: viper.GetFloat64("MATCH_DISTANCE_FLEXIBILITY"),
		ShapeImportance:        viper.GetFloat64("MATCH_SHAPE_IMPORTANCE"),
		TurnsImportance:        viper.GetFloat64("MATCH_TURNS_IMPORTANCE"),
		ElevationImportance:    viper.GetFloat64("MATCH_ELEVATION_IMPORTANCE"),
		GranularityMeters:      viper.GetFloat64("MATCH_GRANULARITY_METERS"),
		MinMatchPercentage:     viper.GetFloat64("MATCH_MIN_PERCENTAGE"),
		ElevationMetric:        matching.ElevationMetric(viper.GetString("MATCH_ELEVATION_METRIC")),
		ShapeMetric:            matching.ShapeMetric(viper.GetString("MATCH_SHAPE_METRIC")),
		DTWWindow:              viper.GetInt("MATCH_DTW_WINDOW"),
	}
}

// Use. starts the api in the background, Wait returns its error once ctx is canceled.
func (s *Server) Use(
	ctx context.Context,
	log *zap.Logger,

	useRateLimit bool,
	matchingService controllers.MatchingService,
	libraryService controllers.LibraryService,
) (*Server, error) {
	config := http_server.Config{
		Port:           viper.GetInt("API_PORT"),
		Timeout:        viper.GetDuration("API_TIMEOUT"),
		MaxUploadBytes: viper.GetInt64("MAX_UPLOAD_BYTES"),
	}

	defaults := MatchingConfigFromViper()
	if err := defaults.Validate(); err != nil {
		return nil, err
	}

	server := http_router.NewAPI(log)

	s.g.Go(func() error {
		err := server.Run(
			ctx, config,
			useRateLimit, matchingService, libraryService,
			defaults, viper.GetInt("MATCH_MAX_RESULTS"),
		)
		if errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		if err != nil {
			log.Error("API stopped", zap.Error(err))
		}
		return err
	})

	return s, nil
}

func (s *Server) Wait() error {
	return s.g.Wait()
}
