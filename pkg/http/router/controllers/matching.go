package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/lintang-b-s/curvematch/pkg/datastructure"
	"github.com/lintang-b-s/curvematch/pkg/engine/matching"
	helper "github.com/lintang-b-s/curvematch/pkg/http/router/routerhelper"
	"github.com/lintang-b-s/curvematch/pkg/util"
	"go.uber.org/zap"
)

type matchingAPI struct {
	baseAPI
	matchingService MatchingService
	defaults        matching.MatchingConfig
	maxResults      int
	maxUploadBytes  int64
}

func NewMatchingAPI(matchingService MatchingService, log *zap.Logger, defaults matching.MatchingConfig,
	maxResults int, maxUploadBytes int64) *matchingAPI {
	return &matchingAPI{
		baseAPI:         baseAPI{log: log},
		matchingService: matchingService,
		defaults:        defaults,
		maxResults:      maxResults,
		maxUploadBytes:  maxUploadBytes,
	}
}

func (api *matchingAPI) Routes(group *helper.RouteGroup) {
	group.POST("/match", api.match)
}

func parseSearchArea(raw string) (*searchAreaRequest, error) {
	if raw == "" {
		return nil, errors.New("searchArea is required")
	}
	var area searchAreaRequest
	if err := json.Unmarshal([]byte(raw), &area); err != nil {
		return nil, fmt.Errorf("searchArea must be a json object {west,south,east,north}: %w", err)
	}
	if err := validateStruct(area); err != nil {
		return nil, err
	}
	return &area, nil
}

// matchingConfigFromForm. every form field is optional and falls back to the server defaults.
func (api *matchingAPI) matchingConfigFromForm(r *http.Request) (matching.MatchingConfig, error) {
	cfg := api.defaults
	fields := []struct {
		name string
		dst  *float64
	}{
		{"distanceFlexibility", &cfg.DistanceFlexibilityPct},
		{"shapeImportance", &cfg.ShapeImportance},
		{"turnsImportance", &cfg.TurnsImportance},
		{"elevationImportance", &cfg.ElevationImportance},
		{"granularityMeters", &cfg.GranularityMeters},
		{"minMatchPercentage", &cfg.MinMatchPercentage},
	}
	for _, f := range fields {
		v, err := util.StringToFloat64OrDefault(r.FormValue(f.name), *f.dst)
		if err != nil {
			return cfg, fmt.Errorf("%s must be a valid float", f.name)
		}
		*f.dst = v
	}
	window, err := atoiOrDefault(r.FormValue("dtwWindow"), cfg.DTWWindow)
	if err != nil {
		return cfg, errors.New("dtwWindow must be a valid int")
	}
	cfg.DTWWindow = window
	if metric := r.FormValue("elevationMetric"); metric != "" {
		cfg.ElevationMetric = matching.ElevationMetric(metric)
	}
	if metric := r.FormValue("shapeMetric"); metric != "" {
		cfg.ShapeMetric = matching.ShapeMetric(metric)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// match. multipart upload of a gpx route, ranked against the stored routes inside searchArea.
func (api *matchingAPI) match(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	r.Body = http.MaxBytesReader(w, r.Body, api.maxUploadBytes)
	if err := r.ParseMultipartForm(api.maxUploadBytes); err != nil {
		api.BadRequestResponse(w, r, fmt.Errorf("invalid multipart form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("gpxFile")
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("gpxFile is required"))
		return
	}
	defer file.Close()

	area, err := parseSearchArea(r.FormValue("searchArea"))
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	cfg, err := api.matchingConfigFromForm(r)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	input, matches, err := api.matchingService.Match(r.Context(), file,
		datastructure.NewBoundingBox(area.West, area.South, area.East, area.North), cfg)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := writeJSON(w, http.StatusOK, envelope{"data": NewMatchResponse(input, matches, api.maxResults)},
		headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
