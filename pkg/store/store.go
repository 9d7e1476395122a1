package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	da "github.com/lintang-b-s/curvematch/pkg/datastructure"
	"github.com/lintang-b-s/curvematch/pkg/geo"
	"github.com/lintang-b-s/curvematch/pkg/util"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DEFAULT_LIST_LIMIT = 50
	MAX_LIST_LIMIT     = 500
)

// columns needed to build candidates and listings, without the raw gpx upload.
var summaryColumns = []string{
	"id", "name", "tag", "saved_at", "distance_m", "elevation_gain_m", "elevation_loss_m", "gain_per_km",
	"geom_wkt", "elevation_profile_json", "search_area_json",
}

// RouteStore. route library on sqlite. every write bumps Version so readers can tell their snapshot is stale.
type RouteStore struct {
	db      *gorm.DB
	log     *zap.Logger
	version atomic.Uint64
}

func NewRouteStore(dsn string, log *zap.Logger) (*RouteStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "open route store %s", dsn)
	}
	if err := db.AutoMigrate(&RouteRecord{}); err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "migrate route store")
	}
	log.Info("route store ready", zap.String("dsn", dsn))

	s := &RouteStore{db: db, log: log}
	s.version.Store(1)
	return s, nil
}

// Version. monotonic, changes after every successful write.
func (s *RouteStore) Version() uint64 {
	return s.version.Load()
}

func (s *RouteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewRouteRecord. derives the stored statistics of an uploaded route.
func NewRouteRecord(route *da.InputRoute, tag string, area *SearchArea, gpxData []byte) (*RouteRecord, error) {
	geometry := route.GetGeometry()
	if len(geometry) < 2 {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "route must have at least 2 points")
	}
	profile := route.GetElevationProfile()
	stats := geo.CalculateElevationStats(profile)
	distance := geo.RouteDistance(geometry)

	rec := &RouteRecord{
		ID:             uuid.New().String(),
		Name:           route.GetName(),
		Tag:            tag,
		SavedAt:        time.Now().UTC(),
		DistanceM:      distance,
		ElevationGainM: stats.TotalGain,
		ElevationLossM: stats.TotalLoss,
		GeomWKT:        geometryToWKT(geometry),
		GPXData:        gpxData,
	}
	if distance > 0 {
		rec.GainPerKm = stats.TotalGain / (distance / 1000.0)
	}
	if len(profile) > 0 {
		bb, err := json.Marshal(profile)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "elevation profile")
		}
		rec.ElevationProfileJSON = string(bb)
	}
	if area != nil {
		bb, err := json.Marshal(area)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "search area")
		}
		rec.SearchAreaJSON = string(bb)
	}
	return rec, nil
}

func (s *RouteStore) SaveRoute(ctx context.Context, rec *RouteRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return util.WrapErrorf(err, util.ErrConflict, "route %s already exists", rec.ID)
		}
		return util.WrapErrorf(err, util.ErrInternalServerError, "save route %s", rec.ID)
	}
	s.version.Add(1)
	s.log.Info("route saved", zap.String("id", rec.ID), zap.String("name", rec.Name),
		zap.Float64("distance_m", rec.DistanceM))
	return nil
}

// ListRoutes. newest first. limit <= 0 means DEFAULT_LIST_LIMIT.
func (s *RouteStore) ListRoutes(ctx context.Context, tag string, limit, offset int) ([]RouteRecord, error) {
	if limit <= 0 {
		limit = DEFAULT_LIST_LIMIT
	}
	limit = min(limit, MAX_LIST_LIMIT)
	offset = max(offset, 0)

	q := s.db.WithContext(ctx).Select(summaryColumns).Order("saved_at desc, rowid desc").Limit(limit).Offset(offset)
	if tag != "" {
		q = q.Where("tag = ?", tag)
	}
	var recs []RouteRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "list routes")
	}
	return recs, nil
}

func (s *RouteStore) GetRoute(ctx context.Context, id string) (*RouteRecord, error) {
	var rec RouteRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.WrapErrorf(err, util.ErrNotFound, "route %s not found", id)
	}
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "get route %s", id)
	}
	return &rec, nil
}

func (s *RouteStore) UpdateRouteName(ctx context.Context, id, name string) (*RouteRecord, error) {
	res := s.db.WithContext(ctx).Model(&RouteRecord{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return nil, util.WrapErrorf(res.Error, util.ErrInternalServerError, "rename route %s", id)
	}
	if res.RowsAffected == 0 {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "route %s not found", id)
	}
	s.version.Add(1)
	return s.GetRoute(ctx, id)
}

func (s *RouteStore) DeleteRoute(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&RouteRecord{})
	if res.Error != nil {
		return util.WrapErrorf(res.Error, util.ErrInternalServerError, "delete route %s", id)
	}
	if res.RowsAffected == 0 {
		return util.WrapErrorf(nil, util.ErrNotFound, "route %s not found", id)
	}
	s.version.Add(1)
	s.log.Info("route deleted", zap.String("id", id))
	return nil
}

// AllRoutes. every stored route in insertion order, used to build an index snapshot.
func (s *RouteStore) AllRoutes(ctx context.Context) ([]RouteRecord, uint64, error) {
	version := s.Version()
	var recs []RouteRecord
	if err := s.db.WithContext(ctx).Select(summaryColumns).Order("saved_at, rowid").Find(&recs).Error; err != nil {
		return nil, 0, util.WrapErrorf(err, util.ErrInternalServerError, "load routes")
	}
	return recs, version, nil
}
