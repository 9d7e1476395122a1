package usecases

import (
	"bytes"
	"context"
	"strings"

	"github.com/lintang-b-s/curvematch/pkg/gpxparser"
	"github.com/lintang-b-s/curvematch/pkg/store"
	"github.com/lintang-b-s/curvematch/pkg/util"
	"go.uber.org/zap"
)

const unnamedRoute = "Unnamed route"

type LibraryService struct {
	log   *zap.Logger
	store RouteStore
}

func NewLibraryService(log *zap.Logger, store RouteStore) *LibraryService {
	return &LibraryService{
		log:   log,
		store: store,
	}
}

// SaveRoute. name overrides the name found in the gpx document.
func (ls *LibraryService) SaveRoute(ctx context.Context, gpxData []byte, name, tag string,
	area *store.SearchArea) (*store.RouteRecord, error) {
	route, err := gpxparser.Parse(bytes.NewReader(gpxData))
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		route.SetName(name)
	}
	if route.GetName() == "" {
		route.SetName(unnamedRoute)
	}

	rec, err := store.NewRouteRecord(route, strings.TrimSpace(tag), area, gpxData)
	if err != nil {
		return nil, err
	}
	if err := ls.store.SaveRoute(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (ls *LibraryService) ListRoutes(ctx context.Context, tag string, limit, offset int) ([]store.RouteRecord, error) {
	return ls.store.ListRoutes(ctx, tag, limit, offset)
}

func (ls *LibraryService) GetRoute(ctx context.Context, id string) (*store.RouteRecord, error) {
	return ls.store.GetRoute(ctx, id)
}

func (ls *LibraryService) RenameRoute(ctx context.Context, id, name string) (*store.RouteRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "name must not be empty")
	}
	return ls.store.UpdateRouteName(ctx, id, name)
}

func (ls *LibraryService) DeleteRoute(ctx context.Context, id string) error {
	return ls.store.DeleteRoute(ctx, id)
}
