package usecases

import (
	"context"

	"github.com/lintang-b-s/curvematch/pkg/store"
)

type RouteStore interface {
	Version() uint64
	AllRoutes(ctx context.Context) ([]store.RouteRecord, uint64, error)
	SaveRoute(ctx context.Context, rec *store.RouteRecord) error
	ListRoutes(ctx context.Context, tag string, limit, offset int) ([]store.RouteRecord, error)
	GetRoute(ctx context.Context, id string) (*store.RouteRecord, error)
	UpdateRouteName(ctx context.Context, id, name string) (*store.RouteRecord, error)
	DeleteRoute(ctx context.Context, id string) error
}
