package controllers

import (
	"context"
	"io"

	"github.com/lintang-b-s/curvematch/pkg/datastructure"
	"github.com/lintang-b-s/curvematch/pkg/engine/matching"
	"github.com/lintang-b-s/curvematch/pkg/store"
)

type MatchingService interface {
	Match(ctx context.Context, gpxFile io.Reader, area datastructure.BoundingBox,
		cfg matching.MatchingConfig) (*datastructure.InputRoute, []*datastructure.MatchResult, error)
}

type LibraryService interface {
	SaveRoute(ctx context.Context, gpxData []byte, name, tag string, area *store.SearchArea) (*store.RouteRecord, error)
	ListRoutes(ctx context.Context, tag string, limit, offset int) ([]store.RouteRecord, error)
	GetRoute(ctx context.Context, id string) (*store.RouteRecord, error)
	RenameRoute(ctx context.Context, id, name string) (*store.RouteRecord, error)
	DeleteRoute(ctx context.Context, id string) error
}
