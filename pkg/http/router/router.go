package router

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lintang-b-s/curvematch/pkg/engine/matching"
	"github.com/lintang-b-s/curvematch/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/curvematch/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/curvematch/pkg/http/server"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"go.uber.org/zap"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "net/http/pprof"
)

type API struct {
	log *zap.Logger
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

//	@title			curvematch API
//	@version		1.0
//	@description	Finds stored GPS routes whose shape, turns and elevation resemble an uploaded GPX route.

//	@license.name	BSD License
//	@license.url	https://opensource.org/license/bsd-2-clause

// @host		localhost
// @BasePath	/api
func (api *API) Handler(
	config http_server.Config,
	useRateLimit bool,
	matchingService controllers.MatchingService,
	libraryService controllers.LibraryService,
	defaults matching.MatchingConfig,
	maxResults int,
) http.Handler {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	router.GET("/doc/*any", swaggerHandler)

	router.Handler(http.MethodGet, "/debug/pprof/*item", http.DefaultServeMux)

	group := router_helper.NewRouteGroup(router, "/api")

	controllers.NewMatchingAPI(matchingService, api.log, defaults, maxResults, config.MaxUploadBytes).Routes(group)
	controllers.NewLibraryAPI(libraryService, api.log, config.MaxUploadBytes).Routes(group)

	mwChain := []alice.Constructor{corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
		RealIP, Heartbeat("healthz"), Logger(api.log), Labels}
	if useRateLimit {
		mwChain = append(mwChain, Limit)
	}
	return alice.New(mwChain...).Then(router)
}

func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	useRateLimit bool,
	matchingService controllers.MatchingService,
	libraryService controllers.LibraryService,
	defaults matching.MatchingConfig,
	maxResults int,
) error {
	api.log.Info("Run httprouter API")

	handler := api.Handler(config, useRateLimit, matchingService, libraryService, defaults, maxResults)
	srv := http_server.New(ctx, handler, config)
	api.log.Info(fmt.Sprintf("API run on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		api.log.Info("HTTP server stopped", zap.Error(err))
		return err
	case <-ctx.Done():
		api.log.Info("Context canceled, shutting down server")
		_ = srv.Shutdown(context.Background())
		return ctx.Err()
	}
}

func swaggerHandler(res http.ResponseWriter, req *http.Request, p httprouter.Params) {
	httpSwagger.WrapHandler(res, req)
}
