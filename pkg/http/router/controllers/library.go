package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/curvematch/pkg/http/router/routerhelper"
	"github.com/lintang-b-s/curvematch/pkg/store"
	"go.uber.org/zap"
)

type libraryAPI struct {
	baseAPI
	libraryService LibraryService
	maxUploadBytes int64
}

func NewLibraryAPI(libraryService LibraryService, log *zap.Logger, maxUploadBytes int64) *libraryAPI {
	return &libraryAPI{
		baseAPI:        baseAPI{log: log},
		libraryService: libraryService,
		maxUploadBytes: maxUploadBytes,
	}
}

func (api *libraryAPI) Routes(group *helper.RouteGroup) {
	routes := group.Group("/routes")
	routes.GET("/", api.listRoutes)
	routes.POST("/", api.saveRoute)
	routes.GET("/:id", api.getRoute)
	routes.PATCH("/:id", api.renameRoute)
	routes.DELETE("/:id", api.deleteRoute)
}

func atoiOrDefault(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func (api *libraryAPI) listRoutes(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request listRoutesRequest
		err     error
	)
	query := r.URL.Query()
	request.Tag = query.Get("tag")
	request.Limit, err = atoiOrDefault(query.Get("limit"), 0)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("limit must be a valid int"))
		return
	}
	request.Offset, err = atoiOrDefault(query.Get("offset"), 0)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("offset must be a valid int"))
		return
	}
	if err := validateStruct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	recs, err := api.libraryService.ListRoutes(r.Context(), request.Tag, request.Limit, request.Offset)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	routes := make([]routeResponse, 0, len(recs))
	for i := range recs {
		resp, err := NewRouteResponse(&recs[i], false)
		if err != nil {
			api.ServerErrorResponse(w, r, err)
			return
		}
		routes = append(routes, resp)
	}

	if err := writeJSON(w, http.StatusOK, envelope{"data": routes}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// saveRoute. multipart: gpxFile, optional name, tag and searchArea.
func (api *libraryAPI) saveRoute(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
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
	gpxData, err := io.ReadAll(file)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	var area *store.SearchArea
	if raw := r.FormValue("searchArea"); raw != "" {
		req, err := parseSearchArea(raw)
		if err != nil {
			api.BadRequestResponse(w, r, err)
			return
		}
		area = req.toSearchArea()
	}

	rec, err := api.libraryService.SaveRoute(r.Context(), gpxData, r.FormValue("name"), r.FormValue("tag"), area)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	resp, err := NewRouteResponse(rec, true)
	if err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", "/api/routes/"+rec.ID)
	if err := writeJSON(w, http.StatusCreated, envelope{"data": resp}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *libraryAPI) getRoute(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	rec, err := api.libraryService.GetRoute(r.Context(), p.ByName("id"))
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	resp, err := NewRouteResponse(rec, true)
	if err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"data": resp}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *libraryAPI) renameRoute(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request renameRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
	if err := validateStruct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	rec, err := api.libraryService.RenameRoute(r.Context(), p.ByName("id"), request.Name)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	resp, err := NewRouteResponse(rec, false)
	if err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"data": resp}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *libraryAPI) deleteRoute(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	id := p.ByName("id")
	if err := api.libraryService.DeleteRoute(r.Context(), id); err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"data": envelope{"id": id, "deleted": true}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}
