package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	coreservices "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/core/services"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/domain/aggregates/facility"
	fieldservices "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/services"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/application"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/configuration"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/httpapi"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/middleware"
)

type facilityResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Verified  bool     `json:"verified"`
}

func toFacilityResponse(f facility.Facility) facilityResponse {
	resp := facilityResponse{
		ID:       f.ID().String(),
		Name:     f.Name(),
		Address:  f.Address(),
		Verified: f.Verified(),
	}
	if f.HasCoords() {
		lat, lon := f.Latitude(), f.Longitude()
		resp.Latitude, resp.Longitude = &lat, &lon
	}
	return resp
}

type FacilityAPIController struct {
	app        application.Application
	facilities *fieldservices.FacilityService
	mustList   *fieldservices.MustListService
	users      *coreservices.UserService
	basePath   string
}

func NewFacilityAPIController(app application.Application) application.Controller {
	return &FacilityAPIController{
		app:        app,
		facilities: app.Service(fieldservices.FacilityService{}).(*fieldservices.FacilityService),
		mustList:   app.Service(fieldservices.MustListService{}).(*fieldservices.MustListService),
		users:      app.Service(coreservices.UserService{}).(*coreservices.UserService),
		basePath:   "/api/facilities",
	}
}

func (c *FacilityAPIController) Key() string {
	return c.basePath
}

func (c *FacilityAPIController) Register(r *mux.Router) {
	conf := configuration.Use()

	authorized := r.PathPrefix(c.basePath).Subrouter()
	authorized.Use(middleware.Authorize(conf.AuthSecret, c.users.ResolveSubject))
	authorized.HandleFunc("", c.List).Methods(http.MethodGet)
	authorized.HandleFunc("", c.Create).Methods(http.MethodPost)
	authorized.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	authorized.HandleFunc("/{id}/mustlist", c.MustList).Methods(http.MethodGet)
	authorized.HandleFunc("/{id}/gap", c.Gap).Methods(http.MethodGet)

	admin := r.PathPrefix(c.basePath).Subrouter()
	admin.Use(
		middleware.Authorize(conf.AuthSecret, c.users.ResolveSubject),
		middleware.RequireAdmin(),
	)
	admin.HandleFunc("/{id}/verify", c.Verify).Methods(http.MethodPost)
}

func (c *FacilityAPIController) List(w http.ResponseWriter, r *http.Request) {
	params := &facility.FindParams{
		Q:              strings.TrimSpace(r.URL.Query().Get("q")),
		IncludeService: r.URL.Query().Get("include_service") == "1",
		Limit:          20,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
			params.Limit = parsed
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			params.Offset = parsed
		}
	}
	if v := r.URL.Query().Get("verified"); v != "" {
		verified := v == "1" || v == "true"
		params.Verified = &verified
	}

	items, total, err := c.facilities.GetPaginated(r.Context(), params)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	out := make([]facilityResponse, 0, len(items))
	for _, f := range items {
		out = append(out, toFacilityResponse(f))
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": out, "total": total})
}

func (c *FacilityAPIController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	f, err := c.facilities.GetByID(r.Context(), id)
	if err != nil {
		writeFacilityError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toFacilityResponse(f))
}

func (c *FacilityAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto facility.CreateDTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid json", nil)
		return
	}
	if errs, ok := dto.Ok(); !ok {
		httpapi.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "validation failed", errs)
		return
	}
	created, err := c.facilities.Create(r.Context(), &dto)
	if err != nil {
		if errors.Is(err, facility.ErrDuplicate) {
			httpapi.WriteError(w, http.StatusConflict, "CONFLICT", "facility already exists", nil)
			return
		}
		httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, toFacilityResponse(created))
}

func (c *FacilityAPIController) Verify(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	f, err := c.facilities.Verify(r.Context(), id)
	if err != nil {
		writeFacilityError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toFacilityResponse(f))
}

func (c *FacilityAPIController) MustList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	productIDs, err := c.facilities.MustList(r.Context(), id)
	if err != nil {
		writeFacilityError(w, err)
		return
	}
	if productIDs == nil {
		productIDs = []uuid.UUID{}
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"productIds": productIDs})
}

func (c *FacilityAPIController) Gap(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	report, err := c.mustList.Gap(r.Context(), id)
	if err != nil {
		writeFacilityError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, report)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func writeFacilityError(w http.ResponseWriter, err error) {
	if errors.Is(err, facility.ErrNotFound) {
		httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "facility not found", nil)
		return
	}
	httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}
