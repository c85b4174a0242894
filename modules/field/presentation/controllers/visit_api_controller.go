package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	coreservices "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/core/services"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/domain/aggregates/visit"
	fieldservices "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/services"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/application"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/composables"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/configuration"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/httpapi"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/middleware"
)

type visitResponse struct {
	ID                  string         `json:"id"`
	UserID              string         `json:"user_id"`
	FacilityID          string         `json:"facility_id"`
	Kind                string         `json:"kind"`
	VisitedAt           time.Time      `json:"visited_at"`
	Comment             string         `json:"comment,omitempty"`
	Payload             map[string]any `json:"payload,omitempty"`
	AvailableProductIDs []uuid.UUID    `json:"available_product_ids"`
	TastedProductIDs    []uuid.UUID    `json:"tasted_product_ids"`
}

func toVisitResponse(v visit.Visit) visitResponse {
	resp := visitResponse{
		ID:                  v.ID().String(),
		UserID:              v.UserID().String(),
		FacilityID:          v.FacilityID().String(),
		Kind:                string(v.Kind()),
		VisitedAt:           v.VisitedAt(),
		Comment:             v.Comment(),
		Payload:             v.Payload(),
		AvailableProductIDs: v.AvailableProductIDs(),
		TastedProductIDs:    v.TastedProductIDs(),
	}
	if resp.AvailableProductIDs == nil {
		resp.AvailableProductIDs = []uuid.UUID{}
	}
	if resp.TastedProductIDs == nil {
		resp.TastedProductIDs = []uuid.UUID{}
	}
	return resp
}

type VisitAPIController struct {
	app      application.Application
	visits   *fieldservices.VisitService
	users    *coreservices.UserService
	basePath string
}

func NewVisitAPIController(app application.Application) application.Controller {
	return &VisitAPIController{
		app:      app,
		visits:   app.Service(fieldservices.VisitService{}).(*fieldservices.VisitService),
		users:    app.Service(coreservices.UserService{}).(*coreservices.UserService),
		basePath: "/api/visits",
	}
}

func (c *VisitAPIController) Key() string {
	return c.basePath
}

func (c *VisitAPIController) Register(r *mux.Router) {
	conf := configuration.Use()

	authorized := r.PathPrefix(c.basePath).Subrouter()
	authorized.Use(middleware.Authorize(conf.AuthSecret, c.users.ResolveSubject))
	authorized.HandleFunc("", c.List).Methods(http.MethodGet)
	authorized.HandleFunc("", c.Create).Methods(http.MethodPost)
	authorized.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
}

// List returns the caller's own visits; admins may filter by any user or
// facility.
func (c *VisitAPIController) List(w http.ResponseWriter, r *http.Request) {
	subject, err := composables.UseUser(r.Context())
	if err != nil {
		httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user", nil)
		return
	}

	params := &visit.FindParams{UserID: subject.ID(), Limit: 20}
	if subject.IsAdmin() {
		params.UserID = uuid.Nil
		if v := r.URL.Query().Get("user_id"); v != "" {
			if id, err := uuid.Parse(v); err == nil {
				params.UserID = id
			}
		}
	}
	if v := r.URL.Query().Get("facility_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			params.FacilityID = id
		}
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

	items, total, err := c.visits.GetPaginated(r.Context(), params)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	out := make([]visitResponse, 0, len(items))
	for _, v := range items {
		out = append(out, toVisitResponse(v))
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": out, "total": total})
}

func (c *VisitAPIController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, err := c.visits.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, visit.ErrNotFound) {
			httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "visit not found", nil)
			return
		}
		httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toVisitResponse(v))
}

func (c *VisitAPIController) Create(w http.ResponseWriter, r *http.Request) {
	subject, err := composables.UseUser(r.Context())
	if err != nil {
		httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user", nil)
		return
	}

	var dto visit.CreateDTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid json", nil)
		return
	}
	if errs, ok := dto.Ok(); !ok {
		httpapi.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "validation failed", errs)
		return
	}

	created, err := c.visits.Create(r.Context(), subject.ID(), &dto)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, toVisitResponse(created))
}
