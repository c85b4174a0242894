package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

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

// FieldAdminController groups the operations only admins run: baseline
// recompute, facility merge, and report exports.
type FieldAdminController struct {
	app      application.Application
	mustList *fieldservices.MustListService
	merge    *fieldservices.FacilityMergeService
	reports  *fieldservices.ReportService
	users    *coreservices.UserService
	basePath string
}

func NewFieldAdminController(app application.Application) application.Controller {
	return &FieldAdminController{
		app:      app,
		mustList: app.Service(fieldservices.MustListService{}).(*fieldservices.MustListService),
		merge:    app.Service(fieldservices.FacilityMergeService{}).(*fieldservices.FacilityMergeService),
		reports:  app.Service(fieldservices.ReportService{}).(*fieldservices.ReportService),
		users:    app.Service(coreservices.UserService{}).(*coreservices.UserService),
		basePath: "/api/admin",
	}
}

func (c *FieldAdminController) Key() string {
	return c.basePath
}

func (c *FieldAdminController) Register(r *mux.Router) {
	conf := configuration.Use()

	admin := r.PathPrefix(c.basePath).Subrouter()
	admin.Use(
		middleware.Authorize(conf.AuthSecret, c.users.ResolveSubject),
		middleware.RequireAdmin(),
	)
	admin.HandleFunc("/mustlist/recompute", c.Recompute).Methods(http.MethodPost)
	admin.HandleFunc("/facilities/{id}/merge-candidates", c.MergeCandidates).Methods(http.MethodGet)
	admin.HandleFunc("/facilities/merge", c.Merge).Methods(http.MethodPost)
	admin.HandleFunc("/reports/visits.xlsx", c.VisitReport).Methods(http.MethodGet)
	admin.HandleFunc("/reports/compliance.xlsx", c.ComplianceReport).Methods(http.MethodGet)
}

func (c *FieldAdminController) Recompute(w http.ResponseWriter, r *http.Request) {
	summary, err := c.mustList.Recompute(r.Context())
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "recompute failed", nil)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, summary)
}

func (c *FieldAdminController) MergeCandidates(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}
	candidates, err := c.merge.Candidates(r.Context(), id, limit)
	if err != nil {
		if errors.Is(err, facility.ErrNotFound) {
			httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "facility not found", nil)
			return
		}
		if errors.Is(err, fieldservices.ErrMergeService) {
			httpapi.WriteError(w, http.StatusUnprocessableEntity, "MERGE_SERVICE", "service facilities cannot be merged", nil)
			return
		}
		httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}

	out := make([]map[string]any, 0, len(candidates))
	for _, candidate := range candidates {
		out = append(out, map[string]any{
			"facility": toFacilityResponse(candidate.Facility),
			"distance": candidate.Distance,
		})
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": out})
}

type mergeRequest struct {
	PrimaryID   uuid.UUID `json:"primary_id"`
	DuplicateID uuid.UUID `json:"duplicate_id"`
}

func (c *FieldAdminController) Merge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid json", nil)
		return
	}
	if req.PrimaryID == uuid.Nil || req.DuplicateID == uuid.Nil {
		httpapi.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "primary_id and duplicate_id are required", nil)
		return
	}

	merged, err := c.merge.Merge(r.Context(), req.PrimaryID, req.DuplicateID)
	if err != nil {
		switch {
		case errors.Is(err, facility.ErrNotFound):
			httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "facility not found", nil)
		case errors.Is(err, fieldservices.ErrMergeSelf):
			httpapi.WriteError(w, http.StatusUnprocessableEntity, "MERGE_SELF", "cannot merge a facility into itself", nil)
		case errors.Is(err, fieldservices.ErrMergeService):
			httpapi.WriteError(w, http.StatusUnprocessableEntity, "MERGE_SERVICE", "service facilities cannot be merged", nil)
		default:
			httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "merge failed", nil)
		}
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toFacilityResponse(merged))
}

func (c *FieldAdminController) VisitReport(w http.ResponseWriter, r *http.Request) {
	data, err := c.reports.VisitReport(r.Context())
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "export failed", nil)
		return
	}
	writeWorkbook(w, "visits", data)
}

func (c *FieldAdminController) ComplianceReport(w http.ResponseWriter, r *http.Request) {
	data, err := c.reports.ComplianceReport(r.Context())
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "export failed", nil)
		return
	}
	writeWorkbook(w, "compliance", data)
}

func writeWorkbook(w http.ResponseWriter, name string, data []byte) {
	filename := name + "-" + time.Now().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
