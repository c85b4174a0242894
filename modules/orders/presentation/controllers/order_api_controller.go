package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	coreservices "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/core/services"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/orders/domain/aggregates/order"
	orderservices "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/orders/services"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/application"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/composables"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/configuration"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/httpapi"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/middleware"
)

type orderItemResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type orderResponse struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	FacilityID string              `json:"facility_id"`
	Status     string              `json:"status"`
	Comment    string              `json:"comment,omitempty"`
	Items      []orderItemResponse `json:"items"`
	CreatedAt  time.Time           `json:"created_at"`
}

func toOrderResponse(o order.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, orderItemResponse{ProductID: item.ProductID.String(), Quantity: item.Quantity})
	}
	return orderResponse{
		ID:         o.ID().String(),
		UserID:     o.UserID().String(),
		FacilityID: o.FacilityID().String(),
		Status:     string(o.Status()),
		Comment:    o.Comment(),
		Items:      items,
		CreatedAt:  o.CreatedAt(),
	}
}

type OrderAPIController struct {
	app      application.Application
	orders   *orderservices.OrderService
	users    *coreservices.UserService
	basePath string
}

func NewOrderAPIController(app application.Application) application.Controller {
	return &OrderAPIController{
		app:      app,
		orders:   app.Service(orderservices.OrderService{}).(*orderservices.OrderService),
		users:    app.Service(coreservices.UserService{}).(*coreservices.UserService),
		basePath: "/api/orders",
	}
}

func (c *OrderAPIController) Key() string {
	return c.basePath
}

func (c *OrderAPIController) Register(r *mux.Router) {
	conf := configuration.Use()

	authorized := r.PathPrefix(c.basePath).Subrouter()
	authorized.Use(middleware.Authorize(conf.AuthSecret, c.users.ResolveSubject))
	authorized.HandleFunc("", c.List).Methods(http.MethodGet)
	authorized.HandleFunc("", c.Create).Methods(http.MethodPost)
	authorized.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)

	admin := r.PathPrefix(c.basePath).Subrouter()
	admin.Use(
		middleware.Authorize(conf.AuthSecret, c.users.ResolveSubject),
		middleware.RequireAdmin(),
	)
	admin.HandleFunc("/{id}/status", c.UpdateStatus).Methods(http.MethodPost)
}

func (c *OrderAPIController) List(w http.ResponseWriter, r *http.Request) {
	subject, err := composables.UseUser(r.Context())
	if err != nil {
		httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user", nil)
		return
	}

	params := &order.FindParams{UserID: subject.ID(), Limit: 20}
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
	if v := r.URL.Query().Get("status"); v != "" {
		params.Status = order.Status(v)
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

	items, total, err := c.orders.GetPaginated(r.Context(), params)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	out := make([]orderResponse, 0, len(items))
	for _, o := range items {
		out = append(out, toOrderResponse(o))
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": out, "total": total})
}

func (c *OrderAPIController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid order id", nil)
		return
	}
	o, err := c.orders.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}

	subject, serr := composables.UseUser(r.Context())
	if serr != nil || (!subject.IsAdmin() && subject.ID() != o.UserID()) {
		httpapi.WriteError(w, http.StatusForbidden, "FORBIDDEN", "not your order", nil)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toOrderResponse(o))
}

func (c *OrderAPIController) Create(w http.ResponseWriter, r *http.Request) {
	subject, err := composables.UseUser(r.Context())
	if err != nil {
		httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user", nil)
		return
	}

	var dto order.CreateDTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid json", nil)
		return
	}
	if errs, ok := dto.Ok(); !ok {
		httpapi.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "validation failed", errs)
		return
	}

	created, err := c.orders.Create(r.Context(), subject.ID(), &dto)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, toOrderResponse(created))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (c *OrderAPIController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid order id", nil)
		return
	}
	var req statusRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid json", nil)
		return
	}
	status := order.Status(req.Status)
	if !status.Valid() {
		httpapi.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "invalid status", nil)
		return
	}

	updated, err := c.orders.UpdateStatus(r.Context(), id, status)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toOrderResponse(updated))
}
