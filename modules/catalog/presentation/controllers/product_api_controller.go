package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/catalog/domain/aggregates/product"
	catalogservices "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/catalog/services"
	coreservices "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/core/services"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/application"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/configuration"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/httpapi"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/middleware"
)

type productResponse struct {
	ID       string `json:"id"`
	SKU      string `json:"sku"`
	Line     string `json:"line"`
	Flavor   string `json:"flavor"`
	Category string `json:"category"`
	Price    string `json:"price,omitempty"`
}

func toProductResponse(p product.Product) productResponse {
	resp := productResponse{
		ID:       p.ID().String(),
		SKU:      p.SKU(),
		Line:     string(p.Line()),
		Flavor:   p.Flavor(),
		Category: string(p.Category()),
	}
	if p.Price().Valid {
		resp.Price = p.Price().Decimal.String()
	}
	return resp
}

type ProductAPIController struct {
	app      application.Application
	products *catalogservices.ProductService
	users    *coreservices.UserService
	basePath string
}

func NewProductAPIController(app application.Application) application.Controller {
	return &ProductAPIController{
		app:      app,
		products: app.Service(catalogservices.ProductService{}).(*catalogservices.ProductService),
		users:    app.Service(coreservices.UserService{}).(*coreservices.UserService),
		basePath: "/api/products",
	}
}

func (c *ProductAPIController) Key() string {
	return c.basePath
}

func (c *ProductAPIController) Register(r *mux.Router) {
	conf := configuration.Use()

	authorized := r.PathPrefix(c.basePath).Subrouter()
	authorized.Use(middleware.Authorize(conf.AuthSecret, c.users.ResolveSubject))
	authorized.HandleFunc("", c.List).Methods(http.MethodGet)
	authorized.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)

	admin := r.PathPrefix(c.basePath).Subrouter()
	admin.Use(
		middleware.Authorize(conf.AuthSecret, c.users.ResolveSubject),
		middleware.RequireAdmin(),
	)
	admin.HandleFunc("", c.Create).Methods(http.MethodPost)
}

func (c *ProductAPIController) List(w http.ResponseWriter, r *http.Request) {
	params := &product.FindParams{
		Q:     strings.TrimSpace(r.URL.Query().Get("q")),
		Limit: 50,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 200 {
			params.Limit = parsed
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			params.Offset = parsed
		}
	}
	if v := r.URL.Query().Get("line"); v != "" {
		params.Line = product.ParseLine(v)
	}

	items, total, err := c.products.GetPaginated(r.Context(), params)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	out := make([]productResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toProductResponse(p))
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": out, "total": total})
}

func (c *ProductAPIController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid product id", nil)
		return
	}
	p, err := c.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toProductResponse(p))
}

func (c *ProductAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto product.CreateDTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid json", nil)
		return
	}
	if errs, ok := dto.Ok(); !ok {
		httpapi.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "validation failed", errs)
		return
	}
	created, err := c.products.Create(r.Context(), &dto)
	if err != nil {
		if errors.Is(err, product.ErrSKUTaken) {
			httpapi.WriteError(w, http.StatusConflict, "CONFLICT", "sku already exists", nil)
			return
		}
		httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, toProductResponse(created))
}
