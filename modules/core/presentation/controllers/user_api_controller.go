package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/core/domain/aggregates/user"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/core/services"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/application"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/composables"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/configuration"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/httpapi"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/middleware"
)

type userResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	ChatID   int64  `json:"chat_id"`
	Role     string `json:"role"`
}

func toUserResponse(u user.User) userResponse {
	return userResponse{
		ID:       u.ID().String(),
		FullName: u.FullName(),
		ChatID:   u.ChatID(),
		Role:     string(u.Role()),
	}
}

type UserAPIController struct {
	app      application.Application
	users    *services.UserService
	basePath string
}

func NewUserAPIController(app application.Application) application.Controller {
	return &UserAPIController{
		app:      app,
		users:    app.Service(services.UserService{}).(*services.UserService),
		basePath: "/api",
	}
}

func (c *UserAPIController) Key() string {
	return c.basePath + "/users"
}

func (c *UserAPIController) Register(r *mux.Router) {
	conf := configuration.Use()

	public := r.PathPrefix(c.basePath).Subrouter()
	public.HandleFunc("/auth/login", c.Login).Methods(http.MethodPost)

	authorized := r.PathPrefix(c.basePath).Subrouter()
	authorized.Use(middleware.Authorize(conf.AuthSecret, c.users.ResolveSubject))
	authorized.HandleFunc("/users/me", c.Me).Methods(http.MethodGet)

	admin := r.PathPrefix(c.basePath).Subrouter()
	admin.Use(
		middleware.Authorize(conf.AuthSecret, c.users.ResolveSubject),
		middleware.RequireAdmin(),
	)
	admin.HandleFunc("/users", c.List).Methods(http.MethodGet)
	admin.HandleFunc("/users", c.Create).Methods(http.MethodPost)
}

type loginRequest struct {
	ChatID int64 `json:"chat_id"`
}

func (c *UserAPIController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid json", nil)
		return
	}
	if req.ChatID == 0 {
		httpapi.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "chat_id is required", nil)
		return
	}
	conf := configuration.Use()
	token, u, err := c.users.IssueToken(r.Context(), req.ChatID, conf.AuthSecret, conf.SessionDuration)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unknown chat id", nil)
			return
		}
		httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": time.Now().Add(conf.SessionDuration).UTC().Format(time.RFC3339),
		"user":       toUserResponse(u),
	})
}

func (c *UserAPIController) Me(w http.ResponseWriter, r *http.Request) {
	subject, err := composables.UseUser(r.Context())
	if err != nil {
		httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user", nil)
		return
	}
	u, err := c.users.GetByID(r.Context(), subject.ID())
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (c *UserAPIController) List(w http.ResponseWriter, r *http.Request) {
	params := &user.FindParams{
		Q:     strings.TrimSpace(r.URL.Query().Get("q")),
		Limit: 20,
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
	if v := r.URL.Query().Get("role"); v != "" {
		params.Role = user.Role(v)
	}

	items, total, err := c.users.GetPaginated(r.Context(), params)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	out := make([]userResponse, 0, len(items))
	for _, u := range items {
		out = append(out, toUserResponse(u))
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": out, "total": total})
}

func (c *UserAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto user.CreateDTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid json", nil)
		return
	}
	if errs, ok := dto.Ok(); !ok {
		httpapi.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "validation failed", errs)
		return
	}
	created, err := c.users.Create(r.Context(), &dto)
	if err != nil {
		if errors.Is(err, user.ErrFullNameTaken) {
			httpapi.WriteError(w, http.StatusConflict, "CONFLICT", "full name already exists", nil)
			return
		}
		httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, toUserResponse(created))
}
