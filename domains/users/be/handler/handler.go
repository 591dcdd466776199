package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/academia-hub/academia-backend/domains/users/be/service"
	"github.com/academia-hub/academia-backend/platform/go/httpjson"
)

// Handler exposes school-scoped user administration over HTTP.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("users service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the user administration endpoints on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{userID}", h.Get)
	r.Patch("/{userID}", h.Update)
	r.Delete("/{userID}", h.Delete)
	return r
}

type updateRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Status    *string `json:"status,omitempty"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	opts := service.ListOptions{}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Offset = n
		}
	}

	users, err := h.svc.List(r.Context(), opts)
	if err != nil {
		h.writeError(w, "usersList", err)
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, user := range users {
		items = append(items, toUserResponse(user))
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	user, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, "usersGet", err)
		return
	}
	httpjson.Write(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.svc.Update(r.Context(), id, service.UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Status:    req.Status,
	})
	if err != nil {
		h.writeError(w, "usersUpdate", err)
		return
	}
	httpjson.Write(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, "usersDelete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpjson.Message(w, http.StatusBadRequest, "Invalid user id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var status int
	var message string

	switch {
	case errors.Is(err, service.ErrNotFound):
		status, message = http.StatusNotFound, "User not found"
	case errors.Is(err, service.ErrNoSchool):
		status, message = http.StatusBadRequest, "Invalid host header"
	default:
		status, message = http.StatusInternalServerError, "Internal server error"
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("users operation failed", zap.String("operation", op), zap.Error(err))
	} else {
		h.logger.Info("users request rejected", zap.String("operation", op), zap.Int("status", status))
	}
	httpjson.Message(w, status, message)
}

func toUserResponse(user service.User) userResponse {
	return userResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
		Status:    user.Status,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
