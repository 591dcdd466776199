package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/academia-hub/academia-backend/domains/schools/be/service"
	"github.com/academia-hub/academia-backend/platform/go/httpjson"
	"github.com/academia-hub/academia-backend/platform/go/tenant"
)

// Handler exposes platform-level school administration over HTTP. The access
// gate restricts these routes to super admins before they reach us.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("schools service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the school administration endpoints on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{schoolID}", h.Get)
	r.Patch("/{schoolID}/status", h.UpdateStatus)
	r.Delete("/{schoolID}", h.Delete)
	return r
}

type createRequest struct {
	Subdomain string          `json:"subdomain"`
	Name      string          `json:"name"`
	Settings  json.RawMessage `json:"settings,omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type schoolResponse struct {
	ID        string          `json:"id"`
	Subdomain string          `json:"subdomain"`
	Name      string          `json:"name"`
	Status    string          `json:"status"`
	Settings  json.RawMessage `json:"settings,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	school, err := h.svc.Create(r.Context(), service.CreateInput{
		Subdomain: req.Subdomain,
		Name:      req.Name,
		Settings:  req.Settings,
	})
	if err != nil {
		h.writeError(w, "schoolsCreate", err)
		return
	}

	httpjson.Write(w, http.StatusCreated, toSchoolResponse(school))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	opts := service.ListOptions{}
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		opts.Status = &status
	}

	schools, err := h.svc.List(r.Context(), opts)
	if err != nil {
		h.writeError(w, "schoolsList", err)
		return
	}

	items := make([]schoolResponse, 0, len(schools))
	for _, school := range schools {
		items = append(items, toSchoolResponse(school))
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.schoolID(w, r)
	if !ok {
		return
	}

	school, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, "schoolsGet", err)
		return
	}

	httpjson.Write(w, http.StatusOK, toSchoolResponse(school))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.schoolID(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	school, err := h.svc.UpdateStatus(r.Context(), id, tenant.Status(req.Status))
	if err != nil {
		h.writeError(w, "schoolsUpdateStatus", err)
		return
	}

	httpjson.Write(w, http.StatusOK, toSchoolResponse(school))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.schoolID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, "schoolsDelete", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) schoolID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "schoolID"))
	if err != nil {
		httpjson.Message(w, http.StatusBadRequest, "Invalid school id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var validationErr *service.ValidationError
	var status int
	var message string

	switch {
	case errors.As(err, &validationErr):
		status, message = http.StatusBadRequest, firstFieldMessage(validationErr)
	case errors.Is(err, service.ErrNotFound):
		status, message = http.StatusNotFound, "School not found"
	case errors.Is(err, service.ErrConflict):
		status, message = http.StatusConflict, "Subdomain already in use"
	default:
		status, message = http.StatusInternalServerError, "Internal server error"
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("schools operation failed", zap.String("operation", op), zap.Error(err))
	} else {
		h.logger.Info("schools request rejected", zap.String("operation", op), zap.Int("status", status))
	}

	httpjson.Message(w, status, message)
}

func firstFieldMessage(err *service.ValidationError) string {
	for _, messages := range err.Fields {
		if len(messages) > 0 {
			return messages[0]
		}
	}
	return "Validation failed"
}

func toSchoolResponse(school service.School) schoolResponse {
	return schoolResponse{
		ID:        school.ID.String(),
		Subdomain: school.Subdomain,
		Name:      school.Name,
		Status:    string(school.Status),
		Settings:  school.Settings,
		CreatedAt: school.CreatedAt,
		UpdatedAt: school.UpdatedAt,
	}
}
