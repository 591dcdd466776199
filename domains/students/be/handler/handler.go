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

	"github.com/academia-hub/academia-backend/domains/students/be/service"
	"github.com/academia-hub/academia-backend/platform/go/httpjson"
)

// Handler exposes the school roster over HTTP.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("students service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the roster endpoints on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{studentID}", h.Get)
	r.Patch("/{studentID}", h.Update)
	r.Delete("/{studentID}", h.Delete)
	return r
}

type createRequest struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     *string `json:"email,omitempty"`
	ClassName *string `json:"className,omitempty"`
}

type updateRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	ClassName *string `json:"className,omitempty"`
}

type studentResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     *string   `json:"email,omitempty"`
	ClassName *string   `json:"className,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	student, err := h.svc.Create(r.Context(), service.CreateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		ClassName: req.ClassName,
	})
	if err != nil {
		h.writeError(w, "studentsCreate", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toStudentResponse(student))
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

	students, err := h.svc.List(r.Context(), opts)
	if err != nil {
		h.writeError(w, "studentsList", err)
		return
	}

	items := make([]studentResponse, 0, len(students))
	for _, student := range students {
		items = append(items, toStudentResponse(student))
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}

	student, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, "studentsGet", err)
		return
	}
	httpjson.Write(w, http.StatusOK, toStudentResponse(student))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	student, err := h.svc.Update(r.Context(), id, service.UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		ClassName: req.ClassName,
	})
	if err != nil {
		h.writeError(w, "studentsUpdate", err)
		return
	}
	httpjson.Write(w, http.StatusOK, toStudentResponse(student))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, "studentsDelete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) studentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "studentID"))
	if err != nil {
		httpjson.Message(w, http.StatusBadRequest, "Invalid student id")
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
		status = http.StatusBadRequest
		message = "Validation failed"
		for _, messages := range validationErr.Fields {
			if len(messages) > 0 {
				message = messages[0]
				break
			}
		}
	case errors.Is(err, service.ErrNotFound):
		status, message = http.StatusNotFound, "Student not found"
	case errors.Is(err, service.ErrNoSchool):
		status, message = http.StatusBadRequest, "Invalid host header"
	default:
		status, message = http.StatusInternalServerError, "Internal server error"
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("students operation failed", zap.String("operation", op), zap.Error(err))
	} else {
		h.logger.Info("students request rejected", zap.String("operation", op), zap.Int("status", status))
	}
	httpjson.Message(w, status, message)
}

func toStudentResponse(student service.Student) studentResponse {
	return studentResponse{
		ID:        student.ID.String(),
		FirstName: student.FirstName,
		LastName:  student.LastName,
		Email:     student.Email,
		ClassName: student.ClassName,
		CreatedAt: student.CreatedAt,
		UpdatedAt: student.UpdatedAt,
	}
}
