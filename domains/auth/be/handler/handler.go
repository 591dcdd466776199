package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/academia-hub/academia-backend/domains/auth/be/service"
	platformauth "github.com/academia-hub/academia-backend/platform/go/auth"
	"github.com/academia-hub/academia-backend/platform/go/httpjson"
)

// Handler exposes the auth domain over HTTP.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("auth service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the auth endpoints on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	r.Post("/register", h.Register)
	r.Post("/refresh", h.Refresh)
	r.Post("/logout", h.Logout)
	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type sessionResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int          `json:"expiresIn"`
	User         userResponse `json:"user"`
}

type userResponse struct {
	ID        string    `json:"id"`
	SchoolID  string    `json:"schoolId"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.svc.Login(r.Context(), service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		h.writeError(w, r, "authLogin", err)
		return
	}

	httpjson.Write(w, http.StatusOK, toSessionResponse(session))
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      platformauth.Role(req.Role),
	})
	if err != nil {
		h.writeError(w, r, "authRegister", err)
		return
	}

	httpjson.Write(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httpjson.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(w, r, "authRefresh", err)
		return
	}

	httpjson.Write(w, http.StatusOK, toSessionResponse(session))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := platformauth.PrincipalFromContext(r.Context())
	if !ok {
		httpjson.Message(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.svc.Logout(r.Context(), principal.UserID); err != nil {
		h.writeError(w, r, "authLogout", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, message := classifyError(err)

	fields := []zap.Field{zap.String("operation", op), zap.Int("status", status)}
	switch {
	case status >= http.StatusInternalServerError:
		h.logger.Error("auth operation failed", append(fields, zap.Error(err))...)
	default:
		h.logger.Info("auth request rejected", fields...)
	}

	httpjson.Message(w, status, message)
}

func classifyError(err error) (int, string) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationMessage(validationErr)
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusUnauthorized, "User not found"
	case errors.Is(err, service.ErrInvalidPassword):
		return http.StatusUnauthorized, "Invalid password"
	case errors.Is(err, service.ErrAccountDisabled):
		return http.StatusForbidden, "Account is disabled"
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "Email already registered"
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return http.StatusUnauthorized, "Invalid refresh token"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// validationMessage surfaces the first field problem so clients get something
// actionable without a structured error contract.
func validationMessage(err *service.ValidationError) string {
	for _, messages := range err.Fields {
		if len(messages) > 0 {
			return messages[0]
		}
	}
	return "Validation failed"
}

func toSessionResponse(session service.Session) sessionResponse {
	return sessionResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
		User:         toUserResponse(session.User),
	}
}

func toUserResponse(user service.User) userResponse {
	return userResponse{
		ID:        user.ID.String(),
		SchoolID:  user.SchoolID.String(),
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}
