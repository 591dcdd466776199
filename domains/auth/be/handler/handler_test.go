package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/academia-hub/academia-backend/domains/auth/be/service"
	platformauth "github.com/academia-hub/academia-backend/platform/go/auth"
)

type mockService struct {
	loginFn    func(ctx context.Context, input service.LoginInput) (service.Session, error)
	registerFn func(ctx context.Context, input service.RegisterInput) (service.User, error)
	refreshFn  func(ctx context.Context, refreshToken string) (service.Session, error)
	logoutFn   func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockService) Login(ctx context.Context, input service.LoginInput) (service.Session, error) {
	if m.loginFn == nil {
		panic("loginFn not configured")
	}
	return m.loginFn(ctx, input)
}

func (m *mockService) Register(ctx context.Context, input service.RegisterInput) (service.User, error) {
	if m.registerFn == nil {
		panic("registerFn not configured")
	}
	return m.registerFn(ctx, input)
}

func (m *mockService) Refresh(ctx context.Context, refreshToken string) (service.Session, error) {
	if m.refreshFn == nil {
		panic("refreshFn not configured")
	}
	return m.refreshFn(ctx, refreshToken)
}

func (m *mockService) Logout(ctx context.Context, userID uuid.UUID) error {
	if m.logoutFn == nil {
		panic("logoutFn not configured")
	}
	return m.logoutFn(ctx, userID)
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestLoginHandlerSuccess(t *testing.T) {
	t.Parallel()

	session := service.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    900,
		User: service.User{
			ID:        uuid.New(),
			SchoolID:  uuid.New(),
			Email:     "maria@lincoln.test",
			FirstName: "Maria",
			LastName:  "Lopez",
			Role:      platformauth.RoleTeacher,
			CreatedAt: time.Now().UTC(),
		},
	}

	h := New(&mockService{
		loginFn: func(_ context.Context, input service.LoginInput) (service.Session, error) {
			require.Equal(t, "maria@lincoln.test", input.Email)
			require.Equal(t, "secret", input.Password)
			return session, nil
		},
	}, zaptest.NewLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"maria@lincoln.test","password":"secret"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		User         struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "access", body.AccessToken)
	require.Equal(t, "refresh", body.RefreshToken)
	require.Equal(t, "TEACHER", body.User.Role)
}

func TestLoginHandlerErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"unknown user", service.ErrUserNotFound, http.StatusUnauthorized, "User not found"},
		{"bad password", service.ErrInvalidPassword, http.StatusUnauthorized, "Invalid password"},
		{"disabled account", service.ErrAccountDisabled, http.StatusForbidden, "Account is disabled"},
		{"storage fault", context.DeadlineExceeded, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := New(&mockService{
				loginFn: func(context.Context, service.LoginInput) (service.Session, error) {
					return service.Session{}, tc.err
				},
			}, zaptest.NewLogger(t))

			req := httptest.NewRequest(http.MethodPost, "/login",
				strings.NewReader(`{"email":"a@b.test","password":"x"}`))
			rec := httptest.NewRecorder()
			h.Login(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code)
			require.Equal(t, tc.wantMessage, messageOf(t, rec))
		})
	}
}

func TestLoginHandlerRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	h := New(&mockService{}, zaptest.NewLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid request body", messageOf(t, rec))
}

func TestRegisterHandler(t *testing.T) {
	t.Parallel()

	h := New(&mockService{
		registerFn: func(_ context.Context, input service.RegisterInput) (service.User, error) {
			require.Equal(t, platformauth.RoleStudent, input.Role)
			return service.User{
				ID:       uuid.New(),
				SchoolID: uuid.New(),
				Email:    input.Email,
				Role:     input.Role,
			}, nil
		},
	}, zaptest.NewLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(
		`{"email":"ana@lincoln.test","password":"long enough","firstName":"Ana","lastName":"Silva","role":"STUDENT"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestRegisterHandlerValidationAndConflict(t *testing.T) {
	t.Parallel()

	h := New(&mockService{
		registerFn: func(context.Context, service.RegisterInput) (service.User, error) {
			return service.User{}, &service.ValidationError{
				Fields: service.FieldErrors{"password": {"password must be at least 8 characters"}},
			}
		},
	}, zaptest.NewLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"password":"x"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "password must be at least 8 characters", messageOf(t, rec))

	h = New(&mockService{
		registerFn: func(context.Context, service.RegisterInput) (service.User, error) {
			return service.User{}, service.ErrEmailTaken
		},
	}, zaptest.NewLogger(t))

	rec = httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "Email already registered", messageOf(t, rec))
}

func TestRefreshHandler(t *testing.T) {
	t.Parallel()

	h := New(&mockService{
		refreshFn: func(_ context.Context, token string) (service.Session, error) {
			require.Equal(t, "old-token", token)
			return service.Session{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
		},
	}, zaptest.NewLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/refresh", strings.NewReader(`{"refreshToken":"old-token"}`))
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Missing token short-circuits before the service.
	rec = httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/refresh", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	h = New(&mockService{
		refreshFn: func(context.Context, string) (service.Session, error) {
			return service.Session{}, service.ErrInvalidRefreshToken
		},
	}, zaptest.NewLogger(t))
	rec = httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/refresh", strings.NewReader(`{"refreshToken":"stale"}`)))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid refresh token", messageOf(t, rec))
}

func TestLogoutHandler(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	called := false
	h := New(&mockService{
		logoutFn: func(_ context.Context, id uuid.UUID) error {
			require.Equal(t, userID, id)
			called = true
			return nil
		},
	}, zaptest.NewLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req = req.WithContext(platformauth.WithPrincipal(req.Context(), platformauth.Principal{
		UserID: userID,
		Role:   platformauth.RoleTeacher,
	}))
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.True(t, called)

	// Without a principal the endpoint rejects.
	rec = httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Authentication required", messageOf(t, rec))
}
