package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/academia-hub/academia-backend/domains/schools/be/service"
	"github.com/academia-hub/academia-backend/platform/go/tenant"
)

type mockService struct {
	createFn       func(ctx context.Context, input service.CreateInput) (service.School, error)
	getFn          func(ctx context.Context, id uuid.UUID) (service.School, error)
	listFn         func(ctx context.Context, opts service.ListOptions) ([]service.School, error)
	updateStatusFn func(ctx context.Context, id uuid.UUID, status tenant.Status) (service.School, error)
	deleteFn       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockService) Create(ctx context.Context, input service.CreateInput) (service.School, error) {
	if m.createFn == nil {
		panic("createFn not configured")
	}
	return m.createFn(ctx, input)
}

func (m *mockService) Get(ctx context.Context, id uuid.UUID) (service.School, error) {
	if m.getFn == nil {
		panic("getFn not configured")
	}
	return m.getFn(ctx, id)
}

func (m *mockService) List(ctx context.Context, opts service.ListOptions) ([]service.School, error) {
	if m.listFn == nil {
		panic("listFn not configured")
	}
	return m.listFn(ctx, opts)
}

func (m *mockService) UpdateStatus(ctx context.Context, id uuid.UUID, status tenant.Status) (service.School, error) {
	if m.updateStatusFn == nil {
		panic("updateStatusFn not configured")
	}
	return m.updateStatusFn(ctx, id, status)
}

func (m *mockService) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn == nil {
		panic("deleteFn not configured")
	}
	return m.deleteFn(ctx, id)
}

func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestCreateSchoolEndpoint(t *testing.T) {
	t.Parallel()

	h := New(&mockService{
		createFn: func(_ context.Context, input service.CreateInput) (service.School, error) {
			require.Equal(t, "lincoln", input.Subdomain)
			return service.School{
				ID:        uuid.New(),
				Subdomain: input.Subdomain,
				Name:      input.Name,
				Status:    tenant.StatusActive,
			}, nil
		},
	}, zaptest.NewLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"subdomain":"lincoln","name":"Lincoln High"}`))
	rec := serve(h, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		Subdomain string `json:"subdomain"`
		Status    string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "lincoln", body.Subdomain)
	require.Equal(t, "active", body.Status)
}

func TestSchoolEndpointErrorMapping(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	h := New(&mockService{
		getFn: func(context.Context, uuid.UUID) (service.School, error) {
			return service.School{}, service.ErrNotFound
		},
		createFn: func(context.Context, service.CreateInput) (service.School, error) {
			return service.School{}, service.ErrConflict
		},
	}, zaptest.NewLogger(t))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/"+id.String(), nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"subdomain":"x","name":"X"}`)))
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/not-a-uuid", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatusEndpoint(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	h := New(&mockService{
		updateStatusFn: func(_ context.Context, gotID uuid.UUID, status tenant.Status) (service.School, error) {
			require.Equal(t, id, gotID)
			require.Equal(t, tenant.StatusSuspended, status)
			return service.School{ID: id, Status: status}, nil
		},
	}, zaptest.NewLogger(t))

	req := httptest.NewRequest(http.MethodPatch, "/"+id.String()+"/status",
		strings.NewReader(`{"status":"suspended"}`))
	rec := serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
