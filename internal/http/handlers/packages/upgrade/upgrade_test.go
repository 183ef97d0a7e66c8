package upgrade

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/physoxy/internal/http/middlewarectx"
	"github.com/magabrotheeeer/physoxy/internal/lib/apperr"
	"github.com/magabrotheeeer/physoxy/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ChangePlan(ctx context.Context, user *models.User, packageID string, billing models.BillingType) (*models.Subscription, error) {
	args := m.Called(ctx, user, packageID, billing)
	sub, _ := args.Get(0).(*models.Subscription)
	return sub, args.Error(1)
}

const pkgID = "6f1c3a5e-2b7d-4c9a-8e10-1a2b3c4d5e6f"

func TestUpgradeHandler(t *testing.T) {
	user := &models.User{ID: "u1", Role: models.RoleUser}
	sub := models.NewSubscription(pkgID, models.Yearly, 100, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name        string
		id          string
		body        string
		mockSub     *models.Subscription
		mockErr     error
		call        bool
		wantStatus  int
		wantMessage string
	}{
		{name: "charged", id: pkgID, body: `{"type":"yearly"}`, mockSub: &sub, call: true, wantStatus: http.StatusOK},
		{
			name: "bad type", id: pkgID, body: `{"type":"weekly"}`, wantStatus: http.StatusBadRequest,
			wantMessage: "Subscription type must be either monthly or yearly",
		},
		{
			name: "bad id", id: "not-a-uuid", body: `{"type":"yearly"}`, wantStatus: http.StatusBadRequest,
			wantMessage: "Invalid package ID",
		},
		{
			name: "already subscribed", id: pkgID, body: `{"type":"yearly"}`, call: true,
			mockErr:    apperr.New(apperr.ErrConflict, "Already subscribed to this plan!", "d"),
			wantStatus: http.StatusForbidden, wantMessage: "Already subscribed to this plan!",
		},
		{
			name: "unknown package", id: pkgID, body: `{"type":"yearly"}`, call: true,
			mockErr:    apperr.New(apperr.ErrNotFound, "Package not found", "d"),
			wantStatus: http.StatusNotFound, wantMessage: "Package not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.call {
				svc.On("ChangePlan", mock.Anything, user, pkgID, models.Yearly).Return(tt.mockSub, tt.mockErr).Once()
			}

			router := chi.NewRouter()
			router.With(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					next.ServeHTTP(w, r.WithContext(middlewarectx.WithUser(r.Context(), user)))
				})
			}).Post("/api/package/upgrade/{id}", New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP)

			req := httptest.NewRequest(http.MethodPost, "/api/package/upgrade/"+tt.id, bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, got["message"])
			} else {
				assert.Equal(t, "yearly", got["type"])
				assert.Equal(t, 100.0, got["amount"])
			}
			svc.AssertExpectations(t)
		})
	}
}
