package verify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/physoxy/internal/lib/apperr"
	"github.com/magabrotheeeer/physoxy/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) VerifyMagicLink(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func TestVerifyHandler(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		user       *models.User
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "verified",
			token:      "good",
			user:       &models.User{ID: "u1", Name: "Ada <script>"},
			wantStatus: http.StatusOK,
			wantBody:   "Ada &lt;script&gt;",
		},
		{
			name:       "missing token",
			err:        apperr.New(apperr.ErrValidation, "Invalid or missing token.", "d"),
			wantStatus: http.StatusBadRequest,
			wantBody:   "Invalid or missing token.",
		},
		{
			name:       "expired",
			token:      "old",
			err:        apperr.New(apperr.ErrUnauthorized, "This link has expired. Please request a new one.", "d"),
			wantStatus: http.StatusUnauthorized,
			wantBody:   "This link has expired.",
		},
		{
			name:       "no pending registration",
			token:      "orphan",
			err:        apperr.New(apperr.ErrNotFound, "User not found for this token.", "d"),
			wantStatus: http.StatusNotFound,
			wantBody:   "User not found for this token.",
		},
		{
			name:       "store failure",
			token:      "good",
			err:        errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Something went wrong!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("VerifyMagicLink", mock.Anything, tt.token).Return(tt.user, tt.err).Once()

			req := httptest.NewRequest(http.MethodGet, "/api/verify?token="+tt.token, nil)
			rec := httptest.NewRecorder()
			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, "Physoxy", "http://localhost:5173").ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.NotContains(t, rec.Body.String(), "db down")
		})
	}
}
