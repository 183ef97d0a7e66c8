package cancel

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/physoxy/internal/http/middlewarectx"
	"github.com/magabrotheeeer/physoxy/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Cancel(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func TestCancelHandler(t *testing.T) {
	user := &models.User{ID: "u1"}
	svc := new(ServiceMock)
	svc.On("Cancel", mock.Anything, user).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/package/cancel", nil)
	req = req.WithContext(middlewarectx.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
	svc.AssertExpectations(t)
}
