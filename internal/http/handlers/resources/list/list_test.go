package list

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

	"github.com/magabrotheeeer/physoxy/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ListResources(ctx context.Context, typ models.ResourceType) ([]models.Resource, error) {
	args := m.Called(ctx, typ)
	list, _ := args.Get(0).([]models.Resource)
	return list, args.Error(1)
}

func TestListHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	plan := "p-1"

	t.Run("lists resources of the handler type", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("ListResources", mock.Anything, models.ResourceEvent).Return([]models.Resource{
			{ID: "r-1", Type: models.ResourceEvent, Title: "Open day"},
			{ID: "r-2", Type: models.ResourceEvent, Title: "Masterclass", PlanID: &plan, PlanName: "Gold"},
		}, nil).Once()

		rec := httptest.NewRecorder()
		New(log, svc, models.ResourceEvent).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"planName":"Gold"`)
		assert.NotContains(t, rec.Body.String(), `"content"`)
		svc.AssertExpectations(t)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("ListResources", mock.Anything, models.ResourceBlog).Return([]models.Resource{}, nil).Once()

		rec := httptest.NewRecorder()
		New(log, svc, models.ResourceBlog).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/blogs", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("store failure is hidden", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("ListResources", mock.Anything, models.ResourceCourse).Return(nil, errors.New("db down")).Once()

		rec := httptest.NewRecorder()
		New(log, svc, models.ResourceCourse).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "db down")
	})
}
