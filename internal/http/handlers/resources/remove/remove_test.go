package remove

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/physoxy/internal/lib/apperr"
	"github.com/magabrotheeeer/physoxy/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) DeleteResource(ctx context.Context, typ models.ResourceType, id string) error {
	return m.Called(ctx, typ, id).Error(0)
}

const resourceID = "7f9d1c2e-5b4a-4c3d-8e2f-1a0b9c8d7e6f"

func TestRemoveHandler(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		err        error
		call       bool
		wantStatus int
		wantBody   string
	}{
		{name: "deleted", id: resourceID, call: true, wantStatus: http.StatusOK, wantBody: "Deleted."},
		{
			name: "missing", id: resourceID, call: true,
			err:        apperr.New(apperr.ErrNotFound, "Course not found", "course id is not found"),
			wantStatus: http.StatusNotFound, wantBody: "Course not found",
		},
		{name: "bad id", id: "42", wantStatus: http.StatusBadRequest, wantBody: "Invalid course ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.call {
				svc.On("DeleteResource", mock.Anything, models.ResourceCourse, tt.id).Return(tt.err).Once()
			}
			router := chi.NewRouter()
			router.Delete("/api/course/{id}",
				New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, models.ResourceCourse).ServeHTTP)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/course/"+tt.id, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}
