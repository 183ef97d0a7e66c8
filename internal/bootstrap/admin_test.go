package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/physoxy/internal/models"
	"github.com/magabrotheeeer/physoxy/internal/storage/repository"
)

type RoleSetterMock struct {
	mock.Mock
}

func (m *RoleSetterMock) SetRoleByEmail(ctx context.Context, email string, role models.Role) error {
	return m.Called(ctx, email, role).Error(0)
}

func TestPromoteAdmin(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		repoErr error
		call    bool
		wantErr bool
		wantLog string
	}{
		{name: "promoted", email: " Boss@Example.com ", call: true, wantLog: "admin role granted"},
		{name: "not configured", email: "", wantLog: "admin email is not configured"},
		{
			name:    "user missing",
			email:   "boss@example.com",
			repoErr: fmt.Errorf("storage.SetRoleByEmail: %w", repository.ErrNotFound),
			call:    true,
			wantLog: "admin user not found",
		},
		{name: "store failure", email: "boss@example.com", repoErr: errors.New("db down"), call: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(slog.NewTextHandler(&buf, nil))
			repo := new(RoleSetterMock)
			if tt.call {
				repo.On("SetRoleByEmail", mock.Anything, "boss@example.com", models.RoleAdmin).Return(tt.repoErr).Once()
			}

			err := PromoteAdmin(context.Background(), repo, tt.email, log)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Contains(t, buf.String(), tt.wantLog)
			}
			repo.AssertExpectations(t)
		})
	}
}
