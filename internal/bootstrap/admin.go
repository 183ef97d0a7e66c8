// Package bootstrap выполняет разовые действия при старте сервиса.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/physoxy/internal/models"
	"github.com/magabrotheeeer/physoxy/internal/storage/repository"
)

// RoleSetter меняет роль пользователя по email.
type RoleSetter interface {
	SetRoleByEmail(ctx context.Context, email string, role models.Role) error
}

// PromoteAdmin назначает роль admin пользователю с адресом email.
// Пустой адрес и отсутствующий пользователь не считаются ошибкой: пишется предупреждение.
func PromoteAdmin(ctx context.Context, users RoleSetter, email string, log *slog.Logger) error {
	const op = "bootstrap.PromoteAdmin"
	log = log.With(slog.String("op", op))

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		log.Warn("admin email is not configured, skipping")
		return nil
	}

	err := users.SetRoleByEmail(ctx, email, models.RoleAdmin)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("admin user not found, register it and restart", slog.String("email", email))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("admin role granted", slog.String("email", email))
	return nil
}
