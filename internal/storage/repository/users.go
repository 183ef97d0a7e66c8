package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/physoxy/internal/models"
)

const userColumns = `id, name, email, password_hash, role, avatar, refresh_token,
	sub_plan_id, sub_type, sub_amount, sub_starts_at, sub_ends_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                models.User
		role             string
		refresh          sql.NullString
		planID, subType  sql.NullString
		amount           sql.NullFloat64
		startsAt, endsAt sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.Avatar, &refresh,
		&planID, &subType, &amount, &startsAt, &endsAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	u.RefreshToken = refresh.String

	if planID.Valid && subType.Valid && endsAt.Valid {
		u.Subscription = &models.Subscription{
			PlanID:   planID.String,
			Type:     models.BillingType(subType.String),
			Amount:   amount.Float64,
			StartsAt: startsAt.Time.UTC(),
			EndsAt:   endsAt.Time.UTC(),
		}
	}
	return &u, nil
}

// CreateUserFromPending в одной транзакции создает пользователя и удаляет
// незавершенную регистрацию с тем же email.
func (s *Storage) CreateUserFromPending(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.CreateUserFromPending"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO users (name, email, password_hash, role, avatar)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING ` + userColumns
	created, err := scanUser(tx.QueryRowContext(ctx, query,
		user.Name, strings.ToLower(user.Email), user.PasswordHash, string(user.Role), user.Avatar))
	if err != nil {
		return nil, mapError(op, err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM pending_registrations WHERE email = $1`, created.Email); err != nil {
		return nil, mapError(op, err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetUserByEmail возвращает пользователя по email без учета регистра.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, mapError(op, err)
	}
	return u, nil
}

// GetUserByID возвращает пользователя по его идентификатору.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUserByID"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(op, err)
	}
	return u, nil
}

// SetRefreshToken перезаписывает единственный refresh-токен пользователя.
func (s *Storage) SetRefreshToken(ctx context.Context, userID, token string) error {
	const op = "storage.SetRefreshToken"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET refresh_token = $1, updated_at = NOW() WHERE id = $2`, token, userID)
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}

// ClearRefreshToken удаляет refresh-токен пользователя. Повторный вызов безопасен.
func (s *Storage) ClearRefreshToken(ctx context.Context, userID string) error {
	const op = "storage.ClearRefreshToken"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET refresh_token = NULL, updated_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}

// SetSubscription полностью заменяет подписку пользователя.
func (s *Storage) SetSubscription(ctx context.Context, userID string, sub models.Subscription) error {
	const op = "storage.SetSubscription"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	query := `UPDATE users
			  SET sub_plan_id = $1, sub_type = $2, sub_amount = $3,
			      sub_starts_at = $4, sub_ends_at = $5, updated_at = NOW()
			  WHERE id = $6`
	res, err := s.DB.ExecContext(ctx, query,
		sub.PlanID, string(sub.Type), sub.Amount, sub.StartsAt, sub.EndsAt, userID)
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}

// ClearSubscription удаляет подписку пользователя.
func (s *Storage) ClearSubscription(ctx context.Context, userID string) error {
	const op = "storage.ClearSubscription"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	query := `UPDATE users
			  SET sub_plan_id = NULL, sub_type = NULL, sub_amount = NULL,
			      sub_starts_at = NULL, sub_ends_at = NULL, updated_at = NOW()
			  WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}

// SetRoleByEmail меняет роль пользователя с указанным email.
func (s *Storage) SetRoleByEmail(ctx context.Context, email string, role models.Role) error {
	const op = "storage.SetRoleByEmail"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET role = $1, updated_at = NOW() WHERE email = lower($2)`, string(role), email)
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}

// ListActiveSubscribers возвращает пользователей, чья подписка действует в момент now.
func (s *Storage) ListActiveSubscribers(ctx context.Context, now time.Time) ([]models.Subscriber, error) {
	const op = "storage.ListActiveSubscribers"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT u.id, u.email, p.name, u.sub_plan_id, u.sub_type, u.sub_amount,
			      u.sub_starts_at, u.sub_ends_at
			  FROM users u
			  JOIN packages p ON p.id = u.sub_plan_id
			  WHERE u.sub_ends_at > $1
			  ORDER BY u.sub_ends_at`
	rows, err := s.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Subscriber
	for rows.Next() {
		var sub models.Subscriber
		var subType string
		if err = rows.Scan(&sub.ID, &sub.Email, &sub.PackageName, &sub.Subscription.PlanID, &subType,
			&sub.Subscription.Amount, &sub.Subscription.StartsAt, &sub.Subscription.EndsAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sub.Subscription.Type = models.BillingType(subType)
		result = append(result, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountActiveSubscribers считает пользователей с действующей подпиской на пакет.
func (s *Storage) CountActiveSubscribers(ctx context.Context, packageID string, now time.Time) (int, error) {
	const op = "storage.CountActiveSubscribers"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE sub_plan_id = $1 AND sub_ends_at > $2`, packageID, now).Scan(&count)
	if err != nil {
		return 0, mapError(op, err)
	}
	return count, nil
}
