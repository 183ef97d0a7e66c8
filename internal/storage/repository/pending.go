package repository

import (
	"context"

	"github.com/magabrotheeeer/physoxy/internal/models"
)

// GetPending возвращает незавершенную регистрацию по email.
func (s *Storage) GetPending(ctx context.Context, email string) (*models.PendingRegistration, error) {
	const op = "storage.GetPending"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	var p models.PendingRegistration
	err := s.DB.QueryRowContext(ctx,
		`SELECT email, attempts, attempt_at FROM pending_registrations WHERE email = lower($1)`, email).
		Scan(&p.Email, &p.Attempts, &p.AttemptAt)
	if err != nil {
		return nil, mapError(op, err)
	}
	p.AttemptAt = p.AttemptAt.UTC()
	return &p, nil
}

// SavePending создает или перезаписывает незавершенную регистрацию.
func (s *Storage) SavePending(ctx context.Context, p models.PendingRegistration) error {
	const op = "storage.SavePending"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO pending_registrations (email, attempts, attempt_at)
			  VALUES (lower($1), $2, $3)
			  ON CONFLICT (email) DO UPDATE
			  SET attempts = EXCLUDED.attempts, attempt_at = EXCLUDED.attempt_at`
	if _, err := s.DB.ExecContext(ctx, query, p.Email, p.Attempts, p.AttemptAt); err != nil {
		return mapError(op, err)
	}
	return nil
}
