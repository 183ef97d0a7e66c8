package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/physoxy/internal/models"
)

func scanResource(row rowScanner, withContent bool) (*models.Resource, error) {
	var (
		r        models.Resource
		typ      string
		planID   sql.NullString
		planName sql.NullString
	)
	dest := []any{&r.ID, &typ, &r.Title}
	if withContent {
		dest = append(dest, &r.Content)
	}
	dest = append(dest, &planID, &planName)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	r.Type = models.ResourceType(typ)
	if planID.Valid {
		r.PlanID = &planID.String
		r.PlanName = planName.String
	}
	return &r, nil
}

// CreateResource сохраняет материал. Несуществующий план дает ErrNotFound.
func (s *Storage) CreateResource(ctx context.Context, r models.Resource) (*models.Resource, error) {
	const op = "storage.CreateResource"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	var planID any
	if r.Gated() {
		planID = *r.PlanID
	}

	query := `WITH ins AS (
				INSERT INTO resources (type, title, content, plan_id)
				VALUES ($1, $2, $3, $4)
				RETURNING id, type, title, content, plan_id
			  )
			  SELECT ins.id, ins.type, ins.title, ins.content, ins.plan_id, p.name
			  FROM ins LEFT JOIN packages p ON p.id = ins.plan_id`
	created, err := scanResource(s.DB.QueryRowContext(ctx, query, string(r.Type), r.Title, r.Content, planID), true)
	if err != nil {
		return nil, mapError(op, err)
	}
	return created, nil
}

// GetResource возвращает материал указанного типа вместе с содержимым.
func (s *Storage) GetResource(ctx context.Context, typ models.ResourceType, id string) (*models.Resource, error) {
	const op = "storage.GetResource"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT r.id, r.type, r.title, r.content, r.plan_id, p.name
			  FROM resources r
			  LEFT JOIN packages p ON p.id = r.plan_id
			  WHERE r.id = $1 AND r.type = $2`
	res, err := scanResource(s.DB.QueryRowContext(ctx, query, id, string(typ)), true)
	if err != nil {
		return nil, mapError(op, err)
	}
	return res, nil
}

// ListResources возвращает материалы типа без содержимого.
func (s *Storage) ListResources(ctx context.Context, typ models.ResourceType) ([]models.Resource, error) {
	const op = "storage.ListResources"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT r.id, r.type, r.title, r.plan_id, p.name
			  FROM resources r
			  LEFT JOIN packages p ON p.id = r.plan_id
			  WHERE r.type = $1
			  ORDER BY r.title`
	rows, err := s.DB.QueryContext(ctx, query, string(typ))
	if err != nil {
		return nil, mapError(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Resource, 0)
	for rows.Next() {
		r, err := scanResource(rows, false)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteResource удаляет материал указанного типа.
func (s *Storage) DeleteResource(ctx context.Context, typ models.ResourceType, id string) error {
	const op = "storage.DeleteResource"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM resources WHERE id = $1 AND type = $2`, id, string(typ))
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}
