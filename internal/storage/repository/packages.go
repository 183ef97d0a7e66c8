package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/physoxy/internal/models"
)

const packageColumns = `id, name, description, price_monthly, price_yearly`

func scanPackage(row rowScanner) (*models.Package, error) {
	var p models.Package
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Pricing.Monthly, &p.Pricing.Yearly); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePackage создает тарифный пакет и возвращает его с присвоенным id.
func (s *Storage) CreatePackage(ctx context.Context, p models.Package) (*models.Package, error) {
	const op = "storage.CreatePackage"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO packages (name, description, price_monthly, price_yearly)
			  VALUES ($1, $2, $3, $4)
			  RETURNING ` + packageColumns
	created, err := scanPackage(s.DB.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Pricing.Monthly, p.Pricing.Yearly))
	if err != nil {
		return nil, mapError(op, err)
	}
	return created, nil
}

// GetPackage возвращает пакет по id.
func (s *Storage) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	const op = "storage.GetPackage"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	p, err := scanPackage(s.DB.QueryRowContext(ctx, `SELECT `+packageColumns+` FROM packages WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(op, err)
	}
	return p, nil
}

// ListPackages возвращает все пакеты, упорядоченные по месячной цене.
func (s *Storage) ListPackages(ctx context.Context) ([]models.Package, error) {
	const op = "storage.ListPackages"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+packageColumns+` FROM packages ORDER BY price_monthly, name`)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Package, 0)
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdatePackage перезаписывает поля пакета с указанным id.
func (s *Storage) UpdatePackage(ctx context.Context, p models.Package) (*models.Package, error) {
	const op = "storage.UpdatePackage"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE packages
			  SET name = $1, description = $2, price_monthly = $3, price_yearly = $4
			  WHERE id = $5
			  RETURNING ` + packageColumns
	updated, err := scanPackage(s.DB.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Pricing.Monthly, p.Pricing.Yearly, p.ID))
	if err != nil {
		return nil, mapError(op, err)
	}
	return updated, nil
}

// DeletePackage удаляет пакет. Ссылки из подписок и материалов обнуляются внешним ключом.
func (s *Storage) DeletePackage(ctx context.Context, id string) error {
	const op = "storage.DeletePackage"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM packages WHERE id = $1`, id)
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}
