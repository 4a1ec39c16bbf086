package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/investtrack-backend/internal/domain"
)

// investmentTypeRepository implements domain.InvestmentTypeRepository
type investmentTypeRepository struct {
	db *DB
}

// NewInvestmentTypeRepository creates a new investment type repository
func NewInvestmentTypeRepository(db *DB) domain.InvestmentTypeRepository {
	return &investmentTypeRepository{db: db}
}

// GetBySlug retrieves an investment type by its slug
func (r *investmentTypeRepository) GetBySlug(ctx context.Context, slug string) (*domain.InvestmentType, error) {
	query := `
		SELECT id, slug, name, color
		FROM investment_types
		WHERE slug = $1
	`

	var investmentType domain.InvestmentType
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&investmentType.ID,
		&investmentType.Slug,
		&investmentType.Name,
		&investmentType.Color,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("investment type %q: %w", slug, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get investment type: %w", err)
	}

	return &investmentType, nil
}

// Create creates a new investment type
func (r *investmentTypeRepository) Create(ctx context.Context, investmentType *domain.InvestmentType) error {
	query := `
		INSERT INTO investment_types (id, slug, name, color)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		investmentType.ID,
		investmentType.Slug,
		investmentType.Name,
		investmentType.Color,
	)
	if err != nil {
		return fmt.Errorf("failed to insert investment type: %w", err)
	}

	return nil
}

// List retrieves all investment types
func (r *investmentTypeRepository) List(ctx context.Context) ([]*domain.InvestmentType, error) {
	query := `
		SELECT id, slug, name, color
		FROM investment_types
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list investment types: %w", err)
	}
	defer rows.Close()

	types := make([]*domain.InvestmentType, 0)
	for rows.Next() {
		var investmentType domain.InvestmentType
		if err := rows.Scan(&investmentType.ID, &investmentType.Slug, &investmentType.Name, &investmentType.Color); err != nil {
			return nil, fmt.Errorf("failed to scan investment type: %w", err)
		}
		types = append(types, &investmentType)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate investment types: %w", err)
	}

	return types, nil
}

// Delete removes an investment type by its ID
func (r *investmentTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM investment_types
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete investment type: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("investment type %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// InUse reports whether any asset references the type with the given slug
func (r *investmentTypeRepository) InUse(ctx context.Context, slug string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM assets WHERE type = $1
		)
	`

	var inUse bool
	if err := r.db.QueryRowContext(ctx, query, slug).Scan(&inUse); err != nil {
		return false, fmt.Errorf("failed to check investment type usage: %w", err)
	}

	return inUse, nil
}
