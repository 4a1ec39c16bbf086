package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/investtrack-backend/internal/domain"
)

// assetRepository implements domain.AssetRepository
type assetRepository struct {
	db *DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *DB) domain.AssetRepository {
	return &assetRepository{db: db}
}

// GetByID retrieves an asset by its ID
func (r *assetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	query := `
		SELECT id, name, type
		FROM assets
		WHERE id = $1
	`

	var asset domain.Asset
	err := r.db.QueryRowContext(ctx, query, id).Scan(&asset.ID, &asset.Name, &asset.Type)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return &asset, nil
}

// GetByNameAndType retrieves an asset by its (name, type) identity
func (r *assetRepository) GetByNameAndType(ctx context.Context, name, assetType string) (*domain.Asset, error) {
	query := `
		SELECT id, name, type
		FROM assets
		WHERE name = $1 AND type = $2
	`

	var asset domain.Asset
	err := r.db.QueryRowContext(ctx, query, name, assetType).Scan(&asset.ID, &asset.Name, &asset.Type)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("asset %q (%s): %w", name, assetType, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get asset by name and type: %w", err)
	}

	return &asset, nil
}

// Create creates a new asset
func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	query := `
		INSERT INTO assets (id, name, type)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, asset.ID, asset.Name, asset.Type)
	if err != nil {
		return fmt.Errorf("failed to insert asset: %w", err)
	}

	return nil
}

// List retrieves all assets
func (r *assetRepository) List(ctx context.Context) ([]*domain.Asset, error) {
	query := `
		SELECT id, name, type
		FROM assets
		ORDER BY name, type
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	assets := make([]*domain.Asset, 0)
	for rows.Next() {
		var asset domain.Asset
		if err := rows.Scan(&asset.ID, &asset.Name, &asset.Type); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, &asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}

	return assets, nil
}
