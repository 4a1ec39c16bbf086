package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/investtrack-backend/internal/domain"
)

// Fixed UUIDs for the default investment types so that reseeding an existing
// database is idempotent
var (
	TYPE_STOCKS       = uuid.MustParse("00000000-0000-0000-0000-000000000101")
	TYPE_REITS        = uuid.MustParse("00000000-0000-0000-0000-000000000102")
	TYPE_FIXED_INCOME = uuid.MustParse("00000000-0000-0000-0000-000000000103")
	TYPE_CRYPTO       = uuid.MustParse("00000000-0000-0000-0000-000000000104")
	TYPE_FUNDS        = uuid.MustParse("00000000-0000-0000-0000-000000000105")
	TYPE_FOREIGN      = uuid.MustParse("00000000-0000-0000-0000-000000000106")
)

// TypeSeeder handles seeding of the default investment types
type TypeSeeder struct {
	repo domain.InvestmentTypeRepository
}

// NewTypeSeeder creates a new TypeSeeder instance
func NewTypeSeeder(repo domain.InvestmentTypeRepository) *TypeSeeder {
	return &TypeSeeder{
		repo: repo,
	}
}

// Seed ensures the default investment types exist in the database.
// If a type doesn't exist, it creates it; user-created types are untouched.
func (s *TypeSeeder) Seed(ctx context.Context) error {
	defaultTypes := []domain.InvestmentType{
		{ID: TYPE_STOCKS, Slug: "stocks", Name: "Stocks", Color: "#ef4444"},
		{ID: TYPE_REITS, Slug: "reits", Name: "REITs", Color: "#3b82f6"},
		{ID: TYPE_FIXED_INCOME, Slug: "fixed-income", Name: "Fixed Income", Color: "#10b981"},
		{ID: TYPE_CRYPTO, Slug: "crypto", Name: "Cryptocurrencies", Color: "#f59e0b"},
		{ID: TYPE_FUNDS, Slug: "funds", Name: "Investment Funds", Color: "#8b5cf6"},
		{ID: TYPE_FOREIGN, Slug: "foreign", Name: "Foreign Investments", Color: "#06b6d4"},
	}

	for _, defaultType := range defaultTypes {
		_, err := s.repo.GetBySlug(ctx, defaultType.Slug)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("failed to check investment type %q: %w", defaultType.Slug, err)
		}

		investmentType := defaultType
		if err := s.repo.Create(ctx, &investmentType); err != nil {
			return fmt.Errorf("failed to seed investment type %q: %w", defaultType.Slug, err)
		}
	}

	return nil
}
