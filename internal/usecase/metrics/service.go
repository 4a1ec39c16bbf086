package metrics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/investtrack-backend/internal/domain"
)

// PortfolioMetrics is the cross-sectional aggregation of all positions'
// current state, for dashboard display
type PortfolioMetrics struct {
	TotalInvested    decimal.Decimal
	TotalValue       decimal.Decimal
	TotalDividends   decimal.Decimal
	TotalReturn      decimal.Decimal
	ReturnPercentage decimal.Decimal
	DividendYield    decimal.Decimal
}

// AssetPosition pairs an asset with its current position, replayed from its
// event log
type AssetPosition struct {
	Asset    *domain.Asset
	Position domain.Position
}

var hundred = decimal.NewFromInt(100)

// Compute aggregates the current state of all positions.
// A portfolio with no invested capital yields zero ratios, never NaN or
// infinity; an empty portfolio yields all-zero metrics.
func Compute(positions []domain.Position) PortfolioMetrics {
	m := PortfolioMetrics{
		TotalInvested:    decimal.Zero,
		TotalValue:       decimal.Zero,
		TotalDividends:   decimal.Zero,
		TotalReturn:      decimal.Zero,
		ReturnPercentage: decimal.Zero,
		DividendYield:    decimal.Zero,
	}

	for _, position := range positions {
		m.TotalInvested = m.TotalInvested.Add(position.TotalInvested)
		m.TotalValue = m.TotalValue.Add(position.CurrentValue)
		m.TotalDividends = m.TotalDividends.Add(position.CumulativeDividends)
	}

	m.TotalReturn = m.TotalValue.Sub(m.TotalInvested)
	if !m.TotalInvested.IsZero() {
		m.ReturnPercentage = m.TotalReturn.Div(m.TotalInvested).Mul(hundred)
		m.DividendYield = m.TotalDividends.Div(m.TotalInvested).Mul(hundred)
	}

	return m
}

// Service computes dashboard aggregates over the portfolio's current state
type Service struct {
	AssetRepo domain.AssetRepository
	EventRepo domain.EventRepository
}

// NewService creates a new metrics Service instance
func NewService(assetRepo domain.AssetRepository, eventRepo domain.EventRepository) *Service {
	return &Service{
		AssetRepo: assetRepo,
		EventRepo: eventRepo,
	}
}

// ListPositions replays every asset's event log into its current position
func (s *Service) ListPositions(ctx context.Context) ([]AssetPosition, error) {
	assets, err := s.AssetRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	positions := make([]AssetPosition, 0, len(assets))
	for _, asset := range assets {
		events, err := s.EventRepo.ListByAsset(ctx, asset.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load events for asset %s: %w", asset.ID, err)
		}
		positions = append(positions, AssetPosition{
			Asset:    asset,
			Position: domain.ReplayPosition(events),
		})
	}

	return positions, nil
}

// PortfolioMetrics aggregates the current state of the whole portfolio
func (s *Service) PortfolioMetrics(ctx context.Context) (*PortfolioMetrics, error) {
	assetPositions, err := s.ListPositions(ctx)
	if err != nil {
		return nil, err
	}

	positions := make([]domain.Position, 0, len(assetPositions))
	for _, ap := range assetPositions {
		positions = append(positions, ap.Position)
	}

	m := Compute(positions)
	return &m, nil
}
