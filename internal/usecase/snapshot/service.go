package snapshot

import (
	"context"
	"fmt"

	"github.com/simaogato/investtrack-backend/internal/domain"
)

// Service reconstructs the portfolio's valuation history from stored event logs
type Service struct {
	EventRepo domain.EventRepository
}

// NewService creates a new snapshot Service instance
func NewService(eventRepo domain.EventRepository) *Service {
	return &Service{EventRepo: eventRepo}
}

// PortfolioEvolution loads every asset's event log and replays it into the
// portfolio's snapshot series. Reconstruction itself is pure; this method only
// adds the repository read.
func (s *Service) PortfolioEvolution(ctx context.Context) (Series, error) {
	logs, err := s.EventRepo.ListAll(ctx)
	if err != nil {
		return Series{}, fmt.Errorf("failed to load event logs: %w", err)
	}

	return Reconstruct(logs), nil
}
