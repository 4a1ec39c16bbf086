package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/simaogato/investtrack-backend/internal/domain"
)

// Payload is the export format of the legacy application: a list of holdings,
// each carrying a flat history of tagged event records
type Payload struct {
	Investments []LegacyInvestment `json:"investments"`
}

// LegacyInvestment is one holding from a legacy export
type LegacyInvestment struct {
	Name    string               `json:"name"`
	Type    string               `json:"type"`
	History []domain.EventRecord `json:"history"`
}

// SkippedRecord is a non-fatal signal that the import excluded one record.
// Skipped records are accumulated and returned with the result, never thrown,
// so a partial import remains usable and its gaps are visible to the caller.
type SkippedRecord struct {
	Asset  string `json:"asset"`
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Result summarizes an import run
type Result struct {
	AssetsCreated  int             `json:"assets_created"`
	EventsImported int             `json:"events_imported"`
	Skipped        []SkippedRecord `json:"skipped"`
}

// Service ingests legacy event histories into the authoritative event log
type Service struct {
	AssetRepo domain.AssetRepository
	EventRepo domain.EventRepository
	Log       zerolog.Logger
}

// NewService creates a new importer Service instance
func NewService(assetRepo domain.AssetRepository, eventRepo domain.EventRepository, log zerolog.Logger) *Service {
	return &Service{
		AssetRepo: assetRepo,
		EventRepo: eventRepo,
		Log:       log.With().Str("component", "importer").Logger(),
	}
}

// Import replays a legacy export into the event log. Records are validated one
// by one: malformed records (unparseable dates, non-positive amounts, sales
// exceeding the units held at that point of the history) are skipped and
// reported, while the remaining records import normally. Only a payload with
// no importable content at all is an error.
//
// Imported events carry no ledger entries: the legacy cash side lives in the
// legacy ledger and re-importing it would double-count past cash flows.
func (s *Service) Import(ctx context.Context, payload Payload) (*Result, error) {
	if len(payload.Investments) == 0 {
		return nil, domain.NewValidationError("import payload contains no investments")
	}

	result := &Result{Skipped: []SkippedRecord{}}

	for _, legacy := range payload.Investments {
		if legacy.Name == "" || legacy.Type == "" {
			result.Skipped = append(result.Skipped, SkippedRecord{
				Asset:  legacy.Name,
				Index:  -1,
				Reason: "investment is missing a name or type",
			})
			continue
		}

		asset, created, err := s.findOrCreateAsset(ctx, legacy.Name, legacy.Type)
		if err != nil {
			return nil, err
		}
		if created {
			result.AssetsCreated++
		}

		// Track the running position so ill-ordered legacy records (such as
		// a sale before any purchase) are caught the same way live ones are.
		position, err := s.currentPosition(ctx, asset.ID)
		if err != nil {
			return nil, err
		}

		for i, record := range legacy.History {
			event, err := record.Event()
			if err != nil {
				result.Skipped = append(result.Skipped, SkippedRecord{Asset: legacy.Name, Index: i, Reason: err.Error()})
				continue
			}

			if sale, ok := event.(domain.Sale); ok && sale.Quantity.GreaterThan(position.Quantity) {
				result.Skipped = append(result.Skipped, SkippedRecord{
					Asset:  legacy.Name,
					Index:  i,
					Reason: "sale quantity exceeds units held at this point of the history",
				})
				continue
			}

			if err := s.EventRepo.Append(ctx, asset.ID, event); err != nil {
				return nil, fmt.Errorf("failed to append imported event for %q: %w", legacy.Name, err)
			}
			position = position.Apply(event)
			result.EventsImported++
		}
	}

	if result.EventsImported == 0 && result.AssetsCreated == 0 {
		return nil, domain.NewValidationError("import payload contains no importable records")
	}

	s.Log.Info().
		Int("assets_created", result.AssetsCreated).
		Int("events_imported", result.EventsImported).
		Int("skipped", len(result.Skipped)).
		Msg("Legacy import finished")

	return result, nil
}

func (s *Service) findOrCreateAsset(ctx context.Context, name, assetType string) (*domain.Asset, bool, error) {
	asset, err := s.AssetRepo.GetByNameAndType(ctx, name, assetType)
	if err == nil {
		return asset, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	asset = &domain.Asset{ID: uuid.New(), Name: name, Type: assetType}
	if err := s.AssetRepo.Create(ctx, asset); err != nil {
		return nil, false, fmt.Errorf("failed to create asset %q: %w", name, err)
	}
	return asset, true, nil
}

func (s *Service) currentPosition(ctx context.Context, assetID uuid.UUID) (domain.Position, error) {
	events, err := s.EventRepo.ListByAsset(ctx, assetID)
	if err != nil {
		return domain.Position{}, fmt.Errorf("failed to load events for asset %s: %w", assetID, err)
	}
	return domain.ReplayPosition(events), nil
}
