package investment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/investtrack-backend/internal/domain"
)

// RecordPurchaseInput represents the input for recording a purchase
type RecordPurchaseInput struct {
	AssetName string
	AssetType string
	Date      time.Time
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// RecordRevaluationInput represents the input for recording a revaluation
type RecordRevaluationInput struct {
	AssetName       string
	AssetType       string
	Date            time.Time
	UnitPrice       decimal.Decimal
	DividendPerUnit decimal.Decimal
}

// RecordSaleInput represents the input for recording a sale
type RecordSaleInput struct {
	AssetName string
	AssetType string
	Date      time.Time
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// RecordResult is the outcome of accepting an event: the asset it was appended
// to, the asset's new position, and the cash ledger entry written alongside
// (nil for revaluations, which have no cash effect)
type RecordResult struct {
	Asset    *domain.Asset
	Position domain.Position
	Ledger   *domain.LedgerEntry
}

// InvestmentService handles event ingestion: it validates incoming events,
// appends them to the authoritative event log and keeps the cash ledger
// consistent with the investment side. Position state is never written
// directly; it is always derived from the log.
type InvestmentService struct {
	AssetRepo domain.AssetRepository
	EventRepo domain.EventRepository
	TypeRepo  domain.InvestmentTypeRepository
}

// NewInvestmentService creates a new InvestmentService instance
func NewInvestmentService(
	assetRepo domain.AssetRepository,
	eventRepo domain.EventRepository,
	typeRepo domain.InvestmentTypeRepository,
) *InvestmentService {
	return &InvestmentService{
		AssetRepo: assetRepo,
		EventRepo: eventRepo,
		TypeRepo:  typeRepo,
	}
}

// RecordPurchase appends a purchase event and its cash debit in one atomic
// command. The asset is created on first purchase (identity is the name+type
// pair). Returns the asset's position after the event.
func (s *InvestmentService) RecordPurchase(ctx context.Context, input RecordPurchaseInput) (*RecordResult, error) {
	if err := validateIdentity(input.AssetName, input.AssetType, input.Date); err != nil {
		return nil, err
	}
	if input.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, domain.NewValidationError("purchase quantity must be positive")
	}
	if input.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return nil, domain.NewValidationError("purchase unit price must be positive")
	}

	if _, err := s.TypeRepo.GetBySlug(ctx, input.AssetType); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError(fmt.Sprintf("unknown investment type %q", input.AssetType))
		}
		return nil, err
	}

	asset, err := s.findOrCreateAsset(ctx, input.AssetName, input.AssetType)
	if err != nil {
		return nil, err
	}

	position, err := s.currentPosition(ctx, asset.ID)
	if err != nil {
		return nil, err
	}

	event := domain.Purchase{
		Date:      domain.Day(input.Date),
		Quantity:  input.Quantity,
		UnitPrice: input.UnitPrice,
	}
	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		AssetID:     asset.ID,
		Date:        event.Date,
		Direction:   domain.LedgerDebit,
		Amount:      input.Quantity.Mul(input.UnitPrice),
		Description: fmt.Sprintf("Purchase of %s %s", input.Quantity, asset.Name),
	}

	// Event append and ledger debit succeed or fail together; there is no
	// window in which the two subsystems can diverge.
	if err := s.EventRepo.AppendWithLedger(ctx, asset.ID, event, entry); err != nil {
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}

	return &RecordResult{Asset: asset, Position: position.ApplyPurchase(event), Ledger: entry}, nil
}

// RecordRevaluation appends a market price observation, with any per-unit
// dividend paid since the previous one. The asset must already hold units.
func (s *InvestmentService) RecordRevaluation(ctx context.Context, input RecordRevaluationInput) (*RecordResult, error) {
	if err := validateIdentity(input.AssetName, input.AssetType, input.Date); err != nil {
		return nil, err
	}
	if input.UnitPrice.IsNegative() {
		return nil, domain.NewValidationError("revaluation unit price must not be negative")
	}
	if input.DividendPerUnit.IsNegative() {
		return nil, domain.NewValidationError("dividend per unit must not be negative")
	}

	asset, err := s.AssetRepo.GetByNameAndType(ctx, input.AssetName, input.AssetType)
	if err != nil {
		return nil, err
	}

	position, err := s.currentPosition(ctx, asset.ID)
	if err != nil {
		return nil, err
	}
	if position.Events == 0 {
		return nil, domain.NewValidationError("cannot revalue an asset with no recorded purchases")
	}

	event := domain.Revaluation{
		Date:            domain.Day(input.Date),
		UnitPrice:       input.UnitPrice,
		DividendPerUnit: input.DividendPerUnit,
	}
	if err := s.EventRepo.Append(ctx, asset.ID, event); err != nil {
		return nil, fmt.Errorf("failed to record revaluation: %w", err)
	}

	return &RecordResult{Asset: asset, Position: position.ApplyRevaluation(event)}, nil
}

// RecordSale appends a disposal event and its cash credit in one atomic
// command. The sale quantity must not exceed the units currently held.
func (s *InvestmentService) RecordSale(ctx context.Context, input RecordSaleInput) (*RecordResult, error) {
	if err := validateIdentity(input.AssetName, input.AssetType, input.Date); err != nil {
		return nil, err
	}
	if input.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, domain.NewValidationError("sale quantity must be positive")
	}
	if input.UnitPrice.IsNegative() {
		return nil, domain.NewValidationError("sale unit price must not be negative")
	}

	asset, err := s.AssetRepo.GetByNameAndType(ctx, input.AssetName, input.AssetType)
	if err != nil {
		return nil, err
	}

	position, err := s.currentPosition(ctx, asset.ID)
	if err != nil {
		return nil, err
	}
	if input.Quantity.GreaterThan(position.Quantity) {
		return nil, domain.NewValidationError(fmt.Sprintf(
			"cannot sell %s units of %s: only %s held", input.Quantity, asset.Name, position.Quantity))
	}

	event := domain.Sale{
		Date:      domain.Day(input.Date),
		Quantity:  input.Quantity,
		UnitPrice: input.UnitPrice,
	}
	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		AssetID:     asset.ID,
		Date:        event.Date,
		Direction:   domain.LedgerCredit,
		Amount:      input.Quantity.Mul(input.UnitPrice),
		Description: fmt.Sprintf("Sale of %s %s", input.Quantity, asset.Name),
	}

	if err := s.EventRepo.AppendWithLedger(ctx, asset.ID, event, entry); err != nil {
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	return &RecordResult{Asset: asset, Position: position.ApplySale(event), Ledger: entry}, nil
}

// GetPosition replays an asset's event log into its current position
func (s *InvestmentService) GetPosition(ctx context.Context, assetID uuid.UUID) (*RecordResult, error) {
	asset, err := s.AssetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	position, err := s.currentPosition(ctx, asset.ID)
	if err != nil {
		return nil, err
	}

	return &RecordResult{Asset: asset, Position: position}, nil
}

// findOrCreateAsset resolves the asset identified by (name, type), creating
// it on first use
func (s *InvestmentService) findOrCreateAsset(ctx context.Context, name, assetType string) (*domain.Asset, error) {
	asset, err := s.AssetRepo.GetByNameAndType(ctx, name, assetType)
	if err == nil {
		return asset, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	asset = &domain.Asset{
		ID:   uuid.New(),
		Name: name,
		Type: assetType,
	}
	if err := asset.Validate(); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if err := s.AssetRepo.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	return asset, nil
}

// currentPosition replays the stored log for one asset
func (s *InvestmentService) currentPosition(ctx context.Context, assetID uuid.UUID) (domain.Position, error) {
	events, err := s.EventRepo.ListByAsset(ctx, assetID)
	if err != nil {
		return domain.Position{}, fmt.Errorf("failed to load events for asset %s: %w", assetID, err)
	}
	return domain.ReplayPosition(events), nil
}

// validateIdentity checks the fields every event shares
func validateIdentity(name, assetType string, date time.Time) error {
	if name == "" {
		return domain.NewValidationError("asset name cannot be empty")
	}
	if assetType == "" {
		return domain.NewValidationError("asset type cannot be empty")
	}
	if date.IsZero() {
		return domain.NewValidationError("event date is required")
	}
	return nil
}
