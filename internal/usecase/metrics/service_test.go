package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/investtrack-backend/internal/domain"
)

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCompute_AcmeScenario(t *testing.T) {
	// Setup: the position after 2 purchases and a revaluation with dividends
	position := domain.ReplayPosition([]domain.Event{
		domain.Purchase{Date: day("2024-01-10"), Quantity: dec("10"), UnitPrice: dec("10.00")},
		domain.Purchase{Date: day("2024-02-10"), Quantity: dec("10"), UnitPrice: dec("12.00")},
		domain.Revaluation{Date: day("2024-03-01"), UnitPrice: dec("13.00"), DividendPerUnit: dec("0.50")},
	})

	// Execute
	m := Compute([]domain.Position{position})

	// Assert
	assert.True(t, m.TotalInvested.Equal(dec("220")))
	assert.True(t, m.TotalValue.Equal(dec("260")))
	assert.True(t, m.TotalDividends.Equal(dec("10")))
	assert.True(t, m.TotalReturn.Equal(dec("40")))

	returnPct, _ := m.ReturnPercentage.Float64()
	assert.InDelta(t, 18.18, returnPct, 0.01)

	dividendYield, _ := m.DividendYield.Float64()
	assert.InDelta(t, 4.55, dividendYield, 0.01)
}

func TestCompute_EmptyPortfolioIsAllZero(t *testing.T) {
	m := Compute(nil)

	assert.True(t, m.TotalInvested.IsZero())
	assert.True(t, m.TotalValue.IsZero())
	assert.True(t, m.TotalDividends.IsZero())
	assert.True(t, m.TotalReturn.IsZero())
	assert.True(t, m.ReturnPercentage.IsZero())
	assert.True(t, m.DividendYield.IsZero())
}

func TestCompute_ZeroInvestedYieldsZeroRatios(t *testing.T) {
	// A fully sold-out position has value but no remaining basis
	position := domain.ReplayPosition([]domain.Event{
		domain.Purchase{Date: day("2024-01-10"), Quantity: dec("5"), UnitPrice: dec("10")},
		domain.Sale{Date: day("2024-02-01"), Quantity: dec("5"), UnitPrice: dec("12")},
	})

	m := Compute([]domain.Position{position})

	assert.True(t, m.TotalInvested.IsZero())
	assert.True(t, m.ReturnPercentage.IsZero()) // never NaN or infinity
	assert.True(t, m.DividendYield.IsZero())
}

func TestCompute_SumsAcrossPositions(t *testing.T) {
	a := domain.ReplayPosition([]domain.Event{
		domain.Purchase{Date: day("2024-01-10"), Quantity: dec("10"), UnitPrice: dec("10")},
	})
	b := domain.ReplayPosition([]domain.Event{
		domain.Purchase{Date: day("2024-01-12"), Quantity: dec("2"), UnitPrice: dec("50")},
		domain.Revaluation{Date: day("2024-02-01"), UnitPrice: dec("60"), DividendPerUnit: dec("2")},
	})

	m := Compute([]domain.Position{a, b})

	assert.True(t, m.TotalInvested.Equal(dec("200")))
	assert.True(t, m.TotalValue.Equal(dec("220"))) // 100 + 120
	assert.True(t, m.TotalDividends.Equal(dec("4")))
	assert.True(t, m.TotalReturn.Equal(dec("20")))
}

// MockAssetRepository is a mock implementation of AssetRepository for testing
type MockAssetRepository struct {
	mock.Mock
}

func (m *MockAssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

func (m *MockAssetRepository) GetByNameAndType(ctx context.Context, name, assetType string) (*domain.Asset, error) {
	args := m.Called(ctx, name, assetType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

func (m *MockAssetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockAssetRepository) List(ctx context.Context) ([]*domain.Asset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Asset), args.Error(1)
}

// MockEventRepository is a mock implementation of EventRepository for testing
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Append(ctx context.Context, assetID uuid.UUID, event domain.Event) error {
	args := m.Called(ctx, assetID, event)
	return args.Error(0)
}

func (m *MockEventRepository) AppendWithLedger(ctx context.Context, assetID uuid.UUID, event domain.Event, entry *domain.LedgerEntry) error {
	args := m.Called(ctx, assetID, event, entry)
	return args.Error(0)
}

func (m *MockEventRepository) ListByAsset(ctx context.Context, assetID uuid.UUID) ([]domain.Event, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *MockEventRepository) ListAll(ctx context.Context) ([]domain.AssetEvents, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AssetEvents), args.Error(1)
}

func TestPortfolioMetrics_ReplaysEveryAssetLog(t *testing.T) {
	ctx := context.Background()
	mockAssetRepo := new(MockAssetRepository)
	mockEventRepo := new(MockEventRepository)
	service := NewService(mockAssetRepo, mockEventRepo)

	assetA := &domain.Asset{ID: uuid.New(), Name: "ACME", Type: "stocks"}
	assetB := &domain.Asset{ID: uuid.New(), Name: "Gov Bond", Type: "fixed-income"}
	mockAssetRepo.On("List", ctx).Return([]*domain.Asset{assetA, assetB}, nil)

	mockEventRepo.On("ListByAsset", ctx, assetA.ID).Return([]domain.Event{
		domain.Purchase{Date: day("2024-01-10"), Quantity: dec("10"), UnitPrice: dec("10")},
	}, nil)
	mockEventRepo.On("ListByAsset", ctx, assetB.ID).Return([]domain.Event{
		domain.Purchase{Date: day("2024-01-15"), Quantity: dec("1"), UnitPrice: dec("500")},
	}, nil)

	m, err := service.PortfolioMetrics(ctx)

	require.NoError(t, err)
	assert.True(t, m.TotalInvested.Equal(dec("600")))
	assert.True(t, m.TotalValue.Equal(dec("600")))
	mockAssetRepo.AssertExpectations(t)
	mockEventRepo.AssertExpectations(t)
}

func TestListPositions_AssetRepositoryFailure(t *testing.T) {
	ctx := context.Background()
	mockAssetRepo := new(MockAssetRepository)
	mockEventRepo := new(MockEventRepository)
	service := NewService(mockAssetRepo, mockEventRepo)

	mockAssetRepo.On("List", ctx).Return(nil, assert.AnError)

	_, err := service.ListPositions(ctx)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list assets")
	mockEventRepo.AssertNotCalled(t, "ListByAsset")
}
