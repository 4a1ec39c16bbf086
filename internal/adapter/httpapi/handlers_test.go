package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/investtrack-backend/internal/domain"
	"github.com/simaogato/investtrack-backend/internal/usecase/assettype"
	"github.com/simaogato/investtrack-backend/internal/usecase/importer"
	"github.com/simaogato/investtrack-backend/internal/usecase/investment"
	"github.com/simaogato/investtrack-backend/internal/usecase/metrics"
	"github.com/simaogato/investtrack-backend/internal/usecase/snapshot"
)

const testToken = "test-token"

func day(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(domain.DateLayout, s)
	require.NoError(t, err)
	return parsed
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
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

// MockInvestmentTypeRepository is a mock implementation of InvestmentTypeRepository for testing
type MockInvestmentTypeRepository struct {
	mock.Mock
}

func (m *MockInvestmentTypeRepository) GetBySlug(ctx context.Context, slug string) (*domain.InvestmentType, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvestmentType), args.Error(1)
}

func (m *MockInvestmentTypeRepository) Create(ctx context.Context, investmentType *domain.InvestmentType) error {
	args := m.Called(ctx, investmentType)
	return args.Error(0)
}

func (m *MockInvestmentTypeRepository) List(ctx context.Context) ([]*domain.InvestmentType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.InvestmentType), args.Error(1)
}

func (m *MockInvestmentTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvestmentTypeRepository) InUse(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository for testing
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) List(ctx context.Context) ([]*domain.LedgerEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListByAsset(ctx context.Context, assetID uuid.UUID) ([]*domain.LedgerEntry, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LedgerEntry), args.Error(1)
}

type testRepos struct {
	assets *MockAssetRepository
	events *MockEventRepository
	types  *MockInvestmentTypeRepository
	ledger *MockLedgerRepository
}

func newTestServer(t *testing.T) (*Server, *testRepos) {
	t.Helper()

	repos := &testRepos{
		assets: new(MockAssetRepository),
		events: new(MockEventRepository),
		types:  new(MockInvestmentTypeRepository),
		ledger: new(MockLedgerRepository),
	}

	server := New(Config{
		Port:              8080,
		APIToken:          testToken,
		Log:               zerolog.Nop(),
		InvestmentService: investment.NewInvestmentService(repos.assets, repos.events, repos.types),
		SnapshotService:   snapshot.NewService(repos.events),
		MetricsService:    metrics.NewService(repos.assets, repos.events),
		TypeService:       assettype.NewTypeService(repos.types),
		ImporterService:   importer.NewService(repos.assets, repos.events, zerolog.Nop()),
		LedgerRepo:        repos.ledger,
	})

	return server, repos
}

func doRequest(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint_NoTokenRequired(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestAPIRoutes_RejectMissingToken(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/metrics", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRecordPurchase_CreatesAsset(t *testing.T) {
	// Setup
	server, repos := newTestServer(t)

	repos.types.On("GetBySlug", mock.Anything, "stocks").
		Return(&domain.InvestmentType{ID: uuid.New(), Slug: "stocks", Name: "Stocks", Color: "#ef4444"}, nil)
	repos.assets.On("GetByNameAndType", mock.Anything, "ACME", "stocks").
		Return(nil, fmt.Errorf("asset not found: %w", domain.ErrNotFound))
	repos.assets.On("Create", mock.Anything, mock.AnythingOfType("*domain.Asset")).Return(nil)
	repos.events.On("ListByAsset", mock.Anything, mock.AnythingOfType("uuid.UUID")).
		Return([]domain.Event{}, nil)
	repos.events.On("AppendWithLedger", mock.Anything, mock.AnythingOfType("uuid.UUID"),
		mock.AnythingOfType("domain.Purchase"), mock.AnythingOfType("*domain.LedgerEntry")).Return(nil)

	// Execute
	rec := doRequest(t, server, http.MethodPost, "/api/investments/purchases", recordEventRequest{
		AssetName: "ACME",
		AssetType: "stocks",
		Date:      "2024-01-10",
		Quantity:  "10",
		UnitPrice: "10",
	})

	// Assert
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp recordEventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ACME", resp.AssetName)
	assert.Equal(t, "10", resp.Position.Quantity)
	assert.Equal(t, "100", resp.Position.TotalInvested)
	assert.Equal(t, "10", resp.Position.CurrentPrice)
	require.NotNil(t, resp.Ledger)
	assert.Equal(t, string(domain.LedgerDebit), resp.Ledger.Direction)
	assert.Equal(t, "100", resp.Ledger.Amount)
	repos.events.AssertExpectations(t)
}

func TestRecordPurchase_InvalidDate(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/api/investments/purchases", recordEventRequest{
		AssetName: "ACME",
		AssetType: "stocks",
		Date:      "10/01/2024",
		Quantity:  "10",
		UnitPrice: "10",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid date")
}

func TestRecordRevaluation_UnknownAsset(t *testing.T) {
	server, repos := newTestServer(t)

	repos.assets.On("GetByNameAndType", mock.Anything, "GHOST", "stocks").
		Return(nil, fmt.Errorf("asset not found: %w", domain.ErrNotFound))

	rec := doRequest(t, server, http.MethodPost, "/api/investments/revaluations", recordEventRequest{
		AssetName: "GHOST",
		AssetType: "stocks",
		Date:      "2024-03-01",
		UnitPrice: "13",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordSale_OversellRejected(t *testing.T) {
	// Setup
	server, repos := newTestServer(t)
	assetID := uuid.New()

	repos.assets.On("GetByNameAndType", mock.Anything, "ACME", "stocks").
		Return(&domain.Asset{ID: assetID, Name: "ACME", Type: "stocks"}, nil)
	repos.events.On("ListByAsset", mock.Anything, assetID).
		Return([]domain.Event{
			domain.Purchase{Date: domain.Day(day(t, "2024-01-10")), Quantity: dec(t, "5"), UnitPrice: dec(t, "10")},
		}, nil)

	// Execute
	rec := doRequest(t, server, http.MethodPost, "/api/investments/sales", recordEventRequest{
		AssetName: "ACME",
		AssetType: "stocks",
		Date:      "2024-02-01",
		Quantity:  "8",
		UnitPrice: "12",
	})

	// Assert
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "only 5 held")
	repos.events.AssertNotCalled(t, "AppendWithLedger", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAssetPosition(t *testing.T) {
	server, repos := newTestServer(t)
	assetID := uuid.New()

	repos.assets.On("GetByID", mock.Anything, assetID).
		Return(&domain.Asset{ID: assetID, Name: "ACME", Type: "stocks"}, nil)
	repos.events.On("ListByAsset", mock.Anything, assetID).
		Return([]domain.Event{
			domain.Purchase{Date: domain.Day(day(t, "2024-01-10")), Quantity: dec(t, "10"), UnitPrice: dec(t, "10")},
		}, nil)

	rec := doRequest(t, server, http.MethodGet, "/api/assets/"+assetID.String()+"/position", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp assetPositionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, assetID.String(), resp.AssetID)
	assert.Equal(t, "10", resp.Position.Quantity)
	assert.Equal(t, "100", resp.Position.CurrentValue)
}

func TestPortfolioMetrics(t *testing.T) {
	// Setup
	server, repos := newTestServer(t)
	assetID := uuid.New()

	repos.assets.On("List", mock.Anything).
		Return([]*domain.Asset{{ID: assetID, Name: "ACME", Type: "stocks"}}, nil)
	repos.events.On("ListByAsset", mock.Anything, assetID).
		Return([]domain.Event{
			domain.Purchase{Date: domain.Day(day(t, "2024-01-10")), Quantity: dec(t, "10"), UnitPrice: dec(t, "10")},
			domain.Revaluation{Date: domain.Day(day(t, "2024-03-01")), UnitPrice: dec(t, "13"), DividendPerUnit: dec(t, "0.5")},
		}, nil)

	// Execute
	rec := doRequest(t, server, http.MethodGet, "/api/portfolio/metrics", nil)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)

	var resp metricsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "100", resp.TotalInvested)
	assert.Equal(t, "130", resp.TotalValue)
	assert.Equal(t, "5", resp.TotalDividends)
	assert.Equal(t, "30", resp.TotalReturn)
	assert.Equal(t, "30", resp.ReturnPercentage)
	assert.Equal(t, "5", resp.DividendYield)
}

func TestPortfolioEvolution(t *testing.T) {
	// Setup
	server, repos := newTestServer(t)
	assetID := uuid.New()

	repos.events.On("ListAll", mock.Anything).
		Return([]domain.AssetEvents{{
			AssetID: assetID,
			Events: []domain.Event{
				domain.Purchase{Date: domain.Day(day(t, "2024-01-10")), Quantity: dec(t, "10"), UnitPrice: dec(t, "10")},
				domain.Revaluation{Date: domain.Day(day(t, "2024-03-01")), UnitPrice: dec(t, "13"), DividendPerUnit: dec(t, "0.5")},
			},
		}}, nil)

	// Execute
	rec := doRequest(t, server, http.MethodGet, "/api/portfolio/evolution", nil)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)

	var resp evolutionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Snapshots, 2)
	assert.Equal(t, "2024-01-10", resp.Snapshots[0].Date)
	assert.Equal(t, "100", resp.Snapshots[0].TotalValue)
	assert.Equal(t, "2024-03-01", resp.Snapshots[1].Date)
	assert.Equal(t, "130", resp.Snapshots[1].TotalValue)
	assert.Equal(t, "5", resp.Snapshots[1].TotalDividends)
}

func TestCreateType(t *testing.T) {
	server, repos := newTestServer(t)

	repos.types.On("GetBySlug", mock.Anything, "private-equity").
		Return(nil, fmt.Errorf("investment type not found: %w", domain.ErrNotFound))
	repos.types.On("Create", mock.Anything, mock.AnythingOfType("*domain.InvestmentType")).Return(nil)

	rec := doRequest(t, server, http.MethodPost, "/api/types/", createTypeRequest{
		Name:  "Private Equity",
		Color: "#123456",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp investmentTypeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "private-equity", resp.Slug)
	assert.Equal(t, "Private Equity", resp.Name)
}

func TestDeleteType_InvalidID(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodDelete, "/api/types/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid type id")
}

func TestListLedger(t *testing.T) {
	server, repos := newTestServer(t)
	assetID := uuid.New()

	repos.ledger.On("List", mock.Anything).
		Return([]*domain.LedgerEntry{{
			ID:          uuid.New(),
			AssetID:     assetID,
			Date:        domain.Day(day(t, "2024-01-10")),
			Direction:   domain.LedgerDebit,
			Amount:      dec(t, "100"),
			Description: "Purchase of 10 ACME",
		}}, nil)

	rec := doRequest(t, server, http.MethodGet, "/api/ledger", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []ledgerEntryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Purchase of 10 ACME", resp[0].Description)
	assert.Equal(t, string(domain.LedgerDebit), resp[0].Direction)
}

func TestImport_MalformedBody(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/import", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
