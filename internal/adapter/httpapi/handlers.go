package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/investtrack-backend/internal/domain"
	"github.com/simaogato/investtrack-backend/internal/usecase/assettype"
	"github.com/simaogato/investtrack-backend/internal/usecase/importer"
	"github.com/simaogato/investtrack-backend/internal/usecase/investment"
)

// Monetary amounts travel as strings to avoid float rounding on the wire,
// same convention as the storage layer.

type recordEventRequest struct {
	AssetName       string `json:"asset_name"`
	AssetType       string `json:"asset_type"`
	Date            string `json:"date"`
	Quantity        string `json:"quantity,omitempty"`
	UnitPrice       string `json:"unit_price"`
	DividendPerUnit string `json:"dividend_per_unit,omitempty"`
}

type positionResponse struct {
	Quantity            string `json:"quantity"`
	TotalInvested       string `json:"total_invested"`
	AverageCost         string `json:"average_cost"`
	CurrentPrice        string `json:"current_price"`
	CurrentValue        string `json:"current_value"`
	CumulativeDividends string `json:"cumulative_dividends"`
	RealizedGain        string `json:"realized_gain"`
}

type ledgerEntryResponse struct {
	ID          string `json:"id"`
	AssetID     string `json:"asset_id"`
	Date        string `json:"date"`
	Direction   string `json:"direction"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type recordEventResponse struct {
	AssetID   string               `json:"asset_id"`
	AssetName string               `json:"asset_name"`
	AssetType string               `json:"asset_type"`
	Position  positionResponse     `json:"position"`
	Ledger    *ledgerEntryResponse `json:"ledger,omitempty"`
}

type assetPositionResponse struct {
	AssetID   string           `json:"asset_id"`
	AssetName string           `json:"asset_name"`
	AssetType string           `json:"asset_type"`
	Position  positionResponse `json:"position"`
}

type metricsResponse struct {
	TotalInvested    string `json:"total_invested"`
	TotalValue       string `json:"total_value"`
	TotalDividends   string `json:"total_dividends"`
	TotalReturn      string `json:"total_return"`
	ReturnPercentage string `json:"return_percentage"`
	DividendYield    string `json:"dividend_yield"`
}

type snapshotResponse struct {
	Date           string `json:"date"`
	TotalInvested  string `json:"total_invested"`
	TotalValue     string `json:"total_value"`
	TotalDividends string `json:"total_dividends"`
}

type skippedEventResponse struct {
	AssetID string `json:"asset_id"`
	Reason  string `json:"reason"`
}

type evolutionResponse struct {
	Snapshots []snapshotResponse     `json:"snapshots"`
	Skipped   []skippedEventResponse `json:"skipped,omitempty"`
}

type investmentTypeResponse struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type createTypeRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRecordPurchase(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeEventRequest(w, r)
	if !ok {
		return
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	quantity, err := parseAmountField(req.Quantity, "quantity")
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	unitPrice, err := parseAmountField(req.UnitPrice, "unit_price")
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	result, err := s.investments.RecordPurchase(r.Context(), investment.RecordPurchaseInput{
		AssetName: req.AssetName,
		AssetType: req.AssetType,
		Date:      date,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRecordEventResponse(result))
}

func (s *Server) handleRecordRevaluation(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeEventRequest(w, r)
	if !ok {
		return
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	unitPrice, err := parseAmountField(req.UnitPrice, "unit_price")
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	dividend, err := parseAmountField(req.DividendPerUnit, "dividend_per_unit")
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	result, err := s.investments.RecordRevaluation(r.Context(), investment.RecordRevaluationInput{
		AssetName:       req.AssetName,
		AssetType:       req.AssetType,
		Date:            date,
		UnitPrice:       unitPrice,
		DividendPerUnit: dividend,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRecordEventResponse(result))
}

func (s *Server) handleRecordSale(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeEventRequest(w, r)
	if !ok {
		return
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	quantity, err := parseAmountField(req.Quantity, "quantity")
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	unitPrice, err := parseAmountField(req.UnitPrice, "unit_price")
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	result, err := s.investments.RecordSale(r.Context(), investment.RecordSaleInput{
		AssetName: req.AssetName,
		AssetType: req.AssetType,
		Date:      date,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRecordEventResponse(result))
}

func (s *Server) handleAssetPosition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	result, err := s.investments.GetPosition(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, assetPositionResponse{
		AssetID:   result.Asset.ID.String(),
		AssetName: result.Asset.Name,
		AssetType: result.Asset.Type,
		Position:  toPositionResponse(result.Position),
	})
}

func (s *Server) handleListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := s.metrics.ListPositions(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp := make([]assetPositionResponse, 0, len(positions))
	for _, p := range positions {
		resp = append(resp, assetPositionResponse{
			AssetID:   p.Asset.ID.String(),
			AssetName: p.Asset.Name,
			AssetType: p.Asset.Type,
			Position:  toPositionResponse(p.Position),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePortfolioMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := s.metrics.PortfolioMetrics(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, metricsResponse{
		TotalInvested:    m.TotalInvested.String(),
		TotalValue:       m.TotalValue.String(),
		TotalDividends:   m.TotalDividends.String(),
		TotalReturn:      m.TotalReturn.String(),
		ReturnPercentage: m.ReturnPercentage.String(),
		DividendYield:    m.DividendYield.String(),
	})
}

func (s *Server) handlePortfolioEvolution(w http.ResponseWriter, r *http.Request) {
	series, err := s.snapshots.PortfolioEvolution(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp := evolutionResponse{Snapshots: make([]snapshotResponse, 0, len(series.Snapshots))}
	for _, snap := range series.Snapshots {
		resp.Snapshots = append(resp.Snapshots, snapshotResponse{
			Date:           snap.Date.Format(domain.DateLayout),
			TotalInvested:  snap.TotalInvested.String(),
			TotalValue:     snap.TotalValue.String(),
			TotalDividends: snap.TotalDividends.String(),
		})
	}
	for _, skipped := range series.Skipped {
		resp.Skipped = append(resp.Skipped, skippedEventResponse{
			AssetID: skipped.AssetID.String(),
			Reason:  skipped.Reason,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.types.List(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp := make([]investmentTypeResponse, 0, len(types))
	for _, t := range types {
		resp = append(resp, toTypeResponse(t))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateType(w http.ResponseWriter, r *http.Request) {
	var req createTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.types.Create(r.Context(), assettype.CreateTypeInput{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTypeResponse(created))
}

func (s *Server) handleDeleteType(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid type id")
		return
	}

	if err := s.types.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ledgerRepo.List(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp := make([]ledgerEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, toLedgerResponse(entry))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var payload importer.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.importer.Import(r.Context(), payload)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func decodeEventRequest(w http.ResponseWriter, r *http.Request) (recordEventRequest, bool) {
	var req recordEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return recordEventRequest{}, false
	}
	return req, true
}

// parseAmountField parses a decimal request field. An omitted field is zero.
func parseAmountField(value, field string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, domain.NewValidationError(fmt.Sprintf("invalid %s %q", field, value))
	}
	return d, nil
}

func toRecordEventResponse(result *investment.RecordResult) recordEventResponse {
	resp := recordEventResponse{
		AssetID:   result.Asset.ID.String(),
		AssetName: result.Asset.Name,
		AssetType: result.Asset.Type,
		Position:  toPositionResponse(result.Position),
	}
	if result.Ledger != nil {
		entry := toLedgerResponse(result.Ledger)
		resp.Ledger = &entry
	}
	return resp
}

func toPositionResponse(p domain.Position) positionResponse {
	return positionResponse{
		Quantity:            p.Quantity.String(),
		TotalInvested:       p.TotalInvested.String(),
		AverageCost:         p.AverageCost.String(),
		CurrentPrice:        p.CurrentPrice.String(),
		CurrentValue:        p.CurrentValue.String(),
		CumulativeDividends: p.CumulativeDividends.String(),
		RealizedGain:        p.RealizedGain.String(),
	}
}

func toLedgerResponse(entry *domain.LedgerEntry) ledgerEntryResponse {
	return ledgerEntryResponse{
		ID:          entry.ID.String(),
		AssetID:     entry.AssetID.String(),
		Date:        entry.Date.Format(domain.DateLayout),
		Direction:   string(entry.Direction),
		Amount:      entry.Amount.String(),
		Description: entry.Description,
	}
}

func toTypeResponse(t *domain.InvestmentType) investmentTypeResponse {
	return investmentTypeResponse{
		ID:    t.ID.String(),
		Slug:  t.Slug,
		Name:  t.Name,
		Color: t.Color,
	}
}

// writeDomainError maps use case errors onto HTTP status codes
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.log.Error().Err(err).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
