package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/investfolio-backend/internal/adapter/auth"
	"github.com/simaogato/investfolio-backend/internal/domain"
	"github.com/simaogato/investfolio-backend/internal/usecase/allocator"
	"github.com/simaogato/investfolio-backend/internal/usecase/investment"
)

// Error kinds that do not come from the domain
const (
	kindUnauthenticated = "UNAUTHENTICATED"
	kindRateLimited     = "RATE_LIMITED"
	kindBadRequest      = "BAD_REQUEST"
	kindInternal        = "INTERNAL"
)

type tradeRequest struct {
	ProductID int64           `json:"productId"`
	Units     decimal.Decimal `json:"units"`
}

type holdingView struct {
	HoldingID        string `json:"holdingId"`
	ProductID        int64  `json:"productId"`
	ProductName      string `json:"productName"`
	Type             string `json:"type"`
	RiskLevel        string `json:"riskLevel"`
	UnitsOwned       string `json:"unitsOwned"`
	AvgPurchasePrice string `json:"avgPurchasePrice"`
	CurrentUnitValue string `json:"currentUnitValue"`
	InvestedValue    string `json:"investedValue"`
	CurrentValue     string `json:"currentValue"`
	AbsoluteReturn   string `json:"absoluteReturn"`
	PercentageReturn string `json:"percentageReturn"`
}

type portfolioResponse struct {
	Holdings           []holdingView `json:"holdings"`
	TotalInvestedValue string        `json:"totalInvestedValue"`
	TotalCurrentValue  string        `json:"totalCurrentValue"`
}

type transactionView struct {
	ID                 string    `json:"id"`
	ProductID          int64     `json:"productId"`
	ProductName        string    `json:"productName"`
	Type               string    `json:"type"`
	Units              string    `json:"units"`
	UnitValueAtTxn     string    `json:"unitValueAtTxn"`
	Amount             string    `json:"amount"`
	FormattedAmount    string    `json:"formattedAmount"`
	Timestamp          time.Time `json:"timestamp"`
	FormattedTimestamp string    `json:"formattedTimestamp"`
}

type transactionsResponse struct {
	Transactions []transactionView `json:"transactions"`
	TotalCount   int               `json:"totalCount"`
}

type summaryResponse struct {
	TotalInvestedValue    string `json:"totalInvestedValue"`
	TotalCurrentValue     string `json:"totalCurrentValue"`
	TotalAbsoluteReturn   string `json:"totalAbsoluteReturn"`
	TotalPercentageReturn string `json:"totalPercentageReturn"`
	HoldingCount          int    `json:"holdingCount"`
}

type sliceView struct {
	Key        string `json:"key"`
	Value      string `json:"value"`
	Percentage string `json:"percentage"`
}

type allocationResponse struct {
	TotalCurrentValue string      `json:"totalCurrentValue"`
	ByType            []sliceView `json:"byType"`
	ByRiskLevel       []sliceView `json:"byRiskLevel"`
}

type gainView struct {
	HoldingID        string `json:"holdingId"`
	ProductID        int64  `json:"productId"`
	ProductName      string `json:"productName"`
	InvestedValue    string `json:"investedValue"`
	CurrentValue     string `json:"currentValue"`
	AbsoluteReturn   string `json:"absoluteReturn"`
	PercentageReturn string `json:"percentageReturn"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Minimum   string `json:"minimum,omitempty"`
	Available string `json:"available,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	portfolio, err := s.investment.GetPortfolio(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	holdings := make([]holdingView, 0, len(portfolio.Holdings))
	for i := range portfolio.Holdings {
		holdings = append(holdings, toHoldingView(&portfolio.Holdings[i]))
	}

	s.writeJSON(w, http.StatusOK, portfolioResponse{
		Holdings:           holdings,
		TotalInvestedValue: money(portfolio.TotalInvestedValue),
		TotalCurrentValue:  money(portfolio.TotalCurrentValue),
	})
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, kindBadRequest, "Invalid request body")
		return
	}

	view, err := s.investment.Buy(r.Context(), userID, req.ProductID, req.Units)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toHoldingView(view))
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, kindBadRequest, "Invalid request body")
		return
	}

	view, err := s.investment.Sell(r.Context(), userID, req.ProductID, req.Units)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toHoldingView(view))
}

func (s *Server) handleGetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, kindBadRequest, "limit must be an integer")
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, kindBadRequest, "offset must be an integer")
		return
	}

	page, err := s.investment.GetTransactionHistory(r.Context(), userID, limit, offset)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	txns := make([]transactionView, 0, len(page.Transactions))
	for _, t := range page.Transactions {
		txns = append(txns, toTransactionView(t))
	}

	s.writeJSON(w, http.StatusOK, transactionsResponse{
		Transactions: txns,
		TotalCount:   page.TotalCount,
	})
}

func (s *Server) handleGetHolding(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	holdingID, err := uuid.Parse(chi.URLParam(r, "holdingId"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, kindBadRequest, "invalid holding id")
		return
	}

	view, err := s.investment.GetHolding(r.Context(), userID, holdingID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toHoldingView(view))
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	summary, err := s.dashboard.GetSummary(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, summaryResponse{
		TotalInvestedValue:    money(summary.TotalInvestedValue),
		TotalCurrentValue:     money(summary.TotalCurrentValue),
		TotalAbsoluteReturn:   money(summary.TotalAbsoluteReturn),
		TotalPercentageReturn: money(summary.TotalPercentageReturn),
		HoldingCount:          summary.HoldingCount,
	})
}

func (s *Server) handleGetAllocation(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	allocation, err := s.dashboard.GetAllocation(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, allocationResponse{
		TotalCurrentValue: money(allocation.TotalCurrentValue),
		ByType:            toSliceViews(allocation.ByType),
		ByRiskLevel:       toSliceViews(allocation.ByRiskLevel),
	})
}

func (s *Server) handleGetGains(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	gains, err := s.dashboard.GetGains(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	out := make([]gainView, 0, len(gains))
	for _, g := range gains {
		out = append(out, gainView{
			HoldingID:        g.HoldingID.String(),
			ProductID:        g.ProductID,
			ProductName:      g.ProductName,
			InvestedValue:    money(g.InvestedValue),
			CurrentValue:     money(g.CurrentValue),
			AbsoluteReturn:   money(g.AbsoluteReturn),
			PercentageReturn: money(g.PercentageReturn),
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"gains": out})
}

// Helper methods

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, kind, message string) {
	s.writeJSON(w, status, errorResponse{Error: message, Kind: kind})
}

// writeDomainError maps an engine error to its HTTP status and body
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	de, ok := domain.AsError(err)
	if !ok {
		s.log.Error().Err(err).Msg("Unexpected error")
		s.writeError(w, http.StatusInternalServerError, kindInternal, "internal error")
		return
	}

	resp := errorResponse{Error: de.Error(), Kind: string(de.Kind)}
	if de.Minimum.Valid {
		resp.Minimum = de.Minimum.Decimal.String()
	}
	if de.Available.Valid {
		resp.Available = de.Available.Decimal.String()
	}

	var status int
	switch de.Kind {
	case domain.KindInvalidInvestment, domain.KindMinimumInvestmentNotMet:
		status = http.StatusBadRequest
	case domain.KindInsufficientUnits:
		status = http.StatusConflict
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindStorageFailure:
		status = http.StatusInternalServerError
		if de.Retryable() {
			status = http.StatusServiceUnavailable
		}
		// Storage details stay in the log
		resp.Error = "storage failure"
	default:
		status = http.StatusInternalServerError
	}

	s.writeJSON(w, status, resp)
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toHoldingView(v *domain.Valuation) holdingView {
	return holdingView{
		HoldingID:        v.HoldingID.String(),
		ProductID:        v.ProductID,
		ProductName:      v.ProductName,
		Type:             string(v.Type),
		RiskLevel:        string(v.RiskLevel),
		UnitsOwned:       v.UnitsOwned.String(),
		AvgPurchasePrice: v.AvgPurchasePrice.String(),
		CurrentUnitValue: v.CurrentUnitValue.String(),
		InvestedValue:    money(v.InvestedValue),
		CurrentValue:     money(v.CurrentValue),
		AbsoluteReturn:   money(v.AbsoluteReturn),
		PercentageReturn: money(v.PercentageReturn),
	}
}

func toTransactionView(t investment.TransactionRecord) transactionView {
	return transactionView{
		ID:                 t.ID.String(),
		ProductID:          t.ProductID,
		ProductName:        t.ProductName,
		Type:               string(t.Type),
		Units:              t.Units.String(),
		UnitValueAtTxn:     t.UnitValueAtTxn.String(),
		Amount:             t.Amount.String(),
		FormattedAmount:    t.FormattedAmount,
		Timestamp:          t.Timestamp.UTC(),
		FormattedTimestamp: t.FormattedTimestamp,
	}
}

func toSliceViews(slices []allocator.Slice) []sliceView {
	out := make([]sliceView, 0, len(slices))
	for _, sl := range slices {
		out = append(out, sliceView{
			Key:        sl.Key,
			Value:      money(sl.Value),
			Percentage: money(sl.Percentage),
		})
	}
	return out
}
