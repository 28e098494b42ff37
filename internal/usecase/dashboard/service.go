package dashboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/investfolio-backend/internal/domain"
	"github.com/simaogato/investfolio-backend/internal/usecase/allocator"
	"github.com/simaogato/investfolio-backend/internal/usecase/investment"
)

// PortfolioReader loads a user's valued holdings
type PortfolioReader interface {
	GetPortfolio(ctx context.Context, userID uuid.UUID) (*investment.Portfolio, error)
}

// SummaryResult represents the portfolio totals
type SummaryResult struct {
	TotalInvestedValue    decimal.Decimal
	TotalCurrentValue     decimal.Decimal
	TotalAbsoluteReturn   decimal.Decimal
	TotalPercentageReturn decimal.Decimal
	HoldingCount          int
}

// AllocationResult represents the share of current value by product type and by risk level
type AllocationResult struct {
	TotalCurrentValue decimal.Decimal
	ByType            []allocator.Slice
	ByRiskLevel       []allocator.Slice
}

// Gain is one holding's return
type Gain struct {
	HoldingID        uuid.UUID
	ProductID        int64
	ProductName      string
	InvestedValue    decimal.Decimal
	CurrentValue     decimal.Decimal
	AbsoluteReturn   decimal.Decimal
	PercentageReturn decimal.Decimal
}

// DashboardService handles dashboard-related operations
type DashboardService struct {
	Portfolios PortfolioReader
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(portfolios PortfolioReader) *DashboardService {
	return &DashboardService{Portfolios: portfolios}
}

// GetSummary calculates the portfolio totals
// Logic:
//   - Invested / Current: sums of the per-holding rounded values
//   - Absolute return: Current - Invested
//   - Percentage return: round2(Absolute * 100 / Invested), 0 when nothing is invested
func (s *DashboardService) GetSummary(ctx context.Context, userID uuid.UUID) (*SummaryResult, error) {
	portfolio, err := s.Portfolios.GetPortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}

	absolute := portfolio.TotalCurrentValue.Sub(portfolio.TotalInvestedValue)

	return &SummaryResult{
		TotalInvestedValue:    portfolio.TotalInvestedValue,
		TotalCurrentValue:     portfolio.TotalCurrentValue,
		TotalAbsoluteReturn:   absolute,
		TotalPercentageReturn: domain.PercentageOf(absolute, portfolio.TotalInvestedValue),
		HoldingCount:          len(portfolio.Holdings),
	}, nil
}

// GetAllocation breaks the current value down by product type and by risk level
// Each breakdown's percentages sum to exactly 100.00 unless the portfolio is empty.
func (s *DashboardService) GetAllocation(ctx context.Context, userID uuid.UUID) (*AllocationResult, error) {
	portfolio, err := s.Portfolios.GetPortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}

	byType := make(map[string]decimal.Decimal)
	byRisk := make(map[string]decimal.Decimal)
	for _, h := range portfolio.Holdings {
		byType[string(h.Type)] = byType[string(h.Type)].Add(h.CurrentValue)
		byRisk[string(h.RiskLevel)] = byRisk[string(h.RiskLevel)].Add(h.CurrentValue)
	}

	typeSlices, err := allocator.CalculateAllocation(byType)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate by type: %w", err)
	}
	riskSlices, err := allocator.CalculateAllocation(byRisk)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate by risk level: %w", err)
	}

	return &AllocationResult{
		TotalCurrentValue: portfolio.TotalCurrentValue,
		ByType:            typeSlices,
		ByRiskLevel:       riskSlices,
	}, nil
}

// GetGains lists per-holding returns, best absolute return first (ties by product ID)
func (s *DashboardService) GetGains(ctx context.Context, userID uuid.UUID) ([]Gain, error) {
	portfolio, err := s.Portfolios.GetPortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}

	gains := make([]Gain, 0, len(portfolio.Holdings))
	for _, h := range portfolio.Holdings {
		gains = append(gains, Gain{
			HoldingID:        h.HoldingID,
			ProductID:        h.ProductID,
			ProductName:      h.ProductName,
			InvestedValue:    h.InvestedValue,
			CurrentValue:     h.CurrentValue,
			AbsoluteReturn:   h.AbsoluteReturn,
			PercentageReturn: h.PercentageReturn,
		})
	}

	sort.SliceStable(gains, func(i, j int) bool {
		if !gains[i].AbsoluteReturn.Equal(gains[j].AbsoluteReturn) {
			return gains[i].AbsoluteReturn.GreaterThan(gains[j].AbsoluteReturn)
		}
		return gains[i].ProductID < gains[j].ProductID
	})

	return gains, nil
}
