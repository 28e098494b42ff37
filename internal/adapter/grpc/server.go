package grpc

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/simaogato/investfolio-backend/internal/adapter/auth"
	"github.com/simaogato/investfolio-backend/internal/domain"
	"github.com/simaogato/investfolio-backend/internal/usecase/allocator"
	"github.com/simaogato/investfolio-backend/internal/usecase/dashboard"
	"github.com/simaogato/investfolio-backend/internal/usecase/investment"
)

// Server implements the PortfolioService gRPC server
type Server struct {
	UnimplementedPortfolioServiceServer

	InvestmentService *investment.InvestmentService
	DashboardService  *dashboard.DashboardService
}

// NewServer creates a new gRPC server instance
func NewServer(
	investmentService *investment.InvestmentService,
	dashboardService *dashboard.DashboardService,
) *Server {
	return &Server{
		InvestmentService: investmentService,
		DashboardService:  dashboardService,
	}
}

// GetPortfolio handles the GetPortfolio RPC
func (s *Server) GetPortfolio(ctx context.Context, _ *GetPortfolioRequest) (*GetPortfolioResponse, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	portfolio, err := s.InvestmentService.GetPortfolio(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}

	holdings := make([]*Holding, 0, len(portfolio.Holdings))
	for i := range portfolio.Holdings {
		holdings = append(holdings, toHolding(&portfolio.Holdings[i]))
	}

	return &GetPortfolioResponse{
		Holdings:           holdings,
		TotalInvestedValue: portfolio.TotalInvestedValue.StringFixed(2),
		TotalCurrentValue:  portfolio.TotalCurrentValue.StringFixed(2),
	}, nil
}

// BuyInvestment handles the BuyInvestment RPC
func (s *Server) BuyInvestment(ctx context.Context, req *BuyInvestmentRequest) (*BuyInvestmentResponse, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	units, err := parseUnits(req.Units)
	if err != nil {
		return nil, err
	}

	view, err := s.InvestmentService.Buy(ctx, userID, req.ProductId, units)
	if err != nil {
		return nil, mapError(err)
	}

	return &BuyInvestmentResponse{Holding: toHolding(view)}, nil
}

// SellInvestment handles the SellInvestment RPC
func (s *Server) SellInvestment(ctx context.Context, req *SellInvestmentRequest) (*SellInvestmentResponse, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	units, err := parseUnits(req.Units)
	if err != nil {
		return nil, err
	}

	view, err := s.InvestmentService.Sell(ctx, userID, req.ProductId, units)
	if err != nil {
		return nil, mapError(err)
	}

	return &SellInvestmentResponse{Holding: toHolding(view)}, nil
}

// ListTransactions handles the ListTransactions RPC
func (s *Server) ListTransactions(ctx context.Context, req *ListTransactionsRequest) (*ListTransactionsResponse, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.InvestmentService.GetTransactionHistory(ctx, userID, int(req.Limit), int(req.Offset))
	if err != nil {
		return nil, mapError(err)
	}

	txns := make([]*Transaction, 0, len(page.Transactions))
	for _, r := range page.Transactions {
		txns = append(txns, &Transaction{
			TransactionId:      r.ID.String(),
			ProductId:          r.ProductID,
			ProductName:        r.ProductName,
			Type:               string(r.Type),
			Units:              r.Units.String(),
			UnitValueAtTxn:     r.UnitValueAtTxn.String(),
			Amount:             r.Amount.String(),
			FormattedAmount:    r.FormattedAmount,
			Timestamp:          timestamppb.New(r.Timestamp),
			FormattedTimestamp: r.FormattedTimestamp,
		})
	}

	return &ListTransactionsResponse{
		Transactions: txns,
		TotalCount:   int64(page.TotalCount),
	}, nil
}

// GetHolding handles the GetHolding RPC
func (s *Server) GetHolding(ctx context.Context, req *GetHoldingRequest) (*GetHoldingResponse, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	holdingID, err := uuid.Parse(req.HoldingId)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid holding_id format: %v", err)
	}

	view, err := s.InvestmentService.GetHolding(ctx, userID, holdingID)
	if err != nil {
		return nil, mapError(err)
	}

	return &GetHoldingResponse{Holding: toHolding(view)}, nil
}

// GetSummary handles the GetSummary RPC
func (s *Server) GetSummary(ctx context.Context, _ *GetSummaryRequest) (*GetSummaryResponse, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := s.DashboardService.GetSummary(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}

	return &GetSummaryResponse{
		TotalInvestedValue:    summary.TotalInvestedValue.StringFixed(2),
		TotalCurrentValue:     summary.TotalCurrentValue.StringFixed(2),
		TotalAbsoluteReturn:   summary.TotalAbsoluteReturn.StringFixed(2),
		TotalPercentageReturn: summary.TotalPercentageReturn.StringFixed(2),
		HoldingCount:          int64(summary.HoldingCount),
	}, nil
}

// GetAllocation handles the GetAllocation RPC
func (s *Server) GetAllocation(ctx context.Context, _ *GetAllocationRequest) (*GetAllocationResponse, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	allocation, err := s.DashboardService.GetAllocation(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}

	return &GetAllocationResponse{
		TotalCurrentValue: allocation.TotalCurrentValue.StringFixed(2),
		ByType:            toSlices(allocation.ByType),
		ByRiskLevel:       toSlices(allocation.ByRiskLevel),
	}, nil
}

// GetGains handles the GetGains RPC
func (s *Server) GetGains(ctx context.Context, _ *GetGainsRequest) (*GetGainsResponse, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	gains, err := s.DashboardService.GetGains(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}

	out := make([]*Gain, 0, len(gains))
	for _, g := range gains {
		out = append(out, &Gain{
			HoldingId:        g.HoldingID.String(),
			ProductId:        g.ProductID,
			ProductName:      g.ProductName,
			InvestedValue:    g.InvestedValue.StringFixed(2),
			CurrentValue:     g.CurrentValue.StringFixed(2),
			AbsoluteReturn:   g.AbsoluteReturn.StringFixed(2),
			PercentageReturn: g.PercentageReturn.StringFixed(2),
		})
	}

	return &GetGainsResponse{Gains: out}, nil
}

func userFromContext(ctx context.Context) (uuid.UUID, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, status.Error(codes.Unauthenticated, "missing user")
	}
	return userID, nil
}

func parseUnits(s string) (decimal.Decimal, error) {
	units, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid units format: %v", err)
	}
	return units, nil
}

func toHolding(v *domain.Valuation) *Holding {
	return &Holding{
		HoldingId:        v.HoldingID.String(),
		ProductId:        v.ProductID,
		ProductName:      v.ProductName,
		Type:             string(v.Type),
		RiskLevel:        string(v.RiskLevel),
		UnitsOwned:       v.UnitsOwned.String(),
		AvgPurchasePrice: v.AvgPurchasePrice.String(),
		CurrentUnitValue: v.CurrentUnitValue.String(),
		InvestedValue:    v.InvestedValue.StringFixed(2),
		CurrentValue:     v.CurrentValue.StringFixed(2),
		AbsoluteReturn:   v.AbsoluteReturn.StringFixed(2),
		PercentageReturn: v.PercentageReturn.StringFixed(2),
	}
}

func toSlices(slices []allocator.Slice) []*AllocationSlice {
	out := make([]*AllocationSlice, 0, len(slices))
	for _, s := range slices {
		out = append(out, &AllocationSlice{
			Key:        s.Key,
			Value:      s.Value.StringFixed(2),
			Percentage: s.Percentage.StringFixed(2),
		})
	}
	return out
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	de, ok := domain.AsError(err)
	if !ok {
		// Default to Internal error for unknown errors
		return status.Error(codes.Internal, "internal error")
	}

	switch de.Kind {
	case domain.KindInvalidInvestment, domain.KindMinimumInvestmentNotMet:
		return status.Errorf(codes.InvalidArgument, "%s", de.Error())
	case domain.KindInsufficientUnits:
		return status.Errorf(codes.FailedPrecondition, "%s", de.Error())
	case domain.KindNotFound:
		return status.Errorf(codes.NotFound, "%s", de.Error())
	case domain.KindStorageFailure:
		// Storage details stay in the log
		if de.Retryable() {
			return status.Error(codes.Unavailable, "storage failure")
		}
		return status.Error(codes.Internal, "storage failure")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
