package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/simaogato/investfolio-backend/internal/adapter/auth"
	"github.com/simaogato/investfolio-backend/internal/adapter/lock"
	"github.com/simaogato/investfolio-backend/internal/adapter/repository/memory"
	"github.com/simaogato/investfolio-backend/internal/domain"
	"github.com/simaogato/investfolio-backend/internal/usecase/dashboard"
	"github.com/simaogato/investfolio-backend/internal/usecase/investment"
)

type testEnv struct {
	client   *PortfolioClient
	verifier *auth.Verifier
}

func setupServer(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	require.NoError(t, store.SaveProduct(ctx, &domain.Product{
		ID:                1,
		Name:              "Bluechip Equity Fund",
		Type:              domain.InvestmentTypeMutualFund,
		RiskLevel:         domain.RiskLevelHigh,
		MinimumInvestment: decimal.NewFromInt(500),
		CurrentUnitValue:  decimal.NewFromInt(100),
		IsActive:          true,
	}))

	investmentService := investment.NewInvestmentService(
		store,
		memory.NewHoldingRepository(store),
		memory.NewTransactionRepository(store),
		store,
		lock.NewKeyedMutex(),
		nil,
		zerolog.Nop(),
	)
	investmentService.Currency = "USD"
	dashboardService := dashboard.NewDashboardService(investmentService)

	verifier := auth.NewVerifier("test-secret")
	server := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(LoggingInterceptor(zerolog.Nop()), AuthInterceptor(verifier)),
	)
	RegisterPortfolioServiceServer(server, NewServer(investmentService, dashboardService))

	lis := bufconn.Listen(1 << 20)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &testEnv{client: NewPortfolioClient(conn), verifier: verifier}
}

func (e *testEnv) authed(t *testing.T, userID uuid.UUID) context.Context {
	t.Helper()
	token, err := e.verifier.Sign(userID, time.Hour)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func requireCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok, "error should be a gRPC status")
	assert.Equal(t, code, st.Code(), st.Message())
}

func TestServer_TradeFlow(t *testing.T) {
	env := setupServer(t)
	userID := uuid.New()
	ctx := env.authed(t, userID)

	bought, err := env.client.BuyInvestment(ctx, &BuyInvestmentRequest{ProductId: 1, Units: "10"})
	require.NoError(t, err)
	assert.Equal(t, "10", bought.Holding.UnitsOwned)
	assert.Equal(t, "1000.00", bought.Holding.InvestedValue)
	assert.Equal(t, "MUTUAL_FUND", bought.Holding.Type)

	sold, err := env.client.SellInvestment(ctx, &SellInvestmentRequest{ProductId: 1, Units: "4"})
	require.NoError(t, err)
	assert.Equal(t, "6", sold.Holding.UnitsOwned)

	portfolio, err := env.client.GetPortfolio(ctx, &GetPortfolioRequest{})
	require.NoError(t, err)
	require.Len(t, portfolio.Holdings, 1)
	assert.Equal(t, "600.00", portfolio.TotalInvestedValue)
	assert.Equal(t, "600.00", portfolio.TotalCurrentValue)

	holding, err := env.client.GetHolding(ctx, &GetHoldingRequest{HoldingId: portfolio.Holdings[0].HoldingId})
	require.NoError(t, err)
	assert.Equal(t, "Bluechip Equity Fund", holding.Holding.ProductName)

	txns, err := env.client.ListTransactions(ctx, &ListTransactionsRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), txns.TotalCount)
	require.Len(t, txns.Transactions, 2)
	assert.Equal(t, "$400.00", txns.Transactions[0].FormattedAmount)
	require.NotNil(t, txns.Transactions[0].Timestamp)

	summary, err := env.client.GetSummary(ctx, &GetSummaryRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.HoldingCount)
	assert.Equal(t, "0.00", summary.TotalAbsoluteReturn)

	allocation, err := env.client.GetAllocation(ctx, &GetAllocationRequest{})
	require.NoError(t, err)
	require.Len(t, allocation.ByType, 1)
	assert.Equal(t, "100.00", allocation.ByType[0].Percentage)

	gains, err := env.client.GetGains(ctx, &GetGainsRequest{})
	require.NoError(t, err)
	assert.Len(t, gains.Gains, 1)
}

func TestServer_ErrorCodes(t *testing.T) {
	env := setupServer(t)
	ctx := env.authed(t, uuid.New())

	_, err := env.client.BuyInvestment(ctx, &BuyInvestmentRequest{ProductId: 1, Units: "1"})
	requireCode(t, err, codes.InvalidArgument)

	_, err = env.client.BuyInvestment(ctx, &BuyInvestmentRequest{ProductId: 1, Units: "ten"})
	requireCode(t, err, codes.InvalidArgument)

	_, err = env.client.BuyInvestment(ctx, &BuyInvestmentRequest{ProductId: 42, Units: "10"})
	requireCode(t, err, codes.InvalidArgument)

	_, err = env.client.SellInvestment(ctx, &SellInvestmentRequest{ProductId: 1, Units: "1"})
	requireCode(t, err, codes.InvalidArgument)

	_, err = env.client.BuyInvestment(ctx, &BuyInvestmentRequest{ProductId: 1, Units: "5"})
	require.NoError(t, err)
	_, err = env.client.SellInvestment(ctx, &SellInvestmentRequest{ProductId: 1, Units: "6"})
	requireCode(t, err, codes.FailedPrecondition)

	_, err = env.client.GetHolding(ctx, &GetHoldingRequest{HoldingId: uuid.NewString()})
	requireCode(t, err, codes.NotFound)

	_, err = env.client.GetHolding(ctx, &GetHoldingRequest{HoldingId: "nope"})
	requireCode(t, err, codes.InvalidArgument)
}

func TestServer_RequiresToken(t *testing.T) {
	env := setupServer(t)

	_, err := env.client.GetPortfolio(context.Background(), &GetPortfolioRequest{})
	requireCode(t, err, codes.Unauthenticated)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
		msg  string
	}{
		{"Invalid investment", domain.InvalidInvestment("units must be positive"), codes.InvalidArgument, "units must be positive"},
		{"Minimum not met", domain.MinimumInvestmentNotMet(decimal.NewFromInt(500)), codes.InvalidArgument, ""},
		{"Insufficient units", domain.InsufficientUnits(decimal.NewFromInt(2)), codes.FailedPrecondition, ""},
		{"Not found", domain.NotFound("holding not found"), codes.NotFound, "holding not found"},
		{"Retryable storage failure", domain.StorageFailure(fmt.Errorf("insert into holdings: %w", domain.ErrConflict)), codes.Unavailable, "storage failure"},
		{"Storage failure", domain.StorageFailure(errors.New("pq: disk full on relation holdings")), codes.Internal, "storage failure"},
		{"Unknown error", errors.New("boom"), codes.Internal, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, ok := status.FromError(mapError(tt.err))
			require.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
			if tt.msg != "" {
				assert.Equal(t, tt.msg, st.Message())
			}
			assert.NotContains(t, st.Message(), "holdings")
			assert.NotContains(t, st.Message(), "boom")
		})
	}
	assert.NoError(t, mapError(nil))
}
