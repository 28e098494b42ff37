package investment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/simaogato/investfolio-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetTransactionHistory_Records(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := uuid.New()

	newer := &domain.Transaction{ID: uuid.New(), UserID: userID, ProductID: 1, Type: domain.TransactionTypeSell,
		Units: d("2.5"), UnitValueAtTxn: d("120.10"), Timestamp: time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)}
	older := &domain.Transaction{ID: uuid.New(), UserID: userID, ProductID: 9, Type: domain.TransactionTypeBuy,
		Units: d("10"), UnitValueAtTxn: d("100"), Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.FixedZone("IST", 19800))}

	f.txns.On("CountByUser", ctx, userID).Return(7, nil)
	f.txns.On("FindAllByUser", ctx, userID, 2, 0).Return([]*domain.Transaction{newer, older}, nil)
	f.products.On("GetProduct", ctx, int64(1)).Return(fund("130"), nil).Once()
	f.products.On("GetProduct", ctx, int64(9)).Return(nil, domain.ErrNotFound)

	page, err := f.service.GetTransactionHistory(ctx, userID, 2, 0)

	require.NoError(t, err)
	assert.Equal(t, 7, page.TotalCount)
	require.Len(t, page.Transactions, 2)

	first := page.Transactions[0]
	assert.Equal(t, newer.ID, first.ID)
	assert.Equal(t, "Bluechip Equity Fund", first.ProductName)
	assert.Equal(t, domain.TransactionTypeSell, first.Type)
	assert.True(t, first.Amount.Equal(d("300.25")))
	assert.Equal(t, "$300.25", first.FormattedAmount)
	assert.Equal(t, "2026-02-03 04:05:06", first.FormattedTimestamp)

	second := page.Transactions[1]
	// Missing products do not fail the history
	assert.Equal(t, "", second.ProductName)
	assert.Equal(t, "$1,000.00", second.FormattedAmount)
	// Rendered in UTC
	assert.Equal(t, "2025-12-31 18:30:00", second.FormattedTimestamp)

	f.txns.AssertExpectations(t)
	f.products.AssertExpectations(t)
}

func TestGetTransactionHistory_NormalisesPaging(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := uuid.New()

	f.txns.On("CountByUser", ctx, userID).Return(0, nil)
	f.txns.On("FindAllByUser", ctx, userID, 0, 0).Return([]*domain.Transaction{}, nil)

	page, err := f.service.GetTransactionHistory(ctx, userID, -5, -1)

	require.NoError(t, err)
	assert.Empty(t, page.Transactions)
	assert.Equal(t, 0, page.TotalCount)
}

func TestGetTransactionHistory_StorageFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := uuid.New()

	f.txns.On("CountByUser", ctx, userID).Return(0, errors.New("timeout"))

	_, err := f.service.GetTransactionHistory(ctx, userID, 0, 0)

	assert.True(t, errors.Is(err, domain.ErrStorageFailure))
	f.txns.AssertNotCalled(t, "FindAllByUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"1234.5", "USD", "$1,234.50"},
		{"0.005", "USD", "$0.01"},
		{"99.999", "EUR", "€100.00"},
		{"12.345", "XXX-UNKNOWN", "12.35"},
	}

	for _, tt := range tests {
		t.Run(tt.currency+" "+tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(d(tt.amount), tt.currency))
		})
	}
}
