package investment

import (
	"context"
	"fmt"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/investfolio-backend/internal/domain"
)

// DefaultCurrency is used for formatted amounts when none is configured
const DefaultCurrency = "INR"

// TimestampLayout is the display layout of transaction timestamps (UTC)
const TimestampLayout = "2006-01-02 15:04:05"

// TransactionRecord is the display projection of one ledger entry
type TransactionRecord struct {
	ID                 uuid.UUID
	ProductID          int64
	ProductName        string
	Type               domain.TransactionType
	Units              decimal.Decimal
	UnitValueAtTxn     decimal.Decimal
	Amount             decimal.Decimal // units * unit value, unrounded
	FormattedAmount    string
	Timestamp          time.Time
	FormattedTimestamp string
}

// TransactionPage is one page of a user's history, newest first
type TransactionPage struct {
	Transactions []TransactionRecord
	TotalCount   int
}

// GetTransactionHistory lists a user's transactions ordered by timestamp descending
// limit <= 0 returns everything from offset onward; a negative offset is treated as 0.
func (s *InvestmentService) GetTransactionHistory(ctx context.Context, userID uuid.UUID, limit, offset int) (*TransactionPage, error) {
	started := time.Now()
	page, err := s.getTransactionHistory(ctx, userID, limit, offset)
	s.Metrics.ObserveOperation("get_transactions", started, err)
	if err != nil {
		s.Logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to load transaction history")
	}
	return page, err
}

func (s *InvestmentService) getTransactionHistory(ctx context.Context, userID uuid.UUID, limit, offset int) (*TransactionPage, error) {
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}

	total, err := s.TxnRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, domain.StorageFailure(fmt.Errorf("failed to count transactions: %w", err))
	}

	txns, err := s.TxnRepo.FindAllByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, domain.StorageFailure(fmt.Errorf("failed to list transactions: %w", err))
	}

	page := &TransactionPage{
		Transactions: make([]TransactionRecord, 0, len(txns)),
		TotalCount:   total,
	}

	products := newProductCache(s.Products)
	for _, txn := range txns {
		name := ""
		if product, err := products.get(ctx, txn.ProductID); err != nil {
			// History stays readable when a product has been removed from the catalog
			s.Logger.Warn().Err(err).Int64("product_id", txn.ProductID).Msg("Product lookup failed for transaction")
		} else {
			name = product.Name
		}
		page.Transactions = append(page.Transactions, s.toRecord(txn, name))
	}

	return page, nil
}

func (s *InvestmentService) toRecord(txn *domain.Transaction, productName string) TransactionRecord {
	amount := txn.Amount()
	return TransactionRecord{
		ID:                 txn.ID,
		ProductID:          txn.ProductID,
		ProductName:        productName,
		Type:               txn.Type,
		Units:              txn.Units,
		UnitValueAtTxn:     txn.UnitValueAtTxn,
		Amount:             amount,
		FormattedAmount:    FormatAmount(amount, s.Currency),
		Timestamp:          txn.Timestamp,
		FormattedTimestamp: txn.Timestamp.UTC().Format(TimestampLayout),
	}
}

// FormatAmount renders an amount in the currency's display format, rounded half up to the
// currency's minor unit. Unknown currency codes fall back to a plain 2-place string.
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return domain.Round2(amount).StringFixed(2)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}
