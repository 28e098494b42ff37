package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a ledger entry
type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "BUY"
	TransactionTypeSell TransactionType = "SELL"
)

// Transaction represents an immutable ledger record of one buy or sell
// Transactions are appended once and never updated or deleted.
type Transaction struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	ProductID      int64
	Type           TransactionType
	Units          decimal.Decimal
	UnitValueAtTxn decimal.Decimal // NAV at the time of the transaction
	Timestamp      time.Time
}

// NewTransaction builds a ledger record for a buy or sell executed at unitValue
func NewTransaction(userID uuid.UUID, productID int64, txnType TransactionType, units, unitValue decimal.Decimal, at time.Time) *Transaction {
	return &Transaction{
		ID:             uuid.New(),
		UserID:         userID,
		ProductID:      productID,
		Type:           txnType,
		Units:          units,
		UnitValueAtTxn: unitValue,
		Timestamp:      at,
	}
}

// Amount returns units * unit value at transaction time
func (t *Transaction) Amount() decimal.Decimal {
	return t.Units.Mul(t.UnitValueAtTxn)
}

// Validate ensures the transaction adheres to domain rules
// Returns an error if validation fails
func (t *Transaction) Validate() error {
	if t.ID == uuid.Nil {
		return errors.New("transaction ID cannot be empty")
	}
	if t.UserID == uuid.Nil {
		return errors.New("transaction user ID cannot be empty")
	}
	if t.Type != TransactionTypeBuy && t.Type != TransactionTypeSell {
		return errors.New("transaction type must be BUY or SELL")
	}
	if t.Units.LessThanOrEqual(decimal.Zero) {
		return errors.New("transaction units must be positive")
	}
	if t.UnitValueAtTxn.LessThan(decimal.Zero) {
		return errors.New("transaction unit value cannot be negative")
	}
	if t.Timestamp.IsZero() {
		return errors.New("transaction timestamp cannot be empty")
	}
	return nil
}
