package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/investfolio-backend/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	q querier
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{q: db}
}

// Append inserts a ledger entry. There is no update path.
func (r *transactionRepository) Append(ctx context.Context, tx *domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}

	query := `
		INSERT INTO transactions (id, user_id, product_id, type, units, unit_value_at_txn, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		tx.ID,
		tx.UserID,
		tx.ProductID,
		string(tx.Type),
		tx.Units.String(),
		tx.UnitValueAtTxn.String(),
		tx.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", mapError(err))
	}

	return nil
}

// FindAllByUser retrieves a user's transactions, newest first
func (r *transactionRepository) FindAllByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT id, user_id, product_id, type, units, unit_value_at_txn, timestamp
		FROM transactions
		WHERE user_id = $1
		ORDER BY timestamp DESC, seq DESC
		LIMIT $2 OFFSET $3
	`

	// LIMIT NULL is LIMIT ALL
	lim := sql.NullInt64{Int64: int64(limit), Valid: limit > 0}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.q.QueryContext(ctx, query, userID, lim, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", mapError(err))
	}
	defer rows.Close()

	txns := []*domain.Transaction{}
	for rows.Next() {
		var tx domain.Transaction
		var txType, unitsStr, valueStr string

		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.ProductID, &txType, &unitsStr, &valueStr, &tx.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		tx.Type = domain.TransactionType(txType)
		if tx.Units, err = decimal.NewFromString(unitsStr); err != nil {
			return nil, fmt.Errorf("failed to parse units: %w", err)
		}
		if tx.UnitValueAtTxn, err = decimal.NewFromString(valueStr); err != nil {
			return nil, fmt.Errorf("failed to parse unit_value_at_txn: %w", err)
		}

		txns = append(txns, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", mapError(err))
	}

	return txns, nil
}

// CountByUser returns the number of ledger entries for a user
func (r *transactionRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", mapError(err))
	}
	return count, nil
}
