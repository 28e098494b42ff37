package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/investfolio-backend/internal/domain"
)

type transactionRepository struct {
	q querier
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{q: db}
}

func (r *transactionRepository) Append(ctx context.Context, tx *domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, product_id, type, units, unit_value_at_txn, timestamp_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		tx.ID.String(),
		tx.UserID.String(),
		tx.ProductID,
		string(tx.Type),
		tx.Units.String(),
		tx.UnitValueAtTxn.String(),
		tx.Timestamp.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", mapError(err))
	}
	return nil
}

// FindAllByUser returns the user's ledger newest first; rowid breaks timestamp ties
func (r *transactionRepository) FindAllByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = -1 // no limit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT id, user_id, product_id, type, units, unit_value_at_txn, timestamp_ns
		FROM transactions
		WHERE user_id = ?
		ORDER BY timestamp_ns DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, userID.String(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", mapError(err))
	}
	defer rows.Close()

	txns := []*domain.Transaction{}
	for rows.Next() {
		var tx domain.Transaction
		var idStr, userStr, txType, unitsStr, valueStr string
		var ns int64

		if err := rows.Scan(&idStr, &userStr, &tx.ProductID, &txType, &unitsStr, &valueStr, &ns); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		if tx.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("failed to parse transaction id: %w", err)
		}
		if tx.UserID, err = uuid.Parse(userStr); err != nil {
			return nil, fmt.Errorf("failed to parse user id: %w", err)
		}
		if tx.Units, err = decimal.NewFromString(unitsStr); err != nil {
			return nil, fmt.Errorf("failed to parse units: %w", err)
		}
		if tx.UnitValueAtTxn, err = decimal.NewFromString(valueStr); err != nil {
			return nil, fmt.Errorf("failed to parse unit_value_at_txn: %w", err)
		}
		tx.Type = domain.TransactionType(txType)
		tx.Timestamp = time.Unix(0, ns).UTC()

		txns = append(txns, &tx)
	}
	return txns, rows.Err()
}

func (r *transactionRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE user_id = ?`, userID.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", mapError(err))
	}
	return count, nil
}
