package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/simaogato/investfolio-backend/internal/domain"
)

type transactionRepo struct {
	view view
}

// NewTransactionRepository creates a TransactionRepository reading the committed ledger
func NewTransactionRepository(store *Store) domain.TransactionRepository {
	return &transactionRepo{view: liveView{store: store}}
}

func (r *transactionRepo) Append(ctx context.Context, tx *domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}

	return r.view.update(func(st *state) error {
		st.txns = append(st.txns, *tx)
		return nil
	})
}

func (r *transactionRepo) FindAllByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Transaction, error) {
	txns := r.userTransactions(userID)

	if offset >= len(txns) {
		return []*domain.Transaction{}, nil
	}
	txns = txns[offset:]
	if limit > 0 && limit < len(txns) {
		txns = txns[:limit]
	}
	return txns, nil
}

func (r *transactionRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, tx := range r.view.snapshot().txns {
		if tx.UserID == userID {
			count++
		}
	}
	return count, nil
}

// userTransactions returns the user's ledger newest first; equal timestamps keep the
// most recently appended entry first.
func (r *transactionRepo) userTransactions(userID uuid.UUID) []*domain.Transaction {
	all := r.view.snapshot().txns

	var txns []*domain.Transaction
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].UserID == userID {
			tx := all[i]
			txns = append(txns, &tx)
		}
	}

	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Timestamp.After(txns[j].Timestamp)
	})
	return txns
}
