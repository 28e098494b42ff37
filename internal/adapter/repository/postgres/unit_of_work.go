package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/simaogato/investfolio-backend/internal/domain"
)

// unitOfWork implements domain.UnitOfWork on a database transaction
type unitOfWork struct {
	db *DB
}

// NewUnitOfWork creates a unit of work backed by READ COMMITTED transactions.
// Holdings read through it are locked with SELECT ... FOR UPDATE until commit or rollback.
func NewUnitOfWork(db *DB) domain.UnitOfWork {
	return &unitOfWork{db: db}
}

func (u *unitOfWork) Atomic(ctx context.Context, fn func(ctx context.Context, holdings domain.HoldingRepository, transactions domain.TransactionRepository) error) error {
	dbTx, err := u.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", mapError(err))
	}
	defer dbTx.Rollback()

	holdings := &holdingRepository{q: dbTx, forUpdate: true}
	transactions := &transactionRepository{q: dbTx}

	if err := fn(ctx, holdings, transactions); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapError(err))
	}

	return nil
}
