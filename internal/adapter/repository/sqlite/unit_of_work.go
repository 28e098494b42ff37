package sqlite

import (
	"context"
	"fmt"

	"github.com/simaogato/investfolio-backend/internal/domain"
)

type unitOfWork struct {
	db *DB
}

// NewUnitOfWork creates a unit of work whose transactions take the write lock up front
func NewUnitOfWork(db *DB) domain.UnitOfWork {
	return &unitOfWork{db: db}
}

func (u *unitOfWork) Atomic(ctx context.Context, fn func(ctx context.Context, holdings domain.HoldingRepository, transactions domain.TransactionRepository) error) error {
	dbTx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", mapError(err))
	}
	defer dbTx.Rollback()

	if err := fn(ctx, &holdingRepository{q: dbTx}, &transactionRepository{q: dbTx}); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapError(err))
	}
	return nil
}
