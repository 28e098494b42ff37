package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/investfolio-backend/internal/domain"
)

type holdingRepository struct {
	q querier
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *DB) domain.HoldingRepository {
	return &holdingRepository{q: db}
}

const holdingColumns = `id, user_id, product_id, units_owned, avg_purchase_price`

func (r *holdingRepository) FindByUserAndProduct(ctx context.Context, userID uuid.UUID, productID int64) (*domain.Holding, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+holdingColumns+` FROM holdings WHERE user_id = ? AND product_id = ?`,
		userID.String(), productID)

	holding, err := scanHolding(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("holding not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get holding: %w", mapError(err))
	}
	return holding, nil
}

func (r *holdingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Holding, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+holdingColumns+` FROM holdings WHERE id = ?`, id.String())

	holding, err := scanHolding(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("holding not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get holding: %w", mapError(err))
	}
	return holding, nil
}

func (r *holdingRepository) FindAllByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Holding, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+holdingColumns+` FROM holdings WHERE user_id = ? ORDER BY product_id`,
		userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", mapError(err))
	}
	defer rows.Close()

	var holdings []*domain.Holding
	for rows.Next() {
		holding, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, holding)
	}
	return holdings, rows.Err()
}

func (r *holdingRepository) Save(ctx context.Context, holding *domain.Holding) error {
	if err := holding.Validate(); err != nil {
		return fmt.Errorf("invalid holding: %w", err)
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO holdings (id, user_id, product_id, units_owned, avg_purchase_price)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET units_owned = excluded.units_owned,
		    avg_purchase_price = excluded.avg_purchase_price
	`,
		holding.ID.String(),
		holding.UserID.String(),
		holding.ProductID,
		holding.UnitsOwned.String(),
		holding.AvgPurchasePrice.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to save holding: %w", mapError(err))
	}
	return nil
}

func (r *holdingRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM holdings WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", mapError(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("holding not found: %w", domain.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHolding(row rowScanner) (*domain.Holding, error) {
	var h domain.Holding
	var idStr, userStr, unitsStr, avgStr string

	if err := row.Scan(&idStr, &userStr, &h.ProductID, &unitsStr, &avgStr); err != nil {
		return nil, err
	}

	var err error
	if h.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("failed to parse holding id: %w", err)
	}
	if h.UserID, err = uuid.Parse(userStr); err != nil {
		return nil, fmt.Errorf("failed to parse user id: %w", err)
	}
	if h.UnitsOwned, err = decimal.NewFromString(unitsStr); err != nil {
		return nil, fmt.Errorf("failed to parse units_owned: %w", err)
	}
	if h.AvgPurchasePrice, err = decimal.NewFromString(avgStr); err != nil {
		return nil, fmt.Errorf("failed to parse avg_purchase_price: %w", err)
	}
	return &h, nil
}
