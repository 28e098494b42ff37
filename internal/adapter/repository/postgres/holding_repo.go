package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/investfolio-backend/internal/domain"
)

// holdingRepository implements domain.HoldingRepository
type holdingRepository struct {
	q         querier
	forUpdate bool // lock rows read by FindByUserAndProduct (inside a unit of work)
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *DB) domain.HoldingRepository {
	return &holdingRepository{q: db}
}

const holdingColumns = `id, user_id, product_id, units_owned, avg_purchase_price`

// FindByUserAndProduct retrieves the holding for a (user, product) pair
func (r *holdingRepository) FindByUserAndProduct(ctx context.Context, userID uuid.UUID, productID int64) (*domain.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE user_id = $1 AND product_id = $2`
	if r.forUpdate {
		query += ` FOR UPDATE`
	}

	holding, err := scanHolding(r.q.QueryRowContext(ctx, query, userID, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("holding not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get holding: %w", mapError(err))
	}
	return holding, nil
}

// FindByID retrieves a holding by its ID
func (r *holdingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE id = $1`

	holding, err := scanHolding(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("holding not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get holding: %w", mapError(err))
	}
	return holding, nil
}

// FindAllByUser retrieves every holding owned by a user, ordered by product ID
func (r *holdingRepository) FindAllByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE user_id = $1 ORDER BY product_id`

	rows, err := r.q.QueryContext(ctx, query, userID)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", mapError(err))
	}

	return holdings, nil
}

// Save inserts or updates a holding (upsert by ID)
// A second holding for the same (user, product) violates the unique constraint and maps to ErrConflict.
func (r *holdingRepository) Save(ctx context.Context, holding *domain.Holding) error {
	if err := holding.Validate(); err != nil {
		return fmt.Errorf("invalid holding: %w", err)
	}

	query := `
		INSERT INTO holdings (id, user_id, product_id, units_owned, avg_purchase_price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET units_owned = EXCLUDED.units_owned,
		    avg_purchase_price = EXCLUDED.avg_purchase_price,
		    updated_at = NOW()
	`

	_, err := r.q.ExecContext(ctx, query,
		holding.ID,
		holding.UserID,
		holding.ProductID,
		holding.UnitsOwned.String(),
		holding.AvgPurchasePrice.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to save holding: %w", mapError(err))
	}

	return nil
}

// DeleteByID removes a holding
func (r *holdingRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM holdings WHERE id = $1`, id)
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
	var holding domain.Holding
	var unitsStr, avgStr string

	if err := row.Scan(&holding.ID, &holding.UserID, &holding.ProductID, &unitsStr, &avgStr); err != nil {
		return nil, err
	}

	units, err := decimal.NewFromString(unitsStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse units_owned: %w", err)
	}
	avg, err := decimal.NewFromString(avgStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse avg_purchase_price: %w", err)
	}

	holding.UnitsOwned = units
	holding.AvgPurchasePrice = avg
	return &holding, nil
}
