package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/investfolio-backend/internal/domain"
)

// ProductRepository reads the investment product catalog and lets the seeder write to it
type ProductRepository struct {
	db *DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, name, type, risk_level, description, minimum_investment,
	expected_annual_return_rate, current_unit_value, is_active`

// GetProduct retrieves a product snapshot by ID
func (r *ProductRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM investment_products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d not found: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product: %w", mapError(err))
	}
	return product, nil
}

// SaveProduct inserts or replaces a catalog entry
func (r *ProductRepository) SaveProduct(ctx context.Context, p *domain.Product) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}

	query := `
		INSERT INTO investment_products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    type = EXCLUDED.type,
		    risk_level = EXCLUDED.risk_level,
		    description = EXCLUDED.description,
		    minimum_investment = EXCLUDED.minimum_investment,
		    expected_annual_return_rate = EXCLUDED.expected_annual_return_rate,
		    current_unit_value = EXCLUDED.current_unit_value,
		    is_active = EXCLUDED.is_active,
		    updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		string(p.Type),
		string(p.RiskLevel),
		p.Description,
		p.MinimumInvestment.String(),
		p.ExpectedAnnualReturnRate.String(),
		p.CurrentUnitValue.String(),
		p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", mapError(err))
	}
	return nil
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	var productType, riskLevel, minStr, rateStr, navStr string

	err := row.Scan(&p.ID, &p.Name, &productType, &riskLevel, &p.Description,
		&minStr, &rateStr, &navStr, &p.IsActive)
	if err != nil {
		return nil, err
	}

	p.Type = domain.InvestmentType(productType)
	p.RiskLevel = domain.RiskLevel(riskLevel)
	if p.MinimumInvestment, err = decimal.NewFromString(minStr); err != nil {
		return nil, fmt.Errorf("failed to parse minimum_investment: %w", err)
	}
	if p.ExpectedAnnualReturnRate, err = decimal.NewFromString(rateStr); err != nil {
		return nil, fmt.Errorf("failed to parse expected_annual_return_rate: %w", err)
	}
	if p.CurrentUnitValue, err = decimal.NewFromString(navStr); err != nil {
		return nil, fmt.Errorf("failed to parse current_unit_value: %w", err)
	}

	return &p, nil
}
