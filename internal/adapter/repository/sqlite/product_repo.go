package sqlite

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

func (r *ProductRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	var productType, riskLevel, minStr, rateStr, navStr string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, type, risk_level, description, minimum_investment,
		       expected_annual_return_rate, current_unit_value, is_active
		FROM investment_products WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &productType, &riskLevel, &p.Description, &minStr, &rateStr, &navStr, &p.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d not found: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product: %w", mapError(err))
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

func (r *ProductRepository) SaveProduct(ctx context.Context, p *domain.Product) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO investment_products (id, name, type, risk_level, description, minimum_investment,
		                                 expected_annual_return_rate, current_unit_value, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET name = excluded.name,
		    type = excluded.type,
		    risk_level = excluded.risk_level,
		    description = excluded.description,
		    minimum_investment = excluded.minimum_investment,
		    expected_annual_return_rate = excluded.expected_annual_return_rate,
		    current_unit_value = excluded.current_unit_value,
		    is_active = excluded.is_active
	`,
		p.ID, p.Name, string(p.Type), string(p.RiskLevel), p.Description,
		p.MinimumInvestment.String(), p.ExpectedAnnualReturnRate.String(), p.CurrentUnitValue.String(),
		p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", mapError(err))
	}
	return nil
}
