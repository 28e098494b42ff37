package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/investfolio-backend/internal/domain"
)

// Fixed IDs for the demo catalog so repeated seeding is idempotent
const (
	PRODUCT_BLUECHIP_EQUITY int64 = 1
	PRODUCT_NIFTY_ETF       int64 = 2
	PRODUCT_GILT_BOND       int64 = 3
	PRODUCT_BANK_FD         int64 = 4
	PRODUCT_MIDCAP_STOCK    int64 = 5
	PRODUCT_LEGACY_FUND     int64 = 6
)

// ProductWriter is the catalog access the seeder needs
type ProductWriter interface {
	domain.ProductCatalog
	SaveProduct(ctx context.Context, product *domain.Product) error
}

// CatalogSeeder handles seeding of the development product catalog
type CatalogSeeder struct {
	repo ProductWriter
	log  zerolog.Logger
}

// NewCatalogSeeder creates a new CatalogSeeder instance
func NewCatalogSeeder(repo ProductWriter, log zerolog.Logger) *CatalogSeeder {
	return &CatalogSeeder{
		repo: repo,
		log:  log.With().Str("component", "seeder").Logger(),
	}
}

// DemoProducts returns the development catalog
func DemoProducts() []domain.Product {
	return []domain.Product{
		{
			ID:                       PRODUCT_BLUECHIP_EQUITY,
			Name:                     "Bluechip Equity Fund",
			Type:                     domain.InvestmentTypeMutualFund,
			RiskLevel:                domain.RiskLevelHigh,
			Description:              "Large-cap equity mutual fund",
			MinimumInvestment:        decimal.RequireFromString("500.00"),
			ExpectedAnnualReturnRate: decimal.RequireFromString("12.50"),
			CurrentUnitValue:         decimal.RequireFromString("100.00"),
			IsActive:                 true,
		},
		{
			ID:                       PRODUCT_NIFTY_ETF,
			Name:                     "Nifty 50 Index ETF",
			Type:                     domain.InvestmentTypeETF,
			RiskLevel:                domain.RiskLevelMedium,
			Description:              "Passive ETF tracking the Nifty 50 index",
			MinimumInvestment:        decimal.RequireFromString("100.00"),
			ExpectedAnnualReturnRate: decimal.RequireFromString("10.00"),
			CurrentUnitValue:         decimal.RequireFromString("245.30"),
			IsActive:                 true,
		},
		{
			ID:                       PRODUCT_GILT_BOND,
			Name:                     "Government Gilt Bond",
			Type:                     domain.InvestmentTypeBond,
			RiskLevel:                domain.RiskLevelLow,
			Description:              "Sovereign bond fund with medium duration",
			MinimumInvestment:        decimal.RequireFromString("1000.00"),
			ExpectedAnnualReturnRate: decimal.RequireFromString("7.10"),
			CurrentUnitValue:         decimal.RequireFromString("10.45"),
			IsActive:                 true,
		},
		{
			ID:                       PRODUCT_BANK_FD,
			Name:                     "Bank Fixed Deposit",
			Type:                     domain.InvestmentTypeFixedDeposit,
			RiskLevel:                domain.RiskLevelLow,
			Description:              "One year fixed deposit",
			MinimumInvestment:        decimal.RequireFromString("5000.00"),
			ExpectedAnnualReturnRate: decimal.RequireFromString("6.75"),
			CurrentUnitValue:         decimal.RequireFromString("1000.00"),
			IsActive:                 true,
		},
		{
			ID:                       PRODUCT_MIDCAP_STOCK,
			Name:                     "Midcap Growth Stock",
			Type:                     domain.InvestmentTypeStock,
			RiskLevel:                domain.RiskLevelHigh,
			Description:              "Single listed midcap equity",
			MinimumInvestment:        decimal.RequireFromString("0.00"),
			ExpectedAnnualReturnRate: decimal.RequireFromString("15.00"),
			CurrentUnitValue:         decimal.RequireFromString("1523.75"),
			IsActive:                 true,
		},
		{
			ID:                       PRODUCT_LEGACY_FUND,
			Name:                     "Legacy Balanced Fund",
			Type:                     domain.InvestmentTypeMutualFund,
			RiskLevel:                domain.RiskLevelMedium,
			Description:              "Closed to new investment; existing units can still be redeemed",
			MinimumInvestment:        decimal.RequireFromString("500.00"),
			ExpectedAnnualReturnRate: decimal.RequireFromString("8.00"),
			CurrentUnitValue:         decimal.RequireFromString("54.20"),
			IsActive:                 false,
		},
	}
}

// Seed ensures every demo product exists in the catalog
// Existing products are left untouched so NAV edits survive re-seeding
func (s *CatalogSeeder) Seed(ctx context.Context) (int, error) {
	created := 0
	for _, product := range DemoProducts() {
		product := product

		_, err := s.repo.GetProduct(ctx, product.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return created, fmt.Errorf("failed to check product %d: %w", product.ID, err)
		}

		// Validate before creating
		if err := product.Validate(); err != nil {
			return created, err
		}

		if err := s.repo.SaveProduct(ctx, &product); err != nil {
			return created, fmt.Errorf("failed to seed product %d: %w", product.ID, err)
		}
		created++
		s.log.Info().Int64("product_id", product.ID).Str("name", product.Name).Msg("Seeded product")
	}

	return created, nil
}
