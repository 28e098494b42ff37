package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// InvestmentType represents the category of an investment product
type InvestmentType string

const (
	InvestmentTypeMutualFund   InvestmentType = "MUTUAL_FUND"
	InvestmentTypeETF          InvestmentType = "ETF"
	InvestmentTypeBond         InvestmentType = "BOND"
	InvestmentTypeStock        InvestmentType = "STOCK"
	InvestmentTypeFixedDeposit InvestmentType = "FIXED_DEPOSIT"
)

// RiskLevel represents the risk profile of an investment product
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

// Product is a read-only snapshot of an investment product taken from the catalog.
// One snapshot is loaded per engine operation and never re-fetched mid-operation.
type Product struct {
	ID                       int64
	Name                     string
	Type                     InvestmentType
	RiskLevel                RiskLevel
	Description              string
	MinimumInvestment        decimal.Decimal
	ExpectedAnnualReturnRate decimal.Decimal
	CurrentUnitValue         decimal.Decimal // NAV per unit
	IsActive                 bool
}

// InvestmentAmount returns units * CurrentUnitValue, unrounded
func (p *Product) InvestmentAmount(units decimal.Decimal) decimal.Decimal {
	return units.Mul(p.CurrentUnitValue)
}

// Validate ensures a catalog entry is well formed
// Returns an error if validation fails
func (p *Product) Validate() error {
	if p.ID <= 0 {
		return errors.New("product ID must be positive")
	}
	if p.Name == "" {
		return errors.New("product name cannot be empty")
	}
	switch p.Type {
	case InvestmentTypeMutualFund, InvestmentTypeETF, InvestmentTypeBond, InvestmentTypeStock, InvestmentTypeFixedDeposit:
	default:
		return errors.New("invalid investment type")
	}
	switch p.RiskLevel {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
	default:
		return errors.New("invalid risk level")
	}
	if p.MinimumInvestment.LessThan(decimal.Zero) {
		return errors.New("minimum investment cannot be negative")
	}
	if p.CurrentUnitValue.LessThanOrEqual(decimal.Zero) {
		return errors.New("current unit value must be positive")
	}
	return nil
}
