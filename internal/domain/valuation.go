package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Valuation is the derived, never persisted view of a holding priced at the product's current NAV
type Valuation struct {
	HoldingID        uuid.UUID
	ProductID        int64
	ProductName      string
	Type             InvestmentType
	RiskLevel        RiskLevel
	UnitsOwned       decimal.Decimal
	AvgPurchasePrice decimal.Decimal
	CurrentUnitValue decimal.Decimal
	InvestedValue    decimal.Decimal
	CurrentValue     decimal.Decimal
	AbsoluteReturn   decimal.Decimal
	PercentageReturn decimal.Decimal
}

// Round2 rounds half away from zero (HALF_UP) to 2 decimal places
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// PercentageOf returns round2(part*100/whole), or zero when whole is not positive
func PercentageOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return part.Mul(hundred).DivRound(whole, 2)
}

// Valuate projects a holding and a product snapshot into a Valuation.
// It is a pure function of its two inputs. Rounding order is significant:
//
//	investedValue    = round2(units * avgPurchasePrice)
//	currentValue     = round2(units * currentUnitValue)
//	absoluteReturn   = currentValue - investedValue   (from the rounded values)
//	percentageReturn = round2(absoluteReturn * 100 / investedValue), 0 when investedValue is 0
func Valuate(h *Holding, p *Product) Valuation {
	investedValue := Round2(h.UnitsOwned.Mul(h.AvgPurchasePrice))
	currentValue := Round2(h.UnitsOwned.Mul(p.CurrentUnitValue))
	absoluteReturn := currentValue.Sub(investedValue)

	return Valuation{
		HoldingID:        h.ID,
		ProductID:        p.ID,
		ProductName:      p.Name,
		Type:             p.Type,
		RiskLevel:        p.RiskLevel,
		UnitsOwned:       h.UnitsOwned,
		AvgPurchasePrice: h.AvgPurchasePrice,
		CurrentUnitValue: p.CurrentUnitValue,
		InvestedValue:    investedValue,
		CurrentValue:     currentValue,
		AbsoluteReturn:   absoluteReturn,
		PercentageReturn: PercentageOf(absoluteReturn, investedValue),
	}
}
