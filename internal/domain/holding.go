package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Holding represents a user's position in one investment product
// There is at most one Holding per (UserID, ProductID); a holding with zero units is deleted, never stored.
type Holding struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	ProductID        int64
	UnitsOwned       decimal.Decimal
	AvgPurchasePrice decimal.Decimal // Quantity-weighted acquisition cost per unit, changed only by buys
}

// NewHolding returns an empty, not yet persisted holding for the pair
func NewHolding(userID uuid.UUID, productID int64) *Holding {
	return &Holding{
		ID:               uuid.New(),
		UserID:           userID,
		ProductID:        productID,
		UnitsOwned:       decimal.Zero,
		AvgPurchasePrice: decimal.Zero,
	}
}

// Validate ensures the holding can be persisted
// Returns an error if validation fails
func (h *Holding) Validate() error {
	if h.ID == uuid.Nil {
		return errors.New("holding ID cannot be empty")
	}
	if h.UserID == uuid.Nil {
		return errors.New("holding user ID cannot be empty")
	}
	if h.UnitsOwned.LessThanOrEqual(decimal.Zero) {
		return errors.New("holding units must be positive")
	}
	if h.AvgPurchasePrice.LessThan(decimal.Zero) {
		return errors.New("holding average purchase price cannot be negative")
	}
	return nil
}

// Trade quantity bounds. Units finer than MaxUnitScale places or wider than
// MaxUnitIntegerDigits whole digits are rejected before any arithmetic runs on them.
const (
	MaxUnitScale         = 8
	MaxUnitIntegerDigits = 12
)

// ValidateUnits checks a requested buy or sell quantity
// Only the coefficient length and exponent are inspected, so oversized input costs nothing to reject.
func ValidateUnits(units decimal.Decimal) error {
	if units.Sign() <= 0 {
		return InvalidInvestment("units must be positive")
	}
	if units.Exponent() < -MaxUnitScale {
		return InvalidInvestment(fmt.Sprintf("units support at most %d decimal places", MaxUnitScale))
	}
	if int64(units.NumDigits())+int64(units.Exponent()) > MaxUnitIntegerDigits {
		return InvalidInvestment("units exceed the maximum tradable quantity")
	}
	return nil
}

// IsEmpty reports whether the holding has no units left
func (h *Holding) IsEmpty() bool {
	return h.UnitsOwned.IsZero()
}

// ApplyBuy adds units bought at unitValue and recomputes the average purchase price
// Logic:
//   - Prior units > 0: newAvg = (oldUnits*oldAvg + units*unitValue) / (oldUnits+units), HALF_UP to 2 places
//   - Otherwise: newAvg = unitValue
func (h *Holding) ApplyBuy(units, unitValue decimal.Decimal) {
	if h.UnitsOwned.GreaterThan(decimal.Zero) {
		totalOldValue := h.UnitsOwned.Mul(h.AvgPurchasePrice)
		totalNewValue := units.Mul(unitValue)
		totalUnits := h.UnitsOwned.Add(units)
		h.AvgPurchasePrice = totalOldValue.Add(totalNewValue).DivRound(totalUnits, 2)
	} else {
		h.AvgPurchasePrice = unitValue
	}
	h.UnitsOwned = h.UnitsOwned.Add(units)
}

// ApplySell removes units from the holding. The average purchase price is left untouched.
// Returns an InsufficientUnits error (and leaves the holding unchanged) when units exceed UnitsOwned.
func (h *Holding) ApplySell(units decimal.Decimal) error {
	if units.GreaterThan(h.UnitsOwned) {
		return InsufficientUnits(h.UnitsOwned)
	}
	h.UnitsOwned = h.UnitsOwned.Sub(units)
	return nil
}
