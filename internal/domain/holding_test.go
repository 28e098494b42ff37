package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestHolding_ApplyBuy_FirstBuySetsAverageToNAV(t *testing.T) {
	h := NewHolding(uuid.New(), 1)

	h.ApplyBuy(d("7.5"), d("123.4567"))

	assert.True(t, h.UnitsOwned.Equal(d("7.5")))
	// No rounding is applied on the first buy
	assert.True(t, h.AvgPurchasePrice.Equal(d("123.4567")), "got %s", h.AvgPurchasePrice)
}

func TestHolding_ApplyBuy_WeightedAverage(t *testing.T) {
	tests := []struct {
		name      string
		u1, p1    string
		u2, p2    string
		wantUnits string
		wantAvg   string
	}{
		{
			name: "Equal lots",
			u1:   "10", p1: "100",
			u2: "10", p2: "120",
			wantUnits: "20",
			wantAvg:   "110",
		},
		{
			name: "Uneven lots round half up",
			u1:   "3", p1: "10",
			u2: "3", p2: "10.01",
			wantUnits: "6",
			// (30 + 30.03) / 6 = 10.005 -> 10.01
			wantAvg: "10.01",
		},
		{
			name: "Repeating fraction",
			u1:   "1", p1: "10",
			u2: "2", p2: "10",
			wantUnits: "3",
			wantAvg:   "10",
		},
		{
			name: "Thirds",
			u1:   "1", p1: "100",
			u2: "2", p2: "50",
			wantUnits: "3",
			// 200 / 3 = 66.666.. -> 66.67
			wantAvg: "66.67",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHolding(uuid.New(), 1)
			h.ApplyBuy(d(tt.u1), d(tt.p1))
			h.ApplyBuy(d(tt.u2), d(tt.p2))

			assert.True(t, h.UnitsOwned.Equal(d(tt.wantUnits)), "units: got %s", h.UnitsOwned)
			assert.True(t, h.AvgPurchasePrice.Equal(d(tt.wantAvg)), "avg: got %s", h.AvgPurchasePrice)

			// Property: avg == round2((u1*p1 + u2*p2)/(u1+u2))
			expected := d(tt.u1).Mul(d(tt.p1)).Add(d(tt.u2).Mul(d(tt.p2))).DivRound(d(tt.u1).Add(d(tt.u2)), 2)
			assert.True(t, h.AvgPurchasePrice.Equal(expected))
		})
	}
}

func TestHolding_ApplySell_PreservesCostBasis(t *testing.T) {
	h := NewHolding(uuid.New(), 1)
	h.ApplyBuy(d("10"), d("100"))
	h.ApplyBuy(d("5"), d("130"))
	avgBefore := h.AvgPurchasePrice

	err := h.ApplySell(d("4"))

	require.NoError(t, err)
	assert.True(t, h.UnitsOwned.Equal(d("11")))
	assert.True(t, h.AvgPurchasePrice.Equal(avgBefore))
	assert.False(t, h.IsEmpty())
}

func TestHolding_ApplySell_AllUnitsEmptiesHolding(t *testing.T) {
	h := NewHolding(uuid.New(), 1)
	h.ApplyBuy(d("2.5"), d("40"))

	err := h.ApplySell(d("2.5"))

	require.NoError(t, err)
	assert.True(t, h.IsEmpty())
	assert.True(t, h.AvgPurchasePrice.Equal(d("40")))
}

func TestHolding_ApplySell_InsufficientUnits(t *testing.T) {
	h := NewHolding(uuid.New(), 1)
	h.ApplyBuy(d("3"), d("40"))

	err := h.ApplySell(d("3.01"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientUnits))
	de, ok := AsError(err)
	require.True(t, ok)
	require.True(t, de.Available.Valid)
	assert.True(t, de.Available.Decimal.Equal(d("3")))

	// Holding is untouched
	assert.True(t, h.UnitsOwned.Equal(d("3")))
}

func TestHolding_Validate(t *testing.T) {
	valid := func() Holding {
		return Holding{
			ID:               uuid.New(),
			UserID:           uuid.New(),
			ProductID:        7,
			UnitsOwned:       d("1"),
			AvgPurchasePrice: d("10"),
		}
	}

	tests := []struct {
		name    string
		mutate  func(h *Holding)
		wantErr bool
		errMsg  string
	}{
		{name: "Valid holding", mutate: func(h *Holding) {}},
		{
			name:    "Zero units should fail",
			mutate:  func(h *Holding) { h.UnitsOwned = decimal.Zero },
			wantErr: true,
			errMsg:  "holding units must be positive",
		},
		{
			name:    "Missing user should fail",
			mutate:  func(h *Holding) { h.UserID = uuid.Nil },
			wantErr: true,
			errMsg:  "holding user ID cannot be empty",
		},
		{
			name:    "Negative average should fail",
			mutate:  func(h *Holding) { h.AvgPurchasePrice = d("-1") },
			wantErr: true,
			errMsg:  "holding average purchase price cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := valid()
			tt.mutate(&h)
			err := h.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.errMsg, err.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUnits(t *testing.T) {
	tests := []struct {
		name   string
		units  string
		errMsg string
	}{
		{name: "Whole units", units: "10"},
		{name: "Finest allowed fraction", units: "0.00000001"},
		{name: "Largest allowed quantity", units: "999999999999.99999999"},
		{name: "Exponent within range", units: "1e11"},
		{name: "Zero", units: "0", errMsg: "units must be positive"},
		{name: "Negative", units: "-0.5", errMsg: "units must be positive"},
		{name: "Too many decimal places", units: "0.000000001", errMsg: "units support at most 8 decimal places"},
		{name: "Tiny exponent", units: "1e-5000000", errMsg: "units support at most 8 decimal places"},
		{name: "Too many whole digits", units: "1000000000000", errMsg: "units exceed the maximum tradable quantity"},
		{name: "Huge exponent", units: "1e5000000", errMsg: "units exceed the maximum tradable quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUnits(d(tt.units))
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInvestment))
			assert.Equal(t, tt.errMsg, err.Error())
		})
	}
}
