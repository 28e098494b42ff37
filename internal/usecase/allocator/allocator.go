package allocator

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/simaogato/investfolio-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Slice is one group's share of a total
type Slice struct {
	Key        string
	Value      decimal.Decimal
	Percentage decimal.Decimal // 2 places
}

// CalculateAllocation splits the total of values into percentage shares
// Returns slices ordered by value descending (ties by key)
// Logic:
//  1. Sum all group values into the total
//  2. Percentage per group = round2(value * 100 / total)
//  3. Assign the rounding residue (100 - sum of percentages) to the largest group
//
// Safety: Ensures the percentages of a non-empty allocation sum to exactly 100.00,
// including when the total is zero.
func CalculateAllocation(values map[string]decimal.Decimal) ([]Slice, error) {
	slices := make([]Slice, 0, len(values))
	if len(values) == 0 {
		return slices, nil
	}

	total := decimal.Zero
	for key, value := range values {
		if value.LessThan(decimal.Zero) {
			return nil, errors.New("allocation values cannot be negative")
		}
		slices = append(slices, Slice{Key: key, Value: value})
		total = total.Add(value)
	}

	// Largest first; the key keeps the order stable across map iterations
	sort.Slice(slices, func(i, j int) bool {
		if !slices[i].Value.Equal(slices[j].Value) {
			return slices[i].Value.GreaterThan(slices[j].Value)
		}
		return slices[i].Key < slices[j].Key
	})

	// Every group rounded to nothing: the first group carries the whole 100.00
	if total.IsZero() {
		for i := range slices {
			slices[i].Percentage = decimal.Zero
		}
		slices[0].Percentage = hundred
		return slices, nil
	}

	// Step 1: Round each share independently
	allocated := decimal.Zero
	for i := range slices {
		slices[i].Percentage = domain.PercentageOf(slices[i].Value, total)
		allocated = allocated.Add(slices[i].Percentage)
	}

	// Step 2: The largest group absorbs the residue
	slices[0].Percentage = slices[0].Percentage.Add(hundred.Sub(allocated))

	// Safety check: Ensure the shares add up to 100 exactly
	sum := decimal.Zero
	for _, s := range slices {
		sum = sum.Add(s.Percentage)
	}
	if !sum.Equal(hundred) {
		return nil, errors.New("allocation percentages do not sum to 100")
	}

	return slices, nil
}
