package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_InvestmentAmount(t *testing.T) {
	p := testProduct("100")

	assert.True(t, p.InvestmentAmount(d("4.99")).Equal(d("499")))
	assert.True(t, p.InvestmentAmount(d("5")).Equal(d("500")))
}

func TestProduct_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Product)
		wantErr bool
		errMsg  string
	}{
		{name: "Valid product", mutate: func(p *Product) {}},
		{
			name:    "Missing name should fail",
			mutate:  func(p *Product) { p.Name = "" },
			wantErr: true,
			errMsg:  "product name cannot be empty",
		},
		{
			name:    "Unknown type should fail",
			mutate:  func(p *Product) { p.Type = "CRYPTO" },
			wantErr: true,
			errMsg:  "invalid investment type",
		},
		{
			name:    "Unknown risk should fail",
			mutate:  func(p *Product) { p.RiskLevel = "EXTREME" },
			wantErr: true,
			errMsg:  "invalid risk level",
		},
		{
			name:    "Zero NAV should fail",
			mutate:  func(p *Product) { p.CurrentUnitValue = d("0") },
			wantErr: true,
			errMsg:  "current unit value must be positive",
		},
		{
			name:    "Negative minimum should fail",
			mutate:  func(p *Product) { p.MinimumInvestment = d("-1") },
			wantErr: true,
			errMsg:  "minimum investment cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProduct("100")
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.errMsg, err.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
