package grpc

import "google.golang.org/protobuf/types/known/timestamppb"

// Decimal values travel as strings so no precision is lost on the wire.

// Holding is the valuation view of one holding
type Holding struct {
	HoldingId        string `json:"holding_id"`
	ProductId        int64  `json:"product_id"`
	ProductName      string `json:"product_name"`
	Type             string `json:"type"`
	RiskLevel        string `json:"risk_level"`
	UnitsOwned       string `json:"units_owned"`
	AvgPurchasePrice string `json:"avg_purchase_price"`
	CurrentUnitValue string `json:"current_unit_value"`
	InvestedValue    string `json:"invested_value"`
	CurrentValue     string `json:"current_value"`
	AbsoluteReturn   string `json:"absolute_return"`
	PercentageReturn string `json:"percentage_return"`
}

type GetPortfolioRequest struct{}

type GetPortfolioResponse struct {
	Holdings           []*Holding `json:"holdings"`
	TotalInvestedValue string     `json:"total_invested_value"`
	TotalCurrentValue  string     `json:"total_current_value"`
}

type BuyInvestmentRequest struct {
	ProductId int64  `json:"product_id"`
	Units     string `json:"units"`
}

type BuyInvestmentResponse struct {
	Holding *Holding `json:"holding"`
}

type SellInvestmentRequest struct {
	ProductId int64  `json:"product_id"`
	Units     string `json:"units"`
}

type SellInvestmentResponse struct {
	Holding *Holding `json:"holding"`
}

type ListTransactionsRequest struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

// Transaction is one ledger record
type Transaction struct {
	TransactionId      string                 `json:"transaction_id"`
	ProductId          int64                  `json:"product_id"`
	ProductName        string                 `json:"product_name"`
	Type               string                 `json:"type"`
	Units              string                 `json:"units"`
	UnitValueAtTxn     string                 `json:"unit_value_at_txn"`
	Amount             string                 `json:"amount"`
	FormattedAmount    string                 `json:"formatted_amount"`
	Timestamp          *timestamppb.Timestamp `json:"timestamp"`
	FormattedTimestamp string                 `json:"formatted_timestamp"`
}

type ListTransactionsResponse struct {
	Transactions []*Transaction `json:"transactions"`
	TotalCount   int64          `json:"total_count"`
}

type GetHoldingRequest struct {
	HoldingId string `json:"holding_id"`
}

type GetHoldingResponse struct {
	Holding *Holding `json:"holding"`
}

type GetSummaryRequest struct{}

type GetSummaryResponse struct {
	TotalInvestedValue    string `json:"total_invested_value"`
	TotalCurrentValue     string `json:"total_current_value"`
	TotalAbsoluteReturn   string `json:"total_absolute_return"`
	TotalPercentageReturn string `json:"total_percentage_return"`
	HoldingCount          int64  `json:"holding_count"`
}

type AllocationSlice struct {
	Key        string `json:"key"`
	Value      string `json:"value"`
	Percentage string `json:"percentage"`
}

type GetAllocationRequest struct{}

type GetAllocationResponse struct {
	TotalCurrentValue string             `json:"total_current_value"`
	ByType            []*AllocationSlice `json:"by_type"`
	ByRiskLevel       []*AllocationSlice `json:"by_risk_level"`
}

type GetGainsRequest struct{}

type Gain struct {
	HoldingId        string `json:"holding_id"`
	ProductId        int64  `json:"product_id"`
	ProductName      string `json:"product_name"`
	InvestedValue    string `json:"invested_value"`
	CurrentValue     string `json:"current_value"`
	AbsoluteReturn   string `json:"absolute_return"`
	PercentageReturn string `json:"percentage_return"`
}

type GetGainsResponse struct {
	Gains []*Gain `json:"gains"`
}
