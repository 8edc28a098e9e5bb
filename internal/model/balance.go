package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Balance of one product on one day. Closing = Opening + Increase - Decrease.
type Balance struct {
	ProductID uuid.UUID       `json:"product_id"`
	Day       string          `json:"day"`
	Opening   decimal.Decimal `json:"opening"`
	Increase  decimal.Decimal `json:"increase"`
	Decrease  decimal.Decimal `json:"decrease"`
	Closing   decimal.Decimal `json:"closing"`
}

// BalanceFromEntry derives the balance of the entry's day. A nil entry is
// the zero balance.
func BalanceFromEntry(productID uuid.UUID, day string, e *LedgerEntry) Balance {
	b := Balance{ProductID: productID, Day: day}
	if e == nil {
		return b
	}
	b.Opening = e.Qty
	b.Increase = e.Increase
	b.Decrease = e.Decrease
	b.Closing = e.Closing()
	return b
}

// ProductBalance is a product enriched with its balance. When the ledger
// lookup failed Available is false and Error says why.
type ProductBalance struct {
	Product
	StoreName string          `json:"store_name"`
	UnitName  string          `json:"unit_name"`
	Opening   decimal.Decimal `json:"opening"`
	Increase  decimal.Decimal `json:"increase"`
	Decrease  decimal.Decimal `json:"decrease"`
	Closing   decimal.Decimal `json:"closing"`
	Available bool            `json:"available"`
	Error     string          `json:"error,omitempty"`
}

// TransactionTotals are the cumulative movements of a product up to and
// including Day, plus the movements of Day itself.
type TransactionTotals struct {
	ProductID   uuid.UUID       `json:"product_id"`
	Day         string          `json:"day"`
	Increase    decimal.Decimal `json:"increase"`
	Decrease    decimal.Decimal `json:"decrease"`
	Balance     decimal.Decimal `json:"balance"`
	DayIncrease decimal.Decimal `json:"day_increase"`
	DayDecrease decimal.Decimal `json:"day_decrease"`
}

// LedgerSums are totals over a set of ledger rows.
type LedgerSums struct {
	Increase decimal.Decimal
	Decrease decimal.Decimal
}

// DailyMovement is the stock movement of all products on one day.
type DailyMovement struct {
	Day      string          `json:"date"`
	Inbound  decimal.Decimal `json:"inbound"`
	Outbound decimal.Decimal `json:"outbound"`
}
