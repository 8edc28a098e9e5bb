package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageLimit = 5
	MaxPageLimit     = 100
)

// HistoryFilter selects ledger rows for the paginated history view.
// From and To are inclusive ISO days; Search is a substring of the day.
type HistoryFilter struct {
	ProductID *uuid.UUID
	From      string
	To        string
	Search    string
	Limit     int
	Offset    int
}

// HistoryPage is one page of ledger rows, newest day first.
type HistoryPage struct {
	Items       []LedgerEntry   `json:"items"`
	Total       int64           `json:"total"`
	TotalPages  int             `json:"total_pages"`
	Limit       int             `json:"limit"`
	Offset      int             `json:"offset"`
	SumIncrease decimal.Decimal `json:"sum_increase"`
	SumDecrease decimal.Decimal `json:"sum_decrease"`
	SumBalance  decimal.Decimal `json:"sum_balance"`
}

// TotalPages is ceil(total/limit); zero when limit is not positive.
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
