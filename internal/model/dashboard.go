package model

import "github.com/shopspring/decimal"

// DashboardStats are the overview counters of one day.
type DashboardStats struct {
	Day           string          `json:"day"`
	TotalProducts int64           `json:"total_products"`
	TotalStores   int64           `json:"total_stores"`
	TotalUnits    int64           `json:"total_units"`
	NegativeStock int             `json:"negative_stock"`
	LowStock      int             `json:"low_stock"`
	DayIncrease   decimal.Decimal `json:"day_increase"`
	DayDecrease   decimal.Decimal `json:"day_decrease"`
}
