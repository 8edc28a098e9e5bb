package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntry is the per-day history row of a product.
// Qty is the opening balance of Day; Increase and Decrease accumulate the
// movements recorded on that day. There is at most one row per (ProductID, Day).
type LedgerEntry struct {
	BaseModel
	ProductID   uuid.UUID       `gorm:"type:varchar(36);not null;uniqueIndex:idx_ledger_product_day,priority:1" json:"product_id"`
	Day         string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_ledger_product_day,priority:2;index" json:"day"`
	Qty         decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0" json:"qty"`
	Increase    decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0" json:"increase"`
	Decrease    decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0" json:"decrease"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// Closing is Qty + Increase - Decrease. Negative results are kept as is.
func (e LedgerEntry) Closing() decimal.Decimal {
	return e.Qty.Add(e.Increase).Sub(e.Decrease)
}

// LedgerEntryUpdate lists the fields of an entry a user may edit.
type LedgerEntryUpdate struct {
	Increase    *decimal.Decimal `json:"increase"`
	Decrease    *decimal.Decimal `json:"decrease"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
}

func (u LedgerEntryUpdate) Apply(e *LedgerEntry) {
	if u.Increase != nil {
		e.Increase = *u.Increase
	}
	if u.Decrease != nil {
		e.Decrease = *u.Decrease
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
}

// Adjustment is a stock movement added to the row of Day (today when empty).
type Adjustment struct {
	Day         string          `json:"day" validate:"omitempty,isoday"`
	Increase    decimal.Decimal `json:"increase"`
	Decrease    decimal.Decimal `json:"decrease"`
	Description string          `json:"description" validate:"max=2000"`
}
