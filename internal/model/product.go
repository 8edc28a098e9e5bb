package model

import "github.com/google/uuid"

type Product struct {
	BaseModel
	Name        string    `gorm:"type:varchar(255);not null" json:"name" validate:"required,max=255"`
	StoreID     uuid.UUID `gorm:"type:varchar(36);not null;index" json:"store_id" validate:"uuid_required"`
	UnitID      uuid.UUID `gorm:"type:varchar(36);not null;index" json:"unit_id" validate:"uuid_required"`
	CreatedDate *string   `gorm:"type:varchar(10)" json:"created_date,omitempty" validate:"omitempty,isoday"`
	ExpiryDate  *string   `gorm:"type:varchar(10)" json:"expiry_date,omitempty" validate:"omitempty,isoday"`
	Description string    `gorm:"type:text" json:"description" validate:"max=2000"`
}

// ProductUpdate lists the mutable fields of a Product. Nil means unchanged.
type ProductUpdate struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=255"`
	StoreID     *uuid.UUID `json:"store_id"`
	UnitID      *uuid.UUID `json:"unit_id"`
	CreatedDate *string    `json:"created_date" validate:"omitempty,isoday"`
	ExpiryDate  *string    `json:"expiry_date" validate:"omitempty,isoday"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
}

func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.StoreID != nil {
		p.StoreID = *u.StoreID
	}
	if u.UnitID != nil {
		p.UnitID = *u.UnitID
	}
	if u.CreatedDate != nil {
		p.CreatedDate = u.CreatedDate
	}
	if u.ExpiryDate != nil {
		p.ExpiryDate = u.ExpiryDate
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
}
