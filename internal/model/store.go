package model

// Store is a physical stock location (warehouse, shop)
type Store struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);not null" json:"name" validate:"required,max=255"`
	Description string `gorm:"type:text" json:"description" validate:"max=2000"`
}

// StoreUpdate lists the mutable fields of a Store. Nil means unchanged.
type StoreUpdate struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

func (u StoreUpdate) Apply(s *Store) {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Description != nil {
		s.Description = *u.Description
	}
}
