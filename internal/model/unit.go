package model

// Unit is a measurement unit (kg, box, piece)
type Unit struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);not null" json:"name" validate:"required,max=100"`
	Description string `gorm:"type:text" json:"description" validate:"max=2000"`
}

type UnitUpdate struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

func (u UnitUpdate) Apply(unit *Unit) {
	if u.Name != nil {
		unit.Name = *u.Name
	}
	if u.Description != nil {
		unit.Description = *u.Description
	}
}
