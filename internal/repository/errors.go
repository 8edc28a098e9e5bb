package repository

import (
	"errors"

	"go-inventory-ledger/internal/apperror"

	"gorm.io/gorm"
)

// storeErr maps a GORM error to the application error kinds.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(op, "record not found")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Invalid(op, "record already exists")
	}
	return apperror.Unavailable(op, err)
}
