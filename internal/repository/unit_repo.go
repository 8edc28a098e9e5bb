package repository

import (
	"context"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UnitRepository interface {
	Create(ctx context.Context, unit *model.Unit) error
	FindAll(ctx context.Context) ([]model.Unit, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Unit, error)
	Update(ctx context.Context, id uuid.UUID, upd model.UnitUpdate) (*model.Unit, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type unitRepo struct {
	db *gorm.DB
}

func NewUnitRepo(db *gorm.DB) UnitRepository {
	return &unitRepo{db}
}

func (r *unitRepo) Create(ctx context.Context, unit *model.Unit) error {
	return storeErr("unitRepo.Create", r.db.WithContext(ctx).Create(unit).Error)
}

func (r *unitRepo) FindAll(ctx context.Context) ([]model.Unit, error) {
	var units []model.Unit
	err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&units).Error
	return units, storeErr("unitRepo.FindAll", err)
}

func (r *unitRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Unit, error) {
	var unit model.Unit
	if err := r.db.WithContext(ctx).First(&unit, "id = ?", id).Error; err != nil {
		return nil, storeErr("unitRepo.FindByID", err)
	}
	return &unit, nil
}

func (r *unitRepo) Update(ctx context.Context, id uuid.UUID, upd model.UnitUpdate) (*model.Unit, error) {
	var unit model.Unit
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&unit, "id = ?", id).Error; err != nil {
			return err
		}
		upd.Apply(&unit)
		return tx.Model(&unit).Select("name", "description", "updated_at").Updates(&unit).Error
	})
	if err != nil {
		return nil, storeErr("unitRepo.Update", err)
	}
	return &unit, nil
}

func (r *unitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Unit{}, "id = ?", id)
	if res.Error != nil {
		return storeErr("unitRepo.Delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("unitRepo.Delete", "unit %s not found", id)
	}
	return nil
}

func (r *unitRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Unit{}).Count(&n).Error
	return n, storeErr("unitRepo.Count", err)
}
