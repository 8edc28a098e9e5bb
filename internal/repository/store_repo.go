package repository

import (
	"context"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StoreRepository interface {
	Create(ctx context.Context, store *model.Store) error
	FindAll(ctx context.Context) ([]model.Store, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error)
	Update(ctx context.Context, id uuid.UUID, upd model.StoreUpdate) (*model.Store, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type storeRepo struct {
	db *gorm.DB
}

func NewStoreRepo(db *gorm.DB) StoreRepository {
	return &storeRepo{db}
}

func (r *storeRepo) Create(ctx context.Context, store *model.Store) error {
	return storeErr("storeRepo.Create", r.db.WithContext(ctx).Create(store).Error)
}

func (r *storeRepo) FindAll(ctx context.Context) ([]model.Store, error) {
	var stores []model.Store
	err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&stores).Error
	return stores, storeErr("storeRepo.FindAll", err)
}

func (r *storeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	var store model.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, storeErr("storeRepo.FindByID", err)
	}
	return &store, nil
}

func (r *storeRepo) Update(ctx context.Context, id uuid.UUID, upd model.StoreUpdate) (*model.Store, error) {
	var store model.Store
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&store, "id = ?", id).Error; err != nil {
			return err
		}
		upd.Apply(&store)
		return tx.Model(&store).Select("name", "description", "updated_at").Updates(&store).Error
	})
	if err != nil {
		return nil, storeErr("storeRepo.Update", err)
	}
	return &store, nil
}

func (r *storeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Store{}, "id = ?", id)
	if res.Error != nil {
		return storeErr("storeRepo.Delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("storeRepo.Delete", "store %s not found", id)
	}
	return nil
}

func (r *storeRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Store{}).Count(&n).Error
	return n, storeErr("storeRepo.Count", err)
}
