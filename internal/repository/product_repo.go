package repository

import (
	"context"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByStore(ctx context.Context, storeID uuid.UUID) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	Update(ctx context.Context, id uuid.UUID, upd model.ProductUpdate) (*model.Product, error)
	// Delete removes the product together with all of its ledger rows.
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	CountByStore(ctx context.Context, storeID uuid.UUID) (int64, error)
	CountByUnit(ctx context.Context, unitID uuid.UUID) (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return storeErr("productRepo.Create", r.db.WithContext(ctx).Create(product).Error)
}

// FindAll returns products in creation order, which is the scan order
// balance listings preserve.
func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&products).Error
	return products, storeErr("productRepo.FindAll", err)
}

func (r *productRepo) FindByStore(ctx context.Context, storeID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at ASC, id ASC").
		Find(&products).Error
	return products, storeErr("productRepo.FindByStore", err)
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, storeErr("productRepo.FindByID", err)
	}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, id uuid.UUID, upd model.ProductUpdate) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			return err
		}
		upd.Apply(&product)
		return tx.Model(&product).
			Select("name", "store_id", "unit_id", "created_date", "expiry_date", "description", "updated_at").
			Updates(&product).Error
	})
	if err != nil {
		return nil, storeErr("productRepo.Update", err)
	}
	return &product, nil
}

// Delete removes the product and its ledger rows in one transaction.
func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("productRepo.Delete", "product %s not found", id)
		}
		return tx.Where("product_id = ?", id).Delete(&model.LedgerEntry{}).Error
	})
	if apperror.KindOf(err) == apperror.KindNotFound {
		return err
	}
	return storeErr("productRepo.Delete", err)
}

func (r *productRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&n).Error
	return n, storeErr("productRepo.Count", err)
}

func (r *productRepo) CountByStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Where("store_id = ?", storeID).Count(&n).Error
	return n, storeErr("productRepo.CountByStore", err)
}

func (r *productRepo) CountByUnit(ctx context.Context, unitID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Where("unit_id = ?", unitID).Count(&n).Error
	return n, storeErr("productRepo.CountByUnit", err)
}
