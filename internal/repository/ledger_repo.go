package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository persists the per-day history rows. Lookups that may
// legitimately find nothing (a day without a row) return (nil, nil).
type LedgerRepository interface {
	Create(ctx context.Context, entry *model.LedgerEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.LedgerEntry, error)
	FindByProductAndDay(ctx context.Context, productID uuid.UUID, day string) (*model.LedgerEntry, error)
	// FindLatestOnOrBefore returns the row with the greatest day <= day.
	FindLatestOnOrBefore(ctx context.Context, productID uuid.UUID, day string) (*model.LedgerEntry, error)
	ProductIDsForDay(ctx context.Context, day string) ([]uuid.UUID, error)

	// UpsertSnapshot writes {qty, 0, 0} for (productID, day). On conflict only
	// qty is overwritten; movements already recorded on the row are kept.
	UpsertSnapshot(ctx context.Context, productID uuid.UUID, day string, qty decimal.Decimal) error
	// AddMovement adds increase/decrease to the row of (productID, day),
	// creating it with opening qty when it does not exist yet.
	AddMovement(ctx context.Context, productID uuid.UUID, day string, opening, increase, decrease decimal.Decimal, description string) (*model.LedgerEntry, error)
	Update(ctx context.Context, id uuid.UUID, upd model.LedgerEntryUpdate) (*model.LedgerEntry, error)

	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByProductAndDay(ctx context.Context, productID uuid.UUID, day string) error

	// Totals sums increase/decrease over the rows of productID with day <= day.
	Totals(ctx context.Context, productID uuid.UUID, day string) (model.LedgerSums, error)
	FirstDay(ctx context.Context) (string, bool, error)
	Page(ctx context.Context, filter model.HistoryFilter) ([]model.LedgerEntry, int64, model.LedgerSums, error)
	MovementByDay(ctx context.Context, from, to string) ([]model.DailyMovement, error)
}

type ledgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepo(db *gorm.DB) LedgerRepository {
	return &ledgerRepo{db}
}

var productDayConflict = []clause.Column{{Name: "product_id"}, {Name: "day"}}

func (r *ledgerRepo) Create(ctx context.Context, entry *model.LedgerEntry) error {
	err := r.db.WithContext(ctx).Create(entry).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Invalid("ledgerRepo.Create", "entry for product %s on %s already exists", entry.ProductID, entry.Day)
	}
	return storeErr("ledgerRepo.Create", err)
}

func (r *ledgerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.LedgerEntry, error) {
	var entry model.LedgerEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, storeErr("ledgerRepo.FindByID", err)
	}
	return &entry, nil
}

func (r *ledgerRepo) FindByProductAndDay(ctx context.Context, productID uuid.UUID, day string) (*model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND day = ?", productID, day).
		Limit(1).
		Find(&entries).Error
	if err != nil {
		return nil, storeErr("ledgerRepo.FindByProductAndDay", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func (r *ledgerRepo) FindLatestOnOrBefore(ctx context.Context, productID uuid.UUID, day string) (*model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND day <= ?", productID, day).
		Order("day DESC").
		Limit(1).
		Find(&entries).Error
	if err != nil {
		return nil, storeErr("ledgerRepo.FindLatestOnOrBefore", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func (r *ledgerRepo) ProductIDsForDay(ctx context.Context, day string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Where("day = ?", day).
		Pluck("product_id", &ids).Error
	return ids, storeErr("ledgerRepo.ProductIDsForDay", err)
}

func (r *ledgerRepo) UpsertSnapshot(ctx context.Context, productID uuid.UUID, day string, qty decimal.Decimal) error {
	entry := model.LedgerEntry{ProductID: productID, Day: day, Qty: qty}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   productDayConflict,
		DoUpdates: clause.AssignmentColumns([]string{"qty", "updated_at"}),
	}).Create(&entry).Error
	return storeErr("ledgerRepo.UpsertSnapshot", err)
}

func (r *ledgerRepo) AddMovement(ctx context.Context, productID uuid.UUID, day string, opening, increase, decrease decimal.Decimal, description string) (*model.LedgerEntry, error) {
	entry := model.LedgerEntry{
		ProductID:   productID,
		Day:         day,
		Qty:         opening,
		Increase:    increase,
		Decrease:    decrease,
		Description: description,
	}
	// Increments are computed by the database so concurrent adjustments add
	// up. ROUND keeps SQLite, which stores numerics as REAL, at the column scale.
	set := map[string]interface{}{
		"increase":   gorm.Expr("ROUND(ledger_entries.increase + ?, 4)", increase),
		"decrease":   gorm.Expr("ROUND(ledger_entries.decrease + ?, 4)", decrease),
		"updated_at": time.Now(),
	}
	if description != "" {
		set["description"] = description
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   productDayConflict,
		DoUpdates: clause.Assignments(set),
	}).Create(&entry).Error
	if err != nil {
		return nil, storeErr("ledgerRepo.AddMovement", err)
	}
	return r.FindByProductAndDay(ctx, productID, day)
}

func (r *ledgerRepo) Update(ctx context.Context, id uuid.UUID, upd model.LedgerEntryUpdate) (*model.LedgerEntry, error) {
	var entry model.LedgerEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&entry, "id = ?", id).Error; err != nil {
			return err
		}
		upd.Apply(&entry)
		return tx.Model(&entry).Select("increase", "decrease", "description", "updated_at").Updates(&entry).Error
	})
	if err != nil {
		return nil, storeErr("ledgerRepo.Update", err)
	}
	return &entry, nil
}

func (r *ledgerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.LedgerEntry{}, "id = ?", id)
	if res.Error != nil {
		return storeErr("ledgerRepo.Delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("ledgerRepo.Delete", "ledger entry %s not found", id)
	}
	return nil
}

func (r *ledgerRepo) DeleteByProductAndDay(ctx context.Context, productID uuid.UUID, day string) error {
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND day = ?", productID, day).
		Delete(&model.LedgerEntry{}).Error
	return storeErr("ledgerRepo.DeleteByProductAndDay", err)
}

const sumColumns = "ROUND(COALESCE(SUM(increase), 0), 4) AS increase, ROUND(COALESCE(SUM(decrease), 0), 4) AS decrease"

func (r *ledgerRepo) Totals(ctx context.Context, productID uuid.UUID, day string) (model.LedgerSums, error) {
	var sums model.LedgerSums
	err := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Select(sumColumns).
		Where("product_id = ? AND day <= ?", productID, day).
		Scan(&sums).Error
	return sums, storeErr("ledgerRepo.Totals", err)
}

func (r *ledgerRepo) FirstDay(ctx context.Context) (string, bool, error) {
	var days []string
	err := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Order("day ASC").
		Limit(1).
		Pluck("day", &days).Error
	if err != nil {
		return "", false, storeErr("ledgerRepo.FirstDay", err)
	}
	if len(days) == 0 {
		return "", false, nil
	}
	return days[0], true, nil
}

func (r *ledgerRepo) Page(ctx context.Context, filter model.HistoryFilter) ([]model.LedgerEntry, int64, model.LedgerSums, error) {
	var (
		entries []model.LedgerEntry
		total   int64
		sums    model.LedgerSums
	)
	base := func() *gorm.DB {
		return applyHistoryFilter(r.db.WithContext(ctx).Model(&model.LedgerEntry{}), filter)
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, sums, storeErr("ledgerRepo.Page", err)
	}
	err := base().
		Select(sumColumns).
		Scan(&sums).Error
	if err != nil {
		return nil, 0, sums, storeErr("ledgerRepo.Page", err)
	}
	err = base().
		Order("day DESC, created_at ASC, id ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, sums, storeErr("ledgerRepo.Page", err)
	}
	return entries, total, sums, nil
}

func applyHistoryFilter(q *gorm.DB, filter model.HistoryFilter) *gorm.DB {
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.From != "" {
		q = q.Where("day >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("day <= ?", filter.To)
	}
	if filter.Search != "" {
		q = q.Where("day LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(filter.Search)+"%")
	}
	return q
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func (r *ledgerRepo) MovementByDay(ctx context.Context, from, to string) ([]model.DailyMovement, error) {
	var results []model.DailyMovement
	err := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Select(`
			day,
			ROUND(COALESCE(SUM(increase), 0), 4) AS inbound,
			ROUND(COALESCE(SUM(decrease), 0), 4) AS outbound
		`).
		Where("day BETWEEN ? AND ?", from, to).
		Group("day").
		Order("day ASC").
		Scan(&results).Error
	return results, storeErr("ledgerRepo.MovementByDay", err)
}
