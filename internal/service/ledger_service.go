package service

import (
	"context"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/ws"
	"go-inventory-ledger/pkg/calendar"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type LedgerService interface {
	GetTransactionsForProduct(ctx context.Context, productID uuid.UUID, day string) (model.TransactionTotals, error)
	GetFirstTransactionDate(ctx context.Context) (*string, error)
	ListHistory(ctx context.Context, filter model.HistoryFilter) (model.HistoryPage, error)
	AddAdjustment(ctx context.Context, productID uuid.UUID, adj model.Adjustment) (*model.LedgerEntry, error)
	GetEntry(ctx context.Context, id uuid.UUID) (*model.LedgerEntry, error)
	UpdateEntry(ctx context.Context, id uuid.UUID, upd model.LedgerEntryUpdate) (*model.LedgerEntry, error)
	DeleteEntry(ctx context.Context, id uuid.UUID) error
}

type ledgerService struct {
	productRepo repository.ProductRepository
	ledgerRepo  repository.LedgerRepository
	notifier    Notifier
	clock       Clock
	log         logrus.FieldLogger
}

func NewLedgerService(pRepo repository.ProductRepository, lRepo repository.LedgerRepository, notifier Notifier, clock Clock, log logrus.FieldLogger) LedgerService {
	return &ledgerService{
		productRepo: pRepo,
		ledgerRepo:  lRepo,
		notifier:    notifier,
		clock:       clock,
		log:         log,
	}
}

func (s *ledgerService) GetTransactionsForProduct(ctx context.Context, productID uuid.UUID, day string) (model.TransactionTotals, error) {
	day, err := s.clock.resolveDay("ledgerService.GetTransactionsForProduct", day)
	if err != nil {
		return model.TransactionTotals{}, err
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return model.TransactionTotals{}, err
	}

	totals := model.TransactionTotals{ProductID: productID, Day: day}
	sums, err := s.ledgerRepo.Totals(ctx, productID, day)
	if err != nil {
		return totals, err
	}
	totals.Increase = sums.Increase
	totals.Decrease = sums.Decrease

	latest, err := s.ledgerRepo.FindLatestOnOrBefore(ctx, productID, day)
	if err != nil {
		return totals, err
	}
	if latest != nil {
		totals.Balance = latest.Closing()
		if latest.Day == day {
			totals.DayIncrease = latest.Increase
			totals.DayDecrease = latest.Decrease
		}
	}
	return totals, nil
}

func (s *ledgerService) GetFirstTransactionDate(ctx context.Context) (*string, error) {
	day, ok, err := s.ledgerRepo.FirstDay(ctx)
	if err != nil || !ok {
		return nil, err
	}
	return &day, nil
}

func (s *ledgerService) ListHistory(ctx context.Context, filter model.HistoryFilter) (model.HistoryPage, error) {
	const op = "ledgerService.ListHistory"
	if filter.Limit <= 0 {
		filter.Limit = model.DefaultPageLimit
	}
	if filter.Limit > model.MaxPageLimit {
		filter.Limit = model.MaxPageLimit
	}
	if filter.Offset < 0 {
		return model.HistoryPage{}, apperror.Invalid(op, "offset must not be negative")
	}
	if filter.From != "" && !calendar.Valid(filter.From) {
		return model.HistoryPage{}, apperror.Invalid(op, "invalid from date %q, use YYYY-MM-DD", filter.From)
	}
	if filter.To != "" && !calendar.Valid(filter.To) {
		return model.HistoryPage{}, apperror.Invalid(op, "invalid to date %q, use YYYY-MM-DD", filter.To)
	}
	if filter.From != "" && filter.To != "" && filter.From > filter.To {
		return model.HistoryPage{}, apperror.Invalid(op, "from date is after to date")
	}

	items, total, sums, err := s.ledgerRepo.Page(ctx, filter)
	if err != nil {
		return model.HistoryPage{}, err
	}
	if items == nil {
		items = []model.LedgerEntry{}
	}
	return model.HistoryPage{
		Items:       items,
		Total:       total,
		TotalPages:  model.TotalPages(total, filter.Limit),
		Limit:       filter.Limit,
		Offset:      filter.Offset,
		SumIncrease: sums.Increase,
		SumDecrease: sums.Decrease,
		SumBalance:  sums.Increase.Sub(sums.Decrease),
	}, nil
}

// AddAdjustment adds a movement to the product's row of adj.Day. A missing
// row is created with the closing of the latest earlier row as its opening.
func (s *ledgerService) AddAdjustment(ctx context.Context, productID uuid.UUID, adj model.Adjustment) (*model.LedgerEntry, error) {
	const op = "ledgerService.AddAdjustment"
	if err := validate(op, &adj); err != nil {
		return nil, err
	}
	if adj.Increase.IsNegative() || adj.Decrease.IsNegative() {
		return nil, apperror.Invalid(op, "increase and decrease must not be negative")
	}
	if adj.Increase.IsZero() && adj.Decrease.IsZero() {
		return nil, apperror.Invalid(op, "either increase or decrease is required")
	}
	today := s.clock.Today()
	day := adj.Day
	if day == "" {
		day = today
	}
	if day > today {
		return nil, apperror.Invalid(op, "cannot record movements after %s", today)
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	opening := decimal.Zero
	yesterday, err := calendar.Prev(day)
	if err != nil {
		return nil, apperror.Invalid(op, "invalid date %q", day)
	}
	prev, err := s.ledgerRepo.FindLatestOnOrBefore(ctx, productID, yesterday)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		opening = prev.Closing()
	}

	entry, err := s.ledgerRepo.AddMovement(ctx, productID, day, opening, adj.Increase, adj.Decrease, adj.Description)
	if err != nil {
		return nil, err
	}

	notify(s.notifier, ws.Event{
		Type:    ws.TypeStockUpdate,
		Action:  ws.ActionBalanceUpdated,
		Data:    model.BalanceFromEntry(productID, day, entry),
		Message: "balance updated for " + day,
	})
	s.log.WithFields(logrus.Fields{
		"product_id": productID,
		"day":        day,
		"increase":   adj.Increase.String(),
		"decrease":   adj.Decrease.String(),
	}).Info("adjustment recorded")
	return entry, nil
}

func (s *ledgerService) GetEntry(ctx context.Context, id uuid.UUID) (*model.LedgerEntry, error) {
	return s.ledgerRepo.FindByID(ctx, id)
}

func (s *ledgerService) UpdateEntry(ctx context.Context, id uuid.UUID, upd model.LedgerEntryUpdate) (*model.LedgerEntry, error) {
	const op = "ledgerService.UpdateEntry"
	if err := validate(op, &upd); err != nil {
		return nil, err
	}
	if (upd.Increase != nil && upd.Increase.IsNegative()) || (upd.Decrease != nil && upd.Decrease.IsNegative()) {
		return nil, apperror.Invalid(op, "increase and decrease must not be negative")
	}
	entry, err := s.ledgerRepo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	notify(s.notifier, ws.Event{
		Type:   ws.TypeStockUpdate,
		Action: ws.ActionEntryUpdated,
		Data:   entry,
	})
	return entry, nil
}

func (s *ledgerService) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	if err := s.ledgerRepo.Delete(ctx, id); err != nil {
		return err
	}
	notify(s.notifier, ws.Event{
		Type:   ws.TypeStockUpdate,
		Action: ws.ActionEntryDeleted,
		Data:   map[string]uuid.UUID{"id": id},
	})
	return nil
}
