package service

import (
	"time"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/ws"
	"go-inventory-ledger/pkg/calendar"
	"go-inventory-ledger/pkg/validator"
)

// Notifier pushes events to connected clients. *ws.Hub implements it.
type Notifier interface {
	Publish(event ws.Event)
}

func notify(n Notifier, event ws.Event) {
	if n != nil {
		n.Publish(event)
	}
}

// Clock yields today's calendar day in the configured location.
type Clock struct {
	Now      calendar.Clock
	Location *time.Location
}

func (c Clock) Today() string {
	now := c.Now
	if now == nil {
		now = time.Now
	}
	return calendar.Day(now(), c.Location)
}

// resolveDay returns today for an empty day and rejects malformed ones.
func (c Clock) resolveDay(op, day string) (string, error) {
	if day == "" {
		return c.Today(), nil
	}
	if !calendar.Valid(day) {
		return "", apperror.Invalid(op, "invalid date %q, use YYYY-MM-DD", day)
	}
	return day, nil
}

func validate(op string, data interface{}) error {
	if errs := validator.ValidateStruct(data); len(errs) > 0 {
		return apperror.Invalid(op, "validation failed: %s", validator.Summary(errs))
	}
	return nil
}
