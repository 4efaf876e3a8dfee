// Package workflow owns the Project → Proposal → Contract → Review lifecycle.
// Every multi-record change runs inside one store transaction; notifications
// raised by a change are dispatched only after that transaction commits.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/store"
)

// Notifier delivers a notification to its recipient. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification) error
}

type Engine struct {
	store    store.Store
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

func New(s store.Store, notifier Notifier, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:    s,
		notifier: notifier,
		log:      logger.With("component", "workflow"),
		now:      time.Now,
	}
}

type outbox []*models.Notification

func (o *outbox) add(userID uuid.UUID, typ models.NotificationType, title, message, link string) {
	*o = append(*o, &models.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		Link:    link,
	})
}

// atomically runs fn in a transaction and dispatches what it queued once the
// transaction has committed.
func (e *Engine) atomically(ctx context.Context, fn func(tx store.Store, out *outbox) error) error {
	var out outbox
	err := e.store.Transaction(ctx, func(tx store.Store) error {
		out = out[:0]
		return fn(tx, &out)
	})
	if err != nil {
		return apperr.Persistence(err)
	}
	e.dispatch(ctx, out)
	return nil
}

func (e *Engine) dispatch(ctx context.Context, out outbox) {
	if e.notifier == nil {
		return
	}
	for _, n := range out {
		if err := e.notifier.Notify(ctx, n); err != nil {
			e.log.Warn("notification dispatch failed",
				"user_id", n.UserID, "type", n.Type, "err", err)
		}
	}
}

// lookup converts a store read error into the engine's taxonomy.
func lookup(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(what + " not found")
	}
	return apperr.Persistence(err)
}

// write converts a store write error; duplicates become conflicts.
func write(err error, conflict string) error {
	if errors.Is(err, store.ErrDuplicate) {
		return apperr.Conflict(conflict)
	}
	return apperr.Persistence(err)
}

func jsonList(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return datatypes.JSON(b)
}
