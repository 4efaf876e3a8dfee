// Package notify persists user notifications and fans them out to open
// sockets and the Redis channel of the recipient.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/store"
)

type Service struct {
	Store store.Notifications
	Hub   *realtime.Hub
	RDB   *redis.Client
	Log   *slog.Logger
}

func New(s store.Notifications, hub *realtime.Hub, rdb *redis.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Store: s, Hub: hub, RDB: rdb, Log: logger.With("component", "notify")}
}

// Event is the frame pushed over websockets and Redis.
type Event struct {
	Type string               `json:"type"`
	Data *models.Notification `json:"data"`
}

// Notify stores n and pushes it. Only the store write can fail the call;
// push failures are logged.
func (s *Service) Notify(ctx context.Context, n *models.Notification) error {
	if err := s.Store.CreateNotification(ctx, n); err != nil {
		return err
	}

	ev := Event{Type: "notification", Data: n}
	if s.Hub != nil {
		s.Hub.SendToUser(n.UserID, ev)
	}
	if s.RDB != nil {
		payload, err := json.Marshal(ev)
		if err != nil {
			return nil
		}
		channel := realtime.NotificationChannel(n.UserID.String())
		if err := s.RDB.Publish(ctx, channel, payload).Err(); err != nil {
			s.Log.Warn("redis publish failed", "channel", channel, "err", err)
		}
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("notification not found")
	}
	return apperr.Persistence(err)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page store.Page) ([]models.Notification, int64, error) {
	f := store.NotificationFilter{UserID: userID, Page: page}
	if unreadOnly {
		unread := false
		f.IsRead = &unread
	}
	items, total, err := s.Store.ListNotifications(ctx, f)
	if err != nil {
		return nil, 0, apperr.Persistence(err)
	}
	return items, total, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.Store.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return 0, apperr.Persistence(err)
	}
	return n, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.Store.MarkNotificationRead(ctx, userID, id); err != nil {
		return notFound(err)
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.Store.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return 0, apperr.Persistence(err)
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.Store.DeleteNotification(ctx, userID, id); err != nil {
		return notFound(err)
	}
	return nil
}

func (s *Service) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.Store.DeleteNotifications(ctx, userID)
	if err != nil {
		return 0, apperr.Persistence(err)
	}
	return n, nil
}
