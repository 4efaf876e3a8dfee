// Package messaging stores direct messages between users and pushes each new
// message to the receiver's open sockets and Redis channel.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/store"
)

type Store interface {
	store.Messages
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

type Service struct {
	Store Store
	Hub   *realtime.Hub
	RDB   *redis.Client
	Log   *slog.Logger
}

func New(s Store, hub *realtime.Hub, rdb *redis.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Store: s, Hub: hub, RDB: rdb, Log: logger.With("component", "messaging")}
}

// Event is the socket frame for a received message.
type Event struct {
	Type string          `json:"type"`
	Data *models.Message `json:"data"`
}

type SendInput struct {
	ReceiverID uuid.UUID
	ProjectID  *uuid.UUID
	Content    string
}

func lookup(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(what + " not found")
	}
	return apperr.Persistence(err)
}

// Send stores the message and pushes it to the receiver.
func (s *Service) Send(ctx context.Context, senderID uuid.UUID, in SendInput) (*models.Message, error) {
	content := strings.TrimSpace(in.Content)
	switch {
	case content == "":
		return nil, apperr.Validation("content is required")
	case utf8.RuneCountInString(content) > models.MessageMaxLen:
		return nil, apperr.Validation("content is too long")
	case in.ReceiverID == senderID:
		return nil, apperr.Validation("cannot send a message to yourself")
	}

	sender, err := s.Store.GetUser(ctx, senderID)
	if err != nil {
		return nil, lookup(err, "sender")
	}
	receiver, err := s.Store.GetUser(ctx, in.ReceiverID)
	if err != nil {
		return nil, lookup(err, "receiver")
	}
	if in.ProjectID != nil {
		if _, err := s.Store.GetProject(ctx, *in.ProjectID); err != nil {
			return nil, lookup(err, "project")
		}
	}

	m := &models.Message{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		ProjectID:  in.ProjectID,
		Content:    content,
	}
	if err := s.Store.CreateMessage(ctx, m); err != nil {
		return nil, apperr.Persistence(err)
	}
	m.Sender = sender
	s.push(ctx, m)
	s.Log.Info("message sent", "message_id", m.ID, "receiver_id", m.ReceiverID)
	return m, nil
}

func (s *Service) push(ctx context.Context, m *models.Message) {
	ev := Event{Type: "message", Data: m}
	if s.Hub != nil {
		s.Hub.SendToUser(m.ReceiverID, ev)
	}
	if s.RDB == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	channel := realtime.MessageChannel(m.ReceiverID.String())
	if err := s.RDB.Publish(ctx, channel, payload).Err(); err != nil {
		s.Log.Warn("redis publish failed", "channel", channel, "err", err)
	}
}

// List returns the caller's messages, newest first. withUserID narrows it to
// one thread.
func (s *Service) List(ctx context.Context, userID uuid.UUID, withUserID, projectID *uuid.UUID, page store.Page) ([]models.Message, int64, error) {
	items, total, err := s.Store.ListMessages(ctx, store.MessageFilter{
		UserID:     userID,
		WithUserID: withUserID,
		ProjectID:  projectID,
		Page:       page,
	})
	if err != nil {
		return nil, 0, apperr.Persistence(err)
	}
	return items, total, nil
}

func (s *Service) Conversations(ctx context.Context, userID uuid.UUID) ([]store.Conversation, error) {
	out, err := s.Store.ListConversations(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return out, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.Store.CountUnreadMessages(ctx, userID)
	if err != nil {
		return 0, apperr.Persistence(err)
	}
	return n, nil
}

// MarkRead only works for the receiver; anyone else gets not found.
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) (*models.Message, error) {
	m, err := s.Store.MarkMessageRead(ctx, userID, id)
	if err != nil {
		return nil, lookup(err, "message")
	}
	return m, nil
}

// MarkConversationRead marks everything otherID sent to userID as read.
func (s *Service) MarkConversationRead(ctx context.Context, userID, otherID uuid.UUID) (int64, error) {
	n, err := s.Store.MarkConversationRead(ctx, userID, otherID)
	if err != nil {
		return 0, apperr.Persistence(err)
	}
	return n, nil
}
