package app

import (
	"context"
	"fmt"
	"time"

	"tarasamar/internal/domain"
)

const notificationLimit = 10

type Inbox struct {
	Items  []domain.Notification `json:"items"`
	Unread int                   `json:"unread"`
}

type NotificationService struct {
	base
	notes domain.NotificationRepository
}

func NewNotificationService(notes domain.NotificationRepository, cache domain.Cache, cacheTTL time.Duration, opts ...Option) *NotificationService {
	return &NotificationService{base: newBase(cache, cacheTTL, opts), notes: notes}
}

func (s *NotificationService) List(ctx context.Context, email string) ([]domain.Notification, error) {
	if email == "" {
		return []domain.Notification{}, nil
	}
	return cached(ctx, s.base, notificationsKey(email), func() ([]domain.Notification, error) {
		return s.notes.ListNotifications(ctx, email, notificationLimit)
	})
}

// Inbox is List plus the derived unread count.
func (s *NotificationService) Inbox(ctx context.Context, caller domain.User) (Inbox, error) {
	items, err := s.List(ctx, caller.Email)
	if err != nil {
		return Inbox{}, err
	}
	return Inbox{Items: items, Unread: domain.UnreadCount(items)}, nil
}

// MarkRead sets read_at once. Marking an already-read notification is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, caller domain.User, id string) (domain.Notification, error) {
	n, err := s.notes.GetNotification(ctx, id)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("get notification %s: %w", id, err)
	}
	if caller.Email == "" || n.Email != caller.Email {
		return domain.Notification{}, domain.ErrForbidden
	}
	if !n.Unread() {
		return n, nil
	}
	now := s.now()
	if err := s.notes.MarkNotificationRead(ctx, id, now); err != nil {
		return domain.Notification{}, fmt.Errorf("mark notification %s read: %w", id, err)
	}
	n.ReadAt = &now
	s.invalidate(ctx, notificationsKey(n.Email))
	return n, nil
}
