package domain

import (
	"context"
	"time"
)

type BookingRepository interface {
	InsertBooking(ctx context.Context, b BookingRequest) error
	GetBooking(ctx context.Context, id string) (BookingRequest, error)
	UpdateBookingStatus(ctx context.Context, id string, status BookingStatus, at time.Time) error
	ListBookingsByEmail(ctx context.Context, email string, limit int) ([]BookingRequest, error)
	ListBookings(ctx context.Context, limit int) ([]BookingRequest, error)
}

// ActivityLogRepository is append-only.
type ActivityLogRepository interface {
	InsertActivity(ctx context.Context, e ActivityLogEntry) error
	ListActivity(ctx context.Context, q ActivityQuery) ([]ActivityLogEntry, error)
}

type NotificationRepository interface {
	InsertNotification(ctx context.Context, n Notification) error
	GetNotification(ctx context.Context, id string) (Notification, error)
	MarkNotificationRead(ctx context.Context, id string, at time.Time) error
	ListNotifications(ctx context.Context, email string, limit int) ([]Notification, error)
}

type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (Session, error)
	SignUp(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
