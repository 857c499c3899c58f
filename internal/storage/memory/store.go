// Package memory is a process-local implementation of the booking, activity
// and notification stores. It backs STORAGE=memory for local runs and the
// service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tarasamar/internal/domain"
)

type Store struct {
	mu            sync.RWMutex
	bookings      map[string]domain.BookingRequest
	activity      []domain.ActivityLogEntry
	notifications map[string]domain.Notification
}

func New() *Store {
	return &Store{
		bookings:      map[string]domain.BookingRequest{},
		notifications: map[string]domain.Notification{},
	}
}

/********** bookings **********/

func (s *Store) InsertBooking(ctx context.Context, b domain.BookingRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = b
	return nil
}

func (s *Store) GetBooking(ctx context.Context, id string) (domain.BookingRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return domain.BookingRequest{}, domain.ErrNotFound
	}
	return b, nil
}

func (s *Store) UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Status = status
	b.UpdatedAt = at
	s.bookings[id] = b
	return nil
}

func (s *Store) ListBookingsByEmail(ctx context.Context, email string, limit int) ([]domain.BookingRequest, error) {
	return s.listBookings(func(b domain.BookingRequest) bool { return b.Email == email }, limit), nil
}

func (s *Store) ListBookings(ctx context.Context, limit int) ([]domain.BookingRequest, error) {
	return s.listBookings(func(domain.BookingRequest) bool { return true }, limit), nil
}

func (s *Store) listBookings(keep func(domain.BookingRequest) bool, limit int) []domain.BookingRequest {
	s.mu.RLock()
	out := make([]domain.BookingRequest, 0, len(s.bookings))
	for _, b := range s.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return capAt(out, limit)
}

/********** activity **********/

func (s *Store) InsertActivity(ctx context.Context, e domain.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity = append(s.activity, e)
	return nil
}

func (s *Store) ListActivity(ctx context.Context, q domain.ActivityQuery) ([]domain.ActivityLogEntry, error) {
	s.mu.RLock()
	out := make([]domain.ActivityLogEntry, 0, len(s.activity))
	for _, e := range s.activity {
		if q.EventType == "" || e.EventType == q.EventType {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return capAt(out, q.Limit), nil
}

/********** notifications **********/

func (s *Store) InsertNotification(ctx context.Context, n domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ID] = n
	return nil
}

func (s *Store) GetNotification(ctx context.Context, id string) (domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[id]
	if !ok {
		return domain.Notification{}, domain.ErrNotFound
	}
	return n, nil
}

// MarkNotificationRead only sets read_at when it is still unset.
func (s *Store) MarkNotificationRead(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return domain.ErrNotFound
	}
	if n.ReadAt == nil {
		t := at
		n.ReadAt = &t
		s.notifications[id] = n
	}
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, email string, limit int) ([]domain.Notification, error) {
	s.mu.RLock()
	out := make([]domain.Notification, 0)
	for _, n := range s.notifications {
		if n.Email == email {
			out = append(out, n)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return capAt(out, limit), nil
}

/********** helpers **********/

// newerFirst orders by created_at DESC, id DESC, matching the SQL stores.
func newerFirst(a, b time.Time, aID, bID string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return strings.Compare(aID, bID) > 0
}

func capAt[T any](in []T, limit int) []T {
	if limit > 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}
