package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"tarasamar/internal/app"
	"tarasamar/internal/catalog"
	"tarasamar/internal/domain"
	"tarasamar/internal/storage/memory"
)

var errBoom = errors.New("boom")

var (
	admin = domain.User{ID: "u-admin", Email: "TaraSamar@gmail.com"}
	guest = domain.User{ID: "u-ana", Email: "ana@example.com"}
	authz = app.NewAdminEmails("tarasamar@gmail.com")
)

func ptr[T any](v T) *T { return &v }

// steppingClock advances one second per call so ordering is deterministic.
func steppingClock() func() time.Time {
	var n atomic.Int64
	start := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time { return start.Add(time.Duration(n.Add(1)) * time.Second) }
}

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("id-%04d", n.Add(1)) }
}

func opts() []app.Option {
	return []app.Option{app.WithClock(steppingClock()), app.WithIDs(sequentialIDs())}
}

func anaForm() domain.BookingForm {
	return domain.BookingForm{
		FullName:     "Ana Cruz",
		Email:        "ana@example.com",
		Phone:        "+639171234567",
		Guests:       ptr(2),
		SelectedDate: ptr("2025-06-01"),
		PackageID:    ptr(1),
	}
}

/********** failure-injecting stores **********/

type failingLogs struct{ *memory.Store }

func (failingLogs) InsertActivity(context.Context, domain.ActivityLogEntry) error { return errBoom }

type failingNotes struct{ *memory.Store }

func (failingNotes) InsertNotification(context.Context, domain.Notification) error { return errBoom }

type failingBookings struct{ *memory.Store }

func (failingBookings) InsertBooking(context.Context, domain.BookingRequest) error { return errBoom }

func (failingBookings) UpdateBookingStatus(context.Context, string, domain.BookingStatus, time.Time) error {
	return errBoom
}

// countingStore records every store call.
type countingStore struct {
	*memory.Store
	calls atomic.Int64
}

func (c *countingStore) ListActivity(ctx context.Context, q domain.ActivityQuery) ([]domain.ActivityLogEntry, error) {
	c.calls.Add(1)
	return c.Store.ListActivity(ctx, q)
}

func (c *countingStore) ListBookings(ctx context.Context, limit int) ([]domain.BookingRequest, error) {
	c.calls.Add(1)
	return c.Store.ListBookings(ctx, limit)
}

func (c *countingStore) GetBooking(ctx context.Context, id string) (domain.BookingRequest, error) {
	c.calls.Add(1)
	return c.Store.GetBooking(ctx, id)
}

func (c *countingStore) UpdateBookingStatus(ctx context.Context, id string, s domain.BookingStatus, at time.Time) error {
	c.calls.Add(1)
	return c.Store.UpdateBookingStatus(ctx, id, s, at)
}

/********** cache **********/

type mapCache struct {
	mu   sync.Mutex
	m    map[string][]byte
	hits int
}

func newMapCache() *mapCache { return &mapCache{m: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.m[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dst)
}

func (c *mapCache) Set(_ context.Context, key string, v any, _ int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.m[key] = b
	c.mu.Unlock()
	return nil
}

func (c *mapCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
	return nil
}

func (c *mapCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.m[key]
	return ok
}

/********** wiring **********/

type fixture struct {
	store    *memory.Store
	bookings *app.BookingService
	queries  *app.QueryService
	notes    *app.NotificationService
	admin    *app.AdminService
}

func newFixture(cache domain.Cache) fixture {
	st := memory.New()
	o := opts()
	return fixture{
		store:    st,
		bookings: app.NewBookingService(st, st, st, catalog.MustLoad(), authz, cache, time.Minute, o...),
		queries:  app.NewQueryService(st, cache, time.Minute, o...),
		notes:    app.NewNotificationService(st, cache, time.Minute, o...),
		admin:    app.NewAdminService(st, st, authz),
	}
}
