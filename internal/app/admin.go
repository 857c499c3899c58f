package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tarasamar/internal/domain"
)

const adminLimit = 100

type DashboardStats struct {
	Total         int `json:"total"`
	SignIns       int `json:"signins"`
	SignUps       int `json:"signups"`
	Bookings      int `json:"bookings"`
	Confirmations int `json:"confirmations"`
}

type Dashboard struct {
	Activity []domain.ActivityLogEntry `json:"activity"`
	Bookings []domain.BookingRequest   `json:"bookings"`
	Stats    DashboardStats            `json:"stats"`
}

// AdminService is the review surface. Every call checks the authorizer
// before touching a store.
type AdminService struct {
	bookings domain.BookingRepository
	logs     domain.ActivityLogRepository
	authz    domain.Authorizer
}

func NewAdminService(bookings domain.BookingRepository, logs domain.ActivityLogRepository, authz domain.Authorizer) *AdminService {
	return &AdminService{bookings: bookings, logs: logs, authz: authz}
}

func (s *AdminService) allowed(u domain.User) bool {
	return s.authz != nil && s.authz.CanAdminister(u)
}

func (s *AdminService) ListActivity(ctx context.Context, caller domain.User, filter string) ([]domain.ActivityLogEntry, error) {
	if !s.allowed(caller) {
		return nil, domain.ErrForbidden
	}
	typ, ok := domain.ParseEventFilter(filter)
	if !ok {
		return nil, fmt.Errorf("%w: unknown event type %q", domain.ErrValidation, filter)
	}
	return s.logs.ListActivity(ctx, domain.ActivityQuery{EventType: typ, Limit: adminLimit})
}

func (s *AdminService) ListBookingRequests(ctx context.Context, caller domain.User) ([]domain.BookingRequest, error) {
	if !s.allowed(caller) {
		return nil, domain.ErrForbidden
	}
	return s.bookings.ListBookings(ctx, adminLimit)
}

// Dashboard loads both lists concurrently. Stats count the fetched logs.
func (s *AdminService) Dashboard(ctx context.Context, caller domain.User, filter string) (Dashboard, error) {
	if !s.allowed(caller) {
		return Dashboard{}, domain.ErrForbidden
	}
	typ, ok := domain.ParseEventFilter(filter)
	if !ok {
		return Dashboard{}, fmt.Errorf("%w: unknown event type %q", domain.ErrValidation, filter)
	}

	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logs, err := s.logs.ListActivity(gctx, domain.ActivityQuery{EventType: typ, Limit: adminLimit})
		if err != nil {
			return fmt.Errorf("list activity: %w", err)
		}
		d.Activity = logs
		return nil
	})
	g.Go(func() error {
		bs, err := s.bookings.ListBookings(gctx, adminLimit)
		if err != nil {
			return fmt.Errorf("list bookings: %w", err)
		}
		d.Bookings = bs
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	d.Stats = statsFor(d.Activity)
	return d, nil
}

func statsFor(logs []domain.ActivityLogEntry) DashboardStats {
	st := DashboardStats{Total: len(logs)}
	for _, e := range logs {
		switch e.EventType {
		case domain.EventSignIn:
			st.SignIns++
		case domain.EventSignUp:
			st.SignUps++
		case domain.EventBookingRequest:
			st.Bookings++
		case domain.EventBookingConfirmed:
			st.Confirmations++
		}
	}
	return st
}
