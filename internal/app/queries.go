package app

import (
	"context"
	"strings"
	"time"

	"tarasamar/internal/domain"
)

const statusLimit = 10

// QueryService answers the guest-facing status lookup.
type QueryService struct {
	base
	bookings domain.BookingRepository
}

func NewQueryService(bookings domain.BookingRepository, cache domain.Cache, cacheTTL time.Duration, opts ...Option) *QueryService {
	return &QueryService{base: newBase(cache, cacheTTL, opts), bookings: bookings}
}

// CheckStatus lists the most recent requests for an exact email match.
func (s *QueryService) CheckStatus(ctx context.Context, email string) ([]domain.BookingRequest, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return []domain.BookingRequest{}, nil
	}
	return cached(ctx, s.base, statusKey(email), func() ([]domain.BookingRequest, error) {
		return s.bookings.ListBookingsByEmail(ctx, email, statusLimit)
	})
}
